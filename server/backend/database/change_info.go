/*
 * Copyright 2026 The Stagegate Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	gotime "time"

	"github.com/stagegate/stagegate/api/types"
)

// ChangeInfo is one entry of a request's audit trail.
type ChangeInfo struct {
	AuthorID string `bson:"author_id"`
	Comment  string `bson:"comment"`

	// Status is nil for a comment that left the status unchanged.
	Status    *types.RequestStatus `bson:"status"`
	CreatedAt gotime.Time          `bson:"created_at"`

	// DraftVersion and LiveVersion are the document versions observed at
	// the time of the entry, nil if the stage had no snapshot.
	DraftVersion *int64 `bson:"draft_version"`
	LiveVersion  *int64 `bson:"live_version"`
}

// NewChangeInfo creates an entry observing the versions of the given document.
func NewChangeInfo(
	actor string,
	comment string,
	status *types.RequestStatus,
	doc *DocInfo,
	now gotime.Time,
) *ChangeInfo {
	info := &ChangeInfo{
		AuthorID:  actor,
		Comment:   comment,
		CreatedAt: now,
	}
	if status != nil {
		info.Status = status.Ptr()
	}
	if doc != nil {
		info.DraftVersion = doc.Draft.VersionPtr()
		info.LiveVersion = doc.Live.VersionPtr()
	}

	return info
}

// DeepCopy returns a deep copy of the ChangeInfo.
func (i *ChangeInfo) DeepCopy() *ChangeInfo {
	if i == nil {
		return nil
	}

	clone := &ChangeInfo{
		AuthorID:  i.AuthorID,
		Comment:   i.Comment,
		CreatedAt: i.CreatedAt,
	}
	if i.Status != nil {
		clone.Status = i.Status.Ptr()
	}
	if i.DraftVersion != nil {
		v := *i.DraftVersion
		clone.DraftVersion = &v
	}
	if i.LiveVersion != nil {
		v := *i.LiveVersion
		clone.LiveVersion = &v
	}

	return clone
}
