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

// DocInfo is a structure representing a managed document with its draft,
// live and pending snapshots.
type DocInfo struct {
	// ID is the unique ID of the document.
	ID types.ID `bson:"_id"`

	// ParentID is the ID of the parent document, empty for root documents.
	ParentID types.ID `bson:"parent_id"`

	// SortIndex orders the document among its siblings.
	SortIndex int `bson:"sort_index"`

	// Owner is the actor who created the document.
	Owner string `bson:"owner"`

	// Draft is the editable snapshot. It is nil once the document was
	// deleted from the draft stage.
	Draft *types.Snapshot `bson:"draft"`

	// Live is the published snapshot, nil if the document is not on live.
	Live *types.Snapshot `bson:"live"`

	// Pending is the approved draft waiting for its embargo.
	Pending *types.Snapshot `bson:"pending"`

	// EmbargoAt and ExpiryAt mirror the schedule of the governing request.
	EmbargoAt *gotime.Time `bson:"embargo_at"`
	ExpiryAt  *gotime.Time `bson:"expiry_at"`

	// OpenRequestID is the ID of the open request governing this document.
	OpenRequestID types.ID `bson:"open_request_id"`

	CreatedAt gotime.Time `bson:"created_at"`
	UpdatedAt gotime.Time `bson:"updated_at"`
}

// ExistsOnLive returns whether the document has a live snapshot.
func (i *DocInfo) ExistsOnLive() bool {
	return i.Live != nil
}

// IsDeletedFromDraft returns whether the draft snapshot was deleted.
func (i *DocInfo) IsDeletedFromDraft() bool {
	return i.Draft == nil
}

// HasSchedule returns whether an embargo or an expiry is set.
func (i *DocInfo) HasSchedule() bool {
	return i.EmbargoAt != nil || i.ExpiryAt != nil
}

// SaveDraft writes a new draft version.
func (i *DocInfo) SaveDraft(title, content string, now gotime.Time) {
	var version int64 = 1
	if i.Draft != nil {
		version = i.Draft.Version + 1
	} else if i.Live != nil {
		version = i.Live.Version + 1
	}

	i.Draft = &types.Snapshot{
		Version: version,
		Title:   title,
		Content: content,
		SavedAt: now,
	}
	i.UpdatedAt = now
}

// DeleteFromDraft drops the draft snapshot, leaving live untouched.
func (i *DocInfo) DeleteFromDraft(now gotime.Time) {
	i.Draft = nil
	i.UpdatedAt = now
}

// PromoteDraftToLive publishes the draft. Any staged pending snapshot and
// embargo are superseded.
func (i *DocInfo) PromoteDraftToLive(now gotime.Time) {
	i.Live = i.Draft.DeepCopy()
	if i.Live != nil {
		i.Live.SavedAt = now
	}
	i.Pending = nil
	i.EmbargoAt = nil
	i.UpdatedAt = now
}

// RemoveFromLive unpublishes the document and clears its schedule.
func (i *DocInfo) RemoveFromLive(now gotime.Time) {
	i.Live = nil
	i.Pending = nil
	i.EmbargoAt = nil
	i.ExpiryAt = nil
	i.UpdatedAt = now
}

// RevertDraftToLive discards unpublished work: the draft takes the live
// content as a new version. The schedule of live is left as it is. A
// document that never reached live keeps its draft.
func (i *DocInfo) RevertDraftToLive(now gotime.Time) {
	if i.Live != nil {
		version := i.Live.Version
		if i.Draft != nil && i.Draft.Version > version {
			version = i.Draft.Version
		}

		i.Draft = i.Live.DeepCopy()
		i.Draft.Version = version + 1
		i.Draft.SavedAt = now
	}

	i.UpdatedAt = now
}

// StagePending keeps the draft aside until embargoAt. Without a new expiry
// the one of live stays in place.
func (i *DocInfo) StagePending(embargoAt, expiryAt *gotime.Time, now gotime.Time) {
	i.Pending = i.Draft.DeepCopy()
	i.EmbargoAt = copyTime(embargoAt)
	if expiryAt != nil {
		i.ExpiryAt = copyTime(expiryAt)
	}
	i.UpdatedAt = now
}

// UnstageSchedule drops the pending snapshot and the embargo of a withdrawn
// schedule and puts back the expiry live had before it.
func (i *DocInfo) UnstageSchedule(liveExpiryAt *gotime.Time, now gotime.Time) {
	i.Pending = nil
	i.EmbargoAt = nil
	i.ExpiryAt = copyTime(liveExpiryAt)
	i.UpdatedAt = now
}

// ApplyPending materialises a passed embargo: the pending snapshot becomes
// live while the expiry stays in place.
func (i *DocInfo) ApplyPending(now gotime.Time) {
	if i.Pending != nil {
		i.Live = i.Pending
		i.Live.SavedAt = now
	}
	i.Pending = nil
	i.EmbargoAt = nil
	i.UpdatedAt = now
}

// DeepCopy returns a deep copy of the DocInfo.
func (i *DocInfo) DeepCopy() *DocInfo {
	if i == nil {
		return nil
	}

	return &DocInfo{
		ID:            i.ID,
		ParentID:      i.ParentID,
		SortIndex:     i.SortIndex,
		Owner:         i.Owner,
		Draft:         i.Draft.DeepCopy(),
		Live:          i.Live.DeepCopy(),
		Pending:       i.Pending.DeepCopy(),
		EmbargoAt:     copyTime(i.EmbargoAt),
		ExpiryAt:      copyTime(i.ExpiryAt),
		OpenRequestID: i.OpenRequestID,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func copyTime(t *gotime.Time) *gotime.Time {
	if t == nil {
		return nil
	}

	clone := *t
	return &clone
}
