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

// RequestInfo is a structure representing a workflow request and its audit
// trail.
type RequestInfo struct {
	// ID is the unique ID of the request.
	ID types.ID `bson:"_id"`

	// Kind decides what approving the request does to the document.
	Kind types.RequestKind `bson:"kind"`

	// DocumentID is the document this request governs.
	DocumentID types.ID `bson:"document_id"`

	// Status is the current status of the request.
	Status types.RequestStatus `bson:"status"`

	// AuthorID is the actor who created the underlying change.
	AuthorID string `bson:"author_id"`

	// PublisherID is the approver who most recently acted on the request.
	PublisherID string `bson:"publisher_id"`

	// Approvers are the actors allowed to approve or deny this request.
	Approvers []string `bson:"approvers"`

	// EmbargoAt and ExpiryAt defer the approved effect when set.
	EmbargoAt *gotime.Time `bson:"embargo_at"`
	ExpiryAt  *gotime.Time `bson:"expiry_at"`

	// LiveExpiryAt is the expiry the document had when the request got
	// scheduled. It is restored if the schedule is withdrawn.
	LiveExpiryAt *gotime.Time `bson:"live_expiry_at"`

	// Changes is the audit trail in insertion order.
	Changes []*ChangeInfo `bson:"changes"`

	CreatedAt gotime.Time `bson:"created_at"`
	UpdatedAt gotime.Time `bson:"updated_at"`
}

// IsOpen returns whether the request still governs its document.
func (i *RequestInfo) IsOpen() bool {
	return i.Status.IsOpen()
}

// IsApprover returns whether the given actor may decide on the request.
func (i *RequestInfo) IsApprover(actor string) bool {
	for _, approver := range i.Approvers {
		if approver == actor {
			return true
		}
	}
	return false
}

// Record appends an entry to the audit trail and moves the request to its
// status. A nil status records a comment.
func (i *RequestInfo) Record(
	actor string,
	comment string,
	status *types.RequestStatus,
	doc *DocInfo,
	now gotime.Time,
) {
	i.Changes = append(i.Changes, NewChangeInfo(actor, comment, status, doc, now))
	if status != nil {
		i.Status = *status
	}
	i.UpdatedAt = now
}

// LastChange returns the latest audit entry or nil.
func (i *RequestInfo) LastChange() *ChangeInfo {
	if len(i.Changes) == 0 {
		return nil
	}
	return i.Changes[len(i.Changes)-1]
}

// DeepCopy returns a deep copy of the RequestInfo.
func (i *RequestInfo) DeepCopy() *RequestInfo {
	if i == nil {
		return nil
	}

	var approvers []string
	if i.Approvers != nil {
		approvers = make([]string, len(i.Approvers))
		copy(approvers, i.Approvers)
	}

	var changes []*ChangeInfo
	if i.Changes != nil {
		changes = make([]*ChangeInfo, len(i.Changes))
		for idx, c := range i.Changes {
			changes[idx] = c.DeepCopy()
		}
	}

	return &RequestInfo{
		ID:           i.ID,
		Kind:         i.Kind,
		DocumentID:   i.DocumentID,
		Status:       i.Status,
		AuthorID:     i.AuthorID,
		PublisherID:  i.PublisherID,
		Approvers:    approvers,
		EmbargoAt:    copyTime(i.EmbargoAt),
		ExpiryAt:     copyTime(i.ExpiryAt),
		LiveExpiryAt: copyTime(i.LiveExpiryAt),
		Changes:      changes,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
