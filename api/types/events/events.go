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

// Package events defines the events that workflow transitions emit.
package events

import (
	"time"

	"github.com/stagegate/stagegate/api/types"
)

// WorkflowEventType represents the type of the WorkflowEvent.
type WorkflowEventType string

const (
	// RequestedEvent is emitted when an author submits or resubmits a request.
	RequestedEvent WorkflowEventType = "requested"

	// ApprovedEvent is emitted when an approver accepts a request whose
	// effect is deferred by a schedule.
	ApprovedEvent WorkflowEventType = "approved"

	// DeniedEvent is emitted when a request is rejected.
	DeniedEvent WorkflowEventType = "denied"

	// EditRequestedEvent is emitted when a request is sent back to its author.
	EditRequestedEvent WorkflowEventType = "edit-requested"

	// CommentedEvent is emitted when a comment is appended to a request.
	CommentedEvent WorkflowEventType = "commented"

	// PublishedEvent is emitted when a draft reaches live.
	PublishedEvent WorkflowEventType = "published"

	// RemovedEvent is emitted when a document leaves live.
	RemovedEvent WorkflowEventType = "removed"

	// ExpiryCancelledEvent is emitted when a scheduled expiry is cleared.
	ExpiryCancelledEvent WorkflowEventType = "expiry-cancelled"
)

// WorkflowEvent describes the outcome of one transition.
type WorkflowEvent struct {
	// Type is the type of the event.
	Type WorkflowEventType `json:"type"`

	// RequestID is empty for publications that bypassed the workflow.
	RequestID types.ID `json:"request_id,omitempty"`

	// Kind is the kind of the request the event belongs to.
	Kind types.RequestKind `json:"kind,omitempty"`

	DocumentID types.ID            `json:"document_id"`
	Actor      string              `json:"actor"`
	Status     types.RequestStatus `json:"status,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Topic returns the key used to partition the event stream.
func (e WorkflowEvent) Topic() string {
	return e.DocumentID.String()
}
