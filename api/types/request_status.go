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

package types

// RequestStatus is the status of a workflow request.
type RequestStatus string

const (
	// StatusAwaitingApproval is the initial status of a submitted request.
	StatusAwaitingApproval RequestStatus = "AwaitingApproval"

	// StatusApproved is recorded when an approver accepts the request. The
	// request moves on to Scheduled or Completed within the same operation.
	StatusApproved RequestStatus = "Approved"

	// StatusDenied is the terminal status of a rejected request.
	StatusDenied RequestStatus = "Denied"

	// StatusAwaitingEdit means the request was sent back to its author.
	StatusAwaitingEdit RequestStatus = "AwaitingEdit"

	// StatusScheduled means the approved effect waits for an embargo or expiry.
	StatusScheduled RequestStatus = "Scheduled"

	// StatusCompleted is the terminal status of an applied request.
	StatusCompleted RequestStatus = "Completed"
)

var statusDescriptions = map[RequestStatus]string{
	StatusAwaitingApproval: "Awaiting Approval",
	StatusApproved:         "Approved",
	StatusDenied:           "Denied",
	StatusAwaitingEdit:     "Awaiting Edit",
	StatusScheduled:        "Scheduled",
	StatusCompleted:        "Completed",
}

// OpenStatuses are the statuses of requests that still govern their document.
var OpenStatuses = []RequestStatus{
	StatusAwaitingApproval,
	StatusApproved,
	StatusAwaitingEdit,
	StatusScheduled,
}

// IsOpen returns whether the request is not terminal yet.
func (s RequestStatus) IsOpen() bool {
	switch s {
	case StatusAwaitingApproval, StatusApproved, StatusAwaitingEdit, StatusScheduled:
		return true
	default:
		return false
	}
}

// IsTerminal returns whether no further transition can leave this status.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusDenied || s == StatusCompleted
}

// Validate returns an error when the status is not one of the known values.
func (s RequestStatus) Validate() error {
	if _, ok := statusDescriptions[s]; !ok {
		return ErrInvalidStatus
	}
	return nil
}

// Description returns the human readable label of the status.
func (s RequestStatus) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "Unknown"
}

// Ptr returns a pointer to a copy of the status.
func (s RequestStatus) Ptr() *RequestStatus {
	return &s
}
