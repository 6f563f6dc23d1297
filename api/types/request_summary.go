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

import "time"

// RequestSummary is the row a listing shows for one request.
type RequestSummary struct {
	ID            ID            `json:"id" yaml:"id"`
	Kind          RequestKind   `json:"kind" yaml:"kind"`
	Status        RequestStatus `json:"status" yaml:"status"`
	DocumentID    ID            `json:"document_id" yaml:"document_id"`
	DocumentTitle string        `json:"document_title" yaml:"document_title"`
	AuthorID      string        `json:"author_id" yaml:"author_id"`
	PublisherID   string        `json:"publisher_id,omitempty" yaml:"publisher_id,omitempty"`
	EmbargoAt     *time.Time    `json:"embargo_at,omitempty" yaml:"embargo_at,omitempty"`
	ExpiryAt      *time.Time    `json:"expiry_at,omitempty" yaml:"expiry_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	// DocumentUpdatedAt orders listings, most recently modified first.
	DocumentUpdatedAt time.Time `json:"document_updated_at" yaml:"document_updated_at"`
	RequestedAt       time.Time `json:"requested_at" yaml:"requested_at"`
}
