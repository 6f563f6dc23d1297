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

// DocumentSummary is a document as observed at an instant.
type DocumentSummary struct {
	ID            ID         `json:"id" yaml:"id"`
	ParentID      ID         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Owner         string     `json:"owner" yaml:"owner"`
	Resolution    Resolution `json:"resolution" yaml:"resolution"`
	EmbargoAt     *time.Time `json:"embargo_at,omitempty" yaml:"embargo_at,omitempty"`
	ExpiryAt      *time.Time `json:"expiry_at,omitempty" yaml:"expiry_at,omitempty"`
	OpenRequestID ID         `json:"open_request_id,omitempty" yaml:"open_request_id,omitempty"`
	Stage         Stage      `json:"stage" yaml:"stage"`
	EvaluatedAt   time.Time  `json:"evaluated_at" yaml:"evaluated_at"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updated_at"`
}
