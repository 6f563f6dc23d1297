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

import "errors"

var (
	// ErrInvalidStatus is returned when the given status is not a known status.
	ErrInvalidStatus = errors.New("invalid request status")

	// ErrInvalidKind is returned when the given kind is not a known kind.
	ErrInvalidKind = errors.New("invalid request kind")
)

// RequestKind distinguishes what an approved request does to its document.
type RequestKind string

const (
	// PublicationRequest promotes the draft of a document to live.
	PublicationRequest RequestKind = "publication"

	// DeletionRequest removes a document from live.
	DeletionRequest RequestKind = "deletion"
)

// Validate returns an error when the kind is not one of the known values.
func (k RequestKind) Validate() error {
	switch k {
	case PublicationRequest, DeletionRequest:
		return nil
	default:
		return ErrInvalidKind
	}
}
