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

import (
	"fmt"
	"os"
	"time"

	"github.com/stagegate/stagegate/internal/validation"
)

// CreateRequestFields is a set of fields that use to create a workflow request.
type CreateRequestFields struct {
	// DocumentID is the document the request governs.
	DocumentID ID `json:"document_id" validate:"required"`

	// Kind is the kind of the request.
	Kind RequestKind `json:"kind" validate:"required,oneof=publication deletion"`

	// Approvers overrides the default approvers of the document.
	Approvers []string `json:"approvers,omitempty" validate:"omitempty,unique,dive,actor_id"`

	// EmbargoAt defers the publication until the given time.
	EmbargoAt *time.Time `json:"embargo_at,omitempty"`

	// ExpiryAt removes the document from live at the given time.
	ExpiryAt *time.Time `json:"expiry_at,omitempty"`
}

// Validate validates the CreateRequestFields.
func (f *CreateRequestFields) Validate() error {
	return validation.ValidateStruct(f)
}

func scheduleOrder(embargoAt, expiryAt *time.Time) bool {
	if embargoAt == nil || expiryAt == nil {
		return true
	}
	return expiryAt.After(*embargoAt)
}

func init() {
	validation.RegisterStructValidation(func(sl validation.StructLevel) {
		f := sl.Current().Interface().(CreateRequestFields)
		if !scheduleOrder(f.EmbargoAt, f.ExpiryAt) {
			sl.ReportError(f.ExpiryAt, "ExpiryAt", "ExpiryAt", "after_embargo", "")
		}
	}, CreateRequestFields{})

	if err := validation.RegisterTranslation("after_embargo", "{0} must be after EmbargoAt"); err != nil {
		fmt.Fprintln(os.Stderr, "create request fields: ", err)
		os.Exit(1)
	}
}
