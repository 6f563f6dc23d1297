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
	"time"

	"github.com/stagegate/stagegate/internal/validation"
)

// ScheduleFields is the schedule an approver may attach when approving.
type ScheduleFields struct {
	EmbargoAt *time.Time `json:"embargo_at,omitempty"`
	ExpiryAt  *time.Time `json:"expiry_at,omitempty"`
}

// IsEmpty returns whether neither time is set.
func (f *ScheduleFields) IsEmpty() bool {
	return f == nil || (f.EmbargoAt == nil && f.ExpiryAt == nil)
}

// Validate validates the ScheduleFields.
func (f *ScheduleFields) Validate() error {
	return validation.ValidateStruct(f)
}

func init() {
	validation.RegisterStructValidation(func(sl validation.StructLevel) {
		f := sl.Current().Interface().(ScheduleFields)
		if !scheduleOrder(f.EmbargoAt, f.ExpiryAt) {
			sl.ReportError(f.ExpiryAt, "ExpiryAt", "ExpiryAt", "after_embargo", "")
		}
	}, ScheduleFields{})
}
