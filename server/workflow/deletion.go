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

package workflow

import (
	"fmt"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
)

// deletion removes a document from live.
type deletion struct{}

func (deletion) approver() permission.Capability {
	return permission.CanDeleteFromLive
}

// eligible requires a document that is on live but gone from the draft.
func (deletion) eligible(doc *database.DocInfo) error {
	if !doc.ExistsOnLive() {
		return fmt.Errorf("%s is not on live: %w", doc.ID, ErrNotEligible)
	}
	if !doc.IsDeletedFromDraft() {
		return fmt.Errorf("%s is not deleted from draft: %w", doc.ID, ErrNotEligible)
	}
	return nil
}

// validateSchedule rejects an embargo: a deletion is scheduled by its expiry.
func (deletion) validateSchedule(embargoAt, _ *time.Time) error {
	if embargoAt != nil {
		return fmt.Errorf("deletion cannot have an embargo: %w", ErrInvalidSchedule)
	}
	return nil
}

// commit removes the document at its expiry, or right away.
func (deletion) commit(s *step) {
	if s.request.ExpiryAt != nil {
		s.request.LiveExpiryAt = copyTime(s.doc.ExpiryAt)
		s.doc.ExpiryAt = copyTime(s.request.ExpiryAt)
		s.doc.UpdatedAt = s.now
		s.record(types.StatusScheduled)
		s.event = events.ApprovedEvent
		s.notify(notification.Approved, s.request.AuthorID)
		return
	}

	s.doc.RemoveFromLive(s.now)
	s.record(types.StatusCompleted)
	s.event = events.RemovedEvent
	s.notify(notification.Approved, s.request.AuthorID)
	s.notify(notification.Published, s.request.AuthorID)
}
