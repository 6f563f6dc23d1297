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

// publication brings the draft of a document to live.
type publication struct{}

func (publication) approver() permission.Capability {
	return permission.CanPublish
}

// eligible requires a draft with changes that are not on live yet.
func (publication) eligible(doc *database.DocInfo) error {
	if doc.IsDeletedFromDraft() {
		return fmt.Errorf("%s has no draft: %w", doc.ID, ErrNotEligible)
	}
	if doc.Live != nil && doc.Live.Version == doc.Draft.Version {
		return fmt.Errorf("%s has no unpublished changes: %w", doc.ID, ErrNotEligible)
	}
	return nil
}

func (publication) validateSchedule(embargoAt, expiryAt *time.Time) error {
	if embargoAt != nil && expiryAt != nil && !expiryAt.After(*embargoAt) {
		return fmt.Errorf("expiry must be after embargo: %w", ErrInvalidSchedule)
	}
	return nil
}

// commit stages the draft until the embargo, or publishes it right away.
func (publication) commit(s *step) {
	if s.request.EmbargoAt != nil {
		s.request.LiveExpiryAt = copyTime(s.doc.ExpiryAt)
		s.doc.StagePending(s.request.EmbargoAt, s.request.ExpiryAt, s.now)
		s.record(types.StatusScheduled)
		s.event = events.ApprovedEvent
		s.notify(notification.Approved, s.request.AuthorID)
		return
	}

	s.doc.PromoteDraftToLive(s.now)
	if s.request.ExpiryAt != nil {
		s.doc.ExpiryAt = copyTime(s.request.ExpiryAt)
	}
	s.record(types.StatusCompleted)
	s.event = events.PublishedEvent
	s.notify(notification.Approved, s.request.AuthorID)
	s.notify(notification.Published, s.request.AuthorID)
}
