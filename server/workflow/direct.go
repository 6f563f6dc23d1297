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
	"context"
	"errors"
	"fmt"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
)

// PublishDirect publishes the draft without going through a request. An open
// publication request of the document is completed along the way.
func PublishDirect(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	return transit(ctx, be, docID, actor, comment, openRequestOf(be), func(ctx context.Context, s *step) error {
		if !be.Can(ctx, actor, permission.CanPublish, s.doc) {
			return ErrPermissionDenied
		}
		if err := (publication{}).eligible(s.doc); err != nil {
			return err
		}
		if s.request != nil && s.request.Kind != types.PublicationRequest {
			return fmt.Errorf("%s request %s: %w", s.request.Kind, s.request.ID, ErrConflictingRequest)
		}

		s.doc.PromoteDraftToLive(s.now)
		s.event = events.PublishedEvent

		if s.request != nil {
			s.request.PublisherID = actor
			s.record(types.StatusCompleted)
			s.notify(notification.Published, s.request.AuthorID)
		}
		return nil
	})
}

// CancelExpiry clears the scheduled expiry of the document. A scheduled
// deletion is denied since it has nothing left to do.
func CancelExpiry(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	return transit(ctx, be, docID, actor, comment, openRequestOf(be), func(ctx context.Context, s *step) error {
		if !be.Can(ctx, actor, permission.CanPublish, s.doc) {
			return ErrPermissionDenied
		}
		if s.doc.ExpiryAt == nil {
			return fmt.Errorf("%s has no expiry: %w", s.doc.ID, ErrNotEligible)
		}

		s.event = events.ExpiryCancelledEvent
		if s.request == nil {
			s.doc.ExpiryAt = nil
			s.doc.UpdatedAt = s.now
			return nil
		}

		s.request.PublisherID = actor
		if s.request.Kind == types.DeletionRequest && s.request.Status == types.StatusScheduled {
			s.doc.RevertDraftToLive(s.now)
			s.doc.UnstageSchedule(nil, s.now)
			s.record(types.StatusDenied)
			s.notify(notification.Denied, s.request.AuthorID)
			return nil
		}

		s.doc.ExpiryAt = nil
		s.doc.UpdatedAt = s.now
		s.request.ExpiryAt = nil
		s.request.LiveExpiryAt = nil
		s.request.Record(s.actor, s.comment, nil, s.doc, s.now)
		return nil
	})
}

// openRequestOf loads the open request of the locked document, nil if none.
func openRequestOf(be *backend.Backend) func(context.Context, *database.DocInfo) (*database.RequestInfo, error) {
	return func(ctx context.Context, doc *database.DocInfo) (*database.RequestInfo, error) {
		open, err := be.DB.FindOpenRequestInfo(ctx, doc.ID)
		if errors.Is(err, database.ErrRequestNotFound) {
			return nil, nil
		}
		return open, err
	}
}
