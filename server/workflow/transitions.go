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
	"slices"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
)

// Request submits the request for approval. A request without an ID is
// created; when the document meanwhile got an open request of the same kind
// and author, that request is submitted again instead.
func Request(
	ctx context.Context,
	be *backend.Backend,
	info *database.RequestInfo,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	if info == nil {
		return nil, fmt.Errorf("request: %w", ErrInvalidTransition)
	}
	st, err := strategyOf(info.Kind)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, doc *database.DocInfo) (*database.RequestInfo, error) {
		if info.ID == "" {
			open, err := be.DB.FindOpenRequestInfo(ctx, doc.ID)
			if err != nil && !errors.Is(err, database.ErrRequestNotFound) {
				return nil, err
			}
			if open == nil {
				return info.DeepCopy(), nil
			}
			if open.Kind != info.Kind {
				return nil, fmt.Errorf("%s request %s: %w", open.Kind, open.ID, ErrConflictingRequest)
			}
			return resubmitted(open, info), nil
		}

		stored, err := loadRequest(ctx, be, info.ID, doc.ID)
		if err != nil {
			return nil, err
		}
		return resubmitted(stored, info), nil
	}

	return transit(ctx, be, info.DocumentID, actor, comment, load, func(ctx context.Context, s *step) error {
		if s.request.ID != "" && s.request.AuthorID != actor {
			return fmt.Errorf("request %s: %w", s.request.ID, ErrNotAuthor)
		}
		if err := allowedFrom(
			s.request,
			"",
			types.StatusAwaitingApproval,
			types.StatusAwaitingEdit,
		); err != nil {
			return err
		}
		if err := CheckCreate(ctx, be, s.request.Kind, s.doc, s.request, actor); err != nil {
			return err
		}
		if err := st.validateSchedule(s.request.EmbargoAt, s.request.ExpiryAt); err != nil {
			return err
		}
		if len(s.request.Approvers) == 0 {
			return ErrNoApprovers
		}

		if s.request.ID == "" {
			s.request.AuthorID = actor
			s.request.DocumentID = s.doc.ID
			s.request.CreatedAt = s.now
		}
		s.record(types.StatusAwaitingApproval)
		s.event = events.RequestedEvent

		var recipients []string
		for _, approver := range s.request.Approvers {
			if be.Can(ctx, approver, st.approver(), s.doc) {
				recipients = append(recipients, approver)
			}
		}
		s.notify(notification.AwaitingApproval, recipients...)
		return nil
	})
}

// Approve accepts the request and applies it to the document, right away or
// through its schedule.
func Approve(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	return ApproveWithSchedule(ctx, be, id, actor, comment, nil)
}

// ApproveWithSchedule approves the request after replacing its embargo and
// expiry with the given schedule, if any.
func ApproveWithSchedule(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
	schedule *types.ScheduleFields,
) (*events.WorkflowEvent, error) {
	return decide(ctx, be, id, actor, comment, func(ctx context.Context, st strategy, s *step) error {
		if err := allowedFrom(s.request, types.StatusAwaitingApproval, types.StatusAwaitingEdit); err != nil {
			return err
		}
		if err := st.eligible(s.doc); err != nil {
			return err
		}

		if !schedule.IsEmpty() {
			if err := st.validateSchedule(schedule.EmbargoAt, schedule.ExpiryAt); err != nil {
				return err
			}
			s.request.EmbargoAt = copyTime(schedule.EmbargoAt)
			s.request.ExpiryAt = copyTime(schedule.ExpiryAt)
		}

		s.request.PublisherID = actor
		s.record(types.StatusApproved)
		st.commit(s)
		return nil
	})
}

// Deny rejects the request. Unpublished work on the draft is discarded and a
// schedule the request staged is withdrawn.
func Deny(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	return decide(ctx, be, id, actor, comment, func(_ context.Context, _ strategy, s *step) error {
		if err := allowedFrom(
			s.request,
			types.StatusAwaitingApproval,
			types.StatusAwaitingEdit,
			types.StatusScheduled,
		); err != nil {
			return err
		}

		s.doc.RevertDraftToLive(s.now)
		if s.request.Status == types.StatusScheduled {
			s.doc.UnstageSchedule(s.request.LiveExpiryAt, s.now)
		}
		s.request.PublisherID = actor
		s.record(types.StatusDenied)
		s.event = events.DeniedEvent
		s.notify(notification.Denied, s.request.AuthorID)
		return nil
	})
}

// RequestEdit sends the request back to its author.
func RequestEdit(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	return decide(ctx, be, id, actor, comment, func(_ context.Context, _ strategy, s *step) error {
		if err := allowedFrom(s.request, types.StatusAwaitingApproval); err != nil {
			return err
		}

		s.request.PublisherID = actor
		s.record(types.StatusAwaitingEdit)
		s.event = events.EditRequestedEvent
		s.notify(notification.Denied, s.request.AuthorID)
		return nil
	})
}

// Comment appends a comment to the request without changing its status.
func Comment(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error) {
	info, err := be.DB.FindRequestInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, doc *database.DocInfo) (*database.RequestInfo, error) {
		return loadRequest(ctx, be, id, doc.ID)
	}

	return transit(ctx, be, info.DocumentID, actor, comment, load, func(ctx context.Context, s *step) error {
		if !be.Can(ctx, actor, permission.CanEdit, s.doc) && !be.Can(ctx, actor, permission.CanPublish, s.doc) {
			return ErrPermissionDenied
		}

		s.request.Record(s.actor, s.comment, nil, s.doc, s.now)
		s.event = events.CommentedEvent
		return nil
	})
}

// resubmitted takes the approvers and the schedule of the submitted request
// over to the stored one.
func resubmitted(stored, submitted *database.RequestInfo) *database.RequestInfo {
	stored.Approvers = slices.Clone(submitted.Approvers)
	stored.EmbargoAt = copyTime(submitted.EmbargoAt)
	stored.ExpiryAt = copyTime(submitted.ExpiryAt)
	return stored
}

// decide runs a transition that only actors able to approve the request may
// take.
func decide(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
	fn func(ctx context.Context, st strategy, s *step) error,
) (*events.WorkflowEvent, error) {
	info, err := be.DB.FindRequestInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := strategyOf(info.Kind)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context, doc *database.DocInfo) (*database.RequestInfo, error) {
		return loadRequest(ctx, be, id, doc.ID)
	}

	return transit(ctx, be, info.DocumentID, actor, comment, load, func(ctx context.Context, s *step) error {
		if !be.Can(ctx, actor, st.approver(), s.doc) {
			return ErrPermissionDenied
		}
		return fn(ctx, st, s)
	})
}

// loadRequest reads the request again once the document is locked.
func loadRequest(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	docID types.ID,
) (*database.RequestInfo, error) {
	info, err := be.DB.FindRequestInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if info.DocumentID != docID {
		return nil, fmt.Errorf("request %s moved to %s: %w", id, info.DocumentID, ErrInvalidTransition)
	}
	return info, nil
}
