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

// Package workflow implements the approval state machine of publication and
// deletion requests.
package workflow

import (
	"context"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/pkg/errors"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/backend/sync"
	"github.com/stagegate/stagegate/server/documents"
	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/notification"
)

// SystemActor is the actor recorded for changes made by housekeeping.
const SystemActor = "stagegate"

var (
	// ErrPermissionDenied is returned when the actor lacks the capability the
	// transition requires.
	ErrPermissionDenied = errors.PermissionDenied("action not permitted").WithCode("ErrPermissionDenied")

	// ErrInvalidTransition is returned when the request is not in a status
	// the transition starts from.
	ErrInvalidTransition = errors.FailedPrecond("action not permitted in the current status").WithCode("ErrInvalidTransition")

	// ErrConflictingRequest is returned when the document already has an
	// open request of another kind.
	ErrConflictingRequest = errors.FailedPrecond("document has an open request of another kind").WithCode("ErrConflictingRequest")

	// ErrNotAuthor is returned when someone other than the author submits
	// the open request of a document.
	ErrNotAuthor = errors.FailedPrecond("open request belongs to another author").WithCode("ErrNotAuthor")

	// ErrNoApprovers is returned when a request would have nobody to approve it.
	ErrNoApprovers = errors.InvalidArgument("request has no approvers").WithCode("ErrNoApprovers")

	// ErrNotEligible is returned when the document is not in a state the
	// operation applies to.
	ErrNotEligible = errors.FailedPrecond("document is not eligible").WithCode("ErrNotEligible")

	// ErrInvalidSchedule is returned when a schedule does not fit the kind of
	// the request.
	ErrInvalidSchedule = errors.InvalidArgument("invalid schedule").WithCode("ErrInvalidSchedule")
)

// notice is a notification to dispatch once the transition committed.
type notice struct {
	channel    notification.Channel
	recipients []string
}

// step is the working set of one transition. Mutations happen on copies and
// reach storage together in commit.
type step struct {
	request *database.RequestInfo
	doc     *database.DocInfo
	actor   string
	comment string
	now     time.Time

	event   events.WorkflowEventType
	notices []notice
}

// record appends an audit entry moving the request to the given status.
func (s *step) record(status types.RequestStatus) {
	s.request.Record(s.actor, s.comment, status.Ptr(), s.doc, s.now)
}

func (s *step) notify(channel notification.Channel, recipients ...string) {
	s.notices = append(s.notices, notice{channel: channel, recipients: recipients})
}

// transit serializes on the document, loads the request under the lock,
// applies fn and commits the request and the document in one storage
// transaction. Events are published and notifications dispatched only after
// the commit succeeded.
func transit(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	actor, comment string,
	load func(ctx context.Context, doc *database.DocInfo) (*database.RequestInfo, error),
	fn func(ctx context.Context, s *step) error,
) (*events.WorkflowEvent, error) {
	start := time.Now()

	locker := be.Lockers.Locker(sync.DocKey(docID))
	locker.Lock()
	defer func() {
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	doc, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	request, err := load(ctx, doc)
	if err != nil {
		return nil, err
	}

	s := &step{
		request: request,
		doc:     doc,
		actor:   actor,
		comment: comment,
		now:     be.Clock.Now(),
	}
	if err := fn(ctx, s); err != nil {
		return nil, err
	}

	if err := be.DB.ApplyTransition(ctx, &database.Transition{
		Request:  s.request,
		Document: s.doc,
	}); err != nil {
		return nil, err
	}

	event := s.emit()
	if be.Metrics != nil {
		if s.request != nil {
			be.Metrics.AddTransition(s.request.Kind, s.request.Status)
		}
		be.Metrics.ObserveTransitionSeconds(time.Since(start).Seconds())
	}
	be.PublishEvent(ctx, *event)
	dispatch(be, s)

	logging.From(ctx).Debugf(
		"%s %s of %s by %s => %s",
		event.Type,
		event.RequestID,
		docID,
		actor,
		event.Status,
	)

	return event, nil
}

func (s *step) emit() *events.WorkflowEvent {
	event := &events.WorkflowEvent{
		Type:       s.event,
		DocumentID: s.doc.ID,
		Actor:      s.actor,
		OccurredAt: s.now,
	}
	if s.request != nil {
		event.RequestID = s.request.ID
		event.Kind = s.request.Kind
		event.Status = s.request.Status
	}
	return event
}

// dispatch delivers the notices of the step in the background. Delivery
// failures never reach the caller of the transition.
func dispatch(be *backend.Backend, s *step) {
	if len(s.notices) == 0 {
		return
	}

	data := notification.TemplateData{
		Actor:      s.actor,
		Comment:    s.comment,
		DocumentID: s.doc.ID,
	}
	if s.request != nil {
		data.Kind = s.request.Kind
		data.RequestID = s.request.ID
		data.Status = s.request.Status
	}
	data.DocumentTitle = documents.TitleOf(s.doc, data.Kind)

	notices := s.notices
	be.Background.AttachGoroutine(func(ctx context.Context) {
		for _, n := range notices {
			be.Notifier.Deliver(ctx, n.channel, n.recipients, data)
		}
	}, "notification")
}

// allowedFrom returns ErrInvalidTransition unless the request is in one of
// the given statuses.
func allowedFrom(request *database.RequestInfo, statuses ...types.RequestStatus) error {
	for _, status := range statuses {
		if request.Status == status {
			return nil
		}
	}
	return ErrInvalidTransition
}

// IsOpen returns whether the request still governs its document.
func IsOpen(info *database.RequestInfo) bool {
	return info != nil && info.IsOpen()
}

// Find returns the request of the given id.
func Find(ctx context.Context, be *backend.Backend, id types.ID) (*database.RequestInfo, error) {
	return be.DB.FindRequestInfoByID(ctx, id)
}

// StatusOf returns the status of the request of the given id.
func StatusOf(ctx context.Context, be *backend.Backend, id types.ID) (types.RequestStatus, error) {
	info, err := be.DB.FindRequestInfoByID(ctx, id)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

// ChangesOf returns the audit trail of the request in insertion order.
func ChangesOf(ctx context.Context, be *backend.Backend, id types.ID) ([]*database.ChangeInfo, error) {
	info, err := be.DB.FindRequestInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return info.Changes, nil
}
