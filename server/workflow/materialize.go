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
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/backend/sync"
	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/notification"
)

// MaterializeDue applies the embargoes and expiries due at the given time to
// the stored documents and completes the scheduled requests behind them. It
// returns the number of documents changed. Reads resolve schedules on their
// own, so this only keeps storage in line with what readers already see.
func MaterializeDue(ctx context.Context, be *backend.Backend, now time.Time, limit int) (int, error) {
	candidates, err := be.DB.FindDueDocInfos(ctx, now)
	if err != nil {
		return 0, err
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	processed := 0
	for _, candidate := range candidates {
		changed, err := materialize(ctx, be, candidate.ID, now)
		if err != nil {
			logging.From(ctx).Errorf("materialize %s: %v", candidate.ID, err)
			continue
		}
		if changed {
			processed++
		}
	}

	return processed, nil
}

func materialize(ctx context.Context, be *backend.Backend, docID types.ID, now time.Time) (bool, error) {
	locker := be.Lockers.Locker(sync.DocKey(docID))
	locker.Lock()
	defer func() {
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	doc, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return false, err
	}
	open, err := openRequestOf(be)(ctx, doc)
	if err != nil {
		return false, err
	}

	s := &step{doc: doc, actor: SystemActor, now: now}
	var effects []events.WorkflowEventType

	if reached(doc.EmbargoAt, now) {
		doc.ApplyPending(now)
		effects = append(effects, events.PublishedEvent)
		if scheduled(open, types.PublicationRequest) {
			s.request = open
		}
	}
	if reached(doc.ExpiryAt, now) {
		doc.RemoveFromLive(now)
		effects = append(effects, events.RemovedEvent)
		if scheduled(open, types.DeletionRequest) {
			s.request = open
		}
	}
	if len(effects) == 0 {
		return false, nil
	}

	if s.request != nil {
		s.record(types.StatusCompleted)
		s.notify(notification.Published, s.request.AuthorID)
	}

	if err := be.DB.ApplyTransition(ctx, &database.Transition{
		Request:  s.request,
		Document: s.doc,
	}); err != nil {
		return false, err
	}

	for _, effect := range effects {
		s.event = effect
		if be.Metrics != nil {
			be.Metrics.AddMaterialization(materialization(effect))
		}
		be.PublishEvent(ctx, *s.emit())
	}
	if s.request != nil && be.Metrics != nil {
		be.Metrics.AddTransition(s.request.Kind, s.request.Status)
	}
	dispatch(be, s)

	return true, nil
}

func reached(boundary *time.Time, at time.Time) bool {
	return boundary != nil && !at.Before(*boundary)
}

func scheduled(open *database.RequestInfo, kind types.RequestKind) bool {
	return open != nil && open.Kind == kind && open.Status == types.StatusScheduled
}

func materialization(effect events.WorkflowEventType) string {
	if effect == events.PublishedEvent {
		return "embargo"
	}
	return "expiry"
}
