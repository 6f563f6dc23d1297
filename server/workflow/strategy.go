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
	"fmt"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/permission"
)

// strategy is what distinguishes the kinds of requests.
type strategy interface {
	// approver is the capability needed to approve the request.
	approver() permission.Capability

	// eligible checks that the document can be the subject of a new request.
	eligible(doc *database.DocInfo) error

	// validateSchedule checks the embargo and expiry of the request.
	validateSchedule(embargoAt, expiryAt *time.Time) error

	// commit applies the approved request to the document.
	commit(s *step)
}

var strategies = map[types.RequestKind]strategy{
	types.PublicationRequest: publication{},
	types.DeletionRequest:    deletion{},
}

func strategyOf(kind types.RequestKind) (strategy, error) {
	st, ok := strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, types.ErrInvalidKind)
	}
	return st, nil
}

// CheckCreate returns whether the actor may file a request of the given kind
// for the document. open is the current open request of the document, if
// any; only its author may submit it again.
func CheckCreate(
	ctx context.Context,
	be *backend.Backend,
	kind types.RequestKind,
	doc *database.DocInfo,
	open *database.RequestInfo,
	actor string,
) error {
	st, err := strategyOf(kind)
	if err != nil {
		return err
	}

	if !be.Can(ctx, actor, permission.CanEdit, doc) {
		return ErrPermissionDenied
	}

	if open != nil && open.IsOpen() {
		if open.Kind != kind {
			return fmt.Errorf("%s request %s: %w", open.Kind, open.ID, ErrConflictingRequest)
		}
		if open.AuthorID != actor {
			return fmt.Errorf("request %s: %w", open.ID, ErrNotAuthor)
		}
	}

	if err := st.eligible(doc); err != nil {
		return err
	}

	if !be.Config.PublishersCanCreateRequests && be.Can(ctx, actor, st.approver(), doc) {
		return fmt.Errorf("%s can apply the change directly: %w", actor, ErrNotEligible)
	}

	return nil
}

// ValidateSchedule checks the embargo and expiry against the kind.
func ValidateSchedule(kind types.RequestKind, embargoAt, expiryAt *time.Time) error {
	st, err := strategyOf(kind)
	if err != nil {
		return err
	}
	return st.validateSchedule(embargoAt, expiryAt)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
