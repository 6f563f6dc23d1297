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

// Package requests finds, creates and lists the workflow requests of
// documents.
package requests

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/documents"
	"github.com/stagegate/stagegate/server/workflow"
)

// OpenRequestFor returns the open request of the document, or nil when it
// has none.
func OpenRequestFor(ctx context.Context, be *backend.Backend, docID types.ID) (*database.RequestInfo, error) {
	info, err := be.DB.FindOpenRequestInfo(ctx, docID)
	if errors.Is(err, database.ErrRequestNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// CreateOrReuse prepares the request the author is about to submit. When the
// author already has an open request of the same kind on the document, that
// request is returned with the given approvers and schedule; otherwise a new,
// not yet stored, request is returned. Approvers default to the approvers of
// the document.
func CreateOrReuse(
	ctx context.Context,
	be *backend.Backend,
	fields *types.CreateRequestFields,
	author string,
) (*database.RequestInfo, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if err := workflow.ValidateSchedule(fields.Kind, fields.EmbargoAt, fields.ExpiryAt); err != nil {
		return nil, err
	}

	doc, err := be.DB.FindDocInfoByID(ctx, fields.DocumentID)
	if err != nil {
		return nil, err
	}
	open, err := OpenRequestFor(ctx, be, doc.ID)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckCreate(ctx, be, fields.Kind, doc, open, author); err != nil {
		return nil, err
	}

	approvers := slices.Clone(fields.Approvers)
	if len(approvers) == 0 {
		if approvers, err = be.Permission.ApproversFor(ctx, doc); err != nil {
			return nil, fmt.Errorf("approvers of %s: %w", doc.ID, err)
		}
	}
	if len(approvers) == 0 {
		return nil, workflow.ErrNoApprovers
	}

	info := open
	if info == nil {
		info = &database.RequestInfo{
			Kind:       fields.Kind,
			DocumentID: doc.ID,
			AuthorID:   author,
		}
	}
	info.Approvers = approvers
	info.EmbargoAt = fields.EmbargoAt
	info.ExpiryAt = fields.ExpiryAt

	return info, nil
}

// Submit creates or reuses the request of the author and submits it for
// approval. It returns the stored request.
func Submit(
	ctx context.Context,
	be *backend.Backend,
	fields *types.CreateRequestFields,
	author, comment string,
) (*database.RequestInfo, *events.WorkflowEvent, error) {
	info, err := CreateOrReuse(ctx, be, fields, author)
	if err != nil {
		return nil, nil, err
	}

	event, err := workflow.Request(ctx, be, info, author, comment)
	if err != nil {
		return nil, nil, err
	}

	stored, err := be.DB.FindRequestInfoByID(ctx, event.RequestID)
	if err != nil {
		return nil, nil, err
	}
	return stored, event, nil
}

// ListByAuthor lists the requests of the given kind the author created.
func ListByAuthor(
	ctx context.Context,
	be *backend.Backend,
	kind types.RequestKind,
	author string,
	statuses ...types.RequestStatus,
) ([]*types.RequestSummary, error) {
	return list(ctx, be, database.RequestFilter{
		Kind:     kind,
		AuthorID: author,
		Statuses: statuses,
	})
}

// ListByApprover lists the requests of the given kind the approver may decide.
func ListByApprover(
	ctx context.Context,
	be *backend.Backend,
	kind types.RequestKind,
	approver string,
	statuses ...types.RequestStatus,
) ([]*types.RequestSummary, error) {
	return list(ctx, be, database.RequestFilter{
		Kind:     kind,
		Approver: approver,
		Statuses: statuses,
	})
}

// ListAll lists the requests of the given kind. An empty kind lists every
// kind.
func ListAll(
	ctx context.Context,
	be *backend.Backend,
	kind types.RequestKind,
	statuses ...types.RequestStatus,
) ([]*types.RequestSummary, error) {
	return list(ctx, be, database.RequestFilter{
		Kind:     kind,
		Statuses: statuses,
	})
}

// ListScheduled lists the scheduled requests of the given kind whose effect
// falls within [from, to], earliest first. Publications are placed by their
// embargo, deletions by their expiry. Nil bounds are open.
func ListScheduled(
	ctx context.Context,
	be *backend.Backend,
	kind types.RequestKind,
	from, to *time.Time,
) ([]*types.RequestSummary, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	infos, err := be.DB.FindRequestInfos(ctx, database.RequestFilter{
		Kind:     kind,
		Statuses: []types.RequestStatus{types.StatusScheduled},
	})
	if err != nil {
		return nil, err
	}

	var due []*database.RequestInfo
	for _, info := range infos {
		at := scheduledAt(info)
		if at == nil {
			continue
		}
		if from != nil && at.Before(*from) {
			continue
		}
		if to != nil && at.After(*to) {
			continue
		}
		due = append(due, info)
	}

	summaries, err := summarize(ctx, be, due)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := scheduledAtOf(summaries[i]), scheduledAtOf(summaries[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// ListRecentlyPublished lists the completed publication requests whose
// publication falls within [from, to], most recent first. Nil bounds are
// open.
func ListRecentlyPublished(
	ctx context.Context,
	be *backend.Backend,
	from, to *time.Time,
) ([]*types.RequestSummary, error) {
	infos, err := be.DB.FindRequestInfos(ctx, database.RequestFilter{
		Kind:     types.PublicationRequest,
		Statuses: []types.RequestStatus{types.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}

	var published []*database.RequestInfo
	for _, info := range infos {
		at := completedAt(info)
		if at == nil {
			continue
		}
		if from != nil && at.Before(*from) {
			continue
		}
		if to != nil && at.After(*to) {
			continue
		}
		published = append(published, info)
	}

	summaries, err := summarize(ctx, be, published)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := *summaries[i].CompletedAt, *summaries[j].CompletedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func list(ctx context.Context, be *backend.Backend, filter database.RequestFilter) ([]*types.RequestSummary, error) {
	if filter.Kind != "" {
		if err := filter.Kind.Validate(); err != nil {
			return nil, err
		}
	}

	infos, err := be.DB.FindRequestInfos(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries, err := summarize(ctx, be, infos)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].DocumentUpdatedAt, summaries[j].DocumentUpdatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// summarize joins the requests with their documents. Requests whose document
// is gone are skipped.
func summarize(
	ctx context.Context,
	be *backend.Backend,
	infos []*database.RequestInfo,
) ([]*types.RequestSummary, error) {
	if len(infos) == 0 {
		return nil, nil
	}

	ids := make([]types.ID, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.DocumentID)
	}
	docs, err := be.DB.FindDocInfosByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[types.ID]*database.DocInfo, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	summaries := make([]*types.RequestSummary, 0, len(infos))
	for _, info := range infos {
		doc, ok := byID[info.DocumentID]
		if !ok {
			continue
		}
		summaries = append(summaries, &types.RequestSummary{
			ID:                info.ID,
			Kind:              info.Kind,
			Status:            info.Status,
			DocumentID:        info.DocumentID,
			DocumentTitle:     documents.TitleOf(doc, info.Kind),
			AuthorID:          info.AuthorID,
			PublisherID:       info.PublisherID,
			EmbargoAt:         info.EmbargoAt,
			ExpiryAt:          info.ExpiryAt,
			CompletedAt:       completedAt(info),
			DocumentUpdatedAt: doc.UpdatedAt,
			RequestedAt:       info.CreatedAt,
		})
	}
	return summaries, nil
}

// completedAt returns when the request was completed, nil if it was not.
func completedAt(info *database.RequestInfo) *time.Time {
	for i := len(info.Changes) - 1; i >= 0; i-- {
		change := info.Changes[i]
		if change.Status != nil && *change.Status == types.StatusCompleted {
			at := change.CreatedAt
			return &at
		}
	}
	return nil
}

func scheduledAt(info *database.RequestInfo) *time.Time {
	if info.Kind == types.DeletionRequest {
		return info.ExpiryAt
	}
	return info.EmbargoAt
}

func scheduledAtOf(summary *types.RequestSummary) time.Time {
	if summary.Kind == types.DeletionRequest {
		return *summary.ExpiryAt
	}
	return *summary.EmbargoAt
}
