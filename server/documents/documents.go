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

// Package documents manages the documents governed by the workflow and reads
// them through the visibility resolver.
package documents

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/pkg/errors"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/backend/sync"
	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/permission"
	"github.com/stagegate/stagegate/server/visibility"
)

var (
	// ErrPermissionDenied is returned when the actor may not edit the document.
	ErrPermissionDenied = errors.PermissionDenied("action not permitted").WithCode("ErrPermissionDenied")

	// ErrEmptyTitle is returned when a draft is saved without a title.
	ErrEmptyTitle = errors.InvalidArgument("title is required").WithCode("ErrEmptyTitle")
)

// Create creates a document with its first draft. The document is not on
// live until it is published.
func Create(
	ctx context.Context,
	be *backend.Backend,
	parentID types.ID,
	title, content, author string,
) (*database.DocInfo, error) {
	title, content = sanitize(title, content)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	if parentID != "" {
		parent, err := be.DB.FindDocInfoByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if !be.Can(ctx, author, permission.CanEdit, parent) {
			return nil, ErrPermissionDenied
		}
	}

	siblings, err := be.DB.FindChildDocInfos(ctx, parentID)
	if err != nil {
		return nil, err
	}

	now := be.Clock.Now()
	info := &database.DocInfo{
		ParentID:  parentID,
		SortIndex: len(siblings),
		Owner:     author,
		CreatedAt: now,
	}
	info.SaveDraft(title, content, now)

	return be.DB.CreateDocInfo(ctx, info)
}

// SaveDraft writes a new draft version of the document.
func SaveDraft(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, title, content string,
) (*database.DocInfo, error) {
	title, content = sanitize(title, content)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	return update(ctx, be, id, actor, func(info *database.DocInfo) {
		info.SaveDraft(title, content, be.Clock.Now())
	})
}

// DeleteFromDraft removes the draft snapshot. The live snapshot stays until a
// deletion request removes it.
func DeleteFromDraft(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor string,
) (*database.DocInfo, error) {
	return update(ctx, be, id, actor, func(info *database.DocInfo) {
		info.DeleteFromDraft(be.Clock.Now())
	})
}

func update(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor string,
	mutate func(info *database.DocInfo),
) (*database.DocInfo, error) {
	locker := be.Lockers.Locker(sync.DocKey(id))
	locker.Lock()
	defer func() {
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	info, err := be.DB.FindDocInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !be.Can(ctx, actor, permission.CanEdit, info) {
		return nil, ErrPermissionDenied
	}

	mutate(info)
	if err := be.DB.UpdateDocInfo(ctx, info); err != nil {
		return nil, err
	}

	return info, nil
}

// Get returns the document as observed at the instant of the context.
func Get(ctx context.Context, be *backend.Backend, id types.ID) (*types.DocumentSummary, error) {
	return GetByStage(ctx, be, id, types.StageLive)
}

// GetByStage returns the snapshot of the given stage at the instant of the
// context. A document that is not visible yields ErrDocumentNotFound.
func GetByStage(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	stage types.Stage,
) (*types.DocumentSummary, error) {
	info, err := be.DB.FindDocInfoByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at := visibility.InstantFrom(ctx, be.Clock)
	res := visibility.ResolveStage(info, stage, at)
	if !res.Visible {
		return nil, fmt.Errorf("%s at %s: %w", id, at.Format(time.RFC3339), database.ErrDocumentNotFound)
	}

	return toSummary(info, res, stage, at), nil
}

// Children lists the visible children of the parent at the instant of the
// context, ordered by sort index and then ID. An empty parent lists the root
// documents.
func Children(
	ctx context.Context,
	be *backend.Backend,
	parentID types.ID,
) ([]*types.DocumentSummary, error) {
	infos, err := be.DB.FindChildDocInfos(ctx, parentID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].SortIndex != infos[j].SortIndex {
			return infos[i].SortIndex < infos[j].SortIndex
		}
		return infos[i].ID < infos[j].ID
	})

	at := visibility.InstantFrom(ctx, be.Clock)
	var summaries []*types.DocumentSummary
	for _, entry := range visibility.Filter(infos, at) {
		summaries = append(summaries, toSummary(entry.Doc, entry.Resolution, types.StageLive, at))
	}

	return summaries, nil
}

// FindForRequest returns the snapshot a request of the given kind is about.
// Deletions read live first since their draft is gone; publications read the
// draft.
func FindForRequest(info *database.DocInfo, kind types.RequestKind) *types.Snapshot {
	if info == nil {
		return nil
	}

	if kind == types.DeletionRequest && info.Live != nil {
		return info.Live.DeepCopy()
	}
	if info.Draft != nil {
		return info.Draft.DeepCopy()
	}
	return info.Live.DeepCopy()
}

// TitleOf returns the title shown for the document in a request of the
// given kind.
func TitleOf(info *database.DocInfo, kind types.RequestKind) string {
	if snapshot := FindForRequest(info, kind); snapshot != nil {
		return snapshot.Title
	}
	return ""
}

func toSummary(
	info *database.DocInfo,
	res types.Resolution,
	stage types.Stage,
	at time.Time,
) *types.DocumentSummary {
	return &types.DocumentSummary{
		ID:            info.ID,
		ParentID:      info.ParentID,
		Owner:         info.Owner,
		Resolution:    res,
		EmbargoAt:     info.EmbargoAt,
		ExpiryAt:      info.ExpiryAt,
		OpenRequestID: info.OpenRequestID,
		Stage:         stage,
		EvaluatedAt:   at,
		UpdatedAt:     info.UpdatedAt,
	}
}
