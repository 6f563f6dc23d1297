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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
)

var baseTime = gotime.Date(2020, 6, 1, 12, 0, 0, 0, gotime.UTC)

func createDoc(t *testing.T, db database.Database, parentID types.ID, title string) *database.DocInfo {
	info := &database.DocInfo{
		ParentID:  parentID,
		Owner:     "author",
		CreatedAt: baseTime,
	}
	info.SaveDraft(title, "content of "+title, baseTime)

	created, err := db.CreateDocInfo(context.Background(), info)
	require.NoError(t, err)
	require.NoError(t, created.ID.Validate())
	return created
}

// RunFindDocInfoTest runs the document lookups for the given db.
func RunFindDocInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("find docInfo test", func(t *testing.T) {
		doc := createDoc(t, db, "", t.Name())

		found, err := db.FindDocInfoByID(ctx, doc.ID)
		assert.NoError(t, err)
		assert.Equal(t, doc.ID, found.ID)
		assert.Equal(t, t.Name(), found.Draft.Title)
		assert.Nil(t, found.Live)

		_, err = db.FindDocInfoByID(ctx, types.ID("000000000000000000000000"))
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
	})

	t.Run("update docInfo test", func(t *testing.T) {
		doc := createDoc(t, db, "", t.Name())
		doc.SaveDraft("second", "body", baseTime.Add(gotime.Minute))
		assert.NoError(t, db.UpdateDocInfo(ctx, doc))

		found, err := db.FindDocInfoByID(ctx, doc.ID)
		assert.NoError(t, err)
		assert.Equal(t, "second", found.Draft.Title)
		assert.Equal(t, int64(2), found.Draft.Version)

		missing := doc.DeepCopy()
		missing.ID = types.ID("000000000000000000000000")
		assert.ErrorIs(t, db.UpdateDocInfo(ctx, missing), database.ErrDocumentNotFound)
	})

	t.Run("find children test", func(t *testing.T) {
		parent := createDoc(t, db, "", t.Name())
		first := createDoc(t, db, parent.ID, "first")
		second := createDoc(t, db, parent.ID, "second")
		createDoc(t, db, first.ID, "grandchild")

		children, err := db.FindChildDocInfos(ctx, parent.ID)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []types.ID{first.ID, second.ID}, docIDs(children))

		found, err := db.FindDocInfosByIDs(ctx, []types.ID{second.ID, "000000000000000000000000", first.ID})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []types.ID{first.ID, second.ID}, docIDs(found))
	})
}

// RunFindDueDocInfosTest runs the schedule lookups for the given db.
func RunFindDueDocInfosTest(t *testing.T, db database.Database) {
	ctx := context.Background()
	embargo := baseTime.Add(24 * gotime.Hour)
	expiry := baseTime.Add(48 * gotime.Hour)

	doc := createDoc(t, db, "", t.Name())
	doc.PromoteDraftToLive(baseTime)
	doc.StagePending(&embargo, &expiry, baseTime)
	require.NoError(t, db.UpdateDocInfo(ctx, doc))

	due, err := db.FindDueDocInfos(ctx, embargo.Add(-gotime.Second))
	assert.NoError(t, err)
	assert.NotContains(t, docIDs(due), doc.ID)

	due, err = db.FindDueDocInfos(ctx, embargo)
	assert.NoError(t, err)
	assert.Contains(t, docIDs(due), doc.ID)

	doc.ApplyPending(embargo)
	require.NoError(t, db.UpdateDocInfo(ctx, doc))

	due, err = db.FindDueDocInfos(ctx, expiry.Add(-gotime.Second))
	assert.NoError(t, err)
	assert.NotContains(t, docIDs(due), doc.ID)

	due, err = db.FindDueDocInfos(ctx, expiry)
	assert.NoError(t, err)
	assert.Contains(t, docIDs(due), doc.ID)
}

// RunApplyTransitionTest runs the transactional writes for the given db.
func RunApplyTransitionTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("create and replace request test", func(t *testing.T) {
		doc := createDoc(t, db, "", t.Name())

		req := &database.RequestInfo{
			Kind:       types.PublicationRequest,
			DocumentID: doc.ID,
			AuthorID:   "author",
			Approvers:  []string{"approver"},
			CreatedAt:  baseTime,
		}
		req.Record("author", "please review", types.StatusAwaitingApproval.Ptr(), doc, baseTime)

		assert.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: req, Document: doc}))
		assert.NoError(t, req.ID.Validate())

		linked, err := db.FindDocInfoByID(ctx, doc.ID)
		assert.NoError(t, err)
		assert.Equal(t, req.ID, linked.OpenRequestID)

		req.Record("approver", "ok", types.StatusApproved.Ptr(), doc, baseTime)
		doc.PromoteDraftToLive(baseTime)
		req.Record("approver", "", types.StatusCompleted.Ptr(), doc, baseTime)
		assert.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: req, Document: doc}))

		stored, err := db.FindRequestInfoByID(ctx, req.ID)
		assert.NoError(t, err)
		assert.Equal(t, types.StatusCompleted, stored.Status)
		assert.Len(t, stored.Changes, 3)
		assert.Equal(t, types.StatusAwaitingApproval, *stored.Changes[0].Status)
		assert.Equal(t, "please review", stored.Changes[0].Comment)
		assert.Equal(t, int64(1), *stored.Changes[2].LiveVersion)

		storedDoc, err := db.FindDocInfoByID(ctx, doc.ID)
		assert.NoError(t, err)
		assert.True(t, storedDoc.ExistsOnLive())
		assert.Empty(t, storedDoc.OpenRequestID)

		_, err = db.FindOpenRequestInfo(ctx, doc.ID)
		assert.ErrorIs(t, err, database.ErrRequestNotFound)
	})

	t.Run("second open request is rejected test", func(t *testing.T) {
		doc := createDoc(t, db, "", t.Name())

		first := &database.RequestInfo{Kind: types.PublicationRequest, DocumentID: doc.ID, AuthorID: "a"}
		first.Record("a", "", types.StatusAwaitingApproval.Ptr(), doc, baseTime)
		assert.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: first}))

		second := &database.RequestInfo{Kind: types.DeletionRequest, DocumentID: doc.ID, AuthorID: "b"}
		second.Record("b", "", types.StatusAwaitingApproval.Ptr(), doc, baseTime)
		assert.ErrorIs(t, db.ApplyTransition(ctx, &database.Transition{Request: second}), database.ErrOpenRequestExists)

		open, err := db.FindOpenRequestInfo(ctx, doc.ID)
		assert.NoError(t, err)
		assert.Equal(t, first.ID, open.ID)

		all, err := db.FindRequestInfos(ctx, database.RequestFilter{DocumentID: doc.ID})
		assert.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("failed transition leaves nothing behind test", func(t *testing.T) {
		doc := createDoc(t, db, "", t.Name())

		req := &database.RequestInfo{Kind: types.PublicationRequest, DocumentID: doc.ID, AuthorID: "a"}
		req.Record("a", "", types.StatusAwaitingApproval.Ptr(), doc, baseTime)
		assert.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: req}))

		missing := doc.DeepCopy()
		missing.ID = types.ID("000000000000000000000000")
		req.Record("b", "", types.StatusDenied.Ptr(), doc, baseTime)
		err := db.ApplyTransition(ctx, &database.Transition{Request: req, Document: missing})
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)

		stored, err := db.FindRequestInfoByID(ctx, req.ID)
		assert.NoError(t, err)
		assert.Equal(t, types.StatusAwaitingApproval, stored.Status)
		assert.Len(t, stored.Changes, 1)
	})

	t.Run("unknown request is rejected test", func(t *testing.T) {
		req := &database.RequestInfo{
			ID:         types.ID("000000000000000000000000"),
			Kind:       types.PublicationRequest,
			DocumentID: types.ID("000000000000000000000000"),
			AuthorID:   "a",
			Status:     types.StatusDenied,
		}
		err := db.ApplyTransition(ctx, &database.Transition{Request: req})
		assert.ErrorIs(t, err, database.ErrRequestNotFound)
	})
}

// RunFindRequestInfosTest runs the request listings for the given db.
func RunFindRequestInfosTest(t *testing.T, db database.Database) {
	ctx := context.Background()
	author := t.Name() + "-author"

	var ids []types.ID
	for i, kind := range []types.RequestKind{
		types.PublicationRequest,
		types.DeletionRequest,
		types.PublicationRequest,
	} {
		doc := createDoc(t, db, "", t.Name())
		req := &database.RequestInfo{
			Kind:       kind,
			DocumentID: doc.ID,
			AuthorID:   author,
			Approvers:  []string{"approver-" + string(rune('a'+i))},
		}
		req.Record(author, "", types.StatusAwaitingApproval.Ptr(), doc, baseTime)
		require.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: req}))
		ids = append(ids, req.ID)
	}

	denied, err := db.FindRequestInfoByID(ctx, ids[2])
	require.NoError(t, err)
	denied.Record("approver-c", "no", types.StatusDenied.Ptr(), nil, baseTime)
	require.NoError(t, db.ApplyTransition(ctx, &database.Transition{Request: denied}))

	infos, err := db.FindRequestInfos(ctx, database.RequestFilter{AuthorID: author})
	assert.NoError(t, err)
	assert.Equal(t, ids, requestIDs(infos))

	infos, err = db.FindRequestInfos(ctx, database.RequestFilter{
		AuthorID: author,
		Kind:     types.PublicationRequest,
	})
	assert.NoError(t, err)
	assert.Equal(t, []types.ID{ids[0], ids[2]}, requestIDs(infos))

	infos, err = db.FindRequestInfos(ctx, database.RequestFilter{
		AuthorID: author,
		Statuses: types.OpenStatuses,
	})
	assert.NoError(t, err)
	assert.Equal(t, []types.ID{ids[0], ids[1]}, requestIDs(infos))

	infos, err = db.FindRequestInfos(ctx, database.RequestFilter{Approver: "approver-b"})
	assert.NoError(t, err)
	assert.Contains(t, requestIDs(infos), ids[1])
	assert.NotContains(t, requestIDs(infos), ids[0])
}

func docIDs(infos []*database.DocInfo) []types.ID {
	var ids []types.ID
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}

func requestIDs(infos []*database.RequestInfo) []types.ID {
	var ids []types.ID
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}
