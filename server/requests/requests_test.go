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

package requests_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/documents"
	"github.com/stagegate/stagegate/server/requests"
	"github.com/stagegate/stagegate/server/workflow"
	"github.com/stagegate/stagegate/test/helper"
)

func TestCreateOrReuse(t *testing.T) {
	ctx := context.Background()

	t.Run("new request is not stored until submitted test", func(t *testing.T) {
		be := helper.NewBackend(t)
		doc, err := documents.Create(ctx, be.Backend, "", "Draft", "", helper.Author)
		require.NoError(t, err)

		info, err := requests.CreateOrReuse(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
		}, helper.Author)
		require.NoError(t, err)
		assert.Empty(t, info.ID)
		assert.Equal(t, []string{helper.Publisher}, info.Approvers)

		open, err := requests.OpenRequestFor(ctx, be.Backend, doc.ID)
		require.NoError(t, err)
		assert.Nil(t, open)
	})

	t.Run("explicit approvers win over the defaults test", func(t *testing.T) {
		be := helper.NewBackend(t)
		doc, err := documents.Create(ctx, be.Backend, "", "Draft", "", helper.Author)
		require.NoError(t, err)

		info, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
			Approvers:  []string{helper.OtherAuthor},
		}, helper.Author, "")
		require.NoError(t, err)
		assert.Equal(t, []string{helper.OtherAuthor}, info.Approvers)

		open, err := requests.OpenRequestFor(ctx, be.Backend, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, open)
		assert.Equal(t, info.ID, open.ID)

		be.Background.Wait()
		assert.Empty(t, be.Sender.Sent(), "approvers without the capability are not notified")
	})

	t.Run("invalid fields test", func(t *testing.T) {
		be := helper.NewBackend(t)

		_, err := requests.CreateOrReuse(ctx, be.Backend, &types.CreateRequestFields{
			Kind: types.PublicationRequest,
		}, helper.Author)
		assert.Error(t, err)

		_, err = requests.CreateOrReuse(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: "000000000000000000000000",
			Kind:       "archive",
		}, helper.Author)
		assert.Error(t, err)
	})

	t.Run("no approvers test", func(t *testing.T) {
		conf := helper.PermissionConfig()
		conf.Publishers = nil
		be := helper.NewBackendWithConfig(t, helper.BackendConfig(), conf)
		doc, err := documents.Create(ctx, be.Backend, "", "Draft", "", helper.Author)
		require.NoError(t, err)

		_, err = requests.CreateOrReuse(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
		}, helper.Author)
		assert.ErrorIs(t, err, workflow.ErrNoApprovers)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("most recently modified document first test", func(t *testing.T) {
		be := helper.NewBackend(t)

		var ids []types.ID
		for _, title := range []string{"first", "second", "third"} {
			doc, err := documents.Create(ctx, be.Backend, "", title, "", helper.Author)
			require.NoError(t, err)
			info, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
				DocumentID: doc.ID,
				Kind:       types.PublicationRequest,
			}, helper.Author, "")
			require.NoError(t, err)
			ids = append(ids, info.ID)
			be.Wall.Advance(time.Minute)
		}

		summaries, err := requests.ListByAuthor(ctx, be.Backend, types.PublicationRequest, helper.Author)
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, ids[2], summaries[0].ID)
		assert.Equal(t, ids[1], summaries[1].ID)
		assert.Equal(t, ids[0], summaries[2].ID)
		assert.Equal(t, "third", summaries[0].DocumentTitle)

		mine, err := requests.ListByAuthor(ctx, be.Backend, types.PublicationRequest, helper.OtherAuthor)
		require.NoError(t, err)
		assert.Empty(t, mine)

		pending, err := requests.ListByApprover(
			ctx,
			be.Backend,
			types.PublicationRequest,
			helper.Publisher,
			types.StatusAwaitingApproval,
		)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	})

	t.Run("ties are ordered by request id test", func(t *testing.T) {
		be := helper.NewBackend(t)
		for _, title := range []string{"a", "b"} {
			doc, err := documents.Create(ctx, be.Backend, "", title, "", helper.Author)
			require.NoError(t, err)
			_, _, err = requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
				DocumentID: doc.ID,
				Kind:       types.PublicationRequest,
			}, helper.Author, "")
			require.NoError(t, err)
		}

		summaries, err := requests.ListAll(ctx, be.Backend, "")
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.True(t, summaries[0].DocumentUpdatedAt.Equal(summaries[1].DocumentUpdatedAt))
		assert.Less(t, summaries[0].ID, summaries[1].ID)
	})

	t.Run("status filter test", func(t *testing.T) {
		be := helper.NewBackend(t)
		doc, err := documents.Create(ctx, be.Backend, "", "Draft", "", helper.Author)
		require.NoError(t, err)
		info, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
		}, helper.Author, "")
		require.NoError(t, err)
		_, err = workflow.Approve(ctx, be.Backend, info.ID, helper.Publisher, "")
		require.NoError(t, err)

		open, err := requests.ListAll(ctx, be.Backend, types.PublicationRequest, types.OpenStatuses...)
		require.NoError(t, err)
		assert.Empty(t, open)

		done, err := requests.ListAll(ctx, be.Backend, types.PublicationRequest, types.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, helper.Publisher, done[0].PublisherID)

		deletions, err := requests.ListAll(ctx, be.Backend, types.DeletionRequest)
		require.NoError(t, err)
		assert.Empty(t, deletions)

		_, err = requests.ListAll(ctx, be.Backend, "archive")
		assert.ErrorIs(t, err, types.ErrInvalidKind)
	})

	t.Run("scheduled report test", func(t *testing.T) {
		be := helper.NewBackend(t)

		var ids []types.ID
		for i, hours := range []int{3, 1, 2} {
			doc, err := documents.Create(ctx, be.Backend, "", string(rune('a'+i)), "", helper.Author)
			require.NoError(t, err)
			info, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
				DocumentID: doc.ID,
				Kind:       types.PublicationRequest,
				EmbargoAt:  helper.Ptr(helper.Epoch.Add(time.Duration(hours) * time.Hour)),
			}, helper.Author, "")
			require.NoError(t, err)
			_, err = workflow.Approve(ctx, be.Backend, info.ID, helper.Publisher, "")
			require.NoError(t, err)
			ids = append(ids, info.ID)
		}

		all, err := requests.ListScheduled(ctx, be.Backend, types.PublicationRequest, nil, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []types.ID{ids[1], ids[2], ids[0]}, []types.ID{all[0].ID, all[1].ID, all[2].ID})

		window, err := requests.ListScheduled(
			ctx,
			be.Backend,
			types.PublicationRequest,
			helper.Ptr(helper.Epoch.Add(90*time.Minute)),
			helper.Ptr(helper.Epoch.Add(3*time.Hour)),
		)
		require.NoError(t, err)
		require.Len(t, window, 2)
		assert.Equal(t, ids[2], window[0].ID)

		deletions, err := requests.ListScheduled(ctx, be.Backend, types.DeletionRequest, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, deletions)
	})

	t.Run("recently published report test", func(t *testing.T) {
		be := helper.NewBackend(t)
		day := 24 * time.Hour

		publish := func(title string, at time.Time) types.ID {
			be.Wall.Set(at)
			doc, err := documents.Create(ctx, be.Backend, "", title, "", helper.Author)
			require.NoError(t, err)
			info, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
				DocumentID: doc.ID,
				Kind:       types.PublicationRequest,
			}, helper.Author, "")
			require.NoError(t, err)
			_, err = workflow.Approve(ctx, be.Backend, info.ID, helper.Publisher, "")
			require.NoError(t, err)
			return info.ID
		}
		page1 := publish("Page1", helper.Epoch)
		page2 := publish("Page2", helper.Epoch.Add(5*day))
		page3 := publish("Page3", helper.Epoch.Add(6*day))

		doc, err := documents.Create(ctx, be.Backend, "", "Pending", "", helper.Author)
		require.NoError(t, err)
		_, _, err = requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
		}, helper.Author, "")
		require.NoError(t, err)

		ids := func(summaries []*types.RequestSummary) []types.ID {
			var result []types.ID
			for _, summary := range summaries {
				result = append(result, summary.ID)
			}
			return result
		}

		all, err := requests.ListRecentlyPublished(ctx, be.Backend, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []types.ID{page3, page2, page1}, ids(all))
		require.NotNil(t, all[0].CompletedAt)
		assert.True(t, helper.Epoch.Add(6*day).Equal(*all[0].CompletedAt))

		since, err := requests.ListRecentlyPublished(ctx, be.Backend, helper.Ptr(helper.Epoch.Add(4*day)), nil)
		require.NoError(t, err)
		assert.Equal(t, []types.ID{page3, page2}, ids(since))

		until, err := requests.ListRecentlyPublished(ctx, be.Backend, nil, helper.Ptr(helper.Epoch.Add(4*day)))
		require.NoError(t, err)
		assert.Equal(t, []types.ID{page1}, ids(until))

		window, err := requests.ListRecentlyPublished(
			ctx,
			be.Backend,
			helper.Ptr(helper.Epoch.Add(5*day)),
			helper.Ptr(helper.Epoch.Add(5*day)),
		)
		require.NoError(t, err)
		assert.Equal(t, []types.ID{page2}, ids(window))
	})
}
