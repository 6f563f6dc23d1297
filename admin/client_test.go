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

package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stagegate/stagegate/admin"
	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/internal/version"
	"github.com/stagegate/stagegate/server/documents"
	"github.com/stagegate/stagegate/server/requests"
	"github.com/stagegate/stagegate/server/rpc"
	"github.com/stagegate/stagegate/server/rpc/auth"
	"github.com/stagegate/stagegate/test/helper"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	be := helper.NewBackend(t)
	srv := httptest.NewServer(rpc.NewServer(&rpc.Config{
		Port:         11102,
		ReadTimeout:  "5s",
		WriteTimeout: "5s",
	}, be.Backend).Handler())
	t.Cleanup(srv.Close)

	token, err := auth.NewTokenManager(helper.SecretKey, time.Hour).Generate(helper.Author)
	require.NoError(t, err)

	cli, err := admin.Dial(srv.URL, admin.WithToken(token), admin.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(cli.Close)

	doc, err := documents.Create(ctx, be.Backend, "", "Menu", "soup", helper.Author)
	require.NoError(t, err)

	t.Run("server version test", func(t *testing.T) {
		detail, err := cli.ServerVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, version.Version, detail.StagegateVersion)
	})

	t.Run("get document test", func(t *testing.T) {
		summary, err := cli.GetDocument(ctx, doc.ID, types.StageDraft, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, "Menu", summary.Resolution.Snapshot.Title)

		_, err = cli.GetDocument(ctx, doc.ID, types.StageLive, helper.Epoch)
		var apiErr *admin.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "ErrDocumentNotFound", apiErr.Code)
	})

	t.Run("list requests test", func(t *testing.T) {
		_, _, err := requests.Submit(ctx, be.Backend, &types.CreateRequestFields{
			DocumentID: doc.ID,
			Kind:       types.PublicationRequest,
		}, helper.Author, "")
		require.NoError(t, err)

		summaries, err := cli.ListRequests(ctx, admin.RequestFilter{
			Author:   helper.Author,
			Statuses: []types.RequestStatus{types.StatusAwaitingApproval},
		})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, "Menu", summaries[0].DocumentTitle)

		summaries, err = cli.ListRequests(ctx, admin.RequestFilter{Approver: helper.Author})
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("unauthenticated test", func(t *testing.T) {
		anonymous, err := admin.Dial(srv.URL, admin.WithLogger(zap.NewNop()))
		require.NoError(t, err)

		_, err = anonymous.ListRequests(ctx, admin.RequestFilter{})
		var apiErr *admin.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})
}
