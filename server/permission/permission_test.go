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

package permission_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/permission"
)

func TestPolicy(t *testing.T) {
	ctx := context.Background()
	doc := &database.DocInfo{ID: "65a1b2c3d4e5f60718293a4b", Owner: "owner"}

	policy := permission.NewPolicy(&permission.Config{
		Editors:    []string{"editor"},
		Publishers: []string{"publisher-b", "publisher-a", "publisher-a"},
	})

	tests := []struct {
		actor      string
		capability permission.Capability
		want       bool
	}{
		{"owner", permission.CanEdit, true},
		{"editor", permission.CanEdit, true},
		{"publisher-a", permission.CanEdit, true},
		{"stranger", permission.CanEdit, false},
		{"", permission.CanEdit, false},
		{"editor", permission.CanPublish, false},
		{"publisher-b", permission.CanPublish, true},
		{"publisher-b", permission.CanDeleteFromLive, true},
		{"editor", permission.CanDeleteFromLive, false},
	}
	for _, tt := range tests {
		allowed, err := policy.Check(ctx, tt.actor, tt.capability, doc)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, allowed, "%s %s", tt.actor, tt.capability)
	}

	_, err := policy.Check(ctx, "editor", permission.Capability("fly"), doc)
	assert.ErrorIs(t, err, permission.ErrUnknownCapability)

	approvers, err := policy.ApproversFor(ctx, doc)
	assert.NoError(t, err)
	assert.Equal(t, []string{"publisher-a", "publisher-b"}, approvers)

	t.Run("wildcard and deleters test", func(t *testing.T) {
		open := permission.NewPolicy(&permission.Config{
			Editors:    []string{permission.Wildcard},
			Publishers: []string{"chief", permission.Wildcard},
			Deleters:   []string{"chief"},
		})

		allowed, err := open.Check(ctx, "anyone", permission.CanPublish, doc)
		assert.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = open.Check(ctx, "anyone", permission.CanDeleteFromLive, doc)
		assert.NoError(t, err)
		assert.False(t, allowed)

		approvers, err := open.ApproversFor(ctx, doc)
		assert.NoError(t, err)
		assert.Equal(t, []string{"chief"}, approvers)
	})
}

func TestWebhookChecker(t *testing.T) {
	ctx := context.Background()
	doc := &database.DocInfo{ID: "65a1b2c3d4e5f60718293a4b", Owner: "owner"}

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var req permission.CheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, doc.ID, req.DocumentID)

		allowed := req.Actor == "publisher" && req.Capability == permission.CanPublish
		assert.NoError(t, json.NewEncoder(w).Encode(permission.CheckResponse{Allowed: allowed}))
	}))
	defer server.Close()

	conf := &permission.Config{
		Publishers:             []string{"publisher"},
		WebhookURL:             server.URL,
		WebhookMaxWaitInterval: "10ms",
		WebhookCacheSize:       10,
		WebhookCacheTTL:        "1m",
		AllowPrivateWebhook:    true,
	}
	assert.NoError(t, conf.Validate())

	checker := permission.New(conf)
	require.IsType(t, &permission.WebhookChecker{}, checker)

	allowed, err := checker.Check(ctx, "publisher", permission.CanPublish, doc)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.Check(ctx, "publisher", permission.CanPublish, doc)
	assert.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	allowed, err = checker.Check(ctx, "editor", permission.CanPublish, doc)
	assert.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	approvers, err := checker.ApproversFor(ctx, doc)
	assert.NoError(t, err)
	assert.Equal(t, []string{"publisher"}, approvers)

	t.Run("unreachable webhook test", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer down.Close()

		failing := *conf
		failing.WebhookURL = down.URL
		_, err := permission.New(&failing).Check(ctx, "publisher", permission.CanPublish, doc)
		assert.Error(t, err)
	})
}

func TestConfig(t *testing.T) {
	conf := permission.Config{Publishers: []string{"publisher"}}
	assert.NoError(t, conf.Validate())
	assert.IsType(t, &permission.Policy{}, permission.New(&conf))

	conf.WebhookURL = "ftp://example.com"
	assert.Error(t, conf.Validate())

	conf.WebhookURL = "http://127.0.0.1:8080"
	conf.AllowPrivateWebhook = true
	conf.WebhookMaxWaitInterval = "1s"
	conf.WebhookCacheTTL = "1m"
	assert.Error(t, conf.Validate())

	conf.WebhookCacheSize = 16
	assert.NoError(t, conf.Validate())
}
