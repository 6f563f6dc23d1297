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

package rpc_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/rpc"
	"github.com/stagegate/stagegate/server/rpc/auth"
	"github.com/stagegate/stagegate/test/helper"
)

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	be := helper.NewBackend(t)
	server := rpc.NewServer(&rpc.Config{
		Port:         11101,
		ReadTimeout:  "5s",
		WriteTimeout: "5s",
	}, be.Backend)
	t.Cleanup(func() { server.Shutdown(false) })

	return &testServer{
		handler: server.Handler(),
		tokens:  auth.NewTokenManager(helper.SecretKey, time.Hour),
	}
}

func (s *testServer) do(t *testing.T, actor, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		token, err := s.tokens.Generate(actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("health needs no token test", func(t *testing.T) {
		rec := s.do(t, "", http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token test", func(t *testing.T) {
		rec := s.do(t, "", http.MethodGet, "/documents", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "ErrUnauthenticated", decode[errorBody](t, rec).Code)
	})

	t.Run("foreign token test", func(t *testing.T) {
		token, err := auth.NewTokenManager("another-secret", time.Hour).Generate(helper.Author)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWorkflowAPI(t *testing.T) {
	s := newTestServer(t)

	type document struct {
		ID    types.ID        `json:"id"`
		Draft *types.Snapshot `json:"draft"`
	}
	type request struct {
		ID      types.ID            `json:"id"`
		Status  types.RequestStatus `json:"status"`
		Changes []map[string]any    `json:"changes"`
	}
	type submitted struct {
		Request request              `json:"request"`
		Event   events.WorkflowEvent `json:"event"`
	}

	rec := s.do(t, helper.Author, http.MethodPost, "/documents", map[string]any{
		"title":   "Opening hours",
		"content": "9 to 5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := decode[document](t, rec)
	assert.Equal(t, int64(1), doc.Draft.Version)

	rec = s.do(t, helper.Author, http.MethodGet, "/documents/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	notFound := decode[errorBody](t, rec)
	assert.Equal(t, "ErrDocumentNotFound", notFound.Code)
	assert.Equal(t, "document not found", notFound.Error)
	assert.NotContains(t, notFound.Error, doc.ID.String())

	rec = s.do(t, helper.Author, http.MethodGet, "/documents/"+doc.ID.String()+"?stage=draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[types.DocumentSummary](t, rec)
	assert.Equal(t, "Opening hours", summary.Resolution.Snapshot.Title)

	rec = s.do(t, helper.Author, http.MethodPost, "/requests", map[string]any{
		"document_id": doc.ID,
		"kind":        "publication",
		"comment":     "ready",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[submitted](t, rec)
	assert.Equal(t, types.StatusAwaitingApproval, sub.Request.Status)
	assert.Equal(t, events.RequestedEvent, sub.Event.Type)

	path := "/requests/" + sub.Request.ID.String()

	rec = s.do(t, helper.Author, http.MethodPost, path+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ErrPermissionDenied", decode[errorBody](t, rec).Code)

	rec = s.do(t, helper.Publisher, http.MethodPost, path+"/comment", map[string]any{"comment": "checking"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, helper.Publisher, http.MethodPost, path+"/approve", map[string]any{"comment": "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, events.PublishedEvent, decode[events.WorkflowEvent](t, rec).Type)

	rec = s.do(t, helper.Publisher, http.MethodPost, path+"/deny", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	denied := decode[errorBody](t, rec)
	assert.Equal(t, "ErrInvalidTransition", denied.Code)
	assert.Equal(t, "action not permitted in the current status", denied.Error)
	assert.NotContains(t, denied.Error, sub.Request.ID.String())

	rec = s.do(t, helper.Author, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[request](t, rec)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.Len(t, got.Changes, 4)

	rec = s.do(t, helper.Author, http.MethodGet, path+"/changes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 4)

	rec = s.do(t, helper.Outsider, http.MethodGet, "/documents/"+doc.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, helper.Author, http.MethodGet, "/requests?author="+helper.Author+"&status=Completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.RequestSummary](t, rec), 1)

	rec = s.do(t, helper.Author, http.MethodGet, "/reports/published", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	published := decode[[]types.RequestSummary](t, rec)
	require.Len(t, published, 1)
	assert.Equal(t, sub.Request.ID, published[0].ID)
	assert.NotNil(t, published[0].CompletedAt)

	rec = s.do(t, helper.Author, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.DocumentSummary](t, rec), 1)
}

func TestInvalidInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"bad instant", http.MethodGet, "/documents?at=yesterday", nil, http.StatusBadRequest},
		{"bad stage", http.MethodGet, "/documents/000000000000000000000000?stage=pending", nil, http.StatusBadRequest},
		{"unknown document", http.MethodGet, "/documents/000000000000000000000000", nil, http.StatusNotFound},
		{"unknown request", http.MethodGet, "/requests/000000000000000000000000", nil, http.StatusNotFound},
		{"bad status", http.MethodGet, "/requests?status=Open", nil, http.StatusBadRequest},
		{"bad kind", http.MethodGet, "/requests?kind=archive", nil, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/documents", map[string]any{"content": "x"}, http.StatusBadRequest},
		{"bad request fields", http.MethodPost, "/requests", map[string]any{"kind": "publication"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name+" test", func(t *testing.T) {
			rec := s.do(t, helper.Author, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestPreviewAPI(t *testing.T) {
	s := newTestServer(t)
	at := helper.Epoch.Add(48 * time.Hour)

	rec := s.do(t, helper.Author, http.MethodPut, "/preview", map[string]any{"at": at})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, helper.Publisher, http.MethodPut, "/preview", map[string]any{"at": at})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, helper.Publisher, http.MethodPut, "/preview", map[string]any{"at": at})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ErrPreviewInProgress", decode[errorBody](t, rec).Code)

	rec = s.do(t, helper.Author, http.MethodGet, "/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[struct {
		At *time.Time `json:"at"`
	}](t, rec)
	require.NotNil(t, current.At)
	assert.True(t, at.Equal(*current.At))

	rec = s.do(t, helper.Publisher, http.MethodDelete, "/preview", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, helper.Publisher, http.MethodPut, "/preview", map[string]any{"at": at})
	assert.Equal(t, http.StatusOK, rec.Code)
}
