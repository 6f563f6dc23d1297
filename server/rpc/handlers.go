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

package rpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"runtime"
	gosync "sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/internal/version"
	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/rpc/auth"
	"github.com/stagegate/stagegate/server/visibility"
)

// handlers serves the routes of the API on top of the backend.
type handlers struct {
	be *backend.Backend

	previewMu gosync.Mutex
	preview   *visibility.Preview
}

func newHandlers(be *backend.Backend) *handlers {
	return &handlers{be: be}
}

func (h *handlers) register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, &types.VersionDetail{
			StagegateVersion: version.Version,
			GoVersion:        runtime.Version(),
			BuildDate:        version.BuildDate,
		})
	})

	api := r.Group("/")
	api.Use(authMiddleware(h.tokenManager()))

	api.GET("/documents", h.listRootDocuments)
	api.POST("/documents", h.createDocument)
	api.GET("/documents/:id", h.getDocument)
	api.GET("/documents/:id/children", h.listChildren)
	api.GET("/documents/:id/events", h.streamEvents)
	api.PUT("/documents/:id/draft", h.saveDraft)
	api.DELETE("/documents/:id/draft", h.deleteFromDraft)
	api.POST("/documents/:id/publish", h.publishDocument)
	api.DELETE("/documents/:id/expiry", h.cancelExpiry)

	api.GET("/requests", h.listRequests)
	api.POST("/requests", h.submitRequest)
	api.GET("/requests/:id", h.getRequest)
	api.GET("/requests/:id/changes", h.listChanges)
	api.POST("/requests/:id/approve", h.approveRequest)
	api.POST("/requests/:id/deny", h.denyRequest)
	api.POST("/requests/:id/requestedit", h.requestEdit)
	api.POST("/requests/:id/comment", h.commentRequest)

	api.GET("/reports/scheduled", h.listScheduled)
	api.GET("/reports/published", h.listPublished)

	api.GET("/preview", h.getPreview)
	api.PUT("/preview", h.putPreview)
	api.DELETE("/preview", h.deletePreview)
}

// commentRequest is the body of the calls that only carry a comment.
type commentRequest struct {
	Comment string `json:"comment"`
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return invalidArgument(err)
	}
	return nil
}

// instantContext carries the "at" query parameter of the call as the
// evaluation instant of its reads.
func instantContext(c *gin.Context) (context.Context, error) {
	ctx := c.Request.Context()
	raw := c.Query("at")
	if raw == "" {
		return ctx, nil
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalidArgument(err)
	}
	return visibility.WithInstant(ctx, at), nil
}

// optionalTime parses the query parameter as RFC 3339, nil when absent.
func optionalTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalidArgument(err)
	}
	return &t, nil
}

func docID(c *gin.Context) types.ID {
	return types.ID(c.Param("id"))
}

func (h *handlers) tokenManager() *auth.TokenManager {
	return auth.NewTokenManager(h.be.Config.SecretKey, h.be.Config.ParseTokenDuration())
}

// transitionFunc is a workflow transition that only takes a comment.
type transitionFunc func(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
	actor, comment string,
) (*events.WorkflowEvent, error)
