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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/server/permission"
	"github.com/stagegate/stagegate/server/workflow"
)

type previewRequest struct {
	At time.Time `json:"at" binding:"required"`
}

type previewResponse struct {
	At *time.Time `json:"at"`
}

func (h *handlers) getPreview(c *gin.Context) {
	c.JSON(http.StatusOK, &previewResponse{At: h.be.Clock.SimulatedInstant()})
}

// putPreview makes every read of the process evaluate at the given instant
// until the preview is deleted. Only publishers may preview.
func (h *handlers) putPreview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidArgument(err))
		return
	}
	if !h.be.Can(c.Request.Context(), actorOf(c), permission.CanPublish, nil) {
		abortWithError(c, workflow.ErrPermissionDenied)
		return
	}

	h.previewMu.Lock()
	defer h.previewMu.Unlock()

	preview, err := h.be.Clock.BeginPreview(req.At)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.preview = preview

	c.JSON(http.StatusOK, &previewResponse{At: h.be.Clock.SimulatedInstant()})
}

func (h *handlers) deletePreview(c *gin.Context) {
	if !h.be.Can(c.Request.Context(), actorOf(c), permission.CanPublish, nil) {
		abortWithError(c, workflow.ErrPermissionDenied)
		return
	}

	h.endPreview()
	c.Status(http.StatusNoContent)
}

func (h *handlers) endPreview() {
	h.previewMu.Lock()
	defer h.previewMu.Unlock()

	if h.preview != nil {
		h.preview.End()
		h.preview = nil
	}
}
