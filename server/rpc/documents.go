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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/documents"
	"github.com/stagegate/stagegate/server/workflow"
)

type createDocumentRequest struct {
	ParentID types.ID `json:"parent_id"`
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content"`
}

type saveDraftRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

func (h *handlers) createDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidArgument(err))
		return
	}

	info, err := documents.Create(c.Request.Context(), h.be, req.ParentID, req.Title, req.Content, actorOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(info))
}

func (h *handlers) saveDraft(c *gin.Context) {
	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidArgument(err))
		return
	}

	info, err := documents.SaveDraft(c.Request.Context(), h.be, docID(c), actorOf(c), req.Title, req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDocumentResponse(info))
}

func (h *handlers) deleteFromDraft(c *gin.Context) {
	info, err := documents.DeleteFromDraft(c.Request.Context(), h.be, docID(c), actorOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDocumentResponse(info))
}

func (h *handlers) publishDocument(c *gin.Context) {
	var req commentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	event, err := workflow.PublishDirect(c.Request.Context(), h.be, docID(c), actorOf(c), req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *handlers) cancelExpiry(c *gin.Context) {
	var req commentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	event, err := workflow.CancelExpiry(c.Request.Context(), h.be, docID(c), actorOf(c), req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *handlers) getDocument(c *gin.Context) {
	ctx, err := instantContext(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	stage := types.Stage(c.DefaultQuery("stage", string(types.StageLive)))
	if stage != types.StageLive && stage != types.StageDraft {
		abortWithError(c, invalidArgument(fmt.Errorf("unknown stage %q", stage)))
		return
	}

	summary, err := documents.GetByStage(ctx, h.be, docID(c), stage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlers) listRootDocuments(c *gin.Context) {
	h.children(c, "")
}

func (h *handlers) listChildren(c *gin.Context) {
	h.children(c, docID(c))
}

func (h *handlers) children(c *gin.Context, parentID types.ID) {
	ctx, err := instantContext(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	summaries, err := documents.Children(ctx, h.be, parentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summaries == nil {
		summaries = []*types.DocumentSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}
