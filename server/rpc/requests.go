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

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/requests"
	"github.com/stagegate/stagegate/server/workflow"
)

type submitRequest struct {
	types.CreateRequestFields
	Comment string `json:"comment"`
}

type submitResponse struct {
	Request *requestResponse      `json:"request"`
	Event   *events.WorkflowEvent `json:"event"`
}

type approveRequest struct {
	Comment   string     `json:"comment"`
	EmbargoAt *time.Time `json:"embargo_at"`
	ExpiryAt  *time.Time `json:"expiry_at"`
}

func (h *handlers) submitRequest(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidArgument(err))
		return
	}

	info, event, err := requests.Submit(c.Request.Context(), h.be, &req.CreateRequestFields, actorOf(c), req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &submitResponse{
		Request: toRequestResponse(info),
		Event:   event,
	})
}

func (h *handlers) getRequest(c *gin.Context) {
	info, err := workflow.Find(c.Request.Context(), h.be, types.ID(c.Param("id")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRequestResponse(info))
}

func (h *handlers) listChanges(c *gin.Context) {
	changes, err := workflow.ChangesOf(c.Request.Context(), h.be, types.ID(c.Param("id")))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toChangesResponse(changes))
}

func (h *handlers) approveRequest(c *gin.Context) {
	var req approveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	schedule := &types.ScheduleFields{EmbargoAt: req.EmbargoAt, ExpiryAt: req.ExpiryAt}
	if err := schedule.Validate(); err != nil {
		abortWithError(c, err)
		return
	}

	event, err := workflow.ApproveWithSchedule(
		c.Request.Context(),
		h.be,
		types.ID(c.Param("id")),
		actorOf(c),
		req.Comment,
		schedule,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *handlers) denyRequest(c *gin.Context) {
	h.transition(c, workflow.Deny)
}

func (h *handlers) requestEdit(c *gin.Context) {
	h.transition(c, workflow.RequestEdit)
}

func (h *handlers) commentRequest(c *gin.Context) {
	h.transition(c, workflow.Comment)
}

func (h *handlers) transition(c *gin.Context, fn transitionFunc) {
	var req commentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, err)
		return
	}

	event, err := fn(c.Request.Context(), h.be, types.ID(c.Param("id")), actorOf(c), req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *handlers) listRequests(c *gin.Context) {
	kind := types.RequestKind(c.Query("kind"))

	var statuses []types.RequestStatus
	for _, raw := range c.QueryArray("status") {
		status := types.RequestStatus(raw)
		if err := status.Validate(); err != nil {
			abortWithError(c, invalidArgument(err))
			return
		}
		statuses = append(statuses, status)
	}

	var summaries []*types.RequestSummary
	var err error
	switch {
	case c.Query("author") != "":
		summaries, err = requests.ListByAuthor(c.Request.Context(), h.be, kind, c.Query("author"), statuses...)
	case c.Query("approver") != "":
		summaries, err = requests.ListByApprover(c.Request.Context(), h.be, kind, c.Query("approver"), statuses...)
	default:
		summaries, err = requests.ListAll(c.Request.Context(), h.be, kind, statuses...)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summaries == nil {
		summaries = []*types.RequestSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *handlers) listScheduled(c *gin.Context) {
	from, err := optionalTime(c, "from")
	if err != nil {
		abortWithError(c, err)
		return
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		abortWithError(c, err)
		return
	}

	kind := types.RequestKind(c.DefaultQuery("kind", string(types.PublicationRequest)))
	summaries, err := requests.ListScheduled(c.Request.Context(), h.be, kind, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summaries == nil {
		summaries = []*types.RequestSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *handlers) listPublished(c *gin.Context) {
	from, err := optionalTime(c, "from")
	if err != nil {
		abortWithError(c, err)
		return
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		abortWithError(c, err)
		return
	}

	summaries, err := requests.ListRecentlyPublished(c.Request.Context(), h.be, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summaries == nil {
		summaries = []*types.RequestSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}
