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
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/server/logging"
)

// streamEvents streams the workflow events of the document as server-sent
// events until the client goes away. The document "-" streams every
// document.
func (h *handlers) streamEvents(c *gin.Context) {
	id := docID(c)
	if id == "-" {
		id = ""
	} else if _, err := h.be.DB.FindDocInfoByID(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	sub := h.be.PubSub.Subscribe(ctx, actorOf(c), id)
	defer h.be.PubSub.Unsubscribe(ctx, sub)

	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logging.From(ctx).Debugf("clear write deadline: %v", err)
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		}
	})
}
