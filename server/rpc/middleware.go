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
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
	"github.com/stagegate/stagegate/server/rpc/auth"
)

type reqID int32

func (c *reqID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "r" + strconv.Itoa(int(next))
}

// loggingMiddleware gives every call its own logger and logs its outcome.
func loggingMiddleware(metrics *prometheus.Metrics) gin.HandlerFunc {
	var ids reqID

	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logging.New(ids.next())
		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), reqLogger))

		c.Next()

		route := c.Request.Method + " " + c.FullPath()
		if err := c.Errors.Last(); err != nil {
			logging.LogRequestError(reqLogger, route, time.Since(start), err.Err)
		} else {
			logging.LogRequestSuccess(reqLogger, route, time.Since(start))
		}

		if metrics != nil {
			metrics.AddServerHandledCounter(route, strconv.Itoa(c.Writer.Status()))
		}
	}
}

// authMiddleware resolves the actor of the call from its bearer token.
func authMiddleware(manager *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, fmt.Errorf("authorization header: %w", ErrUnauthenticated))
			return
		}

		claims, err := manager.Verify(strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, fmt.Errorf("%s: %w", err.Error(), ErrUnauthenticated))
			return
		}

		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), claims.Actor))
		c.Next()
	}
}

// actorOf returns the actor resolved by authMiddleware.
func actorOf(c *gin.Context) string {
	actor, _ := auth.ActorFrom(c.Request.Context())
	return actor
}
