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
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/internal/validation"
	"github.com/stagegate/stagegate/pkg/errors"
)

var (
	// ErrInvalidArgument is returned when the call carries a malformed input.
	ErrInvalidArgument = errors.InvalidArgument("invalid argument").WithCode("ErrInvalidArgument")

	// ErrUnauthenticated is returned when the call has no valid bearer token.
	ErrUnauthenticated = errors.Unauthenticated("missing or invalid token").WithCode("ErrUnauthenticated")
)

// errorResponse is the body of a failed API call.
type errorResponse struct {
	Error      string           `json:"error"`
	Code       string           `json:"code,omitempty"`
	Violations []fieldViolation `json:"violations,omitempty"`
}

type fieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// httpStatusOf returns the HTTP status the API answers the error with.
func httpStatusOf(err error) int {
	if goerrors.Is(err, context.DeadlineExceeded) || goerrors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout
	}

	if status := errors.StatusOf(err); status != 0 {
		return status.HTTPStatus()
	}

	var structErr *validation.StructError
	if goerrors.As(err, &structErr) {
		return http.StatusBadRequest
	}
	if goerrors.Is(err, types.ErrInvalidKind) || goerrors.Is(err, types.ErrInvalidStatus) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// toErrorResponse describes the error for the client with the message of
// its sentinel only. Internal errors are not detailed.
func toErrorResponse(err error, status int) errorResponse {
	if status == http.StatusInternalServerError {
		return errorResponse{Error: http.StatusText(status)}
	}

	resp := errorResponse{
		Error: http.StatusText(status),
		Code:  errors.CodeOf(err),
	}
	if message := errors.MessageOf(err); message != "" {
		resp.Error = message
	} else if goerrors.Is(err, types.ErrInvalidKind) {
		resp.Error = types.ErrInvalidKind.Error()
	} else if goerrors.Is(err, types.ErrInvalidStatus) {
		resp.Error = types.ErrInvalidStatus.Error()
	}

	var structErr *validation.StructError
	if goerrors.As(err, &structErr) {
		for _, v := range structErr.Violations {
			resp.Violations = append(resp.Violations, fieldViolation{
				Field:       v.Field,
				Description: v.Error(),
			})
		}
	}

	return resp
}

// abortWithError ends the call with the error. The logging middleware picks
// the error up from the context.
func abortWithError(c *gin.Context, err error) {
	status := httpStatusOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, toErrorResponse(err, status))
}

// invalidArgument wraps a malformed input of the call.
func invalidArgument(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
}
