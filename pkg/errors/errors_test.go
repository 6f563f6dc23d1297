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

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code   StatusCode
		name   string
		http   int
		client bool
	}{
		{ErrCodeInvalidArgument, "invalid_argument", http.StatusBadRequest, true},
		{ErrCodeNotFound, "not_found", http.StatusNotFound, true},
		{ErrCodeAlreadyExists, "already_exists", http.StatusConflict, true},
		{ErrCodePermissionDenied, "permission_denied", http.StatusForbidden, true},
		{ErrCodeFailedPrecondition, "failed_precondition", http.StatusConflict, true},
		{ErrCodeUnauthenticated, "unauthenticated", http.StatusUnauthorized, true},
		{ErrCodeInternal, "internal", http.StatusInternalServerError, false},
		{ErrCodeUnavailable, "unavailable", http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.code.String())
			assert.Equal(t, tt.http, tt.code.HTTPStatus())
			assert.Equal(t, tt.client, tt.code.IsClientError())
			assert.Equal(t, !tt.client, tt.code.IsServerError())
		})
	}

	assert.Equal(t, "code_42", StatusCode(42).String())
	assert.Equal(t, http.StatusInternalServerError, StatusCode(0).HTTPStatus())
}

func TestStatusOf(t *testing.T) {
	t.Run("wrapped status error test", func(t *testing.T) {
		base := PermissionDenied("not permitted").WithCode("ErrPermissionDenied")
		wrapped := fmt.Errorf("approve: %w", fmt.Errorf("check: %w", base))

		assert.Equal(t, ErrCodePermissionDenied, StatusOf(wrapped))
		assert.Equal(t, "ErrPermissionDenied", CodeOf(wrapped))
		assert.True(t, IsStatus(wrapped, ErrCodePermissionDenied))
		assert.True(t, errors.Is(wrapped, base))
		assert.Equal(t, "not permitted", MessageOf(wrapped))
	})

	t.Run("standard error test", func(t *testing.T) {
		err := errors.New("standard error")
		assert.Equal(t, StatusCode(0), StatusOf(err))
		assert.Equal(t, "", CodeOf(err))
		assert.Equal(t, "", MessageOf(err))
		assert.False(t, IsClientError(err))
		assert.False(t, IsServerError(err))
	})

	t.Run("nil error test", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(nil))
		assert.False(t, IsStatus(nil, ErrCodeNotFound))
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    StatusError
		status StatusCode
	}{
		{NotFound("m"), ErrCodeNotFound},
		{InvalidArgument("m"), ErrCodeInvalidArgument},
		{AlreadyExists("m"), ErrCodeAlreadyExists},
		{PermissionDenied("m"), ErrCodePermissionDenied},
		{FailedPrecond("m"), ErrCodeFailedPrecondition},
		{Unauthenticated("m"), ErrCodeUnauthenticated},
		{Internal("m"), ErrCodeInternal},
		{Unavailable("m"), ErrCodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, "m", tt.err.Error())
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, "", tt.err.Code())
		})
	}
}
