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

package logging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/stagegate/stagegate/pkg/errors"
)

func TestRequestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected RequestLogLevel
	}{
		{"nil error", nil, RequestLogDebug},
		{"context canceled", fmt.Errorf("read: %w", context.Canceled), RequestLogDebug},
		{"not found", errs.NotFound("request not found"), RequestLogInfo},
		{"invalid argument", errs.InvalidArgument("bad kind"), RequestLogInfo},
		{"permission denied", errs.PermissionDenied("no"), RequestLogWarn},
		{"failed precondition", fmt.Errorf("approve: %w", errs.FailedPrecond("closed")), RequestLogWarn},
		{"internal", errs.Internal("broken"), RequestLogError},
		{"plain error", errors.New("plain"), RequestLogError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, toRequestLogLevel(tt.err))
		})
	}

	assert.Equal(t, "warn", RequestLogWarn.String())
	assert.Equal(t, "debug", RequestLogDebug.String())
}

func TestSetLogLevel(t *testing.T) {
	assert.Error(t, SetLogLevel("verbose"))
	assert.NoError(t, SetLogLevel("debug"))
	assert.True(t, Enabled(-1))
	assert.NoError(t, SetLogLevel("info"))
	assert.False(t, Enabled(-1))
}
