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

package housekeeping_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/server/backend/housekeeping"
)

func TestHousekeeping(t *testing.T) {
	conf := &housekeeping.Config{Interval: "10ms", CandidatesLimit: 5}

	t.Run("run once test", func(t *testing.T) {
		h, err := housekeeping.New(conf)
		assert.NoError(t, err)

		var seenLimit int
		h.RegisterTask("first", func(_ context.Context, _ time.Time, limit int) (int, error) {
			seenLimit = limit
			return 2, nil
		})
		h.RegisterTask("second", func(_ context.Context, _ time.Time, _ int) (int, error) {
			return 1, nil
		})

		count, err := h.RunOnce(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Equal(t, 5, seenLimit)
	})

	t.Run("task error stops the run test", func(t *testing.T) {
		h, err := housekeeping.New(conf)
		assert.NoError(t, err)

		boom := errors.New("boom")
		called := false
		h.RegisterTask("failing", func(_ context.Context, _ time.Time, _ int) (int, error) {
			return 0, boom
		})
		h.RegisterTask("skipped", func(_ context.Context, _ time.Time, _ int) (int, error) {
			called = true
			return 0, nil
		})

		_, err = h.RunOnce(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.False(t, called)
	})

	t.Run("periodic run test", func(t *testing.T) {
		h, err := housekeeping.New(conf)
		assert.NoError(t, err)

		var runs int32
		h.RegisterTask("count", func(_ context.Context, _ time.Time, _ int) (int, error) {
			atomic.AddInt32(&runs, 1)
			return 0, nil
		})

		assert.NoError(t, h.Start())
		assert.Eventually(t, func() bool {
			return atomic.LoadInt32(&runs) >= 2
		}, time.Second, 5*time.Millisecond)
		assert.NoError(t, h.Stop())
	})
}
