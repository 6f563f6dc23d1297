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

package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/housekeeping"
	"github.com/stagegate/stagegate/server/backend/messagebroker"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
	"github.com/stagegate/stagegate/test/helper"
)

func TestNew(t *testing.T) {
	newBackend := func(hk *housekeeping.Config, metrics *prometheus.Metrics) (*backend.Backend, error) {
		return backend.New(
			helper.BackendConfig(),
			nil,
			hk,
			helper.PermissionConfig(),
			&notification.Config{Sender: notification.SenderLog, Timeout: helper.NotificationTimeout.String()},
			&messagebroker.Config{},
			metrics,
		)
	}
	validHousekeeping := &housekeeping.Config{Interval: "1m", CandidatesLimit: 10}

	t.Run("invalid housekeeping interval test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		_, err = newBackend(&housekeeping.Config{Interval: "often", CandidatesLimit: 10}, metrics)
		assert.Error(t, err)
	})

	t.Run("subscriptions are observed once per registry test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		be, err := newBackend(validHousekeeping, metrics)
		require.NoError(t, err)
		assert.NoError(t, be.Shutdown())

		_, err = newBackend(validHousekeeping, metrics)
		assert.ErrorContains(t, err, "subscriptions gauge")
	})
}
