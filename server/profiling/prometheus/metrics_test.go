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

package prometheus_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
)

func TestMetrics(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	metrics.AddTransition(types.PublicationRequest, types.StatusCompleted)
	metrics.AddTransition(types.PublicationRequest, types.StatusCompleted)
	metrics.AddNotificationFailure("approved")
	metrics.AddBackgroundGoroutines("notification")
	metrics.RemoveBackgroundGoroutines("notification")

	count, err := testutil.GatherAndCount(
		metrics.Registry(),
		"stagegate_workflow_transitions_total",
		"stagegate_notification_failures_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := metrics.Registry().Gather()
	assert.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() != "stagegate_workflow_transitions_total" {
			continue
		}
		found = true
		assert.Equal(t, float64(2), family.GetMetric()[0].GetCounter().GetValue())
	}
	assert.True(t, found)
}

func TestObserveSubscriptions(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	subscriptions := 3
	assert.NoError(t, metrics.ObserveSubscriptions(func() int { return subscriptions }))
	assert.Error(t, metrics.ObserveSubscriptions(func() int { return 0 }))

	families, err := metrics.Registry().Gather()
	assert.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() != "stagegate_events_subscriptions" {
			continue
		}
		found = true
		assert.Equal(t, float64(3), family.GetMetric()[0].GetGauge().GetValue())
	}
	assert.True(t, found)
}
