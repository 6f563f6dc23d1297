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

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/internal/version"
)

const (
	namespace      = "stagegate"
	kindLabel      = "kind"
	statusLabel    = "status"
	taskTypeLabel  = "task_type"
	channelLabel   = "channel"
	effectLabel    = "effect"
	routeLabel     = "route"
	codeLabel      = "code"
	eventTypeLabel = "event_type"
)

// Metrics manages the metric information that stagegate is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion        *prometheus.GaugeVec
	serverHandledCounter *prometheus.CounterVec

	transitionsTotal         *prometheus.CounterVec
	transitionSeconds        prometheus.Histogram
	capabilityCheckFailures  prometheus.Counter
	notificationsSentTotal   *prometheus.CounterVec
	notificationFailureTotal *prometheus.CounterVec
	materializationsTotal    *prometheus.CounterVec
	eventsPublishedTotal     *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		serverHandledCounter: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "server_handled_total",
			Help:      "Total number of API calls completed on the server, regardless of success or failure.",
		}, []string{routeLabel, codeLabel}),
		transitionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "The total count of committed request transitions by kind and resulting status.",
		}, []string{kindLabel, statusLabel}),
		transitionSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "transition_seconds",
			Help:      "The time a transition holds its document lock.",
		}),
		capabilityCheckFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "permission",
			Name:      "check_failures_total",
			Help:      "The total count of capability checks that failed and were treated as not permitted.",
		}),
		notificationsSentTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "sent_total",
			Help:      "The total count of delivered notifications.",
		}, []string{channelLabel}),
		notificationFailureTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "failures_total",
			Help:      "The total count of notifications that could not be delivered.",
		}, []string{channelLabel}),
		materializationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "housekeeping",
			Name:      "materializations_total",
			Help:      "The total count of embargoes and expiries applied by housekeeping.",
		}, []string{effectLabel}),
		eventsPublishedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "The total count of workflow events handed to subscribers and the broker.",
		}, []string{eventTypeLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// ObserveSubscriptions exposes the number of event subscriptions reported by
// count.
func (m *Metrics) ObserveSubscriptions(count func() int) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "subscriptions",
		Help:      "The number of subscriptions to workflow events.",
	}, func() float64 {
		return float64(count())
	})
	if err := m.registry.Register(gauge); err != nil {
		return fmt.Errorf("register subscriptions gauge: %w", err)
	}

	return nil
}

// AddServerHandledCounter adds the number of API calls completed on the server.
func (m *Metrics) AddServerHandledCounter(route, code string) {
	m.serverHandledCounter.With(prometheus.Labels{
		routeLabel: route,
		codeLabel:  code,
	}).Inc()
}

// AddTransition counts a committed transition.
func (m *Metrics) AddTransition(kind types.RequestKind, status types.RequestStatus) {
	m.transitionsTotal.With(prometheus.Labels{
		kindLabel:   string(kind),
		statusLabel: string(status),
	}).Inc()
}

// ObserveTransitionSeconds adds an observation for the lock hold time of a
// transition.
func (m *Metrics) ObserveTransitionSeconds(seconds float64) {
	m.transitionSeconds.Observe(seconds)
}

// AddCapabilityCheckFailure counts a capability check that errored.
func (m *Metrics) AddCapabilityCheckFailure() {
	m.capabilityCheckFailures.Inc()
}

// AddNotificationSent counts a delivered notification.
func (m *Metrics) AddNotificationSent(channel string) {
	m.notificationsSentTotal.With(prometheus.Labels{
		channelLabel: channel,
	}).Inc()
}

// AddNotificationFailure counts a notification that could not be delivered.
func (m *Metrics) AddNotificationFailure(channel string) {
	m.notificationFailureTotal.With(prometheus.Labels{
		channelLabel: channel,
	}).Inc()
}

// AddMaterialization counts an embargo or expiry applied by housekeeping.
func (m *Metrics) AddMaterialization(effect string) {
	m.materializationsTotal.With(prometheus.Labels{
		effectLabel: effect,
	}).Inc()
}

// AddEventPublished counts a published workflow event.
func (m *Metrics) AddEventPublished(eventType string) {
	m.eventsPublishedTotal.With(prometheus.Labels{
		eventTypeLabel: eventType,
	}).Inc()
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
