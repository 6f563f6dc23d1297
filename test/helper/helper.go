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

// Package helper provides helper functions for testing.
package helper

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/housekeeping"
	"github.com/stagegate/stagegate/server/backend/messagebroker"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
	"github.com/stagegate/stagegate/server/visibility"
)

// Below are the actors and settings of the backend used in the test.
var (
	Author      = "alice"
	OtherAuthor = "carol"
	Publisher   = "bob"
	Outsider    = "mallory"

	SecretKey         = "stagegate-test-secret"
	TokenDuration     = "1h"
	CapabilityTimeout = "1s"

	HousekeepingInterval        = "1m"
	HousekeepingCandidatesLimit = 10

	NotificationTimeout = time.Second

	// Epoch is the instant the test clocks start at.
	Epoch = time.Date(2020, time.June, 1, 9, 0, 0, 0, time.UTC)
)

// ManualClock is a time source that only moves when told to.
type ManualClock struct {
	mu  gosync.Mutex
	now time.Time
}

// NewManualClock creates a clock standing at the given time.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the current time of the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to the given time.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// RecordingSender keeps the notifications it is asked to send.
type RecordingSender struct {
	mu   gosync.Mutex
	sent []*notification.Notification
	err  error
}

// Send records the notification, or fails when a failure is set.
func (s *RecordingSender) Send(_ context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

// Fail makes every following Send return err. A nil err restores delivery.
func (s *RecordingSender) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Sent returns the notifications recorded so far.
func (s *RecordingSender) Sent() []*notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make([]*notification.Notification, len(s.sent))
	copy(sent, s.sent)
	return sent
}

// SentTo returns the notifications of the channel sent to the recipient.
func (s *RecordingSender) SentTo(channel notification.Channel, recipient string) []*notification.Notification {
	var result []*notification.Notification
	for _, n := range s.Sent() {
		if n.Channel == channel && n.Recipient == recipient {
			result = append(result, n)
		}
	}
	return result
}

// TestBackend is a backend on the memory database with a manual clock and a
// recording notification sender.
type TestBackend struct {
	*backend.Backend

	Wall   *ManualClock
	Sender *RecordingSender
}

// BackendConfig returns the backend config used in the test.
func BackendConfig() *backend.Config {
	return &backend.Config{
		SecretKey:         SecretKey,
		TokenDuration:     TokenDuration,
		CapabilityTimeout: CapabilityTimeout,
		Hostname:          "test",
	}
}

// PermissionConfig returns the roles used in the test: two authors and one
// publisher.
func PermissionConfig() *permission.Config {
	return &permission.Config{
		Editors:    []string{Author, OtherAuthor},
		Publishers: []string{Publisher},
	}
}

// NewBackend creates a backend for the test. It is shut down on cleanup.
func NewBackend(t *testing.T) *TestBackend {
	return NewBackendWithConfig(t, BackendConfig(), PermissionConfig())
}

// NewBackendWithConfig creates a backend for the test with the given configs.
func NewBackendWithConfig(
	t *testing.T,
	conf *backend.Config,
	permissionConf *permission.Config,
) *TestBackend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(
		conf,
		nil,
		&housekeeping.Config{
			Interval:        HousekeepingInterval,
			CandidatesLimit: HousekeepingCandidatesLimit,
		},
		permissionConf,
		&notification.Config{Sender: notification.SenderLog, Timeout: NotificationTimeout.String()},
		&messagebroker.Config{},
		metrics,
	)
	require.NoError(t, err)

	wall := NewManualClock(Epoch)
	sender := &RecordingSender{}
	be.Clock = visibility.NewClockWithSource(wall.Now)
	be.Notifier = notification.NewNotifier(sender, NotificationTimeout, metrics)

	t.Cleanup(func() {
		require.NoError(t, be.Shutdown())
	})

	return &TestBackend{
		Backend: be,
		Wall:    wall,
		Sender:  sender,
	}
}

// Ptr returns a pointer to the given time.
func Ptr(t time.Time) *time.Time {
	return &t
}
