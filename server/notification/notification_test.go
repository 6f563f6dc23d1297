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

package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*notification.Notification
	fail map[string]bool
}

func (s *recordingSender) Send(_ context.Context, n *notification.Notification) error {
	if s.fail[n.Recipient] {
		return errors.New("mailbox unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

type panickingSender struct{}

func (panickingSender) Send(context.Context, *notification.Notification) error {
	panic("smtp exploded")
}

func counterValue(t *testing.T, metrics *prometheus.Metrics, name string) float64 {
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNotifier(t *testing.T) {
	data := notification.TemplateData{
		Actor:         "author",
		Comment:       "please review",
		Kind:          types.PublicationRequest,
		RequestID:     "65a1b2c3d4e5f60718293a4c",
		DocumentID:    "65a1b2c3d4e5f60718293a4b",
		DocumentTitle: "About us",
		Status:        types.StatusAwaitingApproval,
	}

	t.Run("deliver to every recipient test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		sender := &recordingSender{}
		notifier := notification.NewNotifier(sender, time.Second, metrics)

		sent := notifier.Deliver(context.Background(), notification.AwaitingApproval, []string{"a", "", "b"}, data)
		assert.Equal(t, 2, sent)
		require.Len(t, sender.sent, 2)
		assert.Equal(t, `"About us" is awaiting approval`, sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].Body, "Comment: please review")
		assert.Equal(t, "author", sender.sent[1].Sender)
		assert.Equal(t, float64(2), counterValue(t, metrics, "stagegate_notification_sent_total"))
	})

	t.Run("failures are counted not returned test", func(t *testing.T) {
		metrics, err := prometheus.NewMetrics()
		require.NoError(t, err)

		sender := &recordingSender{fail: map[string]bool{"a": true}}
		notifier := notification.NewNotifier(sender, time.Second, metrics)

		assert.Equal(t, 1, notifier.Deliver(context.Background(), notification.Approved, []string{"a", "b"}, data))
		assert.Equal(t, float64(1), counterValue(t, metrics, "stagegate_notification_failures_total"))

		panicking := notification.NewNotifier(panickingSender{}, 0, metrics)
		assert.Equal(t, 0, panicking.Deliver(context.Background(), notification.Approved, []string{"a"}, data))
		assert.Equal(t, float64(2), counterValue(t, metrics, "stagegate_notification_failures_total"))
	})

	t.Run("unknown channel test", func(t *testing.T) {
		notifier := notification.NewNotifier(&recordingSender{}, 0, nil)
		assert.Equal(t, 0, notifier.Deliver(context.Background(), notification.Channel("sms"), []string{"a"}, data))
	})
}

func TestRender(t *testing.T) {
	data := notification.TemplateData{
		Actor:         "publisher",
		Kind:          types.DeletionRequest,
		DocumentID:    "65a1b2c3d4e5f60718293a4b",
		DocumentTitle: "Old page",
		Status:        types.StatusAwaitingEdit,
	}

	subject, body, err := notification.Render(notification.Denied, data)
	assert.NoError(t, err)
	assert.Equal(t, `Your deletion request for "Old page" needs attention`, subject)
	assert.Equal(t, "publisher changed your request to Awaiting Edit.", body)

	subject, _, err = notification.Render(notification.Published, data)
	assert.NoError(t, err)
	assert.Equal(t, `"Old page" is now live`, subject)
}

func TestWebhookSender(t *testing.T) {
	var received notification.Notification
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Signature-256"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer server.Close()

	conf := &notification.Config{
		Sender:                 notification.SenderWebhook,
		Timeout:                "1s",
		WebhookURL:             server.URL,
		WebhookSecret:          "secret",
		WebhookMaxWaitInterval: "10ms",
		AllowPrivateWebhook:    true,
	}
	require.NoError(t, conf.Validate())

	sender := notification.NewSender(conf)
	require.IsType(t, &notification.WebhookSender{}, sender)

	err := sender.Send(context.Background(), &notification.Notification{
		Channel:   notification.Approved,
		Recipient: "author",
		Subject:   "approved",
	})
	assert.NoError(t, err)
	assert.Equal(t, "author", received.Recipient)
	assert.Equal(t, notification.Approved, received.Channel)
}

func TestConfig(t *testing.T) {
	conf := notification.Config{Sender: notification.SenderLog, Timeout: "3s"}
	assert.NoError(t, conf.Validate())
	assert.Equal(t, 3*time.Second, conf.ParseTimeout())
	assert.IsType(t, &notification.LogSender{}, notification.NewSender(&conf))

	conf.Sender = "pigeon"
	assert.Error(t, conf.Validate())

	conf.Sender = notification.SenderWebhook
	conf.WebhookURL = "http://10.0.0.1/notify"
	conf.WebhookMaxWaitInterval = "1s"
	assert.Error(t, conf.Validate())

	conf.Timeout = "later"
	assert.Error(t, conf.Validate())
}
