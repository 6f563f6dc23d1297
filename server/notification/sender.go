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

package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/stagegate/stagegate/pkg/webhook"
	"github.com/stagegate/stagegate/server/logging"
)

// LogSender writes notifications to the server log.
type LogSender struct {
	logger logging.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{logger: logging.New("NTFY")}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, n *Notification) error {
	s.logger.Infof("%s -> %s: %s", n.Channel, n.Recipient, n.Subject)
	return nil
}

// deliveryReceipt is the optional body a notification endpoint answers with.
type deliveryReceipt struct {
	ID string `json:"id"`
}

// WebhookSender posts notifications to an HTTP endpoint, typically a mail
// relay.
type WebhookSender struct {
	url    string
	secret string
	client *webhook.Client[*Notification, deliveryReceipt]
}

// NewWebhookSender creates a WebhookSender.
func NewWebhookSender(conf *Config) *WebhookSender {
	return &WebhookSender{
		url:    conf.WebhookURL,
		secret: conf.WebhookSecret,
		client: webhook.NewClient[*Notification, deliveryReceipt](webhook.Options{
			MaxRetries:      conf.WebhookMaxRetries,
			MinWaitInterval: 100 * time.Millisecond,
			MaxWaitInterval: conf.ParseWebhookMaxWaitInterval(),
		}),
	}
}

// Send posts the notification.
func (s *WebhookSender) Send(ctx context.Context, n *Notification) error {
	if _, _, err := s.client.SendJSON(ctx, s.url, s.secret, n); err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	return nil
}
