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

// Package notification delivers workflow notifications to the people
// involved in a request. Delivery is best effort.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/logging"
	"github.com/stagegate/stagegate/server/profiling/prometheus"
)

// Channel names the kind of a notification.
type Channel string

const (
	// AwaitingApproval is sent to approvers when a request is submitted.
	AwaitingApproval Channel = "awaiting-approval"

	// Approved is sent to the author when a request is approved.
	Approved Channel = "approved"

	// Denied is sent to the author when a request is denied or sent back.
	Denied Channel = "denied"

	// Published is sent to the author when the change reaches live.
	Published Channel = "published"
)

// Notification is one message to one recipient.
type Notification struct {
	Channel    Channel  `json:"channel"`
	Sender     string   `json:"sender"`
	Recipient  string   `json:"recipient"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	RequestID  types.ID `json:"request_id,omitempty"`
	DocumentID types.ID `json:"document_id"`
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// Notifier renders and sends notifications and records their outcome.
type Notifier struct {
	sender  Sender
	timeout time.Duration
	metrics *prometheus.Metrics
}

// NewNotifier creates a Notifier. A zero timeout means no deadline.
func NewNotifier(sender Sender, timeout time.Duration, metrics *prometheus.Metrics) *Notifier {
	return &Notifier{
		sender:  sender,
		timeout: timeout,
		metrics: metrics,
	}
}

// Deliver renders the channel template for every recipient and sends the
// result. It returns the number of notifications delivered; failures are
// logged and counted, never returned.
func (n *Notifier) Deliver(
	ctx context.Context,
	channel Channel,
	recipients []string,
	data TemplateData,
) int {
	subject, body, err := Render(channel, data)
	if err != nil {
		logging.From(ctx).Warnf("render %s notification: %v", channel, err)
		n.addFailure(channel)
		return 0
	}

	sent := 0
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}

		if err := n.send(ctx, &Notification{
			Channel:    channel,
			Sender:     data.Actor,
			Recipient:  recipient,
			Subject:    subject,
			Body:       body,
			RequestID:  data.RequestID,
			DocumentID: data.DocumentID,
		}); err != nil {
			logging.From(ctx).Warnf("send %s notification to %s: %v", channel, recipient, err)
			n.addFailure(channel)
			continue
		}

		if n.metrics != nil {
			n.metrics.AddNotificationSent(string(channel))
		}
		sent++
	}

	return sent
}

func (n *Notifier) send(ctx context.Context, notification *Notification) (err error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()

	return n.sender.Send(ctx, notification)
}

func (n *Notifier) addFailure(channel Channel) {
	if n.metrics != nil {
		n.metrics.AddNotificationFailure(string(channel))
	}
}
