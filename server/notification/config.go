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
	"fmt"
	"time"

	"github.com/stagegate/stagegate/pkg/webhook"
)

const (
	// SenderLog writes notifications to the log.
	SenderLog = "log"

	// SenderWebhook posts notifications to WebhookURL.
	SenderWebhook = "webhook"
)

// Config is the configuration of notification delivery.
type Config struct {
	// Sender is either "log" or "webhook".
	Sender string `yaml:"Sender"`

	// Timeout bounds the delivery of one notification.
	Timeout string `yaml:"Timeout"`

	WebhookURL             string `yaml:"WebhookURL"`
	WebhookSecret          string `yaml:"WebhookSecret"`
	WebhookMaxRetries      uint64 `yaml:"WebhookMaxRetries"`
	WebhookMaxWaitInterval string `yaml:"WebhookMaxWaitInterval"`

	// AllowPrivateWebhook allows webhook URLs on private addresses.
	AllowPrivateWebhook bool `yaml:"AllowPrivateWebhook"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf(`invalid argument "%s" for "--notification-timeout" flag: %w`, c.Timeout, err)
	}

	switch c.Sender {
	case SenderLog:
		return nil
	case SenderWebhook:
	default:
		return fmt.Errorf(`invalid argument "%s" for "--notification-sender" flag`, c.Sender)
	}

	if err := webhook.ValidateURL(c.WebhookURL, c.AllowPrivateWebhook); err != nil {
		return fmt.Errorf(`invalid argument "%s" for "--notification-webhook-url" flag: %w`, c.WebhookURL, err)
	}

	if _, err := time.ParseDuration(c.WebhookMaxWaitInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--notification-webhook-max-wait-interval" flag: %w`,
			c.WebhookMaxWaitInterval,
			err,
		)
	}

	return nil
}

// ParseTimeout returns the delivery timeout.
func (c *Config) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ParseWebhookMaxWaitInterval returns the max wait interval between retries.
func (c *Config) ParseWebhookMaxWaitInterval() time.Duration {
	d, err := time.ParseDuration(c.WebhookMaxWaitInterval)
	if err != nil {
		return 0
	}
	return d
}

// NewSender creates the sender described by the config.
func NewSender(conf *Config) Sender {
	if conf.Sender == SenderWebhook {
		return NewWebhookSender(conf)
	}
	return NewLogSender()
}
