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

package permission

import (
	"fmt"
	"time"

	"github.com/stagegate/stagegate/pkg/errors"
	"github.com/stagegate/stagegate/pkg/webhook"
)

// ErrUnknownCapability is returned for a capability no checker understands.
var ErrUnknownCapability = errors.InvalidArgument("unknown capability").WithCode("ErrUnknownCapability")

// Config is the configuration of the capability checks.
type Config struct {
	// Editors, Publishers and Deleters are the actors of each role. "*"
	// grants the role to everyone.
	Editors    []string `yaml:"Editors"`
	Publishers []string `yaml:"Publishers"`
	Deleters   []string `yaml:"Deleters"`

	// WebhookURL, when set, delegates capability checks to an external
	// service. Approvers still come from Publishers.
	WebhookURL string `yaml:"WebhookURL"`

	// WebhookSecret signs webhook requests.
	WebhookSecret string `yaml:"WebhookSecret"`

	// WebhookMaxRetries is the max count that retries the webhook.
	WebhookMaxRetries uint64 `yaml:"WebhookMaxRetries"`

	// WebhookMaxWaitInterval is the max interval between retries.
	WebhookMaxWaitInterval string `yaml:"WebhookMaxWaitInterval"`

	// WebhookCacheSize is the number of cached webhook answers.
	WebhookCacheSize int `yaml:"WebhookCacheSize"`

	// WebhookCacheTTL is how long a webhook answer stays cached.
	WebhookCacheTTL string `yaml:"WebhookCacheTTL"`

	// AllowPrivateWebhook allows webhook URLs on private addresses.
	AllowPrivateWebhook bool `yaml:"AllowPrivateWebhook"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return nil
	}

	if err := webhook.ValidateURL(c.WebhookURL, c.AllowPrivateWebhook); err != nil {
		return fmt.Errorf(`invalid argument "%s" for "--permission-webhook-url" flag: %w`, c.WebhookURL, err)
	}

	if _, err := time.ParseDuration(c.WebhookMaxWaitInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--permission-webhook-max-wait-interval" flag: %w`,
			c.WebhookMaxWaitInterval,
			err,
		)
	}

	if _, err := time.ParseDuration(c.WebhookCacheTTL); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--permission-webhook-cache-ttl" flag: %w`,
			c.WebhookCacheTTL,
			err,
		)
	}

	if c.WebhookCacheSize <= 0 {
		return fmt.Errorf(
			`invalid argument "%d" for "--permission-webhook-cache-size" flag`,
			c.WebhookCacheSize,
		)
	}

	return nil
}

// ParseWebhookMaxWaitInterval returns the max wait interval.
func (c *Config) ParseWebhookMaxWaitInterval() time.Duration {
	d, err := time.ParseDuration(c.WebhookMaxWaitInterval)
	if err != nil {
		return 0
	}
	return d
}

// ParseWebhookCacheTTL returns the cache TTL.
func (c *Config) ParseWebhookCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.WebhookCacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// New creates the checker described by the config.
func New(conf *Config) Checker {
	policy := NewPolicy(conf)
	if conf.WebhookURL == "" {
		return policy
	}

	return NewWebhookChecker(conf, policy)
}
