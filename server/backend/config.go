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

package backend

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// SecretKey is the secret key for signing actor tokens.
	SecretKey string `yaml:"SecretKey"`

	// TokenDuration is the lifetime of issued actor tokens. Default is "24h".
	TokenDuration string `yaml:"TokenDuration"`

	// CapabilityTimeout bounds one capability check. A check that does not
	// answer in time counts as not permitted.
	CapabilityTimeout string `yaml:"CapabilityTimeout"`

	// PublishersCanCreateRequests allows actors who could delete a document
	// from live themselves to still file a deletion request for it.
	PublishersCanCreateRequests bool `yaml:"PublishersCanCreateRequests"`

	// Hostname is the hostname of this server, used by logs and metrics.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf(`invalid argument "" for "--backend-secret-key" flag`)
	}

	if _, err := time.ParseDuration(c.TokenDuration); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--backend-token-duration" flag: %w`,
			c.TokenDuration,
			err,
		)
	}

	if _, err := time.ParseDuration(c.CapabilityTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--backend-capability-timeout" flag: %w`,
			c.CapabilityTimeout,
			err,
		)
	}

	return nil
}

// ParseTokenDuration returns the lifetime of actor tokens.
func (c *Config) ParseTokenDuration() time.Duration {
	result, err := time.ParseDuration(c.TokenDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse token duration: %v\n", err)
		os.Exit(1)
	}

	return result
}

// ParseCapabilityTimeout returns the timeout of one capability check.
func (c *Config) ParseCapabilityTimeout() time.Duration {
	result, err := time.ParseDuration(c.CapabilityTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse capability timeout: %v\n", err)
		os.Exit(1)
	}

	return result
}
