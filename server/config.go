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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stagegate/stagegate/server/backend"
	"github.com/stagegate/stagegate/server/backend/database/mongo"
	"github.com/stagegate/stagegate/server/backend/housekeeping"
	"github.com/stagegate/stagegate/server/backend/messagebroker"
	"github.com/stagegate/stagegate/server/notification"
	"github.com/stagegate/stagegate/server/permission"
	"github.com/stagegate/stagegate/server/profiling"
	"github.com/stagegate/stagegate/server/rpc"
)

// Below are the values of the default values of Stagegate config.
const (
	DefaultRPCPort         = 8080
	DefaultProfilingPort   = 8081
	DefaultRPCReadTimeout  = 30 * time.Second
	DefaultRPCWriteTimeout = 30 * time.Second

	DefaultHousekeepingInterval        = 30 * time.Second
	DefaultHousekeepingCandidatesLimit = 500

	DefaultMongoConnectionURI                = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout            = 5 * time.Second
	DefaultMongoPingTimeout                  = 5 * time.Second
	DefaultMongoStagegateDatabase            = "stagegate-meta"
	DefaultMongoMonitoringSlowQueryThreshold = 100 * time.Millisecond

	DefaultKafkaTopic        = "workflow-events"
	DefaultKafkaWriteTimeout = 5 * time.Second

	DefaultSecretKey         = "stagegate-secret"
	DefaultTokenDuration     = 24 * time.Hour
	DefaultCapabilityTimeout = 3 * time.Second

	DefaultNotificationSender                 = notification.SenderLog
	DefaultNotificationTimeout                = 10 * time.Second
	DefaultNotificationWebhookMaxRetries      = 10
	DefaultNotificationWebhookMaxWaitInterval = 3 * time.Second

	DefaultPermissionWebhookMaxRetries      = 10
	DefaultPermissionWebhookMaxWaitInterval = 3 * time.Second
	DefaultPermissionWebhookCacheSize       = 5000
	DefaultPermissionWebhookCacheTTL        = 10 * time.Second

	DefaultHostname = ""
)

// Config is the configuration for creating a Stagegate instance.
type Config struct {
	RPC          *rpc.Config           `yaml:"RPC"`
	Profiling    *profiling.Config     `yaml:"Profiling"`
	Housekeeping *housekeeping.Config  `yaml:"Housekeeping"`
	Backend      *backend.Config       `yaml:"Backend"`
	Permission   *permission.Config    `yaml:"Permission"`
	Notification *notification.Config  `yaml:"Notification"`
	Mongo        *mongo.Config         `yaml:"Mongo"`
	Kafka        *messagebroker.Config `yaml:"Kafka"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRPCPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RPCAddr returns the RPC address.
func (c *Config) RPCAddr() string {
	return fmt.Sprintf("localhost:%d", c.RPC.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.Profiling.Validate(); err != nil {
		return err
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if err := c.Permission.Validate(); err != nil {
		return err
	}

	if err := c.Notification.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	if c.Kafka != nil {
		if err := c.Kafka.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	defaults := NewConfig()
	if c.RPC == nil {
		c.RPC = defaults.RPC
	}
	if c.Profiling == nil {
		c.Profiling = defaults.Profiling
	}
	if c.Housekeeping == nil {
		c.Housekeeping = defaults.Housekeeping
	}
	if c.Backend == nil {
		c.Backend = defaults.Backend
	}
	if c.Permission == nil {
		c.Permission = defaults.Permission
	}
	if c.Notification == nil {
		c.Notification = defaults.Notification
	}

	if c.RPC.Port == 0 {
		c.RPC.Port = DefaultRPCPort
	}
	if c.RPC.ReadTimeout == "" {
		c.RPC.ReadTimeout = DefaultRPCReadTimeout.String()
	}
	if c.RPC.WriteTimeout == "" {
		c.RPC.WriteTimeout = DefaultRPCWriteTimeout.String()
	}

	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}
	if c.Housekeeping.CandidatesLimit == 0 {
		c.Housekeeping.CandidatesLimit = DefaultHousekeepingCandidatesLimit
	}

	if c.Backend.SecretKey == "" {
		c.Backend.SecretKey = DefaultSecretKey
	}
	if c.Backend.TokenDuration == "" {
		c.Backend.TokenDuration = DefaultTokenDuration.String()
	}
	if c.Backend.CapabilityTimeout == "" {
		c.Backend.CapabilityTimeout = DefaultCapabilityTimeout.String()
	}

	if c.Permission.WebhookMaxRetries == 0 {
		c.Permission.WebhookMaxRetries = DefaultPermissionWebhookMaxRetries
	}
	if c.Permission.WebhookMaxWaitInterval == "" {
		c.Permission.WebhookMaxWaitInterval = DefaultPermissionWebhookMaxWaitInterval.String()
	}
	if c.Permission.WebhookCacheSize == 0 {
		c.Permission.WebhookCacheSize = DefaultPermissionWebhookCacheSize
	}
	if c.Permission.WebhookCacheTTL == "" {
		c.Permission.WebhookCacheTTL = DefaultPermissionWebhookCacheTTL.String()
	}

	if c.Notification.Sender == "" {
		c.Notification.Sender = DefaultNotificationSender
	}
	if c.Notification.Timeout == "" {
		c.Notification.Timeout = DefaultNotificationTimeout.String()
	}
	if c.Notification.WebhookMaxRetries == 0 {
		c.Notification.WebhookMaxRetries = DefaultNotificationWebhookMaxRetries
	}
	if c.Notification.WebhookMaxWaitInterval == "" {
		c.Notification.WebhookMaxWaitInterval = DefaultNotificationWebhookMaxWaitInterval.String()
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}

		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}

		if c.Mongo.StagegateDatabase == "" {
			c.Mongo.StagegateDatabase = DefaultMongoStagegateDatabase
		}

		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}

		if c.Mongo.MonitoringEnabled {
			if c.Mongo.MonitoringSlowQueryThreshold == "" {
				c.Mongo.MonitoringSlowQueryThreshold = DefaultMongoMonitoringSlowQueryThreshold.String()
			}
		}
	}
	if c.Kafka != nil && c.Kafka.Addresses != "" {
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = DefaultKafkaTopic
		}
		if c.Kafka.WriteTimeout == "" {
			c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout.String()
		}
	}
}

func newConfig(port int, profilingPort int) *Config {
	return &Config{
		RPC: &rpc.Config{
			Port:         port,
			ReadTimeout:  DefaultRPCReadTimeout.String(),
			WriteTimeout: DefaultRPCWriteTimeout.String(),
		},
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Interval:        DefaultHousekeepingInterval.String(),
			CandidatesLimit: DefaultHousekeepingCandidatesLimit,
		},
		Backend: &backend.Config{
			SecretKey:         DefaultSecretKey,
			TokenDuration:     DefaultTokenDuration.String(),
			CapabilityTimeout: DefaultCapabilityTimeout.String(),
			Hostname:          DefaultHostname,
		},
		Permission: &permission.Config{
			Editors:                []string{"*"},
			WebhookMaxRetries:      DefaultPermissionWebhookMaxRetries,
			WebhookMaxWaitInterval: DefaultPermissionWebhookMaxWaitInterval.String(),
			WebhookCacheSize:       DefaultPermissionWebhookCacheSize,
			WebhookCacheTTL:        DefaultPermissionWebhookCacheTTL.String(),
		},
		Notification: &notification.Config{
			Sender:                 DefaultNotificationSender,
			Timeout:                DefaultNotificationTimeout.String(),
			WebhookMaxRetries:      DefaultNotificationWebhookMaxRetries,
			WebhookMaxWaitInterval: DefaultNotificationWebhookMaxWaitInterval.String(),
		},
	}
}
