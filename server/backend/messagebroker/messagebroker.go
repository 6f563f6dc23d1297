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

// Package messagebroker forwards workflow events to an external message
// broker.
package messagebroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/logging"
)

// Message represents a message that can be sent to the message broker.
type Message interface {
	Key() []byte
	Marshal() ([]byte, error)
}

// WorkflowEventMessage carries one workflow event.
type WorkflowEventMessage struct {
	events.WorkflowEvent
}

// Key returns the partition key of the message, so that the events of one
// document stay in order.
func (m WorkflowEventMessage) Key() []byte {
	return []byte(m.Topic())
}

// Marshal marshals the workflow event message to JSON.
func (m WorkflowEventMessage) Marshal() ([]byte, error) {
	encoded, err := json.Marshal(m.WorkflowEvent)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	return encoded, nil
}

// Broker is an interface for the message broker.
type Broker interface {
	Produce(ctx context.Context, msg Message) error
	Close() error
}

// Ensure creates a message broker based on the given configuration. A nil or
// invalid configuration yields a DummyBroker so callers never check for nil.
func Ensure(conf *Config) Broker {
	if conf == nil {
		return &DummyBroker{}
	}

	if err := conf.Validate(); err != nil {
		logging.DefaultLogger().Warnf("invalid kafka configuration: %v", err)
		return &DummyBroker{}
	}

	logging.DefaultLogger().Infof(
		"connecting to kafka: %s, topic: %s",
		conf.Addresses,
		conf.Topic,
	)

	return newKafkaBroker(conf.SplitAddresses(), conf.Topic, conf.MustParseWriteTimeout())
}
