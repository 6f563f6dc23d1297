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

// Package pubsub delivers workflow events to in-process subscribers.
package pubsub

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/logging"
)

const defaultBufferSize = 16

// PubSub is the memory implementation of PubSub, used for single server.
type PubSub struct {
	mu   sync.RWMutex
	subs map[types.ID]map[string]*Subscription
}

// New creates an instance of PubSub.
func New() *PubSub {
	return &PubSub{
		subs: make(map[types.ID]map[string]*Subscription),
	}
}

// Subscribe subscribes to the events of the given document, or of every
// document when documentID is empty.
func (m *PubSub) Subscribe(
	ctx context.Context,
	subscriber string,
	documentID types.ID,
) *Subscription {
	sub := NewSubscription(subscriber, documentID, defaultBufferSize)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[documentID]; !ok {
		m.subs[documentID] = make(map[string]*Subscription)
	}
	m.subs[documentID][sub.ID()] = sub

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s)`, documentID, subscriber)
	}

	return sub
}

// Unsubscribe removes and closes the given subscription.
func (m *PubSub) Unsubscribe(ctx context.Context, sub *Subscription) {
	m.mu.Lock()
	if subs, ok := m.subs[sub.DocumentID()]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(m.subs, sub.DocumentID())
		}
	}
	m.mu.Unlock()

	sub.Close()

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s)`, sub.DocumentID(), sub.Subscriber())
	}
}

// Publish delivers the event to the subscribers of its document and to the
// subscribers of every document.
func (m *PubSub) Publish(ctx context.Context, event events.WorkflowEvent) {
	m.mu.RLock()
	var targets []*Subscription
	for _, key := range []types.ID{event.DocumentID, ""} {
		for _, sub := range m.subs[key] {
			targets = append(targets, sub)
		}
	}
	m.mu.RUnlock()

	for _, sub := range targets {
		if ok := sub.Publish(event); !ok {
			logging.From(ctx).Warnf(
				`Publish(%s,%s) to %s timeout or closed`,
				event.DocumentID,
				event.Type,
				sub.Subscriber(),
			)
		}
	}
}

// Len returns the number of subscriptions.
func (m *PubSub) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, subs := range m.subs {
		count += len(subs)
	}
	return count
}
