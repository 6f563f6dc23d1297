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

package pubsub

import (
	"sync"
	gotime "time"

	"github.com/rs/xid"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
)

const (
	// publishTimeout is the timeout for publishing an event.
	publishTimeout = 100 * gotime.Millisecond
)

// Subscription represents a subscription of a subscriber to workflow events.
type Subscription struct {
	id         string
	subscriber string
	documentID types.ID
	mu         sync.Mutex
	closed     bool
	events     chan events.WorkflowEvent
}

// NewSubscription creates a new instance of Subscription. An empty document
// ID subscribes to every document.
func NewSubscription(subscriber string, documentID types.ID, bufSize int) *Subscription {
	return &Subscription{
		id:         xid.New().String(),
		subscriber: subscriber,
		documentID: documentID,
		events:     make(chan events.WorkflowEvent, bufSize),
	}
}

// ID returns the id of this subscription.
func (s *Subscription) ID() string {
	return s.id
}

// Events returns the event channel of this subscription.
func (s *Subscription) Events() <-chan events.WorkflowEvent {
	return s.events
}

// Subscriber returns the subscriber of this subscription.
func (s *Subscription) Subscriber() string {
	return s.subscriber
}

// DocumentID returns the document this subscription watches.
func (s *Subscription) DocumentID() types.ID {
	return s.documentID
}

// Close closes all resources of this Subscription.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Publish publishes the given event to the subscriber. It gives up after
// publishTimeout when the subscriber does not keep up.
func (s *Subscription) Publish(event events.WorkflowEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.events <- event:
		return true
	case <-gotime.After(publishTimeout):
		return false
	}
}
