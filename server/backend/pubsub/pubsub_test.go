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

package pubsub_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/api/types/events"
	"github.com/stagegate/stagegate/server/backend/pubsub"
)

func TestPubSub(t *testing.T) {
	docA := types.ID("65a1b2c3d4e5f60718293a4b")
	docB := types.ID("65a1b2c3d4e5f60718293a4c")

	t.Run("publish to document and wildcard subscribers test", func(t *testing.T) {
		ctx := context.Background()
		ps := pubsub.New()

		subA := ps.Subscribe(ctx, "a", docA)
		subAll := ps.Subscribe(ctx, "all", "")
		subB := ps.Subscribe(ctx, "b", docB)
		assert.Equal(t, 3, ps.Len())

		event := events.WorkflowEvent{Type: events.ApprovedEvent, DocumentID: docA}
		ps.Publish(ctx, event)

		assert.Equal(t, event, <-subA.Events())
		assert.Equal(t, event, <-subAll.Events())
		assert.Len(t, subB.Events(), 0)

		ps.Unsubscribe(ctx, subA)
		ps.Unsubscribe(ctx, subAll)
		ps.Unsubscribe(ctx, subB)
		assert.Equal(t, 0, ps.Len())

		_, ok := <-subA.Events()
		assert.False(t, ok)
	})

	t.Run("closed subscription is skipped test", func(t *testing.T) {
		sub := pubsub.NewSubscription("a", docA, 1)
		assert.NotEmpty(t, sub.ID())
		sub.Close()
		sub.Close()
		assert.False(t, sub.Publish(events.WorkflowEvent{DocumentID: docA}))
	})
}
