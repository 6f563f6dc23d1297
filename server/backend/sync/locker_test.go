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

package sync_test

import (
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/server/backend/sync"
)

func TestLocker(t *testing.T) {
	t.Run("serializes same key test", func(t *testing.T) {
		manager := sync.New()
		key := sync.DocKey("65a1b2c3d4e5f60718293a4b")

		var wg gosync.WaitGroup
		counter := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l := manager.Locker(key)
				l.Lock()
				counter++
				assert.NoError(t, l.Unlock())
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})

	t.Run("unlock without lock test", func(t *testing.T) {
		manager := sync.New()
		assert.Error(t, manager.Locker(sync.DocKey("x")).Unlock())
	})
}
