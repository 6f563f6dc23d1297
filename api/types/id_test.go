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

package types_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/api/types"
)

func TestID(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		assert.NoError(t, types.ID("65a1b2c3d4e5f60718293a4b").Validate())

		err := types.ID("not-hex").Validate()
		assert.True(t, errors.Is(err, types.ErrInvalidID))

		err = types.ID("65a1b2").Validate()
		assert.True(t, errors.Is(err, types.ErrInvalidID))
	})

	t.Run("bytes round trip test", func(t *testing.T) {
		id := types.ID("65a1b2c3d4e5f60718293a4b")
		b, err := id.Bytes()
		assert.NoError(t, err)
		assert.Equal(t, id, types.IDFromBytes(b))
	})

	t.Run("join id test", func(t *testing.T) {
		ids := []types.ID{types.ID("id1"), types.ID("id2"), types.ID("id3")}
		assert.Equal(t, "id1,id2,id3", types.JoinIDs(ids))
	})
}
