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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/server/backend/database"
)

type closeRecorder struct {
	database.Database
	closed   bool
	closeErr error
}

func (r *closeRecorder) Close() error {
	r.closed = true
	return r.closeErr
}

func TestCloseOnError(t *testing.T) {
	cause := errors.New("housekeeping")

	t.Run("closes the database test", func(t *testing.T) {
		db := &closeRecorder{}
		err := closeOnError(db, cause)
		assert.True(t, db.closed)
		assert.Equal(t, cause, err)
	})

	t.Run("keeps the cause when close fails test", func(t *testing.T) {
		closeErr := errors.New("close")
		db := &closeRecorder{closeErr: closeErr}
		err := closeOnError(db, cause)
		assert.True(t, db.closed)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, closeErr)
	})
}
