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

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		assert.NoError(t, ValidateValue("editor@example.com", "required,actor_id"))
		assert.NoError(t, ValidateValue("publisher-1", "required,actor_id"))

		err := ValidateValue("has space", "required,actor_id")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must only contain")

		assert.Error(t, ValidateValue("", "required,actor_id"))
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		type fields struct {
			Name  string   `validate:"required"`
			Kinds []string `validate:"omitempty,unique"`
		}

		assert.NoError(t, ValidateStruct(fields{Name: "a"}))

		err := ValidateStruct(fields{Kinds: []string{"a", "a"}})
		structErr, ok := err.(*StructError)
		assert.True(t, ok)
		assert.Len(t, structErr.Violations, 2)
		assert.Equal(t, "Name", structErr.Violations[0].Field)
		assert.Equal(t, "required", structErr.Violations[0].Tag)
		assert.Equal(t, "unique", structErr.Violations[1].Tag)
	})
}
