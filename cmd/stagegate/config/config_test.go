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

package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagegate/stagegate/cmd/stagegate/config"
)

func TestConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("missing file test", func(t *testing.T) {
		conf, err := config.Load()
		require.NoError(t, err)
		assert.Empty(t, conf.Auths)

		_, err = config.LoadToken("localhost:8080")
		assert.ErrorIs(t, err, config.ErrNoToken)
	})

	t.Run("save and load token test", func(t *testing.T) {
		conf := config.New()
		conf.Auths["localhost:8080"] = "token-a"
		require.NoError(t, config.Save(conf))

		token, err := config.LoadToken("localhost:8080")
		require.NoError(t, err)
		assert.Equal(t, "token-a", token)
	})

	t.Run("environment overrides stored token test", func(t *testing.T) {
		t.Setenv("STAGEGATE_TOKEN", "token-b")
		require.NoError(t, config.Preload(nil, nil))
		t.Cleanup(viper.Reset)

		token, err := config.LoadToken("localhost:8080")
		require.NoError(t, err)
		assert.Equal(t, "token-b", token)
	})
}
