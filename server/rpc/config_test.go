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

package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/server/rpc"
)

func TestConfig(t *testing.T) {
	scheme := rpc.Config{
		Port:         8080,
		ReadTimeout:  "30s",
		WriteTimeout: "30s",
	}
	assert.NoError(t, scheme.Validate())

	conf1 := scheme
	conf1.Port = -1
	assert.ErrorIs(t, conf1.Validate(), rpc.ErrInvalidRPCPort)

	conf2 := scheme
	conf2.CertFile = "noSuchCertFile"
	assert.ErrorIs(t, conf2.Validate(), rpc.ErrInvalidCertFile)

	conf3 := scheme
	conf3.KeyFile = "noSuchKeyFile"
	assert.ErrorIs(t, conf3.Validate(), rpc.ErrInvalidKeyFile)

	conf4 := scheme
	conf4.ReadTimeout = "1 minute"
	assert.ErrorIs(t, conf4.Validate(), rpc.ErrInvalidReadTimeout)

	conf5 := scheme
	conf5.WriteTimeout = ""
	assert.ErrorIs(t, conf5.Validate(), rpc.ErrInvalidWriteTimeout)
}
