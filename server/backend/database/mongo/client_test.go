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

package mongo_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/server/backend/database/mongo"
	"github.com/stagegate/stagegate/server/backend/database/testcases"
)

func setupTestClient(t *testing.T) *mongo.Client {
	config := &mongo.Config{
		ConnectionTimeout: "5s",
		ConnectionURI:     "mongodb://localhost:27017/?replicaSet=rs0&directConnection=true",
		StagegateDatabase: fmt.Sprintf("stagegate-test-%d", time.Now().UnixNano()),
		PingTimeout:       "1s",
	}
	assert.NoError(t, config.Validate())

	cli, err := mongo.Dial(config)
	if err != nil {
		t.Skipf("mongo is not reachable: %v", err)
	}

	return cli
}

func TestClient(t *testing.T) {
	cli := setupTestClient(t)
	defer func() {
		assert.NoError(t, cli.Close())
	}()

	t.Run("FindDocInfo test", func(t *testing.T) {
		testcases.RunFindDocInfoTest(t, cli)
	})

	t.Run("FindDueDocInfos test", func(t *testing.T) {
		testcases.RunFindDueDocInfosTest(t, cli)
	})

	t.Run("ApplyTransition test", func(t *testing.T) {
		testcases.RunApplyTransitionTest(t, cli)
	})

	t.Run("FindRequestInfos test", func(t *testing.T) {
		testcases.RunFindRequestInfosTest(t, cli)
	})
}
