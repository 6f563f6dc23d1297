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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// ColDocuments represents the documents collection in the database.
	ColDocuments = "documents"
	// ColRequests represents the workflow requests collection in the database.
	ColRequests = "requests"
)

// Collections represents the list of all collections in the database.
var Collections = []string{
	ColDocuments,
	ColRequests,
}

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

var collectionInfos = []collectionInfo{
	{
		name: ColDocuments,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "parent_id", Value: int32(1)},
				{Key: "sort_index", Value: int32(1)},
			},
		}, {
			Keys: bson.D{{Key: "embargo_at", Value: int32(1)}},
		}, {
			Keys: bson.D{{Key: "expiry_at", Value: int32(1)}},
		}},
	},
	{
		name: ColRequests,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "document_id", Value: int32(1)},
				{Key: "status", Value: int32(1)},
			},
		}, {
			Keys: bson.D{
				{Key: "author_id", Value: int32(1)},
				{Key: "kind", Value: int32(1)},
			},
		}, {
			Keys: bson.D{{Key: "approvers", Value: int32(1)}},
		}},
	},
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		_, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes)
		if err != nil {
			return fmt.Errorf("create indexes: %w", err)
		}
	}
	return nil
}

// ensureCollections creates the collections up front, as collections cannot
// be created implicitly inside a multi-document transaction on older servers.
func ensureCollections(ctx context.Context, db *mongo.Database) error {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	existing := make(map[string]bool, len(names))
	for _, name := range names {
		existing[name] = true
	}

	for _, name := range Collections {
		if existing[name] {
			continue
		}
		if err := db.CreateCollection(ctx, name, options.CreateCollection()); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}
