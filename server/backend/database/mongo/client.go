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

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves stagegate
// data. Transitions use multi-document transactions, so the server must run
// as a replica set.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.ConnectionURI).
		SetRegistry(newRegistry())

	if conf.MonitoringEnabled {
		threshold, err := gotime.ParseDuration(conf.MonitoringSlowQueryThreshold)
		if err != nil {
			return nil, fmt.Errorf("parse slow query threshold: %w", err)
		}

		monitor := NewQueryMonitor(&MonitorConfig{
			Enabled:            conf.MonitoringEnabled,
			SlowQueryThreshold: threshold,
		})
		clientOptions.SetMonitor(monitor.CreateCommandMonitor())
	}

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.StagegateDatabase)
	if err := ensureCollections(ctx, db); err != nil {
		return nil, err
	}
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof(
		"MongoDB connected, URI: %s, DB: %s",
		conf.ConnectionURI,
		conf.StagegateDatabase,
	)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.client.Database(c.config.StagegateDatabase).Collection(name)
}

// CreateDocInfo stores a new document and returns it with its ID.
func (c *Client) CreateDocInfo(ctx context.Context, info *database.DocInfo) (*database.DocInfo, error) {
	stored := info.DeepCopy()
	stored.ID = types.ID(bson.NewObjectID().Hex())

	if _, err := c.collection(ColDocuments).InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return stored, nil
}

// UpdateDocInfo replaces a document outside of any workflow transition.
func (c *Client) UpdateDocInfo(ctx context.Context, info *database.DocInfo) error {
	return replaceDocInfo(ctx, c.collection(ColDocuments), info)
}

// FindDocInfoByID finds the document of the given id.
func (c *Client) FindDocInfoByID(ctx context.Context, id types.ID) (*database.DocInfo, error) {
	encodedID, err := encodeID(id)
	if err != nil {
		return nil, err
	}

	info := &database.DocInfo{}
	result := c.collection(ColDocuments).FindOne(ctx, bson.M{"_id": encodedID})
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}

	return info, nil
}

// FindDocInfosByIDs finds the documents of the given ids.
func (c *Client) FindDocInfosByIDs(ctx context.Context, ids []types.ID) ([]*database.DocInfo, error) {
	encodedIDs := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		encodedID, err := encodeID(id)
		if err != nil {
			return nil, err
		}
		encodedIDs = append(encodedIDs, encodedID)
	}

	return c.findDocInfos(ctx, bson.M{"_id": bson.M{"$in": encodedIDs}})
}

// FindChildDocInfos finds the documents under the given parent.
func (c *Client) FindChildDocInfos(ctx context.Context, parentID types.ID) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, bson.M{"parent_id": parentID})
}

// FindDueDocInfos finds the documents whose embargo or expiry is at or
// before the given time.
func (c *Client) FindDueDocInfos(ctx context.Context, at gotime.Time) ([]*database.DocInfo, error) {
	return c.findDocInfos(ctx, bson.M{"$or": bson.A{
		bson.M{"embargo_at": bson.M{"$lte": at}},
		bson.M{"expiry_at": bson.M{"$lte": at}},
	}})
}

func (c *Client) findDocInfos(ctx context.Context, filter bson.M) ([]*database.DocInfo, error) {
	cursor, err := c.collection(ColDocuments).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	var infos []*database.DocInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	return infos, nil
}

// FindRequestInfoByID finds the workflow request of the given id.
func (c *Client) FindRequestInfoByID(ctx context.Context, id types.ID) (*database.RequestInfo, error) {
	encodedID, err := encodeID(id)
	if err != nil {
		return nil, err
	}

	return findRequestInfo(ctx, c.collection(ColRequests), bson.M{"_id": encodedID}, id.String())
}

// FindOpenRequestInfo finds the open request of the given document.
func (c *Client) FindOpenRequestInfo(ctx context.Context, docID types.ID) (*database.RequestInfo, error) {
	return findRequestInfo(ctx, c.collection(ColRequests), bson.M{
		"document_id": docID,
		"status":      bson.M{"$in": types.OpenStatuses},
	}, "open request of "+docID.String())
}

// FindRequestInfos finds the requests matching the filter, ordered by ID.
func (c *Client) FindRequestInfos(
	ctx context.Context,
	filter database.RequestFilter,
) ([]*database.RequestInfo, error) {
	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.DocumentID != "" {
		query["document_id"] = filter.DocumentID
	}
	if filter.AuthorID != "" {
		query["author_id"] = filter.AuthorID
	}
	if filter.Approver != "" {
		query["approvers"] = filter.Approver
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	cursor, err := c.collection(ColRequests).Find(
		ctx,
		query,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}

	var infos []*database.RequestInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch requests: %w", err)
	}

	return infos, nil
}

// ApplyTransition writes the request and the document of the transition in
// one multi-document transaction.
func (c *Client) ApplyTransition(ctx context.Context, tr *database.Transition) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	isNew := tr.Request != nil && tr.Request.ID == ""
	if isNew {
		tr.Request.ID = types.ID(bson.NewObjectID().Hex())
	}
	tr.Link()

	if _, err := session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.applyTransition(ctx, tr, isNew)
	}); err != nil {
		if isNew {
			tr.Request.ID = ""
		}
		return err
	}

	return nil
}

func (c *Client) applyTransition(ctx context.Context, tr *database.Transition, isNew bool) error {
	requests := c.collection(ColRequests)

	if tr.Request != nil {
		if tr.Request.IsOpen() {
			open, err := findRequestInfo(ctx, requests, bson.M{
				"document_id": tr.Request.DocumentID,
				"status":      bson.M{"$in": types.OpenStatuses},
				"_id":         bson.M{"$ne": tr.Request.ID},
			}, "")
			if err != nil && !errors.Is(err, database.ErrRequestNotFound) {
				return err
			}
			if open != nil {
				return fmt.Errorf("%s: %w", tr.Request.DocumentID, database.ErrOpenRequestExists)
			}
		}

		if isNew {
			if _, err := requests.InsertOne(ctx, tr.Request); err != nil {
				return fmt.Errorf("create request: %w", err)
			}
		} else {
			result, err := requests.ReplaceOne(ctx, bson.M{"_id": tr.Request.ID}, tr.Request)
			if err != nil {
				return fmt.Errorf("update request: %w", err)
			}
			if result.MatchedCount == 0 {
				return fmt.Errorf("%s: %w", tr.Request.ID, database.ErrRequestNotFound)
			}
		}
	}

	if tr.Document != nil {
		if err := replaceDocInfo(ctx, c.collection(ColDocuments), tr.Document); err != nil {
			return err
		}
	}

	return nil
}

func replaceDocInfo(ctx context.Context, col *mongo.Collection, info *database.DocInfo) error {
	result, err := col.ReplaceOne(ctx, bson.M{"_id": info.ID}, info)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", info.ID, database.ErrDocumentNotFound)
	}

	return nil
}

func findRequestInfo(
	ctx context.Context,
	col *mongo.Collection,
	filter bson.M,
	label string,
) (*database.RequestInfo, error) {
	info := &database.RequestInfo{}
	if err := col.FindOne(ctx, filter).Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", label, database.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("find request: %w", err)
	}

	return info, nil
}
