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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	"sort"
	gotime "time"

	"github.com/hashicorp/go-memdb"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateDocInfo stores a new document and returns it with its ID.
func (d *DB) CreateDocInfo(_ context.Context, info *database.DocInfo) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	stored := info.DeepCopy()
	stored.ID = newID()
	if err := txn.Insert(tblDocuments, stored); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	txn.Commit()

	return stored.DeepCopy(), nil
}

// UpdateDocInfo replaces a document outside of any workflow transition.
func (d *DB) UpdateDocInfo(_ context.Context, info *database.DocInfo) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if err := replaceDocInfo(txn, info); err != nil {
		return err
	}
	txn.Commit()

	return nil
}

// FindDocInfoByID finds the document of the given id.
func (d *DB) FindDocInfoByID(_ context.Context, id types.ID) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo).DeepCopy(), nil
}

// FindDocInfosByIDs finds the documents of the given ids.
func (d *DB) FindDocInfosByIDs(_ context.Context, ids []types.ID) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	var infos []*database.DocInfo
	for _, id := range ids {
		raw, err := txn.First(tblDocuments, "id", id.String())
		if err != nil {
			return nil, fmt.Errorf("find documents by ids: %w", err)
		}
		if raw == nil {
			continue
		}
		infos = append(infos, raw.(*database.DocInfo).DeepCopy())
	}

	return infos, nil
}

// FindChildDocInfos finds the documents under the given parent.
func (d *DB) FindChildDocInfos(_ context.Context, parentID types.ID) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	var iter memdb.ResultIterator
	var err error
	if parentID == "" {
		iter, err = txn.Get(tblDocuments, "id")
	} else {
		iter, err = txn.Get(tblDocuments, "parent_id", parentID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("find child documents: %w", err)
	}

	var infos []*database.DocInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.DocInfo)
		if info.ParentID != parentID {
			continue
		}
		infos = append(infos, info.DeepCopy())
	}

	return infos, nil
}

// FindDueDocInfos finds the documents whose embargo or expiry is at or
// before the given time.
func (d *DB) FindDueDocInfos(_ context.Context, at gotime.Time) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("find due documents: %w", err)
	}

	var infos []*database.DocInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.DocInfo)
		if isDue(info.EmbargoAt, at) || isDue(info.ExpiryAt, at) {
			infos = append(infos, info.DeepCopy())
		}
	}

	return infos, nil
}

// FindRequestInfoByID finds the workflow request of the given id.
func (d *DB) FindRequestInfoByID(_ context.Context, id types.ID) (*database.RequestInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblRequests, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrRequestNotFound)
	}

	return raw.(*database.RequestInfo).DeepCopy(), nil
}

// FindOpenRequestInfo finds the open request of the given document.
func (d *DB) FindOpenRequestInfo(_ context.Context, docID types.ID) (*database.RequestInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	info, err := findOpenRequest(txn, docID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("open request of %s: %w", docID, database.ErrRequestNotFound)
	}

	return info.DeepCopy(), nil
}

// FindRequestInfos finds the requests matching the filter, ordered by ID.
func (d *DB) FindRequestInfos(
	_ context.Context,
	filter database.RequestFilter,
) ([]*database.RequestInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	var iter memdb.ResultIterator
	var err error
	switch {
	case filter.DocumentID != "":
		iter, err = txn.Get(tblRequests, "document_id", filter.DocumentID.String())
	case filter.AuthorID != "":
		iter, err = txn.Get(tblRequests, "author_id", filter.AuthorID)
	default:
		iter, err = txn.Get(tblRequests, "id")
	}
	if err != nil {
		return nil, fmt.Errorf("find requests: %w", err)
	}

	var infos []*database.RequestInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.RequestInfo)
		if filter.Matches(info) {
			infos = append(infos, info.DeepCopy())
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})

	return infos, nil
}

// ApplyTransition writes the request and the document of the transition in
// one memdb transaction, so readers see either none or all of it.
func (d *DB) ApplyTransition(_ context.Context, tr *database.Transition) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	isNew := tr.Request != nil && tr.Request.ID == ""
	if err := applyTransition(txn, tr); err != nil {
		if isNew {
			tr.Request.ID = ""
		}
		return err
	}

	txn.Commit()
	return nil
}

func applyTransition(txn *memdb.Txn, tr *database.Transition) error {
	if tr.Request != nil {
		if err := putRequestInfo(txn, tr.Request); err != nil {
			return err
		}
	}

	tr.Link()
	if tr.Document != nil {
		if err := replaceDocInfo(txn, tr.Document); err != nil {
			return err
		}
	}

	return nil
}

func putRequestInfo(txn *memdb.Txn, info *database.RequestInfo) error {
	if info.ID == "" {
		info.ID = newID()
	} else {
		raw, err := txn.First(tblRequests, "id", info.ID.String())
		if err != nil {
			return fmt.Errorf("find request by id: %w", err)
		}
		if raw == nil {
			return fmt.Errorf("%s: %w", info.ID, database.ErrRequestNotFound)
		}
	}

	if info.IsOpen() {
		open, err := findOpenRequest(txn, info.DocumentID)
		if err != nil {
			return err
		}
		if open != nil && open.ID != info.ID {
			return fmt.Errorf("%s: %w", info.DocumentID, database.ErrOpenRequestExists)
		}
	}

	if err := txn.Insert(tblRequests, info.DeepCopy()); err != nil {
		return fmt.Errorf("put request: %w", err)
	}

	return nil
}

func replaceDocInfo(txn *memdb.Txn, info *database.DocInfo) error {
	raw, err := txn.First(tblDocuments, "id", info.ID.String())
	if err != nil {
		return fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("%s: %w", info.ID, database.ErrDocumentNotFound)
	}

	if err := txn.Insert(tblDocuments, info.DeepCopy()); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

func findOpenRequest(txn *memdb.Txn, docID types.ID) (*database.RequestInfo, error) {
	for _, status := range types.OpenStatuses {
		raw, err := txn.First(tblRequests, "document_id_status", docID.String(), string(status))
		if err != nil {
			return nil, fmt.Errorf("find open request: %w", err)
		}
		if raw != nil {
			return raw.(*database.RequestInfo), nil
		}
	}

	return nil, nil
}

func isDue(t *gotime.Time, at gotime.Time) bool {
	return t != nil && !t.After(at)
}

func newID() types.ID {
	return types.ID(bson.NewObjectID().Hex())
}
