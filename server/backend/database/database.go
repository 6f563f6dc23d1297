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

// Package database provides the database interface for the stagegate backend.
package database

import (
	"context"
	gotime "time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrRequestNotFound is returned when the workflow request could not be found.
	ErrRequestNotFound = errors.NotFound("request not found").WithCode("ErrRequestNotFound")

	// ErrOpenRequestExists is returned when storing an open request would
	// give its document a second open request.
	ErrOpenRequestExists = errors.FailedPrecond("document already has an open request").WithCode("ErrOpenRequestExists")
)

// RequestFilter narrows FindRequestInfos. Zero values match everything.
type RequestFilter struct {
	Kind       types.RequestKind
	DocumentID types.ID
	AuthorID   string
	Approver   string
	Statuses   []types.RequestStatus
}

// Matches returns whether the given request passes this filter.
func (f RequestFilter) Matches(info *RequestInfo) bool {
	if f.Kind != "" && info.Kind != f.Kind {
		return false
	}
	if f.DocumentID != "" && info.DocumentID != f.DocumentID {
		return false
	}
	if f.AuthorID != "" && info.AuthorID != f.AuthorID {
		return false
	}
	if f.Approver != "" && !info.IsApprover(f.Approver) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, status := range f.Statuses {
		if info.Status == status {
			return true
		}
	}
	return false
}

// Transition is the set of writes one workflow step commits together.
type Transition struct {
	// Request is created when its ID is empty and replaced otherwise.
	Request *RequestInfo

	// Document, when set, replaces the stored document.
	Document *DocInfo
}

// Link points the document's OpenRequestID at the request while it is open
// and clears it once the request is closed. Call it after the request ID is
// assigned.
func (tr *Transition) Link() {
	if tr.Request == nil || tr.Document == nil || tr.Document.ID != tr.Request.DocumentID {
		return
	}

	if tr.Request.IsOpen() {
		tr.Document.OpenRequestID = tr.Request.ID
	} else if tr.Document.OpenRequestID == tr.Request.ID {
		tr.Document.OpenRequestID = ""
	}
}

// Database represents database which reads or saves stagegate data.
type Database interface {
	// Close all resources of this database.
	Close() error

	// CreateDocInfo stores a new document and returns it with its ID.
	CreateDocInfo(ctx context.Context, info *DocInfo) (*DocInfo, error)

	// UpdateDocInfo replaces a document outside of any workflow transition.
	UpdateDocInfo(ctx context.Context, info *DocInfo) error

	// FindDocInfoByID finds the document of the given id.
	FindDocInfoByID(ctx context.Context, id types.ID) (*DocInfo, error)

	// FindDocInfosByIDs finds the documents of the given ids, skipping
	// unknown ids.
	FindDocInfosByIDs(ctx context.Context, ids []types.ID) ([]*DocInfo, error)

	// FindChildDocInfos finds the documents under the given parent. An empty
	// parent lists the root documents.
	FindChildDocInfos(ctx context.Context, parentID types.ID) ([]*DocInfo, error)

	// FindDueDocInfos finds the documents whose embargo or expiry is at or
	// before the given time.
	FindDueDocInfos(ctx context.Context, at gotime.Time) ([]*DocInfo, error)

	// FindRequestInfoByID finds the workflow request of the given id.
	FindRequestInfoByID(ctx context.Context, id types.ID) (*RequestInfo, error)

	// FindOpenRequestInfo finds the open request of the given document. It
	// returns ErrRequestNotFound when the document has none.
	FindOpenRequestInfo(ctx context.Context, docID types.ID) (*RequestInfo, error)

	// FindRequestInfos finds the requests matching the filter, ordered by ID.
	FindRequestInfos(ctx context.Context, filter RequestFilter) ([]*RequestInfo, error)

	// ApplyTransition writes the request and the document of the transition
	// atomically. A newly created request gets its ID assigned in place.
	ApplyTransition(ctx context.Context, tr *Transition) error
}
