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

package rpc

import (
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
)

type documentResponse struct {
	ID            types.ID        `json:"id"`
	ParentID      types.ID        `json:"parent_id,omitempty"`
	Owner         string          `json:"owner"`
	Draft         *types.Snapshot `json:"draft,omitempty"`
	Live          *types.Snapshot `json:"live,omitempty"`
	Pending       *types.Snapshot `json:"pending,omitempty"`
	EmbargoAt     *time.Time      `json:"embargo_at,omitempty"`
	ExpiryAt      *time.Time      `json:"expiry_at,omitempty"`
	OpenRequestID types.ID        `json:"open_request_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toDocumentResponse(info *database.DocInfo) *documentResponse {
	return &documentResponse{
		ID:            info.ID,
		ParentID:      info.ParentID,
		Owner:         info.Owner,
		Draft:         info.Draft,
		Live:          info.Live,
		Pending:       info.Pending,
		EmbargoAt:     info.EmbargoAt,
		ExpiryAt:      info.ExpiryAt,
		OpenRequestID: info.OpenRequestID,
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
	}
}

type changeResponse struct {
	AuthorID     string               `json:"author_id"`
	Comment      string               `json:"comment,omitempty"`
	Status       *types.RequestStatus `json:"status,omitempty"`
	DraftVersion *int64               `json:"draft_version,omitempty"`
	LiveVersion  *int64               `json:"live_version,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

func toChangesResponse(changes []*database.ChangeInfo) []*changeResponse {
	result := make([]*changeResponse, 0, len(changes))
	for _, c := range changes {
		result = append(result, &changeResponse{
			AuthorID:     c.AuthorID,
			Comment:      c.Comment,
			Status:       c.Status,
			DraftVersion: c.DraftVersion,
			LiveVersion:  c.LiveVersion,
			CreatedAt:    c.CreatedAt,
		})
	}
	return result
}

type requestResponse struct {
	ID          types.ID            `json:"id"`
	Kind        types.RequestKind   `json:"kind"`
	Status      types.RequestStatus `json:"status"`
	DocumentID  types.ID            `json:"document_id"`
	AuthorID    string              `json:"author_id"`
	PublisherID string              `json:"publisher_id,omitempty"`
	Approvers   []string            `json:"approvers"`
	EmbargoAt   *time.Time          `json:"embargo_at,omitempty"`
	ExpiryAt    *time.Time          `json:"expiry_at,omitempty"`
	Changes     []*changeResponse   `json:"changes"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toRequestResponse(info *database.RequestInfo) *requestResponse {
	return &requestResponse{
		ID:          info.ID,
		Kind:        info.Kind,
		Status:      info.Status,
		DocumentID:  info.DocumentID,
		AuthorID:    info.AuthorID,
		PublisherID: info.PublisherID,
		Approvers:   info.Approvers,
		EmbargoAt:   info.EmbargoAt,
		ExpiryAt:    info.ExpiryAt,
		Changes:     toChangesResponse(info.Changes),
		CreatedAt:   info.CreatedAt,
		UpdatedAt:   info.UpdatedAt,
	}
}
