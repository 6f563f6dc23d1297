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

package types

import "time"

// SnapshotKind is the role of the snapshot a read observed.
type SnapshotKind string

const (
	// SnapshotLive is the published snapshot as stored.
	SnapshotLive SnapshotKind = "live"

	// SnapshotDraft is a staged draft that became visible through its embargo.
	SnapshotDraft SnapshotKind = "draft"

	// SnapshotNone means nothing is visible.
	SnapshotNone SnapshotKind = "none"
)

// Stage selects which snapshot of a document a lookup reads.
type Stage string

const (
	// StageDraft reads the editable snapshot.
	StageDraft Stage = "draft"

	// StageLive reads the published snapshot at the evaluation instant.
	StageLive Stage = "live"
)

// Snapshot is one version of a document's content.
type Snapshot struct {
	// Version is incremented on every save of the owning stage.
	Version int64 `bson:"version" json:"version"`

	// Title is the title of the document in this version.
	Title string `bson:"title" json:"title"`

	// Content is the body of the document in this version.
	Content string `bson:"content" json:"content"`

	// SavedAt is the time when this version was written.
	SavedAt time.Time `bson:"saved_at" json:"saved_at"`
}

// DeepCopy returns a copy of this snapshot.
func (s *Snapshot) DeepCopy() *Snapshot {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}

// VersionPtr returns a pointer to the version, or nil when the snapshot is
// absent.
func (s *Snapshot) VersionPtr() *int64 {
	if s == nil {
		return nil
	}

	v := s.Version
	return &v
}

// Resolution is the outcome of evaluating a document at an instant.
type Resolution struct {
	Visible  bool         `json:"visible"`
	Kind     SnapshotKind `json:"kind"`
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
}

// Hidden is the resolution of a document nobody can see.
var Hidden = Resolution{Kind: SnapshotNone}
