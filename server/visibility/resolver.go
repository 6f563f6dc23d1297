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

// Package visibility decides which snapshot of a document is observable at a
// given instant, taking its embargo and expiry into account.
package visibility

import (
	"time"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
)

// Resolve evaluates the document at the given instant. Embargo and expiry
// boundaries are inclusive: at the exact embargo instant the staged snapshot
// is already visible, and at the exact expiry instant the document is gone.
func Resolve(doc *database.DocInfo, at time.Time) types.Resolution {
	if doc == nil {
		return types.Hidden
	}

	current, kind := doc.Live, types.SnapshotLive
	if doc.EmbargoAt != nil && doc.Pending != nil && reached(*doc.EmbargoAt, at) {
		current, kind = doc.Pending, types.SnapshotDraft
	}

	// A document that never reached live at this instant has nothing to
	// expire.
	if current == nil {
		return types.Hidden
	}

	if doc.ExpiryAt != nil && reached(*doc.ExpiryAt, at) {
		return types.Hidden
	}

	return types.Resolution{
		Visible:  true,
		Kind:     kind,
		Snapshot: current.DeepCopy(),
	}
}

// ResolveStage reads the snapshot of the given stage. The draft stage is not
// subject to embargo or expiry.
func ResolveStage(doc *database.DocInfo, stage types.Stage, at time.Time) types.Resolution {
	if stage != types.StageDraft {
		return Resolve(doc, at)
	}

	if doc == nil || doc.Draft == nil {
		return types.Hidden
	}

	return types.Resolution{
		Visible:  true,
		Kind:     types.SnapshotDraft,
		Snapshot: doc.Draft.DeepCopy(),
	}
}

// Entry pairs a document with its resolution.
type Entry struct {
	Doc        *database.DocInfo
	Resolution types.Resolution
}

// Filter resolves every document at the given instant and keeps the visible
// ones in their original order. Each document is evaluated on its own
// schedule only.
func Filter(docs []*database.DocInfo, at time.Time) []Entry {
	var entries []Entry
	for _, doc := range docs {
		if res := Resolve(doc, at); res.Visible {
			entries = append(entries, Entry{Doc: doc, Resolution: res})
		}
	}

	return entries
}

func reached(boundary, at time.Time) bool {
	return !at.Before(boundary)
}
