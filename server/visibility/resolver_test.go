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

package visibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/server/backend/database"
	"github.com/stagegate/stagegate/server/visibility"
)

func at(value string) time.Time {
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time {
	return &t
}

func snapshot(version int64, title string) *types.Snapshot {
	return &types.Snapshot{Version: version, Title: title}
}

func TestResolve(t *testing.T) {
	t.Run("no schedule follows live test", func(t *testing.T) {
		doc := &database.DocInfo{Draft: snapshot(2, "draft"), Live: snapshot(1, "live")}
		res := visibility.Resolve(doc, at("2020-06-01 12:00:00"))
		assert.True(t, res.Visible)
		assert.Equal(t, types.SnapshotLive, res.Kind)
		assert.Equal(t, "live", res.Snapshot.Title)

		unpublished := &database.DocInfo{Draft: snapshot(1, "draft")}
		assert.Equal(t, types.Hidden, visibility.Resolve(unpublished, at("2020-06-01 12:00:00")))
		assert.Equal(t, types.Hidden, visibility.Resolve(nil, at("2020-06-01 12:00:00")))
	})

	t.Run("embargo boundary is inclusive test", func(t *testing.T) {
		embargo := at("2020-06-01 14:00:00")
		doc := &database.DocInfo{
			Draft:     snapshot(3, "new"),
			Live:      snapshot(2, "old"),
			Pending:   snapshot(3, "new"),
			EmbargoAt: ptr(embargo),
		}

		before := visibility.Resolve(doc, embargo.Add(-time.Second))
		assert.Equal(t, "old", before.Snapshot.Title)
		assert.Equal(t, types.SnapshotLive, before.Kind)

		exact := visibility.Resolve(doc, embargo)
		assert.Equal(t, "new", exact.Snapshot.Title)
		assert.Equal(t, types.SnapshotDraft, exact.Kind)

		after := visibility.Resolve(doc, embargo.Add(time.Second))
		assert.Equal(t, "new", after.Snapshot.Title)
	})

	t.Run("expiry boundary is inclusive test", func(t *testing.T) {
		expiry := at("2020-06-07 00:00:00")
		doc := &database.DocInfo{Live: snapshot(1, "live"), ExpiryAt: ptr(expiry)}

		assert.True(t, visibility.Resolve(doc, expiry.Add(-time.Second)).Visible)
		assert.False(t, visibility.Resolve(doc, expiry).Visible)
		assert.False(t, visibility.Resolve(doc, expiry.Add(time.Hour)).Visible)
	})

	t.Run("embargo and expiry windows test", func(t *testing.T) {
		doc := &database.DocInfo{
			Draft:     snapshot(2, "New title"),
			Live:      snapshot(1, "Old title"),
			Pending:   snapshot(2, "New title"),
			EmbargoAt: ptr(at("2020-06-01 14:00:00")),
			ExpiryAt:  ptr(at("2020-06-07 00:00:00")),
		}

		res := visibility.Resolve(doc, at("2020-06-01 13:00:00"))
		assert.True(t, res.Visible)
		assert.Equal(t, "Old title", res.Snapshot.Title)

		res = visibility.Resolve(doc, at("2020-06-02 16:00:00"))
		assert.True(t, res.Visible)
		assert.Equal(t, "New title", res.Snapshot.Title)

		res = visibility.Resolve(doc, at("2020-06-07 16:00:00"))
		assert.False(t, res.Visible)
		assert.Nil(t, res.Snapshot)
	})

	t.Run("never published document test", func(t *testing.T) {
		embargo := at("2020-06-01 14:00:00")
		doc := &database.DocInfo{
			Draft:     snapshot(1, "first"),
			Pending:   snapshot(1, "first"),
			EmbargoAt: ptr(embargo),
		}

		assert.False(t, visibility.Resolve(doc, embargo.Add(-time.Minute)).Visible)
		res := visibility.Resolve(doc, embargo)
		assert.True(t, res.Visible)
		assert.Equal(t, types.SnapshotDraft, res.Kind)
	})

	t.Run("deleted from draft resolves live until expiry test", func(t *testing.T) {
		expiry := at("2020-06-07 00:00:00")
		doc := &database.DocInfo{Live: snapshot(4, "live"), ExpiryAt: ptr(expiry)}

		res := visibility.Resolve(doc, expiry.Add(-time.Minute))
		assert.True(t, res.Visible)
		assert.Equal(t, int64(4), res.Snapshot.Version)
		assert.False(t, visibility.Resolve(doc, expiry).Visible)
	})

	t.Run("resolution does not alias the document test", func(t *testing.T) {
		doc := &database.DocInfo{Live: snapshot(1, "live")}
		res := visibility.Resolve(doc, at("2020-06-01 12:00:00"))
		res.Snapshot.Title = "changed"
		assert.Equal(t, "live", doc.Live.Title)
	})
}

func TestResolveStage(t *testing.T) {
	expiry := at("2020-06-07 00:00:00")
	doc := &database.DocInfo{
		Draft:    snapshot(5, "draft"),
		Live:     snapshot(4, "live"),
		ExpiryAt: ptr(expiry),
	}

	res := visibility.ResolveStage(doc, types.StageDraft, expiry.Add(time.Hour))
	assert.True(t, res.Visible)
	assert.Equal(t, "draft", res.Snapshot.Title)

	assert.False(t, visibility.ResolveStage(doc, types.StageLive, expiry).Visible)
	assert.True(t, visibility.ResolveStage(doc, types.StageLive, expiry.Add(-time.Hour)).Visible)

	deleted := &database.DocInfo{Live: snapshot(1, "live")}
	assert.False(t, visibility.ResolveStage(deleted, types.StageDraft, expiry).Visible)
}

func TestFilter(t *testing.T) {
	t.Run("sibling isolation test", func(t *testing.T) {
		embargo := at("2020-06-01 14:00:00")
		parent := &database.DocInfo{ID: "p", Live: snapshot(1, "parent")}
		first := &database.DocInfo{ID: "a", ParentID: "p", Live: snapshot(1, "first")}
		scheduled := &database.DocInfo{
			ID:        "b",
			ParentID:  "p",
			Draft:     snapshot(1, "scheduled"),
			Pending:   snapshot(1, "scheduled"),
			EmbargoAt: ptr(embargo),
		}
		last := &database.DocInfo{ID: "c", ParentID: "p", Live: snapshot(1, "last")}
		children := []*database.DocInfo{first, scheduled, last}

		ids := func(entries []visibility.Entry) []types.ID {
			var result []types.ID
			for _, e := range entries {
				result = append(result, e.Doc.ID)
			}
			return result
		}

		assert.Equal(t, []types.ID{"a", "c"}, ids(visibility.Filter(children, embargo.Add(-time.Hour))))
		assert.Equal(t, []types.ID{"a", "b", "c"}, ids(visibility.Filter(children, embargo)))

		for _, instant := range []time.Time{embargo.Add(-time.Hour), embargo, embargo.Add(time.Hour)} {
			res := visibility.Resolve(parent, instant)
			assert.True(t, res.Visible)
			assert.Equal(t, "parent", res.Snapshot.Title)
		}
	})
}
