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

// Package permission answers whether an actor holds a capability on a
// document and who approves its requests.
package permission

import (
	"context"
	"fmt"
	"slices"

	"github.com/stagegate/stagegate/server/backend/database"
)

// Capability is a right an actor may hold on a document.
type Capability string

const (
	// CanEdit allows saving drafts, creating requests and commenting.
	CanEdit Capability = "edit"

	// CanPublish allows approving, denying and publishing directly.
	CanPublish Capability = "publish"

	// CanDeleteFromLive allows removing a document from live.
	CanDeleteFromLive Capability = "delete-from-live"
)

// Checker resolves capabilities. Implementations may call external systems
// and must honour the context deadline.
type Checker interface {
	// Check returns whether the actor holds the capability on the document.
	Check(ctx context.Context, actor string, capability Capability, doc *database.DocInfo) (bool, error)

	// ApproversFor returns the default approvers of the document's requests.
	ApproversFor(ctx context.Context, doc *database.DocInfo) ([]string, error)
}

// Wildcard grants a role to every actor.
const Wildcard = "*"

// Policy is a static role table.
type Policy struct {
	editors    []string
	publishers []string
	deleters   []string
}

// NewPolicy creates a Policy from the configured roles. Publishers may also
// edit; deleters default to the publishers when empty.
func NewPolicy(conf *Config) *Policy {
	deleters := conf.Deleters
	if len(deleters) == 0 {
		deleters = conf.Publishers
	}

	return &Policy{
		editors:    slices.Clone(conf.Editors),
		publishers: slices.Clone(conf.Publishers),
		deleters:   slices.Clone(deleters),
	}
}

// Check returns whether the actor holds the capability on the document. The
// owner of a document may always edit it.
func (p *Policy) Check(
	_ context.Context,
	actor string,
	capability Capability,
	doc *database.DocInfo,
) (bool, error) {
	if actor == "" {
		return false, nil
	}

	switch capability {
	case CanEdit:
		return (doc != nil && doc.Owner == actor) ||
			member(p.editors, actor) ||
			member(p.publishers, actor), nil
	case CanPublish:
		return member(p.publishers, actor), nil
	case CanDeleteFromLive:
		return member(p.deleters, actor), nil
	default:
		return false, fmt.Errorf("check %s: %w", capability, ErrUnknownCapability)
	}
}

// ApproversFor returns the configured publishers, sorted. The wildcard is
// not an approver.
func (p *Policy) ApproversFor(_ context.Context, _ *database.DocInfo) ([]string, error) {
	var approvers []string
	for _, publisher := range p.publishers {
		if publisher != Wildcard {
			approvers = append(approvers, publisher)
		}
	}
	slices.Sort(approvers)

	return slices.Compact(approvers), nil
}

func member(actors []string, actor string) bool {
	return slices.Contains(actors, Wildcard) || slices.Contains(actors, actor)
}
