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

package permission

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stagegate/stagegate/api/types"
	"github.com/stagegate/stagegate/pkg/webhook"
	"github.com/stagegate/stagegate/server/backend/database"
)

// CheckRequest is the payload sent to the permission webhook.
type CheckRequest struct {
	Actor      string     `json:"actor"`
	Capability Capability `json:"capability"`
	DocumentID types.ID   `json:"document_id"`
	Owner      string     `json:"owner"`
}

// CheckResponse is the answer of the permission webhook.
type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// WebhookChecker asks an external service for capabilities and caches its
// answers.
type WebhookChecker struct {
	url      string
	secret   string
	client   *webhook.Client[CheckRequest, CheckResponse]
	cache    *expirable.LRU[CheckRequest, bool]
	fallback *Policy
}

// NewWebhookChecker creates a WebhookChecker. Approvers are resolved by the
// given policy.
func NewWebhookChecker(conf *Config, fallback *Policy) *WebhookChecker {
	return &WebhookChecker{
		url:    conf.WebhookURL,
		secret: conf.WebhookSecret,
		client: webhook.NewClient[CheckRequest, CheckResponse](webhook.Options{
			MaxRetries:      conf.WebhookMaxRetries,
			MinWaitInterval: 100 * time.Millisecond,
			MaxWaitInterval: conf.ParseWebhookMaxWaitInterval(),
		}),
		cache: expirable.NewLRU[CheckRequest, bool](
			conf.WebhookCacheSize,
			nil,
			conf.ParseWebhookCacheTTL(),
		),
		fallback: fallback,
	}
}

// Check asks the webhook whether the actor holds the capability.
func (c *WebhookChecker) Check(
	ctx context.Context,
	actor string,
	capability Capability,
	doc *database.DocInfo,
) (bool, error) {
	if actor == "" {
		return false, nil
	}

	req := CheckRequest{Actor: actor, Capability: capability}
	if doc != nil {
		req.DocumentID = doc.ID
		req.Owner = doc.Owner
	}

	if allowed, ok := c.cache.Get(req); ok {
		return allowed, nil
	}

	res, _, err := c.client.SendJSON(ctx, c.url, c.secret, req)
	if err != nil {
		return false, fmt.Errorf("check %s of %s: %w", capability, actor, err)
	}

	c.cache.Add(req, res.Allowed)
	return res.Allowed, nil
}

// ApproversFor returns the approvers of the fallback policy.
func (c *WebhookChecker) ApproversFor(ctx context.Context, doc *database.DocInfo) ([]string, error) {
	return c.fallback.ApproversFor(ctx, doc)
}
