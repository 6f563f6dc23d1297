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

// Package webhook provides a client that delivers JSON payloads to webhook
// endpoints with retries.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	gotime "time"

	"github.com/stagegate/stagegate/server/logging"
)

var (
	// ErrUnexpectedResponse is returned when the response from the webhook is not as expected.
	ErrUnexpectedResponse = errors.New("unexpected response from webhook")
)

// Options are the options for the webhook client.
type Options struct {
	MaxRetries      uint64
	MinWaitInterval gotime.Duration
	MaxWaitInterval gotime.Duration
	RequestTimeout  gotime.Duration
}

// Client is a client for the webhook.
type Client[Req any, Res any] struct {
	httpClient *http.Client
	options    Options
}

// NewClient creates a new instance of Client.
func NewClient[Req any, Res any](options Options) *Client[Req, Res] {
	return &Client[Req, Res]{
		httpClient: &http.Client{Timeout: options.RequestTimeout},
		options:    options,
	}
}

// Send sends the given body to the webhook. When secret is not empty the
// body is signed with HMAC-SHA256 in the X-Signature-256 header.
func (c *Client[Req, Res]) Send(
	ctx context.Context,
	url, secret string,
	body []byte,
) (*Res, int, error) {
	signature := ""
	if secret != "" {
		signature = Sign(secret, body)
	}

	var res Res
	var status int
	err := WithExponentialBackoff(
		ctx,
		c.options.MaxRetries,
		c.options.MinWaitInterval,
		c.options.MaxWaitInterval,
		func() (int, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return 0, fmt.Errorf("create webhook request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			if signature != "" {
				req.Header.Set("X-Signature-256", signature)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return 0, fmt.Errorf("post to webhook: %w", err)
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					logging.From(ctx).Error(err)
				}
			}()

			status = resp.StatusCode
			if resp.StatusCode != http.StatusOK {
				return resp.StatusCode, ErrUnexpectedStatusCode
			}

			if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
				return resp.StatusCode, ErrUnexpectedResponse
			}

			return resp.StatusCode, nil
		},
	)
	if err != nil {
		return nil, status, err
	}

	return &res, status, nil
}

// SendJSON marshals the given request and sends it to the webhook.
func (c *Client[Req, Res]) SendJSON(
	ctx context.Context,
	url, secret string,
	req Req,
) (*Res, int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal webhook request: %w", err)
	}

	return c.Send(ctx, url, secret, body)
}

// Sign returns the X-Signature-256 header value of the given body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
