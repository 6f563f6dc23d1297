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

// Package admin is a client of the Stagegate API used by the CLI.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/api/types"
)

// Option configures Options.
type Option func(*Options)

// WithToken configures the token of the client.
func WithToken(token string) Option {
	return func(o *Options) { o.Token = token }
}

// WithInsecure configures the client to talk plain HTTP.
func WithInsecure(isInsecure bool) Option {
	return func(o *Options) { o.IsInsecure = isInsecure }
}

// WithLogger configures the Logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithHTTPClient configures the HTTP client the calls are sent with.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) { o.HTTPClient = client }
}

// Options configures how we set up the client.
type Options struct {
	// Token is the token of the actor.
	Token string

	// IsInsecure is whether to disable TLS.
	IsInsecure bool

	// HTTPClient sends the calls. Its transport is wrapped to carry the token.
	HTTPClient *http.Client

	// Logger is the Logger of the client.
	Logger *zap.Logger
}

// Client is a client of the Stagegate API.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	authTransport *AuthTransport

	logger *zap.Logger
}

// APIError is a failed call as reported by the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Dial creates an instance of Client for the server at the given address.
func Dial(rpcAddr string, opts ...Option) (*Client, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	scheme := "https"
	if options.IsInsecure {
		scheme = "http"
	}
	if !strings.Contains(rpcAddr, "://") {
		rpcAddr = scheme + "://" + rpcAddr
	}
	baseURL, err := url.Parse(rpcAddr)
	if err != nil {
		return nil, fmt.Errorf("parse address %s: %w", rpcAddr, err)
	}

	logger := options.Logger
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("new logger: %w", err)
		}
		logger = l
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if options.HTTPClient != nil {
		copied := *options.HTTPClient
		httpClient = &copied
	}
	authTransport := NewAuthTransport(httpClient.Transport, options.Token)
	httpClient.Transport = authTransport

	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		authTransport: authTransport,
		logger:        logger,
	}, nil
}

// Close releases idle connections of the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// ServerVersion returns the version of the server.
func (c *Client) ServerVersion(ctx context.Context) (*types.VersionDetail, error) {
	var detail types.VersionDetail
	if err := c.get(ctx, "/version", nil, &detail); err != nil {
		return nil, fmt.Errorf("get server version: %w", err)
	}
	return &detail, nil
}

// GetDocument resolves the document of the stage at the given instant. A
// zero instant resolves at the current instant of the server.
func (c *Client) GetDocument(
	ctx context.Context,
	id types.ID,
	stage types.Stage,
	at time.Time,
) (*types.DocumentSummary, error) {
	query := url.Values{}
	if stage != "" {
		query.Set("stage", string(stage))
	}
	if !at.IsZero() {
		query.Set("at", at.Format(time.RFC3339))
	}

	var summary types.DocumentSummary
	if err := c.get(ctx, "/documents/"+url.PathEscape(id.String()), query, &summary); err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &summary, nil
}

// RequestFilter narrows the listed requests.
type RequestFilter struct {
	Kind     types.RequestKind
	Author   string
	Approver string
	Statuses []types.RequestStatus
}

// ListRequests lists the requests matching the filter.
func (c *Client) ListRequests(ctx context.Context, filter RequestFilter) ([]*types.RequestSummary, error) {
	query := url.Values{}
	if filter.Kind != "" {
		query.Set("kind", string(filter.Kind))
	}
	if filter.Author != "" {
		query.Set("author", filter.Author)
	}
	if filter.Approver != "" {
		query.Set("approver", filter.Approver)
	}
	for _, status := range filter.Statuses {
		query.Add("status", string(status))
	}

	var summaries []*types.RequestSummary
	if err := c.get(ctx, "/requests", query, &summaries); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return summaries, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
