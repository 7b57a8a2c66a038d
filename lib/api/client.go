/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package api contains thin REST clients of the application under test
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/steinfletcher/apitest"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cpmntech/vulcan/lib/config"
	"github.com/cpmntech/vulcan/lib/log"
)

const contentTypeJSON = "application/json"

// Response is the captured HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// String returns the body as text
func (r *Response) String() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// JSON returns the value under gjson path, like "data.id"
func (r *Response) JSON(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals JSON body into v
func (r *Response) Decode(v any) error {
	if r == nil {
		return errors.New("response is nil")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unable to decode response body: %w", err)
	}
	return nil
}

// BaseClient sends requests relative to api.baseUrl through apitest networking mode
type BaseClient struct {
	baseURL    string
	httpClient *http.Client
	reportDir  string

	mu    sync.RWMutex
	token string

	logger *slog.Logger
}

// NewBaseClient reads api.baseUrl and api.timeout (milliseconds) from the configuration
func NewBaseClient(cfg *config.Config) (*BaseClient, error) {
	baseURL, err := cfg.Get(config.APIBaseURL)
	if err != nil {
		return nil, err
	}
	timeoutMs, err := cfg.GetInt(config.APITimeout)
	if err != nil {
		return nil, err
	}
	if timeoutMs <= 0 {
		return nil, fmt.Errorf("api timeout must be positive, got: %d", timeoutMs)
	}
	c := NewBaseClientWith(baseURL, time.Duration(timeoutMs)*time.Millisecond)
	c.reportDir = cfg.GetDefault(config.APIReportDir, "")
	return c, nil
}

// NewBaseClientWith creates client without configuration lookup
func NewBaseClientWith(baseURL string, timeout time.Duration) *BaseClient {
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: log.WithFunc("api", "BaseClient"),
	}
}

// BaseURL of the requests
func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

// HTTPClient used to send the requests
func (c *BaseClient) HTTPClient() *http.Client {
	return c.httpClient
}

// SetAuthToken makes the following requests use Bearer auth, empty token disables it
func (c *BaseClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *BaseClient) authToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// URL joins the path with the base url
func (c *BaseClient) URL(path string) string {
	if path == "" || path == "/" {
		return c.baseURL + "/"
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get sends GET request expecting JSON
func (c *BaseClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, contentTypeJSON, nil)
}

// GetHTML sends GET request expecting HTML
func (c *BaseClient) GetHTML(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, "text/html", nil)
}

// Post sends JSON body
func (c *BaseClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, contentTypeJSON, body)
}

// Delete sends DELETE request
func (c *BaseClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, contentTypeJSON, nil)
}

// Do sends the request and captures the response, any status code is not an error
func (c *BaseClient) Do(ctx context.Context, method, path, accept string, body any) (resp *Response, err error) {
	url := c.URL(path)
	c.logger.Info("API REQUEST", "method", method, "url", url)

	rec := &recorder{}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(recorderAbort); !ok {
				panic(r)
			}
			resp, err = nil, fmt.Errorf("%s %s: %w", method, url, rec.err())
		}
	}()

	test := apitest.New(method+" "+path).
		EnableNetworking(c.httpClient).
		Intercept(func(req *http.Request) {
			*req = *req.WithContext(ctx)
		})
	if c.reportDir != "" {
		test = test.Report(apitest.SequenceDiagram(c.reportDir))
	}

	req := test.Method(method).URL(url).
		Header("Accept", accept).
		Header("Content-Type", contentTypeJSON)
	if token := c.authToken(); token != "" {
		req = req.Header("Authorization", "Bearer "+token)
	}
	if body != nil {
		data, err := marshalBody(body)
		if err != nil {
			return nil, err
		}
		req = req.Body(data)
	}

	start := time.Now()
	var captured *Response
	req.Expect(rec).
		Assert(func(res *http.Response, _ *http.Request) error {
			data, err := io.ReadAll(res.Body)
			if err != nil {
				return fmt.Errorf("unable to read response body: %w", err)
			}
			captured = &Response{
				StatusCode: res.StatusCode,
				Header:     res.Header.Clone(),
				Body:       data,
				Duration:   time.Since(start),
			}
			return nil
		}).
		End()

	if rerr := rec.err(); rerr != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, rerr)
	}
	if captured == nil {
		return nil, fmt.Errorf("%s %s: no response captured", method, url)
	}
	c.logger.Info("API RESPONSE", "method", method, "url", url, "status", captured.StatusCode, "duration", captured.Duration)
	return captured, nil
}

func marshalBody(body any) (string, error) {
	switch b := body.(type) {
	case string:
		return b, nil
	case []byte:
		return string(b), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("unable to encode request body: %w", err)
	}
	return string(data), nil
}

// recorderAbort stops apitest execution on fatal failures
type recorderAbort struct{}

// recorder collects apitest failures instead of failing a *testing.T
type recorder struct {
	mu     sync.Mutex
	errors []string
}

func (r *recorder) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recorder) Fatal(args ...any) {
	r.mu.Lock()
	r.errors = append(r.errors, strings.TrimSpace(fmt.Sprintln(args...)))
	r.mu.Unlock()
	panic(recorderAbort{})
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.mu.Lock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
	r.mu.Unlock()
	panic(recorderAbort{})
}

func (r *recorder) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.errors, "; "))
}
