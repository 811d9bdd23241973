// SPDX-License-Identifier: MIT

// Package api implements the wire layer of the Vidora client: the REST
// transport, the response normalizer, per-endpoint query builders and one
// data provider per resource type.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidora/vidora-go/internal/log"
)

// Client performs the HTTP round trips against the wrapped service. Every
// call is a blocking request/response; the client never retries.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient validates the configuration and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log.WithComponent("api"),
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// getOptions tune a single read request.
type getOptions struct {
	noCache bool   // defeat intermediary caches
	token   string // override the app token (shared-account reads)
}

// Get issues one read request for the named endpoint. A query beginning with
// "/" is appended as path segments, anything else as a query string; the
// normalizer derives the response key from that distinction. Debug mode
// forces cache-defeat on every call.
func (c *Client) Get(ctx context.Context, endpoint, query string, opts getOptions) (Envelope, error) {
	token := opts.token
	if token == "" {
		token = c.cfg.Token
	}
	noCache := opts.noCache || c.cfg.Debug

	pathStyle := strings.HasPrefix(query, "/")
	var uri string
	if pathStyle {
		uri = fmt.Sprintf("%s/ws/%s/api/%s/mode/json/apiv/5%s", c.cfg.BaseURL, endpoint, token, query)
		if noCache {
			uri += fmt.Sprintf("/?ck=%d", rand.Int())
		}
	} else {
		uri = fmt.Sprintf("%s/ws/%s/api/%s/mode/json/apiv/5?%s", c.cfg.BaseURL, endpoint, token, query)
		if noCache {
			uri += fmt.Sprintf("&ck=%d", rand.Int())
		}
	}

	raw, status, err := c.do(ctx, http.MethodGet, uri, nil, noCache, endpoint)
	if err != nil {
		return Envelope{}, err
	}

	env := Normalize(raw, endpoint, pathStyle)
	observeRequest(endpoint, outcomeOf(env, status))
	return env, nil
}

// mutationRequest describes one state-changing call.
type mutationRequest struct {
	// method is POST, PUT or DELETE.
	method string
	// resource is the ws_* resource for PUT/DELETE calls; POST calls go to
	// the generic services endpoint instead.
	resource string
	// bodyKey and body form the resource object of the request envelope.
	bodyKey string
	body    map[string]any
	// userToken is the short-lived credential minted for this workflow.
	userToken string
}

// Mutate wraps the body in the authentication envelope, issues the write and
// interprets the success/failure response. The returned Failure is nil on
// success; err covers transport and decoding problems only.
func (c *Client) Mutate(ctx context.Context, req mutationRequest) (*Failure, error) {
	var uri string
	switch req.method {
	case http.MethodPost:
		uri = fmt.Sprintf("%s/services/index.php?&mode=json", c.cfg.BaseURL)
	case http.MethodPut:
		uri = fmt.Sprintf("%s/ws/%s/mode/json/apiv/5.0?method=put&", c.cfg.serviceBaseURL(), req.resource)
	case http.MethodDelete:
		uri = fmt.Sprintf("%s/ws/%s/mode/json/apiv/5.0?method=delete&", c.cfg.serviceBaseURL(), req.resource)
	default:
		return nil, fmt.Errorf("api: unsupported mutation method %q", req.method)
	}

	payload := map[string]any{
		"request": map[string]any{
			"authentication": map[string]any{
				"app_token":    c.cfg.Token,
				"client_token": c.cfg.ClientToken,
				"user_token":   req.userToken,
			},
			"header": map[string]any{
				"header_version": 1,
				"api_version":    "5",
				"no_cache":       true,
			},
			req.bodyKey: req.body,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("api: encode mutation body: %w", err)
	}

	raw, status, err := c.do(ctx, req.method, uri, body, true, req.resource)
	if err != nil {
		return nil, err
	}

	resp, ok := raw["response"].(map[string]any)
	if !ok {
		observeRequest(req.resource, "malformed")
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: req.method + " " + req.resource, Status: status}
	}
	if failure, ok := resp["failure"].(map[string]any); ok {
		code, _ := asInt(failure["code"])
		reason, _ := failure["reason"].(string)
		observeRequest(req.resource, "failure")
		return &Failure{Code: code, Reason: reason}, nil
	}
	if _, ok := resp["success"]; ok {
		observeRequest(req.resource, "success")
		return nil, nil
	}

	observeRequest(req.resource, "malformed")
	return nil, &APIError{Sentinel: ErrBadResponse, Operation: req.method + " " + req.resource, Status: status}
}

// do runs one HTTP exchange and decodes the JSON body. Malformed envelopes
// are the normalizer's business; do only fails on transport and decode
// problems.
func (c *Client) do(ctx context.Context, method, uri string, body []byte, noCache bool, operation string) (map[string]any, int, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if noCache {
		req.Header.Set("Cache-Control", "private, max-age=0, no-cache, no-store, must-revalidate")
		req.Header.Set("Pragma", "no-cache")
		req.Header.Set("Expires", "0")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	start := time.Now()

	res, err := c.http.Do(req)
	if err != nil {
		observeRequest(operation, "unavailable")
		return nil, 0, &APIError{Sentinel: ErrUnavailable, Operation: operation, Err: err}
	}
	defer res.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		observeRequest(operation, "malformed")
		return nil, res.StatusCode, &APIError{Sentinel: ErrBadResponse, Operation: operation, Status: res.StatusCode, Err: err}
	}

	elapsed := time.Since(start)
	observeDuration(operation, elapsed)
	if c.cfg.Debug {
		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("url", uri).
			Int("status", res.StatusCode).
			Dur("elapsed", elapsed).
			Msg("api request")
	}

	return raw, res.StatusCode, nil
}

// outcomeOf maps an envelope to a metrics label.
func outcomeOf(env Envelope, status int) string {
	switch {
	case env.Failed():
		return "failure"
	case env.Malformed:
		return "malformed"
	case status != http.StatusOK:
		return fmt.Sprintf("http_%d", status)
	default:
		return "success"
	}
}
