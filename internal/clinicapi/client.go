// Package clinicapi is the HTTP client for the clinic backend's doctor API.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries a per-request id so client and backend logs can be joined.
const RequestIDHeader = "X-Request-ID"

// Config configures the client.
type Config struct {
	BaseURL string
	// Token is sent as a bearer credential. Obtaining it is the caller's concern.
	Token string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client issues requests against the fixed doctor endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a client for the backend at cfg.BaseURL.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("clinicapi: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("clinicapi: invalid base url: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    hc,
		logger:  logger.With().Str("component", "clinicapi").Logger(),
	}, nil
}

// doJSON sends body as JSON (nil for none) and returns the raw response body.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, path string) ([]byte, error) {
	start := time.Now()
	rid := req.Header.Get(RequestIDHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", rid).
			Str("method", req.Method).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Msg("request failed")
		return nil, &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Path: path, Err: err}
	}

	evt := c.logger.Debug()
	if resp.StatusCode >= 400 {
		evt = c.logger.Warn()
	}
	evt.
		Str("request_id", rid).
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ValidationError{Status: resp.StatusCode, Message: backendMessage(data, resp.StatusCode)}
	}
	return data, nil
}

// backendMessage pulls a human readable message out of an error body.
func backendMessage(body []byte, status int) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		var s string
		if json.Unmarshal(payload.Error, &s) == nil && s != "" {
			return s
		}
		if len(payload.Errors) > 0 && string(payload.Errors) != "null" {
			return string(payload.Errors)
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}

// decodeData unmarshals the "data" member of a response envelope into v, or the whole
// body when there is no envelope.
func decodeData(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyResponse
	}

	var envelope map[string]json.RawMessage
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if data, ok := envelope["data"]; ok {
			if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
				return ErrEmptyResponse
			}
			trimmed = data
		}
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeList accepts a bare JSON array or an object carrying the array under one of keys.
func decodeList(body []byte, v any, keys ...string) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyResponse
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	for _, k := range append(keys, "data") {
		if raw, ok := envelope[k]; ok {
			if err := json.Unmarshal(raw, v); err != nil {
				return fmt.Errorf("decode list %q: %w", k, err)
			}
			return nil
		}
	}
	return fmt.Errorf("decode list: none of %v in response", append(keys, "data"))
}
