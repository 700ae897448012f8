// Package camunda implements the engine gateway against the Camunda 7 REST API.
package camunda

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

	"go-procflow/internal/domain"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Client talks to one engine REST endpoint, e.g. http://localhost:8080/engine-rest.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxConnsPerHost:     50,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// engineError is the error body the engine returns.
type engineError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Exception types that describe a rejected request rather than an outage,
// even though the engine reports them with status 500.
var rejectedTypes = map[string]error{
	"TaskAlreadyClaimedException": domain.ErrInvalidTransition,
	"NullValueException":          domain.ErrNotFound,
	"BadUserRequestException":     domain.ErrInvalidInput,
}

// do sends one request. in is JSON-encoded when non-nil; out is decoded from
// a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("procflow/camunda: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("procflow/camunda: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("procflow/camunda: %s %s: %w: %w", method, path, domain.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("engine call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("procflow/camunda: decode %s %s: %w: %w", method, path, domain.ErrEngineUnavailable, err)
		}
		return nil
	}

	return statusError(method, path, resp)
}

func statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body engineError
	_ = json.Unmarshal(raw, &body)

	detail := body.Message
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, detail)

	var kind error
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = domain.ErrNotFound
	case resp.StatusCode >= 500:
		kind = domain.ErrEngineUnavailable
		if rejected, ok := rejectedTypes[body.Type]; ok {
			kind = rejected
		}
	default:
		kind = domain.ErrInvalidInput
	}
	return fmt.Errorf("procflow/camunda: %s %s: %w: %w", method, path, kind, cause)
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}
