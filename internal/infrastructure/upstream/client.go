// Package upstream talks to the business API that owns products, accounts,
// batches and transactions.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sangkips/materials-console/pkg/apperror"
)

// IdempotencyKeyHeader carries the token generated at confirmation
const IdempotencyKeyHeader = "Idempotency-Key"

// Config holds configuration for the business API client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin JSON client for the business API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new business API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// request describes one call to the business API
type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
}

// do sends the request and returns the raw response body of a 2xx reply.
// Any other outcome is returned as an *apperror.AppError.
func (c *Client) do(ctx context.Context, r request) (json.RawMessage, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds, ok := CredentialsFrom(ctx); ok {
		if creds.Cookie != "" {
			req.Header.Set("Cookie", creds.Cookie)
		}
		if creds.Authorization != "" {
			req.Header.Set("Authorization", creds.Authorization)
		}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Upstream %s %s failed: %v", r.method, r.path, err)
		return nil, apperror.NewBadGatewayError("Unable to reach the business API")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewBadGatewayError("Failed to read business API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapStatus(resp.StatusCode, raw)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(raw), nil
}

// errorBody is the error shape returned by the business API
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func mapStatus(status int, raw []byte) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	message := eb.Message
	if message == "" {
		message = eb.Error
	}

	switch {
	case status == http.StatusNotFound:
		if message == "" {
			message = "Resource not found"
		}
		return apperror.NewAppError(http.StatusNotFound, message)
	case status >= 400 && status < 500:
		if message == "" {
			message = http.StatusText(status)
		}
		return apperror.NewAppError(status, message)
	default:
		if message == "" {
			message = "The business API failed to process the request"
		}
		return apperror.NewBadGatewayError(message)
	}
}

// unwrapData returns the "data" member of an enveloped response, or raw
// itself when the response is not enveloped
func unwrapData(raw json.RawMessage) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return raw
}

// decodeList decodes a JSON array that may be wrapped in a
// {"data": [...]} or {"items": [...]} envelope
func decodeList(raw json.RawMessage, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var env struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	inner := env.Data
	if len(inner) == 0 || string(inner) == "null" {
		inner = env.Items
	}
	if len(inner) == 0 || string(inner) == "null" {
		return nil
	}
	return decodeList(inner, out)
}
