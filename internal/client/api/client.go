// Package api is the HTTP client of the delivery backend REST API.
//
// Every call carries an X-Request-ID header and, for the authenticated
// endpoints, "Authorization: Bearer <token>" taken from a TokenSource at
// request time. Transport failures wrap ErrUnavailable; non-2xx responses
// are *StatusError values unwrapping to ErrUnauthorized, ErrBadRequest or
// ErrUnexpectedStatus.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/deliveryio/internal/common"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
	"github.com/google/uuid"
)

const (
	pathToken     = "/api/token/"
	pathRegister  = "/api/register/"
	pathPackages  = "/api/packages/list/"
	pathTypes     = "/api/types/"
	pathBuildings = "/api/buildings/"

	maxErrorBody = 64 << 10
)

// TokenSource returns the current bearer token, "" when signed out.
type TokenSource func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     logging.Logger
}

// New builds a Client for baseURL. A nil httpClient means http.DefaultClient;
// a nil token source sends no Authorization header.
func New(baseURL string, httpClient *http.Client, token TokenSource, log logging.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   token,
		log:     log.With("component", "api"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: bytes.NewReader(b), contentType: "application/json"}, nil
}

// do sends r and decodes a 2xx JSON body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", r.method, "path", r.path, "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// ResolveMediaURL points photo URLs at the configured backend. The backend
// reports absolute URLs built from its own bind address (127.0.0.1:8000 or
// localhost:8000), which are unreachable from the client; relative paths
// are joined with the base URL.
func (c *Client) ResolveMediaURL(raw string) string {
	for _, local := range []string{"http://127.0.0.1:8000", "http://localhost:8000"} {
		if strings.HasPrefix(raw, local) {
			return c.baseURL + strings.TrimPrefix(raw, local)
		}
	}
	if strings.HasPrefix(raw, "/") {
		return c.baseURL + raw
	}
	return raw
}
