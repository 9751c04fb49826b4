// Package api is the authenticated fetch layer. Every backend call goes
// through Client, which attaches the session token when there is one and
// reports failures as NetworkError, HTTPError or ErrMalformedResponse.
// Calls are independent: nothing is retried, cached, or queued.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenHeader carries the session token on authenticated calls.
const TokenHeader = "X-Auth-Token"

// RequestIDHeader correlates client and server logs.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// TokenSource supplies the current session token, "" when logged out.
type TokenSource interface {
	Token() string
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string
	// Tokens supplies the session token. If nil, no call is authenticated.
	Tokens TokenSource
	// HTTPClient is used for all requests. If nil, a client with Timeout is used.
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil. Zero means 15 seconds.
	Timeout time.Duration
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client performs backend calls.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		tokens:     config.Tokens,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends a JSON request and decodes a 2xx body into out. body and out
// may be nil. The token header is attached when a session exists.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, call{method: method, path: path, body: body, out: out})
}

// DoPublic is Do without the token header, for public reads.
func (c *Client) DoPublic(ctx context.Context, method, path string, out any) error {
	return c.send(ctx, call{method: method, path: path, out: out, public: true})
}

// Upload sends one file as multipart/form-data using PATCH.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("api: read upload %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("api: build upload: %w", err)
	}
	return c.send(ctx, call{
		method:      http.MethodPatch,
		path:        path,
		raw:         &buffer,
		contentType: writer.FormDataContentType(),
		out:         out,
	})
}

type call struct {
	method      string
	path        string
	body        any
	raw         io.Reader
	contentType string
	out         any
	public      bool
}

func (c *Client) send(ctx context.Context, request call) error {
	bodyReader := request.raw
	contentType := request.contentType
	if request.body != nil {
		encoded, err := json.Marshal(request.body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.method, c.baseURL+request.path, bodyReader)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	requestID := uuid.NewString()
	httpRequest.Header.Set(RequestIDHeader, requestID)
	httpRequest.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpRequest.Header.Set("Content-Type", contentType)
	}
	if !request.public && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpRequest.Header.Set(TokenHeader, token)
		}
	}

	started := time.Now()
	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", request.method,
			"path", request.path,
			"request_id", requestID,
			"error", err,
		)
		return &NetworkError{Method: request.method, Path: request.path, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Method: request.method, Path: request.path, Err: err}
	}

	c.logger.Debug("api request",
		"method", request.method,
		"path", request.path,
		"status", response.StatusCode,
		"request_id", requestID,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &HTTPError{
			Status: response.StatusCode,
			Detail: extractDetail(responseBody),
			Body:   responseBody,
		}
	}

	if request.out == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, request.out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, request.method, request.path, err)
	}
	return nil
}
