// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// userAgent identifies the notifier to the GLPI server.
const userAgent = "glpi-notifier/1.0"

// defaultTimeout bounds every HTTP request. The polling loop is
// single-threaded; a hung request would otherwise stall it forever.
const defaultTimeout = 30 * time.Second

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://glpi.example.com/apirest.php".
	// Required. Trailing slashes are stripped.
	BaseURL string

	// UserToken is the long-lived credential presented to initSession.
	// Required.
	UserToken string

	// AppToken is sent as the App-Token header on every request when
	// non-empty. Some GLPI installations require it.
	AppToken string

	// InsecureSkipVerify disables TLS certificate verification on the
	// default HTTP client. Ignored when HTTPClient is provided.
	InsecureSkipVerify bool

	// HTTPClient is used for all requests. When nil, a client with a
	// 30-second timeout is built. The client must not follow
	// redirects: initSession handles its single permitted redirect
	// explicitly.
	HTTPClient *http.Client

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a GLPI REST API client holding at most one session token.
type Client struct {
	baseURL      string
	userToken    string
	appToken     string
	httpClient   *http.Client
	logger       *slog.Logger
	sessionToken string
}

// NewClient creates a GLPI API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("glpi: BaseURL is required")
	}
	if config.UserToken == "" {
		return nil, fmt.Errorf("glpi: UserToken is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if config.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   defaultTimeout,
			// Redirects are handled explicitly by InitSession; a query
			// endpoint that redirects is an error, not a hint.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		userToken:  config.UserToken,
		appToken:   config.AppToken,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the current API root. It changes only when
// InitSession follows its single permitted redirect.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// HasSession reports whether the client currently holds a session
// token.
func (client *Client) HasSession() bool {
	return client.sessionToken != ""
}

// DropSession forgets the held session token without a network call.
// The poller calls this after a failed cycle so the next cycle
// re-authenticates instead of reusing possibly stale state.
func (client *Client) DropSession() {
	client.sessionToken = ""
}

// ensureSession authenticates when no session token is held.
func (client *Client) ensureSession(ctx context.Context) error {
	if client.sessionToken != "" {
		return nil
	}
	return client.InitSession(ctx)
}

// get performs an authenticated GET against path (relative to the base
// URL, including any query string) and returns the response body.
// Non-2xx responses become an *APIError named after operation.
func (client *Client) get(ctx context.Context, operation, path string) ([]byte, error) {
	if err := client.ensureSession(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("glpi: creating %s request: %w", operation, err)
	}
	client.setSessionHeaders(request)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("glpi: %s: %w", operation, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("glpi: %s: reading response body: %w", operation, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &APIError{
			Operation:  operation,
			StatusCode: response.StatusCode,
			Body:       truncateBody(body),
		}
	}

	return body, nil
}

// setSessionHeaders applies the headers carried on every authenticated
// call: session token, optional application token, and identity.
func (client *Client) setSessionHeaders(request *http.Request) {
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)
	if client.sessionToken != "" {
		request.Header.Set("Session-Token", client.sessionToken)
	}
	if client.appToken != "" {
		request.Header.Set("App-Token", client.appToken)
	}
}
