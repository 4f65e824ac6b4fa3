// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// initSessionResponse is the JSON body of a successful initSession call.
type initSessionResponse struct {
	SessionToken string `json:"session_token"`
}

// InitSession exchanges the user token for a session token.
//
// GLPI front ends commonly sit behind a redirecting reverse proxy, so
// one redirect is tolerated: the base URL is rewritten to the Location
// target (with any trailing "/initSession" stripped) and the call is
// retried once against the new base. This is an explicit two-step
// attempt, not a redirect-following loop — a second redirect is an
// authentication failure.
func (client *Client) InitSession(ctx context.Context) error {
	response, err := client.initSessionAttempt(ctx)
	if err != nil {
		return err
	}

	if isRedirect(response.StatusCode) {
		location := response.Header.Get("Location")
		drainAndClose(response.Body)
		if location == "" {
			return &AuthError{Reason: fmt.Sprintf("redirect (HTTP %d) without Location header", response.StatusCode)}
		}

		newBase := strings.TrimRight(location, "/")
		newBase = strings.TrimSuffix(newBase, "/initSession")
		client.logger.Info("initSession redirected, rebasing", "base_url", newBase)
		client.baseURL = newBase

		response, err = client.initSessionAttempt(ctx)
		if err != nil {
			return err
		}
		if isRedirect(response.StatusCode) {
			drainAndClose(response.Body)
			return &AuthError{Reason: "redirected again after rebasing; refusing to chase redirect chains"}
		}
	}

	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("glpi: initSession: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &AuthError{
			StatusCode: response.StatusCode,
			Reason:     truncateBody(body),
		}
	}

	var parsed initSessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("glpi: initSession: parsing response: %w", err)
	}
	if parsed.SessionToken == "" {
		return &AuthError{StatusCode: response.StatusCode, Reason: "response carried no session_token"}
	}

	client.sessionToken = parsed.SessionToken
	client.logger.Debug("session established")
	return nil
}

// initSessionAttempt fires one initSession GET with the one-time
// bearer credential. The caller owns the response body.
func (client *Client) initSessionAttempt(ctx context.Context) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/initSession", nil)
	if err != nil {
		return nil, fmt.Errorf("glpi: creating initSession request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Authorization", "user_token "+client.userToken)
	if client.appToken != "" {
		request.Header.Set("App-Token", client.appToken)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("glpi: initSession: %w", err)
	}
	return response, nil
}

// KillSession invalidates the held session on the server. Cleanup
// only: all errors are swallowed, and the local token is always
// cleared.
func (client *Client) KillSession(ctx context.Context) {
	if client.sessionToken == "" {
		return
	}
	defer func() { client.sessionToken = "" }()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/killSession", nil)
	if err != nil {
		return
	}
	client.setSessionHeaders(request)

	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Debug("killSession failed", "error", err)
		return
	}
	drainAndClose(response.Body)
}

func isRedirect(statusCode int) bool {
	return statusCode >= 300 && statusCode < 400
}

// drainAndClose discards a response body so the underlying connection
// can be reused.
func drainAndClose(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
