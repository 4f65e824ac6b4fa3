// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"errors"
	"fmt"
	"strings"
)

// APIError represents a non-2xx response from a GLPI query endpoint.
// The raw response body is carried for diagnostics; GLPI error bodies
// are free-form and often the only clue to a misconfigured criterion.
type APIError struct {
	// Operation names the API call that failed (e.g. "search/Ticket").
	Operation string

	// StatusCode is the HTTP response status code.
	StatusCode int

	// Body is the raw response body, truncated for sanity.
	Body string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("glpi: %s: HTTP %d: %s", err.Operation, err.StatusCode, err.Body)
}

// AuthError represents a failed authentication attempt: a bad
// credential, a non-success status from initSession, or a redirect
// chain longer than the single hop the client tolerates.
type AuthError struct {
	// StatusCode is the HTTP status of the failing initSession call.
	// Zero when the failure was not an HTTP status (e.g. a second
	// redirect).
	StatusCode int

	// Reason describes the failure, including the response body when
	// one was available.
	Reason string
}

func (err *AuthError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("glpi: initSession: HTTP %d: %s", err.StatusCode, err.Reason)
	}
	return fmt.Sprintf("glpi: initSession: %s", err.Reason)
}

// SchemaError reports mandatory ticket fields missing from the remote
// schema. The notifier cannot build queries without these field ids,
// so a SchemaError is fatal to the whole run, not just one cycle.
type SchemaError struct {
	// Missing lists the unresolved mandatory field UIDs.
	Missing []string
}

func (err *SchemaError) Error() string {
	return fmt.Sprintf("glpi: schema introspection did not yield field ids for: %s",
		strings.Join(err.Missing, ", "))
}

// IsAuthError reports whether err is (or wraps) an authentication
// failure.
func IsAuthError(err error) bool {
	var authError *AuthError
	return errors.As(err, &authError)
}

// IsSchemaError reports whether err is (or wraps) a mandatory-field
// resolution failure.
func IsSchemaError(err error) bool {
	var schemaError *SchemaError
	return errors.As(err, &schemaError)
}

// truncateBody bounds response bodies embedded in errors. GLPI can
// return full HTML error pages; a few hundred bytes is enough to
// diagnose.
func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
