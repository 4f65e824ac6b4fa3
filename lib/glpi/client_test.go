// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// noRedirectClient mirrors the HTTP client NewClient builds by
// default: redirects surface as responses instead of being followed.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// newTestClient wires a Client to an httptest server.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    serverURL,
		UserToken:  "user-token-1",
		AppToken:   "app-token-1",
		HTTPClient: noRedirectClient(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{UserToken: "x"}); err == nil {
		t.Error("NewClient without BaseURL should fail")
	}
	if _, err := NewClient(Config{BaseURL: "https://glpi.example.com"}); err == nil {
		t.Error("NewClient without UserToken should fail")
	}
}

func TestNewClientStripsTrailingSlash(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "https://glpi.example.com/apirest.php///", UserToken: "x"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := client.BaseURL(); got != "https://glpi.example.com/apirest.php" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestInitSessionSuccess(t *testing.T) {
	var gotAuthorization, gotAppToken string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/initSession" {
			t.Errorf("path = %q, want /initSession", request.URL.Path)
		}
		gotAuthorization = request.Header.Get("Authorization")
		gotAppToken = request.Header.Get("App-Token")
		writer.Write([]byte(`{"session_token":"sess-42"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.InitSession(context.Background()); err != nil {
		t.Fatalf("InitSession: %v", err)
	}

	if gotAuthorization != "user_token user-token-1" {
		t.Errorf("Authorization = %q", gotAuthorization)
	}
	if gotAppToken != "app-token-1" {
		t.Errorf("App-Token = %q", gotAppToken)
	}
	if !client.HasSession() {
		t.Error("client should hold a session after InitSession")
	}
}

func TestInitSessionFollowsOneRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/initSession" {
			t.Errorf("redirect target path = %q, want /initSession", request.URL.Path)
		}
		writer.Write([]byte(`{"session_token":"sess-redirected"}`))
	}))
	defer target.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, target.URL+"/initSession", http.StatusFound)
	}))
	defer origin.Close()

	client := newTestClient(t, origin.URL)
	if err := client.InitSession(context.Background()); err != nil {
		t.Fatalf("InitSession: %v", err)
	}

	if got := client.BaseURL(); got != target.URL {
		t.Errorf("BaseURL after redirect = %q, want %q", got, target.URL)
	}
	if !client.HasSession() {
		t.Error("client should hold a session after redirected InitSession")
	}
}

func TestInitSessionRejectsSecondRedirect(t *testing.T) {
	loop := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, "https://elsewhere.example.com/initSession", http.StatusFound)
	}))
	defer loop.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, loop.URL+"/initSession", http.StatusFound)
	}))
	defer origin.Close()

	client := newTestClient(t, origin.URL)
	err := client.InitSession(context.Background())
	if err == nil {
		t.Fatal("InitSession should fail on a second redirect")
	}
	if !IsAuthError(err) {
		t.Errorf("error should be an AuthError, got: %v", err)
	}
}

func TestInitSessionNonSuccessCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		writer.Write([]byte(`["ERROR_GLPI_LOGIN","invalid token"]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.InitSession(context.Background())
	if err == nil {
		t.Fatal("InitSession should fail on 401")
	}

	var authError *AuthError
	if !errors.As(err, &authError) {
		t.Fatalf("error should be an AuthError, got: %v", err)
	}
	if authError.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", authError.StatusCode)
	}
	if authError.Reason == "" || !contains(authError.Reason, "ERROR_GLPI_LOGIN") {
		t.Errorf("Reason = %q, should carry the response body", authError.Reason)
	}
}

func TestQueriesAuthenticateLazily(t *testing.T) {
	var sessionInits int
	var gotSessionToken string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/initSession":
			sessionInits++
			writer.Write([]byte(`{"session_token":"sess-lazy"}`))
		case "/search/Ticket":
			gotSessionToken = request.Header.Get("Session-Token")
			writer.Write([]byte(`{"totalcount":0,"data":[]}`))
		default:
			t.Errorf("unexpected path %q", request.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	fields := TicketFields{ID: 2, Title: 1, Status: 12}

	if _, err := client.SearchNew(context.Background(), fields, 200); err != nil {
		t.Fatalf("SearchNew: %v", err)
	}
	if sessionInits != 1 {
		t.Errorf("initSession calls = %d, want 1", sessionInits)
	}
	if gotSessionToken != "sess-lazy" {
		t.Errorf("Session-Token = %q", gotSessionToken)
	}

	// A second query reuses the session.
	if _, err := client.SearchNew(context.Background(), fields, 200); err != nil {
		t.Fatalf("SearchNew second: %v", err)
	}
	if sessionInits != 1 {
		t.Errorf("initSession calls after second query = %d, want 1", sessionInits)
	}
}

func TestDropSessionForcesReauthentication(t *testing.T) {
	var sessionInits int
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/initSession":
			sessionInits++
			writer.Write([]byte(`{"session_token":"sess"}`))
		default:
			writer.Write([]byte(`{"data":[]}`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	fields := TicketFields{ID: 2, Title: 1, Status: 12}

	if _, err := client.SearchNew(context.Background(), fields, 10); err != nil {
		t.Fatalf("SearchNew: %v", err)
	}
	client.DropSession()
	if client.HasSession() {
		t.Error("HasSession should be false after DropSession")
	}
	if _, err := client.SearchNew(context.Background(), fields, 10); err != nil {
		t.Fatalf("SearchNew after drop: %v", err)
	}
	if sessionInits != 2 {
		t.Errorf("initSession calls = %d, want 2", sessionInits)
	}
}

func TestKillSessionSwallowsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/initSession":
			writer.Write([]byte(`{"session_token":"sess"}`))
		case "/killSession":
			writer.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.InitSession(context.Background()); err != nil {
		t.Fatalf("InitSession: %v", err)
	}

	// Must not panic or leave the token behind, whatever the server says.
	client.KillSession(context.Background())
	if client.HasSession() {
		t.Error("session token should be cleared after KillSession")
	}

	// A second call with no session is a no-op.
	client.KillSession(context.Background())
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
