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

// searchOptionsServer serves a canned /listSearchOptions/Ticket body
// and a session for it.
func searchOptionsServer(t *testing.T, optionsBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/initSession":
			writer.Write([]byte(`{"session_token":"sess"}`))
		case "/listSearchOptions/Ticket":
			writer.Write([]byte(optionsBody))
		default:
			t.Errorf("unexpected path %q", request.URL.Path)
		}
	}))
}

func TestResolveTicketFields(t *testing.T) {
	server := searchOptionsServer(t, `{
		"common": "Characteristics",
		"1":  {"name": "Title",     "uid": "Ticket.name"},
		"2":  {"name": "ID",        "uid": "Ticket.id"},
		"12": {"name": "Status",    "uid": "Ticket.status"},
		"22": {"name": "Requester", "uid": "Ticket._users_id_recipient"},
		"80": {"name": "Entity",    "uid": "Ticket.Entity.completename"}
	}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	fields, err := client.ResolveTicketFields(context.Background())
	if err != nil {
		t.Fatalf("ResolveTicketFields: %v", err)
	}

	if fields.ID != 2 || fields.Title != 1 || fields.Status != 12 {
		t.Errorf("mandatory fields = %d/%d/%d, want 2/1/12", fields.ID, fields.Title, fields.Status)
	}
	if !fields.HasRequester || fields.Requester != 22 {
		t.Errorf("requester = (%d, %t), want (22, true)", fields.Requester, fields.HasRequester)
	}
}

func TestResolveTicketFieldsWithoutRequester(t *testing.T) {
	server := searchOptionsServer(t, `{
		"1":  {"uid": "Ticket.name"},
		"2":  {"uid": "Ticket.id"},
		"12": {"uid": "Ticket.status"}
	}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	fields, err := client.ResolveTicketFields(context.Background())
	if err != nil {
		t.Fatalf("ResolveTicketFields: %v", err)
	}
	if fields.HasRequester {
		t.Error("HasRequester should be false when the schema lacks the requester option")
	}
}

func TestResolveTicketFieldsMissingMandatory(t *testing.T) {
	server := searchOptionsServer(t, `{
		"2": {"uid": "Ticket.id"}
	}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ResolveTicketFields(context.Background())
	if err == nil {
		t.Fatal("ResolveTicketFields should fail when mandatory fields are missing")
	}

	var schemaError *SchemaError
	if !errors.As(err, &schemaError) {
		t.Fatalf("error should be a SchemaError, got: %v", err)
	}
	if len(schemaError.Missing) != 2 {
		t.Errorf("Missing = %v, want the title and status uids", schemaError.Missing)
	}
	if !IsSchemaError(err) {
		t.Error("IsSchemaError should report true")
	}
}

func TestResolveTicketFieldsSkipsNonIntegerKeys(t *testing.T) {
	// "common" and a malformed entry must not derail resolution.
	server := searchOptionsServer(t, `{
		"common": "Characteristics",
		"junk":   ["not", "an", "option"],
		"1":  {"uid": "Ticket.name"},
		"2":  {"uid": "Ticket.id"},
		"12": {"uid": "Ticket.status"}
	}`)
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.ResolveTicketFields(context.Background()); err != nil {
		t.Fatalf("ResolveTicketFields: %v", err)
	}
}
