// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field UIDs in the GLPI search-option schema. The numeric ids behind
// these vary per installation and plugin set, which is why they are
// resolved at runtime instead of hard-coded.
const (
	fieldUIDID        = "Ticket.id"
	fieldUIDTitle     = "Ticket.name"
	fieldUIDStatus    = "Ticket.status"
	fieldUIDRequester = "Ticket._users_id_recipient"
)

// TicketFields is the resolved mapping from the ticket attributes the
// notifier displays to the installation's numeric search-option ids.
type TicketFields struct {
	// ID, Title, and Status are mandatory; queries cannot be built
	// without them.
	ID     int64
	Title  int64
	Status int64

	// Requester is optional. When HasRequester is false, searches omit
	// the requester column and tickets carry no requester name.
	Requester    int64
	HasRequester bool
}

// ResolveTicketFields introspects the Ticket search options and builds
// the field mapping. Missing mandatory fields produce a *SchemaError,
// which callers treat as fatal to the run.
func (client *Client) ResolveTicketFields(ctx context.Context) (TicketFields, error) {
	ids, err := client.resolveFieldIDs(ctx, []string{
		fieldUIDID, fieldUIDTitle, fieldUIDStatus, fieldUIDRequester,
	})
	if err != nil {
		return TicketFields{}, err
	}

	var missing []string
	for _, uid := range []string{fieldUIDID, fieldUIDTitle, fieldUIDStatus} {
		if _, ok := ids[uid]; !ok {
			missing = append(missing, uid)
		}
	}
	if len(missing) > 0 {
		return TicketFields{}, &SchemaError{Missing: missing}
	}

	fields := TicketFields{
		ID:     ids[fieldUIDID],
		Title:  ids[fieldUIDTitle],
		Status: ids[fieldUIDStatus],
	}
	if requesterID, ok := ids[fieldUIDRequester]; ok {
		fields.Requester = requesterID
		fields.HasRequester = true
	} else {
		client.logger.Info("requester field not present in schema, notifications will omit the requester")
	}

	return fields, nil
}

// resolveFieldIDs fetches /listSearchOptions/Ticket and maps each
// requested UID to its numeric field id. The response is an object
// whose integer-keyed entries describe one search option each; entries
// with non-integer keys (metadata like "common") are skipped.
func (client *Client) resolveFieldIDs(ctx context.Context, uids []string) (map[string]int64, error) {
	body, err := client.get(ctx, "listSearchOptions/Ticket", "/listSearchOptions/Ticket")
	if err != nil {
		return nil, err
	}

	var options map[string]json.RawMessage
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("glpi: parsing search options: %w", err)
	}

	wanted := make(map[string]bool, len(uids))
	for _, uid := range uids {
		wanted[uid] = true
	}

	ids := make(map[string]int64)
	for key, raw := range options {
		fieldID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}

		var entry struct {
			UID string `json:"uid"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if wanted[entry.UID] {
			ids[entry.UID] = fieldID
		}
	}

	return ids, nil
}
