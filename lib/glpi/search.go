// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package glpi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// statusNew is the fixed status code for newly created tickets in the
// GLPI schema.
const statusNew = "1"

// Ticket is an immutable snapshot of one search result row, reduced to
// what a notification displays.
type Ticket struct {
	// ID is the ticket's identifier, unique per GLPI instance.
	ID int64

	// Title is the ticket subject. May be empty.
	Title string

	// Requester is the display value of the requester column, empty
	// when the field is unresolved or the row carries none.
	Requester string
}

// SearchNew returns up to limit tickets in the "new" status, requested
// sorted by id descending. Row order in the response is not trusted —
// callers needing deterministic order sort the result themselves.
func (client *Client) SearchNew(ctx context.Context, fields TicketFields, limit int) ([]Ticket, error) {
	params := url.Values{}
	params.Set("criteria[0][field]", strconv.FormatInt(fields.Status, 10))
	params.Set("criteria[0][searchtype]", "equals")
	params.Set("criteria[0][value]", statusNew)
	addCommonSearchParams(params, fields, limit, true)

	return client.search(ctx, fields, params)
}

// SearchRecent returns up to limit most recent tickets regardless of
// status. Diagnostics only: the poller uses it to show that the server
// is reachable when the new-ticket query comes back empty.
func (client *Client) SearchRecent(ctx context.Context, fields TicketFields, limit int) ([]Ticket, error) {
	params := url.Values{}
	addCommonSearchParams(params, fields, limit, false)

	return client.search(ctx, fields, params)
}

// addCommonSearchParams encodes the sort order, row range, and column
// selection shared by both searches.
func addCommonSearchParams(params url.Values, fields TicketFields, limit int, withRequester bool) {
	params.Set("sort", strconv.FormatInt(fields.ID, 10))
	params.Set("order", "DESC")
	params.Set("range", fmt.Sprintf("0-%d", limit))
	params.Set("forcedisplay[0]", strconv.FormatInt(fields.ID, 10))
	params.Set("forcedisplay[1]", strconv.FormatInt(fields.Title, 10))
	params.Set("forcedisplay[2]", strconv.FormatInt(fields.Status, 10))
	if withRequester && fields.HasRequester {
		params.Set("forcedisplay[3]", strconv.FormatInt(fields.Requester, 10))
	}
}

func (client *Client) search(ctx context.Context, fields TicketFields, params url.Values) ([]Ticket, error) {
	body, err := client.get(ctx, "search/Ticket", "/search/Ticket?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		TotalCount *int64          `json:"totalcount"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("glpi: parsing search response: %w", err)
	}
	if payload.TotalCount != nil {
		client.logger.Debug("search result", "totalcount", *payload.TotalCount)
	}

	return parseRows(payload.Data, fields), nil
}

// parseRows flattens the "data" member of a search response into
// tickets. GLPI represents the row collection as either a JSON array
// or an object keyed by arbitrary strings depending on version and
// query; both forms are accepted. A row that does not yield a
// parseable id is dropped — one malformed row must not lose the rest
// of the batch.
func parseRows(data json.RawMessage, fields TicketFields) []Ticket {
	if len(data) == 0 {
		return nil
	}

	var rows []json.RawMessage
	var asArray []json.RawMessage
	if err := json.Unmarshal(data, &asArray); err == nil {
		rows = asArray
	} else {
		var asObject map[string]json.RawMessage
		if err := json.Unmarshal(data, &asObject); err != nil {
			return nil
		}
		for _, row := range asObject {
			rows = append(rows, row)
		}
	}

	idKey := strconv.FormatInt(fields.ID, 10)
	titleKey := strconv.FormatInt(fields.Title, 10)
	requesterKey := ""
	if fields.HasRequester {
		requesterKey = strconv.FormatInt(fields.Requester, 10)
	}

	tickets := make([]Ticket, 0, len(rows))
	for _, raw := range rows {
		var row map[string]json.RawMessage
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}

		id, ok := flexInt64(row[idKey])
		if !ok {
			continue
		}

		ticket := Ticket{ID: id}
		if title, ok := flexString(row[titleKey]); ok {
			ticket.Title = title
		}
		if requesterKey != "" {
			if requester, ok := flexString(row[requesterKey]); ok {
				ticket.Requester = requester
			}
		}
		tickets = append(tickets, ticket)
	}
	return tickets
}

// flexInt64 extracts an integer that the wire may represent as either
// a JSON number or a numeric string.
func flexInt64(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parsed, err := strconv.ParseInt(strings.TrimSpace(asString), 10, 64)
		if err == nil {
			return parsed, true
		}
	}

	return 0, false
}

// flexString extracts a display value that the wire may represent as
// either a JSON string or a number.
func flexString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString), true
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String(), true
	}

	return "", false
}
