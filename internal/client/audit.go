// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/audit/export"
)

// IdempotencyKeyHeader carries the caller's deduplication key.
const IdempotencyKeyHeader = "Idempotency-Key"

func auditPath(
	orgID string,
	suffix string,
) string {
	return "/organizations/" + url.PathEscape(orgID) + "/audit" + suffix
}

// AppendEvent appends ev to the organization's chain. A non-empty
// idempotencyKey makes retries of the same request return the same entry.
func (c *Client) AppendEvent(
	ctx context.Context,
	orgID string,
	ev audit.Event,
	idempotencyKey string,
) (*audit.Entry, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(IdempotencyKeyHeader, idempotencyKey)
	}

	var entry audit.Entry
	if err := c.getJSON(ctx, http.MethodPost, auditPath(orgID, ""), nil, ev, header, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// ListEntries returns one page of the organization's entries.
func (c *Client) ListEntries(
	ctx context.Context,
	orgID string,
	filter audit.Filter,
	page audit.Page,
) (*audit.QueryResult, error) {
	query := FilterValues(filter)
	if page.Limit > 0 {
		query.Set("limit", strconv.Itoa(page.Limit))
	}
	if page.Offset > 0 {
		query.Set("offset", strconv.Itoa(page.Offset))
	}
	setSort(query, page.SortBy, page.Order)

	var result audit.QueryResult
	if err := c.getJSON(ctx, http.MethodGet, auditPath(orgID, ""), query, nil, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetEntry returns a single entry of the organization.
func (c *Client) GetEntry(
	ctx context.Context,
	orgID string,
	id string,
) (*audit.Entry, error) {
	var entry audit.Entry
	path := auditPath(orgID, "/"+url.PathEscape(id))
	if err := c.getJSON(ctx, http.MethodGet, path, nil, nil, nil, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Verify checks the organization's chain. mode is "full" or "incremental".
func (c *Client) Verify(
	ctx context.Context,
	orgID string,
	mode string,
) (*audit.VerifyResult, error) {
	query := url.Values{}
	if mode != "" {
		query.Set("mode", mode)
	}

	var result audit.VerifyResult
	if err := c.getJSON(ctx, http.MethodGet, auditPath(orgID, "/verify"), query, nil, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Export asks the server to build the export and returns its body.
func (c *Client) Export(
	ctx context.Context,
	orgID string,
	format export.Format,
	filter audit.Filter,
	sortBy audit.SortField,
	order audit.SortOrder,
) (*ExportDownload, error) {
	query := FilterValues(filter)
	query.Set("format", string(format))
	setSort(query, sortBy, order)

	resp, err := c.do(ctx, http.MethodGet, auditPath(orgID, "/export"), query, nil, nil)
	if err != nil {
		return nil, err
	}

	filename := export.Filename(format, time.Now().UTC())
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil &&
		params["filename"] != "" {
		filename = params["filename"]
	}

	return &ExportDownload{
		Body:          resp.Body,
		Filename:      filename,
		ContentLength: resp.ContentLength,
	}, nil
}

// Fetcher pages through the organization's entries matching filter,
// oldest first, for client-side exports.
func (c *Client) Fetcher(
	orgID string,
	filter audit.Filter,
) export.Fetcher {
	return func(ctx context.Context, limit int, offset int) ([]audit.Entry, int, error) {
		result, err := c.ListEntries(ctx, orgID, filter, audit.Page{
			Limit:  limit,
			Offset: offset,
			SortBy: audit.SortChainIndex,
			Order:  audit.OrderAsc,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("listing entries: %w", err)
		}

		return result.Entries, result.Total, nil
	}
}

// FilterValues encodes filter as query parameters.
func FilterValues(
	filter audit.Filter,
) url.Values {
	query := url.Values{}

	set := func(key string, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}

	if filter.From != nil {
		query.Set("from", filter.From.UTC().Format(time.RFC3339Nano))
	}
	if filter.To != nil {
		query.Set("to", filter.To.UTC().Format(time.RFC3339Nano))
	}
	set("event_type", filter.EventType)
	set("category", string(filter.Category))
	set("action", string(filter.Action))
	set("severity", string(filter.Severity))
	set("actor_id", filter.ActorID)
	set("actor_type", string(filter.ActorType))
	set("target_type", filter.TargetType)
	set("target_id", filter.TargetID)
	set("search", filter.Search)

	return query
}

func setSort(
	query url.Values,
	sortBy audit.SortField,
	order audit.SortOrder,
) {
	if sortBy != "" {
		query.Set("sort_by", string(sortBy))
	}
	if order != "" {
		query.Set("order", string(order))
	}
}
