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

package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/retr0h/auditchain/internal/audit"
)

// Columns is the CSV header. It follows the JSON field names of
// audit.Entry in declaration order.
var Columns = []string{
	"id",
	"organization_id",
	"chain_index",
	"previous_hash",
	"hash",
	"created_at",
	"event_type",
	"category",
	"action",
	"severity",
	"actor_type",
	"actor_id",
	"actor_email",
	"actor_ip_address",
	"actor_user_agent",
	"target_type",
	"target_id",
	"target_name",
	"summary",
	"description",
	"before_state",
	"after_state",
	"metadata",
	"request_path",
}

// CSVExporter writes entries as CSV rows. Structured values are written as
// compact JSON and null values as empty cells.
type CSVExporter struct {
	w      *csv.Writer
	opened bool
}

// NewCSVExporter creates a CSVExporter writing to w.
func NewCSVExporter(
	w io.Writer,
) *CSVExporter {
	return &CSVExporter{w: csv.NewWriter(w)}
}

// Open writes the header row.
func (e *CSVExporter) Open(
	_ context.Context,
) error {
	if err := e.w.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	e.opened = true

	return nil
}

// Write writes one row.
func (e *CSVExporter) Write(
	_ context.Context,
	entry audit.Entry,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	row, err := csvRow(entry)
	if err != nil {
		return err
	}

	return e.w.Write(row)
}

// Close flushes buffered rows.
func (e *CSVExporter) Close(
	_ context.Context,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

func csvRow(
	entry audit.Entry,
) ([]string, error) {
	values := make([]string, 0, 3)
	for _, v := range []audit.Value{entry.BeforeState, entry.AfterState, entry.Metadata} {
		s, err := csvValue(v)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}

	return []string{
		entry.ID,
		entry.OrganizationID,
		strconv.FormatUint(entry.ChainIndex, 10),
		entry.PreviousHash,
		entry.Hash,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		entry.EventType,
		string(entry.Category),
		string(entry.Action),
		string(entry.Severity),
		string(entry.ActorType),
		entry.ActorID,
		entry.ActorEmail,
		entry.ActorIPAddress,
		entry.ActorUserAgent,
		entry.TargetType,
		entry.TargetID,
		entry.TargetName,
		entry.Summary,
		entry.Description,
		values[0],
		values[1],
		values[2],
		entry.RequestPath,
	}, nil
}

func csvValue(
	v audit.Value,
) (string, error) {
	if v.IsNull() {
		return "", nil
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}

	return string(data), nil
}
