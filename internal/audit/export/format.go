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
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// Format is an export output format.
type Format string

const (
	// FormatCSV is RFC 4180 CSV with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is a single JSON array of entry objects.
	FormatJSON Format = "json"
	// FormatJSONL is one JSON entry object per line.
	FormatJSONL Format = "jsonl"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL}

// ParseFormat resolves a format name. The empty string selects CSV.
func ParseFormat(
	s string,
) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return slices.Contains(Formats, f)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the media type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatJSONL:
		return "application/x-ndjson"
	default:
		return "text/csv; charset=utf-8"
	}
}

// New returns an exporter writing f to w.
func New(
	f Format,
	w io.Writer,
) (Exporter, error) {
	switch f {
	case FormatCSV:
		return NewCSVExporter(w), nil
	case FormatJSON:
		return NewJSONExporter(w), nil
	case FormatJSONL:
		return NewJSONLExporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Filename returns the download name for an export taken on date.
func Filename(
	f Format,
	date time.Time,
) string {
	return fmt.Sprintf("audit-logs-%s.%s", date.Format(time.DateOnly), f.Extension())
}
