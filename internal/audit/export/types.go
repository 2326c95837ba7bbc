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

	"github.com/retr0h/auditchain/internal/audit"
)

// DefaultBatchSize is how many entries are written between progress reports.
const DefaultBatchSize = 500

// Exporter receives audit entries in order.
type Exporter interface {
	// Open prepares the exporter for writing.
	Open(ctx context.Context) error
	// Write appends one entry to the output.
	Write(ctx context.Context, entry audit.Entry) error
	// Close completes the output. A closed exporter holds a complete export.
	Close(ctx context.Context) error
}

// Aborter is implemented by exporters that can discard a partial output.
// Run calls Abort instead of Close when the export fails.
type Aborter interface {
	Abort(ctx context.Context) error
}

// Source feeds entries to fn in export order and stops at the first error
// fn returns.
type Source func(ctx context.Context, fn func(audit.Entry) error) error

// Fetcher retrieves one page of entries and the total number of matches.
type Fetcher func(ctx context.Context, limit int, offset int) ([]audit.Entry, int, error)

// ProgressFunc is called after each batch with the running exported count.
type ProgressFunc func(exported int)

// Options controls an export run.
type Options struct {
	// BatchSize is how many entries are written between progress reports.
	BatchSize int
	// IncludeSensitive keeps the network provenance of anonymous actors.
	IncludeSensitive bool
	// OnProgress is optional.
	OnProgress ProgressFunc
}

// Result summarizes an export run.
type Result struct {
	ExportedEntries int `json:"exported_entries"`
}
