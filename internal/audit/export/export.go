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

// Package export streams audit entries into downloadable formats.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retr0h/auditchain/internal/audit"
)

// Run streams every entry from source into exporter. Unless
// opts.IncludeSensitive is set, anonymous actors lose their network
// provenance. When the export fails the exporter is aborted, so a failed
// run never leaves a complete-looking output behind.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	source Source,
	exporter Exporter,
	opts Options,
) (*Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if err := exporter.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening exporter: %w", err)
	}

	result := &Result{}

	err := source(ctx, func(entry audit.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !opts.IncludeSensitive {
			entry = audit.RedactSensitive(entry)
		}

		if err := exporter.Write(ctx, entry); err != nil {
			return fmt.Errorf("writing entry %d: %w", entry.ChainIndex, err)
		}
		result.ExportedEntries++

		if opts.OnProgress != nil && result.ExportedEntries%batchSize == 0 {
			opts.OnProgress(result.ExportedEntries)
		}

		return nil
	})
	if err != nil {
		abort(ctx, logger, exporter)
		return result, err
	}

	if err := exporter.Close(ctx); err != nil {
		return result, fmt.Errorf("closing exporter: %w", err)
	}

	if opts.OnProgress != nil && result.ExportedEntries%batchSize != 0 {
		opts.OnProgress(result.ExportedEntries)
	}

	logger.Debug(
		"export completed",
		slog.Int("exported", result.ExportedEntries),
	)

	return result, nil
}

func abort(
	ctx context.Context,
	logger *slog.Logger,
	exporter Exporter,
) {
	var err error
	if a, ok := exporter.(Aborter); ok {
		err = a.Abort(ctx)
	} else {
		err = exporter.Close(ctx)
	}

	if err != nil {
		logger.Error("aborting exporter", slog.String("error", err.Error()))
	}
}

// Streamer is the part of the query engine an export reads from.
type Streamer interface {
	Stream(
		ctx context.Context,
		orgID string,
		filter audit.Filter,
		sortBy audit.SortField,
		order audit.SortOrder,
		fn func(audit.Entry) error,
	) error
}

// FromStream exports every match of filter in the given sort order.
func FromStream(
	streamer Streamer,
	orgID string,
	filter audit.Filter,
	sortBy audit.SortField,
	order audit.SortOrder,
) Source {
	return func(ctx context.Context, fn func(audit.Entry) error) error {
		return streamer.Stream(ctx, orgID, filter, sortBy, order, fn)
	}
}

// FromPages paginates through fetcher batchSize entries at a time.
func FromPages(
	fetcher Fetcher,
	batchSize int,
) Source {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return func(ctx context.Context, fn func(audit.Entry) error) error {
		offset := 0

		for {
			entries, total, err := fetcher(ctx, batchSize, offset)
			if err != nil {
				return fmt.Errorf("fetching entries at offset %d: %w", offset, err)
			}

			for _, entry := range entries {
				if err := fn(entry); err != nil {
					return err
				}
			}

			offset += len(entries)
			if offset >= total || len(entries) == 0 {
				return nil
			}
		}
	}
}
