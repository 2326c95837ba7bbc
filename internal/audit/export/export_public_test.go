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

package export_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/audit/export"
)

type ExportPublicTestSuite struct {
	suite.Suite

	ctx    context.Context
	logger *slog.Logger
}

func (s *ExportPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.Default()
}

type mockExporter struct {
	entries  []audit.Entry
	opened   bool
	closed   bool
	aborted  bool
	openErr  error
	writeErr error
	closeErr error
}

func (m *mockExporter) Open(
	_ context.Context,
) error {
	m.opened = true
	return m.openErr
}

func (m *mockExporter) Write(
	_ context.Context,
	entry audit.Entry,
) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockExporter) Close(
	_ context.Context,
) error {
	m.closed = true
	return m.closeErr
}

func (m *mockExporter) Abort(
	_ context.Context,
) error {
	m.aborted = true
	return nil
}

func newEntry(
	index uint64,
	actorType audit.ActorType,
) audit.Entry {
	return audit.Entry{
		ID:             "id-" + string(rune('a'+index)),
		OrganizationID: "org-1",
		ChainIndex:     index,
		CreatedAt:      time.Date(2026, 2, 21, 10, 30, int(index), 0, time.UTC),
		EventType:      "report.submit",
		Category:       audit.CategoryCaseManagement,
		Action:         audit.ActionCreate,
		Severity:       audit.SeverityLow,
		ActorType:      actorType,
		ActorID:        "actor-1",
		ActorIPAddress: "203.0.113.7",
		ActorUserAgent: "curl/8.0",
		Summary:        "report submitted",
	}
}

func sliceSource(
	entries ...audit.Entry,
) export.Source {
	return func(_ context.Context, fn func(audit.Entry) error) error {
		for _, e := range entries {
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *ExportPublicTestSuite) TestRun() {
	errSource := errors.New("source failed")

	tests := []struct {
		name         string
		source       export.Source
		exporter     *mockExporter
		opts         export.Options
		validateFunc func(exp *mockExporter, result *export.Result, err error)
	}{
		{
			name:     "when no entries returns zero counts",
			source:   sliceSource(),
			exporter: &mockExporter{},
			validateFunc: func(exp *mockExporter, result *export.Result, err error) {
				s.NoError(err)
				s.Equal(0, result.ExportedEntries)
				s.True(exp.opened)
				s.True(exp.closed)
				s.False(exp.aborted)
			},
		},
		{
			name: "when anonymous actor withholds network provenance",
			source: sliceSource(
				newEntry(0, audit.ActorAnonymous),
				newEntry(1, audit.ActorUser),
			),
			exporter: &mockExporter{},
			validateFunc: func(exp *mockExporter, result *export.Result, err error) {
				s.NoError(err)
				s.Equal(2, result.ExportedEntries)
				s.Require().Len(exp.entries, 2)
				s.Empty(exp.entries[0].ActorIPAddress)
				s.Empty(exp.entries[0].ActorUserAgent)
				s.Equal("actor-1", exp.entries[0].ActorID)
				s.Equal("203.0.113.7", exp.entries[1].ActorIPAddress)
				s.Equal("curl/8.0", exp.entries[1].ActorUserAgent)
			},
		},
		{
			name:     "when sensitive fields are included keeps provenance",
			source:   sliceSource(newEntry(0, audit.ActorAnonymous)),
			exporter: &mockExporter{},
			opts:     export.Options{IncludeSensitive: true},
			validateFunc: func(exp *mockExporter, _ *export.Result, err error) {
				s.NoError(err)
				s.Require().Len(exp.entries, 1)
				s.Equal("203.0.113.7", exp.entries[0].ActorIPAddress)
				s.Equal("curl/8.0", exp.entries[0].ActorUserAgent)
			},
		},
		{
			name: "when source fails aborts the exporter",
			source: func(_ context.Context, fn func(audit.Entry) error) error {
				if err := fn(newEntry(0, audit.ActorUser)); err != nil {
					return err
				}
				return errSource
			},
			exporter: &mockExporter{},
			validateFunc: func(exp *mockExporter, result *export.Result, err error) {
				s.ErrorIs(err, errSource)
				s.Equal(1, result.ExportedEntries)
				s.True(exp.aborted)
				s.False(exp.closed)
			},
		},
		{
			name:     "when write fails aborts the exporter",
			source:   sliceSource(newEntry(0, audit.ActorUser)),
			exporter: &mockExporter{writeErr: errors.New("disk full")},
			validateFunc: func(exp *mockExporter, result *export.Result, err error) {
				s.ErrorContains(err, "writing entry 0: disk full")
				s.Equal(0, result.ExportedEntries)
				s.True(exp.aborted)
			},
		},
		{
			name:     "when open fails returns error",
			source:   sliceSource(newEntry(0, audit.ActorUser)),
			exporter: &mockExporter{openErr: errors.New("permission denied")},
			validateFunc: func(exp *mockExporter, result *export.Result, err error) {
				s.ErrorContains(err, "opening exporter")
				s.Nil(result)
				s.Empty(exp.entries)
			},
		},
		{
			name:     "when close fails returns error",
			source:   sliceSource(newEntry(0, audit.ActorUser)),
			exporter: &mockExporter{closeErr: errors.New("flush failed")},
			validateFunc: func(_ *mockExporter, _ *export.Result, err error) {
				s.ErrorContains(err, "closing exporter: flush failed")
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := export.Run(s.ctx, s.logger, tt.source, tt.exporter, tt.opts)
			tt.validateFunc(tt.exporter, result, err)
		})
	}
}

func (s *ExportPublicTestSuite) TestRunReportsProgress() {
	entries := make([]audit.Entry, 0, 5)
	for i := range 5 {
		entries = append(entries, newEntry(uint64(i), audit.ActorUser))
	}

	var progress []int
	_, err := export.Run(
		s.ctx,
		s.logger,
		sliceSource(entries...),
		&mockExporter{},
		export.Options{
			BatchSize:  2,
			OnProgress: func(exported int) { progress = append(progress, exported) },
		},
	)

	s.NoError(err)
	s.Equal([]int{2, 4, 5}, progress)
}

func (s *ExportPublicTestSuite) TestRunStopsOnCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	exp := &mockExporter{}
	_, err := export.Run(ctx, s.logger, sliceSource(newEntry(0, audit.ActorUser)), exp, export.Options{})

	s.ErrorIs(err, context.Canceled)
	s.True(exp.aborted)
	s.Empty(exp.entries)
}

func newPagedFetcher(
	pages [][]audit.Entry,
	total int,
) export.Fetcher {
	call := 0
	return func(_ context.Context, _ int, _ int) ([]audit.Entry, int, error) {
		if call >= len(pages) {
			return nil, total, nil
		}
		page := pages[call]
		call++
		return page, total, nil
	}
}

func (s *ExportPublicTestSuite) TestFromPages() {
	tests := []struct {
		name      string
		fetcher   export.Fetcher
		wantCount int
		wantErr   string
	}{
		{
			name: "when multi-page paginates until total",
			fetcher: newPagedFetcher([][]audit.Entry{
				{newEntry(0, audit.ActorUser), newEntry(1, audit.ActorUser)},
				{newEntry(2, audit.ActorUser)},
			}, 3),
			wantCount: 3,
		},
		{
			name: "when a page comes back empty stops early",
			fetcher: newPagedFetcher([][]audit.Entry{
				{newEntry(0, audit.ActorUser)},
				{},
			}, 10),
			wantCount: 1,
		},
		{
			name: "when fetch fails returns error with offset",
			fetcher: func(_ context.Context, _, _ int) ([]audit.Entry, int, error) {
				return nil, 0, errors.New("connection refused")
			},
			wantErr: "fetching entries at offset 0: connection refused",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			exp := &mockExporter{}
			result, err := export.Run(
				s.ctx,
				s.logger,
				export.FromPages(tt.fetcher, 2),
				exp,
				export.Options{},
			)

			if tt.wantErr != "" {
				s.ErrorContains(err, tt.wantErr)
				return
			}

			s.NoError(err)
			s.Equal(tt.wantCount, result.ExportedEntries)
			s.Len(exp.entries, tt.wantCount)
		})
	}
}

func TestExportPublicTestSuite(t *testing.T) {
	suite.Run(t, new(ExportPublicTestSuite))
}
