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

package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	auditstore "github.com/retr0h/auditchain/internal/audit"
)

// Writer appends events to a chain.
type Writer interface {
	Append(ctx context.Context, orgID string, ev auditstore.Event) (*auditstore.Entry, error)
}

// Querier reads entries back.
type Querier interface {
	Query(
		ctx context.Context,
		orgID string,
		filter auditstore.Filter,
		page auditstore.Page,
	) (*auditstore.QueryResult, error)
	Get(ctx context.Context, orgID string, id string) (*auditstore.Entry, error)
	Stream(
		ctx context.Context,
		orgID string,
		filter auditstore.Filter,
		sortBy auditstore.SortField,
		order auditstore.SortOrder,
		fn func(auditstore.Entry) error,
	) error
}

// Verifier checks chain integrity.
type Verifier interface {
	Verify(ctx context.Context, orgID string) (*auditstore.VerifyResult, error)
	VerifyIncremental(ctx context.Context, orgID string) (*auditstore.VerifyResult, error)
}

// Authorizer enforces token permissions on routes.
type Authorizer interface {
	// Require rejects requests whose token lacks permission.
	Require(permission string) echo.MiddlewareFunc
	// Allowed reports whether the caller of c holds permission.
	Allowed(c echo.Context, permission string) bool
}

// Option configures an Audit handler.
type Option func(*Audit)

// WithSpool sets where exports are staged before they are sent.
func WithSpool(
	fs afero.Fs,
	dir string,
) Option {
	return func(a *Audit) {
		a.spoolFs = fs
		a.spoolDir = dir
	}
}

// WithClock overrides the time used to name export files.
func WithClock(
	now func() time.Time,
) Option {
	return func(a *Audit) {
		a.now = now
	}
}

// WithExportBatchSize sets how many entries are exported between progress
// log lines.
func WithExportBatchSize(
	n int,
) Option {
	return func(a *Audit) {
		a.exportBatchSize = n
	}
}

// Audit implements the audit trail HTTP operations.
type Audit struct {
	Writer   Writer
	Querier  Querier
	Verifier Verifier

	logger          *slog.Logger
	spoolFs         afero.Fs
	spoolDir        string
	exportBatchSize int
	now             func() time.Time
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
