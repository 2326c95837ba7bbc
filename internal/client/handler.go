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

	"github.com/retr0h/auditchain/internal/api/health"
	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/audit/export"
)

// CombinedHandler is a superset of all smaller handler interfaces.
type CombinedHandler interface {
	AuditHandler
	HealthHandler
}

// AuditHandler defines an interface for interacting with audit trail
// client operations.
type AuditHandler interface {
	AppendEvent(
		ctx context.Context,
		orgID string,
		ev audit.Event,
		idempotencyKey string,
	) (*audit.Entry, error)
	ListEntries(
		ctx context.Context,
		orgID string,
		filter audit.Filter,
		page audit.Page,
	) (*audit.QueryResult, error)
	GetEntry(
		ctx context.Context,
		orgID string,
		id string,
	) (*audit.Entry, error)
	Verify(
		ctx context.Context,
		orgID string,
		mode string,
	) (*audit.VerifyResult, error)
	Export(
		ctx context.Context,
		orgID string,
		format export.Format,
		filter audit.Filter,
		sortBy audit.SortField,
		order audit.SortOrder,
	) (*ExportDownload, error)
	Fetcher(
		orgID string,
		filter audit.Filter,
	) export.Fetcher
}

// HealthHandler defines an interface for interacting with Health client operations.
type HealthHandler interface {
	Health(ctx context.Context) (*health.Response, error)
	Ready(ctx context.Context) (*health.Response, error)
	Status(ctx context.Context) (*health.StatusResponse, error)
}

var _ CombinedHandler = (*Client)(nil)
