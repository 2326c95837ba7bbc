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
	"net/http"

	"github.com/labstack/echo/v4"

	auditstore "github.com/retr0h/auditchain/internal/audit"
)

// IdempotencyKeyHeader carries the caller's deduplication key.
const IdempotencyKeyHeader = "Idempotency-Key"

// PostAuditEvent appends an event to the organization's chain.
func (a *Audit) PostAuditEvent(
	c echo.Context,
) error {
	var ev auditstore.Event
	if err := (&echo.DefaultBinder{}).BindBody(c, &ev); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev.IdempotencyKey = c.Request().Header.Get(IdempotencyKeyHeader)

	entry, err := a.Writer.Append(c.Request().Context(), c.Param("org_id"), ev)
	if err != nil {
		return a.errorJSON(c, err, "append audit event")
	}

	return c.JSON(http.StatusCreated, entry)
}
