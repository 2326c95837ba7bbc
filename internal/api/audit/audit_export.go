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
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/auditchain/internal/audit/export"
	"github.com/retr0h/auditchain/internal/authtoken"
)

// GetAuditExport downloads every match of the filter as CSV or JSON. The
// export is spooled completely before the first byte is sent, so a failed
// export is an error response rather than a truncated file.
func (a *Audit) GetAuditExport(
	authz Authorizer,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		format, err := export.ParseFormat(c.QueryParam("format"))
		if err != nil {
			return badRequest(c, err.Error())
		}

		filter, err := bindFilter(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		if err := filter.Validate(); err != nil {
			return a.errorJSON(c, err, "export audit entries")
		}

		org := c.Param("org_id")
		sortBy, order := bindSort(c)
		ctx := c.Request().Context()

		spool, err := export.Spool(
			ctx,
			a.logger,
			a.spoolFs,
			a.spoolDir,
			export.FromStream(a.Querier, org, filter, sortBy, order),
			format,
			export.Options{
				BatchSize:        a.exportBatchSize,
				IncludeSensitive: authz.Allowed(c, authtoken.PermAuditSensitive),
				OnProgress: func(exported int) {
					a.logger.Debug(
						"export progress",
						slog.String("organization_id", org),
						slog.Int("exported", exported),
					)
				},
			},
		)
		if err != nil {
			return a.errorJSON(c, err, "export audit entries")
		}
		defer func() {
			if err := spool.Close(); err != nil {
				a.logger.Warn("failed to remove export spool", slog.String("error", err.Error()))
			}
		}()

		a.logger.Info(
			"exported audit entries",
			slog.String("organization_id", org),
			slog.String("format", string(format)),
			slog.Int("entries", spool.Result.ExportedEntries),
		)

		h := c.Response().Header()
		h.Set(echo.HeaderContentDisposition, fmt.Sprintf(
			"attachment; filename=%q",
			export.Filename(format, a.now().UTC()),
		))
		h.Set(echo.HeaderContentLength, strconv.FormatInt(spool.Size, 10))

		return c.Stream(http.StatusOK, format.ContentType(), spool)
	}
}
