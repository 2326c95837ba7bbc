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

package api

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/auditchain/internal/audit"
)

type accessEvent struct {
	eventType string
	action    audit.Action
	summary   string
}

// accessAuditRoutes maps route templates to the event recorded when they
// succeed.
var accessAuditRoutes = map[string]accessEvent{
	"/organizations/:org_id/audit/verify": {
		eventType: "audit.verify",
		action:    audit.ActionRead,
		summary:   "Verified audit chain integrity",
	},
	"/organizations/:org_id/audit/export": {
		eventType: "audit.export",
		action:    audit.ActionExport,
		summary:   "Exported audit logs",
	},
}

// accessAuditMiddleware appends an event to the organization's chain for
// every successful, authenticated verify or export request. A failed
// append is logged and does not change the response.
func accessAuditMiddleware(
	writer AccessWriter,
	logger *slog.Logger,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route, ok := accessAuditRoutes[c.Path()]
			if !ok {
				return next(c)
			}

			err := next(c)

			subject, _ := c.Get(ContextKeySubject).(string)
			status := c.Response().Status
			if err != nil || subject == "" || status >= 300 {
				return err
			}

			org := c.Param("org_id")
			ev := accessAuditEvent(c, route, subject, status)

			ctx := context.WithoutCancel(c.Request().Context())
			if _, appendErr := writer.Append(ctx, org, ev); appendErr != nil {
				logger.Warn(
					"failed to record audit access",
					slog.String("organization_id", org),
					slog.String("event_type", route.eventType),
					slog.String("error", appendErr.Error()),
				)
			}

			return nil
		}
	}
}

func accessAuditEvent(
	c echo.Context,
	route accessEvent,
	subject string,
	status int,
) audit.Event {
	req := c.Request()

	query := c.QueryParams()
	params := make(map[string]audit.Value, len(query))
	for key := range query {
		params[validUTF8(key)] = audit.String(validUTF8(query.Get(key)))
	}

	var ip string
	if addr, err := netip.ParseAddr(c.RealIP()); err == nil {
		ip = addr.String()
	}

	return audit.Event{
		EventType:      route.eventType,
		Category:       audit.CategoryCompliance,
		Action:         route.action,
		Severity:       audit.SeverityMedium,
		ActorType:      audit.ActorAPI,
		ActorID:        validUTF8(subject),
		ActorIPAddress: ip,
		ActorUserAgent: validUTF8(req.UserAgent()),
		TargetType:     "audit_log",
		TargetID:       c.Param("org_id"),
		Summary:        route.summary,
		Metadata: audit.Object(map[string]audit.Value{
			"status": audit.Int(int64(status)),
			"params": audit.Object(params),
		}),
		RequestPath: validUTF8(req.URL.Path),
	}
}

// validUTF8 replaces byte sequences that are not UTF-8, which headers and
// decoded query values may carry, so the event passes validation.
func validUTF8(
	s string,
) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
