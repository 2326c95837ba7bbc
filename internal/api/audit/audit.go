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

// Package audit provides the audit trail API handlers.
package audit

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	auditstore "github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/authtoken"
)

// New factory to create a new instance.
func New(
	logger *slog.Logger,
	writer Writer,
	querier Querier,
	verifier Verifier,
	opts ...Option,
) *Audit {
	a := &Audit{
		Writer:   writer,
		Querier:  querier,
		Verifier: verifier,
		logger:   logger,
		spoolFs:  afero.NewOsFs(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Register mounts the audit routes on e.
func (a *Audit) Register(
	e *echo.Echo,
	authz Authorizer,
) {
	g := e.Group("/organizations/:org_id/audit")

	g.POST("", a.PostAuditEvent, authz.Require(authtoken.PermAuditWrite))
	g.GET("", a.GetAuditLogs(authz), authz.Require(authtoken.PermAuditRead))
	g.GET("/verify", a.GetAuditVerify, authz.Require(authtoken.PermAuditVerify))
	g.GET("/export", a.GetAuditExport(authz), authz.Require(authtoken.PermAuditExport))
	g.GET("/:id", a.GetAuditLogByID(authz), authz.Require(authtoken.PermAuditRead))
}

// errorJSON maps core errors onto HTTP statuses.
func (a *Audit) errorJSON(
	c echo.Context,
	err error,
	op string,
) error {
	status := http.StatusInternalServerError
	msg := "failed to " + op

	switch {
	case errors.Is(err, auditstore.ErrInvalidEvent):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auditstore.ErrNotFound):
		status, msg = http.StatusNotFound, "audit entry not found"
	case errors.Is(err, auditstore.ErrAppendConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, auditstore.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "audit store unavailable"
	}

	if status >= http.StatusInternalServerError || status == http.StatusConflict {
		a.logger.Error(
			"failed to "+op,
			slog.String("organization_id", c.Param("org_id")),
			slog.String("error", err.Error()),
		)
	}

	return c.JSON(status, ErrorResponse{Error: msg})
}

func badRequest(
	c echo.Context,
	msg string,
) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
