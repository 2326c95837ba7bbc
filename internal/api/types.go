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

// Package api serves the audit trail over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/authtoken"
	"github.com/retr0h/auditchain/internal/config"
)

// Context key constants for injecting caller identity into handlers.
const (
	ContextKeySubject     = "auth.subject"
	ContextKeyRoles       = "auth.roles"
	ContextKeyPermissions = "auth.permissions"
)

// TokenValidator parses and validates JWT tokens.
type TokenValidator interface {
	Validate(
		tokenString string,
		signingKey string,
	) (*authtoken.CustomClaims, error)
}

// AccessWriter records access to an organization's audit trail in that
// organization's own chain.
type AccessWriter interface {
	Append(ctx context.Context, orgID string, ev audit.Event) (*audit.Entry, error)
}

// Option configures a Server.
type Option func(*Server)

// WithTokenValidator overrides how bearer tokens are validated.
func WithTokenValidator(
	v TokenValidator,
) Option {
	return func(s *Server) {
		s.tokenValidator = v
	}
}

// WithAccessAudit records successful verify and export requests through w.
func WithAccessAudit(
	w AccessWriter,
) Option {
	return func(s *Server) {
		s.accessWriter = w
	}
}

// Server is the HTTP API server.
type Server struct {
	Echo *echo.Echo

	logger         *slog.Logger
	appConfig      config.Config
	customRoles    map[string][]string
	tokenValidator TokenValidator
	accessWriter   AccessWriter
}
