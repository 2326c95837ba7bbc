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
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	auditapi "github.com/retr0h/auditchain/internal/api/audit"
	"github.com/retr0h/auditchain/internal/authtoken"
)

// Require returns middleware that validates the bearer token and rejects
// callers whose resolved permissions lack permission. The caller's subject,
// roles and permissions are stored on the context.
func (s *Server) Require(
	permission string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, auditapi.ErrorResponse{
					Error: "Bearer token required",
				})
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := s.tokenValidator.Validate(
				tokenString,
				s.appConfig.API.Server.Security.SigningKey,
			)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, auditapi.ErrorResponse{
					Error: "Invalid token: " + err.Error(),
				})
			}

			resolved := authtoken.ResolvePermissions(
				claims.Roles,
				claims.Permissions,
				s.customRoles,
			)

			c.Set(ContextKeySubject, claims.Subject)
			c.Set(ContextKeyRoles, claims.Roles)
			c.Set(ContextKeyPermissions, resolved)

			if !authtoken.HasPermission(resolved, permission) {
				return c.JSON(http.StatusForbidden, auditapi.ErrorResponse{
					Error: fmt.Sprintf(
						"Insufficient permissions. Required: %s, resolved: %v",
						permission,
						slices.Sorted(maps.Keys(resolved)),
					),
				})
			}

			return next(c)
		}
	}
}

// Allowed reports whether the authenticated caller holds permission. It is
// false on routes that did not pass through Require.
func (s *Server) Allowed(
	c echo.Context,
	permission string,
) bool {
	resolved, _ := c.Get(ContextKeyPermissions).(map[string]bool)

	return authtoken.HasPermission(resolved, permission)
}
