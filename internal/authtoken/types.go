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

// Package authtoken issues and validates the bearer tokens of the audit API.
package authtoken

import (
	"log/slog"

	"github.com/golang-jwt/jwt/v4"
)

// Issuer is stamped into every generated token.
const Issuer = "auditchain"

// RoleHierarchy ranks the built-in roles from most to least privileged.
var RoleHierarchy = map[string]int{
	"admin":   4,
	"auditor": 3,
	"write":   2,
	"read":    1,
}

// CustomClaims are the JWT claims of an API token.
type CustomClaims struct {
	Roles       []string `json:"roles"                 validate:"required,min=1,dive,oneof=admin auditor write read"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Token generates and validates API tokens.
type Token struct {
	logger *slog.Logger
}

// New creates a new Token.
func New(
	logger *slog.Logger,
) *Token {
	return &Token{
		logger: logger,
	}
}
