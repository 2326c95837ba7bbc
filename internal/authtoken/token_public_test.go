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

package authtoken_test

import (
	"encoding/base64"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/authtoken"
)

type AuthTokenPublicTestSuite struct {
	suite.Suite

	token      *authtoken.Token
	signingKey string
}

func (s *AuthTokenPublicTestSuite) SetupTest() {
	s.token = authtoken.New(slog.Default())
	s.signingKey = "test-signing-key-for-jwt-operations"
}

func (s *AuthTokenPublicTestSuite) TestGenerateAllowedRoles() {
	roles := authtoken.GenerateAllowedRoles(authtoken.RoleHierarchy)

	s.Equal([]string{"admin", "auditor", "write", "read"}, roles)
}

func (s *AuthTokenPublicTestSuite) TestValidate() {
	tests := []struct {
		name        string
		tokenFunc   func() string
		signingKey  string
		errContains string
		validate    func(*authtoken.CustomClaims)
	}{
		{
			name: "valid token",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, []string{"auditor"}, "compliance-bot", nil)
				return t
			},
			signingKey: s.signingKey,
			validate: func(claims *authtoken.CustomClaims) {
				s.Equal([]string{"auditor"}, claims.Roles)
				s.Equal("compliance-bot", claims.Subject)
				s.Equal(authtoken.Issuer, claims.Issuer)
				s.Empty(claims.Permissions)
				s.True(claims.ExpiresAt.After(time.Now()))
			},
		},
		{
			name: "valid token with direct permissions",
			tokenFunc: func() string {
				t, _ := s.token.Generate(
					s.signingKey,
					[]string{"read"},
					"exporter",
					[]string{authtoken.PermAuditExport},
				)
				return t
			},
			signingKey: s.signingKey,
			validate: func(claims *authtoken.CustomClaims) {
				s.Equal([]string{authtoken.PermAuditExport}, claims.Permissions)
			},
		},
		{
			name: "wrong signing key",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, []string{"read"}, "test-subject", nil)
				return t
			},
			signingKey:  "wrong-key",
			errContains: "signature is invalid",
		},
		{
			name: "malformed token",
			tokenFunc: func() string {
				return "not-a-valid-jwt-token"
			},
			signingKey:  s.signingKey,
			errContains: "invalid number of segments",
		},
		{
			name: "unexpected signing method",
			tokenFunc: func() string {
				header := base64.RawURLEncoding.EncodeToString(
					[]byte(`{"alg":"none","typ":"JWT"}`),
				)
				payload := base64.RawURLEncoding.EncodeToString(
					[]byte(`{"roles":["admin"]}`),
				)
				return header + "." + payload + "."
			},
			signingKey:  s.signingKey,
			errContains: "unexpected signing method",
		},
		{
			name: "expired token",
			tokenFunc: func() string {
				claims := authtoken.CustomClaims{
					Roles: []string{"read"},
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    authtoken.Issuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
					},
				}
				t, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
					SignedString([]byte(s.signingKey))
				return t
			},
			signingKey:  s.signingKey,
			errContains: "token is expired",
		},
		{
			name: "foreign issuer",
			tokenFunc: func() string {
				claims := authtoken.CustomClaims{
					Roles: []string{"admin"},
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				t, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
					SignedString([]byte(s.signingKey))
				return t
			},
			signingKey:  s.signingKey,
			errContains: `issuer "someone-else"`,
		},
		{
			name: "empty signing key",
			tokenFunc: func() string {
				t, _ := s.token.Generate(s.signingKey, []string{"read"}, "test-subject", nil)
				return t
			},
			signingKey:  "",
			errContains: "no signing key configured",
		},
		{
			name: "claims fail struct validation",
			tokenFunc: func() string {
				claims := authtoken.CustomClaims{
					Roles: []string{"invalid_role"},
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    authtoken.Issuer,
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				t, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
					SignedString([]byte(s.signingKey))
				return t
			},
			signingKey:  s.signingKey,
			errContains: "roles",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			claims, err := s.token.Validate(tt.tokenFunc(), tt.signingKey)

			if tt.errContains != "" {
				s.ErrorIs(err, authtoken.ErrInvalidToken)
				s.ErrorContains(err, tt.errContains)
				s.Nil(claims)
				return
			}

			s.Require().NoError(err)
			if tt.validate != nil {
				tt.validate(claims)
			}
		})
	}
}

func TestAuthTokenPublicTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTokenPublicTestSuite))
}
