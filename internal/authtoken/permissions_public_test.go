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
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/authtoken"
)

type PermissionsPublicTestSuite struct {
	suite.Suite
}

func (s *PermissionsPublicTestSuite) TestResolvePermissions() {
	tests := []struct {
		name              string
		roles             []string
		directPermissions []string
		customRoles       map[string][]string
		expectPerms       []string
		expectMissing     []string
	}{
		{
			name:        "admin role gets all permissions",
			roles:       []string{"admin"},
			expectPerms: authtoken.AllPermissions,
		},
		{
			name:  "auditor can verify and export but not write",
			roles: []string{"auditor"},
			expectPerms: []string{
				authtoken.PermAuditRead,
				authtoken.PermAuditVerify,
				authtoken.PermAuditExport,
				authtoken.PermAuditSensitive,
			},
			expectMissing: []string{authtoken.PermAuditWrite},
		},
		{
			name:        "write role appends but cannot see sensitive fields",
			roles:       []string{"write"},
			expectPerms: []string{authtoken.PermAuditWrite, authtoken.PermAuditRead},
			expectMissing: []string{
				authtoken.PermAuditSensitive,
				authtoken.PermAuditExport,
				authtoken.PermAuditVerify,
			},
		},
		{
			name:          "read role is read only",
			roles:         []string{"read"},
			expectPerms:   []string{authtoken.PermAuditRead, authtoken.PermHealthRead},
			expectMissing: []string{authtoken.PermAuditWrite},
		},
		{
			name:          "multiple roles are merged",
			roles:         []string{"read", "write"},
			expectPerms:   []string{authtoken.PermAuditRead, authtoken.PermAuditWrite},
			expectMissing: []string{authtoken.PermAuditExport},
		},
		{
			name:              "direct permissions override roles",
			roles:             []string{"admin"},
			directPermissions: []string{authtoken.PermAuditVerify},
			expectPerms:       []string{authtoken.PermAuditVerify},
			expectMissing:     []string{authtoken.PermAuditRead},
		},
		{
			name:          "custom role takes precedence over built-in",
			roles:         []string{"read"},
			customRoles:   map[string][]string{"read": {authtoken.PermHealthRead}},
			expectPerms:   []string{authtoken.PermHealthRead},
			expectMissing: []string{authtoken.PermAuditRead},
		},
		{
			name:          "unknown role grants nothing",
			roles:         []string{"nobody"},
			expectMissing: authtoken.AllPermissions,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resolved := authtoken.ResolvePermissions(tt.roles, tt.directPermissions, tt.customRoles)

			for _, p := range tt.expectPerms {
				s.True(authtoken.HasPermission(resolved, p), "expected %s", p)
			}
			for _, p := range tt.expectMissing {
				s.False(authtoken.HasPermission(resolved, p), "unexpected %s", p)
			}
		})
	}
}

func TestPermissionsPublicTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionsPublicTestSuite))
}
