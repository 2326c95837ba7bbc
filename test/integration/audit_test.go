//go:build integration

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

package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

const auditOrg = "org-integration"

type AuditSmokeSuite struct {
	suite.Suite

	entryIDs []string
}

func (s *AuditSmokeSuite) SetupSuite() {
	events := [][]string{
		{
			"--event-type", "user.login",
			"--category", "authentication",
			"--action", "login",
			"--severity", "low",
			"--actor-type", "user",
			"--actor-id", "u1",
			"--summary", "user signed in",
		},
		{
			"--event-type", "report.submit",
			"--category", "case_management",
			"--action", "create",
			"--severity", "critical",
			"--actor-type", "anonymous",
			"--actor-ip", "198.51.100.4",
			"--summary", "anonymous report, with comma",
			"--metadata", `{"channel":"web"}`,
		},
		{
			"--event-type", "user.invite",
			"--category", "user_management",
			"--action", "invite",
			"--severity", "medium",
			"--actor-type", "user",
			"--actor-id", "u1",
			"--summary", "invited bob",
			"--idempotency-key", "invite-bob",
		},
	}

	for _, ev := range events {
		args := append([]string{"client", "audit", "append", "--org", auditOrg, "--json"}, ev...)
		stdout, stderr, exitCode := runCLI(args...)
		s.Require().Equal(0, exitCode, stderr)

		var entry struct {
			ID string `json:"id"`
		}
		s.Require().NoError(parseJSON(stdout, &entry))
		s.entryIDs = append(s.entryIDs, entry.ID)
	}
}

func (s *AuditSmokeSuite) TestAuditAppendIdempotent() {
	stdout, _, exitCode := runCLI(
		"client", "audit", "append", "--org", auditOrg, "--json",
		"--event-type", "user.invite",
		"--category", "user_management",
		"--action", "invite",
		"--severity", "medium",
		"--actor-type", "user",
		"--actor-id", "u1",
		"--summary", "invited bob",
		"--idempotency-key", "invite-bob",
	)
	s.Require().Equal(0, exitCode)

	var entry struct {
		ID         string `json:"id"`
		ChainIndex uint64 `json:"chain_index"`
	}
	s.Require().NoError(parseJSON(stdout, &entry))
	s.Equal(s.entryIDs[2], entry.ID)
	s.Equal(uint64(2), entry.ChainIndex)
}

func (s *AuditSmokeSuite) TestAuditList() {
	tests := []struct {
		name         string
		args         []string
		validateFunc func(stdout string, exitCode int)
	}{
		{
			name: "returns every entry newest first",
			args: []string{"client", "audit", "list", "--org", auditOrg, "--json"},
			validateFunc: func(
				stdout string,
				exitCode int,
			) {
				s.Require().Equal(0, exitCode)

				var result struct {
					Total   int `json:"total"`
					Entries []struct {
						ID string `json:"id"`
					} `json:"entries"`
				}
				s.Require().NoError(parseJSON(stdout, &result))
				s.GreaterOrEqual(result.Total, 3)
			},
		},
		{
			name: "filters by severity",
			args: []string{
				"client", "audit", "list", "--org", auditOrg, "--severity", "critical", "--json",
			},
			validateFunc: func(
				stdout string,
				exitCode int,
			) {
				s.Require().Equal(0, exitCode)

				var result struct {
					Total   int `json:"total"`
					Entries []struct {
						ID             string `json:"id"`
						ActorIPAddress string `json:"actor_ip_address"`
					} `json:"entries"`
				}
				s.Require().NoError(parseJSON(stdout, &result))
				s.Equal(1, result.Total)
				s.Equal(s.entryIDs[1], result.Entries[0].ID)
				// The admin token holds audit:sensitive.
				s.Equal("198.51.100.4", result.Entries[0].ActorIPAddress)
			},
		},
		{
			name: "rejects an unknown severity",
			args: []string{
				"client", "audit", "list", "--org", auditOrg, "--severity", "urgent", "--json",
			},
			validateFunc: func(
				_ string,
				exitCode int,
			) {
				s.NotEqual(0, exitCode)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			stdout, _, exitCode := runCLI(tt.args...)
			tt.validateFunc(stdout, exitCode)
		})
	}
}

func (s *AuditSmokeSuite) TestAuditGet() {
	stdout, _, exitCode := runCLI(
		"client", "audit", "get", s.entryIDs[0], "--org", auditOrg, "--json",
	)
	s.Require().Equal(0, exitCode)

	var entry struct {
		ID           string `json:"id"`
		ChainIndex   uint64 `json:"chain_index"`
		PreviousHash string `json:"previous_hash"`
	}
	s.Require().NoError(parseJSON(stdout, &entry))
	s.Equal(s.entryIDs[0], entry.ID)
	s.Equal(uint64(0), entry.ChainIndex)
	s.Equal(strings.Repeat("0", 64), entry.PreviousHash)
}

func (s *AuditSmokeSuite) TestAuditVerify() {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "full verification reports a valid chain",
			args: []string{"client", "audit", "verify", "--org", auditOrg, "--json"},
		},
		{
			name: "incremental verification reports a valid chain",
			args: []string{"client", "audit", "verify", "--org", auditOrg, "--incremental", "--json"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			stdout, _, exitCode := runCLI(tt.args...)
			s.Require().Equal(0, exitCode)

			var result struct {
				IsValid      bool   `json:"is_valid"`
				TotalRecords uint64 `json:"total_records"`
			}
			s.Require().NoError(parseJSON(stdout, &result))
			s.True(result.IsValid)
			s.GreaterOrEqual(result.TotalRecords, uint64(3))
		})
	}
}

func (s *AuditSmokeSuite) TestAuditExport() {
	tests := []struct {
		name         string
		args         []string
		path         string
		validateFunc func(data []byte)
	}{
		{
			name: "downloads a csv export",
			path: filepath.Join(tempDir, "audit-export.csv"),
			args: []string{"--format", "csv", "--severity", "critical"},
			validateFunc: func(data []byte) {
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				s.Len(lines, 2)
				s.True(strings.HasPrefix(lines[0], "id,organization_id,chain_index"))
				s.Contains(lines[1], `"anonymous report, with comma"`)
			},
		},
		{
			name: "builds a jsonl export from pages",
			path: filepath.Join(tempDir, "audit-export.jsonl"),
			args: []string{"--format", "jsonl", "--paginate"},
			validateFunc: func(data []byte) {
				lines := strings.Split(strings.TrimSpace(string(data)), "\n")
				s.GreaterOrEqual(len(lines), 3)

				var first struct {
					ChainIndex uint64 `json:"chain_index"`
				}
				s.Require().NoError(json.Unmarshal([]byte(lines[0]), &first))
				s.Equal(uint64(0), first.ChainIndex)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			args := append(
				[]string{"client", "audit", "export", "--org", auditOrg, "--output", tt.path},
				tt.args...,
			)
			_, stderr, exitCode := runCLI(args...)
			s.Require().Equal(0, exitCode, stderr)

			data, err := os.ReadFile(tt.path)
			s.Require().NoError(err)
			tt.validateFunc(data)
		})
	}
}

func TestAuditSmokeSuite(
	t *testing.T,
) {
	suite.Run(t, new(AuditSmokeSuite))
}
