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

package cli_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/cli"
	"github.com/retr0h/auditchain/internal/client"
)

type UITestSuite struct {
	suite.Suite
}

func TestUITestSuite(t *testing.T) {
	suite.Run(t, new(UITestSuite))
}

func captureStdout(
	fn func(),
) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	out, _ := io.ReadAll(r)
	os.Stdout = old

	return string(out)
}

func (suite *UITestSuite) TestFormatBytes() {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{name: "when bytes", input: 512, want: "512 B"},
		{name: "when kilobytes", input: 5325, want: "5.2 KB"},
		{name: "when megabytes", input: 1 << 20, want: "1.0 MB"},
		{name: "when gigabytes", input: 3 << 30, want: "3.0 GB"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.want, cli.FormatBytes(tc.input))
		})
	}
}

func (suite *UITestSuite) TestFormatList() {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{name: "when empty returns None", input: nil, want: "None"},
		{name: "when populated joins", input: []string{"audit:read", "audit:verify"}, want: "audit:read, audit:verify"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.want, cli.FormatList(tc.input))
		})
	}
}

func (suite *UITestSuite) TestTruncate() {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "when shorter than width unchanged", input: "login", width: 10, want: "login"},
		{name: "when longer cuts with ellipsis", input: "user.password_reset", width: 8, want: "user.pa…"},
		{name: "when width one returns ellipsis", input: "abc", width: 1, want: "…"},
		{name: "when width zero unchanged", input: "abc", width: 0, want: "abc"},
		{name: "when multibyte counts runes", input: "héllo wörld", width: 6, want: "héllo…"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			assert.Equal(suite.T(), tc.want, cli.Truncate(tc.input, tc.width))
		})
	}
}

func (suite *UITestSuite) TestCalculateColumnWidths() {
	got := cli.CalculateColumnWidths(
		[]string{"INDEX", "SUMMARY"},
		[][]string{{"0", "user signed in"}, {"12345678", "x"}},
		2,
	)

	assert.Equal(suite.T(), []int{10, 16}, got)
}

func (suite *UITestSuite) TestPrintKV() {
	tests := []struct {
		name     string
		pairs    []string
		wantOut  []string
		wantNone bool
	}{
		{
			name:    "when pairs renders labels and values",
			pairs:   []string{"Organization", "org-a", "Records", "3"},
			wantOut: []string{"Organization:", "org-a", "Records:", "3"},
		},
		{
			name:     "when odd pairs prints nothing",
			pairs:    []string{"Organization"},
			wantNone: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			out := captureStdout(func() { cli.PrintKV(tc.pairs...) })

			if tc.wantNone {
				assert.Empty(suite.T(), out)
				return
			}
			for _, want := range tc.wantOut {
				assert.Contains(suite.T(), out, want)
			}
		})
	}
}

func (suite *UITestSuite) TestPrintCompactTable() {
	out := captureStdout(func() {
		cli.PrintCompactTable([]cli.Section{{
			Title:   "Entries",
			Headers: []string{"index", "summary"},
			Rows: [][]string{
				{"0", "user\nsigned in"},
				{"1", "invited bob"},
			},
		}})
	})

	assert.Contains(suite.T(), out, "Entries:")
	assert.Contains(suite.T(), out, "INDEX")
	assert.Contains(suite.T(), out, "SUMMARY")
	assert.Contains(suite.T(), out, "user signed in")
	assert.Contains(suite.T(), out, "invited bob")
}

func (suite *UITestSuite) TestDisplayEntries() {
	created := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		result  *audit.QueryResult
		wantOut []string
	}{
		{
			name:    "when empty prints notice",
			result:  &audit.QueryResult{Limit: 50},
			wantOut: []string{"Total:", "no matching entries"},
		},
		{
			name: "when entries prints table",
			result: &audit.QueryResult{
				Total: 1,
				Limit: 50,
				Entries: []audit.Entry{{
					ID:         "e-1",
					ChainIndex: 7,
					CreatedAt:  created,
					EventType:  "user.login",
					Severity:   audit.SeverityLow,
					ActorType:  audit.ActorUser,
					ActorID:    "u1",
					Summary:    "signed in",
				}},
			},
			wantOut: []string{"EVENT TYPE", "user.login", "user:u1", "2026-03-09T12:00:00Z", "e-1"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			out := captureStdout(func() { cli.DisplayEntries(tc.result) })

			for _, want := range tc.wantOut {
				assert.Contains(suite.T(), out, want)
			}
		})
	}
}

func (suite *UITestSuite) TestDisplayEntry() {
	out := captureStdout(func() {
		cli.DisplayEntry(&audit.Entry{
			ID:        "e-1",
			EventType: "user.update",
			Summary:   "changed role",
			AfterState: audit.Object(map[string]audit.Value{
				"role": audit.String("admin"),
			}),
			Hash: "abc123",
		})
	})

	assert.Contains(suite.T(), out, "user.update")
	assert.Contains(suite.T(), out, `{"role":"admin"}`)
	assert.Contains(suite.T(), out, "abc123")
}

func (suite *UITestSuite) TestDisplayVerifyResult() {
	brokenAt := uint64(2)

	tests := []struct {
		name       string
		result     *audit.VerifyResult
		wantOut    []string
		wantNotOut string
	}{
		{
			name:       "when valid prints records",
			result:     &audit.VerifyResult{IsValid: true, TotalRecords: 3},
			wantOut:    []string{"Records:", "3", "Valid:", "true"},
			wantNotOut: "CHAIN BROKEN",
		},
		{
			name: "when broken prints index and reason",
			result: &audit.VerifyResult{
				TotalRecords: 3,
				BrokenAt:     &brokenAt,
				Reason:       audit.ReasonHashMismatch,
			},
			wantOut: []string{"CHAIN BROKEN at index 2: hash_mismatch"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			out := captureStdout(func() { cli.DisplayVerifyResult("org-a", tc.result) })

			for _, want := range tc.wantOut {
				assert.Contains(suite.T(), out, want)
			}
			if tc.wantNotOut != "" {
				assert.NotContains(suite.T(), out, tc.wantNotOut)
			}
		})
	}
}

func (suite *UITestSuite) TestHandleError() {
	tests := []struct {
		name    string
		err     error
		wantLog []string
	}{
		{
			name:    "when unauthorized logs authorization error",
			err:     &client.Error{StatusCode: 403, Message: "Insufficient permissions"},
			wantLog: []string{"authorization error", "code=403", "Insufficient permissions"},
		},
		{
			name:    "when api error logs error in response",
			err:     &client.Error{StatusCode: 400, Message: "limit must be between 1 and 1000"},
			wantLog: []string{"error in response", "code=400"},
		},
		{
			name:    "when transport error logs request failed",
			err:     errors.New("connection refused"),
			wantLog: []string{"request failed", "connection refused"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			cli.HandleError(tc.err, logger)

			for _, want := range tc.wantLog {
				assert.Contains(suite.T(), buf.String(), want)
			}
		})
	}
}
