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

package audit_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	auditapi "github.com/retr0h/auditchain/internal/api/audit"
	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/authtoken"
	"github.com/retr0h/auditchain/internal/messaging/natstest"
)

// fakeAuthorizer lets every request through and grants a fixed permission set.
type fakeAuthorizer struct {
	perms map[string]bool
}

func (a *fakeAuthorizer) Require(string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}

func (a *fakeAuthorizer) Allowed(_ echo.Context, permission string) bool {
	return a.perms[permission]
}

type AuditPublicTestSuite struct {
	suite.Suite

	ctx    context.Context
	logger *slog.Logger
	writer *audit.Writer
	engine *audit.Engine
	verify *audit.Verifier
	fs     afero.Fs
	authz  *fakeAuthorizer
	e      *echo.Echo
	seeded []*audit.Entry
}

func (s *AuditPublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.Default()

	kv := natstest.NewKeyValue(s.T(), "audit-api-test")
	store := audit.NewKVStore(s.logger, kv)
	s.writer = audit.NewWriter(s.logger, store)
	s.engine = audit.NewEngine(s.logger, store)

	var err error
	s.verify, err = audit.NewVerifier(s.logger, store)
	s.Require().NoError(err)

	s.fs = afero.NewMemMapFs()
	s.Require().NoError(s.fs.MkdirAll("/spool", 0o755))

	s.authz = &fakeAuthorizer{perms: map[string]bool{}}
	handler := auditapi.New(
		s.logger,
		s.writer,
		s.engine,
		s.verify,
		auditapi.WithSpool(s.fs, "/spool"),
		auditapi.WithClock(func() time.Time {
			return time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
		}),
		auditapi.WithExportBatchSize(2),
	)

	s.e = echo.New()
	handler.Register(s.e, s.authz)

	s.seeded = nil
	for _, ev := range []audit.Event{
		{
			EventType:  "user.login",
			Category:   audit.CategoryAuthentication,
			Action:     audit.ActionLogin,
			Severity:   audit.SeverityLow,
			ActorType:  audit.ActorUser,
			ActorID:    "u1",
			ActorEmail: "u1@example.com",
			Summary:    "signed in",
		},
		{
			EventType:      "report.submit",
			Category:       audit.CategoryCaseManagement,
			Action:         audit.ActionCreate,
			Severity:       audit.SeverityMedium,
			ActorType:      audit.ActorAnonymous,
			ActorID:        "reporter-7",
			ActorIPAddress: "198.51.100.4",
			ActorUserAgent: "Mozilla/5.0",
			Summary:        "anonymous report, with comma",
		},
		{
			EventType: "user.invite",
			Category:  audit.CategoryUserManagement,
			Action:    audit.ActionInvite,
			Severity:  audit.SeverityLow,
			ActorType: audit.ActorUser,
			ActorID:   "u1",
			Summary:   "invited u2",
		},
	} {
		entry, err := s.writer.Append(s.ctx, "org-a", ev)
		s.Require().NoError(err)
		s.seeded = append(s.seeded, entry)
	}
}

func (s *AuditPublicTestSuite) do(
	method string,
	target string,
	body string,
	header map[string]string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func (s *AuditPublicTestSuite) TestPostAuditEvent() {
	valid := `{
		"event_type": "case.close",
		"category": "case_management",
		"action": "update",
		"severity": "high",
		"actor_type": "user",
		"actor_id": "u9",
		"summary": "closed case",
		"metadata": {"reason": "resolved"}
	}`

	tests := []struct {
		name         string
		org          string
		body         string
		wantCode     int
		validateFunc func(rec *httptest.ResponseRecorder)
	}{
		{
			name:     "when valid appends to the chain",
			org:      "org-a",
			body:     valid,
			wantCode: http.StatusCreated,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var entry audit.Entry
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entry))
				s.Equal(uint64(3), entry.ChainIndex)
				s.Equal("org-a", entry.OrganizationID)
				s.Equal(s.seeded[2].Hash, entry.PreviousHash)
				s.Equal(audit.EntryHash(entry), entry.Hash)
			},
		},
		{
			name:     "when first event of an organization starts at genesis",
			org:      "org-new",
			body:     valid,
			wantCode: http.StatusCreated,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var entry audit.Entry
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entry))
				s.Equal(uint64(0), entry.ChainIndex)
				s.Equal(audit.GenesisHash, entry.PreviousHash)
			},
		},
		{
			name:     "when body is not json",
			org:      "org-a",
			body:     "{not json",
			wantCode: http.StatusBadRequest,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.JSONEq(`{"error":"invalid request body"}`, rec.Body.String())
			},
		},
		{
			name:     "when required field missing",
			org:      "org-a",
			body:     `{"event_type":"case.close","category":"case_management","action":"update","severity":"high","actor_type":"user"}`,
			wantCode: http.StatusBadRequest,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.Contains(rec.Body.String(), "summary")
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/organizations/"+tt.org+"/audit", tt.body, nil)

			s.Equal(tt.wantCode, rec.Code)
			tt.validateFunc(rec)
		})
	}
}

func (s *AuditPublicTestSuite) TestPostAuditEventIdempotent() {
	body := `{"event_type":"user.logout","category":"authentication","action":"logout","severity":"low","actor_type":"user","summary":"signed out"}`
	header := map[string]string{auditapi.IdempotencyKeyHeader: "req-42"}

	first := s.do(http.MethodPost, "/organizations/org-a/audit", body, header)
	second := s.do(http.MethodPost, "/organizations/org-a/audit", body, header)

	s.Equal(http.StatusCreated, first.Code)
	s.Equal(http.StatusCreated, second.Code)
	s.JSONEq(first.Body.String(), second.Body.String())

	result, err := s.engine.Query(s.ctx, "org-a", audit.Filter{}, audit.Page{})
	s.Require().NoError(err)
	s.Equal(4, result.Total)
}

func (s *AuditPublicTestSuite) TestGetAuditLogs() {
	tests := []struct {
		name         string
		query        string
		sensitive    bool
		wantCode     int
		validateFunc func(rec *httptest.ResponseRecorder)
	}{
		{
			name:     "when no filter returns newest first",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var result audit.QueryResult
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
				s.Equal(3, result.Total)
				s.Len(result.Entries, 3)
				s.Equal(s.seeded[2].ID, result.Entries[0].ID)
			},
		},
		{
			name:     "when filtered and paged",
			query:    "?actor_id=u1&limit=1&offset=1&order=asc",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var result audit.QueryResult
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
				s.Equal(2, result.Total)
				s.Require().Len(result.Entries, 1)
				s.Equal(s.seeded[2].ID, result.Entries[0].ID)
				s.Equal(1, result.Limit)
				s.Equal(1, result.Offset)
			},
		},
		{
			name:     "when anonymous actor without sensitive access",
			query:    "?actor_type=anonymous",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var result audit.QueryResult
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
				s.Require().Len(result.Entries, 1)
				e := result.Entries[0]
				s.Empty(e.ActorID)
				s.Empty(e.ActorIPAddress)
				s.Empty(e.ActorUserAgent)
				s.Equal(audit.ActorAnonymous, e.ActorType)
				s.Equal(s.seeded[1].Hash, e.Hash)
			},
		},
		{
			name:      "when anonymous actor with sensitive access",
			query:     "?actor_type=anonymous",
			sensitive: true,
			wantCode:  http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var result audit.QueryResult
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
				s.Require().Len(result.Entries, 1)
				s.Equal("198.51.100.4", result.Entries[0].ActorIPAddress)
				s.Equal("reporter-7", result.Entries[0].ActorID)
			},
		},
		{
			name:     "when limit is not a number",
			query:    "?limit=ten",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "when from is not a timestamp",
			query:    "?from=yesterday",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "when category is unknown",
			query:    "?category=gossip",
			wantCode: http.StatusBadRequest,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.Contains(rec.Body.String(), "gossip")
			},
		},
		{
			name:     "when organization has no chain",
			query:    "",
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.authz.perms[authtoken.PermAuditSensitive] = tt.sensitive
			org := "org-a"
			if tt.name == "when organization has no chain" {
				org = "org-empty"
			}

			rec := s.do(http.MethodGet, "/organizations/"+org+"/audit"+tt.query, "", nil)

			s.Equal(tt.wantCode, rec.Code)
			if tt.validateFunc != nil {
				tt.validateFunc(rec)
			}
		})
	}
}

func (s *AuditPublicTestSuite) TestGetAuditLogByID() {
	tests := []struct {
		name     string
		org      string
		id       string
		wantCode int
		wantID   string
	}{
		{
			name:     "when entry exists",
			org:      "org-a",
			id:       s.seeded[0].ID,
			wantCode: http.StatusOK,
			wantID:   s.seeded[0].ID,
		},
		{
			name:     "when entry belongs to another organization",
			org:      "org-b",
			id:       s.seeded[0].ID,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "when entry does not exist",
			org:      "org-a",
			id:       "missing",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodGet, "/organizations/"+tt.org+"/audit/"+tt.id, "", nil)

			s.Equal(tt.wantCode, rec.Code)
			if tt.wantID == "" {
				s.JSONEq(`{"error":"audit entry not found"}`, rec.Body.String())
				return
			}

			var entry audit.Entry
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entry))
			s.Equal(tt.wantID, entry.ID)
		})
	}
}

func (s *AuditPublicTestSuite) TestGetAuditVerify() {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantValid bool
		wantTotal uint64
	}{
		{
			name:      "when full",
			wantCode:  http.StatusOK,
			wantValid: true,
			wantTotal: 3,
		},
		{
			name:      "when incremental",
			query:     "?mode=incremental",
			wantCode:  http.StatusOK,
			wantValid: true,
			wantTotal: 3,
		},
		{
			name:     "when mode unknown",
			query:    "?mode=quick",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodGet, "/organizations/org-a/audit/verify"+tt.query, "", nil)

			s.Equal(tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var result audit.VerifyResult
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
			s.Equal(tt.wantValid, result.IsValid)
			s.Equal(tt.wantTotal, result.TotalRecords)
			s.Nil(result.BrokenAt)
		})
	}
}

func (s *AuditPublicTestSuite) TestGetAuditExport() {
	tests := []struct {
		name         string
		query        string
		sensitive    bool
		wantCode     int
		validateFunc func(rec *httptest.ResponseRecorder)
	}{
		{
			name:     "when csv by default",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.Equal("text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
				s.Equal(
					`attachment; filename="audit-logs-2026-03-09.csv"`,
					rec.Header().Get(echo.HeaderContentDisposition),
				)

				records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
				s.Require().NoError(err)
				s.Require().Len(records, 4)
				s.Equal("id", records[0][0])
				s.Contains(rec.Body.String(), `"anonymous report, with comma"`)
			},
		},
		{
			name:     "when json hides anonymous network details",
			query:    "?format=json&order=asc",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.Equal(
					`attachment; filename="audit-logs-2026-03-09.json"`,
					rec.Header().Get(echo.HeaderContentDisposition),
				)

				var entries []audit.Entry
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
				s.Require().Len(entries, 3)
				s.Empty(entries[1].ActorIPAddress)
				s.Empty(entries[1].ActorUserAgent)
				s.Equal("reporter-7", entries[1].ActorID)
			},
		},
		{
			name:      "when json with sensitive access",
			query:     "?format=json&order=asc",
			sensitive: true,
			wantCode:  http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var entries []audit.Entry
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
				s.Require().Len(entries, 3)
				s.Equal("198.51.100.4", entries[1].ActorIPAddress)
			},
		},
		{
			name:     "when filtered",
			query:    "?format=json&event_type=user.invite",
			wantCode: http.StatusOK,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				var entries []audit.Entry
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
				s.Require().Len(entries, 1)
				s.Equal(s.seeded[2].ID, entries[0].ID)
			},
		},
		{
			name:     "when format unsupported",
			query:    "?format=xml",
			wantCode: http.StatusBadRequest,
			validateFunc: func(rec *httptest.ResponseRecorder) {
				s.JSONEq(`{"error":"unsupported export format \"xml\""}`, rec.Body.String())
			},
		},
		{
			name:     "when filter invalid",
			query:    "?severity=urgent",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.authz.perms[authtoken.PermAuditSensitive] = tt.sensitive

			rec := s.do(http.MethodGet, "/organizations/org-a/audit/export"+tt.query, "", nil)

			s.Equal(tt.wantCode, rec.Code)
			if tt.validateFunc != nil {
				tt.validateFunc(rec)
			}

			leftovers, err := afero.ReadDir(s.fs, "/spool")
			s.Require().NoError(err)
			s.Empty(leftovers)
		})
	}
}

func TestAuditPublicTestSuite(t *testing.T) {
	suite.Run(t, new(AuditPublicTestSuite))
}
