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

package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/messaging/natstest"
)

type VerifierInternalTestSuite struct {
	suite.Suite

	ctx      context.Context
	kv       jetstream.KeyValue
	store    *KVStore
	writer   *Writer
	verifier *Verifier
}

func (s *VerifierInternalTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = natstest.NewKeyValue(s.T(), "audit-verifier-test")
	s.store = NewKVStore(slog.Default(), s.kv)
	s.writer = NewWriter(slog.Default(), s.store)

	v, err := NewVerifier(slog.Default(), s.store)
	s.Require().NoError(err)
	s.verifier = v
}

func (s *VerifierInternalTestSuite) appendSeverities(
	orgID string,
	severities ...Severity,
) []*Entry {
	entries := make([]*Entry, 0, len(severities))
	for _, sev := range severities {
		e, err := s.writer.Append(s.ctx, orgID, Event{
			EventType:      "case.status_change",
			Category:       CategoryCaseManagement,
			Action:         ActionUpdate,
			Severity:       sev,
			ActorType:      ActorUser,
			ActorID:        "user-7",
			ActorEmail:     "reviewer@example.com",
			ActorIPAddress: "10.0.0.7",
			ActorUserAgent: "Mozilla/5.0",
			TargetType:     "case",
			TargetID:       "case-19",
			TargetName:     "Case 19",
			Summary:        "case moved to review",
			Description:    "status changed from open to review",
			BeforeState:    Object(map[string]Value{"status": String("open")}),
			AfterState:     Object(map[string]Value{"status": String("review")}),
			Metadata:       Object(map[string]Value{"reason": String("escalation"), "score": Int(7)}),
			RequestPath:    "/cases/19/status",
		})
		s.Require().NoError(err)
		entries = append(entries, e)
	}

	return entries
}

func (s *VerifierInternalTestSuite) rawGet(
	orgID string,
	index uint64,
) []byte {
	kve, err := s.kv.Get(s.ctx, entryKey(orgID, index))
	s.Require().NoError(err)

	return kve.Value()
}

func (s *VerifierInternalTestSuite) rawPut(
	orgID string,
	index uint64,
	data []byte,
) {
	_, err := s.kv.Put(s.ctx, entryKey(orgID, index), data)
	s.Require().NoError(err)
}

func (s *VerifierInternalTestSuite) TestTamperedSummaryBreaksChain() {
	s.appendSeverities("org-t", SeverityLow, SeverityMedium, SeverityCritical)

	result, err := s.verifier.Verify(s.ctx, "org-t")
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(uint64(3), result.TotalRecords)
	s.Nil(result.BrokenAt)

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(s.rawGet("org-t", 1), &doc))
	doc["summary"] = "nothing to see here"
	data, err := json.Marshal(doc)
	s.Require().NoError(err)
	s.rawPut("org-t", 1, data)

	result, err = s.verifier.Verify(s.ctx, "org-t")
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Require().NotNil(result.BrokenAt)
	s.Equal(uint64(1), *result.BrokenAt)
	s.Equal(ReasonHashMismatch, result.Reason)
	s.Equal(uint64(3), result.TotalRecords)
}

func (s *VerifierInternalTestSuite) TestEveryFieldIsCovered() {
	s.appendSeverities("org-flip", SeverityLow, SeverityHigh, SeverityLow)
	original := s.rawGet("org-flip", 1)

	var doc map[string]any
	s.Require().NoError(json.Unmarshal(original, &doc))

	for field := range doc {
		s.Run(field, func() {
			tampered := map[string]any{}
			for k, v := range doc {
				tampered[k] = v
			}
			tampered[field] = mutate(doc[field])

			data, err := json.Marshal(tampered)
			s.Require().NoError(err)
			s.rawPut("org-flip", 1, data)
			defer s.rawPut("org-flip", 1, original)

			result, err := s.verifier.Verify(s.ctx, "org-flip")
			s.Require().NoError(err)
			s.False(result.IsValid)
			s.Require().NotNil(result.BrokenAt)
			s.Equal(uint64(1), *result.BrokenAt)
		})
	}

	result, err := s.verifier.Verify(s.ctx, "org-flip")
	s.Require().NoError(err)
	s.True(result.IsValid)
}

// mutate returns a value that differs from v by a single change.
func mutate(
	v any,
) any {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "x"
		}
		b := []byte(t)
		b[len(b)-1] ^= 0x01
		return string(b)
	case float64:
		return t + 1
	case bool:
		return !t
	case map[string]any:
		out := map[string]any{"tampered": true}
		for k, val := range t {
			out[k] = val
		}
		return out
	default:
		return "x"
	}
}

func (s *VerifierInternalTestSuite) TestStructuralBreaks() {
	tests := []struct {
		name       string
		tamper     func()
		wantAt     uint64
		wantReason BreakReason
	}{
		{
			name: "deleted middle entry",
			tamper: func() {
				s.Require().NoError(s.kv.Delete(s.ctx, entryKey("org-s", 1)))
			},
			wantAt:     1,
			wantReason: ReasonMissingEntry,
		},
		{
			name: "undecodable entry",
			tamper: func() {
				s.rawPut("org-s", 2, []byte("{truncated"))
			},
			wantAt:     2,
			wantReason: ReasonCorruptEntry,
		},
		{
			name: "entry copied from another organization",
			tamper: func() {
				s.rawPut("org-s", 0, s.rawGet("org-donor", 0))
			},
			wantAt:     0,
			wantReason: ReasonOrganizationMismatch,
		},
		{
			name: "entries swapped",
			tamper: func() {
				one := s.rawGet("org-s", 1)
				s.rawPut("org-s", 1, s.rawGet("org-s", 2))
				s.rawPut("org-s", 2, one)
			},
			wantAt:     1,
			wantReason: ReasonIndexMismatch,
		},
		{
			name: "entry rehashed after editing",
			tamper: func() {
				e, err := s.store.Get(s.ctx, "org-s", 1)
				s.Require().NoError(err)
				e.Summary = "rewritten"
				e.Hash = EntryHash(*e)
				data, err := json.Marshal(e)
				s.Require().NoError(err)
				s.rawPut("org-s", 1, data)
			},
			wantAt:     2,
			wantReason: ReasonPreviousHashMismatch,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.appendSeverities("org-s", SeverityLow, SeverityMedium, SeverityHigh, SeverityLow)
			s.appendSeverities("org-donor", SeverityLow)

			tt.tamper()

			result, err := s.verifier.Verify(s.ctx, "org-s")
			s.Require().NoError(err)
			s.False(result.IsValid)
			s.Require().NotNil(result.BrokenAt)
			s.Equal(tt.wantAt, *result.BrokenAt)
			s.Equal(tt.wantReason, result.Reason)
			s.Equal(uint64(4), result.TotalRecords)
		})
	}
}

func (s *VerifierInternalTestSuite) TestEmptyChainIsValid() {
	result, err := s.verifier.Verify(s.ctx, "org-none")
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(uint64(0), result.TotalRecords)
}

func (s *VerifierInternalTestSuite) TestVerifyIncremental() {
	s.appendSeverities("org-inc", SeverityLow, SeverityLow, SeverityLow)

	result, err := s.verifier.VerifyIncremental(s.ctx, "org-inc")
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(uint64(3), result.TotalRecords)

	// Tampering inside the verified prefix is only seen by a full walk.
	original := s.rawGet("org-inc", 0)
	s.rawPut("org-inc", 0, []byte("{}"))

	s.appendSeverities("org-inc", SeverityMedium, SeverityMedium)

	result, err = s.verifier.VerifyIncremental(s.ctx, "org-inc")
	s.Require().NoError(err)
	s.True(result.IsValid)
	s.Equal(uint64(5), result.TotalRecords)

	full, err := s.verifier.Verify(s.ctx, "org-inc")
	s.Require().NoError(err)
	s.False(full.IsValid)

	// The failed full walk dropped the checkpoint, so the next incremental
	// run starts from genesis.
	result, err = s.verifier.VerifyIncremental(s.ctx, "org-inc")
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(uint64(0), *result.BrokenAt)

	s.rawPut("org-inc", 0, original)
	result, err = s.verifier.VerifyIncremental(s.ctx, "org-inc")
	s.Require().NoError(err)
	s.True(result.IsValid)
}

func (s *VerifierInternalTestSuite) TestVerifyIncrementalDetectsSuffixTampering() {
	s.appendSeverities("org-suffix", SeverityLow, SeverityLow)

	result, err := s.verifier.VerifyIncremental(s.ctx, "org-suffix")
	s.Require().NoError(err)
	s.True(result.IsValid)

	entries := s.appendSeverities("org-suffix", SeverityCritical)
	var doc map[string]any
	s.Require().NoError(json.Unmarshal(s.rawGet("org-suffix", entries[0].ChainIndex), &doc))
	doc["severity"] = "low"
	data, err := json.Marshal(doc)
	s.Require().NoError(err)
	s.rawPut("org-suffix", entries[0].ChainIndex, data)

	result, err = s.verifier.VerifyIncremental(s.ctx, "org-suffix")
	s.Require().NoError(err)
	s.False(result.IsValid)
	s.Equal(uint64(2), *result.BrokenAt)
	s.Equal(ReasonHashMismatch, result.Reason)
}

func TestVerifierInternalTestSuite(t *testing.T) {
	suite.Run(t, new(VerifierInternalTestSuite))
}
