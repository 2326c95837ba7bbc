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
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/messaging/natstest"
)

type KVStorePublicTestSuite struct {
	suite.Suite

	ctx   context.Context
	kv    jetstream.KeyValue
	store *audit.KVStore
}

func (s *KVStorePublicTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = natstest.NewKeyValue(s.T(), "audit-store-test")
	s.store = audit.NewKVStore(slog.Default(), s.kv)
}

// chainEntry builds a correctly hashed entry following previous.
func chainEntry(
	orgID string,
	index uint64,
	previousHash string,
) audit.Entry {
	e := audit.Entry{
		ID:             "entry-" + orgID + "-" + string(rune('a'+index)),
		OrganizationID: orgID,
		ChainIndex:     index,
		PreviousHash:   previousHash,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, int(index), 0, time.UTC),
		EventType:      "user.login",
		Category:       audit.CategoryAuthentication,
		Action:         audit.ActionLogin,
		Severity:       audit.SeverityLow,
		ActorType:      audit.ActorUser,
		ActorID:        "user-1",
		Summary:        "user logged in",
	}
	e.Hash = audit.EntryHash(e)

	return e
}

func (s *KVStorePublicTestSuite) insertChain(
	orgID string,
	n int,
) []audit.Entry {
	entries := make([]audit.Entry, 0, n)
	prev := audit.GenesisHash
	for i := 0; i < n; i++ {
		e := chainEntry(orgID, uint64(i), prev)
		s.Require().NoError(s.store.Insert(s.ctx, e))
		entries = append(entries, e)
		prev = e.Hash
	}

	return entries
}

func (s *KVStorePublicTestSuite) TestInsert() {
	tests := []struct {
		name     string
		setup    func() audit.Entry
		validate func(error)
	}{
		{
			name: "inserts the first entry",
			setup: func() audit.Entry {
				return chainEntry("org-insert", 0, audit.GenesisHash)
			},
			validate: func(err error) {
				s.NoError(err)
			},
		},
		{
			name: "rejects an occupied chain index",
			setup: func() audit.Entry {
				e := chainEntry("org-conflict", 0, audit.GenesisHash)
				s.Require().NoError(s.store.Insert(s.ctx, e))
				e.ID = "another-id"
				return e
			},
			validate: func(err error) {
				s.ErrorIs(err, audit.ErrIndexConflict)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.store.Insert(s.ctx, tt.setup())
			tt.validate(err)
		})
	}
}

func (s *KVStorePublicTestSuite) TestGet() {
	entries := s.insertChain("org-get", 2)

	tests := []struct {
		name     string
		orgID    string
		index    uint64
		validate func(*audit.Entry, error)
	}{
		{
			name:  "returns the stored entry",
			orgID: "org-get",
			index: 1,
			validate: func(e *audit.Entry, err error) {
				s.Require().NoError(err)
				s.Equal(entries[1].ID, e.ID)
				s.Equal(entries[1].Hash, e.Hash)
				s.Equal(entries[0].Hash, e.PreviousHash)
				s.True(entries[1].CreatedAt.Equal(e.CreatedAt))
			},
		},
		{
			name:  "returns not found past the tip",
			orgID: "org-get",
			index: 2,
			validate: func(e *audit.Entry, err error) {
				s.ErrorIs(err, audit.ErrNotFound)
				s.Nil(e)
			},
		},
		{
			name:  "returns not found for another organization",
			orgID: "org-other",
			index: 0,
			validate: func(e *audit.Entry, err error) {
				s.ErrorIs(err, audit.ErrNotFound)
				s.Nil(e)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			e, err := s.store.Get(s.ctx, tt.orgID, tt.index)
			tt.validate(e, err)
		})
	}
}

func (s *KVStorePublicTestSuite) TestHead() {
	entries := s.insertChain("org-head", 3)

	tests := []struct {
		name     string
		orgID    string
		validate func(*audit.Head, error)
	}{
		{
			name:  "returns the tip of the chain",
			orgID: "org-head",
			validate: func(h *audit.Head, err error) {
				s.Require().NoError(err)
				s.Require().NotNil(h)
				s.Equal(uint64(2), h.ChainIndex)
				s.Equal(entries[2].Hash, h.Hash)
				s.Equal(uint64(3), h.Len())
			},
		},
		{
			name:  "returns nil for an empty chain",
			orgID: "org-empty",
			validate: func(h *audit.Head, err error) {
				s.NoError(err)
				s.Nil(h)
				s.Equal(uint64(0), h.Len())
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			h, err := s.store.Head(s.ctx, tt.orgID)
			tt.validate(h, err)
		})
	}
}

func (s *KVStorePublicTestSuite) TestGetByID() {
	entries := s.insertChain("org-byid", 2)

	tests := []struct {
		name     string
		id       string
		validate func(*audit.Entry, error)
	}{
		{
			name: "returns the entry",
			id:   entries[1].ID,
			validate: func(e *audit.Entry, err error) {
				s.Require().NoError(err)
				s.Equal("org-byid", e.OrganizationID)
				s.Equal(uint64(1), e.ChainIndex)
			},
		},
		{
			name: "returns not found for an unknown id",
			id:   "does-not-exist",
			validate: func(e *audit.Entry, err error) {
				s.ErrorIs(err, audit.ErrNotFound)
				s.Nil(e)
			},
		},
		{
			name: "returns not found for an id with key wildcards",
			id:   "entry.*",
			validate: func(e *audit.Entry, err error) {
				s.ErrorIs(err, audit.ErrNotFound)
				s.Nil(e)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			e, err := s.store.GetByID(s.ctx, tt.id)
			tt.validate(e, err)
		})
	}
}

func (s *KVStorePublicTestSuite) TestScan() {
	s.insertChain("org-scan", 4)

	tests := []struct {
		name       string
		bound      uint64
		descending bool
		stopAfter  int
		want       []uint64
	}{
		{
			name:  "walks ascending",
			bound: 4,
			want:  []uint64{0, 1, 2, 3},
		},
		{
			name:       "walks descending",
			bound:      4,
			descending: true,
			want:       []uint64{3, 2, 1, 0},
		},
		{
			name:  "honours the bound",
			bound: 2,
			want:  []uint64{0, 1},
		},
		{
			name:      "stops when the callback fails",
			bound:     4,
			stopAfter: 2,
			want:      []uint64{0, 1},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got := []uint64{}
			err := s.store.Scan(
				s.ctx,
				"org-scan",
				tt.bound,
				tt.descending,
				func(e audit.Entry) error {
					got = append(got, e.ChainIndex)
					if tt.stopAfter > 0 && len(got) == tt.stopAfter {
						return context.Canceled
					}
					return nil
				},
			)
			if tt.stopAfter > 0 {
				s.ErrorIs(err, context.Canceled)
			} else {
				s.NoError(err)
			}
			s.Equal(tt.want, got)
		})
	}
}

func (s *KVStorePublicTestSuite) TestOrganizations() {
	orgs, err := s.store.Organizations(s.ctx)
	s.Require().NoError(err)
	s.Empty(orgs)

	s.insertChain("org-a", 1)
	s.insertChain("tenant/with spaces", 2)

	orgs, err = s.store.Organizations(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"org-a", "tenant/with spaces"}, orgs)
}

func (s *KVStorePublicTestSuite) TestIdempotencyClaims() {
	claimedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := audit.IdempotencyClaim{EntryID: "entry-1", ClaimedAt: claimedAt}
	second := audit.IdempotencyClaim{EntryID: "entry-2", ClaimedAt: claimedAt.Add(time.Second)}

	ours, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", first)
	s.Require().NoError(err)
	s.Equal("entry-1", ours.EntryID)
	s.NotZero(ours.Revision)

	held, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", second)
	s.ErrorIs(err, audit.ErrIdempotencyKeyClaimed)
	s.Require().NotNil(held)
	s.Equal("entry-1", held.EntryID)
	s.True(claimedAt.Equal(held.ClaimedAt))
	s.Equal(ours.Revision, held.Revision)

	other, err := s.store.ClaimIdempotencyKey(s.ctx, "org-other", "req-1", second)
	s.Require().NoError(err)
	s.Equal("entry-2", other.EntryID)
}

func (s *KVStorePublicTestSuite) TestReplaceIdempotencyClaim() {
	claimedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := audit.IdempotencyClaim{EntryID: "entry-1", ClaimedAt: claimedAt}
	second := audit.IdempotencyClaim{EntryID: "entry-2", ClaimedAt: claimedAt.Add(time.Minute)}
	third := audit.IdempotencyClaim{EntryID: "entry-3", ClaimedAt: claimedAt.Add(time.Hour)}

	held, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", first)
	s.Require().NoError(err)

	taken, err := s.store.ReplaceIdempotencyClaim(s.ctx, "org-idem", "req-1", *held, second)
	s.Require().NoError(err)
	s.Equal("entry-2", taken.EntryID)
	s.Greater(taken.Revision, held.Revision)

	// A second takeover from the same stale read loses.
	_, err = s.store.ReplaceIdempotencyClaim(s.ctx, "org-idem", "req-1", *held, third)
	s.ErrorIs(err, audit.ErrIdempotencyKeyClaimed)

	current, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", third)
	s.ErrorIs(err, audit.ErrIdempotencyKeyClaimed)
	s.Require().NotNil(current)
	s.Equal("entry-2", current.EntryID)
}

func (s *KVStorePublicTestSuite) TestReleaseIdempotencyKey() {
	claimedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := audit.IdempotencyClaim{EntryID: "entry-1", ClaimedAt: claimedAt}
	second := audit.IdempotencyClaim{EntryID: "entry-2", ClaimedAt: claimedAt}

	held, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", first)
	s.Require().NoError(err)
	s.Require().NoError(s.store.ReleaseIdempotencyKey(s.ctx, "org-idem", "req-1", *held))

	ours, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", second)
	s.Require().NoError(err)
	s.Equal("entry-2", ours.EntryID)

	// Releasing an outdated claim leaves the current holder in place.
	s.Require().NoError(s.store.ReleaseIdempotencyKey(s.ctx, "org-idem", "req-1", *held))

	current, err := s.store.ClaimIdempotencyKey(s.ctx, "org-idem", "req-1", first)
	s.ErrorIs(err, audit.ErrIdempotencyKeyClaimed)
	s.Require().NotNil(current)
	s.Equal("entry-2", current.EntryID)
}

func TestKVStorePublicTestSuite(t *testing.T) {
	suite.Run(t, new(KVStorePublicTestSuite))
}
