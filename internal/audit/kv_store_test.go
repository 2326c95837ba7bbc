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
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/messaging/natstest"
)

type KVStoreInternalTestSuite struct {
	suite.Suite

	ctx   context.Context
	kv    jetstream.KeyValue
	store *KVStore
}

func (s *KVStoreInternalTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.kv = natstest.NewKeyValue(s.T(), "audit-internal-test")
	s.store = NewKVStore(slog.Default(), s.kv)
}

func (s *KVStoreInternalTestSuite) TearDownTest() {
	marshalJSON = json.Marshal
}

func (s *KVStoreInternalTestSuite) rawEntry(
	orgID string,
	index uint64,
	previousHash string,
) Entry {
	e := Entry{
		ID:             fmt.Sprintf("%s-%d", orgID, index),
		OrganizationID: orgID,
		ChainIndex:     index,
		PreviousHash:   previousHash,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventType:      "case.update",
		Category:       CategoryCaseManagement,
		Action:         ActionUpdate,
		Severity:       SeverityMedium,
		ActorType:      ActorUser,
		Summary:        "case updated",
	}
	e.Hash = EntryHash(e)

	return e
}

// putRaw writes an entry without touching the head hint.
func (s *KVStoreInternalTestSuite) putRaw(
	e Entry,
) {
	data, err := json.Marshal(e)
	s.Require().NoError(err)
	_, err = s.kv.Put(s.ctx, entryKey(e.OrganizationID, e.ChainIndex), data)
	s.Require().NoError(err)
}

func (s *KVStoreInternalTestSuite) TestInsertMarshalError() {
	marshalJSON = func(_ interface{}) ([]byte, error) {
		return nil, fmt.Errorf("marshal failure")
	}

	err := s.store.Insert(s.ctx, Entry{ID: "test-id", OrganizationID: "org"})

	s.Error(err)
	s.Contains(err.Error(), "marshal audit entry")
}

func (s *KVStoreInternalTestSuite) TestHeadProbesPastLaggingHint() {
	first := s.rawEntry("org-lag", 0, GenesisHash)
	s.Require().NoError(s.store.Insert(s.ctx, first))

	second := s.rawEntry("org-lag", 1, first.Hash)
	s.putRaw(second)

	head, err := s.store.Head(s.ctx, "org-lag")
	s.Require().NoError(err)
	s.Equal(uint64(1), head.ChainIndex)
	s.Equal(second.Hash, head.Hash)
}

func (s *KVStoreInternalTestSuite) TestHeadIgnoresUndecodableHint() {
	first := s.rawEntry("org-badhead", 0, GenesisHash)
	s.putRaw(first)
	_, err := s.kv.Put(s.ctx, headKey("org-badhead"), []byte("not-json"))
	s.Require().NoError(err)

	head, err := s.store.Head(s.ctx, "org-badhead")
	s.Require().NoError(err)
	s.Equal(uint64(0), head.ChainIndex)
	s.Equal(first.Hash, head.Hash)
}

func (s *KVStoreInternalTestSuite) TestGetCorruptEntry() {
	_, err := s.kv.Put(s.ctx, entryKey("org-corrupt", 0), []byte("{not json"))
	s.Require().NoError(err)

	e, err := s.store.Get(s.ctx, "org-corrupt", 0)
	s.ErrorIs(err, ErrCorruptEntry)
	s.Nil(e)
}

func (s *KVStoreInternalTestSuite) TestScanSkipsUnreadableEntries() {
	prev := GenesisHash
	for i := uint64(0); i < 4; i++ {
		e := s.rawEntry("org-skip", i, prev)
		s.putRaw(e)
		prev = e.Hash
	}
	_, err := s.kv.Put(s.ctx, entryKey("org-skip", 1), []byte("garbage"))
	s.Require().NoError(err)
	s.Require().NoError(s.kv.Delete(s.ctx, entryKey("org-skip", 2)))

	got := []uint64{}
	err = s.store.Scan(s.ctx, "org-skip", 4, false, func(e Entry) error {
		got = append(got, e.ChainIndex)
		return nil
	})

	s.NoError(err)
	s.Equal([]uint64{0, 3}, got)
}

func (s *KVStoreInternalTestSuite) TestKeyLayout() {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "entry key pads the index",
			got:  entryKey("org", 7),
			want: "entry.b3Jn.00000000000000000007",
		},
		{
			name: "head key encodes the organization",
			got:  headKey("a.b"),
			want: "head.YS5i",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, tt.got)
		})
	}
}

func TestKVStoreInternalTestSuite(t *testing.T) {
	suite.Run(t, new(KVStoreInternalTestSuite))
}
