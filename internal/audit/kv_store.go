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
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// Key prefixes within the audit bucket.
const (
	entryPrefix = "entry."
	headPrefix  = "head."
	idPrefix    = "id."
	idemPrefix  = "idem."
)

var (
	marshalJSON   = json.Marshal
	unmarshalJSON = json.Unmarshal
)

// ensure KVStore implements Store at compile time.
var _ Store = (*KVStore)(nil)

// KVStore implements Store backed by a NATS JetStream KeyValue bucket.
// Entries live under entry.<org>.<index>; KV Create gives the atomic
// "insert next index" primitive. The head record is a hint advanced with a
// revision compare-and-swap; readers probe forward past it.
type KVStore struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewKVStore creates a new KVStore.
func NewKVStore(
	logger *slog.Logger,
	kv jetstream.KeyValue,
) *KVStore {
	return &KVStore{
		kv:     kv,
		logger: logger,
	}
}

// headRecord is the persisted head hint.
type headRecord struct {
	Head
}

// idRecord locates an entry by id.
type idRecord struct {
	OrganizationID string `json:"organization_id"`
	ChainIndex     uint64 `json:"chain_index"`
}

// Head returns the tip of the organization's chain.
func (s *KVStore) Head(
	ctx context.Context,
	orgID string,
) (*Head, error) {
	head, _, err := s.readHead(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// The hint may lag behind entries whose writer stopped before
	// advancing it.
	next := head.Len()
	for {
		e, err := s.Get(ctx, orgID, next)
		if errors.Is(err, ErrNotFound) {
			return head, nil
		}
		if err != nil {
			return nil, fmt.Errorf("probe chain index %d: %w", next, err)
		}

		head = &Head{
			ChainIndex: next,
			Hash:       e.Hash,
			CreatedAt:  e.CreatedAt,
		}
		next++
	}
}

// Insert persists entry at its chain index.
func (s *KVStore) Insert(
	ctx context.Context,
	entry Entry,
) error {
	data, err := marshalJSON(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	key := entryKey(entry.OrganizationID, entry.ChainIndex)
	if _, err := s.kv.Create(ctx, key, data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return fmt.Errorf("insert chain index %d: %w", entry.ChainIndex, ErrIndexConflict)
		}
		return fmt.Errorf("create audit entry: %w: %w", ErrStoreUnavailable, err)
	}

	s.recordID(ctx, entry)
	s.advanceHead(ctx, entry)

	return nil
}

// Get returns the entry at index.
func (s *KVStore) Get(
	ctx context.Context,
	orgID string,
	index uint64,
) (*Entry, error) {
	kve, err := s.kv.Get(ctx, entryKey(orgID, index))
	if err != nil {
		return nil, s.translateGetError(err, "get audit entry")
	}

	var entry Entry
	if err := unmarshalJSON(kve.Value(), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal audit entry %d: %w: %w", index, ErrCorruptEntry, err)
	}

	return &entry, nil
}

// GetByID returns the entry with the given id.
func (s *KVStore) GetByID(
	ctx context.Context,
	id string,
) (*Entry, error) {
	if id == "" || strings.ContainsAny(id, ".*> ") {
		return nil, ErrNotFound
	}

	kve, err := s.kv.Get(ctx, idPrefix+id)
	if err != nil {
		return nil, s.translateGetError(err, "get audit id record")
	}

	var ref idRecord
	if err := unmarshalJSON(kve.Value(), &ref); err != nil {
		return nil, fmt.Errorf("unmarshal audit id record: %w: %w", ErrCorruptEntry, err)
	}

	entry, err := s.Get(ctx, ref.OrganizationID, ref.ChainIndex)
	if err != nil {
		return nil, err
	}

	if entry.ID != id {
		return nil, fmt.Errorf("id record points at entry %q: %w", entry.ID, ErrNotFound)
	}

	return entry, nil
}

// Scan calls fn for every readable entry below bound. Missing or
// undecodable entries are skipped with a warning.
func (s *KVStore) Scan(
	ctx context.Context,
	orgID string,
	bound uint64,
	descending bool,
	fn func(Entry) error,
) error {
	for n := uint64(0); n < bound; n++ {
		index := n
		if descending {
			index = bound - 1 - n
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := s.Get(ctx, orgID, index)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptEntry) {
				s.logger.Warn(
					"skipping unreadable audit entry",
					slog.String("organization_id", orgID),
					slog.Uint64("chain_index", index),
					slog.String("error", err.Error()),
				)
				continue
			}
			return err
		}

		if err := fn(*entry); err != nil {
			return err
		}
	}

	return nil
}

// Organizations lists every organization with a chain.
func (s *KVStore) Organizations(
	ctx context.Context,
) ([]string, error) {
	lister, err := s.kv.ListKeysFiltered(ctx, headPrefix+">")
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list audit heads: %w: %w", ErrStoreUnavailable, err)
	}
	defer func() { _ = lister.Stop() }()

	orgs := []string{}
	for key := range lister.Keys() {
		orgID, err := decodeOrg(strings.TrimPrefix(key, headPrefix))
		if err != nil {
			s.logger.Warn(
				"skipping undecodable head key",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		orgs = append(orgs, orgID)
	}

	return orgs, nil
}

// ClaimIdempotencyKey binds key to claim with KV Create, so exactly one
// writer across all processes wins a key. A released key can be claimed
// again.
func (s *KVStore) ClaimIdempotencyKey(
	ctx context.Context,
	orgID string,
	key string,
	claim IdempotencyClaim,
) (*IdempotencyClaim, error) {
	data, err := marshalJSON(claim)
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency claim: %w", err)
	}

	k := idempotencyKey(orgID, key)
	revision, err := s.kv.Create(ctx, k, data)
	if err == nil {
		claim.Revision = revision
		return &claim, nil
	}

	if !errors.Is(err, jetstream.ErrKeyExists) {
		return nil, fmt.Errorf("claim idempotency key: %w: %w", ErrStoreUnavailable, err)
	}

	held, err := s.readClaim(ctx, k)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrIdempotencyKeyClaimed
	}
	if err != nil {
		return nil, err
	}

	return held, ErrIdempotencyKeyClaimed
}

// ReplaceIdempotencyClaim takes over held with a revision compare-and-swap.
func (s *KVStore) ReplaceIdempotencyClaim(
	ctx context.Context,
	orgID string,
	key string,
	held IdempotencyClaim,
	claim IdempotencyClaim,
) (*IdempotencyClaim, error) {
	data, err := marshalJSON(claim)
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency claim: %w", err)
	}

	revision, err := s.kv.Update(ctx, idempotencyKey(orgID, key), data, held.Revision)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, ErrIdempotencyKeyClaimed
		}
		return nil, fmt.Errorf("replace idempotency claim: %w: %w", ErrStoreUnavailable, err)
	}

	claim.Revision = revision

	return &claim, nil
}

// ReleaseIdempotencyKey deletes the key if claim is still its latest
// revision. A key already taken over is left alone.
func (s *KVStore) ReleaseIdempotencyKey(
	ctx context.Context,
	orgID string,
	key string,
	claim IdempotencyClaim,
) error {
	err := s.kv.Delete(ctx, idempotencyKey(orgID, key), jetstream.LastRevision(claim.Revision))
	if err != nil && !errors.Is(err, jetstream.ErrKeyExists) {
		return fmt.Errorf("release idempotency key: %w: %w", ErrStoreUnavailable, err)
	}

	return nil
}

func (s *KVStore) readClaim(
	ctx context.Context,
	key string,
) (*IdempotencyClaim, error) {
	kve, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, s.translateGetError(err, "get idempotency claim")
	}

	var claim IdempotencyClaim
	if err := unmarshalJSON(kve.Value(), &claim); err != nil {
		return nil, fmt.Errorf("unmarshal idempotency claim: %w: %w", ErrCorruptEntry, err)
	}
	claim.Revision = kve.Revision()

	return &claim, nil
}

func (s *KVStore) readHead(
	ctx context.Context,
	orgID string,
) (*Head, uint64, error) {
	kve, err := s.kv.Get(ctx, headKey(orgID))
	if err != nil {
		err = s.translateGetError(err, "get audit head")
		if errors.Is(err, ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var rec headRecord
	if err := unmarshalJSON(kve.Value(), &rec); err != nil {
		// The entries are authoritative; probe from genesis.
		s.logger.Warn(
			"ignoring undecodable audit head",
			slog.String("organization_id", orgID),
			slog.String("error", err.Error()),
		)
		return nil, kve.Revision(), nil
	}

	return &rec.Head, kve.Revision(), nil
}

// advanceHead moves the head hint forward to entry. Losing the race to
// another writer is fine: the hint only ever moves forward and readers
// probe past it.
func (s *KVStore) advanceHead(
	ctx context.Context,
	entry Entry,
) {
	current, revision, err := s.readHead(ctx, entry.OrganizationID)
	if err != nil {
		s.logger.Warn(
			"failed to read audit head",
			slog.String("organization_id", entry.OrganizationID),
			slog.String("error", err.Error()),
		)
		return
	}

	if current != nil && current.ChainIndex >= entry.ChainIndex {
		return
	}

	data, err := marshalJSON(headRecord{Head: Head{
		ChainIndex: entry.ChainIndex,
		Hash:       entry.Hash,
		CreatedAt:  entry.CreatedAt,
	}})
	if err != nil {
		s.logger.Warn("failed to marshal audit head", slog.String("error", err.Error()))
		return
	}

	key := headKey(entry.OrganizationID)
	if revision == 0 {
		_, err = s.kv.Create(ctx, key, data)
	} else {
		_, err = s.kv.Update(ctx, key, data, revision)
	}

	if err != nil {
		s.logger.Debug(
			"audit head not advanced",
			slog.String("organization_id", entry.OrganizationID),
			slog.Uint64("chain_index", entry.ChainIndex),
			slog.String("error", err.Error()),
		)
	}
}

func (s *KVStore) recordID(
	ctx context.Context,
	entry Entry,
) {
	data, err := marshalJSON(idRecord{
		OrganizationID: entry.OrganizationID,
		ChainIndex:     entry.ChainIndex,
	})
	if err == nil {
		_, err = s.kv.Put(ctx, idPrefix+entry.ID, data)
	}

	if err != nil {
		s.logger.Warn(
			"failed to record audit entry id",
			slog.String("entry_id", entry.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *KVStore) translateGetError(
	err error,
	op string,
) error {
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// encodeOrg maps an organization id onto the KV key alphabet.
func encodeOrg(
	orgID string,
) string {
	return base64.RawURLEncoding.EncodeToString([]byte(orgID))
}

func decodeOrg(
	encoded string,
) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func entryKey(
	orgID string,
	index uint64,
) string {
	return fmt.Sprintf("%s%s.%020d", entryPrefix, encodeOrg(orgID), index)
}

func headKey(
	orgID string,
) string {
	return headPrefix + encodeOrg(orgID)
}

func idempotencyKey(
	orgID string,
	key string,
) string {
	sum := sha256.Sum256([]byte(key))
	return idemPrefix + encodeOrg(orgID) + "." + hex.EncodeToString(sum[:])
}
