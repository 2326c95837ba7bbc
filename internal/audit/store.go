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
	"time"
)

// IdempotencyClaim records which entry an idempotency key belongs to. A
// claim is taken before the entry is linked, so its entry may not exist yet.
type IdempotencyClaim struct {
	EntryID   string    `json:"entry_id"`
	ClaimedAt time.Time `json:"claimed_at"`
	// Revision is the store revision the claim was read or written at.
	Revision uint64 `json:"-"`
}

// Store persists audit chains. Implementations must make Insert atomic and
// reject an already occupied (organization, chain index) pair with
// ErrIndexConflict.
type Store interface {
	// Head returns the tip of the organization's chain, or nil when the
	// chain is empty.
	Head(ctx context.Context, orgID string) (*Head, error)
	// Insert persists a fully formed entry at its chain index.
	Insert(ctx context.Context, entry Entry) error
	// Get returns the entry at index. Missing entries return ErrNotFound and
	// undecodable ones ErrCorruptEntry.
	Get(ctx context.Context, orgID string, index uint64) (*Entry, error)
	// GetByID returns the entry with the given id.
	GetByID(ctx context.Context, id string) (*Entry, error)
	// Scan calls fn for every readable entry with an index below bound, in
	// ascending or descending index order. An error from fn stops the scan
	// and is returned.
	Scan(
		ctx context.Context,
		orgID string,
		bound uint64,
		descending bool,
		fn func(Entry) error,
	) error
	// Organizations lists every organization with a chain.
	Organizations(ctx context.Context) ([]string, error)
	// ClaimIdempotencyKey atomically binds key to claim. When another claim
	// already holds the key it returns ErrIdempotencyKeyClaimed together with
	// the holder, which may be nil if the holder vanished meanwhile.
	ClaimIdempotencyKey(
		ctx context.Context,
		orgID string,
		key string,
		claim IdempotencyClaim,
	) (*IdempotencyClaim, error)
	// ReplaceIdempotencyClaim swaps held for claim if held is still current,
	// or returns ErrIdempotencyKeyClaimed.
	ReplaceIdempotencyClaim(
		ctx context.Context,
		orgID string,
		key string,
		held IdempotencyClaim,
		claim IdempotencyClaim,
	) (*IdempotencyClaim, error)
	// ReleaseIdempotencyKey drops claim if it still holds the key.
	ReleaseIdempotencyKey(
		ctx context.Context,
		orgID string,
		key string,
		claim IdempotencyClaim,
	) error
}
