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
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCheckpointCacheSize bounds how many organizations keep an
// incremental verification checkpoint.
const DefaultCheckpointCacheSize = 1024

// BreakReason names why verification stopped at an entry.
type BreakReason string

// Break reasons.
const (
	ReasonMissingEntry         BreakReason = "missing_entry"
	ReasonCorruptEntry         BreakReason = "corrupt_entry"
	ReasonIndexMismatch        BreakReason = "index_mismatch"
	ReasonOrganizationMismatch BreakReason = "organization_mismatch"
	ReasonPreviousHashMismatch BreakReason = "previous_hash_mismatch"
	ReasonHashMismatch         BreakReason = "hash_mismatch"
)

// VerifyResult reports the integrity of an organization's chain.
type VerifyResult struct {
	// IsValid is true when every entry links to its predecessor and its
	// stored hash matches the recomputed one.
	IsValid bool `json:"is_valid"`
	// TotalRecords is the chain length observed when verification began.
	TotalRecords uint64 `json:"total_records"`
	// BrokenAt is the first chain index that failed, if any.
	BrokenAt *uint64 `json:"broken_at,omitempty"`
	// Reason explains the failure at BrokenAt.
	Reason BreakReason `json:"reason,omitempty"`
	// VerifiedAt is when verification finished.
	VerifiedAt time.Time `json:"verified_at"`
}

// checkpoint is the last verified position of a valid chain.
type checkpoint struct {
	length uint64
	hash   string
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithCheckpointCacheSize bounds the incremental checkpoint cache.
func WithCheckpointCacheSize(
	size int,
) VerifierOption {
	return func(v *Verifier) {
		v.cacheSize = size
	}
}

// WithVerifierClock overrides the time source for VerifiedAt.
func WithVerifierClock(
	now func() time.Time,
) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// Verifier recomputes organization chains and reports the first break.
// It never modifies the chain.
type Verifier struct {
	store       Store
	logger      *slog.Logger
	now         func() time.Time
	cacheSize   int
	checkpoints *lru.Cache[string, checkpoint]
	tracer      trace.Tracer
	metrics     *instruments
}

// NewVerifier creates a new Verifier.
func NewVerifier(
	logger *slog.Logger,
	store Store,
	opts ...VerifierOption,
) (*Verifier, error) {
	v := &Verifier{
		store:     store,
		logger:    logger,
		now:       time.Now,
		cacheSize: DefaultCheckpointCacheSize,
		tracer:    otel.Tracer(instrumentationName),
		metrics:   newInstruments(),
	}

	for _, opt := range opts {
		opt(v)
	}

	cache, err := lru.New[string, checkpoint](v.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create checkpoint cache: %w", err)
	}
	v.checkpoints = cache

	return v, nil
}

// Verify walks the whole chain of orgID. Entries appended after the walk
// started are not examined. A broken chain is reported in the result; the
// error is reserved for store failures.
func (v *Verifier) Verify(
	ctx context.Context,
	orgID string,
) (*VerifyResult, error) {
	return v.verify(ctx, orgID, checkpoint{hash: GenesisHash}, "full")
}

// VerifyIncremental resumes from the last valid checkpoint of orgID and
// verifies only the entries appended since. The checkpoint is advanced on
// success and dropped when the chain is found broken.
func (v *Verifier) VerifyIncremental(
	ctx context.Context,
	orgID string,
) (*VerifyResult, error) {
	from, ok := v.checkpoints.Get(orgID)
	if !ok {
		from = checkpoint{hash: GenesisHash}
	}

	return v.verify(ctx, orgID, from, "incremental")
}

func (v *Verifier) verify(
	ctx context.Context,
	orgID string,
	from checkpoint,
	mode string,
) (*VerifyResult, error) {
	ctx, span := v.tracer.Start(
		ctx,
		"audit.Verify",
		trace.WithAttributes(
			attribute.String("audit.organization_id", orgID),
			attribute.String("audit.verify_mode", mode),
		),
	)
	defer span.End()

	head, err := v.store.Head(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("read chain head: %w", err)
	}
	bound := head.Len()

	// A chain can only shrink through tampering; restart from genesis so
	// the walk reports where it broke.
	if from.length > bound {
		from = checkpoint{hash: GenesisHash}
	}

	result := &VerifyResult{
		IsValid:      true,
		TotalRecords: bound,
	}

	expected := from.hash
	for index := from.length; index < bound; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := v.store.Get(ctx, orgID, index)
		var reason BreakReason
		switch {
		case errors.Is(err, ErrNotFound):
			reason = ReasonMissingEntry
		case errors.Is(err, ErrCorruptEntry):
			reason = ReasonCorruptEntry
		case err != nil:
			return nil, fmt.Errorf("read chain index %d: %w", index, err)
		default:
			reason = checkEntry(entry, orgID, index, expected)
		}

		if reason != "" {
			result.IsValid = false
			result.BrokenAt = &index
			result.Reason = reason
			break
		}

		expected = entry.Hash
	}

	result.VerifiedAt = v.now().UTC()

	if result.IsValid {
		v.checkpoints.Add(orgID, checkpoint{length: bound, hash: expected})
	} else {
		v.checkpoints.Remove(orgID)
		v.logger.Error(
			"audit chain integrity violation",
			slog.String("organization_id", orgID),
			slog.Uint64("broken_at", *result.BrokenAt),
			slog.String("reason", string(result.Reason)),
		)
	}

	v.metrics.recordVerify(ctx, result)
	span.SetAttributes(attribute.Bool("audit.valid", result.IsValid))

	return result, nil
}

// checkEntry returns why entry does not belong at index of orgID's chain,
// or "" when it does.
func checkEntry(
	entry *Entry,
	orgID string,
	index uint64,
	expectedPrevious string,
) BreakReason {
	switch {
	case entry.ChainIndex != index:
		return ReasonIndexMismatch
	case entry.OrganizationID != orgID:
		return ReasonOrganizationMismatch
	case entry.PreviousHash != expectedPrevious:
		return ReasonPreviousHashMismatch
	case EntryHash(*entry) != entry.Hash:
		return ReasonHashMismatch
	default:
		return ""
	}
}
