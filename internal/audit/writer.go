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
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRetries is how many times the writer retries after losing the
// race for a chain index.
const DefaultMaxRetries = 5

// DefaultClaimTimeout is how long an idempotency claim whose entry never
// appeared is honored before another writer may take it over.
const DefaultClaimTimeout = time.Minute

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithClock overrides the time source used to stamp entries.
func WithClock(
	now func() time.Time,
) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// WithIDGenerator overrides how entry ids are generated.
func WithIDGenerator(
	newID func() string,
) WriterOption {
	return func(w *Writer) {
		w.newID = newID
	}
}

// WithMaxRetries sets how many index conflicts an append tolerates before
// failing with ErrAppendConflict.
func WithMaxRetries(
	n uint64,
) WriterOption {
	return func(w *Writer) {
		w.maxRetries = n
	}
}

// WithBackOff overrides the delay policy between conflict retries.
func WithBackOff(
	newBackOff func() backoff.BackOff,
) WriterOption {
	return func(w *Writer) {
		w.newBackOff = newBackOff
	}
}

// WithClaimTimeout sets how long an idempotency claim without an entry
// blocks other appends using the same key.
func WithClaimTimeout(
	d time.Duration,
) WriterOption {
	return func(w *Writer) {
		w.claimTimeout = d
	}
}

// Writer appends events to per-organization hash chains. Appends for one
// organization are serialized within the process; the store's atomic
// insert and idempotency claims keep several processes consistent.
type Writer struct {
	store        Store
	logger       *slog.Logger
	locks        *tenantLocks
	now          func() time.Time
	newID        func() string
	maxRetries   uint64
	newBackOff   func() backoff.BackOff
	claimTimeout time.Duration
	tracer       trace.Tracer
	metrics      *instruments
}

// NewWriter creates a new Writer.
func NewWriter(
	logger *slog.Logger,
	store Store,
	opts ...WriterOption,
) *Writer {
	w := &Writer{
		store:        store,
		logger:       logger,
		locks:        newTenantLocks(),
		now:          time.Now,
		newID:        uuid.NewString,
		maxRetries:   DefaultMaxRetries,
		newBackOff:   defaultBackOff,
		claimTimeout: DefaultClaimTimeout,
		tracer:       otel.Tracer(instrumentationName),
		metrics:      newInstruments(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	return b
}

// Append validates ev, links it to the organization's chain head and
// persists it. The returned entry carries the assigned id, chain index,
// timestamp and hashes. On error nothing is persisted.
func (w *Writer) Append(
	ctx context.Context,
	orgID string,
	ev Event,
) (*Entry, error) {
	ctx, span := w.tracer.Start(
		ctx,
		"audit.Append",
		trace.WithAttributes(
			attribute.String("audit.organization_id", orgID),
			attribute.String("audit.event_type", ev.EventType),
		),
	)
	defer span.End()

	start := time.Now()
	entry, err := w.append(ctx, orgID, ev)
	w.metrics.recordAppend(ctx, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("audit.chain_index", int64(entry.ChainIndex)))

	return entry, nil
}

func (w *Writer) append(
	ctx context.Context,
	orgID string,
	ev Event,
) (*Entry, error) {
	if !validOrganizationID(orgID) {
		return nil, &ValidationError{Message: "organization_id must be non-empty UTF-8 of at most 255 bytes"}
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}

	unlock, err := w.locks.acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	id := w.newID()

	var claim *IdempotencyClaim
	if ev.IdempotencyKey != "" {
		replayed, held, err := w.claim(ctx, orgID, ev.IdempotencyKey, id)
		if replayed != nil || err != nil {
			return replayed, err
		}
		claim = held
	}

	entry, err := w.linkWithRetry(ctx, orgID, id, ev)
	if err != nil {
		if claim != nil {
			w.release(ctx, orgID, ev.IdempotencyKey, *claim)
		}
		return nil, err
	}

	w.logger.Debug(
		"appended audit entry",
		slog.String("organization_id", orgID),
		slog.String("entry_id", entry.ID),
		slog.Uint64("chain_index", entry.ChainIndex),
		slog.String("event_type", entry.EventType),
	)

	return entry, nil
}

// linkWithRetry links ev under id, retrying lost races for the next chain
// index. Every attempt reuses id so a claim made for it stays valid.
func (w *Writer) linkWithRetry(
	ctx context.Context,
	orgID string,
	id string,
	ev Event,
) (*Entry, error) {
	var (
		entry    *Entry
		attempts int
	)

	op := func() error {
		attempts++

		e, err := w.link(ctx, orgID, id, ev)
		if err == nil {
			entry = e
			return nil
		}

		if errors.Is(err, ErrIndexConflict) {
			w.metrics.conflicts.Add(ctx, 1)
			w.logger.Debug(
				"lost race for chain index",
				slog.String("organization_id", orgID),
				slog.Int("attempt", attempts),
			)
			return err
		}

		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, w.retryPolicy(ctx)); err != nil {
		if errors.Is(err, ErrIndexConflict) {
			return nil, fmt.Errorf(
				"organization %q after %d attempts: %w",
				orgID,
				attempts,
				ErrAppendConflict,
			)
		}
		return nil, err
	}

	return entry, nil
}

func (w *Writer) retryPolicy(
	ctx context.Context,
) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(w.newBackOff(), w.maxRetries),
		ctx,
	)
}

// claim binds key to entryID before anything is linked. It returns the
// entry a previous append produced under key, or the claim now held by this
// writer. A claim whose entry has not shown up within the claim timeout is
// taken over; a fresher one is waited on with the retry policy.
func (w *Writer) claim(
	ctx context.Context,
	orgID string,
	key string,
	entryID string,
) (*Entry, *IdempotencyClaim, error) {
	var (
		replayed *Entry
		ours     *IdempotencyClaim
		attempts int
	)

	op := func() error {
		attempts++
		want := IdempotencyClaim{EntryID: entryID, ClaimedAt: w.now().UTC()}

		held, err := w.store.ClaimIdempotencyKey(ctx, orgID, key, want)
		if err == nil {
			ours = held
			return nil
		}
		if !errors.Is(err, ErrIdempotencyKeyClaimed) {
			return backoff.Permanent(fmt.Errorf("claim idempotency key: %w", err))
		}
		if held == nil {
			return err
		}

		entry, err := w.store.GetByID(ctx, held.EntryID)
		if err == nil {
			replayed = entry
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return backoff.Permanent(fmt.Errorf("load entry for idempotency key: %w", err))
		}

		if w.now().Sub(held.ClaimedAt) < w.claimTimeout {
			w.logger.Debug(
				"idempotency key held by in-flight append",
				slog.String("organization_id", orgID),
				slog.String("entry_id", held.EntryID),
				slog.Int("attempt", attempts),
			)
			return ErrIdempotencyKeyClaimed
		}

		taken, err := w.store.ReplaceIdempotencyClaim(ctx, orgID, key, *held, want)
		if err != nil {
			if errors.Is(err, ErrIdempotencyKeyClaimed) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("take over idempotency claim: %w", err))
		}

		w.logger.Warn(
			"took over stale idempotency claim",
			slog.String("organization_id", orgID),
			slog.String("stale_entry_id", held.EntryID),
		)
		ours = taken

		return nil
	}

	if err := backoff.Retry(op, w.retryPolicy(ctx)); err != nil {
		if errors.Is(err, ErrIdempotencyKeyClaimed) {
			return nil, nil, fmt.Errorf(
				"organization %q idempotency key still in flight after %d attempts: %w",
				orgID,
				attempts,
				ErrAppendConflict,
			)
		}
		return nil, nil, err
	}

	return replayed, ours, nil
}

// release frees a claim whose append failed so a retry can reuse the key.
// If this fails the claim expires after the claim timeout.
func (w *Writer) release(
	ctx context.Context,
	orgID string,
	key string,
	claim IdempotencyClaim,
) {
	ctx = context.WithoutCancel(ctx)
	if err := w.store.ReleaseIdempotencyKey(ctx, orgID, key, claim); err != nil {
		w.logger.Warn(
			"failed to release idempotency key",
			slog.String("organization_id", orgID),
			slog.String("entry_id", claim.EntryID),
			slog.String("error", err.Error()),
		)
	}
}

// link builds the next entry from the current head and inserts it.
func (w *Writer) link(
	ctx context.Context,
	orgID string,
	id string,
	ev Event,
) (*Entry, error) {
	head, err := w.store.Head(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("read chain head: %w", err)
	}

	entry := newEntry(ev)
	entry.ID = id
	entry.OrganizationID = orgID
	entry.PreviousHash = GenesisHash
	entry.CreatedAt = w.now().UTC().Round(0)

	if head != nil {
		entry.ChainIndex = head.ChainIndex + 1
		entry.PreviousHash = head.Hash
		if entry.CreatedAt.Before(head.CreatedAt) {
			entry.CreatedAt = head.CreatedAt.UTC()
		}
	}

	entry.Hash = EntryHash(entry)

	if err := w.store.Insert(ctx, entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func newEntry(
	ev Event,
) Entry {
	return Entry{
		EventType:      ev.EventType,
		Category:       ev.Category,
		Action:         ev.Action,
		Severity:       ev.Severity,
		ActorType:      ev.ActorType,
		ActorID:        ev.ActorID,
		ActorEmail:     ev.ActorEmail,
		ActorIPAddress: ev.ActorIPAddress,
		ActorUserAgent: ev.ActorUserAgent,
		TargetType:     ev.TargetType,
		TargetID:       ev.TargetID,
		TargetName:     ev.TargetName,
		Summary:        ev.Summary,
		Description:    ev.Description,
		BeforeState:    ev.BeforeState,
		AfterState:     ev.AfterState,
		Metadata:       ev.Metadata,
		RequestPath:    ev.RequestPath,
	}
}

// tenantLocks is a reference-counted set of per-organization locks.
// Entries are dropped once no caller holds or waits on them.
type tenantLocks struct {
	mu    sync.Mutex
	locks map[string]*tenantLock
}

type tenantLock struct {
	sem  chan struct{}
	refs int
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{locks: make(map[string]*tenantLock)}
}

// acquire blocks until the organization's lock is held or ctx is done.
func (t *tenantLocks) acquire(
	ctx context.Context,
	orgID string,
) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	l, ok := t.locks[orgID]
	if !ok {
		l = &tenantLock{sem: make(chan struct{}, 1)}
		t.locks[orgID] = l
	}
	l.refs++
	t.mu.Unlock()

	release := func() {
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, orgID)
		}
		t.mu.Unlock()
	}

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			release()
		}, nil
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}
}

// held reports how many organizations currently have a lock entry.
func (t *tenantLocks) held() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.locks)
}
