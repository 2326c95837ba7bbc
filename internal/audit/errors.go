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

import "errors"

var (
	// ErrInvalidEvent is returned when an event is missing a required field
	// or carries an invalid value. Nothing is persisted.
	ErrInvalidEvent = errors.New("invalid audit event")
	// ErrIndexConflict is returned by a Store when the chain index being
	// inserted is already occupied.
	ErrIndexConflict = errors.New("chain index already occupied")
	// ErrAppendConflict is returned by the Writer when every retry lost the
	// race for the next chain index.
	ErrAppendConflict = errors.New("append retries exhausted")
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("audit entry not found")
	// ErrCorruptEntry is returned when a persisted entry cannot be decoded.
	ErrCorruptEntry = errors.New("audit entry is corrupt")
	// ErrIdempotencyKeyClaimed is returned by a Store when an idempotency key
	// is already bound to another claim.
	ErrIdempotencyKeyClaimed = errors.New("idempotency key already claimed")
	// ErrStoreUnavailable wraps transport failures talking to the store.
	ErrStoreUnavailable = errors.New("audit store unavailable")
)

// ValidationError describes why an event was rejected.
type ValidationError struct {
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "invalid audit event: " + e.Message
}

// Unwrap lets errors.Is match ErrInvalidEvent.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidEvent
}
