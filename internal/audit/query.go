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
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Page size bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// SortField names a sortable entry field.
type SortField string

// Sortable fields.
const (
	SortCreatedAt  SortField = "created_at"
	SortChainIndex SortField = "chain_index"
	SortSeverity   SortField = "severity"
	SortCategory   SortField = "category"
	SortAction     SortField = "action"
	SortEventType  SortField = "event_type"
	SortActorType  SortField = "actor_type"
	SortTargetType SortField = "target_type"
)

// SortFields lists every sortable field.
var SortFields = []SortField{
	SortCreatedAt,
	SortChainIndex,
	SortSeverity,
	SortCategory,
	SortAction,
	SortEventType,
	SortActorType,
	SortTargetType,
}

// Valid reports whether f is sortable.
func (f SortField) Valid() bool {
	return slices.Contains(SortFields, f)
}

// chainOrdered reports whether sorting by f equals chain order. created_at
// never decreases along the chain, so ties resolved by chain index make
// it identical to chain order.
func (f SortField) chainOrdered() bool {
	return f == SortCreatedAt || f == SortChainIndex
}

// SortOrder is the sort direction.
type SortOrder string

// Sort directions.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filter selects entries. Zero fields match everything; set fields are
// combined with AND.
type Filter struct {
	// From and To bound created_at, both inclusive.
	From       *time.Time
	To         *time.Time
	Category   Category
	Action     Action
	Severity   Severity
	ActorType  ActorType
	ActorID    string
	TargetType string
	TargetID   string
	EventType  string
	// Search is a case-insensitive substring matched against summary,
	// description and event type.
	Search string
}

// Validate rejects enum filters that could never match and inverted
// ranges.
func (f Filter) Validate() error {
	switch {
	case f.Category != "" && !f.Category.Valid():
		return &ValidationError{Message: fmt.Sprintf("category %q is not a known category", f.Category)}
	case f.Severity != "" && !f.Severity.Valid():
		return &ValidationError{Message: fmt.Sprintf("severity %q is not one of low, medium, high, critical", f.Severity)}
	case f.ActorType != "" && !f.ActorType.Valid():
		return &ValidationError{Message: fmt.Sprintf("actor_type %q is not a known actor type", f.ActorType)}
	case f.From != nil && f.To != nil && f.From.After(*f.To):
		return &ValidationError{Message: "from must not be after to"}
	}

	return nil
}

// Match reports whether e satisfies every set criterion.
func (f Filter) Match(
	e Entry,
) bool {
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}

	switch {
	case f.Category != "" && e.Category != f.Category,
		f.Action != "" && e.Action != f.Action,
		f.Severity != "" && e.Severity != f.Severity,
		f.ActorType != "" && e.ActorType != f.ActorType,
		f.ActorID != "" && e.ActorID != f.ActorID,
		f.TargetType != "" && e.TargetType != f.TargetType,
		f.TargetID != "" && e.TargetID != f.TargetID,
		f.EventType != "" && e.EventType != f.EventType:
		return false
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		return strings.Contains(strings.ToLower(e.Summary), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle) ||
			strings.Contains(strings.ToLower(e.EventType), needle)
	}

	return true
}

// Page selects a window of the sorted result.
type Page struct {
	// Limit is the page size; zero means DefaultLimit.
	Limit int
	// Offset is the number of matches skipped.
	Offset int
	// SortBy defaults to created_at.
	SortBy SortField
	// Order defaults to descending.
	Order SortOrder
}

// Normalize fills defaults and rejects out of range values.
func (p Page) Normalize() (Page, error) {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = SortCreatedAt
	}
	if p.Order == "" {
		p.Order = OrderDesc
	}

	switch {
	case p.Limit < 1 || p.Limit > MaxLimit:
		return p, &ValidationError{Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit)}
	case p.Offset < 0:
		return p, &ValidationError{Message: "offset must not be negative"}
	case !p.SortBy.Valid():
		return p, &ValidationError{Message: fmt.Sprintf("sort_by %q is not sortable", p.SortBy)}
	case p.Order != OrderAsc && p.Order != OrderDesc:
		return p, &ValidationError{Message: fmt.Sprintf("order %q must be asc or desc", p.Order)}
	}

	return p, nil
}

// QueryResult is one page of matches.
type QueryResult struct {
	Entries []Entry `json:"entries"`
	// Total counts every match regardless of the page window.
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Engine answers filtered, sorted and paginated reads over organization
// chains. It never writes.
type Engine struct {
	store  Store
	logger *slog.Logger
}

// NewEngine creates a new Engine.
func NewEngine(
	logger *slog.Logger,
	store Store,
) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// Query returns the page of orgID's entries selected by filter and page,
// plus the total number of matches.
func (q *Engine) Query(
	ctx context.Context,
	orgID string,
	filter Filter,
	page Page,
) (*QueryResult, error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Entries: []Entry{},
		Limit:   page.Limit,
		Offset:  page.Offset,
	}

	end := page.Offset + page.Limit
	err = q.Stream(ctx, orgID, filter, page.SortBy, page.Order, func(e Entry) error {
		if result.Total >= page.Offset && result.Total < end {
			result.Entries = append(result.Entries, e)
		}
		result.Total++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Stream calls fn for every match in sort order. Chain-ordered sorts are
// streamed straight from the store; other sorts gather the matches first.
func (q *Engine) Stream(
	ctx context.Context,
	orgID string,
	filter Filter,
	sortBy SortField,
	order SortOrder,
	fn func(Entry) error,
) error {
	page, err := Page{SortBy: sortBy, Order: order}.Normalize()
	if err != nil {
		return err
	}

	if err := filter.Validate(); err != nil {
		return err
	}

	head, err := q.store.Head(ctx, orgID)
	if err != nil {
		return fmt.Errorf("read chain head: %w", err)
	}

	descending := page.Order == OrderDesc

	if page.SortBy.chainOrdered() {
		return q.store.Scan(ctx, orgID, head.Len(), descending, func(e Entry) error {
			if !filter.Match(e) {
				return nil
			}
			return fn(e)
		})
	}

	matches := []Entry{}
	err = q.store.Scan(ctx, orgID, head.Len(), false, func(e Entry) error {
		if filter.Match(e) {
			matches = append(matches, e)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slices.SortStableFunc(matches, func(a, b Entry) int {
		c := compareBy(page.SortBy, a, b)
		if c == 0 {
			c = cmp.Compare(a.ChainIndex, b.ChainIndex)
		}
		if descending {
			return -c
		}
		return c
	})

	for _, e := range matches {
		if err := fn(e); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the entry id of orgID. Entries of other organizations are
// reported as not found.
func (q *Engine) Get(
	ctx context.Context,
	orgID string,
	id string,
) (*Entry, error) {
	entry, err := q.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.OrganizationID != orgID {
		return nil, fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}

	return entry, nil
}

func compareBy(
	field SortField,
	a Entry,
	b Entry,
) int {
	switch field {
	case SortSeverity:
		return cmp.Compare(a.Severity.Rank(), b.Severity.Rank())
	case SortCategory:
		return cmp.Compare(a.Category, b.Category)
	case SortAction:
		return cmp.Compare(a.Action, b.Action)
	case SortEventType:
		return cmp.Compare(a.EventType, b.EventType)
	case SortActorType:
		return cmp.Compare(a.ActorType, b.ActorType)
	case SortTargetType:
		return cmp.Compare(a.TargetType, b.TargetType)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.ChainIndex, b.ChainIndex)
	}
}
