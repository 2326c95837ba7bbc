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

// Package monitor periodically verifies every organization's audit chain.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/retr0h/auditchain/internal/audit"
)

// Default schedules: incremental sweeps hourly, a full re-walk daily.
const (
	DefaultSchedule     = "@every 1h"
	DefaultFullSchedule = "@every 24h"
)

// Sweep modes.
const (
	ModeIncremental = "incremental"
	ModeFull        = "full"
)

// Verifier checks one organization's chain.
type Verifier interface {
	Verify(ctx context.Context, orgID string) (*audit.VerifyResult, error)
	VerifyIncremental(ctx context.Context, orgID string) (*audit.VerifyResult, error)
}

// Lister enumerates organizations that have a chain.
type Lister interface {
	Organizations(ctx context.Context) ([]string, error)
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSchedule sets the cron spec. Standard five-field specs and
// descriptors such as "@every 30m" are accepted.
func WithSchedule(
	spec string,
) Option {
	return func(m *Monitor) {
		m.schedule = spec
	}
}

// WithFullSchedule sets the cron spec of full sweeps, which re-walk every
// chain from genesis and so catch edits to entries an incremental sweep
// already trusts. An empty spec disables them.
func WithFullSchedule(
	spec string,
) Option {
	return func(m *Monitor) {
		m.fullSchedule = spec
	}
}

// WithSweepTimeout bounds how long a single sweep may run.
func WithSweepTimeout(
	d time.Duration,
) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

// Broken describes a chain found broken during a sweep.
type Broken struct {
	OrganizationID string            `json:"organization_id"`
	BrokenAt       uint64            `json:"broken_at"`
	Reason         audit.BreakReason `json:"reason"`
}

// Report summarizes one sweep.
type Report struct {
	Mode       string    `json:"mode"`
	Checked    int       `json:"checked"`
	Failed     int       `json:"failed"`
	Broken     []Broken  `json:"broken"`
	FinishedAt time.Time `json:"finished_at"`
}

// Monitor verifies every organization's chain on cron schedules,
// incrementally on the main schedule and from genesis on the full one. It
// never repairs a chain; breaks are logged for operators.
type Monitor struct {
	logger       *slog.Logger
	verifier     Verifier
	lister       Lister
	schedule     string
	fullSchedule string
	timeout      time.Duration
	cron         *cron.Cron

	mu      sync.Mutex
	running bool
	last    *Report
}

// New creates a Monitor and registers its sweep.
func New(
	logger *slog.Logger,
	verifier Verifier,
	lister Lister,
	opts ...Option,
) (*Monitor, error) {
	m := &Monitor{
		logger:       logger,
		verifier:     verifier,
		lister:       lister,
		schedule:     DefaultSchedule,
		fullSchedule: DefaultFullSchedule,
		timeout:      10 * time.Minute,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := m.cron.AddFunc(m.schedule, func() { m.tick(ModeIncremental) }); err != nil {
		return nil, fmt.Errorf("invalid monitor schedule %q: %w", m.schedule, err)
	}
	if m.fullSchedule != "" {
		if _, err := m.cron.AddFunc(m.fullSchedule, func() { m.tick(ModeFull) }); err != nil {
			return nil, fmt.Errorf("invalid monitor full schedule %q: %w", m.fullSchedule, err)
		}
	}

	return m, nil
}

// Start begins running sweeps on the schedule without blocking.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.cron.Start()
	m.running = true

	m.logger.Info(
		"integrity monitor started",
		slog.String("schedule", m.schedule),
		slog.String("full_schedule", m.fullSchedule),
	)
}

// Stop stops scheduling and waits for a running sweep or ctx.
func (m *Monitor) Stop(
	ctx context.Context,
) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	done := m.cron.Stop()

	select {
	case <-done.Done():
		m.logger.Info("integrity monitor stopped")
	case <-ctx.Done():
		m.logger.Warn("integrity monitor stop timed out")
	}
}

func (m *Monitor) tick(
	mode string,
) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if _, err := m.sweep(ctx, mode); err != nil {
		m.logger.Error(
			"integrity sweep failed",
			slog.String("mode", mode),
			slog.String("error", err.Error()),
		)
	}
}

// Sweep verifies every organization once, resuming from each chain's
// checkpoint. Verification errors for one organization are logged and
// counted; the sweep continues with the rest.
func (m *Monitor) Sweep(
	ctx context.Context,
) (*Report, error) {
	return m.sweep(ctx, ModeIncremental)
}

// SweepFull verifies every organization from genesis.
func (m *Monitor) SweepFull(
	ctx context.Context,
) (*Report, error) {
	return m.sweep(ctx, ModeFull)
}

func (m *Monitor) sweep(
	ctx context.Context,
	mode string,
) (*Report, error) {
	verify := m.verifier.VerifyIncremental
	if mode == ModeFull {
		verify = m.verifier.Verify
	}

	orgs, err := m.lister.Organizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	report := &Report{Mode: mode, Broken: []Broken{}}

	for _, org := range orgs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result, err := verify(ctx, org)
		if err != nil {
			report.Failed++
			m.logger.Warn(
				"integrity check failed",
				slog.String("organization_id", org),
				slog.String("error", err.Error()),
			)
			continue
		}

		report.Checked++

		if result.IsValid {
			continue
		}

		var brokenAt uint64
		if result.BrokenAt != nil {
			brokenAt = *result.BrokenAt
		}

		report.Broken = append(report.Broken, Broken{
			OrganizationID: org,
			BrokenAt:       brokenAt,
			Reason:         result.Reason,
		})

		m.logger.Error(
			"audit chain integrity violation",
			slog.String("severity", string(audit.SeverityCritical)),
			slog.String("mode", mode),
			slog.String("organization_id", org),
			slog.Uint64("broken_at", brokenAt),
			slog.String("reason", string(result.Reason)),
			slog.Uint64("total_records", result.TotalRecords),
		)
	}

	report.FinishedAt = time.Now().UTC()

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()

	m.logger.Debug(
		"integrity sweep completed",
		slog.String("mode", mode),
		slog.Int("checked", report.Checked),
		slog.Int("failed", report.Failed),
		slog.Int("broken", len(report.Broken)),
	)

	return report, nil
}

// Last returns the most recent completed sweep, if any.
func (m *Monitor) Last() (*Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return nil, false
	}

	r := *m.last

	return &r, true
}
