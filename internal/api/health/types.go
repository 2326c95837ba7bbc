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

package health

import (
	"context"
	"log/slog"
	"time"
)

// Checker checks the health of a dependency.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// ComponentReporter is a Checker that can report each dependency
// separately.
type ComponentReporter interface {
	Checker
	CheckComponents(ctx context.Context) map[string]error
}

// MetricsProvider retrieves system metrics for the status endpoint.
type MetricsProvider interface {
	GetNATSInfo(ctx context.Context) (*NATSMetrics, error)
	GetKVInfo(ctx context.Context) ([]KVMetrics, error)
	GetAuditStats(ctx context.Context) (*AuditMetrics, error)
}

// NATSMetrics holds NATS connection information.
type NATSMetrics struct {
	URL     string
	Version string
}

// KVMetrics holds KV bucket statistics.
type KVMetrics struct {
	Name  string
	Keys  int
	Bytes uint64
}

// AuditMetrics holds audit trail statistics.
type AuditMetrics struct {
	Organizations int
	// LastSweep is nil until the integrity monitor has completed a sweep.
	LastSweep *SweepMetrics
}

// SweepMetrics summarizes the last integrity sweep.
type SweepMetrics struct {
	Mode       string
	FinishedAt time.Time
	Checked    int
	Failed     int
	Broken     int
}

// ClosureMetricsProvider implements MetricsProvider using function closures.
type ClosureMetricsProvider struct {
	NATSInfoFn   func(ctx context.Context) (*NATSMetrics, error)
	KVInfoFn     func(ctx context.Context) ([]KVMetrics, error)
	AuditStatsFn func(ctx context.Context) (*AuditMetrics, error)
}

// GetNATSInfo delegates to the NATSInfoFn closure.
func (p *ClosureMetricsProvider) GetNATSInfo(
	ctx context.Context,
) (*NATSMetrics, error) {
	return p.NATSInfoFn(ctx)
}

// GetKVInfo delegates to the KVInfoFn closure.
func (p *ClosureMetricsProvider) GetKVInfo(
	ctx context.Context,
) ([]KVMetrics, error) {
	return p.KVInfoFn(ctx)
}

// GetAuditStats delegates to the AuditStatsFn closure.
func (p *ClosureMetricsProvider) GetAuditStats(
	ctx context.Context,
) (*AuditMetrics, error) {
	return p.AuditStatsFn(ctx)
}

// Response is the liveness and readiness body.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ComponentHealth is the state of one dependency.
type ComponentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NATSInfo describes the broker connection.
type NATSInfo struct {
	URL     string `json:"url"`
	Version string `json:"version"`
}

// KVBucketInfo describes one KV bucket.
type KVBucketInfo struct {
	Name  string `json:"name"`
	Keys  int    `json:"keys"`
	Bytes uint64 `json:"bytes"`
}

// SweepInfo describes the last integrity sweep.
type SweepInfo struct {
	Mode       string    `json:"mode"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"`
	Failed     int       `json:"failed"`
	Broken     int       `json:"broken"`
}

// AuditInfo describes the audit trail.
type AuditInfo struct {
	Organizations int        `json:"organizations"`
	LastSweep     *SweepInfo `json:"last_sweep,omitempty"`
}

// StatusResponse is the body of the detailed status endpoint.
type StatusResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	NATS       *NATSInfo                  `json:"nats,omitempty"`
	KVBuckets  []KVBucketInfo             `json:"kv_buckets,omitempty"`
	Audit      *AuditInfo                 `json:"audit,omitempty"`
}

// Health implementation of the health endpoints.
type Health struct {
	// Checker performs dependency health checks.
	Checker Checker
	// StartTime records when the server started.
	StartTime time.Time
	// Version is the application version string.
	Version string
	// Metrics provides system metrics (optional, can be nil).
	Metrics MetricsProvider
	logger  *slog.Logger
}
