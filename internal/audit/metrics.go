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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/retr0h/auditchain/internal/audit"

// instruments holds the OpenTelemetry instruments recorded by the chain
// writer and verifier. Instruments resolve against the global meter
// provider at construction time.
type instruments struct {
	appends      metric.Int64Counter
	conflicts    metric.Int64Counter
	failures     metric.Int64Counter
	latency      metric.Float64Histogram
	verifies     metric.Int64Counter
	brokenChains metric.Int64Counter
}

func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)

	// Instrument creation only fails on invalid names; the noop
	// instrument returned alongside the error is still usable.
	appends, _ := meter.Int64Counter(
		"audit.appends",
		metric.WithDescription("Audit entries appended."),
	)
	conflicts, _ := meter.Int64Counter(
		"audit.append.conflicts",
		metric.WithDescription("Chain index races lost by the writer."),
	)
	failures, _ := meter.Int64Counter(
		"audit.append.failures",
		metric.WithDescription("Appends that returned an error."),
	)
	latency, _ := meter.Float64Histogram(
		"audit.append.duration",
		metric.WithDescription("Append latency."),
		metric.WithUnit("s"),
	)
	verifies, _ := meter.Int64Counter(
		"audit.verifications",
		metric.WithDescription("Chain verifications run."),
	)
	brokenChains, _ := meter.Int64Counter(
		"audit.verifications.broken",
		metric.WithDescription("Verifications that found a broken chain."),
	)

	return &instruments{
		appends:      appends,
		conflicts:    conflicts,
		failures:     failures,
		latency:      latency,
		verifies:     verifies,
		brokenChains: brokenChains,
	}
}

func (m *instruments) recordAppend(
	ctx context.Context,
	err error,
	elapsed time.Duration,
) {
	result := "ok"
	switch {
	case err == nil:
		m.appends.Add(ctx, 1)
	case errors.Is(err, ErrInvalidEvent):
		result = "invalid"
	case errors.Is(err, ErrAppendConflict):
		result = "conflict"
	default:
		result = "error"
	}

	if err != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", result)))
	}

	m.latency.Record(
		ctx,
		elapsed.Seconds(),
		metric.WithAttributes(attribute.String("result", result)),
	)
}

func (m *instruments) recordVerify(
	ctx context.Context,
	result *VerifyResult,
) {
	m.verifies.Add(ctx, 1)
	if !result.IsValid {
		m.brokenChains.Add(
			ctx,
			1,
			metric.WithAttributes(attribute.String("reason", string(result.Reason))),
		)
	}
}
