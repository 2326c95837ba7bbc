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
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetHealthStatus returns per-component health with system metrics.
func (h *Health) GetHealthStatus(
	c echo.Context,
) error {
	ctx := c.Request().Context()
	resp := h.buildStatusResponse(ctx)

	if resp.Status != StatusOK {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Health) buildStatusResponse(
	ctx context.Context,
) StatusResponse {
	resp := StatusResponse{
		Status:     StatusOK,
		Components: map[string]ComponentHealth{},
		Version:    h.Version,
		Uptime:     time.Since(h.StartTime).Round(time.Second).String(),
	}

	var results map[string]error
	if reporter, ok := h.Checker.(ComponentReporter); ok {
		results = reporter.CheckComponents(ctx)
	} else {
		results = map[string]error{"service": h.Checker.CheckHealth(ctx)}
	}

	for name, err := range results {
		if err != nil {
			resp.Components[name] = ComponentHealth{Status: StatusError, Error: err.Error()}
			resp.Status = StatusDegraded
			continue
		}
		resp.Components[name] = ComponentHealth{Status: StatusOK}
	}

	if h.Metrics != nil {
		h.populateMetrics(ctx, &resp)
	}

	return resp
}

// populateMetrics enriches the response with system metrics. A failing
// provider is logged and its section omitted.
func (h *Health) populateMetrics(
	ctx context.Context,
	resp *StatusResponse,
) {
	if info, err := h.Metrics.GetNATSInfo(ctx); err != nil {
		h.logger.Warn("failed to get NATS info for status", slog.String("error", err.Error()))
	} else {
		resp.NATS = &NATSInfo{URL: info.URL, Version: info.Version}
	}

	if buckets, err := h.Metrics.GetKVInfo(ctx); err != nil {
		h.logger.Warn("failed to get KV info for status", slog.String("error", err.Error()))
	} else {
		resp.KVBuckets = make([]KVBucketInfo, 0, len(buckets))
		for _, b := range buckets {
			resp.KVBuckets = append(resp.KVBuckets, KVBucketInfo{
				Name:  b.Name,
				Keys:  b.Keys,
				Bytes: b.Bytes,
			})
		}
	}

	if stats, err := h.Metrics.GetAuditStats(ctx); err != nil {
		h.logger.Warn("failed to get audit stats for status", slog.String("error", err.Error()))
	} else {
		resp.Audit = &AuditInfo{Organizations: stats.Organizations}
		if sweep := stats.LastSweep; sweep != nil {
			resp.Audit.LastSweep = &SweepInfo{
				Mode:       sweep.Mode,
				FinishedAt: sweep.FinishedAt,
				Checked:    sweep.Checked,
				Failed:     sweep.Failed,
				Broken:     sweep.Broken,
			}
		}
	}
}
