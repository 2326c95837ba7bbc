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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go/jetstream"
	natsclient "github.com/osapi-io/nats-client/pkg/client"

	"github.com/retr0h/auditchain/internal/api"
	auditapi "github.com/retr0h/auditchain/internal/api/audit"
	"github.com/retr0h/auditchain/internal/api/health"
	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/cli"
	"github.com/retr0h/auditchain/internal/config"
	"github.com/retr0h/auditchain/internal/messaging"
	"github.com/retr0h/auditchain/internal/monitor"
	"github.com/retr0h/auditchain/internal/telemetry"
)

// apiBundle holds what setupAPIServer builds. Monitor is nil unless the
// integrity monitor is enabled.
type apiBundle struct {
	nc      messaging.NATSClient
	server  *api.Server
	monitor *monitor.Monitor
}

// lifecycles returns the bundle's long-running parts in start order.
func (b *apiBundle) lifecycles() []cli.Lifecycle {
	out := []cli.Lifecycle{b.server}
	if b.monitor != nil {
		out = append(out, b.monitor)
	}

	return out
}

// setupAPIServer connects to NATS, opens the audit bucket and builds the
// API server with every handler registered. It is used by the standalone
// API server start and combined start commands.
func setupAPIServer(
	ctx context.Context,
	log *slog.Logger,
	connCfg config.NATSConnection,
	tp *telemetry.Provider,
) *apiBundle {
	var nc messaging.NATSClient = natsclient.New(log, &natsclient.Options{
		Host: connCfg.Host,
		Port: connCfg.Port,
		Auth: cli.BuildNATSAuthOptions(connCfg.Auth),
		Name: connCfg.ClientName,
	})

	if err := nc.Connect(); err != nil {
		cli.LogFatal(log, "failed to connect to NATS", err)
	}

	kvConfig := cli.BuildAuditKVConfig(connCfg.Namespace, appConfig.NATS.Audit)
	auditKV, err := nc.CreateOrUpdateKVBucketWithConfig(ctx, kvConfig)
	if err != nil {
		cli.LogFatal(log, "failed to create audit KV bucket", err, "bucket", kvConfig.Bucket)
	}

	store := audit.NewKVStore(log, auditKV)
	writer := audit.NewWriter(
		log,
		store,
		audit.WithMaxRetries(uint64(appConfig.Audit.Writer.MaxRetries)),
	)
	engine := audit.NewEngine(log, store)
	verifier, err := audit.NewVerifier(
		log,
		store,
		audit.WithCheckpointCacheSize(appConfig.Audit.Verifier.CheckpointCacheSize),
	)
	if err != nil {
		cli.LogFatal(log, "failed to create verifier", err)
	}

	var mon *monitor.Monitor
	if appConfig.Audit.Monitor.Enabled {
		mon = newMonitor(log.With("component", "monitor"), verifier, store)
	}

	var opts []api.Option
	if appConfig.API.Server.AuditAccess {
		opts = append(opts, api.WithAccessAudit(writer))
	}

	srv := api.New(appConfig, log, opts...)

	handlers := make([]func(e *echo.Echo), 0, 4)
	handlers = append(handlers, srv.GetAuditHandler(
		writer,
		engine,
		verifier,
		auditapi.WithSpool(appFs, appConfig.Audit.Export.SpoolDir),
		auditapi.WithExportBatchSize(appConfig.Audit.Export.BatchSize),
	)...)
	handlers = append(handlers, srv.GetHealthHandler(
		newHealthChecker(nc, auditKV),
		time.Now(),
		buildVersion().GitVersion,
		newMetricsProvider(nc, auditKV, store, mon),
	)...)
	handlers = append(handlers, srv.GetMetricsHandler(tp.MetricsHandler, tp.MetricsPath)...)
	srv.RegisterHandlers(handlers)

	return &apiBundle{
		nc:      nc,
		server:  srv,
		monitor: mon,
	}
}

func newMonitor(
	log *slog.Logger,
	verifier monitor.Verifier,
	lister monitor.Lister,
) *monitor.Monitor {
	opts := []monitor.Option{
		monitor.WithSchedule(appConfig.Audit.Monitor.Schedule),
		monitor.WithFullSchedule(appConfig.Audit.Monitor.FullSchedule),
	}
	if appConfig.Audit.Monitor.Timeout != "" {
		// Validated when the config was loaded.
		timeout, _ := time.ParseDuration(appConfig.Audit.Monitor.Timeout)
		opts = append(opts, monitor.WithSweepTimeout(timeout))
	}

	mon, err := monitor.New(log, verifier, lister, opts...)
	if err != nil {
		cli.LogFatal(log, "failed to create integrity monitor", err)
	}

	return mon
}

func newHealthChecker(
	nc messaging.NATSClient,
	auditKV jetstream.KeyValue,
) *health.DependencyChecker {
	return &health.DependencyChecker{
		Checks: map[string]health.Check{
			"nats": func(_ context.Context) error {
				natsConn, ok := nc.(*natsclient.Client)
				if !ok || natsConn.NC == nil {
					return fmt.Errorf("nats client unavailable")
				}

				if natsConn.NC.ConnectedUrl() == "" {
					return fmt.Errorf("nats not connected")
				}

				return nil
			},
			"kv": func(ctx context.Context) error {
				if _, err := auditKV.Status(ctx); err != nil {
					return fmt.Errorf("kv bucket not accessible: %w", err)
				}

				return nil
			},
		},
	}
}

func newMetricsProvider(
	nc messaging.NATSClient,
	auditKV jetstream.KeyValue,
	lister monitor.Lister,
	mon *monitor.Monitor,
) *health.ClosureMetricsProvider {
	return &health.ClosureMetricsProvider{
		NATSInfoFn: func(_ context.Context) (*health.NATSMetrics, error) {
			natsConn, ok := nc.(*natsclient.Client)
			if !ok || natsConn.NC == nil {
				return nil, fmt.Errorf("NATS client unavailable")
			}

			metrics := &health.NATSMetrics{
				URL: natsConn.NC.ConnectedUrl(),
			}

			if wrapper, ok := natsConn.NC.(*natsclient.NATSConnWrapper); ok &&
				wrapper.Conn != nil {
				metrics.Version = wrapper.Conn.ConnectedServerVersion()
			}

			return metrics, nil
		},
		KVInfoFn: func(fnCtx context.Context) ([]health.KVMetrics, error) {
			status, err := auditKV.Status(fnCtx)
			if err != nil {
				return nil, fmt.Errorf("kv status: %w", err)
			}

			return []health.KVMetrics{
				{
					Name:  status.Bucket(),
					Keys:  int(status.Values()),
					Bytes: status.Bytes(),
				},
			}, nil
		},
		AuditStatsFn: func(fnCtx context.Context) (*health.AuditMetrics, error) {
			orgs, err := lister.Organizations(fnCtx)
			if err != nil {
				return nil, fmt.Errorf("list organizations: %w", err)
			}

			metrics := &health.AuditMetrics{Organizations: len(orgs)}
			if mon == nil {
				return metrics, nil
			}

			if report, ok := mon.Last(); ok {
				metrics.LastSweep = &health.SweepMetrics{
					Mode:       report.Mode,
					FinishedAt: report.FinishedAt,
					Checked:    report.Checked,
					Failed:     report.Failed,
					Broken:     len(report.Broken),
				}
			}

			return metrics, nil
		},
	}
}
