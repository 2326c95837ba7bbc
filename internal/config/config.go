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

// Package config defines the configuration file schema.
package config

import (
	"errors"
	"fmt"
	"time"

	masker "github.com/ggwhite/go-masker/v2"
	"github.com/spf13/viper"

	"github.com/retr0h/auditchain/internal/validation"
)

// SetDefaults registers the values used when the file leaves a key unset.
// Call it after the env prefix is set so bound secrets pick it up.
func SetDefaults(
	v *viper.Viper,
) {
	v.SetDefault("api.client.url", "http://127.0.0.1:8080")
	v.SetDefault("api.server.port", 8080)
	v.SetDefault("api.server.nats.host", "127.0.0.1")
	v.SetDefault("api.server.nats.port", 4222)
	v.SetDefault("api.server.nats.client_name", "auditchain-api")
	v.SetDefault("nats.server.host", "127.0.0.1")
	v.SetDefault("nats.server.port", 4222)
	v.SetDefault("nats.server.store_dir", ".nats/jetstream")
	v.SetDefault("nats.audit.bucket", "audit-chain")
	v.SetDefault("nats.audit.storage", "file")
	v.SetDefault("nats.audit.replicas", 1)
	v.SetDefault("audit.writer.max_retries", 5)
	v.SetDefault("audit.verifier.checkpoint_cache_size", 1024)
	v.SetDefault("audit.export.batch_size", 500)
	v.SetDefault("audit.monitor.schedule", "@every 1h")
	v.SetDefault("audit.monitor.full_schedule", "@every 24h")
	v.SetDefault("audit.monitor.timeout", "10m")
	v.SetDefault("telemetry.metrics.path", "/metrics")

	// Secrets have no default but may still come from the environment.
	_ = v.BindEnv("api.server.security.signing_key")
	_ = v.BindEnv("api.client.security.bearer_token")
}

// Validate checks struct constraints and the values they cannot express.
func Validate(
	cfg *Config,
) error {
	if msg, ok := validation.Struct(cfg); !ok {
		return errors.New(msg)
	}

	if cfg.Audit.Monitor.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Audit.Monitor.Timeout); err != nil {
			return fmt.Errorf("audit.monitor.timeout: %w", err)
		}
	}

	return nil
}

// Masked returns a copy of cfg with secrets masked, for display.
func Masked(
	cfg Config,
) (*Config, error) {
	out, err := masker.NewMaskerMarshaler().Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("masking config: %w", err)
	}

	masked, ok := out.(*Config)
	if !ok {
		return nil, fmt.Errorf("masking config: unexpected type %T", out)
	}

	return masked, nil
}
