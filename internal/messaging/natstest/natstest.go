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

// Package natstest starts throwaway embedded NATS servers for tests.
package natstest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/retr0h/auditchain/internal/messaging"
)

// NewKeyValue starts an embedded server on a random port and returns a
// memory-backed KV bucket on it. Everything is torn down with tb.
func NewKeyValue(
	tb testing.TB,
	bucket string,
) jetstream.KeyValue {
	tb.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := messaging.NewServer(logger, &messaging.ServerOptions{
		Host:     "127.0.0.1",
		Port:     -1,
		StoreDir: tb.TempDir(),
	})
	if err != nil {
		tb.Fatalf("create nats server: %v", err)
	}

	srv.Start()
	if !srv.Ready(5 * time.Second) {
		tb.Fatal("nats server not ready")
	}

	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		tb.Fatalf("connect nats: %v", err)
	}
	tb.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	if err != nil {
		tb.Fatalf("jetstream: %v", err)
	}

	kv, err := js.CreateKeyValue(context.Background(), jetstream.KeyValueConfig{
		Bucket:  bucket,
		Storage: jetstream.MemoryStorage,
	})
	if err != nil {
		tb.Fatalf("create kv bucket: %v", err)
	}

	return kv
}
