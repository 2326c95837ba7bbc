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

package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// readyTimeout bounds how long Start waits for the broker to accept
// connections.
const readyTimeout = 10 * time.Second

// ServerUser is a username/password pair allowed to connect.
type ServerUser struct {
	Username string
	Password string
}

// ServerOptions configures the embedded broker.
type ServerOptions struct {
	// Host to bind; defaults to all interfaces.
	Host string
	// Port to bind; -1 picks a random free port.
	Port int
	// StoreDir is the JetStream storage directory.
	StoreDir string
	// Users enables user/password authentication when non-empty.
	Users []ServerUser
	// NKeys enables nkey authentication when non-empty.
	NKeys []string
	// Debug enables broker debug and trace logging.
	Debug bool
}

// Server is an embedded NATS server with JetStream enabled. It implements
// cli.Lifecycle.
type Server struct {
	logger *slog.Logger
	srv    *server.Server
}

// NewServer creates an embedded NATS server.
func NewServer(
	logger *slog.Logger,
	opts *ServerOptions,
) (*Server, error) {
	sopts := &server.Options{
		Host:      opts.Host,
		Port:      opts.Port,
		JetStream: true,
		StoreDir:  opts.StoreDir,
		NoSigs:    true,
		NoLog:     !opts.Debug,
		Debug:     opts.Debug,
		Trace:     opts.Debug,
	}

	for _, u := range opts.Users {
		sopts.Users = append(sopts.Users, &server.User{
			Username: u.Username,
			Password: u.Password,
		})
	}

	for _, k := range opts.NKeys {
		sopts.Nkeys = append(sopts.Nkeys, &server.NkeyUser{Nkey: k})
	}

	srv, err := server.NewServer(sopts)
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}

	if opts.Debug {
		srv.ConfigureLogger()
	}

	return &Server{
		logger: logger,
		srv:    srv,
	}, nil
}

// Start runs the server and waits until it accepts connections.
func (s *Server) Start() {
	go s.srv.Start()

	if !s.srv.ReadyForConnections(readyTimeout) {
		s.logger.Error("nats server not ready", slog.Duration("timeout", readyTimeout))
		return
	}

	s.logger.Info("nats server started", slog.String("url", s.srv.ClientURL()))
}

// Ready reports whether the server accepts connections within timeout.
func (s *Server) Ready(
	timeout time.Duration,
) bool {
	return s.srv.ReadyForConnections(timeout)
}

// ClientURL returns the URL clients connect to.
func (s *Server) ClientURL() string {
	return s.srv.ClientURL()
}

// Stop shuts the server down, giving up when ctx expires.
func (s *Server) Stop(
	ctx context.Context,
) {
	done := make(chan struct{})
	go func() {
		s.srv.Shutdown()
		s.srv.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("nats server stopped")
	case <-ctx.Done():
		s.logger.Warn("nats server shutdown timed out")
	}
}
