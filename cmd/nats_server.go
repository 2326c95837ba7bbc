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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/cli"
	"github.com/retr0h/auditchain/internal/messaging"
)

// natsCmd represents the nats command.
var natsCmd = &cobra.Command{
	Use:   "nats",
	Short: "The embedded NATS subcommand",
}

// natsServerCmd represents the nats server command.
var natsServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the embedded NATS server",
}

// natsServerStartCmd represents the natsServerStart command.
var natsServerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the embedded NATS server",
	Long: `Start the embedded NATS server with JetStream enabled. The audit
KV bucket is created by the API server when it connects.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		s := setupNATSServer(logger.With("component", "nats"))

		s.Start()
		cli.RunServer(ctx, s)
	},
}

// setupNATSServer builds the embedded broker from the nats.server config.
func setupNATSServer(
	log *slog.Logger,
) *messaging.Server {
	serverCfg := appConfig.NATS.Server
	opts := &messaging.ServerOptions{
		Host:     serverCfg.Host,
		Port:     serverCfg.Port,
		StoreDir: serverCfg.StoreDir,
		Debug:    appConfig.Debug,
	}

	switch serverCfg.Auth.Type {
	case "user_pass":
		for _, u := range serverCfg.Auth.Users {
			opts.Users = append(opts.Users, messaging.ServerUser{
				Username: u.Username,
				Password: u.Password,
			})
		}
	case "nkey":
		opts.NKeys = serverCfg.Auth.NKeys
	}

	s, err := messaging.NewServer(log, opts)
	if err != nil {
		cli.LogFatal(log, "failed to create NATS server", err)
	}

	return s
}

func init() {
	rootCmd.AddCommand(natsCmd)
	natsCmd.AddCommand(natsServerCmd)
	natsServerCmd.AddCommand(natsServerStartCmd)
}
