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

	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/api"
	"github.com/retr0h/auditchain/internal/cli"
	"github.com/retr0h/auditchain/internal/telemetry"
)

// startCmd represents the top-level start command.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start all components (NATS, API server, monitor)",
	Long: `Start the embedded NATS server, the API server and, when enabled,
the integrity monitor in a single process.

Components start in order (NATS, API, monitor) and shut down in reverse
order on SIGINT/SIGTERM.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		tp, err := telemetry.Init(ctx, api.ServiceName, appConfig.Telemetry)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize telemetry", err)
		}

		// The broker must accept connections before the API server dials it.
		natsServer := setupNATSServer(logger.With("component", "nats"))
		natsServer.Start()

		b := setupAPIServer(ctx, logger.With("component", "api"), appConfig.API.Server.NATS, tp)

		services := cli.Group(b.lifecycles())
		services.Start()

		group := append(cli.Group{natsServer}, services...)

		cli.RunServer(ctx, group, func() {
			cli.CloseNATSClient(b.nc)
			_ = tp.Shutdown(context.Background())
		})
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
