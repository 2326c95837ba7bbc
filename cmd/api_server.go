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

// apiCmd represents the api command.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "The API server subcommand",
}

// apiServerCmd represents the api server command.
var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the audit API server",
}

// apiServerStartCmd represents the apiServerStart command.
var apiServerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server",
	Long: `Start the audit API server against an existing NATS deployment.
The integrity monitor runs in the same process when audit.monitor.enabled
is set.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		tp, err := telemetry.Init(ctx, api.ServiceName, appConfig.Telemetry)
		if err != nil {
			cli.LogFatal(logger, "failed to initialize telemetry", err)
		}

		b := setupAPIServer(ctx, logger, appConfig.API.Server.NATS, tp)

		group := cli.Group(b.lifecycles())
		group.Start()
		cli.RunServer(ctx, group, func() {
			cli.CloseNATSClient(b.nc)
			_ = tp.Shutdown(context.Background())
		})
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.AddCommand(apiServerCmd)
	apiServerCmd.AddCommand(apiServerStartCmd)
}
