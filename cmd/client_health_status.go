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
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/api/health"
	"github.com/retr0h/auditchain/internal/cli"
)

// clientHealthStatusCmd represents the clientHealthStatus command.
var clientHealthStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "System status and component health",
	Long: `Show per-component health with broker, bucket and audit trail
metrics. Requires health:read permission.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		resp, err := handler.Status(cmd.Context())
		if err != nil {
			cli.HandleError(err, logger)
			return
		}

		if jsonOutput {
			printJSON(resp)
			return
		}

		displayStatusHealth(resp)
	},
}

// displayStatusHealth renders health status output with system metrics.
func displayStatusHealth(
	data *health.StatusResponse,
) {
	fmt.Println()
	cli.PrintKV("Status", data.Status, "Version", data.Version, "Uptime", data.Uptime)

	if data.NATS != nil {
		natsVal := data.NATS.URL
		if data.NATS.Version != "" {
			natsVal += " " + cli.DimStyle.Render("(v"+data.NATS.Version+")")
		}
		cli.PrintKV("NATS", natsVal)
	}

	if data.Audit != nil {
		cli.PrintKV("Organizations", strconv.Itoa(data.Audit.Organizations))

		if sweep := data.Audit.LastSweep; sweep != nil {
			summary := fmt.Sprintf(
				"%s: %d checked, %d failed, %d broken",
				sweep.Mode, sweep.Checked, sweep.Failed, sweep.Broken,
			)
			if sweep.Broken > 0 {
				summary = cli.AlertStyle.Render(summary)
			}
			cli.PrintKV(
				"Last Sweep", sweep.FinishedAt.UTC().Format(time.RFC3339),
				"Result", summary,
			)
		}
	}

	names := make([]string, 0, len(data.Components))
	for name := range data.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	componentRows := make([][]string, 0, len(names))
	for _, name := range names {
		component := data.Components[name]
		componentRows = append(componentRows, []string{name, component.Status, component.Error})
	}

	sections := []cli.Section{
		{
			Title:   "Components",
			Headers: []string{"COMPONENT", "STATUS", "ERROR"},
			Rows:    componentRows,
		},
	}

	if len(data.KVBuckets) > 0 {
		kvRows := make([][]string, 0, len(data.KVBuckets))
		for _, b := range data.KVBuckets {
			kvRows = append(kvRows, []string{
				b.Name,
				strconv.Itoa(b.Keys),
				cli.FormatBytes(int64(b.Bytes)),
			})
		}
		sections = append(sections, cli.Section{
			Title:   "KV Buckets",
			Headers: []string{"NAME", "KEYS", "SIZE"},
			Rows:    kvRows,
		})
	}

	cli.PrintCompactTable(sections)
}

func init() {
	clientHealthCmd.AddCommand(clientHealthStatusCmd)
}
