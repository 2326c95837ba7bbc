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
	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/cli"
)

var (
	auditListLimit  int
	auditListOffset int
)

// clientAuditListCmd represents the clientAuditList command.
var clientAuditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries",
	Long: `List an organization's audit entries with filters, sorting and
pagination. Network details of anonymous actors are hidden unless the
token holds audit:sensitive. Requires audit:read permission.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		filter, err := filterFromFlags(cmd)
		if err != nil {
			cli.LogFatal(logger, "invalid filter", err)
		}

		sortBy, order := sortFromFlags(cmd)
		result, err := handler.ListEntries(ctx, auditOrgID, filter, audit.Page{
			Limit:  auditListLimit,
			Offset: auditListOffset,
			SortBy: sortBy,
			Order:  order,
		})
		if err != nil {
			cli.HandleError(err, logger)
			return
		}

		if jsonOutput {
			printJSON(result)
			return
		}

		cli.DisplayEntries(result)
	},
}

func init() {
	clientAuditCmd.AddCommand(clientAuditListCmd)
	addFilterFlags(clientAuditListCmd)

	clientAuditListCmd.Flags().
		IntVar(&auditListLimit, "limit", audit.DefaultLimit, "Maximum number of entries to return")
	clientAuditListCmd.Flags().IntVar(&auditListOffset, "offset", 0, "Number of entries to skip")
}
