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

	auditapi "github.com/retr0h/auditchain/internal/api/audit"
	"github.com/retr0h/auditchain/internal/cli"
)

var auditVerifyIncremental bool

// clientAuditVerifyCmd represents the clientAuditVerify command.
var clientAuditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the organization's chain",
	Long: `Recompute every hash of the organization's chain and report the first
broken link. With --incremental only entries appended since the last valid
check are walked. Exits non-zero when the chain is broken. Requires
audit:verify permission.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		mode := auditapi.ModeFull
		if auditVerifyIncremental {
			mode = auditapi.ModeIncremental
		}

		result, err := handler.Verify(cmd.Context(), auditOrgID, mode)
		if err != nil {
			cli.HandleError(err, logger)
			return
		}

		if jsonOutput {
			printJSON(result)
		} else {
			cli.DisplayVerifyResult(auditOrgID, result)
		}

		if !result.IsValid {
			cli.LogFatal(logger, "audit chain is broken", nil,
				"organization_id", auditOrgID,
				"reason", string(result.Reason),
			)
		}
	},
}

func init() {
	clientAuditCmd.AddCommand(clientAuditVerifyCmd)

	clientAuditVerifyCmd.Flags().
		BoolVar(&auditVerifyIncremental, "incremental", false, "Only verify entries since the last valid check")
}
