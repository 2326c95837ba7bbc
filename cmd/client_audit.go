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
	"time"

	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/audit"
)

var auditOrgID string

// clientAuditCmd represents the clientAudit command.
var clientAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Append, query, verify and export an organization's audit trail",
}

// addFilterFlags registers the entry filter flags shared by list and export.
func addFilterFlags(
	cmd *cobra.Command,
) {
	cmd.Flags().String("from", "", "Only entries created at or after this RFC 3339 time")
	cmd.Flags().String("to", "", "Only entries created at or before this RFC 3339 time")
	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().String("action", "", "Filter by action")
	cmd.Flags().String("severity", "", "Filter by severity (low, medium, high, critical)")
	cmd.Flags().String("actor-type", "", "Filter by actor type")
	cmd.Flags().String("actor-id", "", "Filter by actor id")
	cmd.Flags().String("target-type", "", "Filter by target type")
	cmd.Flags().String("target-id", "", "Filter by target id")
	cmd.Flags().String("event-type", "", "Filter by event type")
	cmd.Flags().String("search", "", "Case-insensitive text search")
	cmd.Flags().String("sort-by", "", "Sort field (defaults to created_at)")
	cmd.Flags().String("order", "", "Sort order: asc or desc")
}

// filterFromFlags builds a filter from the flags added by addFilterFlags.
func filterFromFlags(
	cmd *cobra.Command,
) (audit.Filter, error) {
	str := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	filter := audit.Filter{
		Category:   audit.Category(str("category")),
		Action:     audit.Action(str("action")),
		Severity:   audit.Severity(str("severity")),
		ActorType:  audit.ActorType(str("actor-type")),
		ActorID:    str("actor-id"),
		TargetType: str("target-type"),
		TargetID:   str("target-id"),
		EventType:  str("event-type"),
		Search:     str("search"),
	}

	for _, bound := range []struct {
		flag string
		dst  **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := str(bound.flag)
		if raw == "" {
			continue
		}

		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return filter, fmt.Errorf("--%s must be an RFC 3339 time: %w", bound.flag, err)
		}
		*bound.dst = &t
	}

	return filter, filter.Validate()
}

// sortFromFlags returns the sort flags added by addFilterFlags.
func sortFromFlags(
	cmd *cobra.Command,
) (audit.SortField, audit.SortOrder) {
	sortBy, _ := cmd.Flags().GetString("sort-by")
	order, _ := cmd.Flags().GetString("order")

	return audit.SortField(sortBy), audit.SortOrder(order)
}

func init() {
	clientCmd.AddCommand(clientAuditCmd)

	clientAuditCmd.PersistentFlags().
		StringVarP(&auditOrgID, "org", "o", "", "Organization whose chain is used")
	_ = clientAuditCmd.MarkPersistentFlagRequired("org")
}
