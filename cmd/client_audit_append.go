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
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/cli"
)

// clientAuditAppendCmd represents the clientAuditAppend command.
var clientAuditAppendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append an event to the organization's chain",
	Long: `Append one event to the organization's hash chain. The event is taken
from --file (a JSON document) or built from flags; flags override fields
read from the file. Requires audit:write permission.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		ev, err := eventFromFlags(cmd)
		if err != nil {
			cli.LogFatal(logger, "invalid event", err)
		}

		idemKey, _ := cmd.Flags().GetString("idempotency-key")
		entry, err := handler.AppendEvent(ctx, auditOrgID, ev, idemKey)
		if err != nil {
			cli.HandleError(err, logger)
			return
		}

		if jsonOutput {
			printJSON(entry)
			return
		}

		cli.DisplayEntry(entry)
	},
}

// eventFromFlags reads --file when set, then applies the field flags.
func eventFromFlags(
	cmd *cobra.Command,
) (audit.Event, error) {
	var ev audit.Event

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := afero.ReadFile(appFs, path)
		if err != nil {
			return ev, fmt.Errorf("reading event file: %w", err)
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			return ev, fmt.Errorf("decoding event file: %w", err)
		}
	}

	strFields := map[string]*string{
		"event-type":   &ev.EventType,
		"actor-id":     &ev.ActorID,
		"actor-email":  &ev.ActorEmail,
		"actor-ip":     &ev.ActorIPAddress,
		"user-agent":   &ev.ActorUserAgent,
		"target-type":  &ev.TargetType,
		"target-id":    &ev.TargetID,
		"target-name":  &ev.TargetName,
		"summary":      &ev.Summary,
		"description":  &ev.Description,
		"request-path": &ev.RequestPath,
	}
	for name, dst := range strFields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}

	enum := func(name string) (string, bool) {
		if !cmd.Flags().Changed(name) {
			return "", false
		}
		v, _ := cmd.Flags().GetString(name)
		return v, true
	}
	if v, ok := enum("category"); ok {
		ev.Category = audit.Category(v)
	}
	if v, ok := enum("action"); ok {
		ev.Action = audit.Action(v)
	}
	if v, ok := enum("severity"); ok {
		ev.Severity = audit.Severity(v)
	}
	if v, ok := enum("actor-type"); ok {
		ev.ActorType = audit.ActorType(v)
	}

	jsonFields := map[string]*audit.Value{
		"before":   &ev.BeforeState,
		"after":    &ev.AfterState,
		"metadata": &ev.Metadata,
	}
	for name, dst := range jsonFields {
		if !cmd.Flags().Changed(name) {
			continue
		}
		raw, _ := cmd.Flags().GetString(name)
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return ev, fmt.Errorf("--%s must be JSON: %w", name, err)
		}
	}

	return ev, nil
}

// addEventFlags registers the flags read by eventFromFlags.
func addEventFlags(
	cmd *cobra.Command,
) {
	flags := cmd.Flags()
	flags.String("file", "", "Read the event from a JSON file")
	flags.String("event-type", "", "Dotted event type, e.g. user.invite")
	flags.String("category", "", "Event category")
	flags.String("action", "", "Event action")
	flags.String("severity", "", "Severity: low, medium, high, critical")
	flags.String("actor-type", "", "Actor type: user, system, api, webhook, scheduled_job, anonymous")
	flags.String("actor-id", "", "Actor id")
	flags.String("actor-email", "", "Actor email")
	flags.String("actor-ip", "", "Actor IP address")
	flags.String("user-agent", "", "Actor user agent")
	flags.String("target-type", "", "Target type")
	flags.String("target-id", "", "Target id")
	flags.String("target-name", "", "Target name")
	flags.String("summary", "", "One-line summary")
	flags.String("description", "", "Long description")
	flags.String("before", "", "State before the change, as JSON")
	flags.String("after", "", "State after the change, as JSON")
	flags.String("metadata", "", "Free-form metadata, as JSON")
	flags.String("request-path", "", "Request path that caused the event")
	flags.String("idempotency-key", "", "Key that makes retries return the same entry")
}

func init() {
	clientAuditCmd.AddCommand(clientAuditAppendCmd)
	addEventFlags(clientAuditAppendCmd)
}
