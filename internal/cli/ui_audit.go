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

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/retr0h/auditchain/internal/audit"
)

// EntryHeaders are the columns of DisplayEntries.
var EntryHeaders = []string{"INDEX", "CREATED", "EVENT TYPE", "SEVERITY", "ACTOR", "SUMMARY", "ID"}

// EntryRow renders e as a DisplayEntries row.
func EntryRow(
	e audit.Entry,
) []string {
	actor := string(e.ActorType)
	if e.ActorID != "" {
		actor += ":" + e.ActorID
	}

	return []string{
		strconv.FormatUint(e.ChainIndex, 10),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.EventType,
		string(e.Severity),
		actor,
		e.Summary,
		e.ID,
	}
}

// DisplayEntries prints a page of entries as a table.
func DisplayEntries(
	result *audit.QueryResult,
) {
	fmt.Println()
	PrintKV(
		"Total", strconv.Itoa(result.Total),
		"Limit", strconv.Itoa(result.Limit),
		"Offset", strconv.Itoa(result.Offset),
	)

	if len(result.Entries) == 0 {
		fmt.Println(DimStyle.Render("  no matching entries"))
		return
	}

	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		rows = append(rows, EntryRow(e))
	}

	PrintCompactTable([]Section{{Headers: EntryHeaders, Rows: rows}})
}

// DisplayEntry prints every field of one entry.
func DisplayEntry(
	e *audit.Entry,
) {
	fmt.Println()
	PrintKV("ID", e.ID, "Index", strconv.FormatUint(e.ChainIndex, 10))
	PrintKV("Organization", e.OrganizationID, "Created", e.CreatedAt.UTC().Format(time.RFC3339Nano))
	PrintKV("Event Type", e.EventType, "Category", string(e.Category))
	PrintKV("Action", string(e.Action), "Severity", string(e.Severity))
	PrintKV("Actor Type", string(e.ActorType), "Actor ID", OrDash(e.ActorID))
	PrintKV("Actor Email", OrDash(e.ActorEmail), "Actor IP", OrDash(e.ActorIPAddress))
	PrintKV("User Agent", OrDash(e.ActorUserAgent))
	PrintKV("Target Type", OrDash(e.TargetType), "Target ID", OrDash(e.TargetID))
	PrintKV("Target Name", OrDash(e.TargetName))
	PrintKV("Summary", e.Summary)
	PrintKV("Description", OrDash(e.Description))
	PrintKV("Before", valueString(e.BeforeState))
	PrintKV("After", valueString(e.AfterState))
	PrintKV("Metadata", valueString(e.Metadata))
	PrintKV("Request Path", OrDash(e.RequestPath))
	PrintKV("Previous Hash", e.PreviousHash)
	PrintKV("Hash", e.Hash)
}

// DisplayVerifyResult prints a verification outcome. A broken chain is
// highlighted with the first failing index and reason.
func DisplayVerifyResult(
	orgID string,
	r *audit.VerifyResult,
) {
	fmt.Println()
	PrintKV("Organization", orgID, "Records", strconv.FormatUint(r.TotalRecords, 10))

	if r.IsValid {
		PrintKV("Valid", "true", "Verified At", r.VerifiedAt.UTC().Format(time.RFC3339))
		return
	}

	brokenAt := "-"
	if r.BrokenAt != nil {
		brokenAt = strconv.FormatUint(*r.BrokenAt, 10)
	}

	fmt.Println("  " + AlertStyle.Render(fmt.Sprintf(
		"CHAIN BROKEN at index %s: %s",
		brokenAt,
		r.Reason,
	)))
	PrintKV("Verified At", r.VerifiedAt.UTC().Format(time.RFC3339))
}

func valueString(
	v audit.Value,
) string {
	if v.Kind() == audit.KindNull {
		return "-"
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "-"
	}

	return string(data)
}
