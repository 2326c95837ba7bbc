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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/retr0h/auditchain/internal/audit"
	"github.com/retr0h/auditchain/internal/audit/export"
	"github.com/retr0h/auditchain/internal/cli"
)

var (
	auditExportOutput   string
	auditExportFormat   string
	auditExportPaginate bool
)

// clientAuditExportCmd represents the clientAuditExport command.
var clientAuditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit entries to a file",
	Long: `Export an organization's audit entries as csv, json or jsonl.

By default the server builds the export and the download is written to
--output, or to stdout when --output is empty. With --paginate the file is
assembled locally from list pages in chain order. A failed export never
leaves a partial file behind. Requires audit:export permission.
`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		format, err := export.ParseFormat(auditExportFormat)
		if err != nil {
			cli.LogFatal(logger, "invalid format", err)
		}

		filter, err := filterFromFlags(cmd)
		if err != nil {
			cli.LogFatal(logger, "invalid filter", err)
		}

		if auditExportPaginate {
			if auditExportOutput == "" {
				cli.LogFatal(logger, "invalid flags", fmt.Errorf("--paginate requires --output"))
			}
			exportPages(ctx, format, filter)
			return
		}

		sortBy, order := sortFromFlags(cmd)
		download, err := handler.Export(ctx, auditOrgID, format, filter, sortBy, order)
		if err != nil {
			cli.HandleError(err, logger)
			return
		}
		defer func() { _ = download.Body.Close() }()

		if auditExportOutput == "" {
			if _, err := io.Copy(os.Stdout, download.Body); err != nil {
				cli.LogFatal(logger, "writing export", err)
			}
			return
		}

		written, err := saveDownload(appFs, auditExportOutput, download.Body)
		if err != nil {
			cli.LogFatal(logger, "saving export", err, "output", auditExportOutput)
		}

		fmt.Println()
		cli.PrintKV("Output", auditExportOutput, "Size", cli.FormatBytes(written))
		cli.PrintKV("Server Filename", cli.OrDash(download.Filename))
	},
}

// exportPages builds the export locally from list pages.
func exportPages(
	ctx context.Context,
	format export.Format,
	filter audit.Filter,
) {
	exporter := export.NewFileExporter(appFs, auditExportOutput, format)
	source := export.FromPages(handler.Fetcher(auditOrgID, filter), audit.MaxLimit)

	result, err := export.Run(ctx, logger, source, exporter, export.Options{
		// The server already applied the caller's redaction rules.
		IncludeSensitive: true,
		OnProgress: func(exported int) {
			logger.Debug("export progress", "exported", exported)
		},
	})
	if err != nil {
		cli.HandleError(err, logger)
		return
	}

	fmt.Println()
	cli.PrintKV(
		"Exported", strconv.Itoa(result.ExportedEntries),
		"Format", string(format),
	)
	cli.PrintKV("Output", auditExportOutput)
}

// saveDownload copies body to path through a temporary file in the same
// directory, so path only ever holds a complete export.
func saveDownload(
	fs afero.Fs,
	path string,
	body io.Reader,
) (int64, error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.partial")
	if err != nil {
		return 0, fmt.Errorf("creating temporary file: %w", err)
	}

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fs.Remove(tmp.Name())
		return 0, fmt.Errorf("writing export: %w", err)
	}

	if err := fs.Rename(tmp.Name(), path); err != nil {
		_ = fs.Remove(tmp.Name())
		return 0, fmt.Errorf("renaming export: %w", err)
	}

	return written, nil
}

func init() {
	clientAuditCmd.AddCommand(clientAuditExportCmd)
	addFilterFlags(clientAuditExportCmd)

	clientAuditExportCmd.Flags().
		StringVar(&auditExportOutput, "output", "", "Output file path (stdout when empty)")
	clientAuditExportCmd.Flags().
		StringVar(&auditExportFormat, "format", string(export.FormatCSV), "Export format: csv, json, jsonl")
	clientAuditExportCmd.Flags().
		BoolVar(&auditExportPaginate, "paginate", false, "Build the export locally from list pages")
}
