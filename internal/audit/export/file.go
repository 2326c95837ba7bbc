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

package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/retr0h/auditchain/internal/audit"
)

// partialSuffix marks a file that is still being written.
const partialSuffix = ".partial"

// FileExporter writes an export to a file. Output goes to a partial file
// that is renamed into place only when the export completes.
type FileExporter struct {
	Path   string
	Format Format

	fs    afero.Fs
	file  afero.File
	inner Exporter
}

// NewFileExporter creates a new FileExporter for the given path.
func NewFileExporter(
	fs afero.Fs,
	path string,
	format Format,
) *FileExporter {
	return &FileExporter{
		Path:   path,
		Format: format,
		fs:     fs,
	}
}

// Open creates the partial file and prepares for writing.
func (e *FileExporter) Open(
	ctx context.Context,
) error {
	f, err := e.fs.Create(e.partialPath())
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}

	inner, err := New(e.Format, f)
	if err != nil {
		_ = f.Close()
		_ = e.fs.Remove(e.partialPath())
		return err
	}

	if err := inner.Open(ctx); err != nil {
		_ = f.Close()
		_ = e.fs.Remove(e.partialPath())
		return err
	}

	e.file = f
	e.inner = inner

	return nil
}

// Write writes one entry.
func (e *FileExporter) Write(
	ctx context.Context,
	entry audit.Entry,
) error {
	if e.inner == nil {
		return fmt.Errorf("exporter not opened")
	}

	return e.inner.Write(ctx, entry)
}

// Close completes the output and moves it to Path.
func (e *FileExporter) Close(
	ctx context.Context,
) error {
	if e.inner == nil {
		return fmt.Errorf("exporter not opened")
	}

	if err := e.inner.Close(ctx); err != nil {
		return errors.Join(err, e.Abort(ctx))
	}

	if err := e.file.Close(); err != nil {
		_ = e.fs.Remove(e.partialPath())
		return fmt.Errorf("closing file: %w", err)
	}

	if err := e.fs.Rename(e.partialPath(), e.Path); err != nil {
		_ = e.fs.Remove(e.partialPath())
		return fmt.Errorf("renaming export file: %w", err)
	}

	return nil
}

// Abort discards the partial file.
func (e *FileExporter) Abort(
	_ context.Context,
) error {
	if e.file == nil {
		return nil
	}

	closeErr := e.file.Close()
	if err := e.fs.Remove(e.partialPath()); err != nil {
		return fmt.Errorf("removing partial export: %w", err)
	}

	if closeErr != nil && !errors.Is(closeErr, afero.ErrFileClosed) {
		return fmt.Errorf("closing file: %w", closeErr)
	}

	return nil
}

func (e *FileExporter) partialPath() string {
	return e.Path + partialSuffix
}
