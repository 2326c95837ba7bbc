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
	"io"
	"log/slog"

	"github.com/spf13/afero"
)

// SpoolFile is a completed export held in a temporary file, positioned at
// its start. Close removes the file.
type SpoolFile struct {
	afero.File

	Size   int64
	Result *Result

	fs afero.Fs
}

// Close closes and removes the spooled file.
func (s *SpoolFile) Close() error {
	name := s.Name()

	return errors.Join(s.File.Close(), s.fs.Remove(name))
}

// Spool runs an export into a temporary file under dir. Nothing is
// returned unless the export completed, so callers can send the file
// knowing it is whole. An empty dir selects the system temp directory.
func Spool(
	ctx context.Context,
	logger *slog.Logger,
	fs afero.Fs,
	dir string,
	source Source,
	format Format,
	opts Options,
) (*SpoolFile, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	f, err := afero.TempFile(fs, dir, "auditchain-export-*."+format.Extension())
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}

	discard := func() {
		_ = f.Close()
		_ = fs.Remove(f.Name())
	}

	exporter, err := New(format, f)
	if err != nil {
		discard()
		return nil, err
	}

	result, err := Run(ctx, logger, source, exporter, opts)
	if err != nil {
		discard()
		return nil, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		discard()
		return nil, fmt.Errorf("sizing spool file: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		discard()
		return nil, fmt.Errorf("rewinding spool file: %w", err)
	}

	return &SpoolFile{
		File:   f,
		Size:   size,
		Result: result,
		fs:     fs,
	}, nil
}
