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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/retr0h/auditchain/internal/audit"
)

// JSONExporter writes entries as one JSON array, one element at a time.
type JSONExporter struct {
	writer *bufio.Writer
	opened bool
	count  int
}

// NewJSONExporter creates a JSONExporter writing to w.
func NewJSONExporter(
	w io.Writer,
) *JSONExporter {
	return &JSONExporter{writer: bufio.NewWriter(w)}
}

// Open starts the array.
func (e *JSONExporter) Open(
	_ context.Context,
) error {
	if err := e.writer.WriteByte('['); err != nil {
		return fmt.Errorf("writing array start: %w", err)
	}
	e.opened = true

	return nil
}

// Write appends one element.
func (e *JSONExporter) Write(
	_ context.Context,
	entry audit.Entry,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	sep := ",\n"
	if e.count == 0 {
		sep = "\n"
	}

	if _, err := e.writer.WriteString(sep); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	if _, err := e.writer.Write(data); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	e.count++

	return nil
}

// Close ends the array and flushes.
func (e *JSONExporter) Close(
	_ context.Context,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	end := "\n]\n"
	if e.count == 0 {
		end = "]\n"
	}

	if _, err := e.writer.WriteString(end); err != nil {
		return fmt.Errorf("writing array end: %w", err)
	}

	if err := e.writer.Flush(); err != nil {
		return fmt.Errorf("flushing writer: %w", err)
	}

	return nil
}

// JSONLExporter writes entries as JSON lines.
type JSONLExporter struct {
	writer *bufio.Writer
	opened bool
}

// NewJSONLExporter creates a JSONLExporter writing to w.
func NewJSONLExporter(
	w io.Writer,
) *JSONLExporter {
	return &JSONLExporter{writer: bufio.NewWriter(w)}
}

// Open prepares for writing.
func (e *JSONLExporter) Open(
	_ context.Context,
) error {
	e.opened = true

	return nil
}

// Write marshals an entry to JSON and writes it as a single line.
func (e *JSONLExporter) Write(
	_ context.Context,
	entry audit.Entry,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	if _, err := e.writer.Write(data); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	if err := e.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// Close flushes the buffer.
func (e *JSONLExporter) Close(
	_ context.Context,
) error {
	if !e.opened {
		return fmt.Errorf("exporter not opened")
	}

	if err := e.writer.Flush(); err != nil {
		return fmt.Errorf("flushing writer: %w", err)
	}

	return nil
}
