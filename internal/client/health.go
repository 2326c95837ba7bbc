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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/retr0h/auditchain/internal/api/health"
)

// Health calls the liveness endpoint.
func (c *Client) Health(
	ctx context.Context,
) (*health.Response, error) {
	var resp health.Response
	if err := c.getJSON(ctx, http.MethodGet, "/health", nil, nil, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Ready calls the readiness endpoint. A not-ready server is reported as a
// response, not an error.
func (c *Client) Ready(
	ctx context.Context,
) (*health.Response, error) {
	var resp health.Response
	err := c.getJSON(ctx, http.MethodGet, "/health/ready", nil, nil, nil, &resp)

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		return &health.Response{Status: health.StatusNotReady, Error: apiErr.Message}, nil
	}
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// Status calls the detailed status endpoint.
func (c *Client) Status(
	ctx context.Context,
) (*health.StatusResponse, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health/status", nil, nil, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// A degraded server answers 503 with the full status body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, decodeError(resp)
	}

	var status health.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &status, nil
}
