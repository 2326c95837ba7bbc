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

package health

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// DependencyChecker runs a named check per dependency.
type DependencyChecker struct {
	Checks map[string]Check
}

// CheckHealth runs every check and joins the failures, prefixed with the
// dependency name.
func (c *DependencyChecker) CheckHealth(
	ctx context.Context,
) error {
	var errs []error

	for _, name := range c.names() {
		if err := c.Checks[name](ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// CheckComponents runs every check and returns each result by name. A nil
// value means the dependency is healthy.
func (c *DependencyChecker) CheckComponents(
	ctx context.Context,
) map[string]error {
	results := make(map[string]error, len(c.Checks))
	for _, name := range c.names() {
		results[name] = c.Checks[name](ctx)
	}

	return results
}

func (c *DependencyChecker) names() []string {
	return slices.Sorted(maps.Keys(c.Checks))
}
