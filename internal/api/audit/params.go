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

package audit

import (
	"time"

	"github.com/labstack/echo/v4"

	auditstore "github.com/retr0h/auditchain/internal/audit"
)

// bindFilter reads the filter query parameters shared by list and export.
func bindFilter(
	c echo.Context,
) (auditstore.Filter, error) {
	var (
		filter   auditstore.Filter
		from, to time.Time
	)

	err := echo.QueryParamsBinder(c).
		Time("from", &from, time.RFC3339Nano).
		Time("to", &to, time.RFC3339Nano).
		String("event_type", &filter.EventType).
		String("actor_id", &filter.ActorID).
		String("target_type", &filter.TargetType).
		String("target_id", &filter.TargetID).
		String("search", &filter.Search).
		BindError()
	if err != nil {
		return filter, err
	}

	if c.QueryParam("from") != "" {
		filter.From = &from
	}
	if c.QueryParam("to") != "" {
		filter.To = &to
	}

	filter.Category = auditstore.Category(c.QueryParam("category"))
	filter.Action = auditstore.Action(c.QueryParam("action"))
	filter.Severity = auditstore.Severity(c.QueryParam("severity"))
	filter.ActorType = auditstore.ActorType(c.QueryParam("actor_type"))

	return filter, nil
}

// bindSort reads sort_by and order.
func bindSort(
	c echo.Context,
) (auditstore.SortField, auditstore.SortOrder) {
	return auditstore.SortField(c.QueryParam("sort_by")),
		auditstore.SortOrder(c.QueryParam("order"))
}

// bindPage reads the pagination query parameters.
func bindPage(
	c echo.Context,
) (auditstore.Page, error) {
	var page auditstore.Page

	err := echo.QueryParamsBinder(c).
		Int("limit", &page.Limit).
		Int("offset", &page.Offset).
		BindError()
	if err != nil {
		return page, err
	}

	page.SortBy, page.Order = bindSort(c)

	return page, nil
}
