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
	"regexp"
	"unicode/utf8"

	"github.com/retr0h/auditchain/internal/validation"
)

// eventTypeRe matches dotted identifiers such as "user.role_change".
var eventTypeRe = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)

func init() {
	validation.RegisterEnum(
		"event_type",
		"a dotted identifier such as user.invite",
		eventTypeRe.MatchString,
	)
	validation.RegisterEnum(
		"category",
		"a known category",
		func(v string) bool { return Category(v).Valid() },
	)
	validation.RegisterEnum(
		"severity",
		"one of low, medium, high, critical",
		func(v string) bool { return Severity(v).Valid() },
	)
	validation.RegisterEnum(
		"actor_type",
		"one of user, system, api, webhook, scheduled_job, anonymous",
		func(v string) bool { return ActorType(v).Valid() },
	)
}

// Validate checks that ev carries every required field with a valid value.
// The returned error wraps ErrInvalidEvent.
func (ev Event) Validate() error {
	if msg, ok := validation.Struct(ev); !ok {
		return &ValidationError{Message: msg}
	}

	if field := ev.invalidUTF8Field(); field != "" {
		return &ValidationError{Message: field + " is not valid UTF-8"}
	}

	return nil
}

// invalidUTF8Field names the first field holding bytes that are not valid
// UTF-8. Such bytes would be hashed as-is but rewritten to U+FFFD when the
// entry is stored, so the persisted entry could never match its hash.
func (ev Event) invalidUTF8Field() string {
	strs := []struct {
		name  string
		value string
	}{
		{"event_type", ev.EventType},
		{"category", string(ev.Category)},
		{"action", string(ev.Action)},
		{"severity", string(ev.Severity)},
		{"actor_type", string(ev.ActorType)},
		{"actor_id", ev.ActorID},
		{"actor_email", ev.ActorEmail},
		{"actor_ip_address", ev.ActorIPAddress},
		{"actor_user_agent", ev.ActorUserAgent},
		{"target_type", ev.TargetType},
		{"target_id", ev.TargetID},
		{"target_name", ev.TargetName},
		{"summary", ev.Summary},
		{"description", ev.Description},
		{"request_path", ev.RequestPath},
		{"idempotency_key", ev.IdempotencyKey},
	}
	for _, f := range strs {
		if !utf8.ValidString(f.value) {
			return f.name
		}
	}

	values := []struct {
		name  string
		value Value
	}{
		{"before_state", ev.BeforeState},
		{"after_state", ev.AfterState},
		{"metadata", ev.Metadata},
	}
	for _, f := range values {
		if !f.value.validUTF8() {
			return f.name
		}
	}

	return ""
}

// validUTF8 reports whether every string and object key inside v is valid
// UTF-8.
func (v Value) validUTF8() bool {
	switch v.kind {
	case KindString:
		return utf8.ValidString(v.str)
	case KindList:
		for _, item := range v.list {
			if !item.validUTF8() {
				return false
			}
		}
	case KindObject:
		for k, item := range v.obj {
			if !utf8.ValidString(k) || !item.validUTF8() {
				return false
			}
		}
	}

	return true
}

// validOrganizationID reports whether id can scope a chain.
func validOrganizationID(
	id string,
) bool {
	return id != "" && len(id) <= 255 && utf8.ValidString(id)
}
