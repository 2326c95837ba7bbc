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
	"bytes"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxExponent bounds the exponents expanded into exact rationals.
const maxExponent = 4096

// canonicalVersion prefixes every canonical payload so the encoding can
// evolve without old and new payloads colliding.
const canonicalVersion = "auditchain.canonical.v1\n"

// Type tags used in the canonical encoding.
const (
	tagNull   = 'z'
	tagString = 's'
	tagNumber = 'n'
	tagBool   = 'b'
	tagList   = 'l'
	tagObject = 'o'
	tagUint   = 'u'
	tagTime   = 't'
)

type canonicalField struct {
	name  string
	tag   byte
	value []byte
}

// Canonicalize returns the deterministic byte encoding of ev. Fields are
// sorted by name and written as name:tag:length:value; so that the output
// depends only on field values. Empty strings and nulls encode identically.
// The idempotency key is not part of the encoding.
func Canonicalize(
	ev Event,
) []byte {
	return encodeFields(eventFields(ev))
}

// CanonicalEntry returns the canonical encoding of e: its event fields plus
// the envelope fields id, organization_id, chain_index and created_at. The
// hash and previous hash are excluded.
func CanonicalEntry(
	e Entry,
) []byte {
	fields := eventFields(e.Event())
	fields = append(fields,
		stringField("id", e.ID),
		stringField("organization_id", e.OrganizationID),
		canonicalField{
			name:  "chain_index",
			tag:   tagUint,
			value: []byte(strconv.FormatUint(e.ChainIndex, 10)),
		},
		canonicalField{
			name:  "created_at",
			tag:   tagTime,
			value: []byte(e.CreatedAt.UTC().Format(time.RFC3339Nano)),
		},
	)

	return encodeFields(fields)
}

func eventFields(
	ev Event,
) []canonicalField {
	return []canonicalField{
		stringField("event_type", ev.EventType),
		stringField("category", string(ev.Category)),
		stringField("action", string(ev.Action)),
		stringField("severity", string(ev.Severity)),
		stringField("actor_type", string(ev.ActorType)),
		stringField("actor_id", ev.ActorID),
		stringField("actor_email", ev.ActorEmail),
		stringField("actor_ip_address", ev.ActorIPAddress),
		stringField("actor_user_agent", ev.ActorUserAgent),
		stringField("target_type", ev.TargetType),
		stringField("target_id", ev.TargetID),
		stringField("target_name", ev.TargetName),
		stringField("summary", ev.Summary),
		stringField("description", ev.Description),
		valueField("before_state", ev.BeforeState),
		valueField("after_state", ev.AfterState),
		valueField("metadata", ev.Metadata),
		stringField("request_path", ev.RequestPath),
	}
}

func encodeFields(
	fields []canonicalField,
) []byte {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].name < fields[j].name
	})

	var buf bytes.Buffer
	buf.WriteString(canonicalVersion)
	for _, f := range fields {
		buf.WriteString(f.name)
		buf.WriteByte(':')
		writeTagged(&buf, f.tag, f.value)
	}

	return buf.Bytes()
}

func stringField(
	name string,
	s string,
) canonicalField {
	if s == "" {
		return canonicalField{name: name, tag: tagNull}
	}

	return canonicalField{name: name, tag: tagString, value: []byte(s)}
}

func valueField(
	name string,
	v Value,
) canonicalField {
	tag, value := encodeValue(v)

	return canonicalField{name: name, tag: tag, value: value}
}

// writeTagged writes tag:length:value; to buf.
func writeTagged(
	buf *bytes.Buffer,
	tag byte,
	value []byte,
) {
	buf.WriteByte(tag)
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(len(value)))
	buf.WriteByte(':')
	buf.Write(value)
	buf.WriteByte(';')
}

func encodeValue(
	v Value,
) (byte, []byte) {
	switch v.kind {
	case KindBool:
		return tagBool, []byte(strconv.FormatBool(v.b))
	case KindNumber:
		return tagNumber, []byte(canonicalNumber(v.num.String()))
	case KindString:
		return tagString, []byte(v.str)
	case KindList:
		var buf bytes.Buffer
		buf.WriteString(strconv.Itoa(len(v.list)))
		buf.WriteByte(':')
		for _, item := range v.list {
			tag, value := encodeValue(item)
			writeTagged(&buf, tag, value)
		}
		return tagList, buf.Bytes()
	case KindObject:
		var buf bytes.Buffer
		buf.WriteString(strconv.Itoa(len(v.obj)))
		buf.WriteByte(':')
		for _, k := range sortedKeys(v.obj) {
			buf.WriteString(strconv.Itoa(len(k)))
			buf.WriteByte(':')
			buf.WriteString(k)
			tag, value := encodeValue(v.obj[k])
			writeTagged(&buf, tag, value)
		}
		return tagObject, buf.Bytes()
	default:
		return tagNull, nil
	}
}

// canonicalNumber renders a JSON number literal as an exact rational in
// lowest terms, so 1, 1.0 and 1e0 encode identically. The literal is first
// reduced to significant digits and a power of ten; values whose power lies
// beyond maxExponent keep that reduced "<digits>e<power>" form instead of
// being expanded, so 1e5000 and 10e4999 still encode identically.
func canonicalNumber(
	literal string,
) string {
	sign, digits, exp, ok := splitNumber(literal)
	if !ok {
		return literal
	}
	if digits == "" {
		return "0"
	}

	limit := big.NewInt(maxExponent)
	if exp.CmpAbs(limit) > 0 {
		return sign + digits + "e" + exp.String()
	}

	r, ok := new(big.Rat).SetString(sign + digits + "e" + exp.String())
	if !ok {
		return literal
	}

	return r.RatString()
}

// splitNumber reduces a JSON number literal to sign * digits * 10^exp where
// digits has no leading or trailing zeros. Zero yields empty digits.
func splitNumber(
	literal string,
) (string, string, *big.Int, bool) {
	var sign string
	if strings.HasPrefix(literal, "-") {
		sign = "-"
		literal = literal[1:]
	}

	exp := new(big.Int)
	if i := strings.IndexAny(literal, "eE"); i >= 0 {
		if _, ok := exp.SetString(strings.TrimPrefix(literal[i+1:], "+"), 10); !ok {
			return "", "", nil, false
		}
		literal = literal[:i]
	}

	intPart, frac, _ := strings.Cut(literal, ".")
	exp.Sub(exp, big.NewInt(int64(len(frac))))

	digits := strings.TrimLeft(intPart+frac, "0")
	trimmed := strings.TrimRight(digits, "0")
	exp.Add(exp, big.NewInt(int64(len(digits)-len(trimmed))))

	if trimmed == "" {
		return "", "", exp, true
	}

	return sign, trimmed, exp, true
}
