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

package audit_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/retr0h/auditchain/internal/audit"
)

type ValuePublicTestSuite struct {
	suite.Suite
}

func (s *ValuePublicTestSuite) TestNumber() {
	tests := []struct {
		name    string
		literal string
		wantErr bool
	}{
		{name: "integer", literal: "42"},
		{name: "negative fraction", literal: "-0.5"},
		{name: "exponent", literal: "1e+10"},
		{name: "rational form is not json", literal: "1/2", wantErr: true},
		{name: "leading zero", literal: "01", wantErr: true},
		{name: "word", literal: "NaN", wantErr: true},
		{name: "empty", literal: "", wantErr: true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			v, err := audit.Number(json.Number(tt.literal))
			if tt.wantErr {
				s.Error(err)
				return
			}
			s.Require().NoError(err)
			n, ok := v.AsNumber()
			s.True(ok)
			s.Equal(tt.literal, n.String())
		})
	}
}

func (s *ValuePublicTestSuite) TestFloatWithoutJSONFormIsNull() {
	s.True(audit.Float(math.NaN()).IsNull())
	s.True(audit.Float(math.Inf(1)).IsNull())
	s.Equal(audit.KindNumber, audit.Float(1.5).Kind())
}

func (s *ValuePublicTestSuite) TestJSON() {
	tests := []struct {
		name     string
		input    string
		wantJSON string
		validate func(audit.Value)
	}{
		{
			name:     "keeps number literals",
			input:    `{"price":1.50,"count":3}`,
			wantJSON: `{"count":3,"price":1.50}`,
			validate: func(v audit.Value) {
				price, ok := v.Field("price")
				s.True(ok)
				n, _ := price.AsNumber()
				s.Equal("1.50", n.String())
			},
		},
		{
			name:     "nested structures",
			input:    `{"b":[true,null,"x"],"a":{"z":{}}}`,
			wantJSON: `{"a":{"z":{}},"b":[true,null,"x"]}`,
			validate: func(v audit.Value) {
				list, _ := v.Field("b")
				items, ok := list.AsList()
				s.True(ok)
				s.Len(items, 3)
				s.Equal(audit.KindBool, items[0].Kind())
				s.True(items[1].IsNull())
				str, _ := items[2].AsString()
				s.Equal("x", str)
			},
		},
		{
			name:     "null",
			input:    `null`,
			wantJSON: `null`,
			validate: func(v audit.Value) {
				s.True(v.IsNull())
				s.Equal("null", v.Kind().String())
			},
		},
		{
			name:     "escaped strings",
			input:    `"line\n\"quoted\""`,
			wantJSON: `"line\n\"quoted\""`,
			validate: func(v audit.Value) {
				str, _ := v.AsString()
				s.Equal("line\n\"quoted\"", str)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			var v audit.Value
			s.Require().NoError(json.Unmarshal([]byte(tt.input), &v))
			tt.validate(v)

			out, err := json.Marshal(v)
			s.Require().NoError(err)
			s.JSONEq(tt.wantJSON, string(out))
			s.Equal(tt.wantJSON, string(out))
		})
	}
}

func (s *ValuePublicTestSuite) TestZeroValueFieldsMarshalAsNull() {
	out, err := json.Marshal(struct {
		Metadata audit.Value `json:"metadata"`
	}{})
	s.Require().NoError(err)
	s.Equal(`{"metadata":null}`, string(out))
}

func (s *ValuePublicTestSuite) TestFromAny() {
	v, err := audit.FromAny(map[string]any{"n": 3, "f": 0.5, "l": []any{"a"}})
	s.Require().NoError(err)
	s.Equal(audit.KindObject, v.Kind())

	_, err = audit.FromAny(struct{}{})
	s.Error(err)

	_, ok := audit.String("x").Field("n")
	s.False(ok)
}

func TestValuePublicTestSuite(t *testing.T) {
	suite.Run(t, new(ValuePublicTestSuite))
}
