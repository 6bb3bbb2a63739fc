/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "named and positional",
			text: "select * from /*c*/ t where a = :name and id = ?",
			want: []Segment{
				{Kind: Literal, Text: "select * from /*c*/ t where a = ", Start: 0, End: 32},
				{Kind: Named, Text: ":name", Name: "name", Start: 32, End: 37},
				{Kind: Literal, Text: " and id = ", Start: 37, End: 47},
				{Kind: Positional, Text: "?", Start: 47, End: 48},
			},
		},
		{
			name: "braced and ampersand",
			text: "mobile = :{mobile} and address = &address",
			want: []Segment{
				{Kind: Literal, Text: "mobile = ", Start: 0, End: 9},
				{Kind: BracedNamed, Text: ":{mobile}", Name: "mobile", Start: 9, End: 18},
				{Kind: Literal, Text: " and address = ", Start: 18, End: 33},
				{Kind: Ampersand, Text: "&address", Name: "address", Start: 33, End: 41},
			},
		},
		{
			name: "quoted literal",
			text: "img = ':img :{img} &img'",
			want: []Segment{
				{Kind: Literal, Text: "img = ':img :{img} &img'", Start: 0, End: 24},
			},
		},
		{
			name: "escape and reserved sequences",
			text: `\: adf ?? bbb ?| aaa ?& :: `,
			want: []Segment{
				{Kind: Literal, Text: ": adf ?? bbb ?| aaa ?& :: ", Start: 0, End: 27},
			},
		},
		{
			name: "doubled quote",
			text: "'it''s :x' = :y",
			want: []Segment{
				{Kind: Literal, Text: "'it''s :x' = ", Start: 0, End: 13},
				{Kind: Named, Text: ":y", Name: "y", Start: 13, End: 15},
			},
		},
		{
			name: "double quoted identifier",
			text: `select "a:b?" from t`,
			want: []Segment{
				{Kind: Literal, Text: `select "a:b?" from t`, Start: 0, End: 20},
			},
		},
		{
			name: "line comment",
			text: "a -- :x ?\n= ?",
			want: []Segment{
				{Kind: Literal, Text: "a -- :x ?\n= ", Start: 0, End: 12},
				{Kind: Positional, Text: "?", Start: 12, End: 13},
			},
		},
		{
			name: "line comment at end",
			text: "a = 1 -- :x",
			want: []Segment{
				{Kind: Literal, Text: "a = 1 -- :x", Start: 0, End: 11},
			},
		},
		{
			name: "cast after marker",
			text: ":id::int",
			want: []Segment{
				{Kind: Named, Text: ":id", Name: "id", Start: 0, End: 3},
				{Kind: Literal, Text: "::int", Start: 3, End: 8},
			},
		},
		{
			name: "ampersand operator",
			text: "flags & 4 = 4",
			want: []Segment{
				{Kind: Literal, Text: "flags & 4 = 4", Start: 0, End: 13},
			},
		},
		{
			name: "adjacent markers",
			text: ":a:b",
			want: []Segment{
				{Kind: Named, Text: ":a", Name: "a", Start: 0, End: 2},
				{Kind: Named, Text: ":b", Name: "b", Start: 2, End: 4},
			},
		},
		{
			name: "assignment colon",
			text: "x := 1:",
			want: []Segment{
				{Kind: Literal, Text: "x := 1:", Start: 0, End: 7},
			},
		},
		{
			name: "identifier with digits",
			text: "in (:id_1, :id2)",
			want: []Segment{
				{Kind: Literal, Text: "in (", Start: 0, End: 4},
				{Kind: Named, Text: ":id_1", Name: "id_1", Start: 4, End: 9},
				{Kind: Literal, Text: ", ", Start: 9, End: 11},
				{Kind: Named, Text: ":id2", Name: "id2", Start: 11, End: 15},
				{Kind: Literal, Text: ")", Start: 15, End: 16},
			},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(tt.text)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestScanMalformed(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"unterminated quote", "select 'abc", 7},
		{"unterminated identifier", `select "abc`, 7},
		{"unterminated comment", "select /* x", 7},
		{"unterminated brace", "a = :{name", 4},
		{"empty brace", "a = :{}", 4},
		{"invalid brace name", "a = :{1x}", 4},
		{"bare colon", "a = :1", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTemplate)
			var me *MalformedTemplateError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.offset, me.Offset)
		})
	}
}

func TestScanCoversInput(t *testing.T) {
	texts := []string{
		"select * from t where a = :a and b in (:{b}) and c = &c and d = ? -- :e\n and f = 'x:y'",
		`/* :x */ "q?" ?? ?| ?& :: :y`,
	}
	for _, text := range texts {
		segments, err := Scan(text)
		require.NoError(t, err)
		pos := 0
		for _, s := range segments {
			assert.Equal(t, pos, s.Start, "segment %v", s)
			pos = s.End
		}
		assert.Equal(t, len(text), pos)
	}
}

func TestSegmentKindString(t *testing.T) {
	assert.Equal(t, "braced", BracedNamed.String())
	assert.Equal(t, "SegmentKind(9)", SegmentKind(9).String())
}
