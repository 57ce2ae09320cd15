package wordsplit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		s    string
		sep  string
		want []string
	}{
		{
			name: "overlap-heavy pipe separator",
			s:    "A  | | B | C |",
			sep:  " | ",
			want: []string{"A ", "| B", "C |"},
		},
		{
			name: "comma-space separator",
			s:    "A, B, C",
			sep:  ", ",
			want: []string{"A", "B", "C"},
		},
		{
			name: "put command single space",
			s:    "put deadbeef 2001:db8::1",
			sep:  " ",
			want: []string{"put", "deadbeef", "2001:db8::1"},
		},
		{
			name: "get command single arg",
			s:    "get deadbeef",
			sep:  " ",
			want: []string{"get", "deadbeef"},
		},
		{
			name: "no separator found",
			s:    "plzgibhashes",
			sep:  " ",
			want: []string{"plzgibhashes"},
		},
		{
			name: "empty string",
			s:    "",
			sep:  " ",
			want: nil,
		},
		{
			name: "separator at start and end",
			s:    " put hash ip ",
			sep:  " ",
			want: []string{"put", "hash", "ip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.s, tt.sep)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitEmptySeparatorReturnsWholeString(t *testing.T) {
	got := Split("anything", "")
	assert.Equal(t, []string{"anything"}, got)
}

// TestSplitRoundTrip checks property P8: joining the split fragments with
// sep reproduces the original string whenever sep is not itself a
// substring of any fragment.
func TestSplitRoundTrip(t *testing.T) {
	tests := []struct {
		s   string
		sep string
	}{
		{"A  | | B | C |", " | "},
		{"A, B, C", ", "},
		{"put deadbeef 2001:db8::1", " "},
	}

	for _, tt := range tests {
		frags := Split(tt.s, tt.sep)
		anyContainsSep := false
		for _, f := range frags {
			if strings.Contains(f, tt.sep) {
				anyContainsSep = true
			}
		}
		if anyContainsSep {
			continue
		}
		assert.Equal(t, tt.s, strings.Join(frags, tt.sep))
	}
}
