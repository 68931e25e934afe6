// Copyright © 2020 The Pea Authors under an MIT-style license.

package loc

import (
	"testing"
)

func TestLoc(t *testing.T) {
	var fs Files
	if start := fs.Add("a", "ab\ncd\n"); start != 0 {
		t.Fatalf("Add(a)=%d, want 0", start)
	}
	if start := fs.Add("b", "xyz"); start != 6 {
		t.Fatalf("Add(b)=%d, want 6", start)
	}
	tests := []struct {
		r    Range
		want string
	}{
		{r: Range{0, 0}, want: "a:1.1"},
		{r: Range{0, 2}, want: "a:1.1-3"},
		{r: Range{3, 5}, want: "a:2.1-3"},
		{r: Range{1, 4}, want: "a:1.2-2.2"},
		{r: Range{6, 9}, want: "b:1.1-4"},
		{r: Range{7, 8}, want: "b:1.2-3"},
		{r: Range{4, 7}, want: ""},   // spans two files
		{r: Range{20, 21}, want: ""}, // past the end
	}
	for _, test := range tests {
		if got := fs.Loc(test.r).String(); got != test.want {
			t.Errorf("Loc(%v)=%q, want %q", test.r, got, test.want)
		}
	}
	if p := fs.Path(7); p != "b" {
		t.Errorf("Path(7)=%q, want b", p)
	}
	if n := fs.Len(); n != 9 {
		t.Errorf("Len()=%d, want 9", n)
	}
}

func TestJoin(t *testing.T) {
	if got := (Range{3, 5}).Join(Range{1, 4}); got != (Range{1, 5}) {
		t.Errorf("Join=%v, want [1 5]", got)
	}
}
