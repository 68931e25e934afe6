// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package loc maps byte offsets into source files to line and column locations.
package loc

import (
	"fmt"
	"sort"
)

// A Range is a start and end byte offset into a Files.
type Range [2]int

// GetRange returns itself.
// Embedding a Range in a node makes it implement interface{GetRange() Range}.
func (r Range) GetRange() Range { return r }

// Join returns the smallest Range containing both r and o.
func (r Range) Join(o Range) Range {
	if o[0] < r[0] {
		r[0] = o[0]
	}
	if o[1] > r[1] {
		r[1] = o[1]
	}
	return r
}

// A Loc is a human-readable source location.
// Lines and columns are 1-based.
type Loc struct {
	Path string
	Line [2]int
	Col  [2]int
}

// IsZero returns whether the Loc is the zero value.
func (l Loc) IsZero() bool { return l == Loc{} }

func (l Loc) String() string {
	switch {
	case l.Line[0] == 0:
		return l.Path
	case l.Line[0] == l.Line[1] && l.Col[0] == l.Col[1]:
		return fmt.Sprintf("%s:%d.%d", l.Path, l.Line[0], l.Col[0])
	case l.Line[0] == l.Line[1]:
		return fmt.Sprintf("%s:%d.%d-%d", l.Path, l.Line[0], l.Col[0], l.Col[1])
	default:
		return fmt.Sprintf("%s:%d.%d-%d.%d", l.Path, l.Line[0], l.Col[0], l.Line[1], l.Col[1])
	}
}

// Files assigns each added file a disjoint span of offsets.
// The zero value is an empty set of files.
type Files struct {
	files []file
}

type file struct {
	path  string
	start int
	size  int
	// newlines holds the offset of every '\n' in the file.
	newlines []int
}

// Len returns the total length of all files.
func (fs *Files) Len() int {
	if fs == nil || len(fs.files) == 0 {
		return 0
	}
	last := fs.files[len(fs.files)-1]
	return last.start + last.size
}

// Add adds a file and returns the offset of its first byte.
func (fs *Files) Add(path, text string) int {
	start := fs.Len()
	f := file{path: path, start: start, size: len(text)}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			f.newlines = append(f.newlines, start+i)
		}
	}
	fs.files = append(fs.files, f)
	return start
}

// Path returns the path of the file containing offset p, or "".
func (fs *Files) Path(p int) string {
	if f := fs.find(p); f != nil {
		return f.path
	}
	return ""
}

// Loc returns the Loc of a Range.
// The zero Loc is returned if the Range is not within a single file.
func (fs *Files) Loc(r Range) Loc {
	f := fs.find(r[0])
	if f == nil || r[1] < r[0] || r[1] > f.start+f.size {
		return Loc{}
	}
	l := Loc{Path: f.path}
	l.Line[0], l.Col[0] = f.lineCol(r[0])
	l.Line[1], l.Col[1] = f.lineCol(r[1])
	return l
}

func (fs *Files) find(p int) *file {
	if fs == nil || p < 0 {
		return nil
	}
	n := len(fs.files)
	i := sort.Search(n, func(i int) bool {
		return fs.files[i].start+fs.files[i].size > p
	})
	switch {
	case i < n:
		return &fs.files[i]
	case n > 0 && p == fs.Len():
		return &fs.files[n-1]
	default:
		return nil
	}
}

func (f *file) lineCol(p int) (int, int) {
	n := sort.SearchInts(f.newlines, p)
	lineStart := f.start
	if n > 0 {
		lineStart = f.newlines[n-1] + 1
	}
	return n + 1, p - lineStart + 1
}
