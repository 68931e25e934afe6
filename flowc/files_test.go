// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSrcFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"b.w", "a.w", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.w"), 0755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(dir, "notes.txt")
	got, err := srcFiles([]string{dir, single})
	if err != nil {
		t.Fatalf("srcFiles failed: %s", err)
	}
	want := []string{filepath.Join(dir, "a.w"), filepath.Join(dir, "b.w"), single}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("srcFiles (-want,+got):\n%s", diff)
	}
	if _, err := srcFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Errorf("srcFiles of a missing file succeeded")
	}
}
