// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// srcExt is the file extension of source files.
const srcExt = ".w"

// srcFiles returns the source files named by the command line arguments.
// A directory argument names the source files directly within it,
// in alphabetical order.
func srcFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		ps, err := dirFiles(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, ps...)
	}
	return paths, nil
}

func dirFiles(path string) ([]string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return []string{path}, nil
	}
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, ent := range ents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), srcExt) {
			continue
		}
		paths = append(paths, filepath.Join(path, ent.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
