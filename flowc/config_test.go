// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want config
		err  string // regexp, "" means no error
	}{
		{name: "empty", src: "", want: config{}},
		{
			name: "all fields",
			src:  "trace: true\nloop_limit: 8\nworkers: 3\ncolor: never\n",
			want: config{Trace: true, LoopLimit: 8, Workers: 3, Color: "never"},
		},
		{name: "bad color", src: "color: sometimes\n", err: "color must be auto, always, or never"},
		{name: "negative workers", src: "workers: -1\n", err: "negative workers"},
		{name: "negative loop limit", src: "loop_limit: -2\n", err: "negative loop_limit"},
		{name: "unknown field", src: "colour: auto\n", err: "bad config"},
		{name: "bad value", src: "workers: many\n", err: "bad config"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseConfig(strings.NewReader(test.src))
			switch {
			case test.err == "" && err != nil:
				t.Fatalf("got %v, expected nil", err)
			case test.err != "" && err == nil:
				t.Fatalf("got nil, expected matching %s", test.err)
			case test.err != "":
				if !regexp.MustCompile(test.err).MatchString(err.Error()) {
					t.Fatalf("got %v, expected matching %s", err, test.err)
				}
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("config (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestCheckConfig(t *testing.T) {
	t.Parallel()
	cfg := config{Trace: true, LoopLimit: 2, Workers: 5}
	got := cfg.checkConfig(nil)
	if !got.Trace || got.LoopLimit != 2 || got.Workers != 5 {
		t.Errorf("checkConfig()=%+v", got)
	}
}
