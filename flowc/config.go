// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/eaburns/flow/check"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// A config is the contents of a flowc configuration file.
//
//	trace: false
//	loop_limit: 4
//	workers: 8
//	color: auto
type config struct {
	// Trace enables checker tracing.
	Trace bool `yaml:"trace,omitempty"`

	// LoopLimit is check.Config.LoopLimit.
	LoopLimit int `yaml:"loop_limit,omitempty"`

	// Workers is check.Config.Workers.
	Workers int `yaml:"workers,omitempty"`

	// Color is one of auto, always, or never.
	// The default is auto: color only on a terminal.
	Color string `yaml:"color,omitempty"`
}

func readConfig(path string) (config, error) {
	f, err := os.Open(path)
	if err != nil {
		return config{}, err
	}
	defer f.Close()
	return parseConfig(f)
}

func parseConfig(r io.Reader) (config, error) {
	var cfg config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return config{}, fmt.Errorf("bad config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (cfg config) validate() error {
	switch cfg.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("bad config: color must be auto, always, or never, got %q", cfg.Color)
	}
	if cfg.LoopLimit < 0 {
		return fmt.Errorf("bad config: negative loop_limit %d", cfg.LoopLimit)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("bad config: negative workers %d", cfg.Workers)
	}
	return nil
}

func (cfg config) checkConfig(trace io.Writer) check.Config {
	return check.Config{
		Trace:     cfg.Trace,
		TraceOut:  trace,
		LoopLimit: cfg.LoopLimit,
		Workers:   cfg.Workers,
	}
}

// colorize returns whether diagnostics written to f are colored.
func (cfg config) colorize(f *os.File) bool {
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}
