package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// options controls a run of pj.  They come from the command line, and
// optionally a YAML file given with -config.
type options struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Retries int               `yaml:"retries"`
	Backoff string            `yaml:"backoff"`
	Final   bool              `yaml:"final"`
	Query   string            `yaml:"query"`
	Color   string            `yaml:"color"`
	Indent  int               `yaml:"indent"`
}

func defaultOptions() options {
	return options{
		Method:  "GET",
		Headers: map[string]string{},
		Retries: 3,
		Backoff: "500ms",
		Color:   "auto",
		Indent:  2,
	}
}

// loadConfig reads a YAML config file.  Fields missing from the file keep
// their value in base.
func loadConfig(path string, base options) (options, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("error opening config: %w", err)
	}
	defer f.Close()
	opts := base
	if err := yaml.NewDecoder(f).Decode(&opts); err != nil {
		return base, fmt.Errorf("error decoding config %q: %w", path, err)
	}
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	return opts, nil
}

func (o options) backoff() (time.Duration, error) {
	d, err := time.ParseDuration(o.Backoff)
	if err != nil {
		return 0, fmt.Errorf("invalid backoff %q: %w", o.Backoff, err)
	}
	return d, nil
}

// parseHeader parses a "Name: value" header.
func parseHeader(s string) (string, string, error) {
	name, val, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected 'Name: value'", s)
	}
	return name, strings.TrimSpace(val), nil
}
