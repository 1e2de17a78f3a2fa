package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Package targets loads batch fetch lists from YAML or JSON files.

// Target is one URL to fetch in a batch.
type Target struct {
	ID        string `json:"id" yaml:"id"`
	URL       string `json:"url" yaml:"url"`
	TimeoutMs int    `json:"timeout_ms" yaml:"timeout_ms"`
	Output    string `json:"output" yaml:"output"`
}

type file struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Timeout returns the per-target time limit, or zero for none.
func (t Target) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// Load reads and validates a targets file. The format is picked by extension.
func Load(path string) ([]Target, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("targets file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes and validates targets. An empty ext tries every format.
func Parse(data []byte, ext string) ([]Target, error) {
	parsed, err := parseFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(parsed.Targets) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}

	seen := make(map[string]struct{}, len(parsed.Targets))
	out := make([]Target, 0, len(parsed.Targets))
	for i, t := range parsed.Targets {
		t = sanitizeTarget(t)
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("target[%d]: %w", i, err)
		}
		if _, exists := seen[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

type unmarshalFn func([]byte, any) error

func parseFile(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var f file
		if err := d.fn(data, &f); err != nil {
			errs = append(errs, fmt.Errorf("decode %s targets: %w", d.name, err))
			continue
		}
		return f, nil
	}

	if len(errs) > 0 {
		return file{}, errors.Join(errs...)
	}
	return file{}, fmt.Errorf("targets file extension %q not recognized (expected .yaml, .yml or .json)", ext)
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.URL = strings.TrimSpace(t.URL)
	t.Output = strings.TrimSpace(t.Output)
	if t.Output == "" && t.ID != "" {
		t.Output = t.ID + ".out"
	}
	return t
}

func validateTarget(t Target) error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if strings.ContainsAny(t.ID, `/\`) || t.ID == "." || t.ID == ".." {
		return fmt.Errorf("id %q must not contain path separators", t.ID)
	}
	if t.URL == "" {
		return fmt.Errorf("url is required for target %q", t.ID)
	}
	if t.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must not be negative for target %q", t.ID)
	}
	if !filepath.IsLocal(t.Output) {
		return fmt.Errorf("output %q must be a relative path inside the batch directory", t.Output)
	}
	return nil
}
