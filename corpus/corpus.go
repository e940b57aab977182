// Package corpus loads generated test-case files. A corpus file is a YAML
// sequence of entries, each either a define statement or a test case:
//
//   - define: "x = 5"
//   - test:
//     query: "x + 1"
//     expected: "6"
//     name: "add"
//
// Entry order matters: defines bind names that later tests rely on.
package corpus

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Sentinel errors
var (
	ErrAmbiguousEntry = errors.New("corpus entry must set exactly one of define or test")
	ErrMissingQuery   = errors.New("test entry requires a query")
	ErrMissingName    = errors.New("test entry requires a name")
)

// TestCase is one query/expectation pair. An empty Expected means the
// test carries no expectation and any outcome passes.
type TestCase struct {
	Query    string `yaml:"query"`
	Expected string `yaml:"expected,omitempty"`
	Name     string `yaml:"name"`
}

// Entry is one corpus entry: either a define statement or a test case.
type Entry struct {
	Define string    `yaml:"define,omitempty"`
	Test   *TestCase `yaml:"test,omitempty"`
}

// Load reads and validates a corpus file, preserving entry order.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

// Parse decodes corpus entries from YAML and validates them.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry

	if err := yaml.UnmarshalWithOptions(data, &entries, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	for i, entry := range entries {
		if err := validate(entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	return entries, nil
}

func validate(entry Entry) error {
	hasDefine := entry.Define != ""
	hasTest := entry.Test != nil

	if hasDefine == hasTest {
		return ErrAmbiguousEntry
	}

	if hasTest {
		if entry.Test.Query == "" {
			return ErrMissingQuery
		}

		if entry.Test.Name == "" {
			return ErrMissingName
		}
	}

	return nil
}
