// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package questions

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/retrobot/apperr"
	"github.com/danielhkuo/retrobot/models"
)

// Provider resolves named question sets.
type Provider interface {
	Sets() []string
	Questions(name string) ([]string, error)
}

// Catalog is a fixed collection of named question sets.
type Catalog struct {
	sets map[string][]string
}

// file is the on-disk schema of a question catalog
type file struct {
	QuestionSets map[string][]string `yaml:"question_sets"`
}

// Default returns the built-in sets used when no file is configured.
func Default() *Catalog {
	return &Catalog{sets: map[string][]string{
		"retrospective": {
			"What went well this sprint?",
			"What didn't go so well?",
			"What should we try next time?",
		},
		"standup": {
			"What did you get done since the last standup?",
			"What are you working on next?",
			"Is anything blocking you?",
		},
		"planning": {
			"What are the most important goals for the next cycle?",
			"What risks or unknowns do you see?",
			"What do you need from others to succeed?",
		},
	}}
}

// Load reads a catalog from a YAML or JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questions: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("questions: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document. Every set must have at least one
// non-blank question and the name "custom" is reserved.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(f.QuestionSets) == 0 {
		return nil, fmt.Errorf("no question_sets defined")
	}

	sets := make(map[string][]string, len(f.QuestionSets))
	for name, qs := range f.QuestionSets {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("question set with empty name")
		}
		if name == models.QuestionSetCustom {
			return nil, fmt.Errorf("question set name %q is reserved", name)
		}

		var cleaned []string
		for _, q := range qs {
			if q = strings.TrimSpace(q); q != "" {
				cleaned = append(cleaned, q)
			}
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("question set %q has no questions", name)
		}
		sets[name] = cleaned
	}
	return &Catalog{sets: sets}, nil
}

// Sets lists the set names in sorted order.
func (c *Catalog) Sets() []string {
	names := make([]string, 0, len(c.sets))
	for name := range c.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Questions returns a copy of the named set.
func (c *Catalog) Questions(name string) ([]string, error) {
	qs, ok := c.sets[name]
	if !ok {
		return nil, apperr.Newf(apperr.CodeInvalidArgument,
			"Unknown question set: '%s'\nAvailable: %s", name, strings.Join(c.Sets(), ", "))
	}
	return append([]string(nil), qs...), nil
}

// ParseCustom extracts quoted questions from whitespace split arguments.
// `"one"` is a single-word question; `"two words"` arrives as two arguments
// and is joined back with single spaces. Unquoted words outside a question
// are ignored, as is an unterminated trailing question.
func ParseCustom(args []string) []string {
	questions := []string{}
	var current string
	inQuotes := false

	for _, arg := range args {
		switch {
		case len(arg) > 1 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`):
			questions = append(questions, arg[1:len(arg)-1])
		case strings.HasPrefix(arg, `"`):
			current = arg[1:]
			inQuotes = true
		case inQuotes && strings.HasSuffix(arg, `"`):
			current += " " + arg[:len(arg)-1]
			questions = append(questions, current)
			current = ""
			inQuotes = false
		case inQuotes:
			current += " " + arg
		}
	}
	return questions
}
