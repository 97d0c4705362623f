// Package records holds the resume and job snapshots passed into scoring.
package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrMalformedInput reports a record that does not have the expected shape.
var ErrMalformedInput = errors.New("malformed input")

// Set is an unordered collection of unique strings.
type Set map[string]struct{}

// NewSet builds a set from items, collapsing duplicates.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s Set) Len() int { return len(s) }

func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both s and other.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}

	out := make(Set)
	for item := range small {
		if large.Has(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for item := range s {
		if !other.Has(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

// Resume is the parsed form of a candidate resume.
type Resume struct {
	FullText   string `json:"full_text"`
	Entities   Set    `json:"entities"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
}

// Job is the parsed form of a job description.
type Job struct {
	Title      string `json:"title,omitempty"`
	Keywords   Set    `json:"keywords"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
}

// Validate checks that every text field is valid UTF-8 and that no entity is blank.
func (r Resume) Validate() error {
	if err := validateTexts(map[string]string{
		"full_text":  r.FullText,
		"skills":     r.Skills,
		"experience": r.Experience,
		"education":  r.Education,
	}); err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	if err := validateSet("entities", r.Entities); err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	return nil
}

// Validate checks that every text field is valid UTF-8 and that no keyword is blank.
func (j Job) Validate() error {
	if err := validateTexts(map[string]string{
		"skills":     j.Skills,
		"experience": j.Experience,
		"education":  j.Education,
	}); err != nil {
		return fmt.Errorf("job: %w", err)
	}

	if err := validateSet("keywords", j.Keywords); err != nil {
		return fmt.Errorf("job: %w", err)
	}

	return nil
}

func validateTexts(fields map[string]string) error {
	for name, value := range fields {
		if !utf8.ValidString(value) {
			return fmt.Errorf("%w: %s is not valid utf-8", ErrMalformedInput, name)
		}
	}
	return nil
}

func validateSet(name string, s Set) error {
	for item := range s {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%w: %s contains a blank member", ErrMalformedInput, name)
		}
		if !utf8.ValidString(item) {
			return fmt.Errorf("%w: %s member %q is not valid utf-8", ErrMalformedInput, name, item)
		}
	}
	return nil
}
