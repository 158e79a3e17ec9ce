// Package exercise extracts exercise metadata from solution file names.
//
// Solution files follow the "<id>.<slug>.<ext>" convention, for example
// "1.two-sum.cpp". The id is what the judge knows the exercise by; the
// language is detected by matching the path against per-language doublestar
// globs from the [languages] configuration table.
package exercise

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoID is returned when the file name does not start with an exercise id.
var ErrNoID = errors.New("file name has no exercise id")

// ErrUnknownLanguage is returned when no configured pattern matches the file.
var ErrUnknownLanguage = errors.New("unknown language")

// ErrInvalidPattern is returned by NewDetector for malformed globs.
var ErrInvalidPattern = errors.New("invalid language pattern")

// Ref identifies the exercise a solution file belongs to.
type Ref struct {
	ID       string
	Slug     string
	Language string
}

// Detector resolves file names to Refs.
type Detector struct {
	names    []string
	patterns map[string][]string
}

// NewDetector builds a Detector from language name -> glob patterns. Names
// are tried in sorted order so detection is deterministic when patterns
// overlap.
func NewDetector(languages map[string][]string) (*Detector, error) {
	d := &Detector{patterns: make(map[string][]string, len(languages))}
	for name, patterns := range languages {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("language %q pattern %q: %w", name, p, ErrInvalidPattern)
			}
		}
		d.names = append(d.names, name)
		d.patterns[name] = append([]string(nil), patterns...)
	}
	sort.Strings(d.names)
	return d, nil
}

// Exists reports whether path names an existing regular file.
func (d *Detector) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Meta extracts the exercise id, slug and language from path.
func (d *Detector) Meta(path string) (Ref, error) {
	base := filepath.Base(path)
	parts := strings.Split(base, ".")

	ref := Ref{ID: strings.TrimSpace(parts[0])}
	if len(parts) < 2 || ref.ID == "" {
		return Ref{}, fmt.Errorf("%s: %w", base, ErrNoID)
	}
	if len(parts) > 2 {
		ref.Slug = strings.Join(parts[1:len(parts)-1], ".")
	}

	lang, err := d.Language(path)
	if err != nil {
		return Ref{}, err
	}
	ref.Language = lang
	return ref, nil
}

// Language returns the first language whose patterns match path.
func (d *Detector) Language(path string) (string, error) {
	// doublestar matches relative slash paths; "**/" covers any prefix.
	slashed := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
	for _, name := range d.names {
		for _, p := range d.patterns[name] {
			// Patterns were validated in NewDetector, so Match cannot fail.
			if ok, _ := doublestar.Match(p, slashed); ok {
				return name, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnknownLanguage)
}
