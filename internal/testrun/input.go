package testrun

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/exercise"
	"github.com/AbdelazizMoustafa10m/codedrill/internal/judge"
)

// FileChecker reports whether a solution file exists.
type FileChecker interface {
	Exists(path string) bool
}

// MetaExtractor resolves a solution file name into an exercise reference.
// *exercise.Detector implements it.
type MetaExtractor interface {
	FileChecker
	Meta(path string) (exercise.Ref, error)
}

var _ MetaExtractor = (*exercise.Detector)(nil)

// StdinReader supplies the test case in interactive mode.
type StdinReader interface {
	ReadTestCase(ctx context.Context) (string, error)
}

// StdinFunc adapts a function to StdinReader.
type StdinFunc func(ctx context.Context) (string, error)

// ReadTestCase calls f.
func (f StdinFunc) ReadTestCase(ctx context.Context) (string, error) {
	return f(ctx)
}

// ReaderStdin returns a StdinReader that reads r to EOF.
func ReaderStdin(r io.Reader) StdinFunc {
	return func(context.Context) (string, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// ResolveFile checks that name refers to an existing file.
func ResolveFile(fc FileChecker, name string) error {
	if name == "" || !fc.Exists(name) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return nil
}

// ResolveTestCase picks the test case for a run. Interactive input is used
// verbatim; the --testcase flag has its literal \n sequences unescaped; the
// exercise default is the fallback. An empty interactive read falls through
// to the next source.
func ResolveTestCase(ctx context.Context, opts Options, ex *judge.Exercise, stdin StdinReader) (string, error) {
	if opts.Interactive {
		if stdin == nil {
			return "", fmt.Errorf("%w: no input source", ErrStdinRead)
		}
		text, err := stdin.ReadTestCase(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStdinRead, err)
		}
		if text != "" {
			return text, nil
		}
	}
	if opts.TestCase != "" {
		return UnescapeNewlines(opts.TestCase), nil
	}
	if ex != nil && ex.TestCase != "" {
		return ex.TestCase, nil
	}
	return "", ErrMissingTestCase
}

// UnescapeNewlines replaces every two-character sequence `\n` with a newline.
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
