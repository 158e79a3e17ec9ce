package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrPromptAborted is returned when the user cancels the test case prompt.
var ErrPromptAborted = errors.New("test case prompt aborted")

// newTestCaseForm builds the multi-line test case form bound to value.
func newTestCaseForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Test case").
				Description("One argument per line. alt+enter adds a line, enter submits.").
				Lines(6).
				CharLimit(0).
				Value(value),
		),
	).WithTheme(buildHuhTheme(DefaultTheme())).
		WithShowHelp(true)
}

// PromptTestCase asks for a test case on the terminal. The entered text is
// returned verbatim.
func PromptTestCase(ctx context.Context) (string, error) {
	var value string
	if err := newTestCaseForm(&value).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("running test case prompt: %w", err)
	}
	return value, nil
}
