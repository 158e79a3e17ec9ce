package tui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/testrun"
)

// RunEventMsg wraps a testrun.Event for the Bubble Tea runtime.
type RunEventMsg struct {
	Event testrun.Event
}

// eventsClosedMsg is sent once the run's event channel is closed.
type eventsClosedMsg struct{}

// statusText maps run states to the line shown next to the spinner.
var statusText = map[testrun.State]string{
	testrun.StateIdle:              "Starting",
	testrun.StateResolvingInput:    "Checking solution file",
	testrun.StateFetching:          "Fetching exercise",
	testrun.StateFetched:           "Fetched exercise",
	testrun.StateResolvingTestCase: "Preparing test case",
	testrun.StateExecuting:         "Waiting for the judge",
	testrun.StateNormalizing:       "Reading judge reply",
	testrun.StateRendering:         "Rendering result",
}

// SpinnerModel shows a spinner and the current run state until the run ends.
type SpinnerModel struct {
	ctx     context.Context
	events  <-chan testrun.Event
	spinner spinner.Model
	theme   Theme
	status  string
	done    bool
}

// NewSpinnerModel creates a SpinnerModel fed by events.
func NewSpinnerModel(ctx context.Context, events <-chan testrun.Event) SpinnerModel {
	theme := DefaultTheme()
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)
	return SpinnerModel{
		ctx:     ctx,
		events:  events,
		spinner: s,
		theme:   theme,
		status:  statusText[testrun.StateIdle],
	}
}

// Init starts the spinner tick and the event pump.
func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.ctx, m.events))
}

// Update implements tea.Model.
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RunEventMsg:
		switch msg.Event.State {
		case testrun.StateDone, testrun.StateFailed:
			m.done = true
			return m, tea.Quit
		}
		if text, ok := statusText[msg.Event.State]; ok {
			m.status = text
		}
		return m, waitForEvent(m.ctx, m.events)

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders nothing once the run has ended so the line is cleared.
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.theme.Status.Render(m.status) + "\n"
}

// Status returns the text currently shown next to the spinner.
func (m SpinnerModel) Status() string { return m.status }

// Done reports whether the run has ended.
func (m SpinnerModel) Done() bool { return m.done }

// waitForEvent returns a tea.Cmd that reads a single event from ch. The
// command sends nil when ctx is done.
func waitForEvent(ctx context.Context, ch <-chan testrun.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return eventsClosedMsg{}
			}
			return RunEventMsg{Event: ev}
		}
	}
}

// RunSpinner renders a SpinnerModel on w until events is closed, a terminal
// state arrives, or ctx is done. Signal handling is left to the caller and
// the program never reads input.
func RunSpinner(ctx context.Context, w io.Writer, events <-chan testrun.Event) error {
	p := tea.NewProgram(
		NewSpinnerModel(ctx, events),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
