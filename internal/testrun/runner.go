package testrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/judge"
)

// State is a step of a single test run.
type State int

const (
	StateIdle State = iota
	StateResolvingInput
	StateFetching
	StateFetched
	StateResolvingTestCase
	StateExecuting
	StateNormalizing
	StateRendering
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateResolvingInput:    "resolving_input",
	StateFetching:          "fetching",
	StateFetched:           "fetched",
	StateResolvingTestCase: "resolving_testcase",
	StateExecuting:         "executing",
	StateNormalizing:       "normalizing",
	StateRendering:         "rendering",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event reports a state transition. Err is set for StateFailed.
type Event struct {
	State State
	Err   error
}

// Options are the per-invocation inputs of a run.
type Options struct {
	Filename    string
	TestCase    string // literal, with \n escapes
	Interactive bool
	UseCache    bool
}

// Result describes how far a run got and what it rendered.
type Result struct {
	State    State
	Exercise *judge.Exercise
	TestCase string
	Reply    judge.Reply
	Groups   []Group
}

// DefaultTimeout bounds each judge call when no WithTimeout option is given.
const DefaultTimeout = 60 * time.Second

// Runner drives one test run: resolve the file, fetch the exercise, resolve
// the test case, execute it, then normalize and render the first reply. Every
// error is terminal.
type Runner struct {
	client   judge.Client
	files    MetaExtractor
	renderer *Renderer
	stdin    StdinReader
	timeout  time.Duration
	logger   *log.Logger
	events   chan<- Event
}

// RunnerOption is a functional option for configuring a Runner.
type RunnerOption func(*Runner)

// NewRunner creates a Runner. renderer may be nil to skip rendering.
func NewRunner(client judge.Client, files MetaExtractor, renderer *Renderer, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:   client,
		files:    files,
		renderer: renderer,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithLogger sets the structured logger used for transition tracing.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTimeout bounds each judge call. Zero or negative disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithStdin sets the interactive test case source.
func WithStdin(s StdinReader) RunnerOption {
	return func(r *Runner) {
		r.stdin = s
	}
}

// WithEvents sets the channel that receives state transitions.
// Events are sent non-blocking; if the channel is full the event is dropped.
func WithEvents(ch chan<- Event) RunnerOption {
	return func(r *Runner) {
		r.events = ch
	}
}

// Run executes one test run. The returned Result is never nil; its State is
// StateDone on success and StateFailed otherwise.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{State: StateIdle}

	r.transition(res, StateResolvingInput)
	if err := ResolveFile(r.files, opts.Filename); err != nil {
		return r.fail(res, err)
	}
	ref, err := r.files.Meta(opts.Filename)
	if err != nil {
		return r.fail(res, fmt.Errorf("reading %s: %w", opts.Filename, err))
	}

	r.transition(res, StateFetching)
	ex, err := r.fetch(ctx, ref.ID, opts.UseCache)
	if err != nil {
		return r.fail(res, err)
	}
	res.Exercise = ex
	r.transition(res, StateFetched)
	if !ex.Testable {
		return r.fail(res, ErrNotTestable)
	}

	r.transition(res, StateResolvingTestCase)
	testCase, err := ResolveTestCase(ctx, opts, ex, r.stdin)
	if err != nil {
		return r.fail(res, err)
	}
	res.TestCase = testCase
	ex.TestCase = testCase
	ex.File = opts.Filename
	ex.Lang = ref.Language

	r.transition(res, StateExecuting)
	reply, err := r.execute(ctx, ex)
	if err != nil {
		return r.fail(res, err)
	}
	res.Reply = reply

	r.transition(res, StateNormalizing)
	res.Groups = Normalize(reply, testCase)

	r.transition(res, StateRendering)
	if r.renderer != nil {
		if err := r.renderer.Render(res.Groups); err != nil {
			return r.fail(res, err)
		}
	}

	r.transition(res, StateDone)
	return res, nil
}

func (r *Runner) fetch(ctx context.Context, id string, useCache bool) (*judge.Exercise, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ex, err := r.client.FetchExercise(ctx, id, useCache)
	if err != nil {
		var fe *judge.FetchError
		if !errors.As(err, &fe) {
			err = &judge.FetchError{ID: id, Err: err}
		}
		return nil, err
	}
	if ex == nil {
		return nil, &judge.FetchError{ID: id, Err: errors.New("judge returned no exercise")}
	}
	return ex, nil
}

// execute runs the test case and returns the first reply; further replies
// are logged and dropped.
func (r *Runner) execute(ctx context.Context, ex *judge.Exercise) (judge.Reply, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	replies, err := r.client.ExecuteTestCase(ctx, ex)
	if err != nil {
		var ee *judge.ExecutionError
		if !errors.As(err, &ee) {
			err = &judge.ExecutionError{ID: ex.ID, Err: err}
		}
		return judge.Reply{}, err
	}
	if len(replies) == 0 {
		return judge.Reply{}, &judge.ExecutionError{ID: ex.ID, Err: judge.ErrNoReplies}
	}
	if len(replies) > 1 {
		r.debug("ignoring extra judge replies", "id", ex.ID, "count", len(replies))
	}
	return replies[0], nil
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Runner) transition(res *Result, s State) {
	r.debug("test run", "from", res.State, "to", s)
	res.State = s
	r.emit(Event{State: s})
}

func (r *Runner) fail(res *Result, err error) (*Result, error) {
	r.debug("test run failed", "in", res.State, "error", err)
	res.State = StateFailed
	r.emit(Event{State: StateFailed, Err: err})
	return res, err
}

// emit sends an Event in a non-blocking fashion. If the channel is full, the
// event is dropped.
func (r *Runner) emit(ev Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- ev:
	default:
	}
}

func (r *Runner) debug(msg string, kv ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, kv...)
	}
}
