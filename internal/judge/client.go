// Package judge talks to the remote judging service: it fetches exercise
// definitions and executes a solution against one test case.
//
// Client is the capability the test runner depends on. HTTPClient is the
// production implementation, CachedClient adds a read-through exercise
// cache in front of any Client, and MockClient backs tests.
package judge

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoReplies is wrapped in an ExecutionError when the judge answered with
// an empty result list.
var ErrNoReplies = errors.New("judge returned no results")

// Client is the judging service contract. Both calls are single-shot: no
// retries, no streaming.
type Client interface {
	// FetchExercise returns the exercise with the given id. useCache allows
	// implementations to serve a previously fetched definition.
	FetchExercise(ctx context.Context, id string, useCache bool) (*Exercise, error)

	// ExecuteTestCase runs ex.File (in ex.Lang) against ex.TestCase and
	// returns the judge's replies. Callers use the first one.
	ExecuteTestCase(ctx context.Context, ex *Exercise) ([]Reply, error)
}

// FetchError reports a failed exercise fetch.
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching exercise %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExecutionError reports a failed test case execution.
type ExecutionError struct {
	ID  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("testing exercise %s: %v", e.ID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
