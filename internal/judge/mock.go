package judge

import (
	"context"
	"fmt"
)

// Compile-time check that MockClient implements Client.
var _ Client = (*MockClient)(nil)

// MockClient is a configurable in-memory Client for tests. It records every
// call so tests can assert on call order and arguments.
type MockClient struct {
	// Exercises is served by FetchExercise when FetchFunc is nil.
	Exercises map[string]*Exercise
	// Replies is returned by ExecuteTestCase when ExecuteFunc is nil.
	Replies []Reply

	FetchFunc   func(ctx context.Context, id string, useCache bool) (*Exercise, error)
	ExecuteFunc func(ctx context.Context, ex *Exercise) ([]Reply, error)

	// FetchCalls records the ids passed to FetchExercise.
	FetchCalls []string
	// ExecuteCalls records copies of the exercises passed to ExecuteTestCase.
	ExecuteCalls []Exercise
}

// NewMockClient creates a MockClient that knows the given exercises.
func NewMockClient(exercises ...*Exercise) *MockClient {
	m := &MockClient{Exercises: make(map[string]*Exercise, len(exercises))}
	for _, ex := range exercises {
		m.Exercises[ex.ID] = ex
	}
	return m
}

// FetchExercise records the call, then delegates to FetchFunc or looks the id
// up in Exercises. Unknown ids yield a FetchError.
func (m *MockClient) FetchExercise(ctx context.Context, id string, useCache bool) (*Exercise, error) {
	m.FetchCalls = append(m.FetchCalls, id)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, id, useCache)
	}
	ex, ok := m.Exercises[id]
	if !ok {
		return nil, &FetchError{ID: id, Err: fmt.Errorf("exercise %s not found", id)}
	}
	return ex.Clone(), nil
}

// ExecuteTestCase records the call, then delegates to ExecuteFunc or returns
// Replies.
func (m *MockClient) ExecuteTestCase(ctx context.Context, ex *Exercise) ([]Reply, error) {
	if ex != nil {
		m.ExecuteCalls = append(m.ExecuteCalls, *ex)
	}
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, ex)
	}
	return m.Replies, nil
}

// WithReplies sets Replies and returns the receiver for chaining.
func (m *MockClient) WithReplies(replies ...Reply) *MockClient {
	m.Replies = replies
	return m
}

// WithExecuteError makes ExecuteTestCase fail with err.
func (m *MockClient) WithExecuteError(err error) *MockClient {
	m.ExecuteFunc = func(context.Context, *Exercise) ([]Reply, error) {
		return nil, err
	}
	return m
}

// WithFetchError makes FetchExercise fail with err.
func (m *MockClient) WithFetchError(err error) *MockClient {
	m.FetchFunc = func(context.Context, string, bool) (*Exercise, error) {
		return nil, err
	}
	return m
}
