package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)

// httpLogger is the logging subset HTTPClient needs. *log.Logger from
// charmbracelet/log satisfies it.
type httpLogger interface {
	Debug(msg interface{}, keyvals ...interface{})
}

// Check states that mean the interpretation is still running.
const (
	checkPending = "PENDING"
	checkStarted = "STARTED"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// PollInterval is the delay between check requests. Defaults to 1s.
	PollInterval time.Duration
	// HTTPClient overrides the transport. Defaults to a client without a
	// timeout; deadlines come from the request context.
	HTTPClient *http.Client
	Logger     httpLogger
}

// HTTPClient is the judging service client over its REST API:
//
//	GET  /api/exercises/{id}
//	POST /api/exercises/{id}/interpret   {"lang","code","testcase"} -> {"interpret_id"}
//	GET  /api/checks/{interpret_id}      polled until the state is terminal
type HTTPClient struct {
	baseURL      string
	token        string
	pollInterval time.Duration
	http         *http.Client
	logger       httpLogger
}

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		pollInterval: cfg.PollInterval,
		http:         cfg.HTTPClient,
		logger:       cfg.Logger,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = time.Second
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// FetchExercise downloads the exercise definition. useCache is ignored; wrap
// the client in a CachedClient for caching.
func (c *HTTPClient) FetchExercise(ctx context.Context, id string, _ bool) (*Exercise, error) {
	var ex Exercise
	if err := c.do(ctx, http.MethodGet, "/api/exercises/"+url.PathEscape(id), nil, &ex); err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	if ex.ID == "" {
		ex.ID = id
	}
	return &ex, nil
}

type interpretRequest struct {
	Lang     string `json:"lang"`
	Code     string `json:"code"`
	TestCase string `json:"testcase"`
}

type interpretResponse struct {
	InterpretID string `json:"interpret_id"`
}

// ExecuteTestCase uploads the solution and test case, then polls the check
// endpoint until the judge reports a terminal state or ctx is done.
func (c *HTTPClient) ExecuteTestCase(ctx context.Context, ex *Exercise) ([]Reply, error) {
	if ex == nil {
		return nil, &ExecutionError{Err: errors.New("nil exercise")}
	}
	code, err := os.ReadFile(ex.File)
	if err != nil {
		return nil, &ExecutionError{ID: ex.ID, Err: fmt.Errorf("reading solution: %w", err)}
	}

	body, err := json.Marshal(interpretRequest{Lang: ex.Lang, Code: string(code), TestCase: ex.TestCase})
	if err != nil {
		return nil, &ExecutionError{ID: ex.ID, Err: fmt.Errorf("encoding request: %w", err)}
	}

	var started interpretResponse
	path := "/api/exercises/" + url.PathEscape(ex.ID) + "/interpret"
	if err := c.do(ctx, http.MethodPost, path, body, &started); err != nil {
		return nil, &ExecutionError{ID: ex.ID, Err: err}
	}
	if started.InterpretID == "" {
		return nil, &ExecutionError{ID: ex.ID, Err: errors.New("judge did not return an interpret id")}
	}

	replies, err := c.poll(ctx, started.InterpretID)
	if err != nil {
		return nil, &ExecutionError{ID: ex.ID, Err: err}
	}
	if len(replies) == 0 {
		return nil, &ExecutionError{ID: ex.ID, Err: ErrNoReplies}
	}
	return replies, nil
}

// poll queries the check endpoint until the interpretation finishes.
func (c *HTTPClient) poll(ctx context.Context, interpretID string) ([]Reply, error) {
	path := "/api/checks/" + url.PathEscape(interpretID)
	for attempt := 1; ; attempt++ {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
			return nil, err
		}

		replies, done, err := decodeCheck(raw)
		if err != nil {
			return nil, err
		}
		if done {
			return replies, nil
		}
		c.debug("interpretation still running", "id", interpretID, "attempt", attempt)

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("waiting for judge: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// decodeCheck interprets one check response. A response whose state is
// PENDING or STARTED is not done. A finished response is either a single
// reply object or {"replies": [...]}.
func decodeCheck(raw json.RawMessage) ([]Reply, bool, error) {
	var probe struct {
		State   Value   `json:"state"`
		Replies []Reply `json:"replies"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false, fmt.Errorf("decoding check response: %w", err)
	}
	if len(probe.State) == 1 && (probe.State[0] == checkPending || probe.State[0] == checkStarted) {
		return nil, false, nil
	}
	if probe.Replies != nil {
		return probe.Replies, true, nil
	}
	var single Reply
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, false, fmt.Errorf("decoding reply: %w", err)
	}
	return []Reply{single}, true, nil
}

// do sends one request and decodes a JSON response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	c.debug("judge request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, truncate(data, maxErrorBody))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) debug(msg string, kv ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, kv...)
	}
}

func truncate(data []byte, n int) string {
	s := strings.TrimSpace(string(data))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
