package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/config"
)

// stubJudge serves one exercise and answers every interpretation with reply.
type stubJudge struct {
	exercise string
	reply    string

	mu        sync.Mutex
	fetches   int
	testCases []string
}

func (s *stubJudge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/exercises/1":
		s.mu.Lock()
		s.fetches++
		s.mu.Unlock()
		_, _ = w.Write([]byte(s.exercise))
	case r.Method == http.MethodPost && r.URL.Path == "/api/exercises/1/interpret":
		var body struct {
			TestCase string `json:"testcase"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.testCases = append(s.testCases, body.TestCase)
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"interpret_id":"run-1"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/checks/run-1":
		_, _ = w.Write([]byte(s.reply))
	default:
		http.NotFound(w, r)
	}
}

func (s *stubJudge) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func (s *stubJudge) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.testCases...)
}

const passingReply = `{"ok":true,"state":"Accepted","answer":"[0,1]","runtime":"4 ms","expected_answer":"[0,1]"}`

// setupTestCmd points drill at a stub judge and returns a solution file for
// exercise 1.
func setupTestCmd(t *testing.T, judge *stubJudge) string {
	t.Helper()
	resetRootCmd(t)
	dir := chdirTemp(t)

	srv := httptest.NewServer(judge)
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvCacheDir, filepath.Join(dir, "cache"))

	origStdin, origStderr := stdinIsTerminal, stderrIsTerminal
	stdinIsTerminal = func() bool { return false }
	stderrIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdinIsTerminal, stderrIsTerminal = origStdin, origStderr
	})

	path := filepath.Join(dir, "1.two-sum.cpp")
	require.NoError(t, os.WriteFile(path, []byte("class Solution {};"), 0o644))
	return path
}

func TestTestCmd_Registration(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"test"})
	require.NoError(t, err)
	assert.Equal(t, "test <filename>", cmd.Use)
	assert.Equal(t, []string{"run"}, cmd.Aliases)
	assert.Contains(t, cmd.Example, `drill test 1.two-sum.cpp -t "[1,2,3]\n4"`)

	for _, tt := range []struct{ name, short string }{
		{"interactive", "i"},
		{"testcase", "t"},
		{"no-cache", ""},
	} {
		f := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, f, "flag %q", tt.name)
		assert.Equal(t, tt.short, f.Shorthand)
	}
}

func TestTestCmd_DefaultTestCase(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"[2,7,11,15]\n9"}`, reply: passingReply}
	path := setupTestCmd(t, judge)

	stdout, stderr, code := captureOutput(t, "test", path)

	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "  ✔ Finished\n"+
		"  ✔ Your Input: [2,7,11,15]\n9\n"+
		"  ✔ Output (4 ms): [0,1]\n"+
		"  ✔ Expected Answer: [0,1]\n", stdout)
	assert.Equal(t, []string{"[2,7,11,15]\n9"}, judge.received())
}

func TestTestCmd_FailingReply(t *testing.T) {
	judge := &stubJudge{
		exercise: `{"id":"1","testable":true,"testcase":"1"}`,
		reply:    `{"ok":false,"state":"Accepted","answer":"[1,1]","expected_answer":"[0,1]","stdout":"\"debug\\nline\""}`,
	}
	path := setupTestCmd(t, judge)

	stdout, _, code := captureOutput(t, "run", path)

	assert.Equal(t, 0, code, "a wrong answer is still a successful run")
	assert.NotContains(t, stdout, "Accepted")
	assert.NotContains(t, stdout, "Finished")
	assert.Contains(t, stdout, "  ✘ Output: [1,1]\n")
	assert.Contains(t, stdout, "  ✘ Stdout: debug\nline\n")
}

func TestTestCmd_TestCaseFlag(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"default"}`, reply: passingReply}
	path := setupTestCmd(t, judge)

	_, _, code := captureOutput(t, "test", path, "-t", `[1,2,3]\n4`)

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"[1,2,3]\n4"}, judge.received())
}

func TestTestCmd_InteractiveReadsStdin(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"default"}`, reply: passingReply}
	path := setupTestCmd(t, judge)
	rootCmd.SetIn(strings.NewReader("[9]\n10"))

	stdout, _, code := captureOutput(t, "test", path, "-i")

	require.Equal(t, 0, code)
	assert.Equal(t, []string{"[9]\n10"}, judge.received())
	assert.Contains(t, stdout, "Your Input: [9]\n10")
}

func TestTestCmd_MissingFileIsFatal(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"1"}`, reply: passingReply}
	setupTestCmd(t, judge)

	stdout, stderr, code := captureOutput(t, "test", "404.nothing.cpp")

	assert.Equal(t, exitFatal, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "file does not exist: 404.nothing.cpp")
	assert.Zero(t, judge.fetchCount(), "the judge is never contacted")
}

func TestTestCmd_NotTestable(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":false,"testcase":"1"}`, reply: passingReply}
	path := setupTestCmd(t, judge)

	stdout, stderr, code := captureOutput(t, "test", path)

	assert.Equal(t, exitFailed, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "not testable? please submit directly!")
	assert.Empty(t, judge.received())
}

func TestTestCmd_MissingTestCase(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true}`, reply: passingReply}
	path := setupTestCmd(t, judge)

	stdout, stderr, code := captureOutput(t, "test", path, "-t", "")

	assert.Equal(t, exitFailed, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "missing testcase?")
	assert.Equal(t, 1, strings.Count(stderr, "missing testcase?"), "reported exactly once")
}

func TestTestCmd_UnknownLanguage(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"1"}`, reply: passingReply}
	path := setupTestCmd(t, judge)
	odd := strings.TrimSuffix(path, ".cpp") + ".cobol"
	require.NoError(t, os.Rename(path, odd))

	_, stderr, code := captureOutput(t, "test", odd)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "language")
	assert.Zero(t, judge.fetchCount())
}

func TestTestCmd_JudgeDown(t *testing.T) {
	path := setupTestCmd(t, &stubJudge{})
	t.Setenv(config.EnvBaseURL, "http://127.0.0.1:1")

	_, stderr, code := captureOutput(t, "test", path, "--no-cache")

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "fetching exercise 1")
}

func TestTestCmd_ExerciseCache(t *testing.T) {
	judge := &stubJudge{exercise: `{"id":"1","testable":true,"testcase":"1"}`, reply: passingReply}
	path := setupTestCmd(t, judge)

	_, _, code := captureOutput(t, "test", path)
	require.Equal(t, 0, code)
	resetRootCmd(t)
	_, _, code = captureOutput(t, "test", path)
	require.Equal(t, 0, code)
	assert.Equal(t, 1, judge.fetchCount(), "second run is served from the cache")

	resetRootCmd(t)
	_, _, code = captureOutput(t, "test", path, "--no-cache")
	require.Equal(t, 0, code)
	assert.Equal(t, 2, judge.fetchCount(), "--no-cache goes to the judge")
}

func TestTestCmd_RequiresFilename(t *testing.T) {
	resetRootCmd(t)
	_, stderr, code := captureOutput(t, "test")
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr, "accepts 1 arg")
}
