package testrun

import "errors"

// Sentinel errors for the outcomes a test run can stop with. Judge transport
// failures surface as *judge.FetchError and *judge.ExecutionError instead.
var (
	// ErrFileNotFound is fatal: nothing else is attempted.
	ErrFileNotFound = errors.New("file does not exist")

	ErrNotTestable     = errors.New("not testable? please submit directly!")
	ErrMissingTestCase = errors.New("missing testcase?")
	ErrStdinRead       = errors.New("reading test case from stdin")
)

// IsFatal reports whether err should terminate the process as a fatal error
// rather than an ordinary reported failure.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}
