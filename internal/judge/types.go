package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StateAccepted is the state string the judge reports for every finished
// interpretation, whether or not the answer matched. It carries no verdict;
// Reply.OK does.
const StateAccepted = "Accepted"

// Exercise is one coding problem as described by the judge. File and Lang are
// not part of the judge's payload; the runner attaches them before calling
// ExecuteTestCase.
type Exercise struct {
	ID       string `json:"id"`
	Slug     string `json:"slug,omitempty"`
	Title    string `json:"title,omitempty"`
	Testable bool   `json:"testable"`
	TestCase string `json:"testcase,omitempty"`

	File string `json:"-"`
	Lang string `json:"-"`
}

// Clone returns a copy that can be mutated independently.
func (e *Exercise) Clone() *Exercise {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Value is a judge text field that may arrive either as a single string or as
// an array of strings. Each element is one display line. A nil Value means the
// field was absent from the reply.
type Value []string

// Text returns a Value holding a single line.
func Text(s string) Value {
	return Value{s}
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}
	if data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("decoding text lines: %w", err)
		}
		if lines == nil {
			lines = []string{}
		}
		*v = lines
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding text: %w", err)
	}
	*v = Value{s}
	return nil
}

// MarshalJSON writes a single-line Value as a plain string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// Reply is one result record from executing a test case.
type Reply struct {
	OK             bool   `json:"ok"`
	State          Value  `json:"state,omitempty"`
	Error          Value  `json:"error,omitempty"`
	Answer         Value  `json:"answer,omitempty"`
	Runtime        string `json:"runtime,omitempty"`
	ExpectedAnswer Value  `json:"expected_answer,omitempty"`
	Stdout         Value  `json:"stdout,omitempty"`
}
