package testrun

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AbdelazizMoustafa10m/codedrill/internal/judge"
)

// Reply fields in display order.
const (
	FieldState          = "state"
	FieldError          = "error"
	FieldYourInput      = "your_input"
	FieldOutput         = "output"
	FieldExpectedAnswer = "expected_answer"
	FieldStdout         = "stdout"
)

// FieldOrder is the fixed order in which fields are rendered.
var FieldOrder = []string{
	FieldState,
	FieldError,
	FieldYourInput,
	FieldOutput,
	FieldExpectedAnswer,
	FieldStdout,
}

// finishedLabel replaces the state line of a successful run.
const finishedLabel = "Finished"

// Line is one rendered line. OK selects the success or failure style.
type Line struct {
	OK   bool
	Text string
}

// Group holds the lines produced for one reply field.
type Group struct {
	Field string
	Lines []Line
}

// Normalize turns the first judge reply into display groups in FieldOrder.
// Absent fields produce no group.
//
// The judge reports "Accepted" as the state even for wrong answers, so that
// value is never shown; success is read from reply.OK alone.
func Normalize(reply judge.Reply, testCase string) []Group {
	caser := cases.Title(language.English)
	var groups []Group

	add := func(field string, values judge.Value, extra string) {
		if values == nil {
			return
		}
		prefix := label(caser, field)
		if extra != "" {
			prefix += " (" + extra + ")"
		}
		g := Group{Field: field}
		for _, v := range values {
			g.Lines = append(g.Lines, Line{OK: reply.OK, Text: prefix + ": " + v})
		}
		groups = append(groups, g)
	}

	if g, ok := stateGroup(reply); ok {
		groups = append(groups, g)
	}
	add(FieldError, reply.Error, "")
	add(FieldYourInput, judge.Text(testCase), "")
	add(FieldOutput, reply.Answer, reply.Runtime)
	add(FieldExpectedAnswer, reply.ExpectedAnswer, "")
	add(FieldStdout, stdoutValue(reply.Stdout), "")

	return groups
}

func stateGroup(reply judge.Reply) (Group, bool) {
	if reply.State == nil {
		return Group{}, false
	}
	g := Group{Field: FieldState}
	if reply.OK {
		g.Lines = []Line{{OK: true, Text: finishedLabel}}
		return g, true
	}
	for _, v := range reply.State {
		if v == judge.StateAccepted {
			continue
		}
		g.Lines = append(g.Lines, Line{OK: false, Text: v})
	}
	return g, len(g.Lines) > 0
}

func stdoutValue(v judge.Value) judge.Value {
	if v == nil {
		return nil
	}
	out := make(judge.Value, len(v))
	for i, s := range v {
		out[i] = NormalizeStdout(s)
	}
	return out
}

// NormalizeStdout strips the judge's wrapping delimiters (the first and last
// character) and unescapes \n sequences.
func NormalizeStdout(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return ""
	}
	return UnescapeNewlines(string(r[1 : len(r)-1]))
}

// label turns a field name such as "expected_answer" into "Expected Answer".
func label(caser cases.Caser, field string) string {
	return caser.String(strings.ReplaceAll(field, "_", " "))
}
