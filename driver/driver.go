// Package driver runs conformance test cases: it evaluates query and
// expected-value source text, executes the query over a live connection,
// feeds the outcome into the matcher algebra, and reports mismatches.
package driver

import (
	"context"
	"fmt"

	"github.com/rqlconform/rqlconform/corpus"
	"github.com/rqlconform/rqlconform/expr"
	"github.com/rqlconform/rqlconform/matcher"
	"github.com/rqlconform/rqlconform/report"
	"github.com/rqlconform/rqlconform/value"
)

// Runner executes one query term over a live connection and returns the
// result value or the error the server threw. *client.Conn implements it.
type Runner interface {
	Run(ctx context.Context, term value.Value) (value.Value, error)
}

// Session drives one conformance run. It owns the run-wide scope and the
// connection; both live for the whole process. Tests run strictly
// sequentially, and nothing is retried or reset between them.
type Session struct {
	runner Runner
	scope  *expr.Scope
	out    *report.Reporter

	total int
}

// NewSession returns a session executing queries over runner and
// reporting failures through out.
func NewSession(runner Runner, out *report.Reporter) *Session {
	return &Session{
		runner: runner,
		scope:  expr.NewScope(),
		out:    out,
	}
}

// Define evaluates a "name = expression" statement and binds the result
// into the run-wide scope. A define that fails is fatal to the run: later
// tests assume the binding exists, so the error is returned instead of
// reported.
func (s *Session) Define(src string) error {
	if err := expr.EvalDefine(src, s.scope); err != nil {
		return fmt.Errorf("failed to evaluate define %q: %w", src, err)
	}

	return nil
}

// Test runs one test case. An empty expected source means the test
// carries no expectation and any outcome, including a thrown error,
// passes. All failures are reported, never returned; a failed test does
// not affect later tests.
func (s *Session) Test(ctx context.Context, query, expected, name string) {
	s.total++

	want := matcher.Any()

	if expected != "" {
		raw, err := expr.EvalString(expected, s.scope)
		if err != nil {
			s.out.Failure(name, query, fmt.Sprintf("Error evaluating expected result:\n\t%s", value.FromGoError(err)))
			return
		}

		want = matcher.For(raw)
	}

	// Build the query. If it cannot even be evaluated, the only
	// acceptable expectation is an error matcher; either way the test
	// ends here because there is no query to run.
	term, err := expr.EvalString(query, s.scope)
	if err != nil {
		s.checkError(err, want, query, name, "evaluating test source")
		return
	}

	actual, err := s.runner.Run(ctx, term)
	if err != nil {
		s.checkError(err, want, query, name, "running test on server")
		return
	}

	if !want.Matches(actual) {
		s.out.Failure(name, query, fmt.Sprintf(
			"Result is not equal to expected result:\n\tVALUE: %s\n\tEXPECTED: %s\n\tDIFF: %s",
			actual, want, report.Diff(want.String(), actual.String())))
	}
}

// checkError handles a thrown error from either evaluation or execution:
// it passes only if the expectation is an error matcher that matches.
func (s *Session) checkError(err error, want matcher.Matcher, query, name, stage string) {
	// An empty expectation accepts every outcome, thrown errors included.
	if _, ok := want.(matcher.AcceptAll); ok {
		return
	}

	errVal := value.FromGoError(err)

	errMatcher, expectedError := want.(*matcher.Error)
	if !expectedError {
		s.out.Failure(name, query, fmt.Sprintf("Error %s:\n\t%s", stage, errVal))
		return
	}

	if !errMatcher.Matches(errVal) {
		s.out.Failure(name, query, fmt.Sprintf(
			"Error %s not equal to expected err:\n\tERROR: %s\n\tEXPECTED: %s",
			stage, errVal, errMatcher))
	}
}

// RunEntries executes corpus entries in order. A failing define aborts
// the run; test failures are reported and the run continues.
func (s *Session) RunEntries(ctx context.Context, entries []corpus.Entry) error {
	for _, entry := range entries {
		if entry.Define != "" {
			if err := s.Define(entry.Define); err != nil {
				return err
			}

			continue
		}

		if entry.Test != nil {
			s.Test(ctx, entry.Test.Query, entry.Test.Expected, entry.Test.Name)
		}
	}

	return nil
}

// Total returns the number of tests attempted so far.
func (s *Session) Total() int {
	return s.total
}

// Failures returns the number of tests that produced a failure report.
func (s *Session) Failures() int {
	return s.out.Failures()
}
