// Package report formats and emits failure diagnostics. It is the only
// component that produces user-visible output when a test fails.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	failureHeaderFmt = color.New(color.FgRed, color.Bold).SprintfFunc()
	testBodyFmt      = color.New(color.FgCyan).SprintfFunc()
)

// Reporter writes structured, multi-line failure diagnostics. It never
// fails; write errors on the underlying stream are ignored.
type Reporter struct {
	w io.Writer

	failures int
}

// New returns a reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Failure emits one failure diagnostic: the test name, the query source
// under test, and a free-form message describing the mismatch.
func (r *Reporter) Failure(name, src, message string) {
	r.failures++

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, failureHeaderFmt("TEST FAILURE: %s", name))
	fmt.Fprintln(r.w, testBodyFmt("TEST BODY: %s", src))
	fmt.Fprintln(r.w, message)
	fmt.Fprintln(r.w)
}

// Failures returns the number of diagnostics emitted so far.
func (r *Reporter) Failures() int {
	return r.failures
}

// Diff renders a character-level diff between the expected and actual
// renderings, highlighting insertions and deletions for terminal output.
func Diff(expected, actual string) string {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(expected, actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}
