package report

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/fatih/color"
)

func TestFailureOutput(t *testing.T) {
	color.NoColor = true

	var sb strings.Builder

	r := New(&sb)
	r.Failure("add", "x + 1", "Result is not equal to expected result:\n\tVALUE: 6\n\tEXPECTED: 7")

	out := sb.String()

	assert.Contains(t, out, "TEST FAILURE: add")
	assert.Contains(t, out, "TEST BODY: x + 1")
	assert.Contains(t, out, "VALUE: 6")
	assert.Contains(t, out, "EXPECTED: 7")
	assert.True(t, strings.HasPrefix(out, "\n"), "diagnostic starts with a blank line")
	assert.True(t, strings.HasSuffix(out, "\n\n"), "diagnostic ends with a blank line")

	assert.Equal(t, 1, r.Failures())

	r.Failure("second", "y", "boom")
	assert.Equal(t, 2, r.Failures())
}

func TestDiff(t *testing.T) {
	color.NoColor = true

	out := Diff(`[1, 2, 3]`, `[1, 2, 4]`)

	assert.Contains(t, out, "1, 2")
}
