package matcher

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/rqlconform/rqlconform/value"
)

// detailSuffix matches the ":\n<offending object dump>" tail some servers
// append to runtime error messages. It is replaced with a single period
// before message comparison so diagnostic payloads do not break equality.
var detailSuffix = regexp.MustCompile(`(?s):\n.*`)

// Error matches a thrown error by kind name and normalized message. Both
// parts are optional; an unset part always passes. Stack frames are
// accepted by the constructor but never compared.
type Error struct {
	kind    string
	message string
	hasMsg  bool
}

// NewError builds an error matcher. Empty kind means any kind. hasMessage
// distinguishes "no message expectation" from expecting an empty message.
func NewError(kind, message string, hasMessage bool) *Error {
	return &Error{kind: kind, message: message, hasMsg: hasMessage}
}

func (m *Error) Matches(actual value.Value) bool {
	if actual.Kind != value.KindError {
		return false
	}

	if m.kind != "" && m.kind != actual.Err.Kind {
		return false
	}

	if m.hasMsg && m.message != NormalizeErrorMessage(actual.Err.Message) {
		return false
	}

	return true
}

func (m *Error) String() string {
	if m.hasMsg {
		return fmt.Sprintf("err(%q, %q)", m.kind, m.message)
	}

	return fmt.Sprintf("err(%q)", m.kind)
}

// NormalizeErrorMessage strips the trailing colon-newline detail dump from
// a server error message, replacing it with a period.
func NormalizeErrorMessage(msg string) string {
	return detailSuffix.ReplaceAllString(msg, ".")
}

// Length matches any sequence of a fixed length. An optional element rule
// is applied to every element of the actual sequence.
type Length struct {
	length  int
	elem    value.Value
	hasElem bool
}

// NewLength builds a length matcher without an element rule.
func NewLength(length int) Length {
	return Length{length: length}
}

// NewLengthWithElem builds a length matcher that also requires every
// element of the actual sequence to satisfy the given expected value.
func NewLengthWithElem(length int, elem value.Value) Length {
	return Length{length: length, elem: elem, hasElem: true}
}

func (m Length) Matches(actual value.Value) bool {
	if actual.Kind != value.KindList {
		return false
	}

	if len(actual.List) != m.length {
		return false
	}

	if !m.hasElem {
		return true
	}

	for _, got := range actual.List {
		if !eq(m.elem, got) {
			return false
		}
	}

	return true
}

func (m Length) String() string {
	if m.hasElem {
		return fmt.Sprintf("arr(%d, %s)", m.length, m.elem)
	}

	return fmt.Sprintf("arr(%d)", m.length)
}

// canonicalUUID accepts only the canonical 8-4-4-4-12 lowercase form.
var canonicalUUID = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Pattern matches any string holding a canonical opaque identifier.
type Pattern struct{}

// NewUUID builds a matcher for canonical identifier strings.
func NewUUID() Pattern {
	return Pattern{}
}

func (Pattern) Matches(actual value.Value) bool {
	if actual.Kind != value.KindString {
		return false
	}

	if !canonicalUUID.MatchString(actual.Str) {
		return false
	}

	_, err := uuid.Parse(actual.Str)

	return err == nil
}

func (Pattern) String() string {
	return "uuid()"
}
