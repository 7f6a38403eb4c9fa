package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/nativemap/errors"
)

// Count sizes a text or array field. It is either a literal or a reference
// to an earlier integer field of the same schema whose decoded value
// supplies the count. The zero Count is unset.
type Count struct {
	ref     string
	literal int
	index   int
	set     bool
}

// Literal returns a fixed count.
func Literal(n int) Count {
	return Count{literal: n, index: -1, set: true}
}

// CountFrom returns a count read from the named sibling field at decode time.
func CountFrom(field string) Count {
	return Count{ref: field, index: -1, set: true}
}

// ParseCount parses the textual count convention: a string of decimal
// digits is a literal, anything else names a sibling field. An empty
// string yields an unset Count.
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Count{}, nil
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Count{}, errors.New(errors.PhaseSchema, errors.KindInvalidCount).
				Value(s).
				Cause(err).
				Detail("count literal %q out of range", s).
				Build()
		}
		return Literal(int(n)), nil
	}
	return CountFrom(s), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsSet reports whether the count was specified.
func (c Count) IsSet() bool {
	return c.set
}

// IsDynamic reports whether the count is read from a sibling field.
func (c Count) IsDynamic() bool {
	return c.set && c.ref != ""
}

// Value returns the literal count, 0 for dynamic or unset counts.
func (c Count) Value() int {
	if c.IsDynamic() {
		return 0
	}
	return c.literal
}

// Ref returns the referenced field name of a dynamic count.
func (c Count) Ref() string {
	return c.ref
}

// Index returns the position of the referenced field within its schema, or
// -1 for literal counts and counts not yet bound to a schema.
func (c Count) Index() int {
	if !c.IsDynamic() {
		return -1
	}
	return c.index
}

func (c Count) String() string {
	switch {
	case !c.set:
		return ""
	case c.ref != "":
		return c.ref
	default:
		return strconv.Itoa(c.literal)
	}
}
