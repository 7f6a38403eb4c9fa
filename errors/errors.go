package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema  Phase = "schema"  // schema construction and validation
	PhaseDecode  Phase = "decode"  // memory to Go values
	PhaseMemory  Phase = "memory"  // byte source access
	PhaseLoad    Phase = "load"    // schema documents
	PhaseConvert Phase = "convert" // foreign type systems to schemas
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidAlignment Kind = "invalid_alignment"
	KindMissingTarget    Kind = "missing_target"
	KindInvalidCount     Kind = "invalid_count"
	KindDuplicateField   Kind = "duplicate_field"
	KindDuplicateSchema  Kind = "duplicate_schema"
	KindInvalidField     Kind = "invalid_field"
	KindCycle            Kind = "cycle"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindOverflow         Kind = "overflow"
	KindNotFound         Kind = "not_found"
	KindUnsupported      Kind = "unsupported"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
)

// ErrSchema matches every schema construction error via errors.Is.
var ErrSchema = &Error{Phase: PhaseSchema}

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Schema string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Schema != "" {
		b.WriteString(" in ")
		b.WriteString(e.Schema)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a Kind
// matches every error of its phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase != t.Phase {
		return false
	}
	return t.Kind == "" || e.Kind == t.Kind
}

// IsSchemaError reports whether err is, or wraps, a schema construction error.
func IsSchemaError(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Phase == PhaseSchema {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Schema sets the schema name
func (b *Builder) Schema(name string) *Builder {
	b.err.Schema = name
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidAlignment creates an error for a declared alignment outside {1,2,4,8}
// or above the platform limit.
func InvalidAlignment(schema string, align, max int) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindInvalidAlignment,
		Schema: schema,
		Detail: fmt.Sprintf("declared alignment %d must be a power of two not exceeding %d", align, max),
		Value:  align,
	}
}

// MissingTarget creates an error for a composite field without a target schema.
func MissingTarget(schema, field, kind string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindMissingTarget,
		Schema: schema,
		Path:   []string{field},
		Detail: fmt.Sprintf("%s field requires a target schema", kind),
	}
}

// InvalidCount creates an error for a count specifier that cannot be honored.
func InvalidCount(schema, field, detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindInvalidCount,
		Schema: schema,
		Path:   []string{field},
		Detail: detail,
	}
}

// DuplicateField creates an error for a repeated field name.
func DuplicateField(schema, field string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindDuplicateField,
		Schema: schema,
		Path:   []string{field},
		Detail: fmt.Sprintf("field %q declared more than once", field),
	}
}

// DuplicateSchema creates an error for a schema name already registered.
func DuplicateSchema(name string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindDuplicateSchema,
		Schema: name,
		Detail: "schema name already registered",
	}
}

// InvalidField creates an error for a malformed field descriptor.
func InvalidField(schema, field, detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindInvalidField,
		Schema: schema,
		Path:   []string{field},
		Detail: detail,
	}
}

// Cycle creates an error for schemas that contain themselves inline.
func Cycle(path []string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindCycle,
		Path:   path,
		Detail: "schema contains itself by value",
	}
}

// OutOfBounds creates an out of bounds error for a byte source read
func OutOfBounds(addr uint64, length uint64) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("read of %d bytes at 0x%x out of bounds", length, addr),
		Value:  addr,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v exceeds limit %v", value, limit),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath returns err with path prepended when err is an *Error; other
// errors are wrapped as decode errors at path.
func WithPath(err error, path []string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if len(e.Path) > 0 {
			return err
		}
		cp := *e
		cp.Path = path
		return &cp
	}
	e := InvalidData(PhaseDecode, path, "")
	e.Cause = err
	return e
}

// ParseFailed creates a schema document parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
