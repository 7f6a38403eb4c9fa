package schema

import (
	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

// Self stands for the schema under construction. A pointer-shaped field
// targeting Self points at an instance of its own schema.
var Self = &Schema{name: "<self>"}

// Schema is an immutable description of a native composite type. A Schema
// returned by New or a Registry has been validated.
type Schema struct {
	index    map[string]int
	name     string
	fields   []Field
	align    int
	platform nativemap.Platform
}

// New validates and returns a schema laid out for the 64-bit native platform.
func New(name string, align int, fields ...Field) (*Schema, error) {
	return NewForPlatform(nativemap.Native64, name, align, fields...)
}

// NewForPlatform validates and returns a schema laid out for p.
func NewForPlatform(p nativemap.Platform, name string, align int, fields ...Field) (*Schema, error) {
	s := &Schema{name: name, align: align, platform: p}
	if err := s.init(fields); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is like New but panics on a schema error.
func MustNew(name string, align int, fields ...Field) *Schema {
	s, err := New(name, align, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) init(fields []Field) error {
	if err := s.validateHeader(); err != nil {
		return err
	}

	s.fields = make([]Field, len(fields))
	s.index = make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Target == Self {
			if f.Kind.IsInline() {
				return errors.Cycle([]string{s.name, f.Name, s.name})
			}
			f.Target = s
		}
		if err := s.validateField(i, &f); err != nil {
			return err
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return nil
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// DeclaredAlign returns the struct-level alignment cap.
func (s *Schema) DeclaredAlign() int {
	return s.align
}

// Platform returns the ABI the schema is laid out for.
func (s *Schema) Platform() nativemap.Platform {
	return s.platform
}

// PointerSize returns the width of a pointer slot.
func (s *Schema) PointerSize() int {
	return s.platform.PointerSize
}

// NumFields returns the number of fields.
func (s *Schema) NumFields() int {
	return len(s.fields)
}

// Field returns the i'th field.
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Index returns the position of the named field.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// FieldByName returns the named field.
func (s *Schema) FieldByName(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) String() string {
	return s.name
}
