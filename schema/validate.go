package schema

import (
	"math"
	"strconv"

	"github.com/wippyai/nativemap/errors"
)

func (s *Schema) validateHeader() error {
	if s.name == "" {
		return errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Detail("schema name is empty").
			Build()
	}
	if !s.platform.Valid() {
		return errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Schema(s.name).
			Value(s.platform).
			Detail("unsupported pointer size %d", s.platform.PointerSize).
			Build()
	}
	switch s.align {
	case 1, 2, 4, 8:
		if s.align <= s.platform.MaxAlign {
			return nil
		}
	}
	return errors.InvalidAlignment(s.name, s.align, s.platform.MaxAlign)
}

// validateField checks f against the fields before position i and binds a
// dynamic count to the index of the field it names.
func (s *Schema) validateField(i int, f *Field) error {
	if f.Name == "" {
		return errors.InvalidField(s.name, "#"+strconv.Itoa(i), "field name is empty")
	}
	if _, dup := s.index[f.Name]; dup {
		return errors.DuplicateField(s.name, f.Name)
	}
	if !f.Kind.Valid() {
		return errors.InvalidField(s.name, f.Name, "unknown field kind")
	}
	if err := s.validateTarget(f); err != nil {
		return err
	}
	if f.Encoding != "" && !f.Kind.AcceptsEncoding() && !(f.Kind.IsArray() && f.Elem.AcceptsEncoding()) {
		return errors.InvalidField(s.name, f.Name, "encoding applies to text kinds only, not "+f.Kind.String())
	}
	return s.validateCount(f)
}

func (s *Schema) validateTarget(f *Field) error {
	switch f.Kind {
	case KindArray, KindPointerToArray:
		if f.Elem != KindInvalid {
			if f.Target != nil {
				return errors.InvalidField(s.name, f.Name, "array declares both a target schema and an element kind")
			}
			if !f.Elem.IsElement() {
				return errors.InvalidField(s.name, f.Name, "element kind "+f.Elem.String()+" cannot be arrayed")
			}
			return nil
		}
		if f.Target == nil {
			return errors.MissingTarget(s.name, f.Name, f.Kind.String())
		}
	case KindStruct, KindArrayOfPointers, KindPointerToArrayOfPointers:
		if f.Target == nil {
			return errors.MissingTarget(s.name, f.Name, f.Kind.String())
		}
	case KindPointer:
	default:
		if f.Target != nil {
			return errors.InvalidField(s.name, f.Name, f.Kind.String()+" field takes no target schema")
		}
	}
	if f.Elem != KindInvalid {
		return errors.InvalidField(s.name, f.Name, f.Kind.String()+" field takes no element kind")
	}
	if f.Target != nil && f.Target != s && f.Target.platform != s.platform {
		return errors.InvalidField(s.name, f.Name, "target schema "+f.Target.name+" is laid out for a different platform")
	}
	return nil
}

func (s *Schema) validateCount(f *Field) error {
	c := f.Count
	if !c.IsSet() {
		if f.Kind.RequiresCount() {
			return errors.InvalidCount(s.name, f.Name, f.Kind.String()+" field requires a count")
		}
		return nil
	}
	if !f.Kind.AcceptsCount() {
		return errors.InvalidCount(s.name, f.Name, f.Kind.String()+" field takes no count")
	}
	if !c.IsDynamic() {
		if f.Kind.RequiresDynamicCount() {
			return errors.InvalidCount(s.name, f.Name, f.Kind.String()+" field must be sized by an earlier integer field")
		}
		if c.literal < 0 || c.literal > math.MaxInt32 {
			return errors.InvalidCount(s.name, f.Name, "count literal "+strconv.Itoa(c.literal)+" out of range")
		}
		return nil
	}

	j, ok := s.index[c.ref]
	if !ok {
		if c.ref == f.Name {
			return errors.InvalidCount(s.name, f.Name, "count refers to the field it sizes")
		}
		return errors.InvalidCount(s.name, f.Name, "count field "+strconv.Quote(c.ref)+" is not declared before this field")
	}
	if k := s.fields[j].Kind; !k.IsInteger() {
		return errors.InvalidCount(s.name, f.Name, "count field "+strconv.Quote(c.ref)+" has non-integer kind "+k.String())
	}
	f.Count.index = j
	return nil
}
