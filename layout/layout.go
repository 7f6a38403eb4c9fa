package layout

import "github.com/wippyai/nativemap/schema"

// PaddingSize returns the bytes needed before a field at offset so that it
// starts on min(fieldAlign, structAlign).
func PaddingSize(offset, fieldAlign, structAlign int) int {
	eff := fieldAlign
	if structAlign < eff {
		eff = structAlign
	}
	if eff <= 1 {
		return 0
	}
	return (eff - offset%eff) % eff
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align int) int {
	if align <= 1 {
		return offset
	}
	return offset + (align-offset%align)%align
}

// NaturalAlign returns the uncapped alignment of f within s.
func NaturalAlign(s *schema.Schema, f schema.Field) int {
	switch f.Kind {
	case schema.KindText, schema.KindMultiText:
		return 1
	case schema.KindStruct:
		return Align(f.Target)
	case schema.KindArray:
		return ElemAlign(s, f)
	case schema.KindArrayOfPointers:
		return s.PointerSize()
	}
	if w := f.Kind.Width(); w > 0 {
		return w
	}
	return s.PointerSize()
}

// FieldAlign returns the effective alignment of f: its natural alignment
// capped by the declared alignment of s.
func FieldAlign(s *schema.Schema, f schema.Field) int {
	a := NaturalAlign(s, f)
	if d := s.DeclaredAlign(); d < a {
		return d
	}
	return a
}

// ElemAlign returns the alignment of one element of an array field.
func ElemAlign(s *schema.Schema, f schema.Field) int {
	switch k := f.ElemKind(); {
	case k == schema.KindStruct:
		return Align(f.Target)
	case k.IsScalar():
		return k.Width()
	default:
		return s.PointerSize()
	}
}

// ElemStride returns the distance between consecutive elements of an array
// field.
func ElemStride(s *schema.Schema, f schema.Field) int {
	switch k := f.ElemKind(); {
	case k == schema.KindStruct:
		return Stride(f.Target)
	case k.IsScalar():
		return k.Width()
	default:
		return s.PointerSize()
	}
}

// FieldSize returns the extent of f inside s when its count resolves to n.
// n is ignored for kinds without a count.
func FieldSize(s *schema.Schema, f schema.Field, n int) int {
	switch f.Kind {
	case schema.KindText, schema.KindMultiText:
		return n
	case schema.KindStruct:
		return Stride(f.Target)
	case schema.KindArray:
		return n * ElemStride(s, f)
	case schema.KindArrayOfPointers:
		return n * s.PointerSize()
	}
	if w := f.Kind.Width(); w > 0 {
		return w
	}
	return s.PointerSize()
}

// StaticCount returns the count used by the static layout: the literal for
// literal counts, 0 for dynamic or absent ones.
func StaticCount(f schema.Field) int {
	return f.Count.Value()
}
