package schema

// Field describes one member of a schema. Target names the nested schema of
// composite and pointer-to-composite kinds; array kinds may instead carry an
// element Kind. Encoding applies to text kinds only.
type Field struct {
	Target   *Schema
	Name     string
	Encoding string
	Count    Count
	Kind     Kind
	Elem     Kind
}

// WithEncoding returns a copy of f decoded with the named text encoding.
func (f Field) WithEncoding(name string) Field {
	f.Encoding = name
	return f
}

// WithCount returns a copy of f sized by c.
func (f Field) WithCount(c Count) Field {
	f.Count = c
	return f
}

// IsDynamic reports whether the field is sized by a sibling field.
func (f Field) IsDynamic() bool {
	return f.Count.IsDynamic()
}

// ElemKind returns the kind of each array element: Elem when set, otherwise
// KindStruct for schema arrays and KindPointer for pointer arrays.
func (f Field) ElemKind() Kind {
	if f.Elem != KindInvalid {
		return f.Elem
	}
	switch f.Kind {
	case KindArray, KindPointerToArray:
		return KindStruct
	case KindArrayOfPointers, KindPointerToArrayOfPointers:
		return KindPointer
	}
	return KindInvalid
}

func scalar(name string, k Kind) Field {
	return Field{Name: name, Kind: k}
}

// Bool is a 1-byte flag; any non-zero byte decodes as true.
func Bool(name string) Field { return scalar(name, KindBool) }

// Int8 is a signed byte.
func Int8(name string) Field { return scalar(name, KindInt8) }

// Uint8 is an unsigned byte.
func Uint8(name string) Field { return scalar(name, KindUint8) }

// Int16 is a little-endian signed 16-bit integer.
func Int16(name string) Field { return scalar(name, KindInt16) }

// Uint16 is a little-endian unsigned 16-bit integer.
func Uint16(name string) Field { return scalar(name, KindUint16) }

// Int32 is a little-endian signed 32-bit integer.
func Int32(name string) Field { return scalar(name, KindInt32) }

// Uint32 is a little-endian unsigned 32-bit integer.
func Uint32(name string) Field { return scalar(name, KindUint32) }

// Int64 is a little-endian signed 64-bit integer.
func Int64(name string) Field { return scalar(name, KindInt64) }

// Uint64 is a little-endian unsigned 64-bit integer.
func Uint64(name string) Field { return scalar(name, KindUint64) }

// Float32 is an IEEE-754 single.
func Float32(name string) Field { return scalar(name, KindFloat32) }

// Float64 is an IEEE-754 double.
func Float64(name string) Field { return scalar(name, KindFloat64) }

// WChar is one UTF-16 code unit.
func WChar(name string) Field { return scalar(name, KindWChar) }

// Text is an inline character buffer of count bytes. The decoded string
// keeps every byte, NULs included.
func Text(name string, count Count) Field {
	return Field{Name: name, Kind: KindText, Count: count}
}

// MultiText is an inline window of count bytes holding NUL-separated
// strings, terminated early by an empty one.
func MultiText(name string, count Count) Field {
	return Field{Name: name, Kind: KindMultiText, Count: count}
}

// Struct embeds one instance of target by value.
func Struct(name string, target *Schema) Field {
	return Field{Name: name, Kind: KindStruct, Target: target}
}

// Array embeds count instances of target back to back.
func Array(name string, target *Schema, count Count) Field {
	return Field{Name: name, Kind: KindArray, Target: target, Count: count}
}

// ArrayOf embeds count elements of a scalar or pointer kind.
func ArrayOf(name string, elem Kind, count Count) Field {
	return Field{Name: name, Kind: KindArray, Elem: elem, Count: count}
}

// ArrayOfPointers embeds count pointer slots, each addressing a target instance.
func ArrayOfPointers(name string, target *Schema, count Count) Field {
	return Field{Name: name, Kind: KindArrayOfPointers, Target: target, Count: count}
}

// Pointer is a single pointer slot. A nil target decodes to the raw address.
func Pointer(name string, target *Schema) Field {
	return Field{Name: name, Kind: KindPointer, Target: target}
}

// PointerTo is a pointer slot addressing NUL-terminated text of the given kind.
func PointerTo(name string, k Kind) Field {
	return Field{Name: name, Kind: k}
}

// PointerToArray addresses count target instances stored out of line.
func PointerToArray(name string, target *Schema, count Count) Field {
	return Field{Name: name, Kind: KindPointerToArray, Target: target, Count: count}
}

// PointerToArrayOf addresses count out-of-line elements of a scalar or
// pointer kind, such as a char** argument vector.
func PointerToArrayOf(name string, elem Kind, count Count) Field {
	return Field{Name: name, Kind: KindPointerToArray, Elem: elem, Count: count}
}

// PointerToArrayOfPointers addresses count out-of-line pointer slots.
func PointerToArrayOfPointers(name string, target *Schema, count Count) Field {
	return Field{Name: name, Kind: KindPointerToArrayOfPointers, Target: target, Count: count}
}
