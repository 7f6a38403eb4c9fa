package schema

import "strings"

// Kind is the closed set of field representations.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindWChar
	KindText
	KindMultiText
	KindStruct
	KindArray
	KindArrayOfPointers
	KindPointer
	KindPointerToBSTR
	KindPointerToANSI
	KindPointerToUTF8
	KindPointerToUTF16
	KindPointerToString
	KindPointerToMultiText
	KindPointerToArray
	KindPointerToArrayOfPointers
	kindCount
)

var kindNames = [...]string{
	KindInvalid:                  "invalid",
	KindBool:                     "bool",
	KindInt8:                     "int8",
	KindUint8:                    "uint8",
	KindInt16:                    "int16",
	KindUint16:                   "uint16",
	KindInt32:                    "int32",
	KindUint32:                   "uint32",
	KindInt64:                    "int64",
	KindUint64:                   "uint64",
	KindFloat32:                  "float32",
	KindFloat64:                  "float64",
	KindWChar:                    "wchar",
	KindText:                     "text",
	KindMultiText:                "multi-text",
	KindStruct:                   "struct",
	KindArray:                    "array",
	KindArrayOfPointers:          "array-of-pointers",
	KindPointer:                  "pointer",
	KindPointerToBSTR:            "pointer-to-bstr",
	KindPointerToANSI:            "pointer-to-ansi",
	KindPointerToUTF8:            "pointer-to-utf8",
	KindPointerToUTF16:           "pointer-to-utf16",
	KindPointerToString:          "pointer-to-string",
	KindPointerToMultiText:       "pointer-to-multi-text",
	KindPointerToArray:           "pointer-to-array",
	KindPointerToArrayOfPointers: "pointer-to-array-of-pointers",
}

// C/C++ and Windows spellings accepted by ParseKind. long is 4 bytes (LLP64).
var kindAliases = map[string]Kind{
	"boolean":                 KindBool,
	"char":                    KindInt8,
	"signed char":             KindInt8,
	"unsigned char":           KindUint8,
	"byte":                    KindUint8,
	"short":                   KindInt16,
	"int16_t":                 KindInt16,
	"unsigned short":          KindUint16,
	"word":                    KindUint16,
	"int":                     KindInt32,
	"long":                    KindInt32,
	"int32_t":                 KindInt32,
	"unsigned int":            KindUint32,
	"unsigned long":           KindUint32,
	"dword":                   KindUint32,
	"long long":               KindInt64,
	"int64_t":                 KindInt64,
	"unsigned long long":      KindUint64,
	"qword":                   KindUint64,
	"int8_t":                  KindInt8,
	"uint8_t":                 KindUint8,
	"uint16_t":                KindUint16,
	"uint32_t":                KindUint32,
	"uint64_t":                KindUint64,
	"float":                   KindFloat32,
	"double":                  KindFloat64,
	"wchar_t":                 KindWChar,
	"string":                  KindText,
	"multi-string":            KindMultiText,
	"bstr":                    KindPointerToBSTR,
	"unsigned int8":           KindUint8,
	"unsigned int16":          KindUint16,
	"unsigned int32":          KindUint32,
	"unsigned int64":          KindUint64,
	"pointer-to-multi-string": KindPointerToMultiText,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind resolves a kind name or one of its C spellings. Matching is
// case-insensitive and treats '_' as '-'.
func ParseKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "_", "-")
	for k := KindBool; k < kindCount; k++ {
		if kindNames[k] == n {
			return k, true
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, true
	}
	if k, ok := kindAliases[strings.ReplaceAll(n, "-", " ")]; ok {
		return k, true
	}
	if k, ok := kindAliases[strings.ReplaceAll(n, "-", "_")]; ok {
		return k, true
	}
	return KindInvalid, false
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsScalar reports whether k is a fixed-width value read in place.
func (k Kind) IsScalar() bool {
	return k >= KindBool && k <= KindWChar
}

// IsInteger reports whether values of k can size a dynamic count.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUint64
}

// Width returns the byte width of a scalar kind, 0 otherwise.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16, KindWChar:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsPointer reports whether a field of kind k occupies one pointer slot.
func (k Kind) IsPointer() bool {
	return k >= KindPointer && k <= KindPointerToArrayOfPointers
}

// IsTextPointer reports whether k dereferences to character data.
func (k Kind) IsTextPointer() bool {
	return k >= KindPointerToBSTR && k <= KindPointerToMultiText
}

// IsArray reports whether k produces a sequence of elements.
func (k Kind) IsArray() bool {
	switch k {
	case KindArray, KindArrayOfPointers, KindPointerToArray, KindPointerToArrayOfPointers:
		return true
	}
	return false
}

// IsInline reports whether k embeds its target schema by value.
func (k Kind) IsInline() bool {
	return k == KindStruct || k == KindArray
}

// NeedsTarget reports whether k requires a target schema. Array kinds may
// use an element kind instead.
func (k Kind) NeedsTarget() bool {
	return k == KindStruct || k.IsArray()
}

// IsElement reports whether k may be used as the element kind of an array.
func (k Kind) IsElement() bool {
	if k.IsScalar() {
		return true
	}
	switch k {
	case KindPointer, KindPointerToBSTR, KindPointerToANSI, KindPointerToUTF8,
		KindPointerToUTF16, KindPointerToString:
		return true
	}
	return false
}

// AcceptsEncoding reports whether k decodes text with a named encoding.
func (k Kind) AcceptsEncoding() bool {
	switch k {
	case KindText, KindMultiText, KindPointerToString, KindPointerToMultiText:
		return true
	}
	return false
}

// RequiresCount reports whether k cannot be decoded without a count.
func (k Kind) RequiresCount() bool {
	switch k {
	case KindText, KindMultiText, KindArray, KindArrayOfPointers,
		KindPointerToArray, KindPointerToArrayOfPointers:
		return true
	}
	return false
}

// AcceptsCount reports whether k may carry a count specifier.
func (k Kind) AcceptsCount() bool {
	return k.RequiresCount() || k == KindPointerToString || k == KindPointerToMultiText
}

// RequiresDynamicCount reports whether k must be sized by a sibling field.
func (k Kind) RequiresDynamicCount() bool {
	return k == KindPointerToArray || k == KindPointerToArrayOfPointers
}
