package nativemap

import "strconv"

// Address is a location in a foreign address space. The zero Address is the
// null pointer.
type Address uint64

// Null is the null pointer marker produced for unresolved pointer fields.
const Null Address = 0

// IsNull reports whether a is the null pointer.
func (a Address) IsNull() bool {
	return a == Null
}

// Add returns a advanced by n bytes.
func (a Address) Add(n uint64) Address {
	return a + Address(n)
}

func (a Address) String() string {
	return "0x" + strconv.FormatUint(uint64(a), 16)
}

// Memory is a read-only, little-endian byte source addressable by Address.
type Memory interface {
	Read(addr Address, length uint32) ([]byte, error)
	ReadU8(addr Address) (uint8, error)
	ReadU16(addr Address) (uint16, error)
	ReadU32(addr Address) (uint32, error)
	ReadU64(addr Address) (uint64, error)
}

// Bounded is implemented by byte sources with a known addressable range.
// Start is inclusive, end is exclusive.
type Bounded interface {
	Bounds() (start, end Address)
}

// Platform describes the native ABI a schema is laid out for.
type Platform struct {
	// PointerSize is the width of a pointer slot in bytes (4 or 8).
	PointerSize int
	// MaxAlign is the largest alignment a struct may declare.
	MaxAlign int
}

var (
	// Native64 is a 64-bit little-endian target (x86-64, arm64).
	Native64 = Platform{PointerSize: 8, MaxAlign: 8}
	// Wasm32 is a 32-bit target such as wasm32 linear memory or x86.
	// 8-byte scalars keep their natural alignment.
	Wasm32 = Platform{PointerSize: 4, MaxAlign: 8}
)

// Valid reports whether p has a supported pointer width.
func (p Platform) Valid() bool {
	return (p.PointerSize == 4 || p.PointerSize == 8) && p.MaxAlign >= p.PointerSize
}
