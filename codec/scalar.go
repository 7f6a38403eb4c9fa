package codec

import (
	"math"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/schema"
)

// ReadScalar reads a value of scalar kind k at addr. Integers keep their
// width and signedness; a wide character is returned as a rune.
func ReadScalar(mem nativemap.Memory, addr nativemap.Address, k schema.Kind) (any, error) {
	switch k {
	case schema.KindBool:
		v, err := mem.ReadU8(addr)
		return v != 0, err
	case schema.KindInt8:
		v, err := mem.ReadU8(addr)
		return int8(v), err
	case schema.KindUint8:
		return mem.ReadU8(addr)
	case schema.KindInt16:
		v, err := mem.ReadU16(addr)
		return int16(v), err
	case schema.KindUint16:
		return mem.ReadU16(addr)
	case schema.KindWChar:
		v, err := mem.ReadU16(addr)
		return rune(v), err
	case schema.KindInt32:
		v, err := mem.ReadU32(addr)
		return int32(v), err
	case schema.KindUint32:
		return mem.ReadU32(addr)
	case schema.KindFloat32:
		v, err := mem.ReadU32(addr)
		return math.Float32frombits(v), err
	case schema.KindInt64:
		v, err := mem.ReadU64(addr)
		return int64(v), err
	case schema.KindUint64:
		return mem.ReadU64(addr)
	case schema.KindFloat64:
		v, err := mem.ReadU64(addr)
		return math.Float64frombits(v), err
	}
	return nil, errors.Unsupported(errors.PhaseDecode, k.String()+" is not a scalar kind")
}

// ReadPointer reads a pointer slot of width 4 or 8.
func ReadPointer(mem nativemap.Memory, addr nativemap.Address, width int) (nativemap.Address, error) {
	switch width {
	case 4:
		v, err := mem.ReadU32(addr)
		return nativemap.Address(v), err
	case 8:
		v, err := mem.ReadU64(addr)
		return nativemap.Address(v), err
	}
	return nativemap.Null, errors.Unsupported(errors.PhaseDecode, "pointer width must be 4 or 8")
}

// ToCount converts a decoded integer to an element count. It fails for
// non-integer values and for unsigned values that do not fit an int64.
func ToCount(value any) (int64, bool) {
	switch v := value.(type) {
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case int:
		return int64(v), true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	}
	return 0, false
}

// SafeMul multiplies two non-negative sizes, reporting overflow.
func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}
