package codec

import (
	"golang.org/x/text/encoding"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

const scanChunk = 256

// scan reads units of 1 or 2 bytes from addr until stop reports true and
// returns the number of bytes before the stopping unit. Bounded sources are
// read in chunks clipped to their end; other sources one unit at a time so
// the scan never touches memory past the terminator.
func scan(mem nativemap.Memory, addr nativemap.Address, unit, max int, stop func(u uint16) bool) (int, error) {
	end := nativemap.Address(0)
	bounded, ok := mem.(nativemap.Bounded)
	if ok {
		_, end = bounded.Bounds()
	}

	for n := 0; n < max; {
		size := unit
		if ok {
			size = min(scanChunk, max-n)
			cur := addr.Add(uint64(n))
			if cur >= end {
				return 0, errors.OutOfBounds(uint64(cur), uint64(unit))
			}
			if avail := uint64(end - cur); avail < uint64(size) {
				size = int(avail)
			}
			size -= size % unit
			if size == 0 {
				return 0, errors.OutOfBounds(uint64(cur), uint64(unit))
			}
		}

		data, err := mem.Read(addr.Add(uint64(n)), uint32(size))
		if err != nil {
			return 0, err
		}
		for i := 0; i+unit <= len(data); i += unit {
			u := uint16(data[i])
			if unit == 2 {
				u |= uint16(data[i+1]) << 8
			}
			if stop(u) {
				return n + i, nil
			}
		}
		n += len(data)
	}

	return 0, errors.New(errors.PhaseDecode, errors.KindOverflow).
		Value(addr).
		Detail("no terminator within %d bytes of %s", max, addr).
		Build()
}

func isZero(u uint16) bool { return u == 0 }

// ScanNUL returns the length in bytes of the NUL-terminated string at addr.
func ScanNUL(mem nativemap.Memory, addr nativemap.Address, max int) (int, error) {
	return scan(mem, addr, 1, max, isZero)
}

// ScanWideNUL returns the length in bytes of the UTF-16 string at addr,
// excluding the 2-byte terminator.
func ScanWideNUL(mem nativemap.Memory, addr nativemap.Address, max int) (int, error) {
	return scan(mem, addr, 2, max, isZero)
}

// ScanDoubleNUL returns the length of the multi-string at addr up to, but
// not including, the second of two consecutive NUL bytes. The result keeps
// the terminator of the last entry.
func ScanDoubleNUL(mem nativemap.Memory, addr nativemap.Address, max int) (int, error) {
	prevNUL := false
	return scan(mem, addr, 1, max, func(u uint16) bool {
		if u != 0 {
			prevNUL = false
			return false
		}
		if prevNUL {
			return true
		}
		prevNUL = true
		return false
	})
}

// ReadText decodes exactly count bytes at addr with enc.
func ReadText(mem nativemap.Memory, addr nativemap.Address, count int, enc encoding.Encoding) (string, error) {
	if count <= 0 {
		return "", nil
	}
	data, err := mem.Read(addr, uint32(count))
	if err != nil {
		return "", err
	}
	return Decode(enc, data)
}

// ReadCString decodes the NUL-terminated string at addr with enc.
func ReadCString(mem nativemap.Memory, addr nativemap.Address, enc encoding.Encoding, max int) (string, error) {
	n, err := ScanNUL(mem, addr, max)
	if err != nil {
		return "", err
	}
	return ReadText(mem, addr, n, enc)
}

// ReadUTF16String decodes the wide-NUL-terminated UTF-16LE string at addr.
func ReadUTF16String(mem nativemap.Memory, addr nativemap.Address, max int) (string, error) {
	n, err := ScanWideNUL(mem, addr, max)
	if err != nil {
		return "", err
	}
	return ReadText(mem, addr, n, UTF16LE)
}

// ReadBSTR decodes a COM BSTR. addr points at the text; the byte length is
// stored in the four bytes before it.
func ReadBSTR(mem nativemap.Memory, addr nativemap.Address, max int) (string, error) {
	if addr < 4 {
		return "", errors.OutOfBounds(uint64(addr), 4)
	}
	n, err := mem.ReadU32(addr - 4)
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(max) {
		return "", errors.Overflow(errors.PhaseDecode, nil, n, max)
	}
	return ReadText(mem, addr, int(n&^1), UTF16LE)
}

// ReadMultiText decodes a window of count bytes holding NUL-separated
// strings. With count 0 the window ends at the double NUL terminator.
func ReadMultiText(mem nativemap.Memory, addr nativemap.Address, count int, enc encoding.Encoding, max int) ([]string, error) {
	if count <= 0 {
		n, err := ScanDoubleNUL(mem, addr, max)
		if err != nil {
			return nil, err
		}
		count = n
	}
	if count == 0 {
		return []string{}, nil
	}
	data, err := mem.Read(addr, uint32(count))
	if err != nil {
		return nil, err
	}
	return DecodeMulti(enc, data)
}

// DecodeMulti splits data with SplitMulti and decodes each entry.
func DecodeMulti(enc encoding.Encoding, data []byte) ([]string, error) {
	parts := SplitMulti(data)
	out := make([]string, len(parts))
	for i, p := range parts {
		s, err := Decode(enc, p)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
