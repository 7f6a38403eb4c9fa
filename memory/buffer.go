package memory

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

// Buffer is a little-endian byte slice mapped at a base address.
type Buffer struct {
	data []byte
	base nativemap.Address
	next int
}

// NewBuffer creates a zeroed buffer of size bytes mapped at base.
func NewBuffer(base nativemap.Address, size int) *Buffer {
	return &Buffer{data: make([]byte, size), base: base}
}

// FromBytes maps data at base without copying it.
func FromBytes(base nativemap.Address, data []byte) *Buffer {
	return &Buffer{data: data, base: base, next: len(data)}
}

// Base returns the address of the first byte.
func (b *Buffer) Base() nativemap.Address {
	return b.base
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Bounds implements nativemap.Bounded.
func (b *Buffer) Bounds() (start, end nativemap.Address) {
	return b.base, b.base.Add(uint64(len(b.data)))
}

func (b *Buffer) span(addr nativemap.Address, length uint64) (int, error) {
	if addr < b.base {
		return 0, errors.OutOfBounds(uint64(addr), length)
	}
	off := uint64(addr - b.base)
	if off > uint64(len(b.data)) || length > uint64(len(b.data))-off {
		return 0, errors.OutOfBounds(uint64(addr), length)
	}
	return int(off), nil
}

// Read returns length bytes at addr. The slice aliases the buffer.
func (b *Buffer) Read(addr nativemap.Address, length uint32) ([]byte, error) {
	off, err := b.span(addr, uint64(length))
	if err != nil {
		return nil, err
	}
	return b.data[off : off+int(length)], nil
}

// ReadU8 reads one byte at addr.
func (b *Buffer) ReadU8(addr nativemap.Address) (uint8, error) {
	data, err := b.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadU16, ReadU32 and ReadU64 read little-endian integers at addr.
func (b *Buffer) ReadU16(addr nativemap.Address) (uint16, error) {
	data, err := b.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

func (b *Buffer) ReadU32(addr nativemap.Address) (uint32, error) {
	data, err := b.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

func (b *Buffer) ReadU64(addr nativemap.Address) (uint64, error) {
	data, err := b.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// Put copies data to addr.
func (b *Buffer) Put(addr nativemap.Address, data []byte) error {
	off, err := b.span(addr, uint64(len(data)))
	if err != nil {
		return err
	}
	copy(b.data[off:], data)
	return nil
}

// PutU8 stores a single byte.
func (b *Buffer) PutU8(addr nativemap.Address, v uint8) error {
	return b.Put(addr, []byte{v})
}

// PutU16, PutU32 and PutU64 store v little-endian at addr.
func (b *Buffer) PutU16(addr nativemap.Address, v uint16) error {
	return b.Put(addr, binary.LittleEndian.AppendUint16(nil, v))
}

func (b *Buffer) PutU32(addr nativemap.Address, v uint32) error {
	return b.Put(addr, binary.LittleEndian.AppendUint32(nil, v))
}

func (b *Buffer) PutU64(addr nativemap.Address, v uint64) error {
	return b.Put(addr, binary.LittleEndian.AppendUint64(nil, v))
}

// PutF32 stores the IEEE-754 bits of v.
func (b *Buffer) PutF32(addr nativemap.Address, v float32) error {
	return b.PutU32(addr, math.Float32bits(v))
}

// PutF64 stores the IEEE-754 bits of v.
func (b *Buffer) PutF64(addr nativemap.Address, v float64) error {
	return b.PutU64(addr, math.Float64bits(v))
}

// PutPointer stores target in a pointer slot of width 4 or 8.
func (b *Buffer) PutPointer(addr, target nativemap.Address, width int) error {
	switch width {
	case 4:
		if uint64(target) > math.MaxUint32 {
			return errors.Overflow(errors.PhaseMemory, nil, uint64(target), uint64(math.MaxUint32))
		}
		return b.PutU32(addr, uint32(target))
	case 8:
		return b.PutU64(addr, uint64(target))
	}
	return errors.Unsupported(errors.PhaseMemory, "pointer width must be 4 or 8")
}

// Alloc reserves size bytes aligned to align from the free tail of the
// buffer and returns their address.
func (b *Buffer) Alloc(size, align int) (nativemap.Address, error) {
	if align < 1 {
		align = 1
	}
	start := b.next
	if r := (uint64(b.base) + uint64(start)) % uint64(align); r != 0 {
		start += align - int(r)
	}
	if size < 0 || start+size > len(b.data) {
		return nativemap.Null, errors.New(errors.PhaseMemory, errors.KindOverflow).
			Detail("alloc of %d bytes exceeds buffer of %d bytes", size, len(b.data)).
			Build()
	}
	b.next = start + size
	return b.base.Add(uint64(start)), nil
}

// AllocBytes copies data into freshly allocated space.
func (b *Buffer) AllocBytes(data []byte, align int) (nativemap.Address, error) {
	addr, err := b.Alloc(len(data), align)
	if err != nil {
		return nativemap.Null, err
	}
	return addr, b.Put(addr, data)
}

// AllocCString stores s followed by a NUL byte.
func (b *Buffer) AllocCString(s string) (nativemap.Address, error) {
	return b.AllocBytes(append([]byte(s), 0), 1)
}

// AllocUTF16 stores the UTF-16LE encoding of s followed by a wide NUL.
func (b *Buffer) AllocUTF16(s string) (nativemap.Address, error) {
	return b.AllocBytes(EncodeUTF16(s, true), 2)
}

// AllocBSTR stores s as a COM BSTR: a 4-byte byte-length prefix, the
// UTF-16LE text and a wide NUL. The returned address points at the text.
func (b *Buffer) AllocBSTR(s string) (nativemap.Address, error) {
	text := EncodeUTF16(s, true)
	data := binary.LittleEndian.AppendUint32(nil, uint32(len(text)-2))
	addr, err := b.AllocBytes(append(data, text...), 4)
	if err != nil {
		return nativemap.Null, err
	}
	return addr.Add(4), nil
}
