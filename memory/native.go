package memory

import (
	"encoding/binary"
	"unsafe"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

// nullPage is the lowest address Native will dereference.
const nullPage = 4096

// Native reads the address space of the current process. Reads copy, so
// returned slices stay valid after the source is freed. The caller keeps the
// source memory alive and unmodified for the duration of a decode.
type Native struct{}

// NativePlatform describes the pointer width of the running process.
var NativePlatform = nativemap.Platform{
	PointerSize: int(unsafe.Sizeof(uintptr(0))),
	MaxAlign:    8,
}

// AddressOf returns the address of p.
func AddressOf(p unsafe.Pointer) nativemap.Address {
	return nativemap.Address(uintptr(p))
}

func (Native) view(addr nativemap.Address, length uint32) ([]byte, error) {
	if addr < nullPage || uint64(addr) > uint64(^uintptr(0))-uint64(length) {
		return nil, errors.OutOfBounds(uint64(addr), uint64(length))
	}
	if length == 0 {
		return []byte{}, nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), length), nil
}

// Read copies length bytes out of process memory.
func (n Native) Read(addr nativemap.Address, length uint32) ([]byte, error) {
	src, err := n.view(addr, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

func (n Native) ReadU8(addr nativemap.Address) (uint8, error) {
	b, err := n.view(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (n Native) ReadU16(addr nativemap.Address) (uint16, error) {
	b, err := n.view(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (n Native) ReadU32(addr nativemap.Address) (uint32, error) {
	b, err := n.view(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (n Native) ReadU64(addr nativemap.Address) (uint64, error) {
	b, err := n.view(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
