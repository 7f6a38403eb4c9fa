package memory

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

// Wazero reads a wasm linear memory. Addresses are offsets into the memory.
type Wazero struct {
	mem api.Memory
}

// NewWazero wraps mem.
func NewWazero(mem api.Memory) *Wazero {
	return &Wazero{mem: mem}
}

// Bounds implements nativemap.Bounded. The end moves when the guest grows
// its memory.
func (m *Wazero) Bounds() (start, end nativemap.Address) {
	return 0, nativemap.Address(m.mem.Size())
}

func offset(addr nativemap.Address, length uint64) (uint32, error) {
	if uint64(addr) > math.MaxUint32 {
		return 0, errors.OutOfBounds(uint64(addr), length)
	}
	return uint32(addr), nil
}

// Read returns length bytes at addr. The slice aliases guest memory and is
// only valid until the guest next runs.
func (m *Wazero) Read(addr nativemap.Address, length uint32) ([]byte, error) {
	off, err := offset(addr, uint64(length))
	if err != nil {
		return nil, err
	}
	data, ok := m.mem.Read(off, length)
	if !ok {
		return nil, errors.OutOfBounds(uint64(addr), uint64(length))
	}
	return data, nil
}

func (m *Wazero) ReadU8(addr nativemap.Address) (uint8, error) {
	off, err := offset(addr, 1)
	if err != nil {
		return 0, err
	}
	v, ok := m.mem.ReadByte(off)
	if !ok {
		return 0, errors.OutOfBounds(uint64(addr), 1)
	}
	return v, nil
}

func (m *Wazero) ReadU16(addr nativemap.Address) (uint16, error) {
	off, err := offset(addr, 2)
	if err != nil {
		return 0, err
	}
	v, ok := m.mem.ReadUint16Le(off)
	if !ok {
		return 0, errors.OutOfBounds(uint64(addr), 2)
	}
	return v, nil
}

func (m *Wazero) ReadU32(addr nativemap.Address) (uint32, error) {
	off, err := offset(addr, 4)
	if err != nil {
		return 0, err
	}
	v, ok := m.mem.ReadUint32Le(off)
	if !ok {
		return 0, errors.OutOfBounds(uint64(addr), 4)
	}
	return v, nil
}

func (m *Wazero) ReadU64(addr nativemap.Address) (uint64, error) {
	off, err := offset(addr, 8)
	if err != nil {
		return 0, err
	}
	v, ok := m.mem.ReadUint64Le(off)
	if !ok {
		return 0, errors.OutOfBounds(uint64(addr), 8)
	}
	return v, nil
}
