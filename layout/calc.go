package layout

import (
	"sync"

	"github.com/wippyai/nativemap/schema"
)

// Info is the static layout of a schema.
type Info struct {
	Offsets []int
	Size    int
	Align   int
	Stride  int
}

// Calculator computes and caches layouts. Schemas are immutable, so an entry
// never goes stale.
type Calculator struct {
	cache map[*schema.Schema]Info
	mu    sync.RWMutex
}

// NewCalculator returns a calculator with an empty cache.
func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*schema.Schema]Info),
	}
}

var defaultCalc = NewCalculator()

// Of returns the layout of s from the shared calculator.
func Of(s *schema.Schema) Info {
	return defaultCalc.Calculate(s)
}

// Align returns the largest effective field alignment of s, at least 1.
func Align(s *schema.Schema) int {
	return Of(s).Align
}

// Size returns the extent of s up to the end of its last field, without
// tail padding.
func Size(s *schema.Schema) int {
	return Of(s).Size
}

// Stride returns Size rounded up to the alignment of s.
func Stride(s *schema.Schema) int {
	return Of(s).Stride
}

// Offsets returns the static offset of each field of s.
func Offsets(s *schema.Schema) []int {
	offs := Of(s).Offsets
	out := make([]int, len(offs))
	copy(out, offs)
	return out
}

// Calculate returns the layout of s, computing it once per schema.
func (c *Calculator) Calculate(s *schema.Schema) Info {
	c.mu.RLock()
	cached, ok := c.cache[s]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	info := calculate(s)

	c.mu.Lock()
	c.cache[s] = info
	c.mu.Unlock()
	return info
}

func calculate(s *schema.Schema) Info {
	n := s.NumFields()
	offs := make([]int, n)
	maxAlign := 1
	offset := 0
	declared := s.DeclaredAlign()

	for i := 0; i < n; i++ {
		f := s.Field(i)
		align := FieldAlign(s, f)

		offset += PaddingSize(offset, align, declared)
		offs[i] = offset

		if align > maxAlign {
			maxAlign = align
		}

		offset += FieldSize(s, f, StaticCount(f))
	}

	return Info{
		Offsets: offs,
		Size:    offset,
		Align:   maxAlign,
		Stride:  offset + PaddingSize(offset, maxAlign, declared),
	}
}
