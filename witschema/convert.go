// Package witschema converts WIT value types into schemas for wasm32 guest
// memory.
//
// Records and tuples become structs laid out by the canonical ABI rules,
// which coincide with C layout for these shapes. Enums and flags become
// unsigned integers of the discriminant width. Types whose canonical
// representation is a (pointer, length) pair or a tagged union have no
// equivalent field kind and are rejected.
package witschema

import (
	"strconv"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/schema"
)

// Converter turns WIT types into schemas registered in one registry. Each
// type definition is converted once.
type Converter struct {
	reg  *schema.Registry
	defs map[*wit.TypeDef]*schema.Schema
	mu   sync.Mutex
}

// NewConverter returns a converter registering into r. A nil r gets a
// fresh wasm32 registry.
func NewConverter(r *schema.Registry) *Converter {
	if r == nil {
		r = schema.NewRegistry(nativemap.Wasm32)
	}
	return &Converter{reg: r, defs: make(map[*wit.TypeDef]*schema.Schema)}
}

// Registry returns the registry schemas are added to.
func (c *Converter) Registry() *schema.Registry {
	return c.reg
}

// Convert converts a WIT record or tuple into a schema called name. Nested
// records and tuples are registered as name.field.
func Convert(name string, t wit.Type) (*schema.Schema, error) {
	return NewConverter(nil).Convert(name, t)
}

// Convert converts a WIT record or tuple into a schema called name.
func (c *Converter) Convert(name string, t wit.Type) (*schema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, errors.New(errors.PhaseConvert, errors.KindUnsupported).
			Schema(name).
			Detail("only records and tuples convert to schemas, got %T", t).
			Build()
	}
	return c.typeDef(name, td)
}

func (c *Converter) typeDef(name string, td *wit.TypeDef) (*schema.Schema, error) {
	if s, ok := c.defs[td]; ok {
		return s, nil
	}

	var fields []schema.Field
	switch k := td.Kind.(type) {
	case *wit.Record:
		fields = make([]schema.Field, 0, len(k.Fields))
		for _, f := range k.Fields {
			sf, err := c.field(name, f.Name, f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, sf)
		}
	case *wit.Tuple:
		fields = make([]schema.Field, 0, len(k.Types))
		for i, ft := range k.Types {
			sf, err := c.field(name, strconv.Itoa(i), ft)
			if err != nil {
				return nil, err
			}
			fields = append(fields, sf)
		}
	case wit.Type:
		if inner, ok := k.(*wit.TypeDef); ok {
			return c.typeDef(name, inner)
		}
	}
	if fields == nil {
		return nil, errors.New(errors.PhaseConvert, errors.KindUnsupported).
			Schema(name).
			Detail("only records and tuples convert to schemas, got %T", td.Kind).
			Build()
	}

	s, err := schema.NewForPlatform(c.reg.Platform(), name, c.reg.Platform().MaxAlign, fields...)
	if err != nil {
		return nil, err
	}
	if err := c.reg.Register(s); err != nil {
		return nil, err
	}
	c.defs[td] = s
	return s, nil
}

// field maps one WIT member type onto a schema field.
func (c *Converter) field(parent, name string, t wit.Type) (schema.Field, error) {
	switch t := t.(type) {
	case wit.Bool:
		return schema.Bool(name), nil
	case wit.S8:
		return schema.Int8(name), nil
	case wit.U8:
		return schema.Uint8(name), nil
	case wit.S16:
		return schema.Int16(name), nil
	case wit.U16:
		return schema.Uint16(name), nil
	case wit.S32:
		return schema.Int32(name), nil
	case wit.U32:
		return schema.Uint32(name), nil
	case wit.S64:
		return schema.Int64(name), nil
	case wit.U64:
		return schema.Uint64(name), nil
	case wit.F32:
		return schema.Float32(name), nil
	case wit.F64:
		return schema.Float64(name), nil
	case wit.Char:
		// Unicode scalar values are stored as u32.
		return schema.Uint32(name), nil
	case *wit.TypeDef:
		return c.fieldTypeDef(parent, name, t)
	}
	return schema.Field{}, unsupported(parent, name, t)
}

func (c *Converter) fieldTypeDef(parent, name string, td *wit.TypeDef) (schema.Field, error) {
	switch k := td.Kind.(type) {
	case *wit.Record, *wit.Tuple:
		target, err := c.typeDef(parent+"."+name, td)
		if err != nil {
			return schema.Field{}, err
		}
		return schema.Struct(name, target), nil
	case *wit.Enum:
		return discriminant(name, len(k.Cases)), nil
	case *wit.Flags:
		return flags(name, len(k.Flags)), nil
	case *wit.Own, *wit.Borrow:
		// Handles are table indices.
		return schema.Uint32(name), nil
	case wit.Type:
		return c.field(parent, name, k)
	}
	return schema.Field{}, unsupported(parent, name, td.Kind)
}

// discriminant returns the narrowest unsigned field holding n cases.
func discriminant(name string, n int) schema.Field {
	switch {
	case n <= 1<<8:
		return schema.Uint8(name)
	case n <= 1<<16:
		return schema.Uint16(name)
	}
	return schema.Uint32(name)
}

// flags returns a bit set of n flags. Sets wider than 32 bits are stored as
// consecutive u32 words.
func flags(name string, n int) schema.Field {
	switch {
	case n <= 8:
		return schema.Uint8(name)
	case n <= 16:
		return schema.Uint16(name)
	case n <= 32:
		return schema.Uint32(name)
	}
	return schema.ArrayOf(name, schema.KindUint32, schema.Literal((n+31)/32))
}

func unsupported(parent, name string, t any) error {
	return errors.New(errors.PhaseConvert, errors.KindUnsupported).
		Schema(parent).
		Path(name).
		Detail("%T has no fixed-layout field representation", t).
		Build()
}
