package schema

import (
	"sort"
	"sync"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
)

// Registry holds named schemas for one platform. Schemas are added once and
// never replaced, so lookups may run concurrently with registration.
type Registry struct {
	schemas  map[string]*Schema
	platform nativemap.Platform
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry for schemas laid out for p.
func NewRegistry(p nativemap.Platform) *Registry {
	return &Registry{
		schemas:  make(map[string]*Schema),
		platform: p,
	}
}

// Platform returns the platform shared by every schema in the registry.
func (r *Registry) Platform() nativemap.Platform {
	return r.platform
}

// Register adds a constructed schema under its name.
func (r *Registry) Register(s *Schema) error {
	if s == nil || s == Self {
		return errors.InvalidInput(errors.PhaseSchema, "nil schema")
	}
	if s.platform != r.platform {
		return errors.New(errors.PhaseSchema, errors.KindInvalidInput).
			Schema(s.name).
			Detail("schema pointer size %d does not match registry pointer size %d",
				s.platform.PointerSize, r.platform.PointerSize).
			Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schemas[s.name]; ok {
		return errors.DuplicateSchema(s.name)
	}
	r.schemas[s.name] = s
	return nil
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns the registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Decl declares a schema whose field targets are referenced by name.
type Decl struct {
	Name   string
	Fields []FieldDecl
	Align  int
}

// FieldDecl is a Field whose target is a schema name. The name may refer to
// a schema in the same Declare call, including the one being declared.
type FieldDecl struct {
	Name     string
	Target   string
	Encoding string
	Count    Count
	Kind     Kind
	Elem     Kind
}

// Declare validates and registers a group of schemas that may refer to each
// other by name. Pointer-shaped references may form cycles; a schema that
// contains itself by value, directly or through other schemas, is rejected.
// Either every declaration is registered or none is.
func (r *Registry) Declare(decls ...Decl) ([]*Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]*Schema, len(decls))
	out := make([]*Schema, len(decls))
	for i, d := range decls {
		if _, ok := r.schemas[d.Name]; ok {
			return nil, errors.DuplicateSchema(d.Name)
		}
		if _, ok := batch[d.Name]; ok {
			return nil, errors.DuplicateSchema(d.Name)
		}
		out[i] = &Schema{name: d.Name, align: d.Align, platform: r.platform}
		batch[d.Name] = out[i]
	}

	for i, d := range decls {
		fields := make([]Field, len(d.Fields))
		for j, fd := range d.Fields {
			f := Field{
				Name:     fd.Name,
				Kind:     fd.Kind,
				Elem:     fd.Elem,
				Encoding: fd.Encoding,
				Count:    fd.Count,
			}
			if fd.Target != "" {
				t, ok := batch[fd.Target]
				if !ok {
					t, ok = r.schemas[fd.Target]
				}
				if !ok {
					return nil, errors.New(errors.PhaseSchema, errors.KindMissingTarget).
						Schema(d.Name).
						Path(fd.Name).
						Detail("target schema %q is not declared", fd.Target).
						Build()
				}
				f.Target = t
			}
			fields[j] = f
		}
		if err := out[i].init(fields); err != nil {
			return nil, err
		}
	}

	if err := checkInline(out, batch); err != nil {
		return nil, err
	}

	for _, s := range out {
		r.schemas[s.name] = s
	}
	return out, nil
}

// checkInline rejects containment cycles among the new schemas. Registered
// schemas cannot reach new ones, so only the batch is searched.
func checkInline(order []*Schema, batch map[string]*Schema) error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*Schema]int, len(order))
	var stack []string

	var visit func(s *Schema) error
	visit = func(s *Schema) error {
		color[s] = grey
		stack = append(stack, s.name)
		for _, f := range s.fields {
			if !f.Kind.IsInline() || f.Target == nil || batch[f.Target.name] != f.Target {
				continue
			}
			switch color[f.Target] {
			case grey:
				path := append([]string(nil), stack...)
				return errors.Cycle(append(path, f.Target.name))
			case white:
				if err := visit(f.Target); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[s] = black
		return nil
	}

	for _, s := range order {
		if color[s] == white {
			if err := visit(s); err != nil {
				return err
			}
		}
	}
	return nil
}
