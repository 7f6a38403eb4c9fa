package schemafile

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/schema"
)

// LoadFile reads and parses the schema document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			e := errors.NotFound(errors.PhaseLoad, "schema file", path)
			e.Cause = err
			return nil, e
		}
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "read "+path)
	}
	return Parse(data)
}

// Parse parses a YAML schema document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseFailed("schema document", err)
	}
	if len(doc.Structs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "schema document declares no structs")
	}
	return &doc, nil
}

// Load parses data and declares its structs in a new registry for the
// document's platform.
func Load(data []byte) (*schema.Registry, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p, err := ParsePlatform(doc.Platform)
	if err != nil {
		return nil, err
	}
	r := schema.NewRegistry(p)
	if _, err := doc.Declare(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ParsePlatform maps a platform name to its pointer model. The empty name
// is the 64-bit native platform.
func ParsePlatform(name string) (nativemap.Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native64", "native", "x64", "amd64", "arm64":
		return nativemap.Native64, nil
	case "wasm32", "wasm":
		return nativemap.Wasm32, nil
	}
	return nativemap.Platform{}, errors.New(errors.PhaseLoad, errors.KindUnsupported).
		Value(name).
		Detail("unknown platform %q", name).
		Build()
}

// Declare converts the document and declares every struct in r at once.
// A struct without align uses the platform's maximum alignment.
func (d *Document) Declare(r *schema.Registry) ([]*schema.Schema, error) {
	decls := make([]schema.Decl, len(d.Structs))
	for i, st := range d.Structs {
		decl, err := st.decl(r.Platform())
		if err != nil {
			return nil, err
		}
		decls[i] = decl
	}
	return r.Declare(decls...)
}

func (s Struct) decl(p nativemap.Platform) (schema.Decl, error) {
	d := schema.Decl{Name: s.Name, Align: s.Align, Fields: make([]schema.FieldDecl, len(s.Fields))}
	if d.Align == 0 {
		d.Align = p.MaxAlign
	}
	for i, f := range s.Fields {
		fd, err := f.decl()
		if err != nil {
			return schema.Decl{}, errors.WithPath(err, []string{s.Name, f.Name})
		}
		d.Fields[i] = fd
	}
	return d, nil
}

func (f Field) decl() (schema.FieldDecl, error) {
	k, ok := schema.ParseKind(f.Kind)
	if !ok {
		return schema.FieldDecl{}, unknownKind(f.Kind)
	}
	fd := schema.FieldDecl{Name: f.Name, Kind: k, Target: f.Target, Encoding: f.Encoding}
	if f.Elem != "" {
		if fd.Elem, ok = schema.ParseKind(f.Elem); !ok {
			return schema.FieldDecl{}, unknownKind(f.Elem)
		}
	}
	c, err := schema.ParseCount(string(f.Count))
	if err != nil {
		return schema.FieldDecl{}, err
	}
	fd.Count = c
	return fd, nil
}

func unknownKind(name string) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidField).
		Value(name).
		Detail("unknown kind %q", name).
		Build()
}

// FromSchemas builds a document describing schemas and every schema they
// reach. Each schema appears once, in first-reached order.
func FromSchemas(schemas ...*schema.Schema) *Document {
	doc := &Document{}
	seen := make(map[*schema.Schema]bool)
	var visit func(s *schema.Schema)
	visit = func(s *schema.Schema) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		if doc.Platform == "" {
			doc.Platform = platformName(s.Platform())
		}
		st := Struct{Name: s.Name(), Align: s.DeclaredAlign()}
		var next []*schema.Schema
		for _, f := range s.Fields() {
			fl := Field{
				Name:     f.Name,
				Kind:     f.Kind.String(),
				Encoding: f.Encoding,
				Count:    CountText(f.Count.String()),
			}
			if f.Elem != schema.KindInvalid {
				fl.Elem = f.Elem.String()
			}
			if f.Target != nil {
				fl.Target = f.Target.Name()
				next = append(next, f.Target)
			}
			st.Fields = append(st.Fields, fl)
		}
		doc.Structs = append(doc.Structs, st)
		for _, t := range next {
			visit(t)
		}
	}
	for _, s := range schemas {
		visit(s)
	}
	return doc
}

func platformName(p nativemap.Platform) string {
	if p == nativemap.Wasm32 {
		return "wasm32"
	}
	return "native64"
}

// Marshal serializes a document to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
