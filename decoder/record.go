package decoder

import (
	"reflect"
	"strings"

	"github.com/wippyai/nativemap/schema"
)

// FieldValue is one decoded field.
type FieldValue struct {
	Value any
	Name  string
}

// Record is the decoded value of one schema instance. Field values are:
//   - bool, int8 through uint64, float32, float64 and rune for scalars
//   - string for text and text pointers, []string for multi-text
//   - *Record for inline structs and resolved pointers
//   - []*Record for arrays of structs, []any for other arrays
//   - nativemap.Address for null, untyped or depth-bounded pointers
type Record struct {
	schema *schema.Schema
	fields []FieldValue
}

// Schema returns the schema the record was decoded with.
func (r *Record) Schema() *schema.Schema {
	return r.schema
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Fields returns the decoded fields in schema order.
func (r *Record) Fields() []FieldValue {
	out := make([]FieldValue, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, bool) {
	if i, ok := r.schema.Index(name); ok && i < len(r.fields) {
		return r.fields[i].Value, true
	}
	return nil, false
}

// Lookup follows a dotted path of field names through nested records.
func (r *Record) Lookup(path string) (any, bool) {
	cur := r
	parts := strings.Split(path, ".")
	for i, p := range parts {
		v, ok := cur.Get(p)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(*Record)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Map converts the record and everything below it to maps and slices.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		out[f.Name] = plain(f.Value)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Record:
		return x.Map()
	case []*Record:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r.Map()
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether r and o were decoded with the same schema and hold
// structurally equal values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.schema == o.schema && reflect.DeepEqual(r.fields, o.fields)
}
