package schemafile

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/schema"
)

const unmanaged = `
platform: native64
structs:
  - name: Unmanaged
    align: 8
    fields:
      - {name: boolean, kind: bool}
      - {name: int8, kind: char}
      - {name: uint8, kind: unsigned char}
      - {name: int16, kind: short}
      - {name: uint16, kind: WORD}
      - {name: int32, kind: int}
      - {name: uint32, kind: DWORD}
      - {name: int64, kind: long long}
      - {name: uint64, kind: QWORD}
      - {name: real32, kind: float}
      - {name: real64, kind: double}
      - {name: wchar, kind: wchar_t}
      - {name: string, kind: text, count: 10}
      - {name: multiString, kind: multi-text, count: 50}
      - {name: array, kind: array, target: Array, count: 10}
      - {name: arrayOfPointers, kind: array-of-pointers, target: Child, count: 3}
      - {name: pointer, kind: pointer, target: Child}
      - {name: pointerToAnsi, kind: pointer-to-ansi}
      - {name: pointerToUtf8, kind: pointer-to-utf8}
      - {name: pointerToUtf16, kind: pointer-to-utf16}
      - {name: pointerToString, kind: pointer-to-string, encoding: us-ascii}
      - {name: pointerToMultiString, kind: pointer-to-multi-text}
      - {name: pointerToArrayCount, kind: int32}
      - {name: pointerToArray, kind: pointer-to-array, target: Child, count: pointerToArrayCount}
      - {name: pointerToArrayOfPointersCount, kind: int32}
      - {name: pointerToArrayOfPointers, kind: pointer_to_array_of_pointers, target: Child, count: pointerToArrayOfPointersCount}
  - name: Child
    fields:
      - {name: no, kind: int32}
      - {name: name, kind: pointer-to-ansi}
  - name: Array
    align: 8
    fields:
      - {name: int1, kind: int16}
      - {name: int2, kind: int8}
      - {name: array2, kind: array, target: Array2, count: "2"}
  - name: Array2
    align: 8
    fields:
      - {name: int1, kind: int8}
      - {name: int2, kind: int8}
      - {name: int3, kind: int64}
`

func TestLoad(t *testing.T) {
	r, err := Load([]byte(unmanaged))
	require.NoError(t, err)
	assert.Equal(t, nativemap.Native64, r.Platform())
	assert.Equal(t, []string{"Array", "Array2", "Child", "Unmanaged"}, r.Names())

	u, ok := r.Lookup("Unmanaged")
	require.True(t, ok)
	require.Equal(t, 26, u.NumFields())

	assert.Equal(t, 616, layout.Size(u))
	assert.Equal(t, 8, layout.Align(u))

	child, _ := r.Lookup("Child")
	assert.Equal(t, 8, child.DeclaredAlign(), "missing align defaults to the platform maximum")
	assert.Equal(t, 16, layout.Size(child))

	f, ok := u.FieldByName("pointerToArray")
	require.True(t, ok)
	assert.Equal(t, schema.KindPointerToArray, f.Kind)
	assert.Same(t, child, f.Target)
	assert.True(t, f.Count.IsDynamic())
	assert.Equal(t, "pointerToArrayCount", f.Count.Ref())

	f, _ = u.FieldByName("wchar")
	assert.Equal(t, schema.KindWChar, f.Kind)
	f, _ = u.FieldByName("pointerToString")
	assert.Equal(t, "us-ascii", f.Encoding)
	f, _ = u.FieldByName("string")
	assert.Equal(t, 10, f.Count.Value())
}

func TestLoadEnumSpellings(t *testing.T) {
	r, err := Load([]byte(`
structs:
  - name: S
    fields:
      - {name: a, kind: UNSIGNED_INT8}
      - {name: b, kind: UNSIGNED_INT16}
      - {name: c, kind: UNSIGNED_INT32}
      - {name: d, kind: UNSIGNED_INT64}
      - {name: f, kind: POINTER_TO_MULTI_STRING}
`))
	require.NoError(t, err)
	s, ok := r.Lookup("S")
	require.True(t, ok)

	want := []schema.Kind{schema.KindUint8, schema.KindUint16, schema.KindUint32, schema.KindUint64, schema.KindPointerToMultiText}
	for i, k := range want {
		assert.Equal(t, k, s.Field(i).Kind, s.Field(i).Name)
	}
}

func TestLoadRecursive(t *testing.T) {
	r, err := Load([]byte(`
platform: wasm32
structs:
  - name: Node
    align: 4
    fields:
      - {name: value, kind: int32}
      - {name: next, kind: pointer, target: Node}
      - {name: label, kind: pointer-to-utf8}
`))
	require.NoError(t, err)
	node, ok := r.Lookup("Node")
	require.True(t, ok)
	assert.Equal(t, 4, node.PointerSize())
	assert.Equal(t, 12, layout.Size(node))
	f, _ := node.FieldByName("next")
	assert.Same(t, node, f.Target)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"bad yaml", "structs: [", errors.KindInvalidData},
		{"empty", "platform: native64\n", errors.KindInvalidInput},
		{"platform", "platform: sparc\nstructs: [{name: A, fields: [{name: a, kind: int8}]}]", errors.KindUnsupported},
		{"kind", "structs: [{name: A, fields: [{name: a, kind: quad}]}]", errors.KindInvalidField},
		{"elem", "structs: [{name: A, fields: [{name: a, kind: array, elem: quad, count: 2}]}]", errors.KindInvalidField},
		{"negative count", "structs: [{name: A, fields: [{name: a, kind: text, count: -1}]}]", errors.KindInvalidData},
		{"huge count", "structs: [{name: A, fields: [{name: a, kind: text, count: 99999999999}]}]", errors.KindInvalidCount},
		{"missing target", "structs: [{name: A, fields: [{name: a, kind: pointer, target: B}]}]", errors.KindMissingTarget},
		{"forward count", `
structs:
  - name: A
    fields:
      - {name: a, kind: array, elem: int8, count: n}
      - {name: n, kind: int32}
`, errors.KindInvalidCount},
		{"inline cycle", `
structs:
  - name: A
    fields: [{name: b, kind: struct, target: B}]
  - name: B
    fields: [{name: a, kind: array, target: A, count: 1}]
`, errors.KindCycle},
		{"duplicate", `
structs:
  - {name: A, fields: [{name: a, kind: int8}]}
  - {name: A, fields: [{name: a, kind: int8}]}
`, errors.KindDuplicateSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			var e *errors.Error
			require.True(t, stderrors.As(err, &e), "got %T: %v", err, err)
			assert.Equal(t, tt.kind, e.Kind, "%v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(unmanaged), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Structs, 4)
	assert.Equal(t, "Unmanaged", doc.Structs[0].Name)
	assert.Equal(t, CountText("pointerToArrayCount"), doc.Structs[0].Fields[23].Count)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.KindNotFound, e.Kind)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRoundTrip(t *testing.T) {
	r, err := Load([]byte(unmanaged))
	require.NoError(t, err)
	u, _ := r.Lookup("Unmanaged")

	data, err := Marshal(FromSchemas(u))
	require.NoError(t, err)
	assert.Contains(t, string(data), "count: 10\n")
	assert.Contains(t, string(data), "count: pointerToArrayCount\n")

	again, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, r.Names(), again.Names())
	u2, _ := again.Lookup("Unmanaged")
	assert.Equal(t, layout.Offsets(u), layout.Offsets(u2))
	assert.Equal(t, u.String(), u2.String())
}
