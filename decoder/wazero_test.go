package decoder

import (
	"context"
	"reflect"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/memory"
	"github.com/wippyai/nativemap/schema"
)

// pageModule exports a single page of linear memory as "memory".
var pageModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

func TestDecodeWasm32(t *testing.T) {
	entry, err := schema.NewForPlatform(nativemap.Wasm32, "Entry", 8,
		schema.Int64("id"),
		schema.Pointer("next", schema.Self),
		schema.PointerTo("name", schema.KindPointerToUTF8),
		schema.Uint16("n"),
		schema.PointerToArrayOf("values", schema.KindInt32, schema.CountFrom("n")),
	)
	must(t, err)

	offsets := layout.Offsets(entry)
	if want := []int{0, 8, 12, 16, 20}; !reflect.DeepEqual(offsets, want) {
		t.Fatalf("offsets: got %v, want %v", offsets, want)
	}
	if got := layout.Size(entry); got != 24 {
		t.Fatalf("size: got %d, want 24", got)
	}

	// Build the guest image in a buffer, then copy it into linear memory.
	img := memory.NewBuffer(0x400, 0x400)
	first, err := img.Alloc(24, 8)
	must(t, err)
	second, err := img.Alloc(24, 8)
	must(t, err)
	for i, e := range []struct {
		at, next nativemap.Address
		name     string
		values   []int32
	}{
		{first, second, "head", []int32{10, -20, 30}},
		{second, nativemap.Null, "tail", nil},
	} {
		must(t, img.PutU64(e.at, uint64(i+1)))
		must(t, img.PutPointer(e.at.Add(8), e.next, 4))
		name, err := img.AllocCString(e.name)
		must(t, err)
		must(t, img.PutPointer(e.at.Add(12), name, 4))
		must(t, img.PutU16(e.at.Add(16), uint16(len(e.values))))
		if len(e.values) > 0 {
			arr, err := img.Alloc(4*len(e.values), 4)
			must(t, err)
			for j, v := range e.values {
				must(t, img.PutU32(arr.Add(uint64(4*j)), uint32(v)))
			}
			must(t, img.PutPointer(e.at.Add(20), arr, 4))
		}
	}

	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	mod, err := r.Instantiate(ctx, pageModule)
	must(t, err)
	wasmMem := mod.ExportedMemory("memory")
	if !wasmMem.Write(uint32(img.Base()), img.Bytes()) {
		t.Fatal("Write failed")
	}

	rec, err := Decode(entry, memory.NewWazero(wasmMem), first)
	must(t, err)

	checks := []struct {
		path string
		want any
	}{
		{"id", int64(1)},
		{"name", "head"},
		{"n", uint16(3)},
		{"values", []any{int32(10), int32(-20), int32(30)}},
		{"next.id", int64(2)},
		{"next.name", "tail"},
		{"next.next", nativemap.Null},
		{"next.values", nativemap.Null},
	}
	for _, tt := range checks {
		if got := get(t, rec, tt.path); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %#v, want %#v", tt.path, got, tt.want)
		}
	}

	// The same entry read past the end of linear memory fails.
	if _, err := Decode(entry, memory.NewWazero(wasmMem), nativemap.Address(65536-8)); err == nil {
		t.Error("decode past end of memory: want error")
	}
}
