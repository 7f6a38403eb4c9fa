package decoder

import (
	stderrors "errors"
	"reflect"
	"sync"
	"testing"

	"github.com/wippyai/nativemap"
	"github.com/wippyai/nativemap/errors"
	"github.com/wippyai/nativemap/layout"
	"github.com/wippyai/nativemap/memory"
	"github.com/wippyai/nativemap/schema"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, rec *Record, path string) any {
	t.Helper()
	v, ok := rec.Lookup(path)
	if !ok {
		t.Fatalf("field %q not found", path)
	}
	return v
}

func TestPaddingBeforeInt32(t *testing.T) {
	s := schema.MustNew("A", 4, schema.Int8("a"), schema.Int32("b"))
	mem := memory.FromBytes(0x40, []byte{0x07, 0xAA, 0xAA, 0xAA, 0x2A, 0x00, 0x00, 0x00})

	rec, err := Decode(s, mem, 0x40)
	must(t, err)

	if got := get(t, rec, "a"); got != int8(7) {
		t.Errorf("a: got %v, want 7", got)
	}
	if got := get(t, rec, "b"); got != int32(42) {
		t.Errorf("b: got %v, want 42", got)
	}
	if got := layout.Size(s); got != 8 {
		t.Errorf("Size: got %d, want 8", got)
	}
}

func TestTextKeepsNUL(t *testing.T) {
	s := schema.MustNew("B", 1, schema.Text("t", schema.Literal(5)))
	mem := memory.FromBytes(0, []byte{0x41, 0x42, 0x00, 0x00, 0x00})

	rec, err := Decode(s, mem, 0)
	must(t, err)

	if got := get(t, rec, "t"); got != "AB\x00\x00\x00" {
		t.Errorf("t: got %q, want %q", got, "AB\x00\x00\x00")
	}
}

func TestMultiTextStopsAtEmpty(t *testing.T) {
	s := schema.MustNew("C", 1, schema.MultiText("m", schema.Literal(9)))
	mem := memory.FromBytes(0, []byte("AB\x00CD\x00\x00\x00\x00"))

	rec, err := Decode(s, mem, 0)
	must(t, err)

	want := []string{"AB", "CD"}
	if got := get(t, rec, "m"); !reflect.DeepEqual(got, want) {
		t.Errorf("m: got %q, want %q", got, want)
	}
}

func TestNullPointer(t *testing.T) {
	x := schema.MustNew("X", 1, schema.Int8("x"))
	s := schema.MustNew("D", 8, schema.Pointer("p", x))
	mem := memory.NewBuffer(0x100, 8)

	rec, err := Decode(s, mem, 0x100)
	must(t, err)

	if got := get(t, rec, "p"); got != nativemap.Null {
		t.Errorf("p: got %v, want null marker", got)
	}
}

func TestInlineArrayAdvance(t *testing.T) {
	pair := schema.MustNew("Pair", 1, schema.Int8("x"), schema.Int8("y"))
	s := schema.MustNew("E", 1,
		schema.Array("items", pair, schema.Literal(3)),
		schema.Uint8("after"),
	)
	mem := memory.FromBytes(0, []byte{1, 2, 3, 4, 5, 6, 0x77})

	rec, err := Decode(s, mem, 0)
	must(t, err)

	items, ok := get(t, rec, "items").([]*Record)
	if !ok || len(items) != 3 {
		t.Fatalf("items: got %v", get(t, rec, "items"))
	}
	for i, it := range items {
		if got, _ := it.Get("x"); got != int8(2*i+1) {
			t.Errorf("items[%d].x: got %v, want %d", i, got, 2*i+1)
		}
		if got, _ := it.Get("y"); got != int8(2*i+2) {
			t.Errorf("items[%d].y: got %v, want %d", i, got, 2*i+2)
		}
	}
	// the cursor advanced by exactly 6 bytes
	if got := get(t, rec, "after"); got != uint8(0x77) {
		t.Errorf("after: got %v, want 0x77", got)
	}
}

func TestDeterminism(t *testing.T) {
	root, mem, addr := unmanagedFixture(t)

	first, err := Decode(root, mem, addr)
	must(t, err)
	second, err := Decode(root, mem, addr)
	must(t, err)

	if !first.Equal(second) {
		t.Error("decoding twice produced different trees")
	}
	if first == second {
		t.Error("decode calls must not share trees")
	}
	a := get(t, first, "pointer").(*Record)
	b := get(t, second, "pointer").(*Record)
	if a == b {
		t.Error("nested records must not be shared between calls")
	}
}

func TestDynamicCount(t *testing.T) {
	item := schema.MustNew("Item", 4, schema.Int32("v"))
	s := schema.MustNew("List", 8,
		schema.Uint16("n"),
		schema.PointerToArray("items", item, schema.CountFrom("n")),
	)

	for _, n := range []int{0, 1, 4, 7} {
		b := memory.NewBuffer(0x1000, 256)
		head, _ := b.Alloc(16, 8)
		arr, _ := b.Alloc(4*n, 4)
		must(t, b.PutU16(head, uint16(n)))
		must(t, b.PutPointer(head.Add(8), arr, 8))
		for i := 0; i < n; i++ {
			must(t, b.PutU32(arr.Add(uint64(4*i)), uint32(i*10)))
		}

		rec, err := Decode(s, b, head)
		must(t, err)

		items, ok := get(t, rec, "items").([]*Record)
		if !ok {
			t.Fatalf("n=%d: items: got %T", n, get(t, rec, "items"))
		}
		if len(items) != n {
			t.Errorf("n=%d: got %d elements", n, len(items))
		}
		for i, it := range items {
			if v, _ := it.Get("v"); v != int32(i*10) {
				t.Errorf("n=%d: items[%d]: got %v", n, i, v)
			}
		}
	}
}

func TestDynamicCountNullPointer(t *testing.T) {
	item := schema.MustNew("Item", 4, schema.Int32("v"))
	s := schema.MustNew("List", 8,
		schema.Int32("n"),
		schema.PointerToArray("items", item, schema.CountFrom("n")),
		schema.Int32("m"),
		schema.PointerToArrayOfPointers("refs", item, schema.CountFrom("m")),
	)
	b := memory.NewBuffer(0, 32)
	must(t, b.PutU32(0, 5))
	must(t, b.PutU32(16, 2))

	rec, err := Decode(s, b, 0)
	must(t, err)

	if got := get(t, rec, "items"); got != nativemap.Null {
		t.Errorf("items: got %v, want null marker", got)
	}
	if got := get(t, rec, "refs"); got != nativemap.Null {
		t.Errorf("refs: got %v, want null marker", got)
	}
}

func TestNullPointerSkipsCount(t *testing.T) {
	item := schema.MustNew("Item", 4, schema.Int32("v"))
	s := schema.MustNew("Big", 8,
		schema.Uint32("n"),
		schema.PointerToArray("items", item, schema.CountFrom("n")),
		schema.Int32("after"),
	)
	b := memory.NewBuffer(0, 20)
	must(t, b.PutU32(0, 1<<30))
	must(t, b.PutU32(16, 7))

	rec, err := Decode(s, b, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := get(t, rec, "items"); got != nativemap.Null {
		t.Errorf("items: got %v, want null marker", got)
	}
	if got := get(t, rec, "after"); got != int32(7) {
		t.Errorf("after: got %v, want 7", got)
	}
}

func TestNegativeCountIsZero(t *testing.T) {
	s := schema.MustNew("Neg", 8,
		schema.Int32("n"),
		schema.ArrayOf("v", schema.KindUint8, schema.CountFrom("n")),
		schema.Uint8("tail"),
	)
	b := memory.NewBuffer(0, 8)
	must(t, b.PutU32(0, 0xFFFFFFFF))
	must(t, b.PutU8(4, 9))

	rec, err := Decode(s, b, 0)
	must(t, err)

	if got := get(t, rec, "v").([]any); len(got) != 0 {
		t.Errorf("v: got %v, want empty", got)
	}
	if got := get(t, rec, "tail"); got != uint8(9) {
		t.Errorf("tail: got %v, want 9", got)
	}
}

func TestCountOverflow(t *testing.T) {
	s := schema.MustNew("Big", 8,
		schema.Uint32("n"),
		schema.Text("t", schema.CountFrom("n")),
	)
	b := memory.NewBuffer(0, 8)
	must(t, b.PutU32(0, 1<<30))

	_, err := New(Options{MaxElements: 1024}).Decode(s, b, 0)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindOverflow {
		t.Fatalf("got %v, want overflow", err)
	}
	if len(e.Path) != 1 || e.Path[0] != "t" {
		t.Errorf("path: got %v, want [t]", e.Path)
	}
}

func TestUntypedPointer(t *testing.T) {
	s := schema.MustNew("H", 8,
		schema.Pointer("raw", nil),
		schema.ArrayOf("slots", schema.KindPointer, schema.Literal(2)),
	)
	b := memory.NewBuffer(0, 24)
	must(t, b.PutU64(0, 0xDEADBEEF))
	must(t, b.PutU64(16, 0x1234))

	rec, err := Decode(s, b, 0)
	must(t, err)

	if got := get(t, rec, "raw"); got != nativemap.Address(0xDEADBEEF) {
		t.Errorf("raw: got %v", got)
	}
	want := []any{nativemap.Null, nativemap.Address(0x1234)}
	if got := get(t, rec, "slots"); !reflect.DeepEqual(got, want) {
		t.Errorf("slots: got %v, want %v", got, want)
	}
}

func TestScalarArray(t *testing.T) {
	s := schema.MustNew("V", 8,
		schema.Int8("tag"),
		schema.ArrayOf("v", schema.KindInt16, schema.Literal(3)),
		schema.Float64("f"),
	)
	b := memory.NewBuffer(0, 16)
	must(t, b.PutU8(0, 1))
	must(t, b.PutU16(2, 0xFFFF))
	must(t, b.PutU16(4, 2))
	must(t, b.PutU16(6, 3))
	must(t, b.PutF64(8, 0.5))

	rec, err := Decode(s, b, 0)
	must(t, err)

	want := []any{int16(-1), int16(2), int16(3)}
	if got := get(t, rec, "v"); !reflect.DeepEqual(got, want) {
		t.Errorf("v: got %v, want %v", got, want)
	}
	if got := get(t, rec, "f"); got != 0.5 {
		t.Errorf("f: got %v, want 0.5", got)
	}
}

func TestInlineStruct(t *testing.T) {
	inner := schema.MustNew("Inner", 8, schema.Int64("a"), schema.Int8("b"))
	s := schema.MustNew("Outer", 8,
		schema.Int8("x"),
		schema.Struct("in", inner),
		schema.Int8("y"),
	)
	b := memory.NewBuffer(0, 32)
	must(t, b.PutU8(0, 1))
	must(t, b.PutU64(8, 2))
	must(t, b.PutU8(16, 3))
	must(t, b.PutU8(24, 4))

	rec, err := Decode(s, b, 0)
	must(t, err)

	if got := get(t, rec, "in.a"); got != int64(2) {
		t.Errorf("in.a: got %v", got)
	}
	if got := get(t, rec, "in.b"); got != int8(3) {
		t.Errorf("in.b: got %v", got)
	}
	if got := get(t, rec, "y"); got != int8(4) {
		t.Errorf("y: got %v, want 4 (inline struct occupies its stride)", got)
	}
}

func TestTextPointers(t *testing.T) {
	s := schema.MustNew("T", 8,
		schema.PointerTo("bstr", schema.KindPointerToBSTR),
		schema.PointerTo("ansi", schema.KindPointerToANSI),
		schema.PointerTo("utf8", schema.KindPointerToUTF8),
		schema.PointerTo("utf16", schema.KindPointerToUTF16),
		schema.PointerTo("str", schema.KindPointerToString).WithEncoding("utf-8"),
		schema.PointerTo("fixed", schema.KindPointerToString).WithCount(schema.Literal(3)),
		schema.PointerTo("multi", schema.KindPointerToMultiText),
		schema.PointerTo("null", schema.KindPointerToUTF8),
	)
	b := memory.NewBuffer(0x4000, 512)
	root, _ := b.Alloc(64, 8)
	bstr, _ := b.AllocBSTR("Bee")
	ansi, _ := b.AllocBytes([]byte("Caf\xe9\x00"), 1)
	utf8, _ := b.AllocCString("naïve")
	utf16, _ := b.AllocUTF16("wide ✓")
	str, _ := b.AllocCString("héllo")
	fixed, _ := b.AllocCString("abcdef")
	multi, _ := b.AllocBytes([]byte("one\x00two\x00\x00"), 1)

	for i, p := range []nativemap.Address{bstr, ansi, utf8, utf16, str, fixed, multi} {
		must(t, b.PutPointer(root.Add(uint64(8*i)), p, 8))
	}

	rec, err := Decode(s, b, root)
	must(t, err)

	tests := []struct {
		field string
		want  any
	}{
		{"bstr", "Bee"},
		{"ansi", "Café"},
		{"utf8", "naïve"},
		{"utf16", "wide ✓"},
		{"str", "héllo"},
		{"fixed", "abc"},
		{"multi", []string{"one", "two"}},
		{"null", nativemap.Null},
	}
	for _, tt := range tests {
		if got := get(t, rec, tt.field); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestEncodingFallback(t *testing.T) {
	s := schema.MustNew("Enc", 1,
		schema.Text("bogus", schema.Literal(4)).WithEncoding("no-such-charset"),
		schema.Text("plain", schema.Literal(4)),
		schema.Text("latin", schema.Literal(4)).WithEncoding("ISO-8859-1"),
	)
	mem := memory.FromBytes(0, []byte("caf\xe9caf\xe9caf\xe9"))

	rec, err := Decode(s, mem, 0)
	must(t, err)
	if got := get(t, rec, "bogus"); got != "caf�" {
		t.Errorf("bogus (ascii default): got %q", got)
	}
	if got := get(t, rec, "latin"); got != "café" {
		t.Errorf("latin: got %q", got)
	}

	rec, err = DecodeWithEncoding(s, mem, 0, "windows-1252")
	must(t, err)
	if got := get(t, rec, "bogus"); got != "café" {
		t.Errorf("bogus (windows-1252 default): got %q", got)
	}
	if got := get(t, rec, "plain"); got != "café" {
		t.Errorf("plain: got %q", got)
	}

	rec, err = DecodeWithEncoding(s, mem, 0, "also-bogus")
	must(t, err)
	if got := get(t, rec, "plain"); got != "caf�" {
		t.Errorf("plain (unknown call encoding): got %q", got)
	}
}

func TestDepthBound(t *testing.T) {
	node := schema.MustNew("Node", 8,
		schema.Int32("v"),
		schema.Pointer("next", schema.Self),
	)
	// a two-node cycle: 0x100 -> 0x110 -> 0x100
	b := memory.NewBuffer(0x100, 32)
	must(t, b.PutU32(0x100, 1))
	must(t, b.PutPointer(0x108, 0x110, 8))
	must(t, b.PutU32(0x110, 2))
	must(t, b.PutPointer(0x118, 0x100, 8))

	rec, err := New(Options{MaxDepth: 3}).Decode(node, b, 0x100)
	must(t, err)

	cur := rec
	for hop := 0; hop < 3; hop++ {
		next, ok := get(t, cur, "next").(*Record)
		if !ok {
			t.Fatalf("hop %d: got %v, want record", hop, get(t, cur, "next"))
		}
		cur = next
	}
	if got := get(t, cur, "next"); got != nativemap.Address(0x100) {
		t.Errorf("at bound: got %v, want raw address 0x100", got)
	}
	if got := get(t, cur, "v"); got != int32(2) {
		t.Errorf("v at depth 3: got %v, want 2", got)
	}
}

func TestOutOfBoundsPath(t *testing.T) {
	child := schema.MustNew("Child", 8, schema.Int64("a"))
	s := schema.MustNew("Root", 8, schema.Pointer("child", child))
	b := memory.NewBuffer(0, 8)
	must(t, b.PutPointer(0, 0x9999, 8))

	_, err := Decode(s, b, 0)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("got %v, want *errors.Error", err)
	}
	if e.Kind != errors.KindOutOfBounds {
		t.Errorf("kind: got %s", e.Kind)
	}
	if want := []string{"child", "a"}; !reflect.DeepEqual(e.Path, want) {
		t.Errorf("path: got %v, want %v", e.Path, want)
	}
}

func TestInvalidArgs(t *testing.T) {
	s := schema.MustNew("S", 1, schema.Int8("a"))
	if _, err := Decode(nil, memory.NewBuffer(0, 1), 0); err == nil {
		t.Error("nil schema: want error")
	}
	if _, err := Decode(schema.Self, memory.NewBuffer(0, 1), 0); err == nil {
		t.Error("Self: want error")
	}
	if _, err := Decode(s, nil, 0); err == nil {
		t.Error("nil memory: want error")
	}
}

func TestDecodeArray(t *testing.T) {
	s := schema.MustNew("P", 8, schema.Int64("a"), schema.Int8("b"))
	b := memory.NewBuffer(0, 48)
	for i := 0; i < 3; i++ {
		must(t, b.PutU64(nativemap.Address(16*i), uint64(i)))
		must(t, b.PutU8(nativemap.Address(16*i+8), uint8(10+i)))
	}

	recs, err := New(DefaultOptions()).DecodeArray(s, b, 0, 3)
	must(t, err)
	for i, r := range recs {
		if got, _ := r.Get("b"); got != uint8(10+i) {
			t.Errorf("recs[%d].b: got %v", i, got)
		}
	}
	if _, err := New(DefaultOptions()).DecodeArray(s, b, 0, -1); err == nil {
		t.Error("negative count: want error")
	}
}

func TestConcurrentDecode(t *testing.T) {
	root, mem, addr := unmanagedFixture(t)
	want, err := Decode(root, mem, addr)
	must(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Decode(root, mem, addr)
			if err != nil {
				errs <- err
				return
			}
			if !got.Equal(want) {
				errs <- stderrors.New("tree mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
