// Package nativemap decodes foreign memory blocks laid out by native (C/C++ ABI)
// struct rules into Go value trees, driven by declarative schemas.
//
// A schema describes field order, primitive kinds, text encodings, nested and
// pointer relationships and array counts. From it the layout calculator
// reproduces the compiler's offset, alignment and padding decisions, and the
// decoder reads values at those offsets.
//
// # Architecture Overview
//
//	nativemap/          Root package with Address, Memory and Platform
//	├── schema/         Kinds, fields, schemas, validation and the registry
//	├── layout/         Alignment, size, stride and padding calculation
//	├── codec/          Scalar reads, string scans and text encodings
//	├── decoder/        Schema-driven traversal producing Record trees
//	├── memory/         Byte sources: slice fixtures, wazero memory, process memory
//	├── schemafile/     YAML schema documents
//	├── witschema/      WIT type definitions to schemas
//	├── errors/         Structured error types
//	└── cmd/nativemap/  Demo CLI over wasm modules
//
// # Quick Start
//
//	child, _ := schema.New("Child", 8,
//	    schema.Int64("no"),
//	    schema.PointerTo("name", schema.KindPointerToANSI),
//	)
//	parent, _ := schema.New("Parent", 8,
//	    schema.Int32("count"),
//	    schema.PointerToArray("children", child, schema.CountFrom("count")),
//	)
//
//	rec, err := decoder.Decode(parent, mem, addr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rec.Map())
//
// # Memory Model
//
// Decoding never writes memory. The caller guarantees that the bytes behind
// the supplied address stay valid and unmodified for the duration of a call.
// Schemas are immutable once constructed and may be shared between goroutines;
// each decode call builds a fresh, independent value tree.
package nativemap
