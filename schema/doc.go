// Package schema describes native composite types.
//
// A Schema is an ordered list of fields plus a declared alignment cap, the
// equivalent of #pragma pack. Each Field carries a Kind that selects how its
// bytes are read, an optional target schema for nested and pointer kinds, an
// optional text encoding and an optional Count. Counts are literals or
// references to an earlier integer field decoded in the same pass.
//
// Schemas are validated when constructed and are immutable afterwards:
//
//	node, err := schema.New("Node", 8,
//	    schema.Int32("value"),
//	    schema.Pointer("next", schema.Self),
//	)
//
// Mutually recursive types are declared by name through a Registry:
//
//	reg := schema.NewRegistry(nativemap.Native64)
//	_, err := reg.Declare(
//	    schema.Decl{Name: "A", Align: 8, Fields: []schema.FieldDecl{
//	        {Name: "b", Kind: schema.KindPointer, Target: "B"},
//	    }},
//	    schema.Decl{Name: "B", Align: 8, Fields: []schema.FieldDecl{
//	        {Name: "a", Kind: schema.KindPointer, Target: "A"},
//	    }},
//	)
//
// Every construction failure is an *errors.Error in errors.PhaseSchema.
package schema
