// Package schemafile reads schema declarations from YAML documents.
//
// A document names a platform and lists structs in any order; fields refer
// to other structs by name, so recursive and mutually recursive pointer
// shapes can be written directly:
//
//	platform: native64
//	structs:
//	  - name: Node
//	    align: 8
//	    fields:
//	      - {name: value, kind: int32}
//	      - {name: next, kind: pointer, target: Node}
//	      - {name: label, kind: pointer-to-utf8}
//
// Counts are either integer literals or the name of an earlier integer
// field. Everything is validated by schema.Registry.Declare.
package schemafile
