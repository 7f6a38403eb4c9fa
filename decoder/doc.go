// Package decoder turns native memory into Record trees.
//
// The decoder walks a schema and a base address together. For each field it
// pads the cursor to the field's effective alignment, reads the field and
// advances by the field's extent. Nested structs and arrays recurse in place;
// pointer kinds read one slot and recurse at the pointee, where a fresh
// traversal starts at offset zero under the target schema's own alignment.
//
// # Substitutions
//
// Some conditions do not abort a decode. They substitute a value and log it
// at debug level:
//   - a field encoding that does not resolve uses the call's encoding
//   - a dynamic count that is not a non-negative integer becomes 0
//   - a pointer reached at Options.MaxDepth decodes to its raw address
//
// Failures of the byte source itself, such as reads out of bounds or a
// string without a terminator inside Options.MaxScan, are returned as
// *errors.Error values carrying the dotted field path.
//
// A null pointer is not a substitution: it decodes to nativemap.Null without
// resolving the field's count.
//
// # Usage
//
//	rec, err := decoder.Decode(s, mem, addr)
//	name, _ := rec.Lookup("child.name")
//
// A Decoder with custom options:
//
//	d := decoder.New(decoder.Options{Encoding: "utf-8", MaxDepth: 8})
//	rec, err := d.Decode(s, mem, addr)
package decoder
