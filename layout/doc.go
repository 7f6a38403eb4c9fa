// Package layout computes native struct layout from schemas.
//
// The rules mirror a C compiler under #pragma pack(n), where n is the
// schema's declared alignment:
//   - Scalars: natural alignment equals width (bool and int8 = 1, wchar = 2, ...)
//   - Text and multi-text: alignment 1, extent equals the count
//   - Pointer kinds: one platform pointer slot, the pointee is out of line
//   - Inline structs and arrays: the target's alignment, elements spaced by Stride
//
// Every field's effective alignment is its natural alignment capped by the
// declared alignment of the enclosing schema. Size excludes tail padding;
// Stride rounds Size up to the schema alignment and is the distance between
// consecutive array elements.
//
// # Usage
//
//	info := layout.Of(s)
//	// info.Size, info.Align, info.Stride, info.Offsets available
//
// Fields sized by a sibling field contribute nothing to the static layout.
// The decoder adds their resolved extent while it walks memory.
package layout
