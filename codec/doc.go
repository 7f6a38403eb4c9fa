// Package codec reads primitive values and strings from a byte source.
//
// Scalars are little-endian and read at their exact address; the caller has
// already applied alignment. Strings come in two forms: fixed windows whose
// length is known up front, and terminated strings found by scanning for a
// NUL byte, a wide NUL or a double NUL. Scans are bounded by a byte limit so
// a missing terminator cannot walk the whole address space.
//
// Text encodings are looked up by name, first among encodings registered
// with RegisterEncoding, then in the IANA index of golang.org/x/text.
package codec
