// Package memory provides byte sources for the decoder.
//
// Buffer is a slice placed at a chosen base address. Tests and tools lay out
// native structures in it with the Put and Alloc helpers, using the same
// addresses the decoder will later dereference.
//
// Wazero adapts a wasm linear memory, where addresses are 32-bit offsets.
//
// Native reads the memory of the current process. It exists for addresses
// handed back by cgo or syscalls and performs no validation beyond rejecting
// the null page.
package memory
