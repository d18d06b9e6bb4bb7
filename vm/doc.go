// Package vm provides the memory model the Cairn hint runtime executes
// against: segment-relative addresses, the felt/address value union, the
// segmented memory arena, and the register window (AP/FP) the interpreter
// exposes at a hint site.
//
// Addresses are always (segment, offset) pairs; raw host pointers are never
// exposed. Segments with negative indices are temporary and are merged into
// the main address space only when a run is relocated.
package vm
