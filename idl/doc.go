// Package idl models a loaded interface description document.
//
// A Document holds named types, modules of functions, and constants. Types
// form a closed union (Record, Variant, Handle, List, Pointer, ConstPointer,
// Builtin) reached through TypeRef values that either name a declared type
// or define one inline.
//
// Documents are built once by a loader and are read-only afterwards. Nothing
// in the generator mutates them.
//
// # Shapes
//
// Several encodings are derived from the plain structure:
//
//   - Bitflags records: one bit per member in a single integer.
//   - Tuple records: positional members; two-element tuples render as pairs.
//   - Enum-like variants: no case carries a payload; encoded as the tag alone.
//   - Result variants: cases ok and err; the error surfaces as a thrown value.
//   - Boolean variants: payload-free cases false and true.
//
// # Safety
//
// A type is unsafe when it transitively reaches a Pointer or ConstPointer.
// Unsafe declarations and functions are kept off the public surface of the
// generated bindings.
package idl
