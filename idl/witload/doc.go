// Package witload builds idl documents from the JSON form of a resolved WIT
// package, as printed by `wasm-tools component wit --json`.
//
// Types are decoded with go.bytecodealliance.org/wit and mapped onto the idl
// shapes: strings become list<char>, flags become bitflags records, enums,
// options and results become variants, and resources with their own and
// borrow handles become idl handles. Every named interface becomes a module
// whose functions are ordered by name.
//
// WIT identifiers are kebab-case. Declarations and functions are renamed to
// snake_case; the original function name is kept as the import symbol.
package witload
