// Package kotlin renders Kotlin/Wasm bindings for an interface document.
//
// The output is one compilation unit: a header and package clause, a
// declaration per named type, a wrapper and a raw import per function, and
// the named constants.
//
// # Types
//
// Records become data classes with __load_/__store_ helpers, bitflags become
// an integer typealias plus an object of bit constants, enum-like variants
// become enum classes and other variants sealed classes. Handles alias Int.
// Declarations that reach a raw pointer are internal and carry the
// __unsafe__ prefix.
//
// # Functions
//
// Each function produces:
//
//	fun fd_close(fd: Fd): Unit {
//	    withScopedMemoryAllocator { allocator ->
//	        val ret = _raw_wasm__fd_close(fd)
//	        ...
//	    }
//	}
//
//	@WasmImport("wasi_snapshot_preview1", "fd_close")
//	private external fun _raw_wasm__fd_close(arg0: Int): Int
//
// The wrapper body comes from interpreting the abi instruction stream.
// Unsafe functions take the allocator as an explicit first parameter.
//
// # Limits
//
// Shapes without a faithful rendering fail with an unsupported_shape error
// instead of producing approximate code: lists inside records or variants,
// stores of variants with payloads, anonymous variants other than bool and
// result, tuples of other than two elements, and multi-value returns.
// Function names must already be snake_case.
package kotlin
