// Package witxbindgen generates Kotlin/Wasm bindings for WebAssembly ABIs
// described by typed interface documents.
//
// The generator takes an interface description (records, variants, handles,
// lists, pointers, builtins, functions and constants) and renders one Kotlin
// compilation unit containing type declarations, a raw @WasmImport entry point
// per function, and a typed wrapper that marshals arguments through linear
// memory and unmarshals results.
//
// # Architecture Overview
//
//	witxbindgen/         Root package with Memory and Allocator interfaces
//	├── idl/             Interface description document model
//	│   └── witload/     WIT (wasm-tools JSON) loader
//	├── wasi/preview1/   Built-in WASI snapshot-preview1 document
//	├── layout/          Size, alignment and offsets of composite types
//	├── abi/             Instruction stream and the emission engine
//	├── kotlin/          Kotlin renderer and ABI instruction interpreter
//	├── memory/          Linear memories (byte slice, wazero) and allocators
//	├── verify/          Round-trip verification of layouts
//	├── errors/          Structured error types
//	└── cmd/witx-bindgen Command line tool
//
// # Quick Start
//
//	doc := preview1.Document()
//	src, err := kotlin.Generate(doc, kotlin.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("Wasi.kt", []byte(src), 0o644)
//
// # Limits
//
// Shapes the generator does not model (lists nested in composites, storing
// payload-carrying variants, multi-value returns, anonymous variants other
// than result and bool) abort generation with an unsupported_shape error.
// No partial output is produced.
package witxbindgen
