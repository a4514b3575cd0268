// Package memory provides linear memories and allocators for exercising
// generated layouts outside a Kotlin runtime.
//
// Linear is a plain byte slice. Wrap adapts a wazero api.Memory, and
// NewWazero instantiates a memory-only module so values can be marshalled
// through a real wasm memory. Arena is a bump allocator whose Reset releases
// every allocation, the runtime model of a scoped allocator.
package memory
