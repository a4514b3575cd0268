package witxbindgen

// Memory is a little-endian linear memory addressed by 32-bit offsets, the
// buffer generated bindings marshal values through.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out scratch space in linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// ScopedAllocator is an Allocator whose allocations are all released at once
// when the scope ends, the runtime counterpart of the
// withScopedMemoryAllocator block emitted around safe wrappers.
type ScopedAllocator interface {
	Allocator
	Reset()
}
