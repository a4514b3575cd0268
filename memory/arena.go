package memory

import (
	witxbindgen "github.com/wippyai/witx-bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/layout"
)

var _ witxbindgen.ScopedAllocator = (*Arena)(nil)

// Arena bump-allocates from [base, limit). Free is a no-op; Reset releases
// everything.
type Arena struct {
	base  uint32
	next  uint32
	limit uint32
}

// NewArena returns an arena over [base, limit).
func NewArena(base, limit uint32) *Arena {
	return &Arena{base: base, next: base, limit: limit}
}

// ArenaFor returns an arena over all of mem above base.
func ArenaFor(mem witxbindgen.MemorySizer, base uint32) *Arena {
	return NewArena(base, mem.Size())
}

// Alloc returns size bytes aligned to align.
func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	ptr := uint64(layout.AlignTo(a.next, align))
	if ptr+uint64(size) > uint64(a.limit) {
		return 0, errors.AllocationFailed(errors.PhaseRuntime, size, align)
	}
	a.next = uint32(ptr) + size
	return uint32(ptr), nil
}

func (a *Arena) Free(ptr, size, align uint32) {}

// Reset releases every allocation.
func (a *Arena) Reset() { a.next = a.base }

// Used returns the number of bytes handed out since the last Reset,
// including padding.
func (a *Arena) Used() uint32 { return a.next - a.base }
