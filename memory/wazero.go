package memory

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/witx-bindgen/errors"
)

// PageSize is the size of one wasm memory page.
const PageSize = 65536

// memoryModule builds a module that only declares and exports "memory" with
// the given minimum page count.
func memoryModule(pages uint8) []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x05, 0x03, 0x01, 0x00, pages, // memory section: 1 memory, no max
		0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
		0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // "memory"
		0x02, 0x00, // kind: memory, index 0
	}
}

// Instance owns a wazero runtime holding one exported memory.
type Instance struct {
	*Wrapper
	rt wazero.Runtime
}

// NewWazero instantiates a memory of pages pages in a fresh interpreter
// runtime. Pages must be in 1..127.
func NewWazero(ctx context.Context, pages uint8) (*Instance, error) {
	if pages == 0 || pages > 127 {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "page count must be in 1..127")
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	mod, err := rt.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "instantiate memory module")
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseRuntime, "export", "memory")
	}
	return &Instance{Wrapper: Wrap(mem), rt: rt}, nil
}

// Close releases the runtime and its memory.
func (i *Instance) Close(ctx context.Context) error {
	return i.rt.Close(ctx)
}
