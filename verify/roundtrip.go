package verify

import (
	"bytes"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	witxbindgen "github.com/wippyai/witx-bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/layout"
)

// guard is the number of bytes past a value that must survive its store.
const guard = 8

const canary = 0xcc

// Result reports the round trip of one declared type.
type Result struct {
	Err     error
	Type    string
	Skipped string
	Info    layout.Info
	Samples int
}

// OK reports whether the type was checked without error.
func (r Result) OK() bool { return r.Err == nil && r.Skipped == "" }

// candidate reports whether nt declares a structure RoundTrip checks.
func candidate(nt *idl.NamedType) bool {
	if nt.Type.IsNamed() {
		return false
	}
	switch t := nt.Type.Value.(type) {
	case *idl.Record:
		return true
	case *idl.Variant:
		return !t.IsBool()
	}
	return false
}

// RoundTrip stores and reloads samples of every record, bitflags and variant
// declared in doc, using mem for storage and alloc for placement. Types with
// no layout are skipped. The returned error is the first failure.
func RoundTrip(doc *idl.Document, mem witxbindgen.Memory, alloc witxbindgen.ScopedAllocator) ([]Result, error) {
	c := NewCodec()
	var results []Result
	var first error

	for _, nt := range doc.Types {
		if !candidate(nt) {
			continue
		}
		res := c.roundTripType(mem, alloc, nt)
		if res.Skipped != "" {
			Logger().Warn("skipped type", zap.String("type", nt.Name), zap.String("reason", res.Skipped))
		}
		if res.Err != nil && first == nil {
			first = res.Err
		}
		Logger().Debug("round trip",
			zap.String("type", nt.Name),
			zap.Int("samples", res.Samples),
			zap.Uint32("size", res.Info.Size),
			zap.Bool("ok", res.OK()))
		results = append(results, res)
	}
	return results, first
}

func (c *Codec) roundTripType(mem witxbindgen.Memory, alloc witxbindgen.ScopedAllocator, nt *idl.NamedType) Result {
	res := Result{Type: nt.Name}
	r := idl.Ref(nt)

	info, err := c.layouts.Calculate(r)
	if err != nil {
		res.Skipped = err.Error()
		return res
	}
	res.Info = info

	samples, err := Samples(r)
	if err != nil {
		res.Skipped = err.Error()
		return res
	}

	for i, s := range samples {
		if err := c.check(mem, alloc, r, info, s); err != nil {
			res.Err = errors.At(err, nt.Name, fmt.Sprintf("sample%d", i))
			return res
		}
		res.Samples++
	}
	return res
}

// check stores v into a canary-filled slot, verifies nothing past the layout
// size changed and that loading yields v again.
func (c *Codec) check(mem witxbindgen.Memory, alloc witxbindgen.ScopedAllocator, r idl.TypeRef, info layout.Info, v any) error {
	alloc.Reset()
	ptr, err := alloc.Alloc(info.Size+guard, info.Align)
	if err != nil {
		return err
	}
	if err := mem.Write(ptr, bytes.Repeat([]byte{canary}, int(info.Size+guard))); err != nil {
		return err
	}

	if err := c.Store(mem, r, ptr, v); err != nil {
		return err
	}
	tail, err := mem.Read(ptr+info.Size, guard)
	if err != nil {
		return err
	}
	if !bytes.Equal(tail, bytes.Repeat([]byte{canary}, guard)) {
		return errors.Mismatch(errors.PhaseVerify, nil, r.String(),
			fmt.Sprintf("store wrote past %d bytes", info.Size))
	}

	got, err := c.Load(mem, r, ptr)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(v, got); diff != "" {
		return errors.Mismatch(errors.PhaseVerify, nil, r.String(), "round trip (-stored +loaded):\n"+diff)
	}
	return nil
}
