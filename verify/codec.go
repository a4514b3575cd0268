package verify

import (
	"fmt"
	"math"

	witxbindgen "github.com/wippyai/witx-bindgen"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/layout"
)

// Record is the value of a record or tuple.
type Record []any

// Case is the value of a variant: the case index and its payload, nil for
// payload-free cases.
type Case struct {
	Payload any
	Tag     uint32
}

// Codec stores and loads values following a layout calculator.
type Codec struct {
	layouts *layout.Calculator
}

// NewCodec creates a codec with its own layout cache.
func NewCodec() *Codec {
	return &Codec{layouts: layout.NewCalculator()}
}

// Layout returns the layout of r.
func (c *Codec) Layout(r idl.TypeRef) (layout.Info, error) {
	return c.layouts.Calculate(r)
}

func mismatch(r idl.TypeRef, v any) error {
	return errors.Mismatch(errors.PhaseVerify, nil, r.String(), fmt.Sprintf("cannot hold %T", v))
}

func storeInt(mem witxbindgen.Memory, size, ptr uint32, v uint64) error {
	switch size {
	case 1:
		return mem.WriteU8(ptr, uint8(v))
	case 2:
		return mem.WriteU16(ptr, uint16(v))
	case 4:
		return mem.WriteU32(ptr, uint32(v))
	case 8:
		return mem.WriteU64(ptr, v)
	}
	return errors.UnsupportedShape(errors.PhaseVerify, nil, fmt.Sprintf("%d-byte integer", size))
}

func loadInt(mem witxbindgen.Memory, size, ptr uint32) (uint64, error) {
	switch size {
	case 1:
		v, err := mem.ReadU8(ptr)
		return uint64(v), err
	case 2:
		v, err := mem.ReadU16(ptr)
		return uint64(v), err
	case 4:
		v, err := mem.ReadU32(ptr)
		return uint64(v), err
	case 8:
		return mem.ReadU64(ptr)
	}
	return 0, errors.UnsupportedShape(errors.PhaseVerify, nil, fmt.Sprintf("%d-byte integer", size))
}

// fits reports whether v has no bits above the low n.
func fits(v uint64, n int) bool {
	return n >= 64 || v>>uint(n) == 0
}

// Store writes v as a value of r at ptr.
func (c *Codec) Store(mem witxbindgen.Memory, r idl.TypeRef, ptr uint32, v any) error {
	info, err := c.layouts.Calculate(r)
	if err != nil {
		return err
	}

	switch t := r.Resolve().(type) {
	case idl.Builtin:
		switch t {
		case idl.F32:
			f, ok := v.(float32)
			if !ok {
				return mismatch(r, v)
			}
			return mem.WriteU32(ptr, math.Float32bits(f))
		case idl.F64:
			f, ok := v.(float64)
			if !ok {
				return mismatch(r, v)
			}
			return mem.WriteU64(ptr, math.Float64bits(f))
		}
		return c.storeBits(mem, r, info.Size, ptr, v, int(info.Size)*8)

	case *idl.Handle, *idl.Pointer, *idl.ConstPointer:
		return c.storeBits(mem, r, info.Size, ptr, v, int(info.Size)*8)

	case *idl.Record:
		if t.Shape == idl.Bitflags {
			return c.storeBits(mem, r, info.Size, ptr, v, len(t.Members))
		}
		rec, ok := v.(Record)
		if !ok || len(rec) != len(t.Members) {
			return mismatch(r, v)
		}
		for i, m := range t.Members {
			if err := c.Store(mem, m.Type, ptr+info.Offsets[i], rec[i]); err != nil {
				return errors.At(err, m.Name)
			}
		}
		return nil

	case *idl.Variant:
		if t.IsBool() {
			b, ok := v.(bool)
			if !ok {
				return mismatch(r, v)
			}
			if b {
				return mem.WriteU8(ptr, 1)
			}
			return mem.WriteU8(ptr, 0)
		}
		cs, ok := v.(Case)
		if !ok {
			return mismatch(r, v)
		}
		if int(cs.Tag) >= len(t.Cases) {
			return errors.InvalidDiscriminant(errors.PhaseVerify, nil, cs.Tag, uint32(len(t.Cases)-1))
		}
		if err := storeInt(mem, info.Tag.Size(), ptr, uint64(cs.Tag)); err != nil {
			return err
		}
		c0 := t.Cases[cs.Tag]
		switch {
		case c0.Type == nil && cs.Payload != nil:
			return errors.At(mismatch(r, cs.Payload), c0.Name)
		case c0.Type == nil:
			return nil
		}
		if err := c.Store(mem, *c0.Type, ptr+info.PayloadOffset, cs.Payload); err != nil {
			return errors.At(err, c0.Name)
		}
		return nil
	}
	return errors.UnsupportedShape(errors.PhaseVerify, nil, "store of "+r.String())
}

func (c *Codec) storeBits(mem witxbindgen.Memory, r idl.TypeRef, size, ptr uint32, v any, bits int) error {
	u, ok := v.(uint64)
	if !ok {
		return mismatch(r, v)
	}
	if !fits(u, bits) {
		return errors.Overflow(errors.PhaseVerify, nil, u, r.String())
	}
	return storeInt(mem, size, ptr, u)
}

// Load reads a value of r at ptr.
func (c *Codec) Load(mem witxbindgen.Memory, r idl.TypeRef, ptr uint32) (any, error) {
	info, err := c.layouts.Calculate(r)
	if err != nil {
		return nil, err
	}

	switch t := r.Resolve().(type) {
	case idl.Builtin:
		switch t {
		case idl.F32:
			bits, err := mem.ReadU32(ptr)
			return math.Float32frombits(bits), err
		case idl.F64:
			bits, err := mem.ReadU64(ptr)
			return math.Float64frombits(bits), err
		}
		return loadInt(mem, info.Size, ptr)

	case *idl.Handle, *idl.Pointer, *idl.ConstPointer:
		return loadInt(mem, info.Size, ptr)

	case *idl.Record:
		if t.Shape == idl.Bitflags {
			return loadInt(mem, info.Size, ptr)
		}
		rec := make(Record, len(t.Members))
		for i, m := range t.Members {
			v, err := c.Load(mem, m.Type, ptr+info.Offsets[i])
			if err != nil {
				return nil, errors.At(err, m.Name)
			}
			rec[i] = v
		}
		return rec, nil

	case *idl.Variant:
		if t.IsBool() {
			b, err := mem.ReadU8(ptr)
			if err != nil {
				return nil, err
			}
			if b > 1 {
				return nil, errors.InvalidDiscriminant(errors.PhaseVerify, nil, uint32(b), 1)
			}
			return b == 1, nil
		}
		tag, err := loadInt(mem, info.Tag.Size(), ptr)
		if err != nil {
			return nil, err
		}
		if tag >= uint64(len(t.Cases)) {
			return nil, errors.InvalidDiscriminant(errors.PhaseVerify, nil, uint32(tag), uint32(len(t.Cases)-1))
		}
		cs := Case{Tag: uint32(tag)}
		if c0 := t.Cases[tag]; c0.Type != nil {
			payload, err := c.Load(mem, *c0.Type, ptr+info.PayloadOffset)
			if err != nil {
				return nil, errors.At(err, c0.Name)
			}
			cs.Payload = payload
		}
		return cs, nil
	}
	return nil, errors.UnsupportedShape(errors.PhaseVerify, nil, "load of "+r.String())
}
