package verify

import (
	"math"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

type sampleKind uint8

const (
	sampleZero sampleKind = iota
	sampleMax
	sampleMid
)

var sampleKinds = []sampleKind{sampleZero, sampleMax, sampleMid}

const midPattern = 0x5a5a5a5a5a5a5a5a

func lowBits(n int) uint64 {
	if n >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(n) - 1
}

// Samples returns the values RoundTrip checks for r: every case of an enum,
// every case of a variant with zero, max and mid payloads, and zero, max and
// mid values of anything else.
func Samples(r idl.TypeRef) ([]any, error) {
	if v, ok := r.Resolve().(*idl.Variant); ok && !v.IsBool() {
		var out []any
		for tag, c := range v.Cases {
			if c.Type == nil {
				out = append(out, Case{Tag: uint32(tag)})
				continue
			}
			for _, k := range sampleKinds {
				p, err := sample(*c.Type, k)
				if err != nil {
					return nil, errors.At(err, c.Name)
				}
				out = append(out, Case{Tag: uint32(tag), Payload: p})
			}
		}
		return out, nil
	}

	out := make([]any, 0, len(sampleKinds))
	for _, k := range sampleKinds {
		s, err := sample(r, k)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func sample(r idl.TypeRef, k sampleKind) (any, error) {
	switch t := r.Resolve().(type) {
	case idl.Builtin:
		switch t {
		case idl.F32:
			return [...]float32{0, math.MaxFloat32, -1.5}[k], nil
		case idl.F64:
			return [...]float64{0, math.MaxFloat64, -2.25}[k], nil
		case idl.Char:
			return [...]uint64{0, 0x10ffff, 'A'}[k], nil
		}
		return bits(int(t.Size())*8, k), nil

	case *idl.Handle, *idl.Pointer, *idl.ConstPointer:
		return bits(32, k), nil

	case *idl.Record:
		if t.Shape == idl.Bitflags {
			return bits(len(t.Members), k), nil
		}
		rec := make(Record, len(t.Members))
		for i, m := range t.Members {
			v, err := sample(m.Type, k)
			if err != nil {
				return nil, errors.At(err, m.Name)
			}
			rec[i] = v
		}
		return rec, nil

	case *idl.Variant:
		if t.IsBool() {
			return k != sampleZero, nil
		}
		if len(t.Cases) == 0 {
			break
		}
		tag := 0
		switch k {
		case sampleMax:
			tag = len(t.Cases) - 1
		case sampleMid:
			tag = len(t.Cases) / 2
		}
		cs := Case{Tag: uint32(tag)}
		if c := t.Cases[tag]; c.Type != nil {
			p, err := sample(*c.Type, k)
			if err != nil {
				return nil, errors.At(err, c.Name)
			}
			cs.Payload = p
		}
		return cs, nil
	}
	return nil, errors.New(errors.PhaseVerify, errors.KindUnsupportedShape).
		Type(r.String()).
		Detail("no samples").
		Build()
}

// bits returns the zero, all-ones or alternating pattern of an n-bit value.
func bits(n int, k sampleKind) uint64 {
	switch k {
	case sampleMax:
		return lowBits(n)
	case sampleMid:
		return midPattern & lowBits(n)
	}
	return 0
}
