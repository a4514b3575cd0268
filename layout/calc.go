package layout

import (
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// PointerSize is the width of addresses and handles in a 32-bit linear memory.
const PointerSize = 4

// Info describes how a type is placed in linear memory.
type Info struct {
	// Offsets holds one entry per record member, in declaration order.
	Offsets []uint32
	Size    uint32
	Align   uint32
	// PayloadOffset is where every variant case stores its payload.
	PayloadOffset uint32
	// Tag is the variant discriminant or bitflags integer width.
	Tag idl.IntRepr
}

type Calculator struct {
	cache map[idl.Type]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[idl.Type]Info),
	}
}

// Calculate returns the layout of r. Types that cannot be laid out fail with
// an unsupported_shape error.
func (c *Calculator) Calculate(r idl.TypeRef) (Info, error) {
	t := r.Resolve()
	if t == nil {
		return Info{}, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Type(r.String()).
			Detail("unresolved type reference").
			Build()
	}
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	info, err := c.calculate(t)
	if err != nil {
		if r.IsNamed() {
			return Info{}, errors.At(err, r.Named.Name)
		}
		return Info{}, err
	}
	c.cache[t] = info
	return info, nil
}

// Size returns the size of r, for callers that only allocate.
func (c *Calculator) Size(r idl.TypeRef) (uint32, error) {
	info, err := c.Calculate(r)
	return info.Size, err
}

func (c *Calculator) calculate(t idl.Type) (Info, error) {
	switch typ := t.(type) {
	case idl.Builtin:
		size := typ.Size()
		if size == 0 {
			return Info{}, errors.UnsupportedShape(errors.PhaseLayout, nil, "unknown builtin "+typ.String())
		}
		return Info{Size: size, Align: size}, nil
	case *idl.Handle, *idl.Pointer, *idl.ConstPointer:
		return Info{Size: PointerSize, Align: PointerSize}, nil
	case *idl.Record:
		return c.calculateRecord(typ)
	case *idl.Variant:
		return c.calculateVariant(typ)
	case *idl.List:
		return Info{}, errors.New(errors.PhaseLayout, errors.KindUnsupportedShape).
			Type(typ.String()).
			Detail("lists have no in-memory layout").
			Build()
	}
	return Info{}, errors.UnsupportedShape(errors.PhaseLayout, nil, "unknown type "+t.String())
}

func (c *Calculator) calculateRecord(r *idl.Record) (Info, error) {
	if r.Shape == idl.Bitflags {
		repr, ok := r.BitflagsRepr()
		if !ok {
			return Info{}, errors.New(errors.PhaseLayout, errors.KindUnsupportedShape).
				Type(r.String()).
				Detail("%d flags exceed 64 bits", len(r.Members)).
				Build()
		}
		return Info{Size: repr.Size(), Align: repr.Size(), Tag: repr}, nil
	}

	if len(r.Members) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	offsets := make([]uint32, len(r.Members))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, m := range r.Members {
		ml, err := c.Calculate(m.Type)
		if err != nil {
			return Info{}, errors.At(err, m.Name)
		}

		offset = AlignTo(offset, ml.Align)
		offsets[i] = offset

		if ml.Align > maxAlign {
			maxAlign = ml.Align
		}

		offset += ml.Size
	}

	return Info{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}, nil
}

func (c *Calculator) calculateVariant(v *idl.Variant) (Info, error) {
	if len(v.Cases) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	tag := v.TagRepr()
	discSize := tag.Size()

	maxAlign := discSize
	maxSize := uint32(0)

	for _, cs := range v.Cases {
		if cs.Type == nil {
			continue
		}
		cl, err := c.Calculate(*cs.Type)
		if err != nil {
			return Info{}, errors.At(err, cs.Name)
		}
		if cl.Align > maxAlign {
			maxAlign = cl.Align
		}
		if cl.Size > maxSize {
			maxSize = cl.Size
		}
	}

	payloadOffset := AlignTo(discSize, maxAlign)

	return Info{
		Size:          AlignTo(payloadOffset+maxSize, maxAlign),
		Align:         maxAlign,
		Tag:           tag,
		PayloadOffset: payloadOffset,
	}, nil
}

// Calc computes the layout of r with a throwaway calculator.
func Calc(r idl.TypeRef) (Info, error) {
	return NewCalculator().Calculate(r)
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantRepr returns the tag width for a variant with n cases.
func DiscriminantRepr(n int) idl.IntRepr { return idl.TagRepr(n) }

// FlagsRepr returns the integer width for n flags.
func FlagsRepr(n int) (idl.IntRepr, bool) { return idl.FlagsRepr(n) }
