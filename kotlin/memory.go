package kotlin

import (
	"fmt"
	"strings"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
	"github.com/wippyai/witx-bindgen/layout"
)

type shapeKind uint8

const (
	shapeScalar shapeKind = iota + 1
	shapeFloat
	shapeHandle
	shapePointer
	shapeBool
	shapeBitflags
	shapeEnum
	shapeVariant
	shapeRecord
	shapePair
)

// shape is the memory classification of a type, shared by load and store.
type shape struct {
	record  *idl.Record
	variant *idl.Variant
	// decl is the declaration constructing the value, when it has one.
	decl    *idl.NamedType
	info    layout.Info
	kind    shapeKind
	repr    idl.IntRepr
	builtin idl.Builtin
}

// declaration follows aliases to the name that declares r's structure.
func declaration(r idl.TypeRef) *idl.NamedType {
	nt := r.Named
	for nt != nil && nt.Type.IsNamed() {
		nt = nt.Type.Named
	}
	return nt
}

func (g *Generator) classify(r idl.TypeRef) (shape, error) {
	s := shape{decl: declaration(r)}
	switch t := r.Resolve().(type) {
	case idl.Builtin:
		s.builtin = t
		if t == idl.F32 || t == idl.F64 {
			s.kind = shapeFloat
			return s, nil
		}
		repr, ok := builtinRepr(t)
		if !ok {
			return s, errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
				Type(t.String()).
				Detail("no memory access for builtin").
				Build()
		}
		s.kind, s.repr = shapeScalar, repr
		return s, nil
	case *idl.Handle:
		s.kind, s.repr = shapeHandle, idl.ReprU32
		return s, nil
	case *idl.Pointer, *idl.ConstPointer:
		s.kind, s.repr = shapePointer, idl.ReprU32
		return s, nil
	case *idl.List:
		return s, errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
			Type(t.String()).
			Detail("list stored in linear memory").
			Build()
	case *idl.Record:
		if repr, ok := t.BitflagsRepr(); ok {
			s.kind, s.repr = shapeBitflags, repr
			return s, nil
		}
		info, err := g.layouts.Calculate(r)
		if err != nil {
			return s, err
		}
		s.record, s.info = t, info
		if t.IsTuple() {
			if len(t.Members) != 2 {
				return s, errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
					Type(t.String()).
					Detail("only two-element tuples are supported").
					Build()
			}
			s.kind = shapePair
			return s, nil
		}
		if s.decl == nil {
			return s, errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
				Type(t.String()).
				Detail("anonymous record in linear memory").
				Build()
		}
		s.kind = shapeRecord
		return s, nil
	case *idl.Variant:
		s.variant, s.repr = t, t.TagRepr()
		if t.IsBool() {
			s.kind, s.repr = shapeBool, idl.ReprU8
			return s, nil
		}
		if s.decl == nil {
			return s, errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
				Type(t.String()).
				Detail("anonymous variant in linear memory").
				Build()
		}
		if t.IsEnumLike() {
			s.kind = shapeEnum
			return s, nil
		}
		info, err := g.layouts.Calculate(r)
		if err != nil {
			return s, err
		}
		s.kind, s.info = shapeVariant, info
		return s, nil
	}
	return s, errors.UnsupportedShape(errors.PhaseRender, nil, "unresolved type reference")
}

// addr renders base advanced by a folded constant offset.
func addr(base string, offset uint32) string {
	if offset == 0 {
		return base
	}
	return fmt.Sprintf("%s + %d", base, offset)
}

func loadInt(repr idl.IntRepr, p string) string {
	return fmt.Sprintf("load%s(%s)", reprTypes[repr], p)
}

// loadTag renders the discriminant of a variant as an Int. Byte and Short
// loads are signed, so tags past the signed range are masked back to their
// unsigned value.
func loadTag(s shape, p string) string {
	tag := loadInt(s.repr, p) + ".toInt()"
	n := len(s.variant.Cases)
	switch {
	case s.repr == idl.ReprU8 && n > 1<<7:
		return tag + " and 0xFF"
	case s.repr == idl.ReprU16 && n > 1<<15:
		return tag + " and 0xFFFF"
	}
	return tag
}

func storeInt(repr idl.IntRepr, p, v string) string {
	return fmt.Sprintf("store%s(%s, %s)", reprTypes[repr], p, v)
}

// load renders an expression reading a value of r at base + offset.
func (g *Generator) load(r idl.TypeRef, base string, offset uint32) (string, error) {
	s, err := g.classify(r)
	if err != nil {
		return "", err
	}
	p := addr(base, offset)

	switch s.kind {
	case shapeScalar, shapeHandle, shapeBitflags:
		return loadInt(s.repr, p), nil
	case shapeFloat:
		if s.builtin == idl.F32 {
			return "Float.fromBits(" + loadInt(idl.ReprU32, p) + ")", nil
		}
		return "Double.fromBits(" + loadInt(idl.ReprU64, p) + ")", nil
	case shapePointer:
		return "Pointer(" + loadInt(idl.ReprU32, p) + ".toUInt())", nil
	case shapeBool:
		return loadInt(idl.ReprU8, p) + ".toInt() != 0", nil
	case shapeEnum:
		return fmt.Sprintf("%s.values()[%s]", typeName(s.decl), loadTag(s, p)), nil
	case shapePair:
		args, err := g.loadMembers(s, base, offset)
		if err != nil {
			return "", err
		}
		return "Pair(" + strings.Join(args, ", ") + ")", nil
	case shapeRecord:
		args, err := g.loadMembers(s, base, offset)
		if err != nil {
			return "", err
		}
		return typeName(s.decl) + "(" + strings.Join(args, ", ") + ")", nil
	case shapeVariant:
		return g.loadVariant(s, base, offset)
	}
	return "", errors.UnsupportedShape(errors.PhaseRender, nil, "unknown shape")
}

func (g *Generator) loadMembers(s shape, base string, offset uint32) ([]string, error) {
	args := make([]string, len(s.record.Members))
	for i, m := range s.record.Members {
		a, err := g.load(m.Type, base, offset+s.info.Offsets[i])
		if err != nil {
			return nil, errors.At(err, m.Name)
		}
		args[i] = a
	}
	return args, nil
}

func (g *Generator) loadVariant(s shape, base string, offset uint32) (string, error) {
	name := typeName(s.decl)
	var b strings.Builder
	fmt.Fprintf(&b, "when (%s) {\n", loadTag(s, addr(base, offset)))
	for i, c := range s.variant.Cases {
		if c.Type == nil {
			fmt.Fprintf(&b, "    %d -> %s.%s\n", i, name, caseClass(c.Name))
			continue
		}
		payload, err := g.load(*c.Type, base, offset+s.info.PayloadOffset)
		if err != nil {
			return "", errors.At(err, c.Name)
		}
		fmt.Fprintf(&b, "    %d -> %s.%s(%s)\n", i, name, caseClass(c.Name), payload)
	}
	b.WriteString("    else -> error(\"Invalid variant\")\n}")
	return b.String(), nil
}

// store renders statements writing value of r at base + offset, one per line.
func (g *Generator) store(r idl.TypeRef, value, base string, offset uint32) (string, error) {
	s, err := g.classify(r)
	if err != nil {
		return "", err
	}
	p := addr(base, offset)

	switch s.kind {
	case shapeScalar, shapeHandle, shapeBitflags:
		return storeInt(s.repr, p, value), nil
	case shapeFloat:
		if s.builtin == idl.F32 {
			return storeInt(idl.ReprU32, p, value+".toRawBits()"), nil
		}
		return storeInt(idl.ReprU64, p, value+".toRawBits()"), nil
	case shapePointer:
		return storeInt(idl.ReprU32, p, value+".address.toInt()"), nil
	case shapeBool:
		return storeInt(idl.ReprU8, p, "if ("+value+") 1 else 0"), nil
	case shapeEnum:
		return storeInt(s.repr, p, fmt.Sprintf("%s.ordinal.to%s()", value, reprTypes[s.repr])), nil
	case shapePair:
		return g.storeMembers(s, []string{value + ".first", value + ".second"}, base, offset)
	case shapeRecord:
		refs := make([]string, len(s.record.Members))
		for i, m := range s.record.Members {
			refs[i] = value + "." + ident(m.Name)
		}
		return g.storeMembers(s, refs, base, offset)
	case shapeVariant:
		return "", errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
			Path(s.decl.Name).
			Detail("store of a variant with payloads").
			Build()
	}
	return "", errors.UnsupportedShape(errors.PhaseRender, nil, "unknown shape")
}

func (g *Generator) storeMembers(s shape, refs []string, base string, offset uint32) (string, error) {
	stmts := make([]string, 0, len(s.record.Members))
	for i, m := range s.record.Members {
		st, err := g.store(m.Type, refs[i], base, offset+s.info.Offsets[i])
		if err != nil {
			return "", errors.At(err, m.Name)
		}
		if st != "" {
			stmts = append(stmts, st)
		}
	}
	return strings.Join(stmts, "\n"), nil
}
