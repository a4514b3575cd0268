package kotlin

import (
	"fmt"
	"strings"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

var reprTypes = map[idl.IntRepr]string{
	idl.ReprU8:  "Byte",
	idl.ReprU16: "Short",
	idl.ReprU32: "Int",
	idl.ReprU64: "Long",
}

// builtinRepr returns the integer width a builtin is stored with.
func builtinRepr(b idl.Builtin) (idl.IntRepr, bool) {
	switch b {
	case idl.U8, idl.S8, idl.Char8:
		return idl.ReprU8, true
	case idl.U16, idl.S16:
		return idl.ReprU16, true
	case idl.U32, idl.S32, idl.Usize:
		return idl.ReprU32, true
	case idl.U64, idl.S64:
		return idl.ReprU64, true
	}
	return 0, false
}

func builtinType(b idl.Builtin) (string, error) {
	switch b {
	case idl.F32:
		return "Float", nil
	case idl.F64:
		return "Double", nil
	case idl.Char:
		return "", errors.UnsupportedShape(errors.PhaseRender, nil, "char has no Kotlin mapping")
	}
	if repr, ok := builtinRepr(b); ok {
		return reprTypes[repr], nil
	}
	return "", errors.UnsupportedShape(errors.PhaseRender, nil, "unknown builtin "+b.String())
}

// typeRef renders the Kotlin type expression for r.
func typeRef(r idl.TypeRef) (string, error) {
	if r.IsNamed() {
		return typeName(r.Named), nil
	}
	switch t := r.Value.(type) {
	case idl.Builtin:
		return builtinType(t)
	case *idl.Handle:
		return "Int", nil
	case *idl.List:
		if t.IsString() {
			return "String", nil
		}
		elem, err := typeRef(t.Elem)
		if err != nil {
			return "", err
		}
		return "List<" + elem + ">", nil
	case *idl.Pointer:
		return pointerType(t.Elem)
	case *idl.ConstPointer:
		return pointerType(t.Elem)
	case *idl.Variant:
		if t.IsBool() {
			return "Boolean", nil
		}
		if ok, _, isResult := t.AsResult(); isResult {
			if ok == nil {
				return "Unit", nil
			}
			return typeRef(*ok)
		}
		return "", errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
			Type(t.String()).
			Detail("reference to anonymous variant").
			Build()
	case *idl.Record:
		if t.IsTuple() && len(t.Members) == 2 {
			a, err := typeRef(t.Members[0].Type)
			if err != nil {
				return "", err
			}
			b, err := typeRef(t.Members[1].Type)
			if err != nil {
				return "", err
			}
			return "Pair<" + a + ", " + b + ">", nil
		}
		return "", errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
			Type(t.String()).
			Detail("reference to anonymous record").
			Build()
	}
	return "", errors.UnsupportedShape(errors.PhaseRender, nil, "unresolved type reference")
}

func pointerType(elem idl.TypeRef) (string, error) {
	inner, err := typeRef(elem)
	if err != nil {
		return "", err
	}
	return "Pointer/*<" + inner + ">*/", nil
}

// wasmType renders a flattened ABI value type.
func wasmType(t idl.WasmType) string {
	switch idl.WasmTypeName(t) {
	case "i64":
		return "Long"
	case "f32":
		return "Float"
	case "f64":
		return "Double"
	}
	return "Int"
}

// renderNamedType renders the top-level declaration of nt.
func (g *Generator) renderNamedType(b *strings.Builder, nt *idl.NamedType) error {
	kdoc(b, nt.Docs, "")
	if nt.Type.IsNamed() {
		return renderAlias(b, nt)
	}
	switch t := nt.Type.Value.(type) {
	case *idl.Record:
		if t.Shape == idl.Bitflags {
			return renderBitflags(b, nt, t)
		}
		if t.IsTuple() {
			return renderAlias(b, nt)
		}
		return g.renderRecord(b, nt, t)
	case *idl.Variant:
		if t.IsBool() {
			return renderAlias(b, nt)
		}
		if t.IsEnumLike() {
			renderEnum(b, nt, t)
			return nil
		}
		return renderSealed(b, nt, t)
	case *idl.Handle:
		fmt.Fprintf(b, "typealias %s = Int\n", typeName(nt))
		return nil
	}
	return renderAlias(b, nt)
}

func visibility(nt *idl.NamedType) string {
	if !nt.IsSafe() {
		return "internal "
	}
	return ""
}

func renderAlias(b *strings.Builder, nt *idl.NamedType) error {
	target, err := aliasTarget(nt.Type)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "%stypealias %s = %s\n", visibility(nt), typeName(nt), target)
	return nil
}

// aliasTarget renders the right-hand side of a typealias; named bool
// variants alias the native boolean.
func aliasTarget(r idl.TypeRef) (string, error) {
	if v, ok := r.Value.(*idl.Variant); ok && v.IsBool() {
		return "Boolean", nil
	}
	return typeRef(r)
}

func renderBitflags(b *strings.Builder, nt *idl.NamedType, r *idl.Record) error {
	repr, ok := r.BitflagsRepr()
	if !ok {
		return errors.New(errors.PhaseRender, errors.KindUnsupportedShape).
			Path(nt.Name).
			Detail("%d flags exceed 64 bits", len(r.Members)).
			Build()
	}
	name := typeName(nt)
	fmt.Fprintf(b, "typealias %s = %s\n", name, reprTypes[repr])
	fmt.Fprintf(b, "object %s {\n", shouty(nt.Name))
	for i, m := range r.Members {
		kdoc(b, m.Docs, "    ")
		fmt.Fprintf(b, "    const val %s: %s = %s\n", shouty(m.Name), name, flagValue(repr, i))
	}
	b.WriteString("}\n")
	return nil
}

// flagValue renders bit i in the carrier of repr.
func flagValue(repr idl.IntRepr, i int) string {
	switch repr {
	case idl.ReprU64:
		return fmt.Sprintf("1L shl %d", i)
	case idl.ReprU8:
		return fmt.Sprintf("(1 shl %d).toByte()", i)
	case idl.ReprU16:
		return fmt.Sprintf("(1 shl %d).toShort()", i)
	}
	return fmt.Sprintf("1 shl %d", i)
}

func (g *Generator) renderRecord(b *strings.Builder, nt *idl.NamedType, r *idl.Record) error {
	name := typeName(nt)
	vis := visibility(nt)

	fmt.Fprintf(b, "%sdata class %s(\n", vis, name)
	for _, m := range r.Members {
		ty, err := typeRef(m.Type)
		if err != nil {
			return errors.At(err, nt.Name, m.Name)
		}
		kdoc(b, m.Docs, "    ")
		fmt.Fprintf(b, "    var %s: %s,\n", ident(m.Name), ty)
	}
	b.WriteString(")\n\n")

	load, err := g.load(idl.Ref(nt), "ptr", 0)
	if err != nil {
		return errors.At(err, nt.Name)
	}
	fmt.Fprintf(b, "internal fun __load_%s(ptr: Int): %s {\n", name, name)
	b.WriteString(indent("return "+load, "    "))
	b.WriteString("\n}\n\n")

	store, err := g.store(idl.Ref(nt), "x", "ptr", 0)
	if err != nil {
		return errors.At(err, nt.Name)
	}
	fmt.Fprintf(b, "internal fun __store_%s(x: %s, ptr: Int) {\n", name, name)
	if store != "" {
		b.WriteString(indent(store, "    "))
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return nil
}

func renderEnum(b *strings.Builder, nt *idl.NamedType, v *idl.Variant) {
	fmt.Fprintf(b, "enum class %s {\n", typeName(nt))
	for _, c := range v.Cases {
		kdoc(b, c.Docs, "    ")
		fmt.Fprintf(b, "    %s,\n", enumCase(c.Name))
	}
	b.WriteString("}\n")
}

func renderSealed(b *strings.Builder, nt *idl.NamedType, v *idl.Variant) error {
	name := typeName(nt)
	fmt.Fprintf(b, "%ssealed class %s {\n", visibility(nt), name)
	for _, c := range v.Cases {
		kdoc(b, c.Docs, "    ")
		if c.Type == nil {
			fmt.Fprintf(b, "    object %s : %s()\n", caseClass(c.Name), name)
			continue
		}
		ty, err := typeRef(*c.Type)
		if err != nil {
			return errors.At(err, nt.Name, c.Name)
		}
		fmt.Fprintf(b, "    data class %s(var value: %s) : %s()\n", caseClass(c.Name), ty, name)
	}
	b.WriteString("}\n")
	return nil
}

// indent prefixes every non-empty line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
