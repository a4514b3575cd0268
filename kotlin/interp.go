package kotlin

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/abi"
	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// interp renders one wrapper body from the instruction stream. Operands are
// Kotlin expressions.
type interp struct {
	g       *Generator
	fn      *idl.Function
	rawName string

	// lines is the statement buffer of the innermost open block.
	lines  []string
	saved  [][]string
	blocks []string

	calls    int
	lastCall string
	lists    int
}

var _ abi.Bindgen[string] = (*interp)(nil)

func newInterp(g *Generator, fn *idl.Function, rawName string) *interp {
	return &interp{g: g, fn: fn, rawName: rawName}
}

func (i *interp) push(stmt string) {
	i.lines = append(i.lines, stmt)
}

// body returns the rendered statements; valid once the stream is complete.
func (i *interp) body() string {
	return strings.Join(i.lines, "\n")
}

func (i *interp) PushBlock() {
	i.saved = append(i.saved, i.lines)
	i.lines = nil
	Logger().Debug("push block", zap.String("func", i.fn.Name), zap.Int("depth", len(i.saved)))
}

func (i *interp) FinishBlock(operand *string) error {
	if len(i.saved) == 0 {
		return errors.StackViolation(errors.PhaseInterpret, []string{i.fn.Name}, "finish without open block")
	}
	stmts := i.lines
	i.lines = i.saved[len(i.saved)-1]
	i.saved = i.saved[:len(i.saved)-1]

	switch {
	case operand == nil && len(stmts) > 0:
		return errors.StackViolation(errors.PhaseInterpret, []string{i.fn.Name}, "block without value emitted statements")
	case operand == nil:
		i.blocks = append(i.blocks, "Unit")
	case len(stmts) == 0:
		i.blocks = append(i.blocks, *operand)
	default:
		i.blocks = append(i.blocks, "run {\n"+indent(strings.Join(stmts, "\n")+"\n"+*operand, "    ")+"\n}")
	}
	Logger().Debug("finish block", zap.String("func", i.fn.Name), zap.Int("depth", len(i.saved)))
	return nil
}

func (i *interp) AllocateSpace(slot int, ty *idl.NamedType) error {
	size, err := i.g.layouts.Size(idl.Ref(ty))
	if err != nil {
		return errors.At(err, i.fn.Name)
	}
	i.push(fmt.Sprintf("val rp%d = allocator.allocate(%d)", slot, size))
	return nil
}

func (i *interp) Emit(inst abi.Instruction, operands []string, results *[]string) error {
	switch in := inst.(type) {
	case abi.GetArg:
		if in.Nth >= len(i.fn.Params) {
			return errors.StackViolation(errors.PhaseInterpret, []string{i.fn.Name},
				fmt.Sprintf("argument %d out of range", in.Nth))
		}
		*results = append(*results, ident(i.fn.Params[in.Nth].Name))

	case abi.Convert:
		v, err := convert(in, operands[0])
		if err != nil {
			return errors.At(err, i.fn.Name)
		}
		*results = append(*results, v)

	case abi.EnumLower:
		*results = append(*results, operands[0]+".ordinal")

	case abi.EnumLift:
		decl := declaration(in.Ty)
		if decl == nil {
			return errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
				Path(i.fn.Name).
				Type(in.Ty.String()).
				Detail("lift into anonymous enum").
				Build()
		}
		*results = append(*results, fmt.Sprintf("%s.values()[%s]", typeName(decl), operands[0]))

	case abi.ListPointerLength:
		list := operands[0]
		if l, ok := in.Ty.Resolve().(*idl.List); ok && l.IsString() {
			bytes := fmt.Sprintf("list%d", i.lists)
			i.lists++
			i.push(fmt.Sprintf("val %s = %s.encodeToByteArray()", bytes, list))
			list = bytes
		}
		*results = append(*results, "allocator.writeToLinearMemory("+list+")", list+".size")

	case abi.ReturnPointerGet:
		*results = append(*results, fmt.Sprintf("rp%d", in.N))

	case abi.Load:
		v, err := i.g.load(idl.Ref(in.Ty), operands[0], 0)
		if err != nil {
			return errors.At(err, i.fn.Name)
		}
		*results = append(*results, v)

	case abi.TupleLift:
		if in.Amt != 2 {
			return errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
				Path(i.fn.Name).
				Detail("tuple of %d values", in.Amt).
				Build()
		}
		*results = append(*results, "Pair("+strings.Join(operands, ", ")+")")

	case abi.ReuseReturn:
		if i.lastCall == "" {
			return errors.StackViolation(errors.PhaseInterpret, []string{i.fn.Name}, "no call result to reuse")
		}
		*results = append(*results, i.lastCall)

	case abi.ResultLift:
		if len(i.blocks) < 2 {
			return errors.StackViolation(errors.PhaseInterpret, []string{i.fn.Name}, "result lift needs two blocks")
		}
		errBlock := i.blocks[len(i.blocks)-1]
		okBlock := i.blocks[len(i.blocks)-2]
		i.blocks = i.blocks[:len(i.blocks)-2]
		*results = append(*results, fmt.Sprintf("if (%s == 0) {\n%s\n} else {\n%s\n}",
			operands[0],
			indent(okBlock, "    "),
			indent("throw "+i.g.cfg.ErrorClass+"("+errBlock+")", "    ")))

	case abi.CallWasm:
		if in.Name != i.fn.Symbol() {
			return errors.Mismatch(errors.PhaseInterpret, []string{i.fn.Name}, in.Name, "call to a different entry point")
		}
		call := rawPrefix + i.rawName + "(" + strings.Join(operands, ", ") + ")"
		switch len(in.Results) {
		case 0:
			i.push(call)
		case 1:
			sym := "ret"
			if i.calls > 0 {
				sym = fmt.Sprintf("ret%d", i.calls)
			}
			i.calls++
			i.lastCall = sym
			i.push("val " + sym + " = " + call)
			*results = append(*results, sym)
		default:
			return errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
				Path(i.fn.Name).
				Detail("call with %d results", len(in.Results)).
				Build()
		}

	case abi.Return:
		switch in.Amt {
		case 0:
		case 1:
			i.push("return " + operands[0])
		default:
			return errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
				Path(i.fn.Name).
				Detail("return of %d values", in.Amt).
				Build()
		}

	case abi.AddrOf, abi.Store, abi.ListFromPointerLength, abi.CallInterface,
		abi.ResultLower, abi.TupleLower, abi.VariantPayload:
		return errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
			Path(i.fn.Name).
			Detail("instruction %s", inst).
			Build()

	default:
		return errors.UnsupportedShape(errors.PhaseInterpret, []string{i.fn.Name}, fmt.Sprintf("instruction %T", inst))
	}
	return nil
}

// convert wraps v in the numeric conversion of c, passing through
// conversions that are the identity in Kotlin.
func convert(c abi.Convert, v string) (string, error) {
	switch c.Op {
	case abi.I32FromPointer, abi.I32FromConstPointer:
		return v + ".address.toInt()", nil
	case abi.PointerFromI32, abi.ConstPointerFromI32:
		return "Pointer(" + v + ".toUInt())", nil
	case abi.I32FromBool:
		return "if (" + v + ") 1 else 0", nil
	case abi.BoolFromI32:
		return "(" + v + " != 0)", nil
	case abi.I32FromChar, abi.CharFromI32:
		return "", errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
			Detail("instruction %s", c.Op).
			Build()
	}

	carrier, err := carrierType(c.Ty)
	if err != nil {
		return "", err
	}
	target := wasmType(c.Op.Wasm())
	if !c.Op.Lowers() {
		target = carrier
	}
	if carrier == wasmType(c.Op.Wasm()) {
		return v, nil
	}
	return v + ".to" + target + "()", nil
}

// carrierType is the Kotlin type a scalar-shaped value is held in.
func carrierType(r idl.TypeRef) (string, error) {
	switch t := r.Resolve().(type) {
	case idl.Builtin:
		return builtinType(t)
	case *idl.Handle:
		return "Int", nil
	case *idl.Record:
		if repr, ok := t.BitflagsRepr(); ok {
			return reprTypes[repr], nil
		}
	}
	return "", errors.New(errors.PhaseInterpret, errors.KindUnsupportedShape).
		Type(r.String()).
		Detail("not a scalar").
		Build()
}
