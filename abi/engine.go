package abi

import (
	"go.uber.org/zap"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// generator runs one function's instruction stream against a visitor and
// owns the operand stack.
type generator[O any] struct {
	b      Bindgen[O]
	fn     *idl.Function
	stack  []O
	blocks []int
}

// Call emits the instruction stream that lowers fn's parameters, calls
// its raw entry point in module, lifts the result and returns it.
func Call[O any](fn *idl.Function, module string, b Bindgen[O]) error {
	sig, err := fn.WasmSignature()
	if err != nil {
		return err
	}

	g := &generator[O]{b: b, fn: fn}

	for nth, param := range fn.Params {
		if err := g.emit(GetArg{Nth: nth}); err != nil {
			return err
		}
		if err := g.lower(param.Type); err != nil {
			return errors.At(err, fn.Name, param.Name)
		}
	}

	var result *idl.Param
	var okType, errType *idl.TypeRef
	isResult := false
	if len(fn.Results) == 1 {
		result = fn.Results[0]
		if v, ok := result.Type.Resolve().(*idl.Variant); ok {
			okType, errType, isResult = v.AsResult()
		}
	}

	if isResult {
		for slot, rv := range idl.ReturnValues(okType) {
			if !rv.IsNamed() {
				return errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
					Path(fn.Name, result.Name).
					Type(rv.String()).
					Detail("return pointer of anonymous type").
					Build()
			}
			if err := b.AllocateSpace(slot, rv.Named); err != nil {
				return err
			}
			if err := g.emit(ReturnPointerGet{N: slot}); err != nil {
				return err
			}
		}
	}

	if len(g.stack) != len(sig.Params) {
		return errors.StackViolation(errors.PhaseLower, []string{fn.Name},
			"call arguments do not match the flattened signature")
	}
	if err := g.emit(CallWasm{
		Module:  module,
		Name:    fn.Symbol(),
		Params:  sig.Params,
		Results: sig.Results,
	}); err != nil {
		return err
	}

	if result != nil {
		if isResult {
			err = g.liftResult(okType, errType)
		} else {
			err = g.lift(result.Type)
		}
		if err != nil {
			return errors.At(err, fn.Name, result.Name)
		}
	}

	if err := g.emit(Return{Amt: len(fn.Results)}); err != nil {
		return err
	}
	if len(g.stack) != 0 || len(g.blocks) != 0 {
		return errors.StackViolation(errors.PhaseLower, []string{fn.Name}, "operand stack not drained")
	}

	Logger().Debug("emitted call",
		zap.String("module", module),
		zap.String("func", fn.Name),
		zap.Int("params", len(sig.Params)),
		zap.Int("ret_ptrs", sig.RetPtrs))
	return nil
}

func (g *generator[O]) emit(inst Instruction) error {
	in, out := Arity(inst)
	base := len(g.stack) - in
	if base < 0 || (len(g.blocks) > 0 && base < g.blocks[len(g.blocks)-1]) {
		return errors.StackViolation(errors.PhaseLower, []string{g.fn.Name},
			inst.String()+": not enough operands")
	}

	operands := make([]O, in)
	copy(operands, g.stack[base:])
	g.stack = g.stack[:base]

	results := make([]O, 0, out)
	if err := g.b.Emit(inst, operands, &results); err != nil {
		return err
	}
	if len(results) != out {
		return errors.New(errors.PhaseLower, errors.KindStack).
			Path(g.fn.Name).
			Detail("%s: visitor produced %d results, want %d", inst, len(results), out).
			Build()
	}
	g.stack = append(g.stack, results...)
	return nil
}

func (g *generator[O]) pushBlock() {
	g.blocks = append(g.blocks, len(g.stack))
	g.b.PushBlock()
}

// finishBlock closes the innermost block, passing its single remaining
// operand when hasValue is set.
func (g *generator[O]) finishBlock(hasValue bool) error {
	depth := g.blocks[len(g.blocks)-1]
	g.blocks = g.blocks[:len(g.blocks)-1]

	want := depth
	if hasValue {
		want++
	}
	if len(g.stack) != want {
		return errors.New(errors.PhaseLower, errors.KindStack).
			Path(g.fn.Name).
			Detail("block left %d operands, want %d", len(g.stack)-depth, want-depth).
			Build()
	}
	if !hasValue {
		return g.b.FinishBlock(nil)
	}
	operand := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return g.b.FinishBlock(&operand)
}

func (g *generator[O]) lower(r idl.TypeRef) error {
	switch t := r.Resolve().(type) {
	case idl.Builtin:
		op, ok := lowerBuiltin(t)
		if !ok {
			return errors.UnsupportedShape(errors.PhaseLower, nil, "unknown builtin "+t.String())
		}
		return g.emit(Convert{Op: op, Ty: r})
	case *idl.Handle:
		return g.emit(Convert{Op: I32FromHandle, Ty: r})
	case *idl.Pointer:
		return g.emit(Convert{Op: I32FromPointer, Ty: r})
	case *idl.ConstPointer:
		return g.emit(Convert{Op: I32FromConstPointer, Ty: r})
	case *idl.List:
		return g.emit(ListPointerLength{Ty: r})
	case *idl.Record:
		if repr, ok := t.BitflagsRepr(); ok {
			if repr == idl.ReprU64 {
				return g.emit(Convert{Op: I64FromBitflags, Ty: r})
			}
			return g.emit(Convert{Op: I32FromBitflags, Ty: r})
		}
		if t.IsTuple() {
			return g.lowerTuple(t)
		}
		return g.emit(AddrOf{Ty: r})
	case *idl.Variant:
		if t.IsBool() {
			return g.emit(Convert{Op: I32FromBool, Ty: r})
		}
		if t.IsEnumLike() {
			return g.emit(EnumLower{Ty: r})
		}
		if ok, errT, isResult := t.AsResult(); isResult {
			return g.lowerResult(ok, errT)
		}
	}
	return errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
		Type(r.String()).
		Detail("cannot lower").
		Build()
}

// lowerTuple splits the tuple and lowers each member in turn so that the
// flattened values stay in member order.
func (g *generator[O]) lowerTuple(t *idl.Record) error {
	if err := g.emit(TupleLower{Amt: len(t.Members)}); err != nil {
		return err
	}
	base := len(g.stack) - len(t.Members)
	members := make([]O, len(t.Members))
	copy(members, g.stack[base:])
	g.stack = g.stack[:base]

	for i, m := range t.Members {
		g.stack = append(g.stack, members[i])
		if err := g.lower(m.Type); err != nil {
			return errors.At(err, m.Name)
		}
	}
	return nil
}

func (g *generator[O]) lowerResult(ok, errT *idl.TypeRef) error {
	for _, payload := range []*idl.TypeRef{ok, errT} {
		g.pushBlock()
		if payload != nil {
			if err := g.emit(VariantPayload{}); err != nil {
				return err
			}
			if err := g.lower(*payload); err != nil {
				return err
			}
		}
		if err := g.finishBlock(payload != nil); err != nil {
			return err
		}
	}
	return g.emit(ResultLower{Ok: ok, Err: errT})
}

func (g *generator[O]) lift(r idl.TypeRef) error {
	switch t := r.Resolve().(type) {
	case idl.Builtin:
		op, ok := liftBuiltin(t)
		if !ok {
			return errors.UnsupportedShape(errors.PhaseLower, nil, "unknown builtin "+t.String())
		}
		return g.emit(Convert{Op: op, Ty: r})
	case *idl.Handle:
		return g.emit(Convert{Op: HandleFromI32, Ty: r})
	case *idl.Pointer:
		return g.emit(Convert{Op: PointerFromI32, Ty: r})
	case *idl.ConstPointer:
		return g.emit(Convert{Op: ConstPointerFromI32, Ty: r})
	case *idl.Record:
		if repr, ok := t.BitflagsRepr(); ok {
			if repr == idl.ReprU64 {
				return g.emit(Convert{Op: BitflagsFromI64, Ty: r})
			}
			return g.emit(Convert{Op: BitflagsFromI32, Ty: r})
		}
	case *idl.Variant:
		if t.IsBool() {
			return g.emit(Convert{Op: BoolFromI32, Ty: r})
		}
		if t.IsEnumLike() {
			return g.emit(EnumLift{Ty: r})
		}
	}
	return errors.New(errors.PhaseLower, errors.KindUnsupportedShape).
		Type(r.String()).
		Detail("cannot lift from a single value").
		Build()
}

// liftResult emits the success block, loading each value through its return
// pointer, then the failure block, lifting the reused return value.
func (g *generator[O]) liftResult(ok, errT *idl.TypeRef) error {
	g.pushBlock()
	values := idl.ReturnValues(ok)
	for slot, rv := range values {
		if err := g.emit(ReturnPointerGet{N: slot}); err != nil {
			return err
		}
		if err := g.emit(Load{Ty: rv.Named}); err != nil {
			return err
		}
	}
	if ok != nil {
		if rec, isRec := ok.Resolve().(*idl.Record); isRec && rec.IsTuple() {
			if err := g.emit(TupleLift{Amt: len(values)}); err != nil {
				return err
			}
		}
	}
	if err := g.finishBlock(ok != nil); err != nil {
		return err
	}

	g.pushBlock()
	if errT != nil {
		if err := g.emit(ReuseReturn{}); err != nil {
			return err
		}
		if err := g.lift(*errT); err != nil {
			return err
		}
	}
	if err := g.finishBlock(errT != nil); err != nil {
		return err
	}

	return g.emit(ResultLift{})
}
