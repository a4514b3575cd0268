package abi

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

type fixture struct {
	size   *idl.NamedType
	fd     *idl.NamedType
	errno  *idl.NamedType
	errRef idl.TypeRef
}

func newFixture() fixture {
	errno := idl.EnumType("success", "badf", "inval")
	errno.Tag = idl.ReprU16
	f := fixture{
		size:  idl.Named("size", idl.Val(idl.U32)),
		fd:    idl.Named("fd", idl.Val(&idl.Handle{})),
		errno: idl.Named("errno", idl.Val(errno)),
	}
	f.errRef = idl.Ref(f.errno)
	return f
}

func (f fixture) result(ok *idl.TypeRef) idl.TypeRef {
	return idl.ResultType(ok, &f.errRef)
}

func instNames(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Inst.String()
	}
	return out
}

// One list parameter becomes exactly two call arguments taken from the
// single source operand, followed by the call and a scalar return.
func TestListParamDecomposes(t *testing.T) {
	fn := &idl.Function{
		Name:    "checksum",
		Params:  []*idl.Param{{Name: "data", Type: idl.ListOf(idl.Val(idl.U8))}},
		Results: []*idl.Param{{Name: "sum", Type: idl.Val(idl.U32)}},
	}

	steps, err := Trace(fn, "env")
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	want := []string{
		"get_arg 0",
		"list_pointer_length list<u8>",
		"call_wasm env.checksum (i32, i32) -> (i32)",
		"u32.from_i32",
		"return 1",
	}
	if diff := cmp.Diff(want, instNames(steps)); diff != "" {
		t.Fatalf("stream mismatch (-want +got):\n%s", diff)
	}

	arg := steps[0].Results[0]
	if diff := cmp.Diff([]int{arg}, steps[1].Operands); diff != "" {
		t.Errorf("list split consumed wrong operand:\n%s", diff)
	}
	if diff := cmp.Diff(steps[1].Results, steps[2].Operands); diff != "" {
		t.Errorf("call arguments are not the pointer and length:\n%s", diff)
	}
	if len(steps[2].Operands) != 2 {
		t.Errorf("call has %d arguments, want 2", len(steps[2].Operands))
	}
}

func TestResultFunctionStream(t *testing.T) {
	f := newFixture()
	sizeRef := idl.Ref(f.size)
	fn := &idl.Function{
		Name: "fd_read",
		Params: []*idl.Param{
			{Name: "fd", Type: idl.Ref(f.fd)},
			{Name: "buf", Type: idl.ListOf(idl.Val(idl.U8))},
		},
		Results: []*idl.Param{{Name: "error", Type: f.result(&sizeRef)}},
	}

	r := &Recorder{}
	if err := Call[int](fn, "wasi_snapshot_preview1", r); err != nil {
		t.Fatalf("Call: %v", err)
	}

	want := []string{
		"get_arg 0",
		"i32.from_handle",
		"get_arg 1",
		"list_pointer_length list<u8>",
		"return_pointer_get 0",
		"call_wasm wasi_snapshot_preview1.fd_read (i32, i32, i32, i32) -> (i32)",
		"return_pointer_get 0",
		"load size",
		"reuse_return",
		"enum_lift errno",
		"result_lift",
		"return 1",
	}
	if diff := cmp.Diff(want, instNames(r.Steps)); diff != "" {
		t.Fatalf("stream mismatch (-want +got):\n%s", diff)
	}

	if len(r.Allocated) != 1 || r.Allocated[0] != f.size {
		t.Errorf("allocated %v, want [size]", r.Allocated)
	}

	depths := make([]int, len(r.Steps))
	for i, s := range r.Steps {
		depths[i] = s.Depth
	}
	if diff := cmp.Diff([]int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0}, depths); diff != "" {
		t.Errorf("block depths (-want +got):\n%s", diff)
	}

	call := r.Steps[5]
	lift := r.Steps[10]
	if diff := cmp.Diff(call.Results, lift.Operands); diff != "" {
		t.Errorf("result_lift discriminant is not the call result:\n%s", diff)
	}
}

func TestTupleOkAllocatesPerMember(t *testing.T) {
	f := newFixture()
	pair := idl.Val(idl.TupleType(idl.Ref(f.size), idl.Ref(f.size)))
	fn := &idl.Function{
		Name:    "args_sizes_get",
		Results: []*idl.Param{{Name: "error", Type: f.result(&pair)}},
	}

	r := &Recorder{}
	if err := Call[int](fn, "wasi", r); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(r.Allocated) != 2 {
		t.Fatalf("allocated %d return pointers, want 2", len(r.Allocated))
	}

	want := []string{
		"return_pointer_get 0",
		"return_pointer_get 1",
		"call_wasm wasi.args_sizes_get (i32, i32) -> (i32)",
		"return_pointer_get 0",
		"load size",
		"return_pointer_get 1",
		"load size",
		"tuple_lift 2",
		"reuse_return",
		"enum_lift errno",
		"result_lift",
		"return 1",
	}
	if diff := cmp.Diff(want, instNames(r.Steps)); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}

func TestUnitResult(t *testing.T) {
	f := newFixture()
	fn := &idl.Function{
		Name:    "fd_close",
		Params:  []*idl.Param{{Name: "fd", Type: idl.Ref(f.fd)}},
		Results: []*idl.Param{{Name: "error", Type: f.result(nil)}},
	}
	steps, err := Trace(fn, "wasi")
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	want := []string{
		"get_arg 0",
		"i32.from_handle",
		"call_wasm wasi.fd_close (i32) -> (i32)",
		"reuse_return",
		"enum_lift errno",
		"result_lift",
		"return 1",
	}
	if diff := cmp.Diff(want, instNames(steps)); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerShapes(t *testing.T) {
	f := newFixture()
	whence := idl.Named("whence", idl.Val(idl.EnumType("set", "cur", "end")))
	rights := idl.Named("rights", idl.Val(idl.FlagsType(idl.ReprU64, "read", "write")))
	fdflags := idl.Named("fdflags", idl.Val(idl.FlagsType(0, "append")))
	stat := idl.Named("stat", idl.Val(idl.StructType(idl.Field("size", idl.Ref(f.size)))))

	tests := []struct {
		name string
		ty   idl.TypeRef
		want []string
	}{
		{"u8", idl.Val(idl.U8), []string{"i32.from_u8"}},
		{"s64", idl.Val(idl.S64), []string{"i64.from_s64"}},
		{"f64", idl.Val(idl.F64), []string{"f64.from_if64"}},
		{"enum", idl.Ref(whence), []string{"enum_lower whence"}},
		{"bool", idl.BoolType(), []string{"i32.from_bool"}},
		{"flags64", idl.Ref(rights), []string{"i64.from_bitflags"}},
		{"flags8", idl.Ref(fdflags), []string{"i32.from_bitflags"}},
		{"pointer", idl.PointerTo(idl.Val(idl.U8)), []string{"i32.from_pointer"}},
		{"const_pointer", idl.ConstPointerTo(idl.Val(idl.U8)), []string{"i32.from_const_pointer"}},
		{"record", idl.Ref(stat), []string{"addr_of stat"}},
		{"tuple", idl.Val(idl.TupleType(idl.Val(idl.U8), idl.StringType())), []string{
			"tuple_lower 2", "i32.from_u8", "list_pointer_length string",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := &idl.Function{Name: "f", Params: []*idl.Param{{Name: "x", Type: tc.ty}}}
			steps, err := Trace(fn, "m")
			if err != nil {
				t.Fatalf("Trace: %v", err)
			}
			got := instNames(steps)
			// drop get_arg, call_wasm and return
			got = got[1 : len(got)-2]
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("lowering mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Tuple members are lowered in member order even when one expands to two
// values.
func TestTupleLowerKeepsOrder(t *testing.T) {
	fn := &idl.Function{Name: "f", Params: []*idl.Param{
		{Name: "t", Type: idl.Val(idl.TupleType(idl.StringType(), idl.Val(idl.U64)))},
	}}
	steps, err := Trace(fn, "m")
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	split := steps[1]
	listStep := steps[2]
	convStep := steps[3]
	call := steps[4]

	if diff := cmp.Diff([]int{split.Results[0]}, listStep.Operands); diff != "" {
		t.Errorf("first member not lowered first:\n%s", diff)
	}
	if diff := cmp.Diff([]int{split.Results[1]}, convStep.Operands); diff != "" {
		t.Errorf("second member not lowered second:\n%s", diff)
	}
	want := append(append([]int(nil), listStep.Results...), convStep.Results...)
	if diff := cmp.Diff(want, call.Operands); diff != "" {
		t.Errorf("call arguments out of order:\n%s", diff)
	}
	if diff := cmp.Diff([]idl.WasmType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64}, call.Inst.(CallWasm).Params); diff != "" {
		t.Errorf("call params:\n%s", diff)
	}
}

func TestResultLowerUsesBlocks(t *testing.T) {
	f := newFixture()
	sizeRef := idl.Ref(f.size)
	fn := &idl.Function{Name: "f", Params: []*idl.Param{{Name: "r", Type: f.result(&sizeRef)}}}

	// the flattened signature rejects a payload-bearing variant parameter
	if _, err := Trace(fn, "m"); !stderrors.Is(err, errors.ErrUnsupportedShape) {
		t.Fatalf("got %v, want unsupported_shape", err)
	}

	g := &generator[int]{b: &Recorder{}, fn: fn}
	g.stack = append(g.stack, 0)
	if err := g.lower(fn.Params[0].Type); err != nil {
		t.Fatalf("lower: %v", err)
	}
	steps := g.b.(*Recorder).Steps
	want := []string{
		"variant_payload",
		"i32.from_u32",
		"variant_payload",
		"enum_lower errno",
		"result_lower",
	}
	if diff := cmp.Diff(want, instNames(steps)); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
	if len(g.stack) != 1 {
		t.Errorf("stack holds %d operands, want 1", len(g.stack))
	}
}

func TestCallUnsupported(t *testing.T) {
	f := newFixture()
	anon := idl.Val(idl.U32)
	stat := idl.Named("stat", idl.Val(idl.StructType(idl.Field("size", idl.Ref(f.size)))))

	tests := []struct {
		name string
		fn   *idl.Function
	}{
		{"anonymous_ok", &idl.Function{Name: "f", Results: []*idl.Param{{Name: "r", Type: f.result(&anon)}}}},
		{"record_result", &idl.Function{Name: "f", Results: []*idl.Param{{Name: "r", Type: idl.Ref(stat)}}}},
		{"two_results", &idl.Function{Name: "f", Results: []*idl.Param{
			{Name: "a", Type: idl.Val(idl.U32)},
			{Name: "b", Type: idl.Val(idl.U32)},
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Trace(tc.fn, "m")
			if !stderrors.Is(err, errors.ErrUnsupportedShape) {
				t.Errorf("got %v, want unsupported_shape", err)
			}
		})
	}
}

// shortVisitor drops the results of every conversion.
type shortVisitor struct{ Recorder }

func (v *shortVisitor) Emit(inst Instruction, operands []int, results *[]int) error {
	if _, ok := inst.(Convert); ok {
		return nil
	}
	return v.Recorder.Emit(inst, operands, results)
}

func TestVisitorArityEnforced(t *testing.T) {
	fn := &idl.Function{Name: "f", Params: []*idl.Param{{Name: "x", Type: idl.Val(idl.U8)}}}
	err := Call[int](fn, "m", &shortVisitor{})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindStack {
		t.Fatalf("got %v, want stack error", err)
	}
}

// failingVisitor rejects one instruction type.
type failingVisitor struct{ Recorder }

func (v *failingVisitor) Emit(inst Instruction, operands []int, results *[]int) error {
	if _, ok := inst.(ListPointerLength); ok {
		return errors.UnsupportedShape(errors.PhaseInterpret, nil, inst.String())
	}
	return v.Recorder.Emit(inst, operands, results)
}

func TestVisitorErrorAborts(t *testing.T) {
	fn := &idl.Function{Name: "f", Params: []*idl.Param{{Name: "x", Type: idl.StringType()}}}
	v := &failingVisitor{}
	err := Call[int](fn, "m", v)
	if !stderrors.Is(err, errors.ErrUnsupportedShape) {
		t.Fatalf("got %v, want unsupported_shape", err)
	}
	for _, s := range v.Steps {
		if _, ok := s.Inst.(CallWasm); ok {
			t.Fatal("call emitted after visitor failure")
		}
	}
}

func TestArity(t *testing.T) {
	fn := &idl.Function{Params: []*idl.Param{{}, {}}, Results: []*idl.Param{{}}}
	tests := []struct {
		inst    Instruction
		in, out int
	}{
		{GetArg{}, 0, 1},
		{AddrOf{}, 1, 1},
		{Convert{Op: I32FromU8}, 1, 1},
		{ListPointerLength{}, 1, 2},
		{ListFromPointerLength{}, 2, 1},
		{CallWasm{Params: make([]idl.WasmType, 3), Results: make([]idl.WasmType, 1)}, 3, 1},
		{CallInterface{Func: fn}, 2, 1},
		{ReturnPointerGet{}, 0, 1},
		{Load{}, 1, 1},
		{Store{}, 2, 0},
		{ResultLower{}, 1, 1},
		{ResultLift{}, 1, 1},
		{EnumLower{}, 1, 1},
		{EnumLift{}, 1, 1},
		{TupleLower{Amt: 3}, 1, 3},
		{TupleLift{Amt: 2}, 2, 1},
		{ReuseReturn{}, 0, 1},
		{Return{Amt: 1}, 1, 0},
		{VariantPayload{}, 0, 1},
	}
	for _, tc := range tests {
		in, out := Arity(tc.inst)
		if in != tc.in || out != tc.out {
			t.Errorf("%T: got %d/%d, want %d/%d", tc.inst, in, out, tc.in, tc.out)
		}
	}
}

func TestConversion(t *testing.T) {
	tests := []struct {
		c      Conversion
		lowers bool
		wasm   idl.WasmType
	}{
		{I32FromU8, true, api.ValueTypeI32},
		{I64FromBitflags, true, api.ValueTypeI64},
		{F32FromIf32, true, api.ValueTypeF32},
		{F64FromIf64, true, api.ValueTypeF64},
		{U64FromI64, false, api.ValueTypeI64},
		{HandleFromI32, false, api.ValueTypeI32},
		{BoolFromI32, false, api.ValueTypeI32},
	}
	for _, tc := range tests {
		t.Run(tc.c.String(), func(t *testing.T) {
			if tc.c.Lowers() != tc.lowers {
				t.Errorf("Lowers() = %v", tc.c.Lowers())
			}
			if tc.c.Wasm() != tc.wasm {
				t.Errorf("Wasm() = %s", api.ValueTypeName(tc.c.Wasm()))
			}
		})
	}
	if Conversion(200).String() != "conversion(200)" {
		t.Errorf("unknown conversion: %s", Conversion(200))
	}
}
