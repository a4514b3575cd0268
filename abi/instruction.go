package abi

import (
	"fmt"
	"strings"

	"github.com/wippyai/witx-bindgen/idl"
)

// Instruction is one of the operation types declared in this file.
type Instruction interface {
	String() string
	isInstruction()
}

// GetArg pushes the Nth declared parameter.
type GetArg struct{ Nth int }

// AddrOf pushes the address of a record passed by reference.
type AddrOf struct{ Ty idl.TypeRef }

// Convert widens or narrows one scalar between its interface and wasm forms.
type Convert struct {
	Ty idl.TypeRef
	Op Conversion
}

// ListPointerLength splits a list into its address and element count.
type ListPointerLength struct{ Ty idl.TypeRef }

// ListFromPointerLength builds a list from an address and element count.
type ListFromPointerLength struct{ Ty idl.TypeRef }

// CallWasm invokes the raw entry point with flattened arguments.
type CallWasm struct {
	Module  string
	Name    string
	Params  []idl.WasmType
	Results []idl.WasmType
}

// CallInterface invokes the typed interface function.
type CallInterface struct {
	Func   *idl.Function
	Module string
}

// ReturnPointerGet pushes the Nth return pointer.
type ReturnPointerGet struct{ N int }

// Load reads a value of Ty from the popped address.
type Load struct{ Ty *idl.NamedType }

// Store writes the value below the top operand to the address on top.
type Store struct{ Ty *idl.NamedType }

// ResultLower turns a result value into its discriminant; payload blocks
// precede it.
type ResultLower struct{ Ok, Err *idl.TypeRef }

// ResultLift consumes the success and failure blocks and a discriminant.
type ResultLift struct{}

// EnumLower replaces an enumeration value with its ordinal.
type EnumLower struct{ Ty idl.TypeRef }

// EnumLift turns a tag into the enumeration case it indexes.
type EnumLift struct{ Ty idl.TypeRef }

// TupleLower splits a tuple into its Amt members.
type TupleLower struct{ Amt int }

// TupleLift builds a tuple from Amt operands.
type TupleLift struct{ Amt int }

// ReuseReturn pushes the value returned by the last CallWasm.
type ReuseReturn struct{}

// Return returns Amt values from the wrapper.
type Return struct{ Amt int }

// VariantPayload pushes the payload of the case being lowered.
type VariantPayload struct{}

func (GetArg) isInstruction()                {}
func (AddrOf) isInstruction()                {}
func (Convert) isInstruction()               {}
func (ListPointerLength) isInstruction()     {}
func (ListFromPointerLength) isInstruction() {}
func (CallWasm) isInstruction()              {}
func (CallInterface) isInstruction()         {}
func (ReturnPointerGet) isInstruction()      {}
func (Load) isInstruction()                  {}
func (Store) isInstruction()                 {}
func (ResultLower) isInstruction()           {}
func (ResultLift) isInstruction()            {}
func (EnumLower) isInstruction()             {}
func (EnumLift) isInstruction()              {}
func (TupleLower) isInstruction()            {}
func (TupleLift) isInstruction()             {}
func (ReuseReturn) isInstruction()           {}
func (Return) isInstruction()                {}
func (VariantPayload) isInstruction()        {}

func (i GetArg) String() string                { return fmt.Sprintf("get_arg %d", i.Nth) }
func (i AddrOf) String() string                { return "addr_of " + i.Ty.String() }
func (i Convert) String() string               { return i.Op.String() }
func (i ListPointerLength) String() string     { return "list_pointer_length " + i.Ty.String() }
func (i ListFromPointerLength) String() string { return "list_from_pointer_length " + i.Ty.String() }
func (i CallInterface) String() string         { return "call_interface " + i.Module + "." + i.Func.Name }
func (i ReturnPointerGet) String() string      { return fmt.Sprintf("return_pointer_get %d", i.N) }
func (i Load) String() string                  { return "load " + i.Ty.Name }
func (i Store) String() string                 { return "store " + i.Ty.Name }
func (ResultLower) String() string             { return "result_lower" }
func (ResultLift) String() string              { return "result_lift" }
func (i EnumLower) String() string             { return "enum_lower " + i.Ty.String() }
func (i EnumLift) String() string              { return "enum_lift " + i.Ty.String() }
func (i TupleLower) String() string            { return fmt.Sprintf("tuple_lower %d", i.Amt) }
func (i TupleLift) String() string             { return fmt.Sprintf("tuple_lift %d", i.Amt) }
func (ReuseReturn) String() string             { return "reuse_return" }
func (i Return) String() string                { return fmt.Sprintf("return %d", i.Amt) }
func (VariantPayload) String() string          { return "variant_payload" }

func (i CallWasm) String() string {
	return fmt.Sprintf("call_wasm %s.%s (%s) -> (%s)", i.Module, i.Name, valueTypes(i.Params), valueTypes(i.Results))
}

func valueTypes(ts []idl.WasmType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = idl.WasmTypeName(t)
	}
	return strings.Join(names, ", ")
}

// Arity returns how many operands inst consumes and how many it produces.
func Arity(inst Instruction) (in, out int) {
	switch i := inst.(type) {
	case GetArg, ReturnPointerGet, ReuseReturn, VariantPayload:
		return 0, 1
	case AddrOf, Convert, Load, ResultLower, ResultLift, EnumLower, EnumLift:
		return 1, 1
	case ListPointerLength:
		return 1, 2
	case ListFromPointerLength:
		return 2, 1
	case Store:
		return 2, 0
	case CallWasm:
		return len(i.Params), len(i.Results)
	case CallInterface:
		return len(i.Func.Params), len(i.Func.Results)
	case TupleLower:
		return 1, i.Amt
	case TupleLift:
		return i.Amt, 1
	case Return:
		return i.Amt, 0
	}
	panic(fmt.Sprintf("abi: unknown instruction %T", inst))
}
