package abi

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/witx-bindgen/idl"
)

// Conversion names a scalar widening or narrowing between an interface type
// and the wasm value type it travels as.
type Conversion uint8

const (
	// lowering: interface -> wasm
	I32FromChar Conversion = iota + 1
	I64FromU64
	I64FromS64
	I32FromU32
	I32FromS32
	I32FromUsize
	I32FromU16
	I32FromS16
	I32FromU8
	I32FromS8
	I32FromChar8
	I32FromHandle
	I32FromPointer
	I32FromConstPointer
	I32FromBitflags
	I64FromBitflags
	I32FromBool
	F32FromIf32
	F64FromIf64

	// lifting: wasm -> interface
	If32FromF32
	If64FromF64
	S8FromI32
	U8FromI32
	S16FromI32
	U16FromI32
	S32FromI32
	U32FromI32
	S64FromI64
	U64FromI64
	CharFromI32
	Char8FromI32
	UsizeFromI32
	HandleFromI32
	PointerFromI32
	ConstPointerFromI32
	BitflagsFromI32
	BitflagsFromI64
	BoolFromI32
)

var conversionNames = [...]string{
	I32FromChar:         "i32.from_char",
	I64FromU64:          "i64.from_u64",
	I64FromS64:          "i64.from_s64",
	I32FromU32:          "i32.from_u32",
	I32FromS32:          "i32.from_s32",
	I32FromUsize:        "i32.from_usize",
	I32FromU16:          "i32.from_u16",
	I32FromS16:          "i32.from_s16",
	I32FromU8:           "i32.from_u8",
	I32FromS8:           "i32.from_s8",
	I32FromChar8:        "i32.from_char8",
	I32FromHandle:       "i32.from_handle",
	I32FromPointer:      "i32.from_pointer",
	I32FromConstPointer: "i32.from_const_pointer",
	I32FromBitflags:     "i32.from_bitflags",
	I64FromBitflags:     "i64.from_bitflags",
	I32FromBool:         "i32.from_bool",
	F32FromIf32:         "f32.from_if32",
	F64FromIf64:         "f64.from_if64",
	If32FromF32:         "if32.from_f32",
	If64FromF64:         "if64.from_f64",
	S8FromI32:           "s8.from_i32",
	U8FromI32:           "u8.from_i32",
	S16FromI32:          "s16.from_i32",
	U16FromI32:          "u16.from_i32",
	S32FromI32:          "s32.from_i32",
	U32FromI32:          "u32.from_i32",
	S64FromI64:          "s64.from_i64",
	U64FromI64:          "u64.from_i64",
	CharFromI32:         "char.from_i32",
	Char8FromI32:        "char8.from_i32",
	UsizeFromI32:        "usize.from_i32",
	HandleFromI32:       "handle.from_i32",
	PointerFromI32:      "pointer.from_i32",
	ConstPointerFromI32: "const_pointer.from_i32",
	BitflagsFromI32:     "bitflags.from_i32",
	BitflagsFromI64:     "bitflags.from_i64",
	BoolFromI32:         "bool.from_i32",
}

func (c Conversion) String() string {
	if int(c) < len(conversionNames) && conversionNames[c] != "" {
		return conversionNames[c]
	}
	return fmt.Sprintf("conversion(%d)", uint8(c))
}

// Lowers reports whether c converts an interface value into a wasm value.
func (c Conversion) Lowers() bool { return c >= I32FromChar && c <= F64FromIf64 }

// Wasm returns the wasm-side value type of c.
func (c Conversion) Wasm() idl.WasmType {
	switch c {
	case I64FromU64, I64FromS64, I64FromBitflags, S64FromI64, U64FromI64, BitflagsFromI64:
		return api.ValueTypeI64
	case F32FromIf32, If32FromF32:
		return api.ValueTypeF32
	case F64FromIf64, If64FromF64:
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

// lowerBuiltin returns the lowering conversion for a builtin scalar.
func lowerBuiltin(b idl.Builtin) (Conversion, bool) {
	switch b {
	case idl.U8:
		return I32FromU8, true
	case idl.S8:
		return I32FromS8, true
	case idl.Char8:
		return I32FromChar8, true
	case idl.U16:
		return I32FromU16, true
	case idl.S16:
		return I32FromS16, true
	case idl.U32:
		return I32FromU32, true
	case idl.S32:
		return I32FromS32, true
	case idl.Usize:
		return I32FromUsize, true
	case idl.Char:
		return I32FromChar, true
	case idl.U64:
		return I64FromU64, true
	case idl.S64:
		return I64FromS64, true
	case idl.F32:
		return F32FromIf32, true
	case idl.F64:
		return F64FromIf64, true
	}
	return 0, false
}

// liftBuiltin returns the lifting conversion for a builtin scalar.
func liftBuiltin(b idl.Builtin) (Conversion, bool) {
	switch b {
	case idl.U8:
		return U8FromI32, true
	case idl.S8:
		return S8FromI32, true
	case idl.Char8:
		return Char8FromI32, true
	case idl.U16:
		return U16FromI32, true
	case idl.S16:
		return S16FromI32, true
	case idl.U32:
		return U32FromI32, true
	case idl.S32:
		return S32FromI32, true
	case idl.Usize:
		return UsizeFromI32, true
	case idl.Char:
		return CharFromI32, true
	case idl.U64:
		return U64FromI64, true
	case idl.S64:
		return S64FromI64, true
	case idl.F32:
		return If32FromF32, true
	case idl.F64:
		return If64FromF64, true
	}
	return 0, false
}
