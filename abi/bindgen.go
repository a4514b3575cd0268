package abi

import "github.com/wippyai/witx-bindgen/idl"

// Bindgen is the visitor driven by Call. O is the operand representation
// chosen by the visitor.
type Bindgen[O any] interface {
	// PushBlock opens a nested block.
	PushBlock()
	// FinishBlock closes the innermost block; operand is its final value, or
	// nil when the block produces none.
	FinishBlock(operand *O) error
	// AllocateSpace reserves scratch memory for return pointer slot.
	AllocateSpace(slot int, ty *idl.NamedType) error
	// Emit handles one instruction. operands holds exactly the consumed
	// operands, bottom first; Emit must append exactly the produced results.
	Emit(inst Instruction, operands []O, results *[]O) error
}
