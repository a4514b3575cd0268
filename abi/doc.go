// Package abi produces the instruction stream that marshals an interface
// function across the flattened wasm ABI.
//
// The stream is emitted once per function, in a fixed order, to a Bindgen
// visitor. Each instruction consumes a fixed number of operands from the
// engine's operand stack and pushes a fixed number of results; Arity reports
// both, and the engine enforces them.
//
// # Call Sequence
//
// Call drives a visitor through:
//
//  1. GetArg and a lowering sequence per parameter
//  2. AllocateSpace and ReturnPointerGet per success value of a result
//  3. CallWasm with the flattened signature
//  4. lifting of the result, using nested blocks for result variants
//  5. Return
//
// Blocks bracket a nested sub-sequence. A visitor captures what is emitted
// between PushBlock and FinishBlock as a single unit; ResultLift consumes the
// two blocks of a result variant, success first.
//
// The operand type is chosen by the visitor: code generators use source text,
// Trace uses opaque slot numbers.
package abi
