package abi

import (
	"fmt"
	"strings"

	"github.com/wippyai/witx-bindgen/errors"
	"github.com/wippyai/witx-bindgen/idl"
)

// Step is one recorded instruction with the operand slots it consumed and
// produced. Depth is the block nesting level.
type Step struct {
	Inst     Instruction
	Operands []int
	Results  []int
	Depth    int
}

func (s Step) String() string {
	return fmt.Sprintf("%s%s %v -> %v", strings.Repeat("  ", s.Depth), s.Inst, s.Operands, s.Results)
}

// Recorder is a Bindgen that records the stream instead of rendering it.
// Operands are slot numbers assigned in production order.
type Recorder struct {
	Steps     []Step
	Allocated []*idl.NamedType
	next      int
	depth     int
}

func (r *Recorder) PushBlock() { r.depth++ }

func (r *Recorder) FinishBlock(*int) error {
	r.depth--
	return nil
}

func (r *Recorder) AllocateSpace(slot int, ty *idl.NamedType) error {
	if slot != len(r.Allocated) {
		return errors.StackViolation(errors.PhaseLower, nil, fmt.Sprintf("return pointer %d allocated out of order", slot))
	}
	r.Allocated = append(r.Allocated, ty)
	return nil
}

func (r *Recorder) Emit(inst Instruction, operands []int, results *[]int) error {
	_, out := Arity(inst)
	step := Step{Inst: inst, Operands: append([]int(nil), operands...), Depth: r.depth}
	for i := 0; i < out; i++ {
		*results = append(*results, r.next)
		step.Results = append(step.Results, r.next)
		r.next++
	}
	r.Steps = append(r.Steps, step)
	return nil
}

// Trace records the instruction stream Call emits for fn.
func Trace(fn *idl.Function, module string) ([]Step, error) {
	r := &Recorder{}
	if err := Call[int](fn, module, r); err != nil {
		return nil, err
	}
	return r.Steps, nil
}
