// Package trace implements the diagnostic per-instruction and register
// traces: advisory output that never affects simulation semantics.
package trace

import (
	"fmt"
	"io"
	"strings"
)

// InstructionTrace emits one line per retired instruction: sequence
// number, faulting/retiring PC, raw word, and mnemonic. Disabled traces
// cost nothing beyond the enabled check.
type InstructionTrace struct {
	Enabled bool
	Writer  io.Writer
}

// NewInstructionTrace returns a disabled trace; callers flip Enabled
// once a writer is attached.
func NewInstructionTrace(w io.Writer) *InstructionTrace {
	return &InstructionTrace{Writer: w}
}

// Record writes one itrace line. seq is the retired-instruction count
// before this instruction, pc is the address it was fetched from.
func (t *InstructionTrace) Record(seq uint64, pc uint64, word uint32, mnemonic string) {
	if t == nil || !t.Enabled || t.Writer == nil {
		return
	}
	fmt.Fprintf(t.Writer, "[%08d] pc=0x%016x word=0x%08x %s\n", seq, pc, word, mnemonic)
}

// RegisterTrace emits one line per write to a named ABI register,
// filtered to FilterRegs when non-empty (empty means "all registers").
type RegisterTrace struct {
	Enabled    bool
	Writer     io.Writer
	FilterRegs map[string]bool
}

// NewRegisterTrace returns a disabled trace with no filter.
func NewRegisterTrace(w io.Writer) *RegisterTrace {
	return &RegisterTrace{Writer: w, FilterRegs: make(map[string]bool)}
}

// SetFilter restricts recorded writes to the named ABI registers.
// Passing an empty slice clears the filter (records everything).
func (t *RegisterTrace) SetFilter(names []string) {
	t.FilterRegs = make(map[string]bool, len(names))
	for _, n := range names {
		t.FilterRegs[strings.ToLower(n)] = true
	}
}

// RecordWrite reports a register write, honoring the name filter.
func (t *RegisterTrace) RecordWrite(seq uint64, pc uint64, name string, old, new int64) {
	if t == nil || !t.Enabled || t.Writer == nil {
		return
	}
	if len(t.FilterRegs) > 0 && !t.FilterRegs[strings.ToLower(name)] {
		return
	}
	fmt.Fprintf(t.Writer, "[%08d] pc=0x%016x %s: 0x%x -> 0x%x\n", seq, pc, name, old, new)
}

// FaultTrace emits one line per architectural trap taken: the cause,
// the faulting PC, the trap value, and whether the trap was delegated
// to Supervisor. Adapted from the teacher's CPSR flag-change trace —
// RISC-V has no flags register, so the nearest analogous "what changed
// in control state and why" event is a privilege trap.
type FaultTrace struct {
	Enabled bool
	Writer  io.Writer
}

// NewFaultTrace returns a disabled fault trace.
func NewFaultTrace(w io.Writer) *FaultTrace {
	return &FaultTrace{Writer: w}
}

// Record reports one trap delivery.
func (t *FaultTrace) Record(seq uint64, pc uint64, cause uint64, tval uint64, toSupervisor bool) {
	if t == nil || !t.Enabled || t.Writer == nil {
		return
	}
	target := "M"
	if toSupervisor {
		target = "S"
	}
	fmt.Fprintf(t.Writer, "[%08d] pc=0x%016x cause=%d tval=0x%x -> %s\n", seq, pc, cause, tval, target)
}
