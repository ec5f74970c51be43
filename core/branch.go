package core

import "github.com/rvsim/riscv-sim/decode"

// execBranch implements BEQ/BNE/BLT/BGE/BLTU/BGEU. The branch base is
// faultingPC, the pre-fetch-advance PC, per spec.md §4.6's "targets are
// computed relative to the pre-increment PC" rule.
func (m *Machine) execBranch(inst decode.Instruction, faultingPC uint64) {
	a := m.Regs.Read(inst.Rs1)
	b := m.Regs.Read(inst.Rs2)

	var taken bool
	switch inst.Kind {
	case decode.KindBEQ:
		taken = a == b
	case decode.KindBNE:
		taken = a != b
	case decode.KindBLT:
		taken = a < b
	case decode.KindBGE:
		taken = a >= b
	case decode.KindBLTU:
		taken = m.ult(a, b)
	case decode.KindBGEU:
		taken = !m.ult(a, b)
	}

	if taken {
		m.PC = uint64(int64(faultingPC) + inst.Imm)
	}
}

// execJump implements JAL/JALR. Both write the address of the
// instruction following the jump into rd — which, since fetch already
// advanced PC, is simply the current m.PC — before overwriting PC with
// the target.
func (m *Machine) execJump(inst decode.Instruction, faultingPC uint64) {
	link := int64(m.PC)

	switch inst.Kind {
	case decode.KindJAL:
		target := uint64(int64(faultingPC) + inst.Imm)
		m.writeRd(inst.Rd, m.wrap(link))
		m.PC = target
	case decode.KindJALR:
		base := m.Regs.Read(inst.Rs1) // captured before rd is overwritten, so rd==rs1 is safe
		target := (uint64(base+inst.Imm)) &^ 1
		m.writeRd(inst.Rd, m.wrap(link))
		m.PC = target
	}
}
