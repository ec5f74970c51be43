package core

import (
	"github.com/rvsim/riscv-sim/csr"
	"github.com/rvsim/riscv-sim/decode"
)

// execECALL raises the privilege-dependent environment-call cause;
// the trap handler takes it from there.
func (m *Machine) execECALL(faultingPC uint64) *csr.Exception {
	var cause csr.Cause
	switch m.Priv {
	case csr.PrivUser:
		cause = csr.CauseEnvCallFromUMode
	case csr.PrivSupervisor:
		cause = csr.CauseEnvCallFromSMode
	default:
		cause = csr.CauseEnvCallFromMMode
	}
	return &csr.Exception{Cause: cause, Addr: faultingPC}
}

// execReturn implements MRET/SRET per spec.md §4.6.1. URET has no
// user-mode trap state to return from (no N-extension is modeled), so
// executing it raises an illegal-instruction exception rather than
// silently doing nothing.
func (m *Machine) execReturn(inst decode.Instruction, faultingPC uint64) (*csr.Exception, error) {
	switch inst.Kind {
	case decode.KindMRET:
		m.PC = m.CSR.RawRead(csr.Mepc)
		m.Priv = m.CSR.MPP()
		return nil, nil
	case decode.KindSRET:
		m.PC = m.CSR.RawRead(csr.Sepc)
		m.Priv = m.CSR.SPP()
		m.CSR.ClearSPP()
		return nil, nil
	default: // KindURET
		return &csr.Exception{Cause: csr.CauseIllegalInstruction, Addr: faultingPC}, nil
	}
}

// execCSR implements CSRRW/CSRRS/CSRRWI: read-then-write in that
// order so rd==rs1 observes the pre-write value. A write to satp
// re-derives the MMU's translation mode and root PPN immediately.
func (m *Machine) execCSR(inst decode.Instruction, faultingPC uint64) (*csr.Exception, error) {
	old, exc := m.CSR.Read(inst.CSR, m.Priv, faultingPC)
	if exc != nil {
		return exc, nil
	}

	var next uint64
	switch inst.Kind {
	case decode.KindCSRRW:
		next = uint64(m.Regs.Read(inst.Rs1))
	case decode.KindCSRRS:
		next = old | uint64(m.Regs.Read(inst.Rs1))
	case decode.KindCSRRWI:
		next = uint64(inst.Imm) // 5-bit zero-extended immediate, stashed by the decoder
	}

	if exc := m.CSR.Write(inst.CSR, next, m.Priv, faultingPC); exc != nil {
		return exc, nil
	}

	m.writeRd(inst.Rd, m.wrap(int64(old)))

	if inst.CSR == csr.Satp {
		m.MMU.DeriveFromSATP(next, m.width())
	}
	return nil, nil
}
