package core

import (
	"fmt"

	"github.com/rvsim/riscv-sim/csr"
	"github.com/rvsim/riscv-sim/decode"
)

// execute dispatches a decoded instruction to its category executor.
// It returns at most one of (architectural exception, host-level
// error); a nil/nil pair means the instruction completed and the core
// should simply retire it.
func (m *Machine) execute(inst decode.Instruction, faultingPC uint64) (*csr.Exception, error) {
	switch inst.Kind {
	case decode.KindADDI, decode.KindSLTI, decode.KindSLTIU, decode.KindXORI, decode.KindORI, decode.KindANDI,
		decode.KindSLLI, decode.KindSRLI, decode.KindSRAI,
		decode.KindADD, decode.KindSUB, decode.KindSLL, decode.KindSLT, decode.KindSLTU,
		decode.KindXOR, decode.KindOR, decode.KindAND, decode.KindSRL, decode.KindSRA,
		decode.KindADDIW, decode.KindSLLIW, decode.KindSRLIW, decode.KindSRAIW,
		decode.KindADDW, decode.KindSUBW, decode.KindSLLW, decode.KindSRLW, decode.KindSRAW,
		decode.KindLUI, decode.KindAUIPC:
		m.execALU(inst, faultingPC)
		return nil, nil

	case decode.KindMUL, decode.KindMULH, decode.KindMULHSU, decode.KindMULHU,
		decode.KindDIV, decode.KindDIVU, decode.KindREM, decode.KindREMU,
		decode.KindMULW, decode.KindDIVW, decode.KindDIVUW, decode.KindREMW, decode.KindREMUW:
		m.execMul(inst)
		return nil, nil

	case decode.KindLB, decode.KindLH, decode.KindLW, decode.KindLD, decode.KindLBU, decode.KindLHU, decode.KindLWU:
		return m.execLoad(inst)

	case decode.KindSB, decode.KindSH, decode.KindSW, decode.KindSD:
		return m.execStore(inst)

	case decode.KindBEQ, decode.KindBNE, decode.KindBLT, decode.KindBGE, decode.KindBLTU, decode.KindBGEU:
		m.execBranch(inst, faultingPC)
		return nil, nil

	case decode.KindJAL, decode.KindJALR:
		m.execJump(inst, faultingPC)
		return nil, nil

	case decode.KindFENCE, decode.KindSFENCE_VMA, decode.KindEBREAK:
		return nil, nil

	case decode.KindECALL:
		return m.execECALL(faultingPC), nil

	case decode.KindURET, decode.KindSRET, decode.KindMRET:
		return m.execReturn(inst, faultingPC)

	case decode.KindCSRRW, decode.KindCSRRS, decode.KindCSRRWI:
		return m.execCSR(inst, faultingPC)

	default:
		return nil, fmt.Errorf("no executor registered for %s", inst.Kind)
	}
}
