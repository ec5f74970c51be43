package core

import (
	"github.com/rvsim/riscv-sim/csr"
	"github.com/rvsim/riscv-sim/decode"
	"github.com/rvsim/riscv-sim/mmu"
	"github.com/rvsim/riscv-sim/regfile"
)

// execLoad implements LB/LH/LW/LD/LBU/LHU/LWU: translate the effective
// address for a read access, load the naturally-sized value, and
// sign- or zero-extend it into rd per spec.md §4.6.1.
func (m *Machine) execLoad(inst decode.Instruction) (*csr.Exception, error) {
	addr := uint64(m.Regs.Read(inst.Rs1) + inst.Imm)
	size, signed := loadWidth(inst.Kind)

	pa, exc, err := m.MMU.Translate(addr, mmu.AccessRead, m.Priv, m.Bus)
	if err != nil {
		return nil, err
	}
	if exc != nil {
		return exc, nil
	}

	raw, lerr := m.Bus.LoadN(pa, size)
	if lerr != nil {
		return nil, lerr
	}

	var v int64
	if signed {
		v = regfile.SignExtend(raw, uint(size*8))
	} else {
		v = int64(raw)
	}
	m.writeRd(inst.Rd, v)
	return nil, nil
}

// execStore implements SB/SH/SW/SD: translate the effective address
// for a write access and store the low size*8 bits of rs2.
func (m *Machine) execStore(inst decode.Instruction) (*csr.Exception, error) {
	addr := uint64(m.Regs.Read(inst.Rs1) + inst.Imm)
	size := storeWidth(inst.Kind)
	val := m.Regs.Read(inst.Rs2)

	pa, exc, err := m.MMU.Translate(addr, mmu.AccessWrite, m.Priv, m.Bus)
	if err != nil {
		return nil, err
	}
	if exc != nil {
		return exc, nil
	}

	if serr := m.Bus.StoreN(pa, uint64(val), size); serr != nil {
		return nil, serr
	}
	return nil, nil
}

func loadWidth(k decode.Kind) (size int, signed bool) {
	switch k {
	case decode.KindLB:
		return 1, true
	case decode.KindLH:
		return 2, true
	case decode.KindLW:
		return 4, true
	case decode.KindLD:
		return 8, true
	case decode.KindLBU:
		return 1, false
	case decode.KindLHU:
		return 2, false
	case decode.KindLWU:
		return 4, false
	default:
		return 0, false
	}
}

func storeWidth(k decode.Kind) int {
	switch k {
	case decode.KindSB:
		return 1
	case decode.KindSH:
		return 2
	case decode.KindSW:
		return 4
	case decode.KindSD:
		return 8
	default:
		return 0
	}
}
