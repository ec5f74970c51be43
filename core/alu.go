package core

import "github.com/rvsim/riscv-sim/decode"

// execALU implements OP/OP-IMM/OP-32/OP-IMM-32/LUI/AUIPC: every
// instruction whose result is a pure function of one or two register
// values (or an immediate) and writes rd, per spec.md §4.6.1's
// wrapping two's-complement rule.
func (m *Machine) execALU(inst decode.Instruction, faultingPC uint64) {
	a := m.Regs.Read(inst.Rs1)

	switch inst.Kind {
	case decode.KindADDI:
		m.writeRd(inst.Rd, m.wrap(a+inst.Imm))
	case decode.KindSLTI:
		m.writeRd(inst.Rd, boolInt(a < inst.Imm))
	case decode.KindSLTIU:
		m.writeRd(inst.Rd, boolInt(m.ult(a, inst.Imm)))
	case decode.KindXORI:
		m.writeRd(inst.Rd, m.wrap(a^inst.Imm))
	case decode.KindORI:
		m.writeRd(inst.Rd, m.wrap(a|inst.Imm))
	case decode.KindANDI:
		m.writeRd(inst.Rd, m.wrap(a&inst.Imm))
	case decode.KindSLLI:
		m.writeRd(inst.Rd, m.wrap(a<<(uint64(inst.Shamt)&m.shiftMask())))
	case decode.KindSRLI:
		shamt := uint64(inst.Shamt) & m.shiftMask()
		v := (uint64(a) & m.XLEN.Mask64()) >> shamt
		m.writeRd(inst.Rd, m.wrap(int64(v)))
	case decode.KindSRAI:
		shamt := uint(inst.Shamt) & uint(m.shiftMask())
		m.writeRd(inst.Rd, m.wrap(a>>shamt))

	case decode.KindADD:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrap(a+b))
	case decode.KindSUB:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrap(a-b))
	case decode.KindSLL:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint64(b) & m.shiftMask()
		m.writeRd(inst.Rd, m.wrap(a<<shamt))
	case decode.KindSLT:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, boolInt(a < b))
	case decode.KindSLTU:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, boolInt(m.ult(a, b)))
	case decode.KindXOR:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrap(a^b))
	case decode.KindOR:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrap(a|b))
	case decode.KindAND:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrap(a&b))
	case decode.KindSRL:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint64(b) & m.shiftMask()
		v := (uint64(a) & m.XLEN.Mask64()) >> shamt
		m.writeRd(inst.Rd, m.wrap(int64(v)))
	case decode.KindSRA:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint(uint64(b) & m.shiftMask())
		m.writeRd(inst.Rd, m.wrap(a>>shamt))

	case decode.KindADDIW:
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)+int32(inst.Imm))))
	case decode.KindSLLIW:
		shamt := uint(inst.Shamt) & 0x1F
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)<<shamt)))
	case decode.KindSRLIW:
		shamt := uint(inst.Shamt) & 0x1F
		m.writeRd(inst.Rd, m.wrapW(int64(int32(uint32(a)>>shamt))))
	case decode.KindSRAIW:
		shamt := uint(inst.Shamt) & 0x1F
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)>>shamt)))

	case decode.KindADDW:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)+int32(b))))
	case decode.KindSUBW:
		b := m.Regs.Read(inst.Rs2)
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)-int32(b))))
	case decode.KindSLLW:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint(uint64(b) & 0x1F)
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)<<shamt)))
	case decode.KindSRLW:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint(uint64(b) & 0x1F)
		m.writeRd(inst.Rd, m.wrapW(int64(int32(uint32(a)>>shamt))))
	case decode.KindSRAW:
		b := m.Regs.Read(inst.Rs2)
		shamt := uint(uint64(b) & 0x1F)
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)>>shamt)))

	case decode.KindLUI:
		m.writeRd(inst.Rd, m.wrap(inst.Imm))
	case decode.KindAUIPC:
		m.writeRd(inst.Rd, m.wrap(int64(faultingPC)+inst.Imm))
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
