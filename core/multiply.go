package core

import (
	"math"
	"math/big"

	"github.com/rvsim/riscv-sim/decode"
	"github.com/rvsim/riscv-sim/regfile"
)

// execMul implements the M-extension: MUL/MULH/MULHSU/MULHU,
// DIV/DIVU/REM/REMU, and their *W 32-bit word variants, per
// spec.md §4.6.1's rules for divide-by-zero and the INT_MIN/-1 overflow
// case.
func (m *Machine) execMul(inst decode.Instruction) {
	a := m.Regs.Read(inst.Rs1)
	b := m.Regs.Read(inst.Rs2)

	switch inst.Kind {
	case decode.KindMUL:
		m.writeRd(inst.Rd, m.wrap(a*b))
	case decode.KindMULH:
		m.writeRd(inst.Rd, m.upperMul(a, b, true, true))
	case decode.KindMULHSU:
		m.writeRd(inst.Rd, m.upperMul(a, b, true, false))
	case decode.KindMULHU:
		m.writeRd(inst.Rd, m.upperMul(a, b, false, false))
	case decode.KindDIV:
		m.writeRd(inst.Rd, divSigned(a, b, m.width()))
	case decode.KindDIVU:
		m.writeRd(inst.Rd, divUnsigned(a, b, m.width()))
	case decode.KindREM:
		m.writeRd(inst.Rd, remSigned(a, b, m.width()))
	case decode.KindREMU:
		m.writeRd(inst.Rd, remUnsigned(a, b, m.width()))

	case decode.KindMULW:
		m.writeRd(inst.Rd, m.wrapW(int64(int32(a)*int32(b))))
	case decode.KindDIVW:
		m.writeRd(inst.Rd, m.wrapW(divSigned(int64(int32(a)), int64(int32(b)), 32)))
	case decode.KindDIVUW:
		m.writeRd(inst.Rd, m.wrapW(divUnsigned(int64(int32(a)), int64(int32(b)), 32)))
	case decode.KindREMW:
		m.writeRd(inst.Rd, m.wrapW(remSigned(int64(int32(a)), int64(int32(b)), 32)))
	case decode.KindREMUW:
		m.writeRd(inst.Rd, m.wrapW(remUnsigned(int64(int32(a)), int64(int32(b)), 32)))
	}
}

// upperMul computes the upper half of the 2*width-bit product of a and
// b, each interpreted as signed or unsigned per signedA/signedB, then
// sign-extends the width-bit result to a register value. Implemented
// with math/big rather than bit-twiddled 64-bit tricks so the same code
// is correct at both XLEN=32 and XLEN=64.
func (m *Machine) upperMul(a, b int64, signedA, signedB bool) int64 {
	width := m.width()
	av := operandBig(a, width, signedA)
	bv := operandBig(b, width, signedB)
	product := new(big.Int).Mul(av, bv)
	hi := new(big.Int).Rsh(product, uint(width))
	twoPow := new(big.Int).Lsh(big.NewInt(1), uint(width))
	hiBits := new(big.Int).Mod(hi, twoPow) // Euclidean mod: always non-negative
	return regfile.SignExtend(hiBits.Uint64(), uint(width))
}

func operandBig(v int64, width int, signed bool) *big.Int {
	if signed {
		return big.NewInt(v)
	}
	mask := maskFor(width)
	return new(big.Int).SetUint64(uint64(v) & mask)
}

func maskFor(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

func minForWidth(width int) int64 {
	if width >= 64 {
		return math.MinInt64
	}
	return -(int64(1) << uint(width-1))
}

// divSigned implements RISC-V signed division: divide-by-zero yields
// -1, and the INT_MIN/-1 overflow case wraps to INT_MIN rather than
// trapping.
func divSigned(a, b int64, width int) int64 {
	if b == 0 {
		return -1
	}
	minVal := minForWidth(width)
	if b == -1 && a == minVal {
		return minVal
	}
	return a / b
}

// remSigned mirrors divSigned: divide-by-zero returns the dividend,
// and INT_MIN % -1 is 0.
func remSigned(a, b int64, width int) int64 {
	if b == 0 {
		return a
	}
	minVal := minForWidth(width)
	if b == -1 && a == minVal {
		return 0
	}
	return a % b
}

// divUnsigned/remUnsigned reinterpret a and b as width-bit unsigned
// quantities, divide, and sign-extend the width-bit result back into
// the register's int64 representation.
func divUnsigned(a, b int64, width int) int64 {
	if b == 0 {
		return -1
	}
	mask := maskFor(width)
	ua, ub := uint64(a)&mask, uint64(b)&mask
	return regfile.SignExtend(ua/ub, uint(width))
}

func remUnsigned(a, b int64, width int) int64 {
	if b == 0 {
		return a
	}
	mask := maskFor(width)
	ua, ub := uint64(a)&mask, uint64(b)&mask
	return regfile.SignExtend(ua%ub, uint(width))
}
