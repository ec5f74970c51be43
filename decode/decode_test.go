package decode_test

import (
	"testing"

	"github.com/rvsim/riscv-sim/decode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeADDI(t *testing.T) {
	// ADDI x1, x0, -1
	inst, err := decode.Decode(0xFFF00093, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindADDI, inst.Kind)
	assert.Equal(t, decode.FormatI, inst.Format)
	assert.Equal(t, 1, inst.Rd)
	assert.Equal(t, 0, inst.Rs1)
	assert.Equal(t, int64(-1), inst.Imm)
}

func TestDecodeLUIAndAUIPCSignExtension(t *testing.T) {
	inst, err := decode.Decode(0xDEAD02B7, 64) // LUI x5, 0xDEAD0
	require.NoError(t, err)
	assert.Equal(t, decode.KindLUI, inst.Kind)
	assert.Equal(t, int64(int32(0xDEAD0000)), inst.Imm)
}

func TestDecodeJAL(t *testing.T) {
	// JAL x1, -4  => 0xFFDFF0EF's variant is tricky to hand compute; instead decode
	// a known encoding: JAL x0, 0 is all-zero immediate fields with opcode 0x6F.
	inst, err := decode.Decode(0x0000006F, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindJAL, inst.Kind)
	assert.Equal(t, int64(0), inst.Imm)
}

func TestDecodeBranchImmediateIsEven(t *testing.T) {
	inst, err := decode.Decode(0x00000063, 64) // BEQ x0, x0, 0
	require.NoError(t, err)
	assert.Equal(t, decode.KindBEQ, inst.Kind)
	assert.Equal(t, int64(0), inst.Imm%2)
}

func TestDecodeIllegalOpcode(t *testing.T) {
	_, err := decode.Decode(0x0000006B, 64) // reserved opcode, used as halt sentinel by convention
	require.ErrorIs(t, err, decode.ErrIllegalInstruction)
}

func TestDecodeCSRRWI(t *testing.T) {
	// CSRRWI x1, mstatus(0x300), 5
	word := uint32(0x300<<20) | uint32(5<<15) | uint32(5<<12) | uint32(1<<7) | 0x73
	inst, err := decode.Decode(word, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindCSRRWI, inst.Kind)
	assert.Equal(t, uint32(0x300), inst.CSR)
	assert.Equal(t, int64(5), inst.Imm)
}

func TestDecodeMRET(t *testing.T) {
	inst, err := decode.Decode(0x30200073, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindMRET, inst.Kind)
}

func TestDecodeRV64WSuffixOpcodes(t *testing.T) {
	// ADDIW x1, x0, 5 : opcode 0x1B, funct3 0
	word := uint32(5<<20) | uint32(0<<15) | uint32(0<<12) | uint32(1<<7) | 0x1B
	inst, err := decode.Decode(word, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindADDIW, inst.Kind)
	assert.Equal(t, int64(5), inst.Imm)
}

func TestDecodeMExtension(t *testing.T) {
	// MUL x1, x2, x3 : opcode 0x33, funct3 0, funct7 1
	word := uint32(0x01<<25) | uint32(3<<20) | uint32(2<<15) | uint32(0<<12) | uint32(1<<7) | 0x33
	inst, err := decode.Decode(word, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindMUL, inst.Kind)
	assert.Equal(t, 1, inst.Rd)
	assert.Equal(t, 2, inst.Rs1)
	assert.Equal(t, 3, inst.Rs2)
}

// shiftImmWord encodes an OP-IMM shift instruction: imm12[31:20] (the
// combined funct7/funct6 + shamt field), rs1[19:15], funct3[14:12],
// rd[11:7], opcode 0x13.
func shiftImmWord(imm12, funct3 uint32) uint32 {
	return (imm12 << 20) | (1 << 15) | (funct3 << 12) | uint32(1<<7) | 0x13
}

func TestDecodeSLLIRV32(t *testing.T) {
	word := shiftImmWord(0x00<<5|5, 1) // SLLI x1, x1, 5
	inst, err := decode.Decode(word, 32)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSLLI, inst.Kind)
	assert.Equal(t, uint32(5), inst.Shamt)
}

func TestDecodeSRLIAndSRAIRV32(t *testing.T) {
	srli := shiftImmWord(0x00<<5|7, 5)
	inst, err := decode.Decode(srli, 32)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSRLI, inst.Kind)
	assert.Equal(t, uint32(7), inst.Shamt)

	srai := shiftImmWord(0x20<<5|7, 5)
	inst, err = decode.Decode(srai, 32)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSRAI, inst.Kind)
	assert.Equal(t, uint32(7), inst.Shamt)
}

func TestDecodeRV64ShiftImmediateAboveBit31(t *testing.T) {
	// SLLI x1, x1, 32 at XLEN=64: shamt bit 5 (word bit 25) would read as
	// funct7==0x01 if treated as a 7-bit field, wrongly rejecting the
	// instruction. imm12 = funct6(0)<<6 | shamt(32).
	word := shiftImmWord(0x00<<6|32, 1)
	inst, err := decode.Decode(word, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSLLI, inst.Kind)
	assert.Equal(t, uint32(32), inst.Shamt)
}

func TestDecodeRV64SRLIAndSRAIAboveBit31(t *testing.T) {
	srli := shiftImmWord(0x00<<6|63, 5) // SRLI x1, x1, 63
	inst, err := decode.Decode(srli, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSRLI, inst.Kind)
	assert.Equal(t, uint32(63), inst.Shamt)

	srai := shiftImmWord(0x10<<6|32, 5) // SRAI x1, x1, 32
	inst, err = decode.Decode(srai, 64)
	require.NoError(t, err)
	assert.Equal(t, decode.KindSRAI, inst.Kind)
	assert.Equal(t, uint32(32), inst.Shamt)
}

func TestDecodeRV64SLLIRejectsBadFunct6(t *testing.T) {
	// funct6 must be exactly 0 for SLLI; 0x01 in the top 6 bits is illegal.
	word := shiftImmWord(0x01<<6, 1)
	_, err := decode.Decode(word, 64)
	require.ErrorIs(t, err, decode.ErrIllegalInstruction)
}
