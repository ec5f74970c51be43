// Package decode maps a 32-bit RISC-V instruction word to a tagged
// instruction kind plus its pre-extracted operand fields.
package decode

import "github.com/rvsim/riscv-sim/bits"

// Instruction is the decoder's output: a tagged Kind, its encoding
// Format, and every operand field the core engine might need to execute
// it. Fields not meaningful for a given Kind are left zero.
type Instruction struct {
	Word   uint32
	Kind   Kind
	Format Format
	Rd     int
	Rs1    int
	Rs2    int
	Imm    int64  // sign-extended immediate for I/S/B/U/J formats
	CSR    uint32 // CSR address for SYSTEM CSR* instructions
	Shamt  uint32 // shift amount for *I shift instructions
}

// Decode decodes a 32-bit instruction word under the given register
// width (32 or 64). It returns ErrIllegalInstruction for any
// opcode/funct3/funct7 combination not in the closed set spec.md §4.3
// defines; the word is otherwise fully decoded into Instruction.
//
// xlen matters only for OP-IMM's shift-immediate forms: at XLEN=64 the
// shamt field widens from 5 to 6 bits (spec.md §4.6.1, "Shift amount is
// masked to ... 6 bits under XLEN=64"), which steals bit 25 away from
// funct7 and narrows it to a 6-bit funct6.
func Decode(word uint32, xlen int) (Instruction, error) {
	opcode := bits.Extract(word, 0, 6)
	funct3 := bits.Extract(word, 12, 14)
	funct7 := bits.Extract(word, 25, 31)

	rd := int(bits.Extract(word, 7, 11))
	rs1 := int(bits.Extract(word, 15, 19))
	rs2 := int(bits.Extract(word, 20, 24))

	inst := Instruction{Word: word, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch opcode {
	case 0x03: // LOAD
		inst.Format = FormatI
		inst.Imm = immI(word)
		switch funct3 {
		case 0:
			inst.Kind = KindLB
		case 1:
			inst.Kind = KindLH
		case 2:
			inst.Kind = KindLW
		case 3:
			inst.Kind = KindLD
		case 4:
			inst.Kind = KindLBU
		case 5:
			inst.Kind = KindLHU
		case 6:
			inst.Kind = KindLWU
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x0F: // MISC-MEM
		inst.Format = FormatI
		if funct3 != 0 {
			return inst, ErrIllegalInstruction
		}
		inst.Kind = KindFENCE

	case 0x13: // OP-IMM
		inst.Format = FormatI
		inst.Imm = immI(word)
		// At XLEN=64 the shamt field is 6 bits (word[25:20]) and bit 25
		// is stolen from funct7, leaving a 6-bit funct6 (word[31:26]) to
		// distinguish SRLI/SRAI. At XLEN=32 shamt stays 5 bits and the
		// full 7-bit funct7 gates SLLI/SRLI/SRAI as before.
		shiftFunct := funct7
		if xlen == 64 {
			inst.Shamt = bits.Extract(word, 20, 25)
			shiftFunct = bits.Extract(word, 26, 31)
		} else {
			inst.Shamt = bits.Extract(word, 20, 24)
		}
		switch funct3 {
		case 0:
			inst.Kind = KindADDI
		case 1:
			if shiftFunct != 0x00 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindSLLI
		case 2:
			inst.Kind = KindSLTI
		case 3:
			inst.Kind = KindSLTIU
		case 4:
			inst.Kind = KindXORI
		case 5:
			sraFunct := uint32(0x20)
			if xlen == 64 {
				sraFunct = 0x10
			}
			switch shiftFunct {
			case 0x00:
				inst.Kind = KindSRLI
			case sraFunct:
				inst.Kind = KindSRAI
			default:
				return inst, ErrIllegalInstruction
			}
		case 6:
			inst.Kind = KindORI
		case 7:
			inst.Kind = KindANDI
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x17: // AUIPC
		inst.Format = FormatU
		inst.Imm = immU(word)
		inst.Kind = KindAUIPC

	case 0x1B: // OP-IMM-32 (RV64)
		inst.Format = FormatI
		inst.Imm = immI(word)
		inst.Shamt = bits.Extract(word, 20, 24)
		switch funct3 {
		case 0:
			inst.Kind = KindADDIW
		case 1:
			if funct7 != 0x00 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindSLLIW
		case 5:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSRLIW
			case 0x20:
				inst.Kind = KindSRAIW
			default:
				return inst, ErrIllegalInstruction
			}
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x23: // STORE
		inst.Format = FormatS
		inst.Imm = immS(word)
		switch funct3 {
		case 0:
			inst.Kind = KindSB
		case 1:
			inst.Kind = KindSH
		case 2:
			inst.Kind = KindSW
		case 3:
			inst.Kind = KindSD
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x33: // OP
		inst.Format = FormatR
		switch funct3 {
		case 0:
			switch funct7 {
			case 0x00:
				inst.Kind = KindADD
			case 0x01:
				inst.Kind = KindMUL
			case 0x20:
				inst.Kind = KindSUB
			default:
				return inst, ErrIllegalInstruction
			}
		case 1:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSLL
			case 0x01:
				inst.Kind = KindMULH
			default:
				return inst, ErrIllegalInstruction
			}
		case 2:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSLT
			case 0x01:
				inst.Kind = KindMULHSU
			default:
				return inst, ErrIllegalInstruction
			}
		case 3:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSLTU
			case 0x01:
				inst.Kind = KindMULHU
			default:
				return inst, ErrIllegalInstruction
			}
		case 4:
			switch funct7 {
			case 0x00:
				inst.Kind = KindXOR
			case 0x01:
				inst.Kind = KindDIV
			default:
				return inst, ErrIllegalInstruction
			}
		case 5:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSRL
			case 0x01:
				inst.Kind = KindDIVU
			case 0x20:
				inst.Kind = KindSRA
			default:
				return inst, ErrIllegalInstruction
			}
		case 6:
			switch funct7 {
			case 0x00:
				inst.Kind = KindOR
			case 0x01:
				inst.Kind = KindREM
			default:
				return inst, ErrIllegalInstruction
			}
		case 7:
			switch funct7 {
			case 0x00:
				inst.Kind = KindAND
			case 0x01:
				inst.Kind = KindREMU
			default:
				return inst, ErrIllegalInstruction
			}
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x37: // LUI
		inst.Format = FormatU
		inst.Imm = immU(word)
		inst.Kind = KindLUI

	case 0x3B: // OP-32 (RV64)
		inst.Format = FormatR
		switch funct3 {
		case 0:
			switch funct7 {
			case 0x00:
				inst.Kind = KindADDW
			case 0x01:
				inst.Kind = KindMULW
			case 0x20:
				inst.Kind = KindSUBW
			default:
				return inst, ErrIllegalInstruction
			}
		case 1:
			if funct7 != 0x00 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindSLLW
		case 4:
			if funct7 != 0x01 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindDIVW
		case 5:
			switch funct7 {
			case 0x00:
				inst.Kind = KindSRLW
			case 0x01:
				inst.Kind = KindDIVUW
			case 0x20:
				inst.Kind = KindSRAW
			default:
				return inst, ErrIllegalInstruction
			}
		case 6:
			if funct7 != 0x01 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindREMW
		case 7:
			if funct7 != 0x01 {
				return inst, ErrIllegalInstruction
			}
			inst.Kind = KindREMUW
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x63: // BRANCH
		inst.Format = FormatB
		inst.Imm = immB(word)
		switch funct3 {
		case 0:
			inst.Kind = KindBEQ
		case 1:
			inst.Kind = KindBNE
		case 4:
			inst.Kind = KindBLT
		case 5:
			inst.Kind = KindBGE
		case 6:
			inst.Kind = KindBLTU
		case 7:
			inst.Kind = KindBGEU
		default:
			return inst, ErrIllegalInstruction
		}

	case 0x67: // JALR
		if funct3 != 0 {
			return inst, ErrIllegalInstruction
		}
		inst.Format = FormatI
		inst.Imm = immI(word)
		inst.Kind = KindJALR

	case 0x6F: // JAL
		inst.Format = FormatJ
		inst.Imm = immJ(word)
		inst.Kind = KindJAL

	case 0x73: // SYSTEM
		inst.Format = FormatC
		switch funct3 {
		case 0:
			switch {
			case word == 0x00000073:
				inst.Kind = KindECALL
			case word == 0x00100073:
				inst.Kind = KindEBREAK
			case word == 0x00200073:
				inst.Kind = KindURET
			case word == 0x10200073:
				inst.Kind = KindSRET
			case word == 0x30200073:
				inst.Kind = KindMRET
			case funct7 == 0x09:
				inst.Kind = KindSFENCE_VMA
			default:
				return inst, ErrIllegalInstruction
			}
		case 1:
			inst.Kind = KindCSRRW
			inst.CSR = bits.Extract(word, 20, 31)
		case 2:
			inst.Kind = KindCSRRS
			inst.CSR = bits.Extract(word, 20, 31)
		case 5:
			inst.Kind = KindCSRRWI
			inst.CSR = bits.Extract(word, 20, 31)
			// rs1 carries the 5-bit zero-extended immediate, not a register.
			inst.Imm = int64(rs1)
		default:
			return inst, ErrIllegalInstruction
		}

	default:
		return inst, ErrIllegalInstruction
	}

	return inst, nil
}

// immI sign-extends the I-type immediate: imm[31:11]=word[31], imm[10:0]=word[30:20].
func immI(word uint32) int64 {
	raw := bits.ExtractAt(word, 20, 30, 0)
	if bits.Extract(word, 31, 31) == 1 {
		raw |= 0xFFFF_F800
	}
	return int64(int32(raw))
}

// immS sign-extends the S-type immediate: imm[31:5]=word[31:25], imm[4:0]=word[11:7].
func immS(word uint32) int64 {
	raw := bits.ExtractAt(word, 7, 11, 0) | bits.ExtractAt(word, 25, 31, 5)
	if bits.Extract(word, 31, 31) == 1 {
		raw |= 0xFFFF_F000
	}
	return int64(int32(raw))
}

// immB sign-extends the B-type immediate:
// imm[31:12]=word[31], imm[11]=word[7], imm[10:5]=word[30:25], imm[4:1]=word[11:8], imm[0]=0.
func immB(word uint32) int64 {
	raw := bits.ExtractAt(word, 8, 11, 1) |
		bits.ExtractAt(word, 25, 30, 5) |
		bits.ExtractAt(word, 7, 7, 11)
	if bits.Extract(word, 31, 31) == 1 {
		raw |= 0xFFFF_F000
	}
	return int64(int32(raw))
}

// immU returns the U-type immediate: word with the low 12 bits cleared.
func immU(word uint32) int64 {
	return int64(int32(word & 0xFFFF_F000))
}

// immJ sign-extends the J-type immediate:
// imm[31:20]=word[31], imm[19:12]=word[19:12], imm[11]=word[20], imm[10:1]=word[30:21], imm[0]=0.
func immJ(word uint32) int64 {
	raw := bits.ExtractAt(word, 21, 30, 1) |
		bits.ExtractAt(word, 20, 20, 11) |
		bits.ExtractAt(word, 12, 19, 12)
	if bits.Extract(word, 31, 31) == 1 {
		raw |= 0xFFF0_0000
	}
	return int64(int32(raw))
}
