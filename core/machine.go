// Package core implements the fetch-decode-execute-trap engine: the
// aggregate that owns the register file, CSR bank, privilege state,
// MMU, and memory bus, and drives them one retired instruction at a
// time.
package core

import (
	"fmt"

	"github.com/rvsim/riscv-sim/csr"
	"github.com/rvsim/riscv-sim/decode"
	"github.com/rvsim/riscv-sim/memory"
	"github.com/rvsim/riscv-sim/mmu"
	"github.com/rvsim/riscv-sim/regfile"
	"github.com/rvsim/riscv-sim/trace"
)

// DefaultHaltSentinel is the reserved instruction word whose fetch
// terminates the simulation loop, per spec.md's non-standard software
// marker convention.
const DefaultHaltSentinel = 0x0000006B

// Config holds the construction-time parameters: the register width
// (which selects RV32 or RV64 arithmetic), the entry PC, and the halt
// sentinel.
type Config struct {
	XLEN         regfile.Width
	Start        uint64
	HaltSentinel uint32
}

// Machine is the complete architectural state of one simulated hart:
// regfile, PC, CSR bank, privilege/address mode, and the memory bus it
// was constructed with. It is the sole owner of all of these; nothing
// outside a tick ever contends for them (spec.md §5).
type Machine struct {
	Regs *regfile.Regfile
	CSR  *csr.Bank
	MMU  *mmu.Translator
	Bus  *memory.Bus

	PC   uint64
	Priv csr.PrivMode
	XLEN regfile.Width

	HaltSentinel uint32
	Retired      uint64

	ITrace *trace.InstructionTrace
	RTrace *trace.RegisterTrace
	FTrace *trace.FaultTrace

	start uint64
}

// NewMachine constructs a Machine wired to the given bus, in Machine
// privilege mode with Bare address translation, PC at cfg.Start.
func NewMachine(cfg Config, bus *memory.Bus) *Machine {
	sentinel := cfg.HaltSentinel
	if sentinel == 0 {
		sentinel = DefaultHaltSentinel
	}
	xlen := cfg.XLEN
	if xlen == 0 {
		xlen = regfile.Width64
	}
	return &Machine{
		Regs:         regfile.New(),
		CSR:          csr.NewBank(),
		MMU:          mmu.New(),
		Bus:          bus,
		PC:           cfg.Start,
		Priv:         csr.PrivMachine,
		XLEN:         xlen,
		HaltSentinel: sentinel,
		start:        cfg.Start,
	}
}

// Reset restores architectural state to its post-construction values.
// Memory and device state reset through Bus.Reset; RAM contents are
// untouched, matching spec.md §3's persistence rule.
func (m *Machine) Reset() {
	m.Regs.Reset()
	m.CSR = csr.NewBank()
	m.MMU = mmu.New()
	m.PC = m.start
	m.Priv = csr.PrivMachine
	m.Retired = 0
	m.Bus.Reset()
}

// width returns the active XLEN as a plain int for shift/mask math.
func (m *Machine) width() int {
	if m.XLEN == regfile.Width32 {
		return 32
	}
	return 64
}

// wrap narrows v to the active XLEN by sign-extension, a no-op at
// XLEN=64. Every base-ISA (non-W) arithmetic result passes through
// this before being written to a register.
func (m *Machine) wrap(v int64) int64 {
	if m.XLEN == regfile.Width32 {
		return regfile.SignExtend(uint64(v), 32)
	}
	return v
}

// wrapW sign-extends a 32-bit result to the full register width,
// independent of the active XLEN: the *W instructions always operate
// on the low 32 bits.
func (m *Machine) wrapW(v int64) int64 {
	return regfile.SignExtend(uint64(v), 32)
}

// shiftMask returns the bit-count mask applied to register-register
// shift amounts under the active XLEN (5 bits at XLEN=32, 6 at 64).
func (m *Machine) shiftMask() uint64 {
	if m.XLEN == regfile.Width32 {
		return 0x1F
	}
	return 0x3F
}

// ult compares a and b as unsigned values of the active XLEN width.
func (m *Machine) ult(a, b int64) bool {
	mask := m.XLEN.Mask64()
	return uint64(a)&mask < uint64(b)&mask
}

// writeRd writes a value to rd, recording it in the register trace
// when enabled. x0 writes are silently dropped by Regfile.Write itself.
func (m *Machine) writeRd(rd int, v int64) {
	if rd == 0 {
		return
	}
	old := m.Regs.Read(rd)
	m.Regs.Write(rd, v)
	if m.RTrace != nil && m.RTrace.Enabled && old != v {
		m.RTrace.RecordWrite(m.Retired, m.PC, regfile.ABINames[rd], old, v)
	}
}

// FatalError wraps a host-level fault observed mid-tick: an out-of-range
// memory access, an unreadable page table, or an instruction kind the
// engine has no executor for. Per spec.md §7 this always aborts the
// simulator; it is never an architectural trap.
type FatalError struct {
	PC   uint64
	Word uint32
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("core: fatal fault at pc=0x%x word=0x%08x: %v", e.PC, e.Word, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Step executes exactly one tick of the fetch-decode-execute-trap loop
// (spec.md §4.6). halted reports whether the fetched word was the
// configured halt sentinel; err is a host-level fatal fault. Neither
// return overlaps: a halted tick never trapped, and a fatal tick never
// retires.
func (m *Machine) Step() (halted bool, err error) {
	m.Bus.PollKeyboard()

	faultingPC := m.PC
	m.PC += 4 // fetch always advances first; trap handlers rewind via faultingPC.

	pa, exc, terr := m.MMU.Translate(faultingPC, mmu.AccessExecute, m.Priv, m.Bus)
	if terr != nil {
		return false, &FatalError{PC: faultingPC, Err: terr}
	}
	if exc != nil {
		m.trap(exc, faultingPC)
		m.Retired++
		return false, nil
	}

	word64, lerr := m.Bus.LoadN(pa, 4)
	if lerr != nil {
		return false, &FatalError{PC: faultingPC, Err: lerr}
	}
	word := uint32(word64)

	if word == m.HaltSentinel {
		return true, nil
	}

	inst, derr := decode.Decode(word, m.width())
	if derr != nil {
		m.trap(&csr.Exception{Cause: csr.CauseIllegalInstruction, Addr: faultingPC}, faultingPC)
		m.Retired++
		return false, nil
	}

	if m.ITrace != nil && m.ITrace.Enabled {
		m.ITrace.Record(m.Retired, faultingPC, word, inst.Kind.String())
	}

	execExc, eerr := m.execute(inst, faultingPC)
	if eerr != nil {
		return false, &FatalError{PC: faultingPC, Word: word, Err: eerr}
	}
	if execExc != nil {
		m.trap(execExc, faultingPC)
	}
	m.Retired++
	return false, nil
}

// Run steps the machine until halt or a fatal fault. exitCode follows
// spec.md §6: 0 when the halted machine's a0 is zero, non-zero
// otherwise; the non-zero value is a0's low byte with bit 0 forced on,
// so it is never 0 even when that low byte is.
func (m *Machine) Run() (exitCode int, err error) {
	for {
		halted, serr := m.Step()
		if serr != nil {
			return 1, serr
		}
		if halted {
			a0 := m.Regs.Read(10)
			if a0 == 0 {
				return 0, nil
			}
			return int(byte(a0)) | 1, nil
		}
	}
}

// trap implements spec.md §4.6.2: delegate to Supervisor when medeleg
// permits and the current mode is below Machine, else deliver to
// Machine. faultingPC is the address of the instruction that raised e,
// recorded verbatim in *epc/*tval per cause.
func (m *Machine) trap(e *csr.Exception, faultingPC uint64) {
	enc := m.Priv.Encoding()
	toSupervisor := m.Priv != csr.PrivMachine && m.CSR.MedelegBit(e.Cause)

	if m.FTrace != nil && m.FTrace.Enabled {
		m.FTrace.Record(m.Retired, faultingPC, uint64(e.Cause), e.Addr, toSupervisor)
	}

	if toSupervisor {
		m.CSR.RawWrite(csr.Sepc, faultingPC)
		m.CSR.RawWrite(csr.Scause, uint64(e.Cause))
		m.CSR.RawWrite(csr.Stval, e.Addr)
		m.CSR.SetSPP(enc & 1)
		m.Priv = csr.PrivSupervisor
		m.PC = m.CSR.RawRead(csr.Stvec)
		return
	}

	m.CSR.RawWrite(csr.Mepc, faultingPC)
	m.CSR.RawWrite(csr.Mcause, uint64(e.Cause))
	m.CSR.RawWrite(csr.Mtval, e.Addr)
	m.CSR.SetMPP(enc & 3)
	m.Priv = csr.PrivMachine
	m.PC = m.CSR.RawRead(csr.Mtvec)
}
