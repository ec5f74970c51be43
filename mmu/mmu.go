// Package mmu implements the Sv32/Sv39 paged virtual-to-physical address
// translator: satp-driven mode selection and the page-table walk.
package mmu

import (
	"github.com/rvsim/riscv-sim/csr"
)

// Mode is the active address-translation scheme, derived from satp.
type Mode int

const (
	ModeBare Mode = iota
	ModeSv32
	ModeSv39
	ModeSv48 // reserved: out of scope, any walk in this mode is a host fault
)

func (m Mode) String() string {
	switch m {
	case ModeBare:
		return "Bare"
	case ModeSv32:
		return "Sv32"
	case ModeSv39:
		return "Sv39"
	case ModeSv48:
		return "Sv48"
	default:
		return "Unknown"
	}
}

// AccessType distinguishes the three kinds of translated access, since
// page-table permission checks differ (R/W/X) and the caller turns a
// fault into a different architectural cause per access type.
type AccessType int

const (
	AccessExecute AccessType = iota
	AccessRead
	AccessWrite
)

// PhysReader reads raw physical-memory bytes without going through
// translation, used only to walk page tables (step 2 of spec.md §4.4:
// "no translation recursion").
type PhysReader interface {
	ReadPhysByte(addr uint64) (byte, error)
}

// ImplementationFault is a host-level fatal error: an Sv48 walk was
// requested (reserved/out of scope) or the page table itself could not
// be read from physical memory.
type ImplementationFault struct {
	Msg string
}

func (e *ImplementationFault) Error() string { return "mmu: " + e.Msg }

// Translator holds the currently active translation mode and root page
// table location, re-derived every time satp is written.
type Translator struct {
	Mode    Mode
	RootPPN uint64
	Asid    uint64
}

// New returns a translator in Bare mode (identity translation).
func New() *Translator {
	return &Translator{Mode: ModeBare}
}

// satp mode field values for RV32 (bit 31) and RV64 (bits [63:60]).
const (
	satp32ModeBare = 0
	satp32ModeSv32 = 1

	satp64ModeBare = 0
	satp64ModeSv39 = 8
	satp64ModeSv48 = 9
)

// DeriveFromSATP re-derives Mode and RootPPN from a freshly written satp
// value, per spec.md's "selected from satp high bits under current XLEN".
func (t *Translator) DeriveFromSATP(satp uint64, xlen int) {
	if xlen == 32 {
		mode := (satp >> 31) & 0x1
		t.RootPPN = satp & 0x3F_FFFF // 22-bit PPN in Sv32
		if mode == satp32ModeSv32 {
			t.Mode = ModeSv32
		} else {
			t.Mode = ModeBare
		}
		return
	}

	mode := (satp >> 60) & 0xF
	t.RootPPN = satp & 0xFFF_FFFF_FFFF // 44-bit PPN
	t.Asid = (satp >> 44) & 0xFFFF
	switch mode {
	case satp64ModeSv39:
		t.Mode = ModeSv39
	case satp64ModeSv48:
		t.Mode = ModeSv48
	default:
		t.Mode = ModeBare
	}
}

// levelParams describes one translation scheme's walk geometry.
type levelParams struct {
	levels   int
	vpnBits  uint
	ptesize  uint64
	vaBits   uint // total VA width of the scheme; the walk itself does not read it
}

func (t *Translator) params() levelParams {
	switch t.Mode {
	case ModeSv32:
		return levelParams{levels: 2, vpnBits: 10, ptesize: 4, vaBits: 32}
	case ModeSv39:
		return levelParams{levels: 3, vpnBits: 9, ptesize: 8, vaBits: 39}
	default:
		return levelParams{}
	}
}

// vpn extracts the VPN for the given level (0 = lowest) from a virtual address.
func vpn(addr uint64, level int, p levelParams) uint64 {
	shift := 12 + uint(level)*p.vpnBits
	mask := (uint64(1) << p.vpnBits) - 1
	return (addr >> shift) & mask
}

// pte bit positions, common to Sv32/Sv39.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7
)

func causeFor(access AccessType) csr.Cause {
	switch access {
	case AccessExecute:
		return csr.CauseInstructionPageFault
	case AccessRead:
		return csr.CauseLoadPageFault
	default:
		return csr.CauseStorePageFault
	}
}

// Translate converts a virtual address to a physical address under the
// active mode, implementing the walk algorithm of spec.md §4.4 exactly.
// Machine mode always bypasses translation (identity), regardless of
// satp, as does Bare mode in any privilege level.
func (t *Translator) Translate(addr uint64, access AccessType, priv csr.PrivMode, phys PhysReader) (uint64, *csr.Exception, error) {
	if priv == csr.PrivMachine || t.Mode == ModeBare {
		return addr, nil, nil
	}
	if t.Mode == ModeSv48 {
		return 0, nil, &ImplementationFault{Msg: "Sv48 is reserved and not implemented"}
	}

	p := t.params()
	level := p.levels - 1
	ppn := t.RootPPN

	for {
		pteAddr := ppn*4096 + vpn(addr, level, p)*p.ptesize
		pteVal, err := readPTE(phys, pteAddr, p.ptesize)
		if err != nil {
			return 0, nil, &ImplementationFault{Msg: "page table read failed: " + err.Error()}
		}

		v := pteVal&pteV != 0
		r := pteVal&pteR != 0
		w := pteVal&pteW != 0
		x := pteVal&pteX != 0
		a := pteVal&pteA != 0

		if !v || (!r && w) {
			return 0, &csr.Exception{Cause: causeFor(access), Addr: addr}, nil
		}

		if !r && !x {
			// Pointer to the next level.
			if level == 0 {
				return 0, &csr.Exception{Cause: causeFor(access), Addr: addr}, nil
			}
			ppn = ptePPN(pteVal, p.ptesize)
			level--
			continue
		}

		// Leaf PTE: check permission for this access type.
		var permitted bool
		switch access {
		case AccessExecute:
			permitted = x
		case AccessRead:
			permitted = r
		case AccessWrite:
			permitted = w && pteVal&pteD != 0
		}
		if !permitted {
			return 0, &csr.Exception{Cause: causeFor(access), Addr: addr}, nil
		}
		if !a {
			return 0, &csr.Exception{Cause: causeFor(access), Addr: addr}, nil
		}

		leafPPN := ptePPN(pteVal, p.ptesize)
		offset := addr & 0xFFF

		if level > 0 {
			// Superpage: lower VPN fields of the leaf PPN must be zero.
			lowMask := (uint64(1) << (uint(level) * p.vpnBits)) - 1
			if leafPPN&lowMask != 0 {
				return 0, &csr.Exception{Cause: causeFor(access), Addr: addr}, nil
			}
			pa := (leafPPN &^ lowMask) << 12
			for lvl := 0; lvl < level; lvl++ {
				pa |= vpn(addr, lvl, p) << (12 + uint(lvl)*p.vpnBits)
			}
			return pa | offset, nil, nil
		}

		return (leafPPN << 12) | offset, nil, nil
	}
}

// readPTE reads a ptesize-byte little-endian PTE from physical memory.
func readPTE(phys PhysReader, addr uint64, ptesize uint64) (uint64, error) {
	var v uint64
	for i := uint64(0); i < ptesize; i++ {
		b, err := phys.ReadPhysByte(addr + i)
		if err != nil {
			return 0, err
		}
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// ptePPN extracts the PPN field from a PTE, which sits above the 8 flag
// bits and is 22 bits wide for Sv32 (ptesize==4) or 44 bits for Sv39.
func ptePPN(pte uint64, ptesize uint64) uint64 {
	if ptesize == 4 {
		return (pte >> 10) & 0x3F_FFFF
	}
	return (pte >> 10) & 0xFFF_FFFF_FFFF
}
