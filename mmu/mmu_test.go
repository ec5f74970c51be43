package mmu_test

import (
	"testing"

	"github.com/rvsim/riscv-sim/csr"
	"github.com/rvsim/riscv-sim/mmu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePhys struct {
	data map[uint64]byte
}

func newFakePhys() *fakePhys { return &fakePhys{data: make(map[uint64]byte)} }

func (f *fakePhys) ReadPhysByte(addr uint64) (byte, error) {
	return f.data[addr], nil
}

func (f *fakePhys) writePTE(addr uint64, pte uint64, size int) {
	for i := 0; i < size; i++ {
		f.data[addr+uint64(i)] = byte(pte >> (8 * i))
	}
}

func TestBareModeIdentity(t *testing.T) {
	tr := mmu.New()
	pa, exc, err := tr.Translate(0x8000_1000, mmu.AccessRead, csr.PrivSupervisor, newFakePhys())
	require.NoError(t, err)
	require.Nil(t, exc)
	assert.Equal(t, uint64(0x8000_1000), pa)
}

func TestMachineModeBypassesTranslation(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(8)<<60|0x1, 64) // Sv39 enabled, but priv is Machine
	pa, exc, err := tr.Translate(0x1234, mmu.AccessRead, csr.PrivMachine, newFakePhys())
	require.NoError(t, err)
	require.Nil(t, exc)
	assert.Equal(t, uint64(0x1234), pa)
}

func TestSv39InvalidLeafFaults(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(8)<<60|0x2, 64) // Sv39, root PPN = 2
	phys := newFakePhys()

	vaddr := uint64(0x1000) // vpn2=0, vpn1=0, vpn0=1
	// Leaf at level 2, V=0 -> page fault.
	phys.writePTE(2*4096+0*8, 0, 8)

	_, exc, err := tr.Translate(vaddr, mmu.AccessRead, csr.PrivSupervisor, phys)
	require.NoError(t, err)
	require.NotNil(t, exc)
	assert.Equal(t, csr.CauseLoadPageFault, exc.Cause)
	assert.Equal(t, vaddr, exc.Addr)
}

func TestSv39WalkToValidLeaf(t *testing.T) {
	tr := mmu.New()
	rootPPN := uint64(3)
	tr.DeriveFromSATP(uint64(8)<<60|rootPPN, 64)
	phys := newFakePhys()

	vaddr := uint64(0x1000) // vpn2=0, vpn1=0, vpn0=1
	leafPPN := uint64(0x55)

	// Level-2 PTE points to level-1 table at PPN 10 (non-leaf: R=0,X=0,V=1).
	l1PPN := uint64(10)
	phys.writePTE(rootPPN*4096+0*8, (l1PPN<<10)|1, 8)
	// Level-1 PTE points to level-0 table at PPN 11.
	l0PPN := uint64(11)
	phys.writePTE(l1PPN*4096+0*8, (l0PPN<<10)|1, 8)
	// Level-0 leaf PTE: V=1,R=1,W=1,X=0,A=1.
	leaf := (leafPPN << 10) | 1 | (1 << 1) | (1 << 2) | (1 << 6)
	phys.writePTE(l0PPN*4096+1*8, leaf, 8)

	pa, exc, err := tr.Translate(vaddr, mmu.AccessRead, csr.PrivSupervisor, phys)
	require.NoError(t, err)
	require.Nil(t, exc)
	assert.Equal(t, (leafPPN<<12)|(vaddr&0xFFF), pa)
}

func TestSv39AccessBitMustBeSet(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(8)<<60|0x5, 64)
	phys := newFakePhys()
	vaddr := uint64(0x2000)                         // vpn2=0,vpn1=0,vpn0=2
	phys.writePTE(5*4096+0*8, (uint64(6)<<10)|1, 8) // level 2 -> level-1 table at PPN 6
	phys.writePTE(6*4096+0*8, (uint64(7)<<10)|1, 8) // level 1 -> level-0 table at PPN 7
	leaf := (uint64(1) << 10) | 1 | (1 << 1)        // V=1,R=1, A=0
	phys.writePTE(7*4096+2*8, leaf, 8)

	_, exc, err := tr.Translate(vaddr, mmu.AccessRead, csr.PrivSupervisor, phys)
	require.NoError(t, err)
	require.NotNil(t, exc)
	assert.Equal(t, csr.CauseLoadPageFault, exc.Cause)
}

func TestSv48IsAnImplementationFault(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(9)<<60, 64)
	_, _, err := tr.Translate(0x1000, mmu.AccessRead, csr.PrivSupervisor, newFakePhys())
	require.Error(t, err)
	var implErr *mmu.ImplementationFault
	require.ErrorAs(t, err, &implErr)
}

func TestDeriveFromSATPRV32(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(1)<<31|0x1234, 32)
	assert.Equal(t, mmu.ModeSv32, tr.Mode)
	assert.Equal(t, uint64(0x1234), tr.RootPPN)
}

func TestWritePermissionRequiresDirtyBit(t *testing.T) {
	tr := mmu.New()
	tr.DeriveFromSATP(uint64(8)<<60|0x7, 64)
	phys := newFakePhys()
	vaddr := uint64(0x3000)                                        // vpn2=0,vpn1=0,vpn0=3
	phys.writePTE(7*4096+0*8, (uint64(8)<<10)|1, 8)                // level 2 -> level-1 table at PPN 8
	phys.writePTE(8*4096+0*8, (uint64(9)<<10)|1, 8)                // level 1 -> level-0 table at PPN 9
	leaf := (uint64(1) << 10) | 1 | (1 << 1) | (1 << 2) | (1 << 6) // V,R,W,A set, D=0
	phys.writePTE(9*4096+3*8, leaf, 8)

	_, exc, err := tr.Translate(vaddr, mmu.AccessWrite, csr.PrivSupervisor, phys)
	require.NoError(t, err)
	require.NotNil(t, exc)
	assert.Equal(t, csr.CauseStorePageFault, exc.Cause)
}
