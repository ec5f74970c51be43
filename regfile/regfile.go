// Package regfile implements the 32 general-purpose integer registers of
// the RISC-V integer register file, with ABI alias lookup.
package regfile

// Width is the architectural register width in use.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// Mask64 returns the XLEN-width mask for this width (all ones for 64).
func (w Width) Mask64() uint64 {
	if w == Width32 {
		return 0xFFFF_FFFF
	}
	return 0xFFFF_FFFF_FFFF_FFFF
}

// SignExtend sign-extends the low bits bits of v (interpreted as an
// unsigned value of that width) to a full int64.
func SignExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// Regfile holds the 32 integer registers x0..x31, stored as signed
// 64-bit values regardless of the active XLEN; callers narrow/sign-extend
// at the XLEN boundary (see regfile.SignExtend and core's RV32 handling).
type Regfile struct {
	x [32]int64
}

// New returns a zeroed register file.
func New() *Regfile {
	return &Regfile{}
}

// Reset clears all registers to zero.
func (r *Regfile) Reset() {
	r.x = [32]int64{}
}

// Read returns the value of register index (0..31). x0 always reads 0.
func (r *Regfile) Read(index int) int64 {
	if index == 0 {
		return 0
	}
	return r.x[index]
}

// Write sets register index to value. Writes to x0 are silently
// dropped here in addition to every executor's own "if rd > 0" guard,
// so the invariant holds even if a caller forgets to guard.
func (r *Regfile) Write(index int, value int64) {
	if index == 0 {
		return
	}
	r.x[index] = value
}

// abiNames maps ABI register names to their x-register index.
var abiNames = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8,
	"s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// ABINames returns the canonical ABI name ordering, x0 through x31, used
// by diagnostics that dump every register in a stable order.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// ReadABI reads a register by its ABI alias (e.g. "ra", "sp", "a0").
// The second return value is false if name is not a known alias.
func (r *Regfile) ReadABI(name string) (int64, bool) {
	idx, ok := abiNames[name]
	if !ok {
		return 0, false
	}
	return r.Read(idx), true
}

// Index looks up the register index for an ABI alias.
func Index(name string) (int, bool) {
	idx, ok := abiNames[name]
	return idx, ok
}
