package regfile_test

import (
	"testing"

	"github.com/rvsim/riscv-sim/regfile"
	"github.com/stretchr/testify/assert"
)

func TestX0AlwaysReadsZero(t *testing.T) {
	r := regfile.New()
	r.Write(0, 12345)
	assert.Equal(t, int64(0), r.Read(0))
}

func TestWriteAndRead(t *testing.T) {
	r := regfile.New()
	r.Write(5, -1)
	assert.Equal(t, int64(-1), r.Read(5))
}

func TestReadABI(t *testing.T) {
	r := regfile.New()
	r.Write(10, 42)
	v, ok := r.ReadABI("a0")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = r.ReadABI("not-a-register")
	assert.False(t, ok)
}

func TestAliasesShareIndex(t *testing.T) {
	idxS0, _ := regfile.Index("s0")
	idxFP, _ := regfile.Index("fp")
	assert.Equal(t, idxS0, idxFP)
}

func TestResetClearsRegisters(t *testing.T) {
	r := regfile.New()
	r.Write(3, 7)
	r.Reset()
	assert.Equal(t, int64(0), r.Read(3))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-1), regfile.SignExtend(0xFFFF_FFFF, 32))
	assert.Equal(t, int64(1), regfile.SignExtend(1, 32))
}
