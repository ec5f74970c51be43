package bits_test

import (
	"testing"

	"github.com/rvsim/riscv-sim/bits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	word := uint32(0b1111_0000_1111_0110_1111_0000_1111_0110)

	assert.Equal(t, uint32(0), bits.Extract(word, 0, 0))
	assert.Equal(t, uint32(1), bits.Extract(word, 1, 1))
	assert.Equal(t, uint32(15), bits.Extract(word, 4, 7))
	assert.Equal(t, uint32(6), bits.Extract(word, 0, 3))
	assert.Equal(t, uint32(15), bits.Extract(word, 28, 31))
	assert.Equal(t, word, bits.Extract(word, 0, 31))
}

func TestExtractAt(t *testing.T) {
	word := uint32(0b101 << 20)
	assert.Equal(t, uint32(0b101)<<3, bits.ExtractAt(word, 20, 22, 3))
}

func TestExtractPanicsOnInvertedRange(t *testing.T) {
	require.Panics(t, func() {
		bits.Extract(0, 7, 4)
	})
}

func TestExtractPanicsOnOutOfBoundsRange(t *testing.T) {
	require.Panics(t, func() {
		bits.Extract(0, 0, 32)
	})
}
