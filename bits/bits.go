// Package bits slices bit fields out of a 32-bit instruction word.
package bits

import "fmt"

// Extract returns the unsigned integer held in word[high:low], inclusive,
// using little-endian bit indexing (bit 0 is the least significant bit).
//
// Extract panics if the range is inverted or out of bounds: a bad bit
// range is a programming defect in the caller (typically the decoder or
// immediate generator), not an architectural condition a guest program
// can trigger.
func Extract(word uint32, low, high uint) uint32 {
	if low > high || high > 31 {
		panic(fmt.Sprintf("bits: invalid range [%d:%d]", low, high))
	}
	width := high - low + 1
	mask := uint32((uint64(1) << width) - 1)
	return (word >> low) & mask
}

// ExtractAt extracts word[high:low] and left-shifts it to bit position pos.
// Used to reassemble scattered immediate-field bits into their target
// position in the final sign-extended immediate.
func ExtractAt(word uint32, low, high, pos uint) uint32 {
	return Extract(word, low, high) << pos
}
