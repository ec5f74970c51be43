package memory_test

import (
	"bytes"
	"testing"

	"github.com/rvsim/riscv-sim/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ v uint32 }

func (f fixedClock) ElapsedMicros() uint32 { return f.v }

func newTestBus() *memory.Bus {
	return memory.NewBus(memory.Options{RAMBase: memory.DefaultRAMBase, RAMSize: 0x10000, Clock: fixedClock{v: 0x01020304}})
}

func TestStoreLoadRoundTrip(t *testing.T) {
	b := newTestBus()
	addr := memory.DefaultRAMBase + 0x100
	require.NoError(t, b.StoreN(addr, 0xDEADBEEF, 4))
	v, err := b.LoadN(addr, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEF), v)
}

func TestLoadImageExceedsCapacity(t *testing.T) {
	b := memory.NewBus(memory.Options{RAMSize: 4})
	err := b.LoadImage(make([]byte, 5))
	require.Error(t, err)
}

func TestSerialStoreWritesCharacter(t *testing.T) {
	var out bytes.Buffer
	b := memory.NewBus(memory.Options{RAMSize: 0x10, SerialOut: &out})
	require.NoError(t, b.WriteByte(memory.PeriphBase+0x3F8, 'A'))
	assert.Equal(t, "A", out.String())
}

func TestSerialLoadIsFatal(t *testing.T) {
	b := newTestBus()
	_, err := b.ReadByte(memory.PeriphBase + 0x3F8)
	require.Error(t, err)
	var fatal *memory.FatalAccessError
	require.ErrorAs(t, err, &fatal)
}

func TestOutOfRangeAccessIsFatal(t *testing.T) {
	b := memory.NewBus(memory.Options{RAMSize: 0x10})
	_, err := b.ReadByte(0xFFFF_FFFF)
	require.Error(t, err)
}

func TestRTCLatchesAndAdvances(t *testing.T) {
	b := newTestBus()
	addr := uint64(memory.PeriphBase + 0x48)
	b0, err := b.ReadByte(addr)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), b0)
	b1, _ := b.ReadByte(addr)
	assert.Equal(t, byte(0x03), b1)
	b2, _ := b.ReadByte(addr)
	assert.Equal(t, byte(0x02), b2)
	b3, _ := b.ReadByte(addr)
	assert.Equal(t, byte(0x01), b3)
	// Fifth read re-latches from the (fixed) clock.
	b4, _ := b.ReadByte(addr)
	assert.Equal(t, byte(0x04), b4)
}

func TestKeyboardWindowReflectsPolledEvent(t *testing.T) {
	events := make(chan memory.KeyEvent, 1)
	b := memory.NewBus(memory.Options{RAMSize: 0x10, KeyEvents: events})
	events <- memory.KeyEvent{Press: true, Code: 0x1E}
	b.PollKeyboard()

	press, err := b.ReadByte(memory.PeriphBase + 0x60)
	require.NoError(t, err)
	assert.Equal(t, byte(1), press)

	code, err := b.ReadByte(memory.PeriphBase + 0x61)
	require.NoError(t, err)
	assert.Equal(t, byte(0x1E), code)
}

func TestFramebufferSyncPushesFrame(t *testing.T) {
	frames := make(chan memory.Frame, 1)
	b := memory.NewBus(memory.Options{RAMSize: 0x10, Frames: frames})
	require.NoError(t, b.WriteByte(memory.FramebufferBase, 0x7F))
	require.NoError(t, b.WriteByte(memory.PeriphBase+0x104, 1))

	select {
	case f := <-frames:
		assert.Equal(t, byte(0x7F), f.Pixels[0])
	default:
		t.Fatal("expected a frame to be pushed")
	}
}

func TestDeviceWritesAreFatalWhereReadOnly(t *testing.T) {
	b := newTestBus()
	err := b.WriteByte(memory.PeriphBase+0x48, 1)
	require.Error(t, err)
}
