package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gomeboy/interrupt"
)

// fakeBus is a flat 64KB address space with no attached peripherals,
// enough to drive the instruction tables in isolation.
type fakeBus struct {
	mem [0x10000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8     { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, v uint8) { b.mem[addr] = v }

func newTestCPU() (*CPU, *fakeBus, *interrupt.Controller) {
	bus := &fakeBus{}
	irq := &interrupt.Controller{}
	c := New(bus, irq)
	return c, bus, irq
}

func load(bus *fakeBus, addr uint16, bytes ...uint8) {
	for i, b := range bytes {
		bus.mem[int(addr)+i] = b
	}
}

func TestNOP(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	load(bus, 0x0200, 0x00)
	c.Step()
	require.EqualValues(t, 0x0201, c.PC)
}

func TestLoadImmediate16(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	load(bus, 0x0200, 0x01, 0x34, 0x12) // LD BC,0x1234
	c.Step()
	require.EqualValues(t, 0x1234, c.BC.Uint16())
}

func TestAddHalfCarryAndCarry(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.A = 0x0F
	c.B = 0x01
	load(bus, 0x0200, 0x80) // ADD A,B
	c.Step()
	require.EqualValues(t, 0x10, c.A)
	require.True(t, c.flagSet(FlagHalfCarry))
	require.False(t, c.flagSet(FlagCarry))
	require.False(t, c.flagSet(FlagZero))
}

func TestIncZeroFlag(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.B = 0xFF
	load(bus, 0x0200, 0x04) // INC B
	c.Step()
	require.EqualValues(t, 0x00, c.B)
	require.True(t, c.flagSet(FlagZero))
	require.True(t, c.flagSet(FlagHalfCarry))
}

// TestDAAAfterBCDAdd exercises the standard worked example: 0x45 + 0x38
// in BCD should read as 45 + 38 = 83, i.e. 0x83 after correction.
func TestDAAAfterBCDAdd(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.A = 0x45
	c.B = 0x38
	load(bus, 0x0200, 0x80, 0x27) // ADD A,B ; DAA
	c.Step()
	c.Step()
	require.EqualValues(t, 0x83, c.A)
	require.False(t, c.flagSet(FlagCarry))
}

func TestDAAAfterBCDSubtractWithBorrow(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.A = 0x00
	c.B = 0x01
	load(bus, 0x0200, 0x90, 0x27) // SUB B ; DAA  -> 0x00-0x01 BCD = 99
	c.Step()
	c.Step()
	require.EqualValues(t, 0x99, c.A)
	require.True(t, c.flagSet(FlagCarry))
}

func TestConditionalJumpNotTaken(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.setFlag(FlagZero, true)
	load(bus, 0x0200, 0xC2, 0x00, 0x30) // JP NZ,0x3000
	c.Step()
	require.EqualValues(t, 0x0203, c.PC)
}

func TestPushPop(t *testing.T) {
	c, _, _ := newTestCPU()
	c.SP = 0xFFFE
	c.BC.SetUint16(0xBEEF)
	c.pushWord(c.BC.Uint16())
	c.DE.SetUint16(c.popWord())
	require.EqualValues(t, 0xBEEF, c.DE.Uint16())
}

func TestCBSetThenBit(t *testing.T) {
	c, bus, _ := newTestCPU()
	c.PC = 0x0200
	c.B = 0x00
	load(bus, 0x0200, 0xCB, 0xC0) // SET 0,B
	c.Step()
	require.EqualValues(t, 0x01, c.B)

	c.PC = 0x0202
	load(bus, 0x0202, 0xCB, 0x40) // BIT 0,B
	c.Step()
	require.False(t, c.flagSet(FlagZero))
}

func TestInterruptDispatchPriorityOrder(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.PC = 0x0200
	c.SP = 0xFFFE
	c.IME = true
	irq.WriteEnable(0xFF)
	irq.Request(interrupt.Timer)
	irq.Request(interrupt.VBlank)
	load(bus, 0x0200, 0x00) // NOP, interrupt dispatches after
	c.Step()
	require.EqualValues(t, interrupt.VBlank.Vector(), c.PC)
	require.False(t, c.IME)
}

func TestEITakesEffectAfterFollowingInstruction(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.PC = 0x0200
	c.SP = 0xFFFE
	c.IME = false
	irq.WriteEnable(0xFF)
	irq.Request(interrupt.VBlank)
	load(bus, 0x0200, 0xFB, 0x00, 0x00) // EI ; NOP
	c.Step()                           // EI: IME not yet true
	require.False(t, c.IME)
	c.Step() // NOP executes with IME now true, then dispatches
	require.EqualValues(t, interrupt.VBlank.Vector(), c.PC)
}

func TestHaltWakesOnPendingInterruptEvenWithIMEOff(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.PC = 0x0200
	c.IME = false
	load(bus, 0x0200, 0x76) // HALT
	c.Step()
	require.Equal(t, modeHaltDI, c.mode)

	irq.WriteEnable(0xFF)
	irq.Request(interrupt.Timer)
	c.Step()
	require.Equal(t, modeNormal, c.mode)
}
