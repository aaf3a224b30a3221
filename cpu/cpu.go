// Package cpu implements the Sharp LR35902 CPU core: its register
// file, the primary and CB-prefixed instruction tables, interrupt
// dispatch, and the HALT/STOP/double-speed state machine.
package cpu

import (
	"encoding/binary"

	"github.com/thelolagemann/gomeboy/interrupt"
	"github.com/thelolagemann/gomeboy/pkg/wire"
)

// ClockSpeed is the CPU's single-speed clock rate in Hz.
const ClockSpeed = 4194304

// Bus is the full 16-bit address space the CPU executes against. It
// does not advance any other device: per the machine's scheduler, the
// CPU runs a whole instruction and reports its cost, and only then are
// the LCD, APU, cartridge mapper and timers ticked by that amount.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeHaltBug
	modeHaltDI
	modeStop
	modeEnableIME
)

// CPU represents the Sharp LR35902 core.
type CPU struct {
	PC uint16
	SP uint16
	Registers

	mem Bus
	irq *interrupt.Controller

	IME bool

	doubleSpeed bool
	speedSwitch bool // KEY1 armed bit

	mode mode

	cyclesThisStep int
}

// New creates a CPU wired to the given bus and interrupt controller.
// Registers start at the documented CGB post-boot-ROM values so a
// machine run without a boot ROM image still behaves plausibly, per
// spec's fake power-up sequence requirement.
func New(mem Bus, irq *interrupt.Controller) *CPU {
	c := &CPU{mem: mem, irq: irq}
	c.wirePairs()
	c.Reset()
	return c
}

// Reset restores the fake power-up register state spec's §4.6 names
// for a session run without a boot ROM image: A=0x11, F=0xB0,
// BC=0x0013, DE=0x00D8, HL=0x014D.
func (c *CPU) Reset() {
	c.A, c.F = 0x11, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.mode = modeNormal
	c.doubleSpeed = false
}

// DoubleSpeed reports whether the CPU is currently running at double
// speed (CGB KEY1 switch engaged).
func (c *CPU) DoubleSpeed() bool { return c.doubleSpeed }

// ArmSpeedSwitch sets or clears the KEY1 "prepare speed switch"
// armed bit; STOP executes the actual switch.
func (c *CPU) ArmSpeedSwitch(armed bool) { c.speedSwitch = armed }

// SpeedSwitchArmed reports the KEY1 armed bit for register readback.
func (c *CPU) SpeedSwitchArmed() bool { return c.speedSwitch }

// Stopped reports whether the CPU is in STOP mode, during which the
// machine's scheduler additionally pauses the LCD and APU.
func (c *CPU) Stopped() bool { return c.mode == modeStop }

// Step executes one instruction (or one HALT/STOP tick) and returns
// the number of T-cycles consumed.
func (c *CPU) Step() int {
	c.cyclesThisStep = 0

	switch c.mode {
	case modeNormal:
		c.execute(c.fetch())
		if c.IME && c.hasPending() {
			c.dispatchInterrupt()
		}
	case modeHalt, modeStop:
		c.tick()
		if c.hasPending() {
			c.mode = modeNormal
			if c.IME {
				c.dispatchInterrupt()
			}
		}
	case modeHaltDI:
		c.tick()
		if c.hasPending() {
			c.mode = modeNormal
		}
	case modeHaltBug:
		// HALT with IME disabled and a pending interrupt: the next
		// opcode fetch does not advance PC, duplicating the byte.
		opcode := c.fetch()
		c.PC--
		c.execute(opcode)
		c.mode = modeNormal
		if c.IME && c.hasPending() {
			c.dispatchInterrupt()
		}
	case modeEnableIME:
		c.IME = true
		c.mode = modeNormal
		c.execute(c.fetch())
		if c.IME && c.hasPending() {
			c.dispatchInterrupt()
		}
	}

	return c.cyclesThisStep
}

func (c *CPU) hasPending() bool {
	return c.irq.Pending() != 0
}

func (c *CPU) dispatchInterrupt() {
	pending := c.irq.Pending()
	var source interrupt.Source
	for _, s := range []interrupt.Source{interrupt.VBlank, interrupt.LCDStat, interrupt.Timer, interrupt.Serial, interrupt.Joypad} {
		if pending&uint8(s) != 0 {
			source = s
			break
		}
	}

	c.IME = false
	c.irq.Clear(source)

	// Dispatched at a fixed cost of four M-cycles (16 T-cycles): two
	// internal cycles plus the two-byte PC push. The source material
	// calls this exact figure invented ("I don't know how long an
	// interrupt takes") and it is carried here unchanged, per spec.
	c.internalTick()
	c.internalTick()
	c.pushPC()
	c.PC = source.Vector()
}

func (c *CPU) pushPC() {
	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
}

// fetch reads the opcode at PC, ticking one M-cycle.
func (c *CPU) fetch() uint8 {
	v := c.readByte(c.PC)
	c.PC++
	return v
}

func (c *CPU) readByte(addr uint16) uint8 {
	c.tick()
	return c.mem.Read(addr)
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.tick()
	c.mem.Write(addr, v)
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.readByte(addr)
	hi := c.readByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) writeWord(addr, v uint16) {
	c.writeByte(addr, uint8(v))
	c.writeByte(addr+1, uint8(v>>8))
}

// internalTick accounts for a cycle that performs no bus access (ALU
// operations on register pairs, push/pop spacer cycles, etc).
func (c *CPU) internalTick() {
	c.tick()
}

// tick accounts for one M-cycle (4 T-cycles) of CPU time. Other
// devices are not advanced here; the machine's scheduler ticks them
// by Step's returned total once the instruction has fully executed.
func (c *CPU) tick() {
	c.cyclesThisStep += 4
}

func (c *CPU) execute(opcode uint8) {
	var instr Instruction
	if opcode == 0xCB {
		instr = instructionSetCB[c.fetch()]
	} else {
		instr = instructionSet[opcode]
	}
	instr.Execute(c)
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return binary.LittleEndian.Uint16([]byte{lo, hi})
}

// SaveState writes every field needed to resume execution from the
// exact point Step last returned to: PC/SP, the eight 8-bit
// registers, IME, the HALT/STOP/speed-switch mode, and the
// double-speed and KEY1-armed latches.
func (c *CPU) SaveState(w *wire.Writer) {
	w.Uint16(c.PC)
	w.Uint16(c.SP)
	w.Uint8(c.A)
	w.Uint8(c.B)
	w.Uint8(c.C)
	w.Uint8(c.D)
	w.Uint8(c.E)
	w.Uint8(c.F)
	w.Uint8(c.H)
	w.Uint8(c.L)
	w.Bool(c.IME)
	w.Uint8(uint8(c.mode))
	w.Bool(c.doubleSpeed)
	w.Bool(c.speedSwitch)
}

// LoadState restores every field SaveState wrote.
func (c *CPU) LoadState(r *wire.Reader) {
	c.PC = r.Uint16()
	c.SP = r.Uint16()
	c.A = r.Uint8()
	c.B = r.Uint8()
	c.C = r.Uint8()
	c.D = r.Uint8()
	c.E = r.Uint8()
	c.F = r.Uint8() & 0xF0
	c.H = r.Uint8()
	c.L = r.Uint8()
	c.IME = r.Bool()
	c.mode = mode(r.Uint8())
	c.doubleSpeed = r.Bool()
	c.speedSwitch = r.Bool()
}
