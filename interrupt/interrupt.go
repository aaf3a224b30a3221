// Package interrupt implements the Game Boy's interrupt flag and
// interrupt enable registers, shared by every device that can request
// service from the CPU.
package interrupt

import "github.com/thelolagemann/gomeboy/pkg/wire"

// Source identifies one of the five interrupt lines, in dispatch
// priority order (lowest bit first).
type Source uint8

const (
	VBlank Source = 1 << iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Vector returns the fixed dispatch address for a single interrupt
// source bit.
func (s Source) Vector() uint16 {
	switch s {
	case VBlank:
		return 0x40
	case LCDStat:
		return 0x48
	case Timer:
		return 0x50
	case Serial:
		return 0x58
	case Joypad:
		return 0x60
	}
	return 0
}

// Controller holds the IF (0xFF0F) and IE (0xFFFF) registers. Both are
// confined to their low 5 bits when AND-ed for dispatch, per the
// hardware and the invariant in spec §8; IF reads back with its three
// unused bits set, and IE reads back exactly as written.
type Controller struct {
	flag   uint8
	enable uint8
}

// Request asserts one or more interrupt sources.
func (c *Controller) Request(s Source) {
	c.flag |= uint8(s)
}

// Clear deasserts one or more interrupt sources.
func (c *Controller) Clear(s Source) {
	c.flag &^= uint8(s)
}

// Pending returns the bitset of sources that are both requested and
// enabled, masked to the low 5 bits used for dispatch.
func (c *Controller) Pending() uint8 {
	return c.flag & c.enable & 0x1F
}

// ReadFlag returns the IF register. Unused bits read back as set.
func (c *Controller) ReadFlag() uint8 {
	return c.flag | 0xE0
}

// WriteFlag sets the IF register from a CPU or memory-map write.
func (c *Controller) WriteFlag(v uint8) {
	c.flag = v & 0x1F
}

// ReadEnable returns the IE register.
func (c *Controller) ReadEnable() uint8 {
	return c.enable
}

// WriteEnable sets the IE register.
func (c *Controller) WriteEnable(v uint8) {
	c.enable = v
}

// Reset returns the controller to its post-power-up state.
func (c *Controller) Reset() {
	c.flag = 0xE1
	c.enable = 0
}

// SaveState writes IF and IE, in that order.
func (c *Controller) SaveState(w *wire.Writer) {
	w.Uint8(c.flag)
	w.Uint8(c.enable)
}

// LoadState restores IF and IE.
func (c *Controller) LoadState(r *wire.Reader) {
	c.flag = r.Uint8()
	c.enable = r.Uint8()
}
