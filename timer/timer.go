// Package timer implements the Game Boy's divider register and
// programmable timer, per spec §4.4, grounded directly on
// original_source/src/timers.c.
package timer

import (
	"github.com/thelolagemann/gomeboy/interrupt"
	"github.com/thelolagemann/gomeboy/pkg/wire"
)

// rates maps the two TAC rate-select bits to their cycle periods.
var rates = [4]int{1024, 16, 64, 256}

// Controller holds the divider and timer registers and advances them
// from CPU cycle counts.
type Controller struct {
	divider    uint8
	dividerAcc int

	counter uint8
	modulo  uint8
	control uint8

	enabled bool
	rate    int
	acc     int

	irq *interrupt.Controller
}

// New returns a power-up-state Controller.
func New(irq *interrupt.Controller) *Controller {
	return &Controller{irq: irq, rate: rates[0]}
}

// Clock advances both the divider and the programmable timer by
// cycles T-cycles.
func (c *Controller) Clock(cycles int) {
	c.dividerAcc += cycles
	for c.dividerAcc >= 256 {
		c.dividerAcc -= 256
		c.divider++
	}

	if !c.enabled {
		return
	}
	c.acc += cycles
	for c.acc >= c.rate {
		c.acc -= c.rate
		c.counter++
		if c.counter == 0 {
			c.counter = c.modulo
			c.irq.Request(interrupt.Timer)
		}
	}
}

// ReadDivider returns the DIV register (0xFF04).
func (c *Controller) ReadDivider() uint8 { return c.divider }

// WriteDivider resets DIV to zero regardless of the written value,
// per spec §4.4.
func (c *Controller) WriteDivider(uint8) {
	c.divider = 0
	c.dividerAcc = 0
}

// ReadCounter returns TIMA (0xFF05).
func (c *Controller) ReadCounter() uint8 { return c.counter }

// WriteCounter sets TIMA.
func (c *Controller) WriteCounter(v uint8) { c.counter = v }

// ReadModulo returns TMA (0xFF06).
func (c *Controller) ReadModulo() uint8 { return c.modulo }

// WriteModulo sets TMA.
func (c *Controller) WriteModulo(v uint8) { c.modulo = v }

// ReadControl returns TAC (0xFF07); unused bits read as set.
func (c *Controller) ReadControl() uint8 { return c.control | 0xF8 }

// WriteControl sets TAC. Disabling the timer resets the cycle
// accumulator, an explicit design choice per spec §4.4 rather than
// letting partial cycles carry over into the next enable.
func (c *Controller) WriteControl(v uint8) {
	c.control = v & 0x07
	wasEnabled := c.enabled
	c.enabled = v&0x04 != 0
	c.rate = rates[v&0x03]
	if wasEnabled && !c.enabled {
		c.acc = 0
	}
}

// Accumulator returns the current sub-tick cycle accumulator, used by
// the invariant check in spec §8 ("timer cycle accumulator < current
// rate").
func (c *Controller) Accumulator() int { return c.acc }

// Rate returns the currently configured tick period in CPU cycles.
func (c *Controller) Rate() int { return c.rate }

// SaveState writes every register and accumulator needed to resume
// ticking exactly where it left off.
func (c *Controller) SaveState(w *wire.Writer) {
	w.Uint8(c.divider)
	w.Int(c.dividerAcc)
	w.Uint8(c.counter)
	w.Uint8(c.modulo)
	w.Uint8(c.control)
	w.Bool(c.enabled)
	w.Int(c.rate)
	w.Int(c.acc)
}

// LoadState restores every field SaveState wrote.
func (c *Controller) LoadState(r *wire.Reader) {
	c.divider = r.Uint8()
	c.dividerAcc = r.Int()
	c.counter = r.Uint8()
	c.modulo = r.Uint8()
	c.control = r.Uint8()
	c.enabled = r.Bool()
	c.rate = r.Int()
	c.acc = r.Int()
}
