// Package joypad implements the 8-button matrix and its two-row
// select register, per spec §4.5, grounded on
// original_source/src/joypad.c.
package joypad

import (
	"github.com/thelolagemann/gomeboy/interrupt"
	"github.com/thelolagemann/gomeboy/pkg/wire"
)

// Button bits returned by the front end's check_buttons callback:
// active-high, {right, left, up, down, A, B, select, start}.
type Button uint8

const (
	Right Button = 1 << iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

const (
	selectButtons    = 0x20
	selectDirections = 0x10
)

// State holds the current row-select latch. Button state itself is
// not stored here; it is sampled from the front end on every read, as
// the real hardware's matrix is.
type State struct {
	sel uint8

	buttons func() uint8
	irq     *interrupt.Controller
}

// New returns a joypad reading buttons via checkButtons (the front
// end's check_buttons callback) and requesting interrupts through irq.
func New(irq *interrupt.Controller, checkButtons func() uint8) *State {
	return &State{sel: 0x0F, buttons: checkButtons, irq: irq}
}

// Read returns the joypad register (0xFF00): the selected row's bits
// OR'd (active-low) into the low nibble, select bits in the high
// nibble. Per spec §9's Open Question, reading with both rows
// selected returns 0x0F in the low nibble.
func (s *State) Read() uint8 {
	mask := s.buttons()
	switch {
	case s.sel&selectButtons == 0 && s.sel&selectDirections == 0:
		return s.sel | 0x0F
	case s.sel&selectButtons == 0:
		return s.sel | (^(mask >> 4) & 0x0F)
	case s.sel&selectDirections == 0:
		return s.sel | (^mask & 0x0F)
	default:
		return s.sel | 0x0F
	}
}

// Write sets the row-select bits (0xFF00 bits 4-5).
func (s *State) Write(v uint8) {
	s.sel = (s.sel & 0xCF) | (v & 0x30)
}

// KeyPressed notifies the joypad of a button/direction press from the
// front end, raising a joypad interrupt if the corresponding row is
// currently selected.
func (s *State) KeyPressed(buttonPressed, directionPressed bool) {
	if (buttonPressed && s.sel&selectButtons == 0) || (directionPressed && s.sel&selectDirections == 0) {
		s.irq.Request(interrupt.Joypad)
	}
}

// SaveState writes the row-select latch. Button state itself is
// sampled live from the front end and is never part of the state.
func (s *State) SaveState(w *wire.Writer) {
	w.Uint8(s.sel)
}

// LoadState restores the row-select latch.
func (s *State) LoadState(r *wire.Reader) {
	s.sel = r.Uint8()
}
