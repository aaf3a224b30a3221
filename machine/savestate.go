package machine

import (
	"bytes"
	"fmt"

	"github.com/thelolagemann/gomeboy/pkg/wire"
)

// stateMagic identifies a save-state blob, per spec §6.
const stateMagic = "GBCSTATE\n"

// stateVersion is bumped whenever the field layout below changes
// incompatibly; LoadState rejects any other version outright rather
// than attempting a best-effort partial decode.
const stateVersion = 1

// SaveState serializes the whole machine into a single versioned,
// bounds-checked blob: a magic header, the format version, the
// current speed-switch latch, and then each subsystem's own state in
// the fixed order spec §6 names - mapper, memory, CPU, APU, LCD,
// joypad, timers - replacing the source's raw architecture-specific
// struct dump (spec §9).
func (m *Machine) SaveState() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(stateMagic)

	w := wire.NewWriter(&buf)
	w.Uint8(stateVersion)
	w.Bool(m.cpu.DoubleSpeed())

	m.cart.SaveState(w)
	m.bus.SaveState(w)
	m.cpu.SaveState(w)
	m.apu.SaveState(w)
	m.lcd.SaveState(w)
	m.pad.SaveState(w)
	m.tmr.SaveState(w)
	m.irq.SaveState(w)

	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("savestate: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a machine from a blob produced by SaveState. Per
// spec §6/§7, any read error or bounds-check failure re-initializes
// the whole machine state from a fake power-up sequence and surfaces
// a warning rather than leaving the machine partially restored.
func (m *Machine) LoadState(data []byte) error {
	if err := m.loadState(data); err != nil {
		m.log.Errorf("state load failed, reinitializing: %v", err)
		if reErr := m.loadCartridge(m.romData); reErr != nil {
			return fmt.Errorf("savestate: reinitialize after load failure: %w", reErr)
		}
		return err
	}
	return nil
}

func (m *Machine) loadState(data []byte) error {
	if len(data) < len(stateMagic) || string(data[:len(stateMagic)]) != stateMagic {
		return fmt.Errorf("savestate: bad magic")
	}

	r := wire.NewReader(bytes.NewReader(data[len(stateMagic):]))
	version := r.Uint8()
	if version != stateVersion {
		return fmt.Errorf("savestate: unsupported version %d", version)
	}
	doubleSpeed := r.Bool()

	if err := m.cart.LoadState(r); err != nil {
		return err
	}
	m.bus.LoadState(r)
	m.cpu.LoadState(r)
	m.apu.LoadState(r)
	m.lcd.LoadState(r)
	m.pad.LoadState(r)
	m.tmr.LoadState(r)
	m.irq.LoadState(r)

	if err := r.Err(); err != nil {
		return fmt.Errorf("savestate: decode: %w", err)
	}

	if doubleSpeed != m.cpu.DoubleSpeed() {
		return fmt.Errorf("savestate: speed-switch mismatch after decode")
	}
	if !m.stateInvariantsHold() {
		return fmt.Errorf("savestate: decoded state violates invariants")
	}
	return nil
}

// stateInvariantsHold checks two round-trip invariants after every
// load: the LY bound and the timer-accumulator bound. The LX bound and
// the CPU flag byte's low nibble are not checked here.
func (m *Machine) stateInvariantsHold() bool {
	if m.lcd.LY() >= 154 {
		return false
	}
	if m.tmr.Accumulator() >= m.tmr.Rate() && m.tmr.Rate() > 0 {
		return false
	}
	return true
}
