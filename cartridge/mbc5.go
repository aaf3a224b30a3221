package cartridge

import "github.com/thelolagemann/gomeboy/pkg/wire"

// Rumble cycle-budget constants, per spec §4.2: a running average is
// recomputed no more than once every rumbleUpdateCycles, and the motor
// is forced off once rumbleTimeoutCycles pass without any pulse.
const (
	rumbleUpdateCycles  = 60000
	rumbleTimeoutCycles = 80000
	rumbleFrames        = 3
)

// mbc5 implements the MBC5 family: a 9-bit ROM bank split across two
// write windows, four RAM banks, and an optional rumble motor whose
// bit-3 pulses are averaged into one of four levels, per spec §4.2.
type mbc5 struct {
	rom *ROM
	ram []byte

	romBank    uint16 // 9 bits
	ramBank    uint8  // 4 bits
	ramEnabled bool

	hasRumble bool
	observer  RumbleObserver

	pulseSum        int
	pulseCount      int
	cyclesSinceBeat int
	cyclesSincePulse int
	lastLevel       uint8
}

func newMBC5(rom *ROM, ram []byte, hasRumble bool) *mbc5 {
	return &mbc5{rom: rom, ram: ram, romBank: 1, hasRumble: hasRumble}
}

// SetRumbleObserver installs the callback invoked on rumble-level
// transitions. Only meaningful for rumble-capable cartridges.
func (m *mbc5) SetRumbleObserver(fn RumbleObserver) {
	m.observer = fn
}

func (m *mbc5) ReadROM(addr uint16) uint8 {
	if addr < bankSize {
		return m.rom.Bank(0)[addr]
	}
	bank := int(m.romBank) % m.rom.BankCount()
	return m.rom.Bank(bank)[addr-bankSize]
}

func (m *mbc5) WriteROM(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = (m.romBank &^ 0xFF) | uint16(data)
	case addr < 0x4000:
		m.romBank = (m.romBank & 0xFF) | uint16(data&0x01)<<8
	case addr < 0x6000:
		if m.hasRumble {
			m.ramBank = data & 0x07
			m.recordPulse(data&0x08 != 0)
		} else {
			m.ramBank = data & 0x0F
		}
	}
}

func (m *mbc5) recordPulse(pulse bool) {
	m.pulseCount++
	m.cyclesSincePulse = 0
	if pulse {
		m.pulseSum++
	}
}

func (m *mbc5) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled || len(m.ram) == 0 {
		return 0xFF
	}
	off := int(addr) + int(m.ramBank)*0x2000
	if off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc5) WriteRAM(addr uint16, data uint8) {
	if !m.ramEnabled || len(m.ram) == 0 {
		return
	}
	off := int(addr) + int(m.ramBank)*0x2000
	if off >= len(m.ram) {
		return
	}
	m.ram[off] = data
}

func (m *mbc5) Clock(cycles int) {
	if !m.hasRumble {
		return
	}
	m.cyclesSinceBeat += cycles
	m.cyclesSincePulse += cycles

	if m.cyclesSincePulse > rumbleTimeoutCycles {
		m.setLevel(0)
		m.pulseSum, m.pulseCount, m.cyclesSinceBeat = 0, 0, 0
		return
	}
	if m.cyclesSinceBeat >= rumbleUpdateCycles && m.pulseCount > 0 {
		avg := float64(m.pulseSum) / float64(m.pulseCount)
		level := uint8(avg*rumbleFrames + 0.5)
		if level > rumbleFrames {
			level = rumbleFrames
		}
		m.setLevel(level)
		m.pulseSum, m.pulseCount, m.cyclesSinceBeat = 0, 0, 0
	}
}

func (m *mbc5) setLevel(level uint8) {
	if level != m.lastLevel && m.observer != nil {
		m.observer(level)
	}
	m.lastLevel = level
}

func (m *mbc5) CurrentHighBank() int { return int(m.romBank) % m.rom.BankCount() }

func (m *mbc5) SaveState(w *wire.Writer) {
	w.Uint16(m.romBank)
	w.Uint8(m.ramBank)
	w.Bool(m.ramEnabled)
	w.Int(m.pulseSum)
	w.Int(m.pulseCount)
	w.Int(m.cyclesSinceBeat)
	w.Int(m.cyclesSincePulse)
	w.Uint8(m.lastLevel)
}

func (m *mbc5) LoadState(r *wire.Reader) {
	m.romBank = r.Uint16()
	m.ramBank = r.Uint8()
	m.ramEnabled = r.Bool()
	m.pulseSum = r.Int()
	m.pulseCount = r.Int()
	m.cyclesSinceBeat = r.Int()
	m.cyclesSincePulse = r.Int()
	m.lastLevel = r.Uint8()
}
