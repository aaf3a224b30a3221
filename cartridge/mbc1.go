package cartridge

import "github.com/thelolagemann/gomeboy/pkg/wire"

// mbc1 implements the MBC1 family: a 5-bit low ROM-bank register, a
// 2-bit secondary register shared between the high ROM bank bits and
// the RAM bank depending on a mode latch, per spec §4.2.
type mbc1 struct {
	rom *ROM
	ram []byte

	bank1      uint8 // low 5 bits of the ROM bank
	bank2      uint8 // high 2 bits: either ROM bank bits [5:7) or RAM bank
	ramMode    bool  // mode latch: false = ROM banking, true = RAM banking
	ramEnabled bool

	// partialRAM marks carts with only 2 KiB of on-cartridge RAM,
	// which ignore addresses >= 0x800 within the RAM window.
	partialRAM bool
}

func newMBC1(rom *ROM, ram []byte) *mbc1 {
	return &mbc1{
		rom:        rom,
		ram:        ram,
		bank1:      1,
		partialRAM: len(ram) > 0 && len(ram) <= 0x800,
	}
}

func (m *mbc1) romBank() int {
	bank := int(m.bank1)
	if !m.ramMode {
		bank |= int(m.bank2) << 5
	}
	if bank%0x20 == 0 {
		bank++
	}
	return bank % m.rom.BankCount()
}

func (m *mbc1) ramBank() int {
	if m.ramMode {
		return int(m.bank2) & 0x03
	}
	return 0
}

func (m *mbc1) ReadROM(addr uint16) uint8 {
	if addr < bankSize {
		bank := 0
		if m.ramMode {
			bank = (int(m.bank2) << 5) % m.rom.BankCount()
		}
		return m.rom.Bank(bank)[addr]
	}
	return m.rom.Bank(m.romBank())[addr-bankSize]
}

func (m *mbc1) WriteROM(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x4000:
		bits := data & 0x1F
		m.bank1 = bits
	case addr < 0x6000:
		m.bank2 = data & 0x03
	default:
		m.ramMode = data&0x01 != 0
	}
}

func (m *mbc1) ramOffset(addr uint16) int {
	off := int(addr) + m.ramBank()*0x2000
	if m.partialRAM && off >= 0x800 {
		return -1
	}
	return off
}

func (m *mbc1) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled || len(m.ram) == 0 {
		return 0xFF
	}
	off := m.ramOffset(addr)
	if off < 0 || off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc1) WriteRAM(addr uint16, data uint8) {
	if !m.ramEnabled || len(m.ram) == 0 {
		return
	}
	off := m.ramOffset(addr)
	if off < 0 || off >= len(m.ram) {
		return
	}
	m.ram[off] = data
}

func (m *mbc1) Clock(cycles int) {}

func (m *mbc1) CurrentHighBank() int { return m.romBank() }

func (m *mbc1) SaveState(w *wire.Writer) {
	w.Uint8(m.bank1)
	w.Uint8(m.bank2)
	w.Bool(m.ramMode)
	w.Bool(m.ramEnabled)
}

func (m *mbc1) LoadState(r *wire.Reader) {
	m.bank1 = r.Uint8()
	m.bank2 = r.Uint8()
	m.ramMode = r.Bool()
	m.ramEnabled = r.Bool()
}
