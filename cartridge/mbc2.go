package cartridge

import "github.com/thelolagemann/gomeboy/pkg/wire"

// mbc2 has a fixed 512 x 4-bit on-cartridge RAM and a 4-bit ROM bank
// register. Writes below 0x4000 distinguish RAM-enable from bank
// select by address bit 8, per spec §4.2.
type mbc2 struct {
	rom *ROM
	ram [512]uint8 // only the low nibble of each byte is meaningful

	romBank    uint8
	ramEnabled bool
}

func newMBC2(rom *ROM) *mbc2 {
	return &mbc2{rom: rom, romBank: 1}
}

func (m *mbc2) ReadROM(addr uint16) uint8 {
	if addr < bankSize {
		return m.rom.Bank(0)[addr]
	}
	return m.rom.Bank(int(m.romBank))[addr-bankSize]
}

func (m *mbc2) WriteROM(addr uint16, data uint8) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x100 == 0 {
		m.ramEnabled = data&0x0F == 0x0A
		return
	}
	bank := data & 0x0F
	if bank == 0 {
		bank = 1
	}
	m.romBank = bank
}

func (m *mbc2) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	return 0xF0 | (m.ram[addr%512] & 0x0F)
}

func (m *mbc2) WriteRAM(addr uint16, data uint8) {
	if !m.ramEnabled {
		return
	}
	m.ram[addr%512] = data & 0x0F
}

func (m *mbc2) Clock(cycles int) {}

func (m *mbc2) CurrentHighBank() int { return int(m.romBank) }

// SaveState includes the on-cartridge RAM contents: unlike the other
// families' external RAM, MBC2's 512x4-bit RAM is never obtained
// through the front end, so the mapper is its only owner.
func (m *mbc2) SaveState(w *wire.Writer) {
	w.Uint8(m.romBank)
	w.Bool(m.ramEnabled)
	w.Bytes(m.ram[:])
}

func (m *mbc2) LoadState(r *wire.Reader) {
	m.romBank = r.Uint8()
	m.ramEnabled = r.Bool()
	r.Bytes(m.ram[:])
}
