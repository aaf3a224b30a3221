package cartridge

import "github.com/thelolagemann/gomeboy/pkg/wire"

// Mapper is the contract every cartridge mapper family implements,
// per spec §4.2: bank-switched ROM/RAM windows, a cycle-accept hook for
// families with time-driven state (MBC3's RTC, MBC5's rumble average),
// and the currently-mapped high ROM bank for diagnostics.
type Mapper interface {
	ReadROM(addr uint16) uint8
	WriteROM(addr uint16, data uint8)
	ReadRAM(addr uint16) uint8
	WriteRAM(addr uint16, data uint8)
	Clock(cycles int)
	CurrentHighBank() int

	// SaveState/LoadState cover only the bank-select and side-device
	// latches (RTC, rumble averaging); external RAM contents are the
	// front end's responsibility per spec §5 and are not duplicated
	// into the save state.
	SaveState(w *wire.Writer)
	LoadState(r *wire.Reader)
}

// RumbleObserver receives rumble-motor level transitions (0..3), only
// invoked on change, per spec §6.
type RumbleObserver func(level uint8)

// plainROM is the no-mapper cartridge: exactly two banks, writes are
// no-ops, per spec §4.2.
type plainROM struct {
	rom *ROM
}

func newPlainROM(rom *ROM) *plainROM {
	return &plainROM{rom: rom}
}

func (m *plainROM) ReadROM(addr uint16) uint8 {
	if addr < bankSize {
		return m.rom.Bank(0)[addr]
	}
	return m.rom.Bank(1)[addr-bankSize]
}

func (m *plainROM) WriteROM(addr uint16, data uint8) {}

func (m *plainROM) ReadRAM(addr uint16) uint8 { return 0xFF }

func (m *plainROM) WriteRAM(addr uint16, data uint8) {}

func (m *plainROM) Clock(cycles int) {}

func (m *plainROM) CurrentHighBank() int { return 1 }

func (m *plainROM) SaveState(w *wire.Writer) {}

func (m *plainROM) LoadState(r *wire.Reader) {}
