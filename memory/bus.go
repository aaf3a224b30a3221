// Package memory implements the unified 16-bit address space: the
// single owning struct that dispatches every CPU read/write across
// the cartridge, VRAM/OAM, work RAM, I/O registers, HRAM and the
// interrupt enable register.
package memory

import (
	"github.com/thelolagemann/gomeboy/audio"
	"github.com/thelolagemann/gomeboy/cartridge"
	"github.com/thelolagemann/gomeboy/interrupt"
	"github.com/thelolagemann/gomeboy/joypad"
	"github.com/thelolagemann/gomeboy/pkg/wire"
	"github.com/thelolagemann/gomeboy/timer"
	"github.com/thelolagemann/gomeboy/video"
)

// SpeedSwitcher is the subset of the CPU the bus needs for the KEY1
// speed-switch register and STOP-driven pausing.
type SpeedSwitcher interface {
	DoubleSpeed() bool
	SpeedSwitchArmed() bool
	ArmSpeedSwitch(bool)
}

// MemAccessFunc is the optional trace hook invoked on every bus
// access, per spec §6's three registrable tracer callbacks.
type MemAccessFunc func(addr uint16, value uint8, write bool)

// Bus is the whole-machine address space. It holds direct references
// to every device rather than the scattered callback-registration
// scheme some emulators use, so that Read/Write is one dispatch
// switch instead of a chain of registered handlers.
type Bus struct {
	Cart     *cartridge.Cartridge
	LCD      *video.LCD
	APU      *audio.APU
	Timer    *timer.Controller
	Joypad   *joypad.State
	Irq      *interrupt.Controller
	CPU      SpeedSwitcher
	ColorMode bool

	wram *wram
	hram [0x7F]byte

	bootROM        []byte
	bootROMEnabled bool

	sb, sc uint8 // serial registers, stubbed: link-cable transfer is out of scope
	ff4c   uint8 // undocumented CGB boot-time mode register

	onAccess MemAccessFunc
}

// New builds a Bus wired to every device. bootROM may be nil, in
// which case the cartridge's entry point is executed directly, per
// spec's fake power-up sequence for the no-boot-ROM case.
func New(cart *cartridge.Cartridge, lcd *video.LCD, apu *audio.APU, tmr *timer.Controller, pad *joypad.State, irq *interrupt.Controller, colorMode bool, bootROM []byte) *Bus {
	b := &Bus{
		Cart:           cart,
		LCD:            lcd,
		APU:            apu,
		Timer:          tmr,
		Joypad:         pad,
		Irq:            irq,
		ColorMode:      colorMode,
		wram:           newWRAM(),
		bootROM:        bootROM,
		bootROMEnabled: len(bootROM) > 0,
	}
	lcd.SetSourceReader(b.Read)
	return b
}

// SetTracer installs or clears the mem_access trace callback.
func (b *Bus) SetTracer(fn MemAccessFunc) { b.onAccess = fn }

// BIOSMapped reports whether the boot ROM is still mapped, per spec
// §8's "is_bios_mapped() is true only until the first write of 0x11
// to register 0xFF50" invariant.
func (b *Bus) BIOSMapped() bool { return b.bootROMEnabled }

// SaveState writes work RAM, HRAM, the boot-ROM-mapped latch and the
// serial/CGB-mode stub registers. The cartridge, LCD, APU, joypad,
// timer and CPU devices serialize themselves separately, per spec
// §6's per-subsystem save-state ordering.
func (b *Bus) SaveState(w *wire.Writer) {
	b.wram.saveState(w)
	w.Bytes(b.hram[:])
	w.Bool(b.bootROMEnabled)
	w.Uint8(b.sb)
	w.Uint8(b.sc)
	w.Uint8(b.ff4c)
}

// LoadState restores the fields SaveState wrote.
func (b *Bus) LoadState(r *wire.Reader) {
	b.wram.loadState(r)
	r.Bytes(b.hram[:])
	b.bootROMEnabled = r.Bool()
	b.sb = r.Uint8()
	b.sc = r.Uint8()
	b.ff4c = r.Uint8()
}

func (b *Bus) Read(addr uint16) uint8 {
	v := b.read(addr)
	if b.onAccess != nil {
		b.onAccess(addr, v, false)
	}
	return v
}

func (b *Bus) read(addr uint16) uint8 {
	switch {
	case b.bootROMEnabled && addr < 0x100:
		return b.bootROM[addr]
	case b.bootROMEnabled && len(b.bootROM) > 0x100 && addr >= 0x200 && int(addr) < len(b.bootROM):
		return b.bootROM[addr]
	case addr < 0x8000:
		return b.Cart.Mapper.ReadROM(addr)
	case addr < 0xA000:
		return b.LCD.ReadVRAM(addr - 0x8000)
	case addr < 0xC000:
		return b.Cart.Mapper.ReadRAM(addr - 0xA000)
	case addr < 0xD000:
		return b.wram.readLow(addr)
	case addr < 0xE000:
		return b.wram.readHigh(addr)
	case addr < 0xF000:
		return b.wram.readLow(addr - 0x2000)
	case addr < 0xFE00:
		return b.wram.readHigh(addr - 0x2000)
	case addr < 0xFEA0:
		return b.LCD.ReadOAM(addr - 0xFE00)
	case addr < 0xFF00:
		return 0xFF // unusable region
	case addr == 0xFF00:
		return b.Joypad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return b.sc | 0x7C
	case addr == 0xFF04:
		return b.Timer.ReadDivider()
	case addr == 0xFF05:
		return b.Timer.ReadCounter()
	case addr == 0xFF06:
		return b.Timer.ReadModulo()
	case addr == 0xFF07:
		return b.Timer.ReadControl()
	case addr == 0xFF0F:
		return b.Irq.ReadFlag()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.APU.ReadReg(addr)
	case addr == 0xFF46:
		return 0xFF
	case addr == 0xFF4C:
		return b.ff4c
	case addr == 0xFF4D:
		return speedSwitchByte(b.CPU)
	case addr == 0xFF50:
		if b.bootROMEnabled {
			return 0x00
		}
		return 0x01
	case addr == 0xFF70:
		return b.wram.readSelect()
	case (addr >= 0xFF40 && addr <= 0xFF4B) || addr == 0xFF4F || (addr >= 0xFF51 && addr <= 0xFF55) || (addr >= 0xFF68 && addr <= 0xFF6C):
		return b.LCD.ReadReg(addr)
	case addr >= 0xFF80 && addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.Irq.ReadEnable()
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, v uint8) {
	b.write(addr, v)
	if b.onAccess != nil {
		b.onAccess(addr, v, true)
	}
}

func (b *Bus) write(addr uint16, v uint8) {
	switch {
	case addr < 0x8000:
		b.Cart.Mapper.WriteROM(addr, v)
	case addr < 0xA000:
		b.LCD.WriteVRAM(addr-0x8000, v)
	case addr < 0xC000:
		b.Cart.Mapper.WriteRAM(addr-0xA000, v)
	case addr < 0xD000:
		b.wram.writeLow(addr, v)
	case addr < 0xE000:
		b.wram.writeHigh(addr, v)
	case addr < 0xF000:
		b.wram.writeLow(addr-0x2000, v)
	case addr < 0xFE00:
		b.wram.writeHigh(addr-0x2000, v)
	case addr < 0xFEA0:
		b.LCD.WriteOAM(addr-0xFE00, v)
	case addr < 0xFF00:
		// unusable region, writes ignored
	case addr == 0xFF00:
		b.Joypad.Write(v)
	case addr == 0xFF01:
		b.sb = v
	case addr == 0xFF02:
		b.sc = v & 0x83
	case addr == 0xFF04:
		b.Timer.WriteDivider(v)
	case addr == 0xFF05:
		b.Timer.WriteCounter(v)
	case addr == 0xFF06:
		b.Timer.WriteModulo(v)
	case addr == 0xFF07:
		b.Timer.WriteControl(v)
	case addr == 0xFF0F:
		b.Irq.WriteFlag(v)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.APU.WriteReg(addr, v)
	case addr == 0xFF46:
		b.oamDMA(v)
	case addr == 0xFF4C:
		b.ff4c = v
	case addr == 0xFF4D:
		if b.ColorMode {
			b.CPU.ArmSpeedSwitch(v&0x01 != 0)
		}
	case addr == 0xFF50:
		if v == 0x11 {
			b.bootROMEnabled = false
		}
	case addr == 0xFF70:
		if b.ColorMode {
			b.wram.writeSelect(v)
		}
	case (addr >= 0xFF40 && addr <= 0xFF4B) || addr == 0xFF4F || (addr >= 0xFF51 && addr <= 0xFF55) || (addr >= 0xFF68 && addr <= 0xFF6C):
		b.LCD.WriteReg(addr, v)
	case addr >= 0xFF80 && addr < 0xFFFF:
		b.hram[addr-0xFF80] = v
	case addr == 0xFFFF:
		b.Irq.WriteEnable(v)
	}
}

// oamDMA implements the OAM DMA trigger at 0xFF46: an immediate
// 160-byte burst copy from {v<<8, v<<8+0xA0} into OAM, per spec §5.
func (b *Bus) oamDMA(v uint8) {
	src := uint16(v) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.LCD.WriteOAM(i, b.read(src+i))
	}
}

func speedSwitchByte(s SpeedSwitcher) uint8 {
	if s == nil {
		return 0x7E
	}
	var v uint8 = 0x7E
	if s.DoubleSpeed() {
		v |= 0x80
	}
	if s.SpeedSwitchArmed() {
		v |= 0x01
	}
	return v
}
