package cartridge

import (
	"time"

	"github.com/thelolagemann/gomeboy/pkg/wire"
)

// rtcHaltBit marks the RTC as halted (bit 6 of day-high).
const rtcHaltBit = 0x40

// rtcCarryBit marks the sticky day-counter overflow (bit 7 of day-high).
const rtcCarryBit = 0x80

// rtc models MBC3's real-time clock. Per spec §9, the host wall-clock
// anchor is stored alongside the counters and only consulted on reads
// or explicit latch writes, so a save-state round trip never depends
// on continuous background ticking.
type rtc struct {
	seconds, minutes, hours uint8
	dayLow                  uint8
	dayHigh                 uint8 // bit6 halt, bit7 carry, bits0 day high bit

	anchor int64 // unix seconds when the counters above were last synced
	now    func() int64
}

func newRTC(now func() int64) *rtc {
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	return &rtc{now: now, anchor: now()}
}

// sync folds elapsed wall-clock time into the counters. A no-op while
// halted.
func (r *rtc) sync() {
	if r.dayHigh&rtcHaltBit != 0 {
		r.anchor = r.now()
		return
	}
	elapsed := r.now() - r.anchor
	if elapsed <= 0 {
		return
	}
	r.anchor += elapsed

	day := int(r.dayLow) | int(r.dayHigh&0x01)<<8
	total := int64(r.seconds) + int64(r.minutes)*60 + int64(r.hours)*3600 + int64(day)*86400 + elapsed

	r.seconds = uint8(total % 60)
	total /= 60
	r.minutes = uint8(total % 60)
	total /= 60
	r.hours = uint8(total % 24)
	total /= 24
	if total >= 512 {
		r.dayHigh |= rtcCarryBit
		total %= 512
	}
	r.dayLow = uint8(total & 0xFF)
	r.dayHigh = (r.dayHigh &^ 0x01) | uint8((total>>8)&0x01)
}

func (r *rtc) read(reg uint8) uint8 {
	switch reg {
	case 0:
		return r.seconds
	case 1:
		return r.minutes
	case 2:
		return r.hours
	case 3:
		return r.dayLow
	case 4:
		return r.dayHigh
	}
	return 0xFF
}

func (r *rtc) saveState(w *wire.Writer) {
	w.Uint8(r.seconds)
	w.Uint8(r.minutes)
	w.Uint8(r.hours)
	w.Uint8(r.dayLow)
	w.Uint8(r.dayHigh)
	w.Int64(r.anchor)
}

func (r *rtc) loadState(rd *wire.Reader) {
	r.seconds = rd.Uint8()
	r.minutes = rd.Uint8()
	r.hours = rd.Uint8()
	r.dayLow = rd.Uint8()
	r.dayHigh = rd.Uint8()
	r.anchor = rd.Int64()
}

func (r *rtc) write(reg, v uint8) {
	switch reg {
	case 0:
		r.seconds = v % 60
	case 1:
		r.minutes = v % 60
	case 2:
		r.hours = v % 24
	case 3:
		r.dayLow = v
	case 4:
		r.dayHigh = v & (rtcHaltBit | rtcCarryBit | 0x01)
	}
}

// mbc3 implements the MBC3 family: a 7-bit ROM bank, four RAM banks
// sharing a selector with the five RTC registers, and a 0->1 latch
// write sequence, per spec §4.2.
type mbc3 struct {
	rom *ROM
	ram []byte

	romBank    uint8
	ramRTCSel  uint8 // 0-3 selects RAM bank, 0x08-0x0C selects an RTC register
	ramEnabled bool

	hasRTC bool
	clock  *rtc
	latch  *rtc // snapshot returned by reads while latched
	latchSeen0 bool
}

func newMBC3(rom *ROM, ram []byte, hasTimer bool, now func() int64) *mbc3 {
	m := &mbc3{rom: rom, ram: ram, romBank: 1, hasRTC: hasTimer}
	if hasTimer {
		m.clock = newRTC(now)
		snap := *m.clock
		m.latch = &snap
	}
	return m
}

func (m *mbc3) ReadROM(addr uint16) uint8 {
	if addr < bankSize {
		return m.rom.Bank(0)[addr]
	}
	return m.rom.Bank(int(m.romBank))[addr-bankSize]
}

func (m *mbc3) WriteROM(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = data&0x0F == 0x0A
	case addr < 0x4000:
		bank := data & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		m.ramRTCSel = data
	default:
		if data == 0x00 {
			m.latchSeen0 = true
		} else if data == 0x01 && m.latchSeen0 {
			m.latchSeen0 = false
			if m.hasRTC {
				m.clock.sync()
				snap := *m.clock
				m.latch = &snap
			}
		} else {
			m.latchSeen0 = false
		}
	}
}

func (m *mbc3) ReadRAM(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if m.hasRTC && m.ramRTCSel >= 0x08 && m.ramRTCSel <= 0x0C {
		return m.latch.read(m.ramRTCSel - 0x08)
	}
	if m.ramRTCSel > 0x03 || len(m.ram) == 0 {
		return 0xFF
	}
	off := int(addr) + int(m.ramRTCSel)*0x2000
	if off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc3) WriteRAM(addr uint16, data uint8) {
	if !m.ramEnabled {
		return
	}
	if m.hasRTC && m.ramRTCSel >= 0x08 && m.ramRTCSel <= 0x0C {
		m.clock.sync()
		m.clock.write(m.ramRTCSel-0x08, data)
		snap := *m.clock
		m.latch = &snap
		return
	}
	if m.ramRTCSel > 0x03 || len(m.ram) == 0 {
		return
	}
	off := int(addr) + int(m.ramRTCSel)*0x2000
	if off >= len(m.ram) {
		return
	}
	m.ram[off] = data
}

// Clock does not touch the RTC: elapsed wall-clock time is folded in
// only on latch writes and RTC register writes.
func (m *mbc3) Clock(cycles int) {}

func (m *mbc3) CurrentHighBank() int { return int(m.romBank) }

func (m *mbc3) SaveState(w *wire.Writer) {
	w.Uint8(m.romBank)
	w.Uint8(m.ramRTCSel)
	w.Bool(m.ramEnabled)
	w.Bool(m.latchSeen0)
	w.Bool(m.hasRTC)
	if m.hasRTC {
		m.clock.saveState(w)
		m.latch.saveState(w)
	}
}

func (m *mbc3) LoadState(r *wire.Reader) {
	m.romBank = r.Uint8()
	m.ramRTCSel = r.Uint8()
	m.ramEnabled = r.Bool()
	m.latchSeen0 = r.Bool()
	hadRTC := r.Bool()
	if hadRTC && m.hasRTC {
		m.clock.loadState(r)
		snap := *m.clock
		m.latch = &snap
		m.latch.loadState(r)
	}
}
