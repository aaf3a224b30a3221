// Package machine implements the scheduler that drives one CPU step,
// fans out its cycle count to the LCD, APU, cartridge mapper and
// timers, and polls the front end, per spec §4.9. It is the single
// owning value every device hangs off, replacing the teacher's
// package-global device wiring with one constructed Machine.
package machine

import (
	"github.com/thelolagemann/gomeboy/audio"
	"github.com/thelolagemann/gomeboy/cartridge"
	"github.com/thelolagemann/gomeboy/cpu"
	"github.com/thelolagemann/gomeboy/interrupt"
	"github.com/thelolagemann/gomeboy/joypad"
	"github.com/thelolagemann/gomeboy/memory"
	"github.com/thelolagemann/gomeboy/pkg/log"
	"github.com/thelolagemann/gomeboy/timer"
	"github.com/thelolagemann/gomeboy/video"
)

// pollThreshold is the CPU-cycle budget between front-end checks,
// roughly one centisecond of emulated time at normal speed, per
// spec §4.9.
const pollThreshold = 42000

// CheckFunc is the front end's check() callback: it reports whether
// the session should stop and whether a button or direction key was
// just pressed, per spec §6. The emulator polls it roughly every 10ms
// of emulated time and it must return promptly.
type CheckFunc func() (stop, buttonPressed, directionPressed bool)

// Machine owns every device and the cycle budget accumulator that
// paces front-end polling. It is the "single owning machine value"
// spec §9 calls for in place of the source's file-scope globals.
type Machine struct {
	cart *cartridge.Cartridge
	cpu  *cpu.CPU
	bus  *memory.Bus
	lcd  *video.LCD
	apu  *audio.APU
	tmr  *timer.Controller
	pad  *joypad.State
	irq  *interrupt.Controller

	colorMode bool
	model     Model

	bootROM      []byte
	log          log.Logger
	externalRAM  func(size int) []byte
	checkButtons func() uint8
	playSound    audio.PlaySoundFunc
	tracer       Tracer
	rtcNow       func() int64
	checkFn      CheckFunc

	pollAcc  int
	stopped  bool
	lastBank int

	romData []byte
}

// New constructs a Machine from a raw cartridge image and options,
// validating the header and building the mapper family it declares.
// Per spec §7 a non-nil error leaves the returned Machine unusable;
// the front end must not call any device function on it.
func New(rom []byte, opts ...Option) (*Machine, error) {
	m := &Machine{
		log:   log.NewNullLogger(),
		model: ModelAutomatic,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.loadCartridge(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadROM re-inserts a new cartridge image into an already-constructed
// Machine, rebuilding every device from a fresh power-up state, per
// spec §5's cartridge-insert lifecycle.
func (m *Machine) LoadROM(rom []byte) error {
	return m.loadCartridge(rom)
}

// WithCheck installs the front end's check() stop/button-press poll
// callback, invoked every pollThreshold CPU cycles.
func WithCheck(fn CheckFunc) Option {
	return func(m *Machine) { m.checkFn = fn }
}

func (m *Machine) loadCartridge(rom []byte) error {
	cart, err := cartridge.Load(rom, cartridge.Options{
		CheckROM:    len(m.bootROM) == 0,
		ExternalRAM: m.externalRAM,
		RTCNow:      m.rtcNow,
	})
	if err != nil {
		m.log.Errorf("cartridge load failed: %v", err)
		return err
	}

	m.romData = rom
	m.cart = cart

	switch m.model {
	case ModelDMG:
		m.colorMode = false
	case ModelCGB:
		m.colorMode = true
	default:
		m.colorMode = cart.Header.IsColor()
	}

	m.irq = &interrupt.Controller{}
	m.irq.Reset()

	m.lcd = video.New(m.irq, m.colorMode)
	m.apu = audio.New(m.playSound)
	m.tmr = timer.New(m.irq)
	m.pad = joypad.New(m.irq, m.resolveCheckButtons())

	m.bus = memory.New(m.cart, m.lcd, m.apu, m.tmr, m.pad, m.irq, m.colorMode, m.bootROM)

	m.cpu = cpu.New(m.bus, m.irq)
	if len(m.bootROM) > 0 {
		// A real boot ROM runs from 0x0000 and programs every register
		// itself before jumping to the cartridge entry point and
		// unmapping itself, so the fake CGB post-boot register values
		// Reset() seeds are not wanted here.
		m.cpu.PC, m.cpu.SP = 0, 0
		m.cpu.A, m.cpu.F = 0, 0
		m.cpu.B, m.cpu.C = 0, 0
		m.cpu.D, m.cpu.E = 0, 0
		m.cpu.H, m.cpu.L = 0, 0
	}
	m.bus.CPU = m.cpu

	if rumbler, ok := m.cart.Mapper.(interface {
		SetRumbleObserver(cartridge.RumbleObserver)
	}); ok {
		rumbler.SetRumbleObserver(m.onRumble)
	}

	m.pollAcc = 0
	m.stopped = false
	m.lastBank = m.cart.Mapper.CurrentHighBank()

	if m.tracer.MemAccess != nil {
		m.bus.SetTracer(m.tracer.MemAccess)
	}

	return nil
}

func (m *Machine) resolveCheckButtons() func() uint8 {
	if m.checkButtons != nil {
		return m.checkButtons
	}
	return func() uint8 { return 0 }
}

func (m *Machine) onRumble(level uint8) {
	m.log.Debugf("rumble level changed to %d", level)
}

// Iter runs exactly one scheduler step: the CPU executes one
// instruction (or HALT/STOP tick), and that many T-cycles - shifted
// by the current speed mode - are fanned out to the LCD, APU, mapper
// and timers in that fixed order, per spec §4.9 and §5's ordering
// guarantee. It returns the number of CPU T-cycles the step consumed.
func (m *Machine) Iter() int {
	pc := m.cpu.PC
	cycles := m.cpu.Step()

	devCycles := cycles
	if m.cpu.DoubleSpeed() {
		devCycles >>= 1
	}

	// STOP additionally pauses the LCD and APU, per spec §4.6; the
	// mapper and timers still run so RTC/rumble accounting and the
	// divider keep advancing.
	if !m.cpu.Stopped() {
		extra := m.lcd.Clock(devCycles)
		devCycles += extra
		m.apu.Clock(devCycles)
	}

	m.cart.Mapper.Clock(devCycles)

	timerCycles := devCycles
	if m.cpu.DoubleSpeed() {
		timerCycles <<= 1
	}
	m.tmr.Clock(timerCycles)

	if m.tracer.CPUStep != nil {
		m.tracer.CPUStep(pc, cycles)
	}
	if m.tracer.MapperChanged != nil {
		if bank := m.cart.Mapper.CurrentHighBank(); bank != m.lastBank {
			m.lastBank = bank
			m.tracer.MapperChanged(bank)
		}
	}

	m.pollAcc += cycles
	if m.pollAcc >= pollThreshold {
		m.pollAcc -= pollThreshold
		m.poll()
	}

	return cycles
}

// Step executes exactly one Iter and is the trace-mode single-step
// entry point spec §6 names, returning the T-cycles executed.
func (m *Machine) Step() int {
	return m.Iter()
}

// Run blocks, repeatedly calling Iter, until the front end's check
// callback requests a stop or Stop is called directly. It is the
// convenience "loop()" spec §4.9 names.
func (m *Machine) Run() {
	for !m.stopped {
		m.Iter()
	}
}

// Stop requests that Run return, per §5's cooperative cancellation
// model. Run checks the flag before every Iter, so it returns as soon
// as the Iter in progress completes.
func (m *Machine) Stop() {
	m.stopped = true
}

func (m *Machine) poll() {
	if m.checkFn == nil {
		return
	}
	stop, buttonPressed, directionPressed := m.checkFn()
	if stop {
		m.stopped = true
	}
	if buttonPressed || directionPressed {
		m.pad.KeyPressed(buttonPressed, directionPressed)
	}
}

// HasFrame reports whether the LCD has a completed frame ready for
// update_screen.
func (m *Machine) HasFrame() bool { return m.lcd.HasFrame() }

// Frame returns the completed 160x144 framebuffer and clears the
// ready flag, per spec §6's update_screen callback payload.
func (m *Machine) Frame() [video.ScreenHeight][video.ScreenWidth]video.Color {
	return m.lcd.Frame()
}

// IsBIOSMapped reports whether the boot ROM is still mapped at
// [0x0000,0x0100) / [0x0200,0x0900), per spec §8's invariant.
func (m *Machine) IsBIOSMapped() bool { return m.bus.BIOSMapped() }

// CurrentBank returns the mapper's currently-mapped high ROM bank
// index, per spec §6's "query current bank-1 index" entry point.
func (m *Machine) CurrentBank() int { return m.cart.Mapper.CurrentHighBank() }

// BackgroundPalettes returns the eight CGB background palettes.
func (m *Machine) BackgroundPalettes() [8][4]video.Color { return m.lcd.BackgroundColorPalettes() }

// SpritePalettes returns the eight CGB sprite palettes.
func (m *Machine) SpritePalettes() [8][4]video.Color { return m.lcd.SpriteColorPalettes() }

// VRAMDump returns a copy of both VRAM banks, for diagnostics.
func (m *Machine) VRAMDump() [2][0x2000]byte { return m.lcd.VRAMDump() }

// ColorMode reports whether the machine is running in CGB mode.
func (m *Machine) ColorMode() bool { return m.colorMode }

// Cartridge exposes the currently-loaded cartridge, for front ends
// that want header details (title, mapper kind) without a separate
// query surface.
func (m *Machine) Cartridge() *cartridge.Cartridge { return m.cart }

// Close releases the machine's resources. Every allocation here is
// either owned by value or by the front end (external RAM), so this
// exists to give front ends a single symmetrical call regardless of
// what a future version needs to release, per spec §5's
// init()..close() lifecycle.
func (m *Machine) Close() {}
