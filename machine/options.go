package machine

import (
	"github.com/thelolagemann/gomeboy/audio"
	"github.com/thelolagemann/gomeboy/pkg/log"
)

// Model selects which power-up register values and compatibility
// behavior the machine presents, per spec §4.1/§9.
type Model uint8

const (
	// ModelAutomatic derives the model from the cartridge header's CGB
	// flag, matching real hardware's own detection.
	ModelAutomatic Model = iota
	ModelDMG
	ModelCGB
)

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithBootROM installs a boot ROM image (DMG 256 bytes or CGB ~2304
// bytes) executed from 0x0000 before the cartridge's own entry point,
// per spec §4.1's boot handoff.
func WithBootROM(rom []byte) Option {
	return func(m *Machine) { m.bootROM = rom }
}

// WithLogger installs a structured logger, replacing the null logger
// used when no front end supplies one.
func WithLogger(l log.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// AsModel forces DMG or CGB behavior instead of the automatic
// header-driven detection.
func AsModel(model Model) Option {
	return func(m *Machine) { m.model = model }
}

// WithExternalRAM installs the front end's get_external_ram callback,
// giving it ownership of persistent battery-backed save RAM.
func WithExternalRAM(fn func(size int) []byte) Option {
	return func(m *Machine) { m.externalRAM = fn }
}

// WithCheckButtons installs the front end's check_buttons callback.
// If not supplied, the joypad reports no buttons pressed.
func WithCheckButtons(fn func() uint8) Option {
	return func(m *Machine) { m.checkButtons = fn }
}

// WithPlaySound installs the front end's play_sound callback for
// completed stereo sample buffers.
func WithPlaySound(fn audio.PlaySoundFunc) Option {
	return func(m *Machine) { m.playSound = fn }
}

// WithTracer installs the three optional trace-mode callbacks, per
// spec §6. A nil field in t leaves that hook disabled.
func WithTracer(t Tracer) Option {
	return func(m *Machine) { m.tracer = t }
}

// WithRTCNow overrides the wall-clock source MBC3's real-time clock
// anchors against, for deterministic tests.
func WithRTCNow(fn func() int64) Option {
	return func(m *Machine) { m.rtcNow = fn }
}
