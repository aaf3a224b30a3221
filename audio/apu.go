// Package audio implements the APU: four channels, a frame sequencer,
// and a sampled mixer whose output rate is derived from the CPU
// clock, per spec §4.8.
package audio

// BufferSize is the number of stereo samples buffered per channel
// before play_sound is invoked, per spec §6.
const BufferSize = 10486

// samplePeriod is the CPU-cycle period between per-channel samples:
// every four CPU cycles produce one sample, per spec §4.8.
const samplePeriod = 4

// lengthTickSamples is the sample count between 256 Hz length ticks:
// 4096 generated samples, per spec §4.8.
const lengthTickSamples = 4096

// volumeTable maps a 4-bit amplitude to its linear output level,
// 0.0 to 0.25 in 1/60 steps, per spec §4.8.
var volumeTable [16]float32

func init() {
	for i := range volumeTable {
		volumeTable[i] = float32(i) / 60
	}
}

// PlaySoundFunc delivers a complete stereo buffer to the front end. It
// may block until the device accepts more samples, per spec §5/§6.
type PlaySoundFunc func(left, right [BufferSize]float32)

// APU owns all four channels, the master mixer registers, and the
// frame sequencer.
type APU struct {
	ch1 square
	ch2 square
	ch3 wave
	ch4 noise

	masterEnable bool

	leftEnable, rightEnable [4]bool
	volumeLeft, volumeRight uint8
	vinLeft, vinRight       bool

	cycleAcc  int
	sampleAcc int

	lengthTicks int

	bufPos int
	left   [BufferSize]float32
	right  [BufferSize]float32

	playSound PlaySoundFunc
}

// New returns a power-up-state APU. playSound is invoked whenever a
// buffer fills; it may be nil (samples are then discarded), useful for
// headless execution.
func New(playSound PlaySoundFunc) *APU {
	a := &APU{playSound: playSound}
	a.ch1.hasSweep = true
	a.masterEnable = true
	return a
}

// Clock advances the APU by cycles T-cycles, generating samples and
// delivering buffers as thresholds are crossed.
func (a *APU) Clock(cycles int) {
	if !a.masterEnable {
		return
	}
	for i := 0; i < cycles; i++ {
		a.ch1.tickTimer()
		a.ch2.tickTimer()
		a.ch3.tickTimer()
		a.ch4.tickTimer()

		a.cycleAcc++
		if a.cycleAcc >= samplePeriod {
			a.cycleAcc -= samplePeriod
			a.generateSample()
		}
	}
}

func (a *APU) generateSample() {
	a.mixInto(a.bufPos)
	a.bufPos++

	a.sampleAcc++
	if a.sampleAcc >= lengthTickSamples {
		a.sampleAcc = 0
		a.frameSequencerTick()
	}

	if a.bufPos >= BufferSize {
		a.bufPos = 0
		if a.playSound != nil {
			a.playSound(a.left, a.right)
		}
	}
}

// Stop silences every channel and ignores further channel-register
// writes until the master switch is set again, per spec §4.8.
func (a *APU) Stop() {
	a.masterEnable = false
	a.ch1 = square{hasSweep: true}
	a.ch2 = square{}
	a.ch3 = wave{waveRAM: a.ch3.waveRAM}
	a.ch4 = noise{}
	a.bufPos = 0
}

// Start re-initializes timing anchors after the master switch is set.
func (a *APU) Start() {
	a.masterEnable = true
	a.cycleAcc, a.sampleAcc, a.lengthTicks = 0, 0, 0
}

// Enabled reports the master switch state (NR52 bit 7).
func (a *APU) Enabled() bool { return a.masterEnable }

// StatusByte reports each channel's enabled flag in NR52's low nibble.
func (a *APU) StatusByte() uint8 {
	v := uint8(0x70)
	if a.masterEnable {
		v |= 0x80
	}
	if a.ch1.enabled {
		v |= 0x01
	}
	if a.ch2.enabled {
		v |= 0x02
	}
	if a.ch3.enabled {
		v |= 0x04
	}
	if a.ch4.enabled {
		v |= 0x08
	}
	return v
}
