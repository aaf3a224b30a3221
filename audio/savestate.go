package audio

import "github.com/thelolagemann/gomeboy/pkg/wire"

func (s *square) saveState(w *wire.Writer) {
	w.Bool(s.enabled)
	w.Bool(s.dacOn)
	w.Uint16(s.freq)
	w.Int(s.timer)
	w.Uint8(s.dutyIdx)
	w.Int(s.dutyPos)
	w.Uint8(s.lengthCounter)
	w.Bool(s.lengthEnable)
	w.Uint8(s.initialVolume)
	w.Bool(s.envelopeUp)
	w.Uint8(s.envelopePeriod)
	w.Uint8(s.envelopeTimer)
	w.Uint8(s.volume)
	w.Uint8(s.sweepPeriod)
	w.Bool(s.sweepNegate)
	w.Uint8(s.sweepShift)
	w.Uint8(s.sweepTimer)
	w.Bool(s.sweepEnabled)
	w.Uint16(s.shadowFreq)
}

func (s *square) loadState(r *wire.Reader) {
	s.enabled = r.Bool()
	s.dacOn = r.Bool()
	s.freq = r.Uint16()
	s.timer = r.Int()
	s.dutyIdx = r.Uint8()
	s.dutyPos = r.Int()
	s.lengthCounter = r.Uint8()
	s.lengthEnable = r.Bool()
	s.initialVolume = r.Uint8()
	s.envelopeUp = r.Bool()
	s.envelopePeriod = r.Uint8()
	s.envelopeTimer = r.Uint8()
	s.volume = r.Uint8()
	s.sweepPeriod = r.Uint8()
	s.sweepNegate = r.Bool()
	s.sweepShift = r.Uint8()
	s.sweepTimer = r.Uint8()
	s.sweepEnabled = r.Bool()
	s.shadowFreq = r.Uint16()
}

func (w4 *wave) saveState(w *wire.Writer) {
	w.Bool(w4.enabled)
	w.Bool(w4.dacOn)
	w.Uint16(w4.freq)
	w.Int(w4.timer)
	w.Int(w4.position)
	w.Uint8(w4.shiftCode)
	w.Uint16(w4.lengthCounter)
	w.Bool(w4.lengthEnable)
	w.Bytes(w4.waveRAM[:])
}

func (w4 *wave) loadState(r *wire.Reader) {
	w4.enabled = r.Bool()
	w4.dacOn = r.Bool()
	w4.freq = r.Uint16()
	w4.timer = r.Int()
	w4.position = r.Int()
	w4.shiftCode = r.Uint8()
	w4.lengthCounter = r.Uint16()
	w4.lengthEnable = r.Bool()
	r.Bytes(w4.waveRAM[:])
}

func (n *noise) saveState(w *wire.Writer) {
	w.Bool(n.enabled)
	w.Bool(n.dacOn)
	w.Uint8(n.ratio)
	w.Uint8(n.shift)
	w.Bool(n.wide7)
	w.Int(n.timer)
	w.Bool(n.downsample)
	w.Uint16(n.lfsr)
	w.Uint8(n.initialVolume)
	w.Bool(n.envelopeUp)
	w.Uint8(n.envelopePeriod)
	w.Uint8(n.envelopeTimer)
	w.Uint8(n.volume)
	w.Uint8(n.lengthCounter)
	w.Bool(n.lengthEnable)
}

func (n *noise) loadState(r *wire.Reader) {
	n.enabled = r.Bool()
	n.dacOn = r.Bool()
	n.ratio = r.Uint8()
	n.shift = r.Uint8()
	n.wide7 = r.Bool()
	n.timer = r.Int()
	n.downsample = r.Bool()
	n.lfsr = r.Uint16()
	n.initialVolume = r.Uint8()
	n.envelopeUp = r.Bool()
	n.envelopePeriod = r.Uint8()
	n.envelopeTimer = r.Uint8()
	n.volume = r.Uint8()
	n.lengthCounter = r.Uint8()
	n.lengthEnable = r.Bool()
}

// SaveState writes every channel and mixer register needed to resume
// sample generation exactly where it left off. The in-flight
// per-channel sample buffers are not included: they hold only
// already-generated output waiting to cross the BufferSize threshold,
// so omitting them only costs a silent partial buffer on resume
// rather than any audible discontinuity in subsequent playback.
func (a *APU) SaveState(w *wire.Writer) {
	a.ch1.saveState(w)
	a.ch2.saveState(w)
	a.ch3.saveState(w)
	a.ch4.saveState(w)

	w.Bool(a.masterEnable)
	for _, v := range a.leftEnable {
		w.Bool(v)
	}
	for _, v := range a.rightEnable {
		w.Bool(v)
	}
	w.Uint8(a.volumeLeft)
	w.Uint8(a.volumeRight)
	w.Bool(a.vinLeft)
	w.Bool(a.vinRight)
	w.Int(a.cycleAcc)
	w.Int(a.sampleAcc)
	w.Int(a.lengthTicks)
	w.Int(a.bufPos)
}

// LoadState restores every field SaveState wrote.
func (a *APU) LoadState(r *wire.Reader) {
	a.ch1.loadState(r)
	a.ch2.loadState(r)
	a.ch3.loadState(r)
	a.ch4.loadState(r)

	a.masterEnable = r.Bool()
	for i := range a.leftEnable {
		a.leftEnable[i] = r.Bool()
	}
	for i := range a.rightEnable {
		a.rightEnable[i] = r.Bool()
	}
	a.volumeLeft = r.Uint8()
	a.volumeRight = r.Uint8()
	a.vinLeft = r.Bool()
	a.vinRight = r.Bool()
	a.cycleAcc = r.Int()
	a.sampleAcc = r.Int()
	a.lengthTicks = r.Int()
	a.bufPos = r.Int()
}
