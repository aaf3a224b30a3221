package audio

// frameSequencerTick advances the nested 256/128/64 Hz clocks derived
// from sample generation, per spec §4.8: length at every tick, sweep
// every other tick (128 Hz), envelope every fourth tick (64 Hz) for
// channels 2 and 4, and for channel 1 via the shared sweep divider
// (also every fourth tick, reached through two sweep ticks).
func (a *APU) frameSequencerTick() {
	a.lengthTicks++

	a.ch1.tickLength()
	a.ch2.tickLength()
	a.ch3.tickLength()
	a.ch4.tickLength()

	if a.lengthTicks%2 == 0 {
		a.ch1.tickSweep()
	}
	if a.lengthTicks%4 == 0 {
		a.ch1.tickEnvelope()
		a.ch2.tickEnvelope()
		a.ch4.tickEnvelope()
	}
}
