package machine

// Tracer holds the three optional front-end callbacks spec §6 names
// for trace mode. Any field may be left nil to disable that hook.
type Tracer struct {
	// MemAccess is invoked on every bus read/write once trace mode is
	// enabled, reporting whether the access was a write.
	MemAccess func(addr uint16, value uint8, write bool)
	// MapperChanged is invoked whenever the mapper's currently-mapped
	// high ROM bank changes, for diagnostics.
	MapperChanged func(highBank int)
	// CPUStep is invoked after every CPU.Step with the PC it executed
	// from and the T-cycles it consumed.
	CPUStep func(pc uint16, cycles int)
}

func (m *Machine) traceEnabled() bool {
	return m.tracer.MemAccess != nil || m.tracer.MapperChanged != nil || m.tracer.CPUStep != nil
}

// SetTracer installs or clears the trace-mode callback set at
// runtime, toggling the bus's mem_access wrapper per spec §5.
func (m *Machine) SetTracer(t Tracer) {
	m.tracer = t
	if t.MemAccess != nil {
		m.bus.SetTracer(t.MemAccess)
	} else {
		m.bus.SetTracer(nil)
	}
}
