package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thelolagemann/gomeboy/interrupt"
)

// nintendoLogo is the fixed 24-byte half of the boot logo real
// hardware (and cartridge.Load with CheckROM set) verifies.
var nintendoLogo = [24]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
}

// buildROM returns a minimal, header-valid plain-ROM cartridge image
// of the given bank count; every non-header byte is 0x00 (NOP), so
// the CPU steps forward one byte per NOP from the entry point (the
// header bytes in between execute as ordinary instructions).
func buildROM(t *testing.T, banks int) []byte {
	t.Helper()
	data := make([]byte, banks*0x4000)
	copy(data[0x104:0x104+len(nintendoLogo)], nintendoLogo[:])
	copy(data[0x134:0x144], []byte("TESTROM"))
	data[0x147] = 0x00 // plain ROM
	romCode := uint8(0)
	for 2<<romCode < banks {
		romCode++
	}
	data[0x148] = romCode
	data[0x149] = 0x00 // no external RAM

	var sum uint8
	for _, b := range data[0x134:0x14D] {
		sum = sum - b - 1
	}
	data[0x14D] = sum
	return data
}

func TestNewRejectsBadHeader(t *testing.T) {
	data := buildROM(t, 2)
	data[0x104] = 0xFF // corrupt the logo
	_, err := New(data)
	require.Error(t, err)
}

func TestNewPowersUpAtCartridgeEntryPoint(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	require.EqualValues(t, 0x0100, m.cpu.PC)
	require.False(t, m.IsBIOSMapped())
}

func TestWithBootROMStartsAtZeroWithClearRegisters(t *testing.T) {
	boot := make([]byte, 0x100)
	m, err := New(buildROM(t, 2), WithBootROM(boot))
	require.NoError(t, err)
	require.EqualValues(t, 0x0000, m.cpu.PC)
	require.EqualValues(t, 0x0000, m.cpu.SP)
	require.True(t, m.IsBIOSMapped())
}

func TestIterAdvancesPCAndReportsCycles(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	cycles := m.Iter()
	require.Greater(t, cycles, 0)
	require.EqualValues(t, 0x0101, m.cpu.PC)
}

func TestRunStopsViaCheckFunc(t *testing.T) {
	iters := 0
	m, err := New(buildROM(t, 2), WithCheck(func() (bool, bool, bool) {
		iters++
		return iters >= 3, false, false
	}))
	require.NoError(t, err)
	m.Run()
	require.EqualValues(t, 3, iters)
}

func TestStopHaltsRunLoop(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	m.Stop()
	m.Run() // must return immediately, not hang
}

func TestCheckButtonsFeedsJoypadKeyPressed(t *testing.T) {
	calls := 0
	m, err := New(buildROM(t, 2), WithCheckButtons(func() uint8 {
		calls++
		return 0
	}), WithCheck(func() (bool, bool, bool) {
		return true, true, false
	}))
	require.NoError(t, err)
	for i := 0; i < pollThreshold+1; i++ {
		m.Iter()
	}
	require.True(t, m.stopped)
	require.NotZero(t, m.irq.ReadFlag()&uint8(interrupt.Joypad))
}

func TestColorModeFollowsCGBFlagByDefault(t *testing.T) {
	data := buildROM(t, 2)
	data[0x143] = 0x80
	data[0x14D] -= 0x80 // keep the header checksum valid
	m, err := New(data)
	require.NoError(t, err)
	require.True(t, m.ColorMode())
}

func TestAsModelOverridesHeaderDetection(t *testing.T) {
	data := buildROM(t, 2)
	data[0x143] = 0x80 // cartridge claims CGB support
	// keep the header checksum valid
	data[0x14D] -= 0x80
	m, err := New(data, AsModel(ModelDMG))
	require.NoError(t, err)
	require.False(t, m.ColorMode())
}

func TestLoadROMReinitializesDevices(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		m.Iter()
	}
	require.NotEqualValues(t, 0x0100, m.cpu.PC)

	require.NoError(t, m.LoadROM(buildROM(t, 2)))
	require.EqualValues(t, 0x0100, m.cpu.PC)
}

func TestTracerCPUStepFiresOncePerIter(t *testing.T) {
	var seen []uint16
	m, err := New(buildROM(t, 2), WithTracer(Tracer{
		CPUStep: func(pc uint16, cycles int) { seen = append(seen, pc) },
	}))
	require.NoError(t, err)
	m.Iter()
	m.Iter()
	require.Equal(t, []uint16{0x0100, 0x0101}, seen)
}
