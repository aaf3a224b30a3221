package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadStateRoundTrip(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		m.Iter()
	}
	pcAtSave := m.cpu.PC
	lyAtSave := m.lcd.LY()

	blob, err := m.SaveState()
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		m.Iter()
	}
	require.NotEqualValues(t, pcAtSave, m.cpu.PC)

	require.NoError(t, m.LoadState(blob))
	require.EqualValues(t, pcAtSave, m.cpu.PC)
	require.EqualValues(t, lyAtSave, m.lcd.LY())
}

func TestSaveStateBlobCarriesMagicAndVersion(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	blob, err := m.SaveState()
	require.NoError(t, err)
	require.Equal(t, stateMagic, string(blob[:len(stateMagic)]))
	require.EqualValues(t, stateVersion, blob[len(stateMagic)])
}

func TestLoadStateRejectsBadMagicAndReinitializes(t *testing.T) {
	m, err := New(buildROM(t, 2))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		m.Iter()
	}
	require.NotEqualValues(t, 0x0100, m.cpu.PC)

	err = m.LoadState([]byte("not a save state"))
	require.Error(t, err)
	require.EqualValues(t, 0x0100, m.cpu.PC)
}

func TestLoadStateRejectsMismatchedMapperKind(t *testing.T) {
	a, err := New(buildROM(t, 2))
	require.NoError(t, err)
	blob, err := a.SaveState()
	require.NoError(t, err)

	mbc1ROM := buildROM(t, 4)
	mbc1ROM[0x147] = 0x01 // MBC1
	var sum uint8
	for _, b := range mbc1ROM[0x134:0x14D] {
		sum = sum - b - 1
	}
	mbc1ROM[0x14D] = sum

	b, err := New(mbc1ROM)
	require.NoError(t, err)
	require.Error(t, b.LoadState(blob))
}

func TestSaveStateRejectsSpeedModeMismatch(t *testing.T) {
	m, err := New(buildROM(t, 2), AsModel(ModelCGB))
	require.NoError(t, err)
	blob, err := m.SaveState()
	require.NoError(t, err)

	// Corrupt the double-speed byte that immediately follows the
	// version byte in the encoded stream.
	corrupt := append([]byte(nil), blob...)
	corrupt[len(stateMagic)+1] ^= 0x01
	require.Error(t, m.LoadState(corrupt))
}
