package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildROM(banks int, mapperID MapperID, ramCode uint8) []byte {
	data := make([]byte, banks*bankSize)
	copy(data[0x104:0x134], logo[:])
	copy(data[0x134:0x144], []byte("TESTROM"))
	data[0x147] = uint8(mapperID)
	romCode := uint8(0)
	for 2<<romCode < banks {
		romCode++
	}
	data[0x148] = romCode
	data[0x149] = ramCode
	// recompute header checksum
	var sum uint8
	for _, b := range data[0x134:0x14D] {
		sum = sum - b - 1
	}
	data[0x14D] = sum
	return data
}

func TestHeaderChecksumRoundTrip(t *testing.T) {
	data := buildROM(2, idROM, 0)
	require.True(t, checkHeaderChecksum(data))
	require.True(t, checkLogo(data))
}

func TestGlobalChecksum(t *testing.T) {
	data := buildROM(2, idROM, 0)
	var sum uint16
	for i, b := range data {
		if i == 0x14E || i == 0x14F {
			continue
		}
		sum += uint16(b)
	}
	data[0x14E] = uint8(sum >> 8)
	data[0x14F] = uint8(sum)
	require.True(t, checkGlobalChecksum(data))
}

func TestMBC1BankAliasPromotion(t *testing.T) {
	data := buildROM(4, idMBC1, 0)
	cart, err := Load(data, Options{})
	require.NoError(t, err)

	for _, write := range []uint8{0x00, 0x20, 0x40} {
		cart.Mapper.WriteROM(0x2000, write)
		require.Equal(t, 1, cart.Mapper.CurrentHighBank())
	}
}

func TestMBC1RAMEnable(t *testing.T) {
	data := buildROM(2, idMBC1RAMBattery, 0x02)
	cart, err := Load(data, Options{})
	require.NoError(t, err)

	cart.Mapper.WriteRAM(0x0000, 0x42) // ignored, RAM disabled
	require.Equal(t, uint8(0xFF), cart.Mapper.ReadRAM(0x0000))

	cart.Mapper.WriteROM(0x0000, 0x0A) // enable RAM
	cart.Mapper.WriteRAM(0x0000, 0x42)
	require.Equal(t, uint8(0x42), cart.Mapper.ReadRAM(0x0000))
}

func TestMBC5NineBitBank(t *testing.T) {
	data := buildROM(512, idMBC5, 0)
	cart, err := Load(data, Options{})
	require.NoError(t, err)

	m := cart.Mapper.(*mbc5)
	cases := []struct{ low, hi uint8; want int }{
		{0x00, 0x00, 0},
		{0x01, 0x00, 1},
		{0xFF, 0x00, 255},
		{0x00, 0x01, 256},
		{0xFF, 0x01, 511},
	}
	for _, c := range cases {
		m.WriteROM(0x2000, c.low)
		m.WriteROM(0x3000, c.hi)
		require.Equal(t, c.want, cart.Mapper.CurrentHighBank())
	}
}

func TestMBC3RTCLatch(t *testing.T) {
	data := buildROM(4, idMBC3TimerRAMBatt, 0x02)
	now := int64(1000)
	cart, err := Load(data, Options{RTCNow: func() int64 { return now }})
	require.NoError(t, err)

	m := cart.Mapper.(*mbc3)
	m.WriteROM(0x0000, 0x0A) // enable RAM/RTC
	m.WriteROM(0x4000, 0x08) // select seconds register

	now += 65 // advance wall clock by 65 seconds
	m.WriteROM(0x6000, 0x00)
	m.WriteROM(0x6000, 0x01) // latch

	require.Equal(t, uint8(5), m.ReadRAM(0xA000)) // 65s -> 1m5s
}

func TestUnknownMapper(t *testing.T) {
	data := buildROM(2, 0xEE, 0)
	_, err := Load(data, Options{})
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, UnknownMapper, cerr.Kind)
}
