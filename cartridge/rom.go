// Package cartridge implements ROM/header inspection and the
// bank-switched mapper family (plain ROM, MBC1, MBC2, MBC3, MBC5) that
// sits behind the memory map's cartridge window.
package cartridge

import "fmt"

// ROM is an immutable, bank-organized cartridge image. Banks are
// 16 KiB each; bank 0 always carries the header at 0x100-0x14F.
type ROM struct {
	banks [][bankSize]byte
	raw   []byte
}

// BankCount returns the number of 16 KiB banks in the image.
func (r *ROM) BankCount() int {
	return len(r.banks)
}

// Bank returns a read-only view of bank n.
func (r *ROM) Bank(n int) *[bankSize]byte {
	return &r.banks[n%len(r.banks)]
}

func newROM(data []byte) (*ROM, error) {
	if len(data)%bankSize != 0 || len(data) < 2*bankSize {
		return nil, newError(WrongRomSize, "image length %d is not a multiple of %d bytes, or too short", len(data), bankSize)
	}
	r := &ROM{
		banks: make([][bankSize]byte, len(data)/bankSize),
		raw:   data,
	}
	for i := range r.banks {
		copy(r.banks[i][:], data[i*bankSize:(i+1)*bankSize])
	}
	return r, nil
}

// Options configures cartridge construction.
type Options struct {
	// CheckROM enables logo/checksum/size validation. Real hardware
	// only performs these checks when no boot ROM is present to do
	// them already, per spec §4.2.
	CheckROM bool
	// ExternalRAM, when non-nil, supplies a persistent buffer for
	// battery-backed external RAM (the front end's
	// get_external_ram callback). If nil, volatile RAM is allocated
	// internally.
	ExternalRAM func(size int) []byte
	// RTCNow supplies the wall-clock anchor for MBC3's real-time
	// clock; defaults to time.Now when nil.
	RTCNow func() int64
}

// Cartridge couples a parsed Header with a live Mapper instance.
type Cartridge struct {
	Header Header
	Mapper Mapper
	rom    *ROM
}

// Load parses rom, validates it per opts, and constructs the
// appropriate Mapper for its declared family.
func Load(data []byte, opts Options) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, newError(WrongRomSize, "image too short to contain a header (%d bytes)", len(data))
	}

	rom, err := newROM(data)
	if err != nil {
		return nil, err
	}
	header := parseHeader(data)

	if opts.CheckROM {
		if !checkLogo(data) {
			return nil, newError(WrongLogo, "nintendo logo mismatch")
		}
		if !checkHeaderChecksum(data) {
			return nil, newError(WrongChecksum, "header checksum mismatch")
		}
		if err := checkROMSize(data, header); err != nil {
			return nil, err
		}
		if err := checkRAMSize(header); err != nil {
			return nil, err
		}
	}

	kind, err := header.Mapper()
	if err != nil {
		return nil, err
	}

	ramSize := header.RAMSize()
	ram := allocateRAM(ramSize, opts)

	var mapper Mapper
	switch kind {
	case KindPlainROM:
		mapper = newPlainROM(rom)
	case KindMBC1:
		mapper = newMBC1(rom, ram)
	case KindMBC2:
		// MBC2 carries its own fixed 512x4-bit RAM, ignoring the
		// header's declared RAM size.
		mapper = newMBC2(rom)
	case KindMBC3:
		mapper = newMBC3(rom, ram, header.hasTimer(), opts.RTCNow)
	case KindMBC5:
		mapper = newMBC5(rom, ram, header.hasRumble())
	default:
		return nil, newError(UnknownMapper, "mapper kind %d has no implementation", kind)
	}

	return &Cartridge{Header: header, Mapper: mapper, rom: rom}, nil
}

func allocateRAM(size int, opts Options) []byte {
	if size == 0 {
		size = 0x8000 // worst case, so bank math never indexes out of range
	}
	if opts.ExternalRAM != nil {
		return opts.ExternalRAM(size)
	}
	return make([]byte, size)
}

func (c *Cartridge) String() string {
	return fmt.Sprintf("Cartridge(%s)", c.Header)
}
