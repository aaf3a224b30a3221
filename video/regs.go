package video

// ReadVRAM reads VRAM-relative address addr (0x0000-0x1FFF) from the
// currently selected bank.
func (l *LCD) ReadVRAM(addr uint16) uint8 {
	return l.vram[l.vramBank][addr&0x1FFF]
}

// WriteVRAM writes VRAM-relative address addr from the currently
// selected bank.
func (l *LCD) WriteVRAM(addr uint16, v uint8) {
	l.vram[l.vramBank][addr&0x1FFF] = v
}

// ReadVRAMBank reads from an explicit bank, used by the renderer for
// CGB tile-attribute lookups in bank 1 regardless of the selected
// bank.
func (l *LCD) ReadVRAMBank(bank uint8, addr uint16) uint8 {
	return l.vram[bank&1][addr&0x1FFF]
}

// ReadOAM reads OAM-relative address addr (0x00-0x9F).
func (l *LCD) ReadOAM(addr uint16) uint8 {
	if addr >= 0xA0 {
		return 0xFF
	}
	return l.oam[addr]
}

// WriteOAM writes OAM-relative address addr. Used both by CPU writes
// and by the bus-driven OAM DMA burst copy.
func (l *LCD) WriteOAM(addr uint16, v uint8) {
	if addr >= 0xA0 {
		return
	}
	l.oam[addr] = v
}

// ReadReg reads an LCD I/O register at its full address (0xFF40-0xFF4B,
// 0xFF4F, 0xFF51-0xFF55, 0xFF68-0xFF6C).
func (l *LCD) ReadReg(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return l.lcdc
	case 0xFF41:
		return l.statRegister()
	case 0xFF42:
		return l.scy
	case 0xFF43:
		return l.scx
	case 0xFF44:
		return l.ly
	case 0xFF45:
		return l.lyc
	case 0xFF46:
		return 0xFF // OAM DMA source is write-only; the bus owns the trigger
	case 0xFF47:
		return l.bgp.read()
	case 0xFF48:
		return l.obp0.read()
	case 0xFF49:
		return l.obp1.read()
	case 0xFF4A:
		return l.wy
	case 0xFF4B:
		return l.wx
	case 0xFF4F:
		return l.vramBank | 0xFE
	case 0xFF51, 0xFF52, 0xFF53, 0xFF54:
		return 0xFF
	case 0xFF55:
		return l.hdma.status()
	case 0xFF68:
		return l.bgPalette.readIndex()
	case 0xFF69:
		return l.bgPalette.readData()
	case 0xFF6A:
		return l.objPalette.readIndex()
	case 0xFF6B:
		return l.objPalette.readData()
	case 0xFF6C:
		return 0xFE
	}
	return 0xFF
}

// WriteReg writes an LCD I/O register.
func (l *LCD) WriteReg(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		l.setEnabled(v&lcdcDisplayOn != 0)
		l.lcdc = v
	case 0xFF41:
		l.stat = v &^ 0x07
		l.updateStatLine()
	case 0xFF42:
		l.scy = v
	case 0xFF43:
		l.scx = v
	case 0xFF44:
		// LY is read-only; writes are ignored
	case 0xFF45:
		l.lyc = v
		l.checkLYC()
	case 0xFF46:
		// handled by the memory bus, which owns full address-space reads
	case 0xFF47:
		l.bgp.write(v)
	case 0xFF48:
		l.obp0.write(v)
	case 0xFF49:
		l.obp1.write(v)
	case 0xFF4A:
		l.wy = v
	case 0xFF4B:
		l.wx = v
	case 0xFF4F:
		if l.colorMode {
			l.vramBank = v & 0x01
		}
	case 0xFF51:
		l.hdma.srcHi = v
	case 0xFF52:
		l.hdma.srcLo = v & 0xF0
	case 0xFF53:
		l.hdma.dstHi = v & 0x1F
	case 0xFF54:
		l.hdma.dstLo = v & 0xF0
	case 0xFF55:
		l.triggerHDMA(v)
	case 0xFF68:
		l.bgPalette.writeIndex(v)
	case 0xFF69:
		l.bgPalette.writeData(v)
	case 0xFF6A:
		l.objPalette.writeIndex(v)
	case 0xFF6B:
		l.objPalette.writeData(v)
	}
}

// BackgroundColorPalettes returns a copy of the eight background CGB
// palettes (4 colors each), for diagnostics/save-state.
func (l *LCD) BackgroundColorPalettes() [8][4]Color {
	var out [8][4]Color
	for p := 0; p < 8; p++ {
		for c := 0; c < 4; c++ {
			out[p][c] = l.bgPalette.color(uint8(p), uint8(c))
		}
	}
	return out
}

// SpriteColorPalettes returns a copy of the eight sprite CGB palettes.
func (l *LCD) SpriteColorPalettes() [8][4]Color {
	var out [8][4]Color
	for p := 0; p < 8; p++ {
		for c := 0; c < 4; c++ {
			out[p][c] = l.objPalette.color(uint8(p), uint8(c))
		}
	}
	return out
}

// VRAMDump returns a copy of both VRAM banks, for diagnostics.
func (l *LCD) VRAMDump() [2][0x2000]byte {
	return l.vram
}
