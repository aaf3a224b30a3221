package video

// bgAttr decodes a CGB background/window tile attribute byte, stored
// in VRAM bank 1 at the same offset as the tile index in bank 0.
type bgAttr struct {
	palette  uint8
	bank     uint8
	flipX    bool
	flipY    bool
	priority bool
}

func decodeBGAttr(v uint8) bgAttr {
	return bgAttr{
		palette:  v & 0x07,
		bank:     (v >> 3) & 0x01,
		flipX:    v&0x20 != 0,
		flipY:    v&0x40 != 0,
		priority: v&0x80 != 0,
	}
}

// pixel is an intermediate compositing result: the 2-bit color index
// into its palette (0 is always "transparent" for priority purposes,
// per spec §4.7) and the resolved 15-bit color.
type pixel struct {
	colorIdx uint8
	color    Color
	priority bool // true if background/window should win over sprites
}

// renderLine produces one 160-pixel scanline for l.ly, compositing
// background, window, and sprites in that order.
func (l *LCD) renderLine() {
	if l.ly >= ScreenHeight {
		return
	}
	var line [ScreenWidth]pixel

	if l.bgEnabled() || l.colorMode {
		l.renderBackground(&line)
	}
	if l.windowEnabled() && l.bgEnabled() || (l.colorMode && l.windowEnabled()) {
		l.renderWindow(&line)
	}
	if l.spritesEnabled() {
		l.renderSprites(&line)
	}

	for x := 0; x < ScreenWidth; x++ {
		l.frame[l.ly][x] = line[x].color
	}
}

func (l *LCD) renderBackground(line *[ScreenWidth]pixel) {
	mapBase := l.bgTileMapBase()
	y := l.scy + l.ly
	tileRow := uint16(y/8) * 32

	for x := 0; x < ScreenWidth; x++ {
		bgX := l.scx + uint8(x)
		tileCol := uint16(bgX / 8)
		mapAddr := mapBase + tileRow + tileCol

		tileIdx := l.ReadVRAMBank(0, mapAddr)
		attr := bgAttr{}
		if l.colorMode {
			attr = decodeBGAttr(l.ReadVRAMBank(1, mapAddr))
		}

		px, py := bgX%8, y%8
		if attr.flipX {
			px = 7 - px
		}
		if attr.flipY {
			py = 7 - py
		}

		idx := l.tilePixel(tileIdx, px, py, attr.bank)
		color := l.resolveBGColor(attr.palette, idx)
		line[x] = pixel{colorIdx: idx, color: color, priority: idx != 0 && attr.priority}
	}
}

func (l *LCD) renderWindow(line *[ScreenWidth]pixel) {
	if l.ly < l.wy {
		return
	}
	wx := int(l.wx) - 7
	if wx >= ScreenWidth {
		return
	}
	mapBase := l.windowTileMapBase()
	tileRow := uint16(l.winLineInternal/8) * 32
	drew := false

	for x := 0; x < ScreenWidth; x++ {
		if x < wx {
			continue
		}
		drew = true
		winX := uint8(x - wx)
		tileCol := uint16(winX / 8)
		mapAddr := mapBase + tileRow + tileCol

		tileIdx := l.ReadVRAMBank(0, mapAddr)
		attr := bgAttr{}
		if l.colorMode {
			attr = decodeBGAttr(l.ReadVRAMBank(1, mapAddr))
		}

		px, py := winX%8, l.winLineInternal%8
		if attr.flipX {
			px = 7 - px
		}
		if attr.flipY {
			py = 7 - py
		}

		idx := l.tilePixel(tileIdx, px, py, attr.bank)
		color := l.resolveBGColor(attr.palette, idx)
		line[x] = pixel{colorIdx: idx, color: color, priority: idx != 0 && attr.priority}
	}
	if drew {
		l.winLineInternal++
	}
}

// tilePixel returns the 2-bit color index for tile tileIdx at pixel
// (px,py), decoding the signed/unsigned tile-data addressing mode.
func (l *LCD) tilePixel(tileIdx uint8, px, py uint8, bank uint8) uint8 {
	var base uint16
	if l.unsignedTileData() {
		base = 0x0000 + uint16(tileIdx)*16
	} else {
		base = 0x1000 + uint16(int16(int8(tileIdx)))*16
	}
	addr := base + uint16(py)*2
	lo := l.ReadVRAMBank(bank, addr)
	hi := l.ReadVRAMBank(bank, addr+1)
	bit := 7 - px
	return ((hi>>bit)&1)<<1 | (lo>>bit)&1
}

func (l *LCD) resolveBGColor(palette, idx uint8) Color {
	if l.colorMode {
		return l.bgPalette.color(palette, idx)
	}
	return l.bgp.shade(idx)
}
