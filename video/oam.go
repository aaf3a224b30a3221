package video

const maxSpritesPerLine = 10

type spriteEntry struct {
	y, x, tile, attr uint8
	oamIndex         int
}

// visibleSprites returns up to maxSpritesPerLine OAM entries that
// intersect the current scanline, in OAM order, per spec §4.7.
func (l *LCD) visibleSprites() []spriteEntry {
	height := l.spriteSize()
	var out []spriteEntry
	for i := 0; i < 40 && len(out) < maxSpritesPerLine; i++ {
		base := i * 4
		y := l.oam[base]
		screenY := int(y) - 16
		if int(l.ly) < screenY || int(l.ly) >= screenY+height {
			continue
		}
		out = append(out, spriteEntry{
			y:        y,
			x:        l.oam[base+1],
			tile:     l.oam[base+2],
			attr:     l.oam[base+3],
			oamIndex: i,
		})
	}
	return out
}

// renderSprites composites the scanline's visible sprites onto line,
// resolving priority per the per-pixel background priority signal and
// the CGB master sprite-priority bit (LCDC bit 0), per spec §4.7.
func (l *LCD) renderSprites(line *[ScreenWidth]pixel) {
	height := l.spriteSize()
	sprites := l.visibleSprites()
	masterPriority := l.colorMode && l.lcdc&lcdcBGEnable == 0

	var drawn [ScreenWidth]bool

	for _, s := range sprites {
		screenY := int(s.y) - 16
		screenX := int(s.x) - 8
		flipY := s.attr&0x40 != 0
		flipX := s.attr&0x20 != 0
		behindBG := s.attr&0x80 != 0

		row := int(l.ly) - screenY
		if flipY {
			row = height - 1 - row
		}

		tile := s.tile
		if height == 16 {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		bank := uint8(0)
		if l.colorMode {
			bank = (s.attr >> 3) & 0x01
		}

		for col := 0; col < 8; col++ {
			screenX := screenX + col
			if screenX < 0 || screenX >= ScreenWidth || drawn[screenX] {
				continue
			}
			px := uint8(col)
			if flipX {
				px = 7 - px
			}
			idx := l.tilePixel(tile, px, uint8(row), bank)
			if idx == 0 {
				continue
			}

			if !masterPriority {
				if behindBG && line[screenX].colorIdx != 0 {
					continue
				}
				if line[screenX].priority {
					continue
				}
			}

			drawn[screenX] = true
			line[screenX].color = l.resolveObjColor(s.attr, idx)
		}
	}
}

func (l *LCD) resolveObjColor(attr, idx uint8) Color {
	if l.colorMode {
		return l.objPalette.color(attr&0x07, idx)
	}
	if attr&0x10 != 0 {
		return l.obp1.shade(idx)
	}
	return l.obp0.shade(idx)
}
