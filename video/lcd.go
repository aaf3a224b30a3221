// Package video implements the LCD controller: the background/window/
// sprite rendering pipeline, OAM and VRAM DMA, and the monochrome and
// color palette memories, per spec §4.7.
package video

import "github.com/thelolagemann/gomeboy/interrupt"

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	cyclesPerLine  = 456
	linesPerFrame  = 154
	mode2Cycles    = 80  // OAM search
	mode3Cycles    = 172 // pixel transfer, fixed-length approximation
	oamDMACycles   = 160
)

// LCDC control bits.
const (
	lcdcBGEnable      = 1 << 0
	lcdcSpriteEnable  = 1 << 1
	lcdcSpriteSize    = 1 << 2
	lcdcBGTileMap     = 1 << 3
	lcdcTileData      = 1 << 4
	lcdcWindowEnable  = 1 << 5
	lcdcWindowTileMap = 1 << 6
	lcdcDisplayOn     = 1 << 7
)

// STAT interrupt-enable bits and mode mask.
const (
	statLYCInterrupt  = 1 << 6
	statMode2Interrupt = 1 << 5
	statMode1Interrupt = 1 << 4
	statMode0Interrupt = 1 << 3
	statLYCEqual      = 1 << 2
)

// Mode identifies one of the four LCD pipeline stages.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeTransfer Mode = 3
)

// LCD owns VRAM, OAM, every LCD register, and the two DMA engines.
type LCD struct {
	lcdc uint8
	stat uint8 // interrupt-enable bits only; mode and LYC-equal are derived
	mode Mode

	scy, scx, ly, lyc, wy, wx uint8
	lx                        uint16

	vram     [2][0x2000]byte
	vramBank uint8
	oam      [160]byte

	bgp, obp0, obp1       monoPalette
	bgPalette, objPalette paletteRAM

	colorMode bool
	disabled  bool

	frame      [ScreenHeight][ScreenWidth]Color
	frameReady bool

	winLineInternal uint8

	irq *interrupt.Controller

	hdma hdmaState

	sourceReader func(addr uint16) uint8
	statLine     bool
	stolen       int
}

// New returns a power-up-state LCD. colorMode selects CGB palette and
// VRAM-bank-2 behavior.
func New(irq *interrupt.Controller, colorMode bool) *LCD {
	l := &LCD{irq: irq, colorMode: colorMode}
	l.lcdc = 0x91
	l.stat = 0x80
	l.bgp.write(0xFC)
	l.mode = ModeOAM
	return l
}

// SetSourceReader installs the callback used by HDMA to fetch source
// bytes from outside VRAM (ROM/WRAM/echo). OAM DMA is driven
// externally by the memory bus, which already has full address-space
// access, so it does not need this hook.
func (l *LCD) SetSourceReader(fn func(addr uint16) uint8) {
	l.sourceReader = fn
}

// Enabled reports whether the display is currently on.
func (l *LCD) Enabled() bool { return l.lcdc&lcdcDisplayOn != 0 }

func (l *LCD) bgEnabled() bool      { return l.lcdc&lcdcBGEnable != 0 }
func (l *LCD) windowEnabled() bool  { return l.lcdc&lcdcWindowEnable != 0 }
func (l *LCD) spritesEnabled() bool { return l.lcdc&lcdcSpriteEnable != 0 }
func (l *LCD) spriteSize() int {
	if l.lcdc&lcdcSpriteSize != 0 {
		return 16
	}
	return 8
}
func (l *LCD) bgTileMapBase() uint16 {
	if l.lcdc&lcdcBGTileMap != 0 {
		return 0x1C00
	}
	return 0x1800
}
func (l *LCD) windowTileMapBase() uint16 {
	if l.lcdc&lcdcWindowTileMap != 0 {
		return 0x1C00
	}
	return 0x1800
}
func (l *LCD) unsignedTileData() bool { return l.lcdc&lcdcTileData != 0 }

// LY returns the current scanline.
func (l *LCD) LY() uint8 { return l.ly }

// CurrentMode returns the current pipeline mode.
func (l *LCD) CurrentMode() Mode { return l.mode }

// HasFrame reports whether a complete frame is ready for the front
// end.
func (l *LCD) HasFrame() bool { return l.frameReady }

// Frame returns the completed frame and clears the ready flag.
func (l *LCD) Frame() [ScreenHeight][ScreenWidth]Color {
	l.frameReady = false
	return l.frame
}

// Clock advances the LCD by cycles T-cycles and returns the number of
// extra CPU cycles consumed by DMA since the previous call (H-Blank
// blocks copied during this call plus any general-purpose transfer
// triggered in between), per spec §4.9.
func (l *LCD) Clock(cycles int) int {
	if l.Enabled() {
		for i := 0; i < cycles; i++ {
			l.tick()
		}
	}
	stolen := l.stolen
	l.stolen = 0
	return stolen
}

func (l *LCD) tick() {
	l.lx++
	switch l.mode {
	case ModeOAM:
		if l.lx >= mode2Cycles {
			l.setMode(ModeTransfer)
		}
	case ModeTransfer:
		if l.lx >= mode2Cycles+mode3Cycles {
			l.renderLine()
			l.setMode(ModeHBlank)
			l.stepHBlankDMA()
		}
	case ModeHBlank:
		if l.lx >= cyclesPerLine {
			l.lx = 0
			l.ly++
			if l.ly == ScreenHeight {
				l.setMode(ModeVBlank)
				l.irq.Request(interrupt.VBlank)
				l.frameReady = true
			} else {
				l.setMode(ModeOAM)
			}
			l.checkLYC()
		}
	case ModeVBlank:
		if l.lx >= cyclesPerLine {
			l.lx = 0
			l.ly++
			if l.ly >= linesPerFrame {
				l.ly = 0
				l.winLineInternal = 0
				l.setMode(ModeOAM)
			}
			l.checkLYC()
		}
	}
}

func (l *LCD) setMode(m Mode) {
	l.mode = m
	l.updateStatLine()
}

func (l *LCD) checkLYC() {
	l.updateStatLine()
}

// updateStatLine recomputes the combined STAT interrupt line and
// requests an interrupt on a 0->1 edge, per spec §4.7's "edge
// triggered on mode changes and LY==LYC match".
func (l *LCD) updateStatLine() {
	line := false
	if l.ly == l.lyc {
		line = l.stat&statLYCInterrupt != 0
	}
	switch l.mode {
	case ModeHBlank:
		line = line || l.stat&statMode0Interrupt != 0
	case ModeVBlank:
		line = line || l.stat&statMode1Interrupt != 0
	case ModeOAM:
		line = line || l.stat&statMode2Interrupt != 0
	}
	if line && !l.statLine {
		l.irq.Request(interrupt.LCDStat)
	}
	l.statLine = line
}

func (l *LCD) statRegister() uint8 {
	v := l.stat | 0x80 | uint8(l.mode)
	if l.ly == l.lyc {
		v |= statLYCEqual
	}
	return v
}

// setEnabled implements the power-down/power-up transition described
// in spec §4.7: disabling resets LY/LX/mode and clears pending LCD
// interrupts; the pipeline freezes until re-enabled.
func (l *LCD) setEnabled(on bool) {
	wasOn := l.Enabled()
	if wasOn && !on {
		l.ly, l.lx = 0, 0
		l.mode = ModeHBlank
		l.statLine = false
		l.irq.Clear(interrupt.VBlank | interrupt.LCDStat)
	} else if !wasOn && on {
		l.lx = 0
		l.mode = ModeOAM
		l.checkLYC()
	}
}
