package video

import "github.com/thelolagemann/gomeboy/pkg/wire"

// SaveState writes every register, VRAM bank, OAM byte and palette
// entry needed to resume rendering from the exact point Clock last
// returned to. The in-flight frame buffer is included so a round trip
// reproduces update_screen's next payload exactly, per spec §8's
// save/load round-trip law; the per-Clock-call DMA-steal counter is
// not, since it is always zero between calls.
func (l *LCD) SaveState(w *wire.Writer) {
	w.Uint8(l.lcdc)
	w.Uint8(l.stat)
	w.Uint8(uint8(l.mode))
	w.Uint8(l.scy)
	w.Uint8(l.scx)
	w.Uint8(l.ly)
	w.Uint8(l.lyc)
	w.Uint8(l.wy)
	w.Uint8(l.wx)
	w.Uint16(l.lx)

	w.Bytes(l.vram[0][:])
	w.Bytes(l.vram[1][:])
	w.Uint8(l.vramBank)
	w.Bytes(l.oam[:])

	w.Uint8(l.bgp.raw)
	w.Uint8(l.obp0.raw)
	w.Uint8(l.obp1.raw)
	w.Bytes(l.bgPalette.raw[:])
	w.Uint8(l.bgPalette.index)
	w.Bool(l.bgPalette.auto)
	w.Bytes(l.objPalette.raw[:])
	w.Uint8(l.objPalette.index)
	w.Bool(l.objPalette.auto)

	w.Bool(l.colorMode)
	w.Bool(l.disabled)
	w.Bool(l.statLine)
	w.Uint8(l.winLineInternal)
	w.Bool(l.frameReady)
	for _, row := range l.frame {
		for _, c := range row {
			w.Uint16(uint16(c))
		}
	}

	w.Uint8(l.hdma.srcHi)
	w.Uint8(l.hdma.srcLo)
	w.Uint8(l.hdma.dstHi)
	w.Uint8(l.hdma.dstLo)
	w.Uint8(l.hdma.length)
	w.Bool(l.hdma.active)
	w.Bool(l.hdma.hblank)
}

// LoadState restores every field SaveState wrote.
func (l *LCD) LoadState(r *wire.Reader) {
	l.lcdc = r.Uint8()
	l.stat = r.Uint8()
	l.mode = Mode(r.Uint8())
	l.scy = r.Uint8()
	l.scx = r.Uint8()
	l.ly = r.Uint8()
	l.lyc = r.Uint8()
	l.wy = r.Uint8()
	l.wx = r.Uint8()
	l.lx = r.Uint16()

	r.Bytes(l.vram[0][:])
	r.Bytes(l.vram[1][:])
	l.vramBank = r.Uint8()
	r.Bytes(l.oam[:])

	l.bgp.raw = r.Uint8()
	l.obp0.raw = r.Uint8()
	l.obp1.raw = r.Uint8()
	r.Bytes(l.bgPalette.raw[:])
	l.bgPalette.index = r.Uint8()
	l.bgPalette.auto = r.Bool()
	r.Bytes(l.objPalette.raw[:])
	l.objPalette.index = r.Uint8()
	l.objPalette.auto = r.Bool()

	l.colorMode = r.Bool()
	l.disabled = r.Bool()
	l.statLine = r.Bool()
	l.winLineInternal = r.Uint8()
	l.frameReady = r.Bool()
	for i := range l.frame {
		for j := range l.frame[i] {
			l.frame[i][j] = Color(r.Uint16())
		}
	}

	l.hdma.srcHi = r.Uint8()
	l.hdma.srcLo = r.Uint8()
	l.hdma.dstHi = r.Uint8()
	l.hdma.dstLo = r.Uint8()
	l.hdma.length = r.Uint8()
	l.hdma.active = r.Bool()
	l.hdma.hblank = r.Bool()
}
