package memory

import "github.com/thelolagemann/gomeboy/pkg/wire"

// wram is the CGB's 8 banks of 4 KiB work RAM. Bank 0 is always
// mapped at 0xC000-0xCFFF; the bank selected by 0xFF70 (aliasing 0 to
// 1) is mapped at 0xD000-0xDFFF.
type wram struct {
	banks [8][0x1000]byte
	bank  uint8
}

func newWRAM() *wram {
	return &wram{bank: 1}
}

func (w *wram) readLow(addr uint16) uint8 {
	return w.banks[0][addr&0x0FFF]
}

func (w *wram) writeLow(addr uint16, v uint8) {
	w.banks[0][addr&0x0FFF] = v
}

func (w *wram) readHigh(addr uint16) uint8 {
	return w.banks[w.bank][addr&0x0FFF]
}

func (w *wram) writeHigh(addr uint16, v uint8) {
	w.banks[w.bank][addr&0x0FFF] = v
}

func (w *wram) readSelect() uint8 {
	return w.bank | 0xF8
}

func (w *wram) writeSelect(v uint8) {
	w.bank = v & 0x07
	if w.bank == 0 {
		w.bank = 1
	}
}

func (w *wram) saveState(ww *wire.Writer) {
	for i := range w.banks {
		ww.Bytes(w.banks[i][:])
	}
	ww.Uint8(w.bank)
}

func (w *wram) loadState(r *wire.Reader) {
	for i := range w.banks {
		r.Bytes(w.banks[i][:])
	}
	w.bank = r.Uint8()
}
