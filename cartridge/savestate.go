package cartridge

import "github.com/thelolagemann/gomeboy/pkg/wire"

// SaveState writes the declared mapper kind followed by the mapper's
// own bank-select and side-device state, per spec §6's save-state
// ordering (mapper first).
func (c *Cartridge) SaveState(w *wire.Writer) {
	kind, _ := c.Header.Mapper()
	w.Uint8(uint8(kind))
	c.Mapper.SaveState(w)
}

// LoadState restores the mapper state written by SaveState. The
// stored kind is checked against the currently loaded cartridge's
// declared kind; a mismatch means the blob was produced by a
// different cartridge image and is returned as an Error of kind
// UnknownMapper (the package has no separate state-load kind), handled
// by the caller per spec §7.
func (c *Cartridge) LoadState(r *wire.Reader) error {
	stored := MapperKind(r.Uint8())
	kind, err := c.Header.Mapper()
	if err != nil {
		return err
	}
	if stored != kind {
		return newError(UnknownMapper, "save state mapper kind %d does not match cartridge kind %d", stored, kind)
	}
	c.Mapper.LoadState(r)
	return nil
}
