package cc2538

// halDebug implements debug logging for a HAL.
type halDebug struct {
	id   string
	l    Logger
	next HAL
}

func (h *halDebug) ReadRegister(addr uint32) (uint32, error) {
	v, err := h.next.ReadRegister(addr)
	h.l.Printf("%5s: rd %08x -> %08x (%v)", h.id, addr, v, err)
	return v, err
}

func (h *halDebug) WriteRegister(addr uint32, v uint32) error {
	err := h.next.WriteRegister(addr, v)
	h.l.Printf("%5s: wr %08x <- %08x (%v)", h.id, addr, v, err)
	return err
}

func (h *halDebug) StageIn(p []byte) (uint32, error) {
	addr, err := h.next.StageIn(p)
	h.l.Printf("%5s: stage in %d B at %08x (%v)\n%s", h.id, len(p), addr, err, hexDump(p))
	return addr, err
}

func (h *halDebug) StageOut(n int) (uint32, error) {
	addr, err := h.next.StageOut(n)
	h.l.Printf("%5s: stage out %d B at %08x (%v)", h.id, n, addr, err)
	return addr, err
}

func (h *halDebug) Collect(addr uint32, p []byte) error {
	err := h.next.Collect(addr, p)
	h.l.Printf("%5s: collect %d B from %08x (%v)\n%s", h.id, len(p), addr, err, hexDump(p))
	return err
}

func (h *halDebug) Unstage() error {
	err := h.next.Unstage()
	h.l.Printf("%5s: unstage (%v)", h.id, err)
	return err
}
