package cc2538

import (
	"encoding/binary"
	"sync"
)

// bridgePhy carries one request frame out and one response frame back.
// An i2c.Dev satisfies it directly; other phys adapt to it.
type bridgePhy interface {
	Tx(w, r []byte) error
}

// halBridge speaks the debug-stub protocol: single register accesses
// plus bulk transfers into a scratch window in board SRAM, where the
// stub stages DMA buffers for the engines. One bridge serves both
// accelerator units, so every exchange takes the transport lock.
type halBridge struct {
	phy bridgePhy
	cfg Config

	mu  sync.Mutex
	off int // scratch bump offset
}

func newHALBridge(phy bridgePhy, cfg Config) *halBridge {
	if cfg.Bridge.ScratchAddr == 0 {
		cfg.Bridge = DefaultConfig().Bridge
	}
	if cfg.Bridge.MaxChunk <= 0 || cfg.Bridge.MaxChunk > bridgeMaxPayload {
		cfg.Bridge.MaxChunk = DefaultConfig().Bridge.MaxChunk
	}
	return &halBridge{phy: phy, cfg: cfg}
}

func (h *halBridge) ReadRegister(addr uint32) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.roundTrip(bridgeOpReadReg, addr, nil, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (h *halBridge) WriteRegister(addr uint32, v uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := h.roundTrip(bridgeOpWriteReg, addr, buf[:], 0)
	return err
}

func (h *halBridge) StageIn(p []byte) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	addr, err := h.alloc(len(p))
	if err != nil {
		return 0, err
	}
	for off := 0; off < len(p); off += h.cfg.Bridge.MaxChunk {
		end := off + h.cfg.Bridge.MaxChunk
		if end > len(p) {
			end = len(p)
		}
		if _, err := h.roundTrip(bridgeOpWriteMem, addr+uint32(off), p[off:end], 0); err != nil {
			return 0, err
		}
	}
	return addr, nil
}

func (h *halBridge) StageOut(n int) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alloc(n)
}

func (h *halBridge) Collect(addr uint32, p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for off := 0; off < len(p); off += h.cfg.Bridge.MaxChunk {
		end := off + h.cfg.Bridge.MaxChunk
		if end > len(p) {
			end = len(p)
		}
		n := end - off
		resp, err := h.roundTrip(bridgeOpReadMem, addr+uint32(off), []byte{byte(n)}, n)
		if err != nil {
			return err
		}
		copy(p[off:end], resp)
	}
	return nil
}

func (h *halBridge) Unstage() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.off = 0
	return nil
}

// alloc reserves n scratch bytes and keeps the next slot word-aligned.
func (h *halBridge) alloc(n int) (uint32, error) {
	if h.off+n > h.cfg.Bridge.ScratchLen {
		return 0, errScratchFull
	}
	addr := h.cfg.Bridge.ScratchAddr + uint32(h.off)
	h.off += (n + 3) &^ 3
	return addr, nil
}

func (h *halBridge) roundTrip(op byte, addr uint32, payload []byte, respLen int) ([]byte, error) {
	req, err := encodeFrame(op, addr, payload)
	if err != nil {
		return nil, err
	}
	resp := make([]byte, bridgeRespOverhead+respLen)
	if err := h.phy.Tx(req, resp); err != nil {
		return nil, err
	}
	p, err := parseFrame(resp)
	if err != nil {
		return nil, err
	}
	if len(p) != respLen {
		return nil, errFrameShort
	}
	return p, nil
}
