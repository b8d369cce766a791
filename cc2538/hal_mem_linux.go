//go:build linux

package cc2538

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"periph.io/x/host/v3/pmem"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

const (
	memAESWindow = 0x800
	memPKAWindow = 0x100
	memArenaLen  = 4096
)

var errAddrRange = errors.New("cc2538: address outside mapped windows")

// NewMemDev drives the accelerator through direct physical mappings,
// for hosts that expose the chip's bus via /dev/mem. DMA buffers come
// from a physically contiguous allocation so the engines can master
// them directly.
func NewMemDev(ctx context.Context, cfg Config) (*Dev, io.Closer, error) {
	h := &halMem{}
	for _, m := range []struct {
		view **pmem.View
		base uint64
		size int
	}{
		{&h.aesView, regs.AES_BASE, memAESWindow},
		{&h.pkaView, regs.PKA_BASE, memPKAWindow},
		{&h.ramView, regs.PKA_RAM, regs.PKA_RAM_LEN},
	} {
		v, err := pmem.Map(m.base, m.size)
		if err != nil {
			h.Close()
			return nil, nil, fmt.Errorf("cc2538: map 0x%08x: %w", m.base, err)
		}
		*m.view = v
	}
	h.aes = h.aesView.Uint32()
	h.pka = h.pkaView.Uint32()
	h.ram = h.ramView.Uint32()

	arena, err := pmem.Alloc(memArenaLen)
	if err != nil {
		h.Close()
		return nil, nil, fmt.Errorf("cc2538: alloc dma arena: %w", err)
	}
	h.arena = arena
	h.buf = arena.Bytes()
	h.phys = uint32(arena.PhysAddr())

	dev, err := New(ctx, h, cfg)
	if err != nil {
		h.Close()
		return nil, nil, err
	}
	return dev, h, nil
}

// halMem implements the register and staging primitives on memory
// mapped windows. Register words are accessed atomically so the
// compiler cannot tear or elide the bus transactions.
type halMem struct {
	aesView *pmem.View
	pkaView *pmem.View
	ramView *pmem.View

	aes []uint32
	pka []uint32
	ram []uint32

	arena *pmem.MemAlloc
	buf   []byte
	phys  uint32
	off   int
}

func (h *halMem) ReadRegister(addr uint32) (uint32, error) {
	w, err := h.word(addr)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(w), nil
}

func (h *halMem) WriteRegister(addr uint32, v uint32) error {
	w, err := h.word(addr)
	if err != nil {
		return err
	}
	atomic.StoreUint32(w, v)
	return nil
}

func (h *halMem) StageIn(p []byte) (uint32, error) {
	addr, err := h.alloc(len(p))
	if err != nil {
		return 0, err
	}
	copy(h.buf[addr-h.phys:], p)
	return addr, nil
}

func (h *halMem) StageOut(n int) (uint32, error) {
	return h.alloc(n)
}

func (h *halMem) Collect(addr uint32, p []byte) error {
	off := int(addr) - int(h.phys)
	if off < 0 || off+len(p) > len(h.buf) {
		return errAddrRange
	}
	copy(p, h.buf[off:])
	return nil
}

func (h *halMem) Unstage() error {
	h.off = 0
	return nil
}

func (h *halMem) alloc(n int) (uint32, error) {
	if h.off+n > len(h.buf) {
		return 0, errScratchFull
	}
	addr := h.phys + uint32(h.off)
	h.off += (n + 3) &^ 3
	return addr, nil
}

func (h *halMem) word(addr uint32) (*uint32, error) {
	switch {
	case addr >= regs.AES_BASE && addr < regs.AES_BASE+memAESWindow:
		return &h.aes[(addr-regs.AES_BASE)/4], nil
	case addr >= regs.PKA_BASE && addr < regs.PKA_BASE+memPKAWindow:
		return &h.pka[(addr-regs.PKA_BASE)/4], nil
	case addr >= regs.PKA_RAM && addr < regs.PKA_RAM+regs.PKA_RAM_LEN:
		return &h.ram[(addr-regs.PKA_RAM)/4], nil
	}
	return nil, errAddrRange
}

func (h *halMem) Close() error {
	var first error
	if h.arena != nil {
		if err := h.arena.Close(); err != nil {
			first = err
		}
	}
	for _, v := range []*pmem.View{h.ramView, h.pkaView, h.aesView} {
		if v == nil {
			continue
		}
		if err := v.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
