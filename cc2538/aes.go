package cc2538

import (
	"context"
	"encoding/binary"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// maxDMA is the single-transfer limit of the 16-bit DMA length
// registers.
const maxDMA = 0xFFFF

// aesIntFlags covers every event and error flag of the AES/SHA unit.
const aesIntFlags = regs.AES_CTRL_INT_DMA_IN_DONE | regs.AES_CTRL_INT_RESULT_AV |
	regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR | regs.AES_CTRL_INT_STAT_KEY_ST_WR_ERR |
	regs.AES_CTRL_INT_STAT_DMA_BUS_ERR

type aesMode uint8

const (
	modeNone aesMode = iota
	modeECB
	modeCBC
	modeCTR
	modeCBCMAC
	modeGCM
	modeCCM
)

// AESEngine drives the block-cipher side of the AES/SHA unit.
//
// A mode is selected at most once per engine handle; switching modes
// means releasing the engine and acquiring a fresh one. The key store
// is shared by all modes and is managed here.
//
// An AESEngine must not be shared between goroutines.
type AESEngine struct {
	d    *Dev
	mode aesMode
}

// Release returns the AES/SHA unit. The engine and any mode handle
// derived from it are unusable afterwards.
func (e *AESEngine) Release() {
	if e.d != nil {
		releaseToken(e.d.aesTok)
		e.d = nil
	}
}

func (e *AESEngine) dev() (*Dev, error) {
	if e.d == nil {
		return nil, ErrReleased
	}
	return e.d, nil
}

// checkIdle fails fast when the unit already has an algorithm selected.
func (e *AESEngine) checkIdle() error {
	v, err := e.d.hal.ReadRegister(regs.AES_CTRL_ALG_SEL)
	if err != nil {
		return err
	}
	if v != 0 {
		return ErrBusy
	}
	return nil
}

func (e *AESEngine) selectMode(m aesMode) error {
	if e.d == nil {
		return ErrReleased
	}
	if e.mode != modeNone {
		return ErrModeSelected
	}
	e.mode = m
	return nil
}

// ECB selects electronic-codebook mode.
func (e *AESEngine) ECB() (*ECBMode, error) {
	if err := e.selectMode(modeECB); err != nil {
		return nil, err
	}
	return &ECBMode{e: e}, nil
}

// CBC selects cipher-block-chaining mode.
func (e *AESEngine) CBC() (*CBCMode, error) {
	if err := e.selectMode(modeCBC); err != nil {
		return nil, err
	}
	return &CBCMode{e: e}, nil
}

// CTR selects counter mode.
func (e *AESEngine) CTR() (*CTRMode, error) {
	if err := e.selectMode(modeCTR); err != nil {
		return nil, err
	}
	return &CTRMode{e: e}, nil
}

// CBCMAC selects CBC-MAC mode.
func (e *AESEngine) CBCMAC() (*CBCMACMode, error) {
	if err := e.selectMode(modeCBCMAC); err != nil {
		return nil, err
	}
	return &CBCMACMode{e: e}, nil
}

// GCM selects Galois/counter mode.
func (e *AESEngine) GCM() (*GCMMode, error) {
	if err := e.selectMode(modeGCM); err != nil {
		return nil, err
	}
	return &GCMMode{e: e}, nil
}

// CCM selects counter-with-CBC-MAC mode.
func (e *AESEngine) CCM() (*CCMMode, error) {
	if err := e.selectMode(modeCCM); err != nil {
		return nil, err
	}
	return &CCMMode{e: e}, nil
}

// LoadKey streams packed key material into the hardware key store.
//
// The key store holds keys of a single size: when the size register has
// to change, the hardware erases every stored key first. Slots named by
// km are rewritten either way.
func (e *AESEngine) LoadKey(ctx context.Context, km *KeyMaterial) error {
	d, err := e.dev()
	if err != nil {
		return err
	}
	if err := e.checkIdle(); err != nil {
		return err
	}
	if err := d.aesWorkaround(); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_CTRL_ALG_SEL, regs.AES_CTRL_ALG_SEL_KEYSTORE); err != nil {
		return err
	}
	return d.aesFinish(e.loadKey(ctx, d, km))
}

func (e *AESEngine) loadKey(ctx context.Context, d *Dev, km *KeyMaterial) error {
	if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CLR, regs.AES_CTRL_INT_RESULT_AV); err != nil {
		return err
	}

	v, err := d.hal.ReadRegister(regs.AES_KEY_STORE_SIZE)
	if err != nil {
		return err
	}
	if v&regs.AES_KEY_STORE_SIZE_Msk != uint32(km.size) {
		v = v&^uint32(regs.AES_KEY_STORE_SIZE_Msk) | uint32(km.size)
		if err := d.hal.WriteRegister(regs.AES_KEY_STORE_SIZE, v); err != nil {
			return err
		}
	}

	// Deassert stale written flags for the target slots, then open them
	// for writing.
	areas := km.Slots()
	if err := d.hal.WriteRegister(regs.AES_KEY_STORE_WRITTEN_AREA, areas); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_KEY_STORE_WRITE_AREA, areas); err != nil {
		return err
	}

	addr, err := d.hal.StageIn(km.packed())
	if err != nil {
		return err
	}
	if err := d.dmaIn(addr, int(km.count)<<4); err != nil {
		return err
	}

	stat, err := d.waitFlags(ctx, regs.AES_CTRL_INT_STAT,
		regs.AES_CTRL_INT_RESULT_AV|regs.AES_CTRL_INT_STAT_DMA_BUS_ERR|regs.AES_CTRL_INT_STAT_KEY_ST_WR_ERR)
	if err != nil {
		return err
	}
	switch {
	case stat&regs.AES_CTRL_INT_STAT_DMA_BUS_ERR != 0:
		return ErrDMABus
	case stat&regs.AES_CTRL_INT_STAT_KEY_ST_WR_ERR != 0:
		return ErrKeyStoreWrite
	}

	wr, err := d.hal.ReadRegister(regs.AES_KEY_STORE_WRITTEN_AREA)
	if err != nil {
		return err
	}
	if wr&areas != areas {
		return ErrKeyNotWritten
	}
	return nil
}

// authCrypt runs one pass of the key-load/IV/control/DMA sequence every
// block-cipher mode is built on. setCtrl writes the mode's control word
// once the key is live; the CCM and GCM bits it sets decide whether the
// associated-data phase runs. A non-empty tag is filled from the
// tag-out registers once the saved context is ready.
func (e *AESEngine) authCrypt(ctx context.Context, setCtrl func() error, keyIndex uint32, iv, adata, in, out, tag []byte) error {
	d, err := e.dev()
	if err != nil {
		return err
	}
	if len(in) > maxDMA || len(adata) > maxDMA {
		return ErrDataTooLong
	}
	if err := e.checkIdle(); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_CTRL_ALG_SEL, regs.AES_CTRL_ALG_SEL_AES); err != nil {
		return err
	}
	return d.aesFinish(e.runAuthCrypt(ctx, d, setCtrl, keyIndex, iv, adata, in, out, tag))
}

func (e *AESEngine) runAuthCrypt(ctx context.Context, d *Dev, setCtrl func() error, keyIndex uint32, iv, adata, in, out, tag []byte) error {
	if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CLR, regs.AES_CTRL_INT_DMA_IN_DONE|regs.AES_CTRL_INT_RESULT_AV); err != nil {
		return err
	}

	// Point the engine at the key slot and wait for the preload.
	if err := d.hal.WriteRegister(regs.AES_KEY_STORE_READ_AREA, keyIndex); err != nil {
		return err
	}
	if err := d.waitClear(ctx, regs.AES_KEY_STORE_READ_AREA, regs.AES_KEY_STORE_READ_AREA_BUSY, 0); err != nil {
		return err
	}
	stat, err := d.hal.ReadRegister(regs.AES_CTRL_INT_STAT)
	if err != nil {
		return err
	}
	if stat&regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR != 0 {
		return ErrKeyStoreRead
	}

	if len(iv) > 0 {
		if err := e.writeIV(iv); err != nil {
			return err
		}
	}
	if err := setCtrl(); err != nil {
		return err
	}

	if err := d.hal.WriteRegister(regs.AES_AES_C_LENGTH_0, uint32(len(in))); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_AES_C_LENGTH_1, 0); err != nil {
		return err
	}

	ctrl, err := d.hal.ReadRegister(regs.AES_AES_CTRL)
	if err != nil {
		return err
	}
	if ctrl&(regs.AES_AES_CTRL_CCM|0x3<<regs.AES_AES_CTRL_GCM_Pos) != 0 {
		if err := d.hal.WriteRegister(regs.AES_AES_AUTH_LENGTH, uint32(len(adata))); err != nil {
			return err
		}
		if len(adata) > 0 {
			addr, err := d.hal.StageIn(adata)
			if err != nil {
				return err
			}
			if err := d.dmaIn(addr, len(adata)); err != nil {
				return err
			}
			stat, err := d.waitFlags(ctx, regs.AES_CTRL_INT_STAT,
				regs.AES_CTRL_INT_DMA_IN_DONE|regs.AES_CTRL_INT_STAT_DMA_BUS_ERR)
			if err != nil {
				return err
			}
			if stat&regs.AES_CTRL_INT_STAT_DMA_BUS_ERR != 0 {
				return ErrDMABus
			}
			if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CLR, regs.AES_CTRL_INT_DMA_IN_DONE); err != nil {
				return err
			}
		}
	}

	var outAddr uint32
	if len(in) > 0 {
		inAddr, err := d.hal.StageIn(in)
		if err != nil {
			return err
		}
		if len(out) > 0 {
			if outAddr, err = d.hal.StageOut(len(out)); err != nil {
				return err
			}
		}
		if err := d.dmaIn(inAddr, len(in)); err != nil {
			return err
		}
		if len(out) > 0 {
			if err := d.dmaOut(outAddr, len(out)); err != nil {
				return err
			}
		}
	}

	stat, err = d.waitFlags(ctx, regs.AES_CTRL_INT_STAT,
		regs.AES_CTRL_INT_RESULT_AV|regs.AES_CTRL_INT_STAT_DMA_BUS_ERR|
			regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR|regs.AES_CTRL_INT_STAT_KEY_ST_WR_ERR)
	if err != nil {
		return err
	}
	switch {
	case stat&regs.AES_CTRL_INT_STAT_DMA_BUS_ERR != 0:
		return ErrDMABus
	case stat&regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR != 0:
		return ErrKeyStoreRead
	case stat&regs.AES_CTRL_INT_STAT_KEY_ST_WR_ERR != 0:
		return ErrKeyStoreWrite
	}

	if len(out) > 0 {
		if err := d.hal.Collect(outAddr, out); err != nil {
			return err
		}
	}
	if len(tag) > 0 {
		if _, err := d.waitFlags(ctx, regs.AES_AES_CTRL, regs.AES_AES_CTRL_SAVED_CONTEXT_RDY); err != nil {
			return err
		}
		if err := e.readTag(tag); err != nil {
			return err
		}
	}
	return nil
}

// writeIV loads a 16-byte IV into the IV registers, little-endian words.
func (e *AESEngine) writeIV(iv []byte) error {
	if len(iv) != 16 {
		return ErrIVLength
	}
	for i, r := range [4]uint32{regs.AES_AES_IV_0, regs.AES_AES_IV_1, regs.AES_AES_IV_2, regs.AES_AES_IV_3} {
		if err := e.d.hal.WriteRegister(r, binary.LittleEndian.Uint32(iv[4*i:])); err != nil {
			return err
		}
	}
	return nil
}

// readTag copies up to 16 tag bytes out of the tag registers, leftmost
// first.
func (e *AESEngine) readTag(tag []byte) error {
	var buf [16]byte
	for i, r := range [4]uint32{regs.AES_AES_TAG_OUT_0, regs.AES_AES_TAG_OUT_1, regs.AES_AES_TAG_OUT_2, regs.AES_AES_TAG_OUT_3} {
		v, err := e.d.hal.ReadRegister(r)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf[4*i:], v)
	}
	copy(tag, buf[:])
	return nil
}

// aesWorkaround re-arms the unit's interrupt config, which the hardware
// does not retain across deep sleep.
func (d *Dev) aesWorkaround() error {
	if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CFG, regs.AES_CTRL_INT_CFG_LEVEL); err != nil {
		return err
	}
	return d.hal.WriteRegister(regs.AES_CTRL_INT_EN, regs.AES_CTRL_INT_DMA_IN_DONE|regs.AES_CTRL_INT_RESULT_AV)
}

// dmaIn hands the unit n input bytes staged at addr through channel 0.
func (d *Dev) dmaIn(addr uint32, n int) error {
	if err := d.hal.WriteRegister(regs.AES_DMAC_CH0_CTRL, regs.AES_DMAC_CHx_CTRL_EN); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_DMAC_CH0_EXTADDR, addr); err != nil {
		return err
	}
	return d.hal.WriteRegister(regs.AES_DMAC_CH0_DMALENGTH, uint32(n))
}

// dmaOut points channel 1 at n bytes of staged output space at addr.
func (d *Dev) dmaOut(addr uint32, n int) error {
	if err := d.hal.WriteRegister(regs.AES_DMAC_CH1_CTRL, regs.AES_DMAC_CHx_CTRL_EN); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_DMAC_CH1_EXTADDR, addr); err != nil {
		return err
	}
	return d.hal.WriteRegister(regs.AES_DMAC_CH1_DMALENGTH, uint32(n))
}

// aesFinish releases staged buffers and parks the unit: event flags
// cleared, algorithm deselected, mode bits zeroed. The first error wins.
func (d *Dev) aesFinish(err error) error {
	if uerr := d.hal.Unstage(); err == nil {
		err = uerr
	}
	park := []struct{ addr, v uint32 }{
		{regs.AES_CTRL_INT_CLR, aesIntFlags},
		{regs.AES_CTRL_ALG_SEL, 0},
		{regs.AES_AES_CTRL, 0},
	}
	for _, p := range park {
		if werr := d.hal.WriteRegister(p.addr, p.v); err == nil {
			err = werr
		}
	}
	return err
}
