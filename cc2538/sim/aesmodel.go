package sim

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"math/big"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

func (d *Device) eraseKeys() {
	d.keys = [8][16]byte{}
	d.written = 0
}

// keyBytes returns the configured key width.
func (d *Device) keyBytes() int {
	switch d.reg[regs.AES_KEY_STORE_SIZE] & regs.AES_KEY_STORE_SIZE_Msk {
	case 0b10:
		return 24
	case 0b11:
		return 32
	}
	return 16
}

// selectKey validates the read-area selection against the written
// flags. A slot that was never written, or a double-width key whose
// second slot is missing, raises the read error flag.
func (d *Device) selectKey(v uint32) {
	slot := v & 0x7
	need := uint32(1) << slot
	if d.keyBytes() > 16 {
		need |= 1 << (slot + 1)
	}
	if d.written&need != need {
		d.intStat |= regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR
	}
}

// currentKey assembles the selected key from its slot, or slots for
// double-width keys.
func (d *Device) currentKey() ([]byte, bool) {
	slot := int(d.reg[regs.AES_KEY_STORE_READ_AREA] & 0x7)
	n := d.keyBytes()
	var buf [32]byte
	if d.written&(1<<slot) == 0 {
		return nil, false
	}
	copy(buf[:16], d.keys[slot][:])
	if n > 16 {
		if slot == 7 || d.written&(1<<(slot+1)) == 0 {
			return nil, false
		}
		copy(buf[16:], d.keys[slot+1][:])
	}
	return buf[:n], true
}

// stepKeyStore lands one staged slot image in the key RAM.
func (d *Device) stepKeyStore() {
	if d.pend[0] == nil {
		return
	}
	p, ok := d.takeIn()
	if !ok {
		return
	}
	area := d.reg[regs.AES_KEY_STORE_WRITE_AREA] & 0xFF
	for i := 0; i < 8 && len(p) >= 16; i++ {
		if area&(1<<i) == 0 {
			continue
		}
		copy(d.keys[i][:], p[:16])
		p = p[16:]
		d.written |= 1 << i
	}
	d.intStat |= regs.AES_CTRL_INT_RESULT_AV
}

// stepCipher advances the armed block-cipher operation: first the
// associated-data transfer when one is expected, then the payload.
func (d *Device) stepCipher() {
	if d.aesDone || !d.aesArmed {
		return
	}
	ctrl := d.reg[regs.AES_AES_CTRL]
	hasAuth := ctrl&(regs.AES_AES_CTRL_CCM|0x3<<regs.AES_AES_CTRL_GCM_Pos) != 0
	authLen := int(d.reg[regs.AES_AES_AUTH_LENGTH])

	if hasAuth && authLen > 0 && !d.aadDone {
		if d.pend[0] == nil {
			return
		}
		p, ok := d.takeIn()
		if !ok {
			return
		}
		d.aadBuf = p
		d.aadDone = true
		d.intStat |= regs.AES_CTRL_INT_DMA_IN_DONE
		return
	}

	clen := int(d.reg[regs.AES_AES_C_LENGTH_0])
	if clen > 0 && d.pend[0] == nil {
		return
	}

	key, ok := d.currentKey()
	if !ok {
		d.intStat |= regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR
		d.aesDone = true
		return
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		d.intStat |= regs.AES_CTRL_INT_STAT_KEY_ST_RD_ERR
		d.aesDone = true
		return
	}

	var in []byte
	if clen > 0 {
		if in, ok = d.takeIn(); !ok {
			d.aesDone = true
			return
		}
	}

	iv := d.ivBlock()
	encrypt := ctrl&regs.AES_AES_CTRL_DIRECTION_ENCRYPT != 0

	var out, tag []byte
	switch {
	case ctrl&regs.AES_AES_CTRL_CCM != 0:
		out, tag = ccmRun(block, ctrl, iv, d.aadBuf, in, encrypt)
	case ctrl&regs.AES_AES_CTRL_CTR != 0:
		out = ctrStream(block, iv, 0, ctrWidth(ctrl), in)
	case ctrl&regs.AES_AES_CTRL_CBC != 0:
		out = cbcRun(block, iv, in, encrypt)
	default:
		out = ecbRun(block, in, encrypt)
	}

	if t := d.pend[1]; t != nil {
		d.pend[1] = nil
		n := t.n
		if n > len(out) {
			n = len(out)
		}
		d.ramWrite(t.addr, out[:n])
	}
	if tag != nil {
		d.setTag(tag)
	}
	if ctrl&regs.AES_AES_CTRL_SAVE_CONTEXT != 0 {
		d.reg[regs.AES_AES_CTRL] |= regs.AES_AES_CTRL_SAVED_CONTEXT_RDY
	}
	d.intStat |= regs.AES_CTRL_INT_RESULT_AV | regs.AES_CTRL_INT_DMA_IN_DONE
	d.aesDone = true
}

func (d *Device) ivBlock() []byte {
	iv := make([]byte, 16)
	for i, r := range [4]uint32{regs.AES_AES_IV_0, regs.AES_AES_IV_1, regs.AES_AES_IV_2, regs.AES_AES_IV_3} {
		binary.LittleEndian.PutUint32(iv[4*i:], d.reg[r])
	}
	return iv
}

func (d *Device) setTag(t []byte) {
	var buf [16]byte
	copy(buf[:], t)
	for i, r := range [4]uint32{regs.AES_AES_TAG_OUT_0, regs.AES_AES_TAG_OUT_1, regs.AES_AES_TAG_OUT_2, regs.AES_AES_TAG_OUT_3} {
		d.reg[r] = binary.LittleEndian.Uint32(buf[4*i:])
	}
}

// ctrWidth reads the counter width field as a byte count.
func ctrWidth(ctrl uint32) int {
	return 4 * (int(ctrl>>regs.AES_AES_CTRL_CTR_WIDTH_Pos&0x3) + 1)
}

// counterBlock returns the IV block with i added into its trailing
// w-byte big-endian counter, wrapping within the counter width.
func counterBlock(iv []byte, i uint64, w int) []byte {
	blk := make([]byte, 16)
	copy(blk, iv)
	ctr := new(big.Int).SetBytes(blk[16-w:])
	ctr.Add(ctr, new(big.Int).SetUint64(i))
	ctr.Mod(ctr, new(big.Int).Lsh(big.NewInt(1), uint(8*w)))
	ctr.FillBytes(blk[16-w:])
	return blk
}

// ctrStream XORs in against the keystream starting at counter offset
// start.
func ctrStream(b cipher.Block, iv []byte, start uint64, w int, in []byte) []byte {
	out := make([]byte, len(in))
	var ks [16]byte
	for off := 0; off < len(in); off += 16 {
		b.Encrypt(ks[:], counterBlock(iv, start+uint64(off/16), w))
		for i := off; i < len(in) && i < off+16; i++ {
			out[i] = in[i] ^ ks[i-off]
		}
	}
	return out
}

func cbcRun(b cipher.Block, iv, in []byte, encrypt bool) []byte {
	n := len(in) &^ 15
	out := make([]byte, len(in))
	if n == 0 {
		return out
	}
	if encrypt {
		cipher.NewCBCEncrypter(b, iv).CryptBlocks(out[:n], in[:n])
	} else {
		cipher.NewCBCDecrypter(b, iv).CryptBlocks(out[:n], in[:n])
	}
	return out
}

func ecbRun(b cipher.Block, in []byte, encrypt bool) []byte {
	out := make([]byte, len(in))
	for off := 0; off+16 <= len(in); off += 16 {
		if encrypt {
			b.Encrypt(out[off:off+16], in[off:off+16])
		} else {
			b.Decrypt(out[off:off+16], in[off:off+16])
		}
	}
	return out
}

// ccmRun performs the combined counter and CBC-MAC pass. The driver
// seeds the IV block as A0: the l field, the nonce and a zeroed
// counter, so the payload keystream starts one block up.
func ccmRun(b cipher.Block, ctrl uint32, iv, aad, in []byte, encrypt bool) (out, tag []byte) {
	l := int(ctrl>>regs.AES_AES_CTRL_CCM_L_Pos&0x7) + 1
	m := 2*int(ctrl>>regs.AES_AES_CTRL_CCM_M_Pos&0x7) + 2
	w := ctrWidth(ctrl)

	out = ctrStream(b, iv, 1, w, in)
	msg := in
	if !encrypt {
		msg = out
	}
	tag = ccmMAC(b, iv[1:16-l], aad, msg, l, m)
	var s0 [16]byte
	b.Encrypt(s0[:], counterBlock(iv, 0, w))
	for i := range tag {
		tag[i] ^= s0[i]
	}
	return out, tag
}

// ccmMAC computes the CBC-MAC over the B0 block, the length-prefixed
// associated data and the message.
func ccmMAC(b cipher.Block, nonce, aad, msg []byte, l, m int) []byte {
	mac := make([]byte, 16)
	absorb := func(blk []byte) {
		for i := range blk {
			mac[i] ^= blk[i]
		}
		b.Encrypt(mac, mac)
	}

	b0 := make([]byte, 16)
	b0[0] = byte(l - 1)
	if len(aad) > 0 {
		b0[0] |= 0x40
	}
	b0[0] |= byte((m - 2) / 2 << 3)
	copy(b0[1:], nonce)
	for i := 0; i < l; i++ {
		b0[15-i] = byte(len(msg) >> (8 * i))
	}
	absorb(b0)

	if len(aad) > 0 {
		hdr := append([]byte{byte(len(aad) >> 8), byte(len(aad))}, aad...)
		for len(hdr)%16 != 0 {
			hdr = append(hdr, 0)
		}
		for off := 0; off < len(hdr); off += 16 {
			absorb(hdr[off : off+16])
		}
	}
	for off := 0; off < len(msg); off += 16 {
		blk := make([]byte, 16)
		copy(blk, msg[off:])
		absorb(blk)
	}
	return mac
}
