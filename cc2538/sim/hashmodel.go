package sim

import (
	"encoding/binary"
	"math/bits"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// The digest registers expose the running hash in output byte order:
// read as little-endian words they yield the byte-swapped H values, so
// a driver can park them and write them back verbatim to resume.

var hashRegs = [8]uint32{
	regs.AES_HASH_DIGEST_A, regs.AES_HASH_DIGEST_B,
	regs.AES_HASH_DIGEST_C, regs.AES_HASH_DIGEST_D,
	regs.AES_HASH_DIGEST_E, regs.AES_HASH_DIGEST_F,
	regs.AES_HASH_DIGEST_G, regs.AES_HASH_DIGEST_H,
}

var sha256Init = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// stepHash runs the staged block transfer through the compression
// function, resuming from the digest registers unless a new hash was
// requested. With tagOut the digest also travels out over channel 1.
func (d *Device) stepHash(tagOut bool) {
	if d.pend[0] == nil {
		return
	}
	p, ok := d.takeIn()
	if !ok {
		return
	}

	var h [8]uint32
	if d.reg[regs.AES_HASH_MODE_IN]&regs.AES_HASH_MODE_IN_NEW_HASH != 0 {
		h = sha256Init
	} else {
		for i, r := range hashRegs {
			h[i] = bits.ReverseBytes32(d.reg[r])
		}
	}

	if d.reg[regs.AES_HASH_IO_BUF_CTRL]&regs.AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE != 0 {
		n := uint64(d.reg[regs.AES_HASH_LENGTH_IN_H])<<32 | uint64(d.reg[regs.AES_HASH_LENGTH_IN_L])
		p = shaPad(p, n)
		d.reg[regs.AES_HASH_IO_BUF_CTRL] &^= regs.AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE
	}
	for off := 0; off+64 <= len(p); off += 64 {
		shaBlock(&h, p[off:off+64])
	}

	for i, r := range hashRegs {
		d.reg[r] = bits.ReverseBytes32(h[i])
	}
	if t := d.pend[1]; tagOut && t != nil {
		d.pend[1] = nil
		var buf [32]byte
		for i, v := range h {
			binary.BigEndian.PutUint32(buf[4*i:], v)
		}
		n := t.n
		if n > len(buf) {
			n = len(buf)
		}
		d.ramWrite(t.addr, buf[:n])
	}
	d.intStat |= regs.AES_CTRL_INT_RESULT_AV | regs.AES_CTRL_INT_DMA_IN_DONE
}

// shaPad closes the message: a one bit, zeros to the length field, and
// the total bit count big-endian.
func shaPad(p []byte, bitLen uint64) []byte {
	p = append(p, 0x80)
	for len(p)%64 != 56 {
		p = append(p, 0)
	}
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], bitLen)
	return append(p, l[:]...)
}

func shaBlock(h *[8]uint32, blk []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(blk[4*i:])
	}
	for i := 16; i < 64; i++ {
		s0 := bits.RotateLeft32(w[i-15], -7) ^ bits.RotateLeft32(w[i-15], -18) ^ w[i-15]>>3
		s1 := bits.RotateLeft32(w[i-2], -17) ^ bits.RotateLeft32(w[i-2], -19) ^ w[i-2]>>10
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}
	a, b, c, dd, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]
	for i := 0; i < 64; i++ {
		s1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + sha256K[i] + w[i]
		s0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj
		hh, g, f, e, dd, c, b, a = g, f, e, dd+t1, c, b, a, t1+t2
	}
	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += dd
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}
