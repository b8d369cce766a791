package cc2538

import (
	"context"
	"encoding/binary"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

const (
	// DigestSize is the SHA-256 digest length in bytes.
	DigestSize = 32
	// BlockSize is the SHA-256 block length in bytes.
	BlockSize = 64
)

// SHA256Engine drives the hash side of the AES/SHA unit.
//
// A SHA256Engine must not be shared between goroutines.
type SHA256Engine struct {
	d *Dev
}

// Release returns the AES/SHA unit. The engine is unusable afterwards.
func (e *SHA256Engine) Release() {
	if e.d != nil {
		releaseToken(e.d.aesTok)
		e.d = nil
	}
}

func (e *SHA256Engine) dev() (*Dev, error) {
	if e.d == nil {
		return nil, ErrReleased
	}
	return e.d, nil
}

// checkIdle fails fast when the unit already has an algorithm selected.
func (e *SHA256Engine) checkIdle() error {
	v, err := e.d.hal.ReadRegister(regs.AES_CTRL_ALG_SEL)
	if err != nil {
		return err
	}
	if v != 0 {
		return ErrBusy
	}
	return nil
}

// sha256Stream carries hash state across block operations. The engine
// eats whole blocks; bytes accumulate in buf until a block is known not
// to be the last one, or until the closing padded run.
type sha256Stream struct {
	length  uint64 // processed bits
	state   [8]uint32
	buf     [BlockSize]byte
	fill    int
	started bool // state holds an intermediate digest
	final   bool // next block operation pads and closes the hash
}

// Sum computes the SHA-256 digest of data into digest, which must be
// DigestSize bytes.
func (e *SHA256Engine) Sum(ctx context.Context, data, digest []byte) error {
	if _, err := e.dev(); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(digest) != DigestSize {
		return ErrDigestLength
	}
	if err := e.checkIdle(); err != nil {
		return err
	}
	var s sha256Stream
	if err := e.update(ctx, &s, data); err != nil {
		return err
	}
	return e.finalize(ctx, &s, digest)
}

// update buffers p, running a block operation whenever a buffered block
// has a successor byte. A block without one may be the message's last
// and must instead go through the closing padded run.
func (e *SHA256Engine) update(ctx context.Context, s *sha256Stream, p []byte) error {
	for len(p) > 0 {
		if s.fill == BlockSize {
			if err := e.block(ctx, s); err != nil {
				return err
			}
		}
		n := copy(s.buf[s.fill:], p)
		s.fill += n
		p = p[n:]
	}
	return nil
}

// block pushes the buffered block through the engine.
func (e *SHA256Engine) block(ctx context.Context, s *sha256Stream) error {
	var err error
	if s.started {
		err = e.resumeHash(ctx, s)
	} else {
		err = e.newHash(ctx, s)
	}
	if err != nil {
		return err
	}
	s.started = true
	s.length += BlockSize << 3
	s.fill = 0
	return nil
}

// finalize runs the closing padded block operation and serializes the
// digest. The stream comes out zeroed, ready for a new message.
func (e *SHA256Engine) finalize(ctx context.Context, s *sha256Stream, digest []byte) error {
	s.length += uint64(s.fill) << 3
	s.final = true
	var err error
	if s.started {
		err = e.resumeHash(ctx, s)
	} else {
		err = e.newHash(ctx, s)
	}
	if err != nil {
		return err
	}
	wordsToBytes(s.state[:], digest)
	*s = sha256Stream{}
	return nil
}

// newHash runs one block operation of a fresh hash session. The digest
// words come back over DMA channel 1.
func (e *SHA256Engine) newHash(ctx context.Context, s *sha256Stream) error {
	d := e.d
	if err := e.checkIdle(); err != nil {
		return err
	}
	if err := d.aesWorkaround(); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_CTRL_ALG_SEL, regs.AES_CTRL_ALG_SEL_TAG|regs.AES_CTRL_ALG_SEL_HASH); err != nil {
		return err
	}
	return d.aesFinish(e.runNewHash(ctx, s))
}

func (e *SHA256Engine) runNewHash(ctx context.Context, s *sha256Stream) error {
	d := e.d
	if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CLR, regs.AES_CTRL_INT_RESULT_AV); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_HASH_MODE_IN, regs.AES_HASH_MODE_IN_SHA256_MODE|regs.AES_HASH_MODE_IN_NEW_HASH); err != nil {
		return err
	}
	n := BlockSize
	if s.final {
		if err := e.writeLength(s.length); err != nil {
			return err
		}
		if err := d.hal.WriteRegister(regs.AES_HASH_IO_BUF_CTRL, regs.AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE); err != nil {
			return err
		}
		n = s.fill
	}
	inAddr, err := d.hal.StageIn(s.buf[:n])
	if err != nil {
		return err
	}
	outAddr, err := d.hal.StageOut(DigestSize)
	if err != nil {
		return err
	}
	if err := d.dmaIn(inAddr, n); err != nil {
		return err
	}
	if err := d.dmaOut(outAddr, DigestSize); err != nil {
		return err
	}
	stat, err := d.waitFlags(ctx, regs.AES_CTRL_INT_STAT,
		regs.AES_CTRL_INT_RESULT_AV|regs.AES_CTRL_INT_STAT_DMA_BUS_ERR)
	if err != nil {
		return err
	}
	if stat&regs.AES_CTRL_INT_STAT_DMA_BUS_ERR != 0 {
		return ErrDMABus
	}
	var buf [DigestSize]byte
	if err := d.hal.Collect(outAddr, buf[:]); err != nil {
		return err
	}
	for i := range s.state {
		s.state[i] = binary.LittleEndian.Uint32(buf[4*i:])
	}
	return nil
}

// resumeHash runs one block operation against the intermediate digest
// in state. The digest words travel through the digest registers both
// ways; channel 1 stays idle.
func (e *SHA256Engine) resumeHash(ctx context.Context, s *sha256Stream) error {
	d := e.d
	if err := e.checkIdle(); err != nil {
		return err
	}
	if err := d.aesWorkaround(); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_CTRL_ALG_SEL, regs.AES_CTRL_ALG_SEL_HASH); err != nil {
		return err
	}
	return d.aesFinish(e.runResumeHash(ctx, s))
}

func (e *SHA256Engine) runResumeHash(ctx context.Context, s *sha256Stream) error {
	d := e.d
	if err := d.hal.WriteRegister(regs.AES_CTRL_INT_CLR, regs.AES_CTRL_INT_RESULT_AV); err != nil {
		return err
	}
	if err := d.hal.WriteRegister(regs.AES_HASH_MODE_IN, regs.AES_HASH_MODE_IN_SHA256_MODE); err != nil {
		return err
	}
	if s.final {
		if err := e.writeLength(s.length); err != nil {
			return err
		}
	}
	for i, r := range hashDigestRegs {
		if err := d.hal.WriteRegister(r, s.state[i]); err != nil {
			return err
		}
	}
	n := BlockSize
	if s.final {
		if err := d.hal.WriteRegister(regs.AES_HASH_IO_BUF_CTRL, regs.AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE); err != nil {
			return err
		}
		n = s.fill
	}
	inAddr, err := d.hal.StageIn(s.buf[:n])
	if err != nil {
		return err
	}
	if err := d.dmaIn(inAddr, n); err != nil {
		return err
	}
	stat, err := d.waitFlags(ctx, regs.AES_CTRL_INT_STAT,
		regs.AES_CTRL_INT_RESULT_AV|regs.AES_CTRL_INT_STAT_DMA_BUS_ERR)
	if err != nil {
		return err
	}
	if stat&regs.AES_CTRL_INT_STAT_DMA_BUS_ERR != 0 {
		return ErrDMABus
	}
	for i, r := range hashDigestRegs {
		v, err := d.hal.ReadRegister(r)
		if err != nil {
			return err
		}
		s.state[i] = v
	}
	// Ack the digest readout.
	return d.hal.WriteRegister(regs.AES_HASH_IO_BUF_CTRL, regs.AES_HASH_IO_BUF_CTRL_OUTPUT_FULL)
}

var hashDigestRegs = [8]uint32{
	regs.AES_HASH_DIGEST_A, regs.AES_HASH_DIGEST_B,
	regs.AES_HASH_DIGEST_C, regs.AES_HASH_DIGEST_D,
	regs.AES_HASH_DIGEST_E, regs.AES_HASH_DIGEST_F,
	regs.AES_HASH_DIGEST_G, regs.AES_HASH_DIGEST_H,
}

func (e *SHA256Engine) writeLength(bits uint64) error {
	if err := e.d.hal.WriteRegister(regs.AES_HASH_LENGTH_IN_L, uint32(bits)); err != nil {
		return err
	}
	return e.d.hal.WriteRegister(regs.AES_HASH_LENGTH_IN_H, uint32(bits>>32))
}

// Digest is a streaming front end over the hash engine. Writes buffer
// into the block carry buffer and push completed blocks through the
// engine as their successors arrive.
type Digest struct {
	e   *SHA256Engine
	ctx context.Context
	s   sha256Stream
	err error
}

// NewDigest returns a streaming writer feeding the hash engine. ctx
// bounds the hardware operations triggered by Write and SumInto.
func (e *SHA256Engine) NewDigest(ctx context.Context) *Digest {
	return &Digest{e: e, ctx: ctx}
}

// Write buffers p. A failed hardware operation poisons the digest until
// Reset.
func (g *Digest) Write(p []byte) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	if _, err := g.e.dev(); err != nil {
		return 0, err
	}
	if err := g.e.update(g.ctx, &g.s, p); err != nil {
		g.err = err
		return 0, err
	}
	return len(p), nil
}

// SumInto finalizes the stream into digest, which must be DigestSize
// bytes. The stream is consumed; the writer is ready for a new message.
func (g *Digest) SumInto(digest []byte) error {
	if g.err != nil {
		return g.err
	}
	if _, err := g.e.dev(); err != nil {
		return err
	}
	if len(digest) != DigestSize {
		return ErrDigestLength
	}
	if err := g.e.finalize(g.ctx, &g.s, digest); err != nil {
		g.err = err
		return err
	}
	return nil
}

// Reset discards buffered input and any sticky error.
func (g *Digest) Reset() {
	g.s = sha256Stream{}
	g.err = nil
}
