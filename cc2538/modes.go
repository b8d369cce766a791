package cc2538

import (
	"context"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// ECBMode runs the block cipher one codebook block at a time. Inputs
// must be a whole number of 16-byte blocks.
type ECBMode struct {
	e *AESEngine
}

// Encrypt encrypts in into out with the key in slot keyIndex.
func (m *ECBMode) Encrypt(ctx context.Context, keyIndex uint32, in, out []byte) error {
	return m.crypt(ctx, keyIndex, in, out, true)
}

// Decrypt decrypts in into out with the key in slot keyIndex.
func (m *ECBMode) Decrypt(ctx context.Context, keyIndex uint32, in, out []byte) error {
	return m.crypt(ctx, keyIndex, in, out, false)
}

func (m *ECBMode) crypt(ctx context.Context, keyIndex uint32, in, out []byte, encrypt bool) error {
	d, err := m.e.dev()
	if err != nil {
		return err
	}
	if len(in)%16 != 0 {
		return ErrBlockLength
	}
	if len(out) < len(in) {
		return ErrShortBuffer
	}
	var ctrl uint32
	if encrypt {
		ctrl = regs.AES_AES_CTRL_DIRECTION_ENCRYPT
	}
	setCtrl := func() error {
		return d.hal.WriteRegister(regs.AES_AES_CTRL, ctrl)
	}
	return m.e.authCrypt(ctx, setCtrl, keyIndex, nil, nil, in, out[:len(in)], nil)
}

// CBCMode runs the block cipher with cipher-block chaining. Inputs must
// be a whole number of 16-byte blocks; the IV is one block.
type CBCMode struct {
	e *AESEngine
}

// Encrypt encrypts in into out with the key in slot keyIndex.
func (m *CBCMode) Encrypt(ctx context.Context, keyIndex uint32, iv, in, out []byte) error {
	return m.crypt(ctx, keyIndex, iv, in, out, true)
}

// Decrypt decrypts in into out with the key in slot keyIndex.
func (m *CBCMode) Decrypt(ctx context.Context, keyIndex uint32, iv, in, out []byte) error {
	return m.crypt(ctx, keyIndex, iv, in, out, false)
}

func (m *CBCMode) crypt(ctx context.Context, keyIndex uint32, iv, in, out []byte, encrypt bool) error {
	d, err := m.e.dev()
	if err != nil {
		return err
	}
	if len(iv) != 16 {
		return ErrIVLength
	}
	if len(in)%16 != 0 {
		return ErrBlockLength
	}
	if len(out) < len(in) {
		return ErrShortBuffer
	}
	ctrl := uint32(regs.AES_AES_CTRL_CBC)
	if encrypt {
		ctrl |= regs.AES_AES_CTRL_DIRECTION_ENCRYPT
	}
	setCtrl := func() error {
		return d.hal.WriteRegister(regs.AES_AES_CTRL, ctrl)
	}
	return m.e.authCrypt(ctx, setCtrl, keyIndex, iv, nil, in, out[:len(in)], nil)
}

// CBCMACMode computes CBC-MAC tags. Driving the mode's sequencing was
// never brought up; the operation reports ErrUnsupported.
type CBCMACMode struct {
	e *AESEngine
}

// Sum would fill tag with the CBC-MAC of data under the key in slot
// keyIndex.
func (m *CBCMACMode) Sum(ctx context.Context, keyIndex uint32, data, tag []byte) error {
	if _, err := m.e.dev(); err != nil {
		return err
	}
	return ErrUnsupported
}

// GCMMode is Galois/counter mode. Driving the mode's sequencing was
// never brought up; operations report ErrUnsupported.
type GCMMode struct {
	e *AESEngine
}

// Encrypt would seal in into out under the key in slot keyIndex.
func (m *GCMMode) Encrypt(ctx context.Context, keyIndex uint32, iv, adata, in, out, tag []byte) error {
	if _, err := m.e.dev(); err != nil {
		return err
	}
	return ErrUnsupported
}

// Decrypt would open in into out under the key in slot keyIndex.
func (m *GCMMode) Decrypt(ctx context.Context, keyIndex uint32, iv, adata, in, out, tag []byte) error {
	if _, err := m.e.dev(); err != nil {
		return err
	}
	return ErrUnsupported
}
