package cc2538

import (
	"context"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// CTRMode runs the block cipher in counter mode.
//
// The initial counter block is nonce‖counter, 16 bytes in total. The
// counter part must be a whole number of words; its width sets how many
// trailing bits the engine increments per block.
type CTRMode struct {
	e *AESEngine
}

// Encrypt encrypts in into out with the key in slot keyIndex.
func (m *CTRMode) Encrypt(ctx context.Context, keyIndex uint32, nonce, ctr, in, out []byte) error {
	return m.crypt(ctx, keyIndex, nonce, ctr, in, out, true)
}

// Decrypt decrypts in into out with the key in slot keyIndex.
func (m *CTRMode) Decrypt(ctx context.Context, keyIndex uint32, nonce, ctr, in, out []byte) error {
	return m.crypt(ctx, keyIndex, nonce, ctr, in, out, false)
}

func (m *CTRMode) crypt(ctx context.Context, keyIndex uint32, nonce, ctr, in, out []byte, encrypt bool) error {
	d, err := m.e.dev()
	if err != nil {
		return err
	}
	if len(ctr) == 0 || len(ctr)%4 != 0 || len(nonce)+len(ctr) != 16 {
		return ErrIVLength
	}
	if len(out) < len(in) {
		return ErrShortBuffer
	}

	iv := make([]byte, 16)
	copy(iv, nonce)
	copy(iv[len(nonce):], ctr)

	width := uint32(len(ctr)/4 - 1)
	ctrl := width<<regs.AES_AES_CTRL_CTR_WIDTH_Pos | regs.AES_AES_CTRL_CTR
	if encrypt {
		ctrl |= regs.AES_AES_CTRL_DIRECTION_ENCRYPT
	}
	setCtrl := func() error {
		return d.hal.WriteRegister(regs.AES_AES_CTRL, ctrl)
	}
	return m.e.authCrypt(ctx, setCtrl, keyIndex, iv, nil, in, out[:len(in)], nil)
}
