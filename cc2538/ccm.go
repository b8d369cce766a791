package cc2538

import (
	"context"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// CCMInfo carries the CCM parameters shared between seal and open.
//
// LenFieldSize is the L parameter: the number of message-length bytes
// in the counter block, 2 through 8, which leaves 15-L bytes of nonce.
// MICLen is the tag length M in bytes (even, up to 16); the engine
// always emits a full 16-byte tag, M parameterizes the authentication
// flags so truncated-tag frames verify correctly.
type CCMInfo struct {
	KeyIndex     uint32
	LenFieldSize uint8
	MICLen       uint8
	AAD          []byte
}

// CCMMode runs the block cipher in counter-with-CBC-MAC mode.
type CCMMode struct {
	e *AESEngine
}

// Encrypt seals in into out and fills tag from the tag registers,
// leftmost bytes first. A nil tag skips the readout.
func (m *CCMMode) Encrypt(ctx context.Context, info CCMInfo, nonce, in, out, tag []byte) error {
	return m.crypt(ctx, info, nonce, in, out, tag, true)
}

// Decrypt recovers the plaintext of a sealed frame. The wire tag stays
// with the caller: re-sealing the recovered plaintext reproduces the
// tag to verify against.
func (m *CCMMode) Decrypt(ctx context.Context, info CCMInfo, nonce, in, out []byte) error {
	return m.crypt(ctx, info, nonce, in, out, nil, false)
}

func (m *CCMMode) crypt(ctx context.Context, info CCMInfo, nonce, in, out, tag []byte, encrypt bool) error {
	d, err := m.e.dev()
	if err != nil {
		return err
	}
	l := int(info.LenFieldSize)
	if l < 2 || l > 8 {
		return ErrIVLength
	}
	if len(nonce) != 15-l {
		return ErrNonceLength
	}
	if info.MICLen > 16 || info.MICLen%2 != 0 {
		return ErrDigestLength
	}
	if len(tag) > 16 {
		return ErrDigestLength
	}
	if len(out) < len(in) {
		return ErrShortBuffer
	}

	mic := uint32(info.MICLen)
	if mic < 2 {
		mic = 2
	}
	ctrl := regs.AES_AES_CTRL_SAVE_CONTEXT |
		(mic-2)>>1<<regs.AES_AES_CTRL_CCM_M_Pos |
		uint32(l-1)<<regs.AES_AES_CTRL_CCM_L_Pos |
		regs.AES_AES_CTRL_CCM |
		regs.AES_CTR_WIDTH_32<<regs.AES_AES_CTRL_CTR_WIDTH_Pos |
		regs.AES_AES_CTRL_CTR
	if encrypt {
		ctrl |= regs.AES_AES_CTRL_DIRECTION_ENCRYPT
	}

	// Counter block: length-field width, nonce, zeroed counter.
	iv := make([]byte, 16)
	iv[0] = byte(l - 1)
	copy(iv[1:], nonce)

	setCtrl := func() error {
		return d.hal.WriteRegister(regs.AES_AES_CTRL, ctrl)
	}
	return m.e.authCrypt(ctx, setCtrl, info.KeyIndex, iv, info.AAD, in, out[:len(in)], tag)
}
