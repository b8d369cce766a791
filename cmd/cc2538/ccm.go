package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type ccmConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	key        string
	slot       uint
	nonce      string
	aad        string
	mic        uint
	lenSize    uint
	open       bool
}

func (c *ccmConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "ccm")
	}

	nonce, err := parseHex(c.nonce)
	if err != nil {
		return err
	}
	aad, err := parseHex(c.aad)
	if err != nil {
		return err
	}
	msg, err := io.ReadAll(c.in)
	if err != nil {
		return err
	}

	d, closer, err := newDev(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	e, err := d.AES(ctx)
	if err != nil {
		return err
	}
	defer e.Release()

	if c.key != "" {
		km, err := keyMaterial(c.key, c.slot)
		if err != nil {
			return err
		}
		if err := e.LoadKey(ctx, km); err != nil {
			return err
		}
	}

	m, err := e.CCM()
	if err != nil {
		return err
	}

	info := cc2538.CCMInfo{
		KeyIndex:     uint32(c.slot),
		LenFieldSize: uint8(c.lenSize),
		MICLen:       uint8(c.mic),
		AAD:          aad,
	}
	if c.open {
		return openFrame(ctx, c.out, m, info, nonce, msg)
	}
	return sealFrame(ctx, c.out, m, info, nonce, msg)
}

// sealFrame writes ciphertext followed by the MIC.
func sealFrame(ctx context.Context, w io.Writer, m *cc2538.CCMMode, info cc2538.CCMInfo, nonce, msg []byte) error {
	ct := make([]byte, len(msg))
	tag := make([]byte, info.MICLen)
	if err := m.Encrypt(ctx, info, nonce, msg, ct, tag); err != nil {
		return err
	}
	if _, err := w.Write(ct); err != nil {
		return err
	}
	_, err := w.Write(tag)
	return err
}

// openFrame splits the trailing MIC off, recovers the plaintext and
// verifies it by re-sealing.
func openFrame(ctx context.Context, w io.Writer, m *cc2538.CCMMode, info cc2538.CCMInfo, nonce, msg []byte) error {
	if len(msg) < int(info.MICLen) {
		return errors.New("ccm: frame shorter than its tag")
	}
	split := len(msg) - int(info.MICLen)
	ct, wire := msg[:split], msg[split:]

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, info, nonce, ct, pt); err != nil {
		return err
	}

	check := make([]byte, len(pt))
	tag := make([]byte, info.MICLen)
	if err := m.Encrypt(ctx, info, nonce, pt, check, tag); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(tag, wire) != 1 {
		return errors.New("ccm: authentication failed")
	}

	_, err := w.Write(pt)
	return err
}

func newCCMCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := ccmConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 ccm", flag.ExitOnError)
	fs.StringVar(&cfg.key, "key", "", "key in hex, loaded into the key store first")
	fs.UintVar(&cfg.slot, "slot", 0, "key store slot to use")
	fs.StringVar(&cfg.nonce, "nonce", "", "nonce in hex, 15-l bytes")
	fs.StringVar(&cfg.aad, "aad", "", "associated data in hex, authenticated but not encrypted")
	fs.UintVar(&cfg.mic, "mic", 8, "MIC length in bytes, even, up to 16")
	fs.UintVar(&cfg.lenSize, "l", 2, "length field size in bytes, 2 through 8")
	fs.BoolVar(&cfg.open, "open", false, "open a sealed frame instead of sealing")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "ccm",
		ShortUsage: "ccm -key <hex> -nonce <hex> < plaintext > frame",
		ShortHelp:  "Seals or opens an authenticated frame in CCM mode.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
