package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type ctrConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	key        string
	slot       uint
	nonce      string
	ctr        string
	decrypt    bool
}

func (c *ctrConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "ctr")
	}

	nonce, err := parseHex(c.nonce)
	if err != nil {
		return err
	}
	ctr, err := parseHex(c.ctr)
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

	// The key store survives across runs on real hardware, so the key
	// is only loaded when one is given.
	if c.key != "" {
		km, err := keyMaterial(c.key, c.slot)
		if err != nil {
			return err
		}
		if err := e.LoadKey(ctx, km); err != nil {
			return err
		}
	}

	m, err := e.CTR()
	if err != nil {
		return err
	}

	buf := make([]byte, len(msg))
	if c.decrypt {
		err = m.Decrypt(ctx, uint32(c.slot), nonce, ctr, msg, buf)
	} else {
		err = m.Encrypt(ctx, uint32(c.slot), nonce, ctr, msg, buf)
	}
	if err != nil {
		return err
	}

	_, err = c.out.Write(buf)
	return err
}

func newCTRCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := ctrConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 ctr", flag.ExitOnError)
	fs.StringVar(&cfg.key, "key", "", "key in hex, loaded into the key store first")
	fs.UintVar(&cfg.slot, "slot", 0, "key store slot to use")
	fs.StringVar(&cfg.nonce, "nonce", "", "nonce in hex, nonce and counter make one block")
	fs.StringVar(&cfg.ctr, "ctr", "00000001", "initial counter in hex, a whole number of words")
	fs.BoolVar(&cfg.decrypt, "d", false, "decrypt instead of encrypt")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "ctr",
		ShortUsage: "ctr -key <hex> -nonce <hex> < plaintext > ciphertext",
		ShortHelp:  "Runs stdin through the block cipher in counter mode.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
