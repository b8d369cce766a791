package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type modExpConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	base       string
	exp        string
	mod        string
}

func (c *modExpConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "modexp")
	}

	base, err := parseWords(c.base)
	if err != nil {
		return err
	}
	exp, err := parseWords(c.exp)
	if err != nil {
		return err
	}
	mod, err := parseWords(c.mod)
	if err != nil {
		return err
	}

	d, closer, err := newDev(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	p, err := d.PKA(ctx)
	if err != nil {
		return err
	}
	defer p.Release()

	out := make([]uint32, len(mod)+1)
	n, err := p.ExpMod(ctx, exp, mod, base, out)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, cc2538.BigNumFromWords(out[:n]...).String())
	return nil
}

func newModExpCmd(
	rootConfig *rootConfig, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := modExpConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 modexp", flag.ExitOnError)
	fs.StringVar(&cfg.base, "base", "", "base in hex")
	fs.StringVar(&cfg.exp, "exp", "", "exponent in hex")
	fs.StringVar(&cfg.mod, "mod", "", "modulus in hex")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "modexp",
		ShortUsage: "modexp -base <hex> -exp <hex> -mod <hex>",
		ShortHelp:  "Computes a modular exponentiation on the big-number unit.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
