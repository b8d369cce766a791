package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type eccConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	curve      string
	scalar     string
	x          string
	y          string
}

func (c *eccConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "ecc")
	}

	curve, err := curveByName(c.curve)
	if err != nil {
		return err
	}
	scalar, err := parseWords(c.scalar)
	if err != nil {
		return err
	}

	// The base point unless both coordinates are given.
	pt := curve.BasePoint()
	if c.x != "" || c.y != "" {
		if pt.X, err = coordWords(c.x, curve.Size); err != nil {
			return err
		}
		if pt.Y, err = coordWords(c.y, curve.Size); err != nil {
			return err
		}
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

	got, err := p.ECCMul(ctx, curve, scalar, pt)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "x:", cc2538.BigNumFromWords(got.X...).String())
	fmt.Fprintln(c.out, "y:", cc2538.BigNumFromWords(got.Y...).String())
	return nil
}

func curveByName(name string) (*cc2538.CurveInfo, error) {
	switch strings.ToLower(name) {
	case "p256", "p-256":
		return cc2538.P256(), nil
	case "p192", "p-192":
		return cc2538.P192(), nil
	default:
		return nil, fmt.Errorf("cc2538: unknown curve %q", name)
	}
}

// coordWords parses a coordinate and pads it to the curve's word count.
func coordWords(s string, size int) ([]uint32, error) {
	w, err := parseWords(s)
	if err != nil {
		return nil, err
	}
	if len(w) > size {
		return nil, fmt.Errorf("cc2538: coordinate exceeds %d words", size)
	}
	out := make([]uint32, size)
	copy(out, w)
	return out, nil
}

func newECCCmd(
	rootConfig *rootConfig, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := eccConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 ecc", flag.ExitOnError)
	fs.StringVar(&cfg.curve, "curve", "p256", "curve, p256 or p192")
	fs.StringVar(&cfg.scalar, "scalar", "1", "scalar multiplier in hex")
	fs.StringVar(&cfg.x, "x", "", "point x coordinate in hex, base point when empty")
	fs.StringVar(&cfg.y, "y", "", "point y coordinate in hex")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "ecc",
		ShortUsage: "ecc -curve p256 -scalar <hex>",
		ShortHelp:  "Multiplies a curve point on the EC sequencer.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
