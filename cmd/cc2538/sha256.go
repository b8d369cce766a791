package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type sha256Config struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	timeout    time.Duration
}

func (c *sha256Config) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "sha256")
	}

	d, closer, err := newDev(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	e, err := d.SHA256(ctx)
	if err != nil {
		return err
	}
	defer e.Release()

	g := e.NewDigest(ctx)
	if _, err := io.Copy(g, c.in); err != nil {
		return err
	}
	digest := make([]byte, cc2538.DigestSize)
	if err := g.SumInto(digest); err != nil {
		return err
	}

	fmt.Fprintln(c.out, hex.EncodeToString(digest))
	return nil
}

func newSHA256Cmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := sha256Config{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 sha256", flag.ExitOnError)
	fs.DurationVar(&cfg.timeout, "timeout", 0, "maximum time to run eg 1s, 500ms")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "sha256",
		ShortUsage: "sha256 < data",
		ShortHelp:  "Hashes stdin through the hash engine and prints the digest.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
