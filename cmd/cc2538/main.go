/*
cc2538 is a tool to drive the crypto accelerators of a CC2538 radio SoC.

It talks to the AES/SHA and PKA units through a bench bridge on I²C or
USB HID, through /dev/mem on a host wired to the chip's bus, or against
the built-in register-level simulator.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	var (
		in  = os.Stdin
		out = os.Stdout
		err = os.Stderr
	)

	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newSHA256Cmd(cfg, in, out, err),
		newCTRCmd(cfg, in, out, err),
		newCCMCmd(cfg, in, out, err),
		newSignCmd(cfg, in, out, err),
		newECCCmd(cfg, out, err),
		newModExpCmd(cfg, out, err),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		var num = 0
		for range c {
			num += 1
			if num >= 3 {
				os.Exit(1)
			} else {
				cancel()
			}
		}
	}()

	if err := rootCmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, context.Canceled) {
			libPrefix := "cc2538: "
			msg := strings.TrimPrefix(err.Error(), libPrefix)
			fmt.Fprintf(os.Stderr, "%s: %s\n", rootCmd.Name, msg)
			os.Exit(1)
		} else if cfg.verbose {
			fmt.Fprintf(os.Stderr, "%s: cancelled\n", rootCmd.Name)
		}
	}
}
