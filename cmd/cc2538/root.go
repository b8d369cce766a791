package main

import (
	"context"
	"flag"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose bool
	backend string
	bus     int
	addr    string
	poll    time.Duration
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.backend, "backend", "sim", "register backend, sim, i2c, hid or mem")
	fs.IntVar(&c.bus, "bus", 0, "i2c bus to use")
	fs.StringVar(&c.addr, "addr", "", "i2c address of the bridge stub in hex")
	fs.DurationVar(&c.poll, "poll", 0, "status poll interval eg 50us, 1ms")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("cc2538", flag.ExitOnError)
	cfg.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "cc2538",
		ShortUsage: "cc2538 [flags] <subcommand>",
		ShortHelp:  "Utilities to exercise the CC2538 crypto accelerators.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}), &cfg
}

var cc2538LongHelp = `

GENERAL
The sim backend runs against a register-level model of the accelerators
and needs no hardware. The i2c and hid backends talk to a board running
the bench bridge stub; mem maps the register windows through /dev/mem
on a host wired to the chip's bus.`
