package main

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/meshfield/go-cc2538/cc2538/sim"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func newDev(ctx context.Context, c *rootConfig) (*cc2538.Dev, io.Closer, error) {
	switch c.backend {
	case "sim":
		d, err := cc2538.New(ctx, sim.New(), baseConfig(c))
		return d, nopCloser{}, err
	case "i2c":
		return newDevI2C(ctx, c)
	case "hid":
		return cc2538.NewHIDDev(ctx, baseConfig(c))
	case "mem":
		return newDevMem(ctx, c)
	default:
		return nil, nil, errors.New("cc2538: unknown backend")
	}
}

func newDevI2C(ctx context.Context, c *rootConfig) (*cc2538.Dev, io.Closer, error) {
	cfg := baseConfig(c)
	if c.addr != "" {
		addr, err := strconv.ParseUint(strings.TrimPrefix(c.addr, "0x"), 16, 16)
		if err != nil {
			return nil, nil, err
		}
		cfg.I2C.Address = uint16(addr)
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	bus, err := i2creg.Open(strconv.Itoa(c.bus))
	if err != nil {
		return nil, nil, fmt.Errorf("cc2538: failed to connect to bus: %w", err)
	}

	cfg.I2C.Bus = bus
	d, err := cc2538.NewI2CDev(ctx, cfg)
	return d, bus, err
}

func baseConfig(c *rootConfig) cc2538.Config {
	cfg := cc2538.DefaultConfig()
	cfg.Debug = newLogger(c.verbose)
	if c.poll > 0 {
		cfg.PollInterval = c.poll
	}
	return cfg
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// parseHex decodes a hex flag value, tolerating a 0x prefix and
// whitespace.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.Join(strings.Fields(s), "")
	return hex.DecodeString(s)
}

// parseWords decodes a big-endian hex number into the little-endian
// word vector the PKA engine consumes.
func parseWords(s string) ([]uint32, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	n := (len(b) + 3) / 4
	be := make([]byte, 4*n)
	copy(be[len(be)-len(b):], b)
	w := make([]uint32, n)
	for i := range w {
		w[i] = binary.BigEndian.Uint32(be[len(be)-4*(i+1):])
	}
	return w, nil
}

// wordsToBig reassembles a little-endian word vector into an integer.
func wordsToBig(w []uint32) *big.Int {
	b := make([]byte, 4*len(w))
	for i, v := range w {
		binary.BigEndian.PutUint32(b[len(b)-4*(i+1):], v)
	}
	return new(big.Int).SetBytes(b)
}

// bigToWords lays v out as size little-endian words. v must fit.
func bigToWords(v *big.Int, size int) []uint32 {
	b := make([]byte, 4*size)
	v.FillBytes(b)
	w := make([]uint32, size)
	for i := range w {
		w[i] = binary.BigEndian.Uint32(b[len(b)-4*(i+1):])
	}
	return w
}

// keyMaterial packs a hex key for the key store, inferring the key size
// from its length.
func keyMaterial(keyHex string, slot uint) (*cc2538.KeyMaterial, error) {
	key, err := parseHex(keyHex)
	if err != nil {
		return nil, err
	}
	var size cc2538.KeySize
	switch len(key) {
	case 16:
		size = cc2538.Key128
	case 24:
		size = cc2538.Key192
	case 32:
		size = cc2538.Key256
	default:
		return nil, fmt.Errorf("cc2538: key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	return cc2538.NewKeyMaterial(size, uint8(slot), key)
}

func addLongHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}

	cmd.LongHelp += cc2538LongHelp

	return cmd
}

func newLogger(verbose bool) cc2538.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	} else {
		return nil
	}
}
