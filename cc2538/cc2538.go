package cc2538

import (
	"context"
	"time"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// Dev is a handle to the CC2538 crypto accelerators.
//
// The AES/SHA unit and the PKA unit are independent silicon, each driven
// by at most one engine handle at a time. Dev hands out those handles and
// blocks further selections until the current handle is released, so the
// two units can work concurrently but never two callers on one unit.
type Dev struct {
	hal HAL
	cfg Config
	log Logger

	aesTok chan struct{} // held while an AES or SHA-256 engine exists
	pkaTok chan struct{} // held while a PKA engine exists
}

// New returns a device handle driving the crypto units through hal.
//
// It probes one register on each unit so a dead link fails here rather
// than in the first operation.
func New(ctx context.Context, hal HAL, cfg Config) (*Dev, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.Debug != nil {
		hal = &halDebug{id: "hal", l: cfg.Debug, next: hal}
	}
	d := &Dev{
		hal:    hal,
		cfg:    cfg,
		log:    getLogger(cfg.Debug),
		aesTok: make(chan struct{}, 1),
		pkaTok: make(chan struct{}, 1),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := hal.ReadRegister(regs.AES_CTRL_ALG_SEL); err != nil {
		return nil, err
	}
	if _, err := hal.ReadRegister(regs.PKA_FUNCTION); err != nil {
		return nil, err
	}
	return d, nil
}

// AES acquires the AES/SHA unit and returns its block-cipher engine.
//
// The call blocks while another AES or SHA-256 engine handle exists,
// until ctx ends. Release the engine to free the unit.
func (d *Dev) AES(ctx context.Context) (*AESEngine, error) {
	if err := d.acquire(ctx, d.aesTok); err != nil {
		return nil, err
	}
	return &AESEngine{d: d}, nil
}

// SHA256 acquires the AES/SHA unit and returns its hash engine.
func (d *Dev) SHA256(ctx context.Context) (*SHA256Engine, error) {
	if err := d.acquire(ctx, d.aesTok); err != nil {
		return nil, err
	}
	return &SHA256Engine{d: d}, nil
}

// PKA acquires the big-number unit and returns its engine.
func (d *Dev) PKA(ctx context.Context) (*PKAEngine, error) {
	if err := d.acquire(ctx, d.pkaTok); err != nil {
		return nil, err
	}
	return &PKAEngine{d: d}, nil
}

func (d *Dev) acquire(ctx context.Context, tok chan struct{}) error {
	select {
	case tok <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func releaseToken(tok chan struct{}) {
	<-tok
}

// waitFlags polls the register at addr until any bit of mask is set and
// returns the last value read.
func (d *Dev) waitFlags(ctx context.Context, addr, mask uint32) (uint32, error) {
	for {
		v, err := d.hal.ReadRegister(addr)
		if err != nil {
			return 0, err
		}
		if v&mask != 0 {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(d.cfg.PollInterval):
		}
	}
}

// waitClear polls the register at addr until all bits of mask are clear.
// settle hints at the expected duration of the running operation; the
// first read still happens immediately so fast backends never sleep.
func (d *Dev) waitClear(ctx context.Context, addr, mask uint32, settle time.Duration) error {
	wait := settle
	if wait < d.cfg.PollInterval {
		wait = d.cfg.PollInterval
	}
	for {
		v, err := d.hal.ReadRegister(addr)
		if err != nil {
			return err
		}
		if v&mask == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = d.cfg.PollInterval
	}
}
