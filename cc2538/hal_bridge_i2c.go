package cc2538

import (
	"context"
	"errors"

	"periph.io/x/conn/v3/i2c"
)

var errNoI2CBus = errors.New("cc2538: no i2c bus configured")

// NewI2CDev connects to a board whose debug stub is reachable over I²C
// and returns a device handle. The bus stays owned by the caller.
func NewI2CDev(ctx context.Context, cfg Config) (*Dev, error) {
	if cfg.I2C.Bus == nil {
		return nil, errNoI2CBus
	}
	if cfg.I2C.Address == 0 {
		cfg.I2C.Address = DefaultConfig().I2C.Address
	}
	phy := &i2c.Dev{Bus: cfg.I2C.Bus, Addr: cfg.I2C.Address}
	return New(ctx, newHALBridge(phy, cfg), cfg)
}
