package cc2538

import (
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Config carries the tunables shared by every backend plus the
// per-transport settings consumed by the convenience constructors.
type Config struct {
	// PollInterval is the delay between status reads while waiting for
	// an operation to complete.
	PollInterval time.Duration
	I2C          I2CConfig
	HID          HIDConfig
	Bridge       BridgeConfig
	// Debug receives register and DMA traces when set.
	Debug Logger
}

// I2CConfig configures the I²C phy of the bench bridge.
type I2CConfig struct {
	// Address is the 7-bit address the bridge stub answers on.
	Address uint16
	Bus     i2c.Bus
}

// HIDConfig configures the USB HID phy of the bench bridge.
type HIDConfig struct {
	VendorID  uint16
	ProductID uint16
	// PacketSize is the HID report size the bridge stub uses.
	PacketSize int
}

// BridgeConfig describes the bridge stub's scratch window in board SRAM,
// used to stage DMA buffers on the far side.
type BridgeConfig struct {
	// ScratchAddr is the bus address of the scratch window.
	ScratchAddr uint32
	// ScratchLen is the size of the scratch window in bytes.
	ScratchLen int
	// MaxChunk caps the payload carried by one bulk-memory frame.
	MaxChunk int
}

// DefaultConfig returns a Config with the stock bridge stub settings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 50 * time.Microsecond,
		I2C:          I2CConfig{Address: 0x2b},
		HID:          HIDConfig{VendorID: 0x0451, ProductID: 0x16c8, PacketSize: 64},
		Bridge: BridgeConfig{
			ScratchAddr: 0x20004000,
			ScratchLen:  0x1000,
			MaxChunk:    48,
		},
	}
}

// ConfigI2CDefault returns the default configuration for a bridge stub
// on the given I²C bus.
func ConfigI2CDefault(bus i2c.Bus) Config {
	cfg := DefaultConfig()
	cfg.I2C.Bus = bus
	return cfg
}
