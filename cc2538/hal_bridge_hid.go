package cc2538

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/karalabe/usb"
)

var (
	// ErrUSBNotSupported is returned by NewHIDDev on platforms without
	// HID support compiled in.
	ErrUSBNotSupported = errors.New("cc2538: usb not supported on this platform")

	errNoHIDDevice = errors.New("cc2538: no matching hid device found")
)

// NewHIDDev opens the first matching USB HID debug stub and returns a
// device handle plus a closer for the underlying HID endpoint.
func NewHIDDev(ctx context.Context, cfg Config) (*Dev, io.Closer, error) {
	if !usb.Supported() {
		return nil, nil, ErrUSBNotSupported
	}
	def := DefaultConfig().HID
	if cfg.HID.VendorID == 0 {
		cfg.HID.VendorID = def.VendorID
	}
	if cfg.HID.ProductID == 0 {
		cfg.HID.ProductID = def.ProductID
	}
	if cfg.HID.PacketSize <= 0 {
		cfg.HID.PacketSize = def.PacketSize
	}

	infos, err := usb.EnumerateHid(cfg.HID.VendorID, cfg.HID.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("cc2538: enumerate hid: %w", err)
	}
	if len(infos) == 0 {
		return nil, nil, errNoHIDDevice
	}

	var hid usb.Device
	for _, info := range infos {
		hid, err = info.Open()
		if err == nil {
			break
		}
	}
	if hid == nil {
		return nil, nil, fmt.Errorf("cc2538: open hid: %w", err)
	}

	phy := &halHID{hid: hid, packet: cfg.HID.PacketSize}
	dev, err := New(ctx, newHALBridge(phy, cfg), cfg)
	if err != nil {
		hid.Close()
		return nil, nil, err
	}
	return dev, hid, nil
}

// halHID frames bridge exchanges into fixed-size HID reports. Writes
// are padded to the report size; responses are reassembled from as
// many reports as the expected frame needs.
type halHID struct {
	hid    usb.Device
	packet int
}

func (h *halHID) Tx(w, r []byte) error {
	for off := 0; off < len(w); off += h.packet {
		report := make([]byte, h.packet)
		copy(report, w[off:])
		if _, err := h.hid.Write(report); err != nil {
			return err
		}
	}
	for off := 0; off < len(r); {
		report := make([]byte, h.packet)
		n, err := h.hid.Read(report)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
		off += copy(r[off:], report[:n])
	}
	return nil
}
