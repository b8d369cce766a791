package cc2538

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an accelerator already has an operation
	// in flight. The caller may retry once the unit is free.
	ErrBusy = errors.New("cc2538: engine busy")
	// ErrNoSolution is returned by InvMod when no modular inverse
	// exists for the given operands.
	ErrNoSolution = errors.New("cc2538: no modular inverse")
	// ErrPKAFailure is returned when the PKA unit reports a status the
	// driver does not recognize as a terminal success state.
	ErrPKAFailure = errors.New("cc2538: pka reported an invalid state")
	// ErrInfinity is returned by the EC operations when the result is
	// the point at infinity, which has no affine representation.
	ErrInfinity = errors.New("cc2538: result is the point at infinity")
	// ErrEphemeralKey is returned when an ephemeral scalar produces a
	// degenerate signature component. Draw a new scalar and retry.
	ErrEphemeralKey = errors.New("cc2538: unusable ephemeral key")

	// ErrDMABus is returned when the AES/SHA unit flags a DMA bus error.
	ErrDMABus = errors.New("cc2538: dma bus error")
	// ErrKeyStoreRead is returned when loading a key from an unwritten
	// or mismatched key store slot.
	ErrKeyStoreRead = errors.New("cc2538: key store read error")
	// ErrKeyStoreWrite is returned when the key store rejects a write.
	ErrKeyStoreWrite = errors.New("cc2538: key store write error")
	// ErrKeyNotWritten is returned when the key store does not confirm
	// every requested slot after a load.
	ErrKeyNotWritten = errors.New("cc2538: key slots not written")

	// ErrReleased is returned by operations on a released engine handle.
	ErrReleased = errors.New("cc2538: engine released")
	// ErrModeSelected is returned when selecting a second block mode on
	// an AES engine handle. Release and re-acquire the engine instead.
	ErrModeSelected = errors.New("cc2538: mode already selected")
	// ErrUnsupported is returned by operations the hardware sequencer
	// provides no protocol for.
	ErrUnsupported = errors.New("cc2538: operation not supported")

	ErrShortBuffer   = errors.New("cc2538: result buffer too small")
	ErrArenaOverflow = errors.New("cc2538: pka ram layout out of bounds")
	ErrDataTooLong   = errors.New("cc2538: input exceeds one dma transfer")

	ErrKeySize      = errors.New("cc2538: bad key length")
	ErrKeySlots     = errors.New("cc2538: key slots out of range")
	ErrIVLength     = errors.New("cc2538: bad iv or counter length")
	ErrNonceLength  = errors.New("cc2538: bad nonce length")
	ErrBlockLength  = errors.New("cc2538: input not a block multiple")
	ErrSizeMismatch = errors.New("cc2538: operand size does not match curve")
	ErrEmptyInput   = errors.New("cc2538: empty input")
	ErrDigestLength = errors.New("cc2538: bad digest or tag length")
)

// Bridge response status codes.
const (
	statusOK      = 0x00
	statusCRC     = 0x01
	statusOpcode  = 0x02
	statusAddress = 0x03
	statusBounds  = 0x04
)

var (
	errBridgeCRC     = errors.New("cc2538: bridge rejected frame crc")
	errBridgeOpcode  = errors.New("cc2538: bridge rejected opcode")
	errBridgeAddress = errors.New("cc2538: bridge rejected address")
	errBridgeBounds  = errors.New("cc2538: bridge rejected transfer bounds")

	errScratchFull = errors.New("cc2538: staging scratch exhausted")
)

// validateBridgeStatus maps a bridge response status byte to an error.
func validateBridgeStatus(status byte) error {
	switch status {
	case statusOK:
		return nil
	case statusCRC:
		return errBridgeCRC
	case statusOpcode:
		return errBridgeOpcode
	case statusAddress:
		return errBridgeAddress
	case statusBounds:
		return errBridgeBounds
	default:
		return fmt.Errorf("cc2538: bridge status %#02x", status)
	}
}
