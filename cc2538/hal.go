package cc2538

// HAL is the hardware access layer for the crypto units.
//
// Register access covers both accelerator register pages and the PKA
// operand RAM, which is plain addressable memory. StageIn, StageOut and
// Collect model the engine-side DMA transfers: the driver stages a buffer,
// writes the returned bus address into a DMA channel's external-address
// register and lets the engine move the bytes. Staged buffers stay valid
// until Unstage.
//
// Only the AES/SHA unit stages buffers, and the driver keeps that unit
// single-owner, so implementations need no staging lock of their own.
type HAL interface {
	// ReadRegister returns the 32-bit word at bus address addr.
	ReadRegister(addr uint32) (uint32, error)
	// WriteRegister stores v at bus address addr.
	WriteRegister(addr uint32, v uint32) error
	// StageIn copies p into engine-reachable memory and returns the bus
	// address the engine can read it from.
	StageIn(p []byte) (uint32, error)
	// StageOut reserves n bytes of engine-writable memory and returns
	// its bus address.
	StageOut(n int) (uint32, error)
	// Collect copies n=len(p) bytes of engine output staged at addr
	// back into p.
	Collect(addr uint32, p []byte) error
	// Unstage releases all staged buffers.
	Unstage() error
}
