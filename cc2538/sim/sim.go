// Package sim models the CC2538 crypto accelerators closely enough to
// run the driver against in ordinary tests: the register map, the DMA
// staging contract, and the cipher, hash and big-number math behind
// them.
//
// The model is not cycle accurate. DMA-driven operations complete
// lazily when the driver polls the interrupt status register, and PKA
// operations complete on the write that sets the run bit, which is
// where real silicon raises the corresponding flags fastest.
package sim

import (
	"errors"
	"sync"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

const (
	ramBase = 0x20000000
	ramLen  = 0x4000
)

var (
	errRAMFull = errors.New("sim: staging ram exhausted")
	errAddr    = errors.New("sim: address outside device model")
)

// transfer is one armed DMA channel: a staging address and a byte
// count, waiting to be consumed by the engine.
type transfer struct {
	addr uint32
	n    int
}

// Device is an in-memory stand-in for the two accelerator units. It
// implements the driver's register and staging primitives; one Device
// backs one simulated chip.
//
// All methods are safe for concurrent use, so the AES/SHA and PKA
// units can be exercised from separate goroutines like real silicon.
type Device struct {
	mu sync.Mutex

	reg     map[uint32]uint32
	intStat uint32

	ram []byte
	off int

	// key store
	keys    [8][16]byte
	written uint32

	// in-flight AES/SHA operation
	pend     [2]*transfer
	aadBuf   []byte
	aadDone  bool
	aesArmed bool
	aesDone  bool

	pkaRAM [regs.PKA_RAM_LEN / 4]uint32

	failDMA int
	holdAES bool
	holdPKA bool
}

// New returns a powered-up device model: empty key store, zeroed
// operand RAM and 16 KB of staging memory.
func New() *Device {
	return &Device{
		reg: make(map[uint32]uint32),
		ram: make([]byte, ramLen),
	}
}

// FailDMA arms a bus fault on the n-th upcoming input transfer; 1
// faults the next one. Zero disarms.
func (d *Device) FailDMA(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failDMA = n
}

// HoldBusy forces the named unit, "aes" or "pka", to report busy until
// released with hold false.
func (d *Device) HoldBusy(unit string, hold bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch unit {
	case "aes":
		d.holdAES = hold
	case "pka":
		d.holdPKA = hold
	}
}

func (d *Device) ReadRegister(addr uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if addr >= regs.PKA_RAM && addr < regs.PKA_RAM+regs.PKA_RAM_LEN {
		return d.pkaRAM[(addr-regs.PKA_RAM)/4], nil
	}
	switch addr {
	case regs.AES_CTRL_INT_STAT:
		d.step()
		return d.intStat, nil
	case regs.AES_KEY_STORE_WRITTEN_AREA:
		return d.written, nil
	case regs.AES_CTRL_ALG_SEL:
		if d.holdAES {
			return regs.AES_CTRL_ALG_SEL_AES, nil
		}
	case regs.PKA_FUNCTION:
		if d.holdPKA {
			return d.reg[addr] | regs.PKA_FUNCTION_RUN, nil
		}
	}
	return d.reg[addr], nil
}

func (d *Device) WriteRegister(addr uint32, v uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if addr >= regs.PKA_RAM && addr < regs.PKA_RAM+regs.PKA_RAM_LEN {
		d.pkaRAM[(addr-regs.PKA_RAM)/4] = v
		return nil
	}
	switch addr {
	case regs.AES_CTRL_INT_CLR:
		d.intStat &^= v
	case regs.AES_CTRL_ALG_SEL:
		d.reg[addr] = v
		d.resetAESPhase()
	case regs.AES_KEY_STORE_WRITTEN_AREA:
		// write one to deassert
		d.written &^= v
	case regs.AES_KEY_STORE_SIZE:
		// any write resets the key store
		d.eraseKeys()
		d.reg[addr] = v
	case regs.AES_KEY_STORE_READ_AREA:
		d.reg[addr] = v
		d.selectKey(v)
	case regs.AES_AES_C_LENGTH_0:
		d.reg[addr] = v
		d.aesArmed = true
	case regs.AES_DMAC_CH0_DMALENGTH:
		d.reg[addr] = v
		d.armDMA(0, v)
	case regs.AES_DMAC_CH1_DMALENGTH:
		d.reg[addr] = v
		d.armDMA(1, v)
	case regs.PKA_FUNCTION:
		d.reg[addr] = v
		if v&regs.PKA_FUNCTION_RUN != 0 && !d.holdPKA {
			d.pkaRun(v &^ regs.PKA_FUNCTION_RUN)
			d.reg[addr] = v &^ regs.PKA_FUNCTION_RUN
		}
	default:
		d.reg[addr] = v
	}
	return nil
}

func (d *Device) StageIn(p []byte) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	addr, err := d.alloc(len(p))
	if err != nil {
		return 0, err
	}
	copy(d.ram[addr-ramBase:], p)
	return addr, nil
}

func (d *Device) StageOut(n int) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alloc(n)
}

func (d *Device) Collect(addr uint32, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	off := int(addr) - ramBase
	if off < 0 || off+len(p) > len(d.ram) {
		return errAddr
	}
	copy(p, d.ram[off:])
	return nil
}

func (d *Device) Unstage() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.off = 0
	return nil
}

func (d *Device) alloc(n int) (uint32, error) {
	if d.off+n > len(d.ram) {
		return 0, errRAMFull
	}
	addr := uint32(ramBase + d.off)
	d.off += (n + 3) &^ 3
	return addr, nil
}

// armDMA records a channel transfer. Writing the length register
// starts the transfer; a zero-length input is only meaningful for the
// hash engine's padded closing block.
func (d *Device) armDMA(ch int, n uint32) {
	if n == 0 {
		pad := d.reg[regs.AES_CTRL_ALG_SEL]&regs.AES_CTRL_ALG_SEL_HASH != 0 &&
			d.reg[regs.AES_HASH_IO_BUF_CTRL]&regs.AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE != 0
		if ch != 0 || !pad {
			return
		}
	}
	extaddr := regs.AES_DMAC_CH0_EXTADDR
	if ch == 1 {
		extaddr = regs.AES_DMAC_CH1_EXTADDR
	}
	d.pend[ch] = &transfer{addr: d.reg[uint32(extaddr)], n: int(n)}
}

func (d *Device) resetAESPhase() {
	d.pend[0], d.pend[1] = nil, nil
	d.aadBuf = nil
	d.aadDone = false
	d.aesArmed = false
	d.aesDone = false
}

// step advances whichever operation the selected algorithm has pending.
// It runs on every status poll, the point where silicon would have
// raised its flags.
func (d *Device) step() {
	alg := d.reg[regs.AES_CTRL_ALG_SEL]
	switch {
	case alg&regs.AES_CTRL_ALG_SEL_KEYSTORE != 0:
		d.stepKeyStore()
	case alg&regs.AES_CTRL_ALG_SEL_HASH != 0:
		d.stepHash(alg&regs.AES_CTRL_ALG_SEL_TAG != 0)
	case alg&regs.AES_CTRL_ALG_SEL_AES != 0:
		d.stepCipher()
	}
}

// takeIn consumes the pending input transfer and returns its bytes.
// ok is false when the armed DMA fault fires or the address is bad; in
// both cases the bus error flag is already up.
func (d *Device) takeIn() ([]byte, bool) {
	t := d.pend[0]
	if t == nil {
		return nil, false
	}
	d.pend[0] = nil
	if d.dmaFault() {
		return nil, false
	}
	off := int(t.addr) - ramBase
	if off < 0 || off+t.n > len(d.ram) {
		d.intStat |= regs.AES_CTRL_INT_STAT_DMA_BUS_ERR
		return nil, false
	}
	p := make([]byte, t.n)
	copy(p, d.ram[off:])
	return p, true
}

func (d *Device) dmaFault() bool {
	if d.failDMA == 0 {
		return false
	}
	d.failDMA--
	if d.failDMA == 0 {
		d.intStat |= regs.AES_CTRL_INT_STAT_DMA_BUS_ERR
		return true
	}
	return false
}

// ramWrite lands engine output in staging memory.
func (d *Device) ramWrite(addr uint32, p []byte) {
	off := int(addr) - ramBase
	if off < 0 || off+len(p) > len(d.ram) {
		d.intStat |= regs.AES_CTRL_INT_STAT_DMA_BUS_ERR
		return
	}
	copy(d.ram[off:], p)
}
