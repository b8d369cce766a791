package sim

import (
	"encoding/binary"
	"math/big"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// pkaRun evaluates the operation named by fn against the operand RAM.
// Sequencer operations live in the SEQ field; plain arithmetic in the
// low function bits.
func (d *Device) pkaRun(fn uint32) {
	if seq := fn >> regs.PKA_FUNCTION_SEQ_Pos & 0x7; seq != 0 {
		switch seq {
		case regs.PKA_SEQ_EXP_MOD:
			d.pkaExpMod()
		case regs.PKA_SEQ_ECC_ADD:
			d.pkaEccAdd()
		case regs.PKA_SEQ_ECC_MUL:
			d.pkaEccMul()
		case regs.PKA_SEQ_INV_MOD:
			d.pkaInvMod()
		}
		return
	}
	switch {
	case fn&regs.PKA_FUNCTION_COMPARE != 0:
		d.pkaCompare()
	case fn&regs.PKA_FUNCTION_MODULO != 0:
		d.pkaModulo()
	case fn&regs.PKA_FUNCTION_ADDSUB != 0:
		d.pkaAddSub()
	case fn&regs.PKA_FUNCTION_MULTIPLY != 0:
		d.pkaMul()
	case fn&regs.PKA_FUNCTION_ADD != 0:
		d.pkaAdd()
	case fn&regs.PKA_FUNCTION_SUBTRACT != 0:
		d.pkaSub()
	}
}

// vector pointer registers hold word offsets into operand RAM.
func (d *Device) ptr(reg uint32) int { return int(d.reg[reg]) }

func (d *Device) alen() int { return int(d.reg[regs.PKA_ALENGTH]) }
func (d *Device) blen() int { return int(d.reg[regs.PKA_BLENGTH]) }

// readInt assembles n little-endian words at word offset off.
func (d *Device) readInt(off, n int) *big.Int {
	buf := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		var w uint32
		if j := off + i; j >= 0 && j < len(d.pkaRAM) {
			w = d.pkaRAM[j]
		}
		binary.BigEndian.PutUint32(buf[len(buf)-4*(i+1):], w)
	}
	return new(big.Int).SetBytes(buf)
}

// writeInt lays x down as n little-endian words at word offset off,
// zero-padded above its significant words.
func (d *Device) writeInt(off int, x *big.Int, n int) {
	b := x.Bytes()
	buf := make([]byte, 4*n)
	if len(b) > len(buf) {
		b = b[len(b)-len(buf):]
	}
	copy(buf[len(buf)-len(b):], b)
	for i := 0; i < n; i++ {
		if j := off + i; j >= 0 && j < len(d.pkaRAM) {
			d.pkaRAM[j] = binary.BigEndian.Uint32(buf[len(buf)-4*(i+1):])
		}
	}
}

// setMSW reports the word address of the most significant result word
// at word offset off, or the zero flag.
func (d *Device) setMSW(off int, x *big.Int) {
	if x.Sign() == 0 {
		d.reg[regs.PKA_MSW] = regs.PKA_MSW_RESULT_IS_ZERO
		return
	}
	d.reg[regs.PKA_MSW] = uint32(off + sigWords(x) - 1)
}

func sigWords(x *big.Int) int {
	n := (x.BitLen() + 31) / 32
	if n == 0 {
		n = 1
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// wrap reduces a negative difference into the unit's n-word field.
func wrap(x *big.Int, n int) *big.Int {
	if x.Sign() >= 0 {
		return x
	}
	return x.Mod(x, new(big.Int).Lsh(big.NewInt(1), uint(32*n)))
}

func (d *Device) pkaAdd() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	r := new(big.Int).Add(a, b)
	c := d.ptr(regs.PKA_CPTR)
	d.writeInt(c, r, maxInt(d.alen(), d.blen())+1)
	d.setMSW(c, r)
}

func (d *Device) pkaSub() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	n := maxInt(d.alen(), d.blen())
	r := wrap(new(big.Int).Sub(a, b), n+1)
	c := d.ptr(regs.PKA_CPTR)
	d.writeInt(c, r, n)
	d.setMSW(c, r)
}

func (d *Device) pkaMul() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	r := new(big.Int).Mul(a, b)
	c := d.ptr(regs.PKA_CPTR)
	d.writeInt(c, r, d.alen()+d.blen())
	d.setMSW(c, r)
}

// pkaAddSub computes A+C-B over three ALENGTH operands into D.
func (d *Device) pkaAddSub() {
	n := d.alen()
	a := d.readInt(d.ptr(regs.PKA_APTR), n)
	b := d.readInt(d.ptr(regs.PKA_BPTR), n)
	c := d.readInt(d.ptr(regs.PKA_CPTR), n)
	r := new(big.Int).Add(a, c)
	r = wrap(r.Sub(r, b), n+1)
	dOff := d.ptr(regs.PKA_DPTR)
	d.writeInt(dOff, r, n+1)
	d.setMSW(dOff, r)
}

func (d *Device) pkaModulo() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	c := d.ptr(regs.PKA_CPTR)
	if b.Sign() == 0 {
		d.writeInt(c, big.NewInt(0), d.blen()+1)
		d.reg[regs.PKA_MSW] = regs.PKA_MSW_RESULT_IS_ZERO
		return
	}
	r := new(big.Int).Mod(a, b)
	d.writeInt(c, r, d.blen()+1)
	d.setMSW(c, r)
}

// pkaCompare compares the A and C vectors over a single length.
func (d *Device) pkaCompare() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.readInt(d.ptr(regs.PKA_CPTR), d.alen())
	switch a.Cmp(b) {
	case -1:
		d.reg[regs.PKA_COMPARE] = regs.PKA_COMPARE_A_LESS_THAN_B
	case 0:
		d.reg[regs.PKA_COMPARE] = regs.PKA_COMPARE_A_EQUALS_B
	default:
		d.reg[regs.PKA_COMPARE] = regs.PKA_COMPARE_A_GREATER_THAN_B
	}
}

func (d *Device) pkaInvMod() {
	a := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	m := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	c := d.ptr(regs.PKA_CPTR)
	if m.Sign() == 0 {
		d.reg[regs.PKA_SHIFT] = 7
		return
	}
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		d.reg[regs.PKA_SHIFT] = 7
		return
	}
	d.reg[regs.PKA_SHIFT] = 0
	d.writeInt(c, inv, maxInt(d.alen(), d.blen()))
	d.setMSW(c, inv)
}

func (d *Device) pkaExpMod() {
	e := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	m := d.readInt(d.ptr(regs.PKA_BPTR), d.blen())
	base := d.readInt(d.ptr(regs.PKA_CPTR), d.blen())
	dOff := d.ptr(regs.PKA_DPTR)
	if m.Sign() == 0 {
		d.reg[regs.PKA_MSW] = regs.PKA_MSW_RESULT_IS_ZERO
		return
	}
	r := new(big.Int).Exp(base, e, m)
	d.writeInt(dOff, r, d.blen()+1)
	d.setMSW(dOff, r)
}

// Curve operands are laid out one element per slot; the slot size
// follows from the operand length the driver programs.
func eccSlot(size int) int { return size + 2 + size%2 }

func (d *Device) pkaEccMul() {
	size := d.blen()
	slot := eccSlot(size)
	k := d.readInt(d.ptr(regs.PKA_APTR), d.alen())
	b := d.ptr(regs.PKA_BPTR)
	p := d.readInt(b, slot)
	a := d.readInt(b+slot, slot)
	c := d.ptr(regs.PKA_CPTR)
	x := d.readInt(c, slot)
	y := d.readInt(c+slot, slot)
	d.eccFinish(eccScalarMul(p, a, k, x, y), slot)
}

func (d *Device) pkaEccAdd() {
	size := d.blen()
	slot := eccSlot(size)
	aOff := d.ptr(regs.PKA_APTR)
	x1 := d.readInt(aOff, slot)
	y1 := d.readInt(aOff+slot, slot)
	b := d.ptr(regs.PKA_BPTR)
	p := d.readInt(b, slot)
	a := d.readInt(b+slot, slot)
	c := d.ptr(regs.PKA_CPTR)
	x2 := d.readInt(c, slot)
	y2 := d.readInt(c+slot, slot)
	d.eccFinish(eccPoint{p, a}.add(x1, y1, x2, y2), slot)
}

// eccFinish lands an affine result at the D vector, one coordinate per
// slot, or reports the point at infinity through the zero flag.
func (d *Device) eccFinish(r eccResult, slot int) {
	dOff := d.ptr(regs.PKA_DPTR)
	if r.inf {
		d.reg[regs.PKA_MSW] = regs.PKA_MSW_RESULT_IS_ZERO
		d.reg[regs.PKA_SHIFT] = 0
		return
	}
	d.writeInt(dOff, r.x, slot)
	d.writeInt(dOff+slot, r.y, slot)
	d.setMSW(dOff, r.x)
	if r.x.Sign() == 0 {
		// x may legitimately be zero; only infinity reports the flag
		d.reg[regs.PKA_MSW] = uint32(dOff)
	}
	d.reg[regs.PKA_SHIFT] = 0
}

type eccResult struct {
	x, y *big.Int
	inf  bool
}

type eccPoint struct {
	p, a *big.Int
}

// add performs one affine group addition on y² = x³ + ax + b over
// GF(p), including the doubling and inverse cases.
func (c eccPoint) add(x1, y1, x2, y2 *big.Int) eccResult {
	var lam *big.Int
	if x1.Cmp(x2) == 0 {
		ysum := new(big.Int).Add(y1, y2)
		if ysum.Mod(ysum, c.p).Sign() == 0 {
			return eccResult{inf: true}
		}
		num := new(big.Int).Mul(x1, x1)
		num.Mul(num, big.NewInt(3))
		num.Add(num, c.a)
		den := new(big.Int).Lsh(y1, 1)
		den.Mod(den, c.p)
		lam = num.Mul(num, den.ModInverse(den, c.p))
	} else {
		num := new(big.Int).Sub(y2, y1)
		den := new(big.Int).Sub(x2, x1)
		den.Mod(den, c.p)
		lam = num.Mul(num, den.ModInverse(den, c.p))
	}
	lam.Mod(lam, c.p)
	x3 := new(big.Int).Mul(lam, lam)
	x3.Sub(x3, x1)
	x3.Sub(x3, x2)
	x3.Mod(x3, c.p)
	y3 := new(big.Int).Sub(x1, x3)
	y3.Mul(y3, lam)
	y3.Sub(y3, y1)
	y3.Mod(y3, c.p)
	return eccResult{x: x3, y: y3}
}

// eccScalarMul runs a double-and-add ladder from the high bit down.
func eccScalarMul(p, a, k, x, y *big.Int) eccResult {
	c := eccPoint{p, a}
	r := eccResult{inf: true}
	for i := k.BitLen() - 1; i >= 0; i-- {
		if !r.inf {
			r = c.add(r.x, r.y, r.x, r.y)
		}
		if k.Bit(i) == 1 {
			if r.inf {
				r = eccResult{x: new(big.Int).Set(x), y: new(big.Int).Set(y)}
			} else {
				r = c.add(r.x, r.y, x, y)
			}
		}
	}
	return r
}
