package cc2538

import (
	"context"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// PKAEngine drives the big-number unit. Operands and results are
// little-endian word vectors (word 0 least significant).
//
// One operation runs at a time; each call lays its operands out in the
// operand RAM, triggers the FUNCTION register and polls the run bit.
// There is no division operation: the sequencer has no division opcode
// and the driver does not emulate one.
//
// A PKAEngine must not be shared between goroutines.
type PKAEngine struct {
	d *Dev
}

// Release returns the PKA unit. The engine is unusable afterwards.
func (p *PKAEngine) Release() {
	if p.d != nil {
		releaseToken(p.d.pkaTok)
		p.d = nil
	}
}

func (p *PKAEngine) dev() (*Dev, error) {
	if p.d == nil {
		return nil, ErrReleased
	}
	return p.d, nil
}

// checkIdle fails fast when the unit already has an operation running.
func (p *PKAEngine) checkIdle() error {
	v, err := p.d.hal.ReadRegister(regs.PKA_FUNCTION)
	if err != nil {
		return err
	}
	if v&regs.PKA_FUNCTION_RUN != 0 {
		return ErrBusy
	}
	return nil
}

// run triggers fn and waits for the run bit to clear.
func (p *PKAEngine) run(ctx context.Context, fn uint32) error {
	if err := p.d.hal.WriteRegister(regs.PKA_FUNCTION, fn|regs.PKA_FUNCTION_RUN); err != nil {
		return err
	}
	return p.d.waitClear(ctx, regs.PKA_FUNCTION, regs.PKA_FUNCTION_RUN, pkaExecTime(fn))
}

// readResult reads a result vector laid down at byte offset base. The
// MSW register reports the word address of the most significant result
// word; a zero result zero-fills out and reports length 0.
func (p *PKAEngine) readResult(base int, out []uint32) (int, error) {
	msw, err := p.d.hal.ReadRegister(regs.PKA_MSW)
	if err != nil {
		return 0, err
	}
	if msw&regs.PKA_MSW_RESULT_IS_ZERO != 0 {
		for i := range out {
			out[i] = 0
		}
		return 0, nil
	}
	end := int(msw & regs.PKA_MSW_ADDR_Msk)
	n := end - base/4 + 1
	if n <= 0 {
		return 0, ErrPKAFailure
	}
	if n > len(out) {
		return 0, ErrShortBuffer
	}
	if err := p.d.readArena(base, out[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

func checkOperands(vs ...[]uint32) error {
	for _, v := range vs {
		if len(v) == 0 {
			return ErrEmptyInput
		}
	}
	return nil
}

// binop lays out a as vector A and b as vector B, runs fn and reads the
// result from vector C.
func (p *PKAEngine) binop(ctx context.Context, fn uint32, a, b, out []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(a, b); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	aOff := 0
	bOff, err := d.writeArena(aOff, a)
	if err != nil {
		return 0, err
	}
	cOff, err := d.writeArena(bOff, b)
	if err != nil {
		return 0, err
	}
	if err := p.setVectors(aOff, bOff, cOff, -1); err != nil {
		return 0, err
	}
	if err := p.setLengths(len(a), len(b)); err != nil {
		return 0, err
	}
	if err := p.run(ctx, fn); err != nil {
		return 0, err
	}
	return p.readResult(cOff, out)
}

func (p *PKAEngine) setVectors(a, b, c, dOff int) error {
	regvals := []struct {
		reg uint32
		off int
	}{
		{regs.PKA_APTR, a},
		{regs.PKA_BPTR, b},
		{regs.PKA_CPTR, c},
		{regs.PKA_DPTR, dOff},
	}
	for _, rv := range regvals {
		if rv.off < 0 {
			continue
		}
		if err := p.d.hal.WriteRegister(rv.reg, uint32(rv.off>>2)); err != nil {
			return err
		}
	}
	return nil
}

func (p *PKAEngine) setLengths(a, b int) error {
	if a >= 0 {
		if err := p.d.hal.WriteRegister(regs.PKA_ALENGTH, uint32(a)); err != nil {
			return err
		}
	}
	if b >= 0 {
		if err := p.d.hal.WriteRegister(regs.PKA_BLENGTH, uint32(b)); err != nil {
			return err
		}
	}
	return nil
}

// Add computes a+b into out and returns the significant word count.
// out should hold max(len(a),len(b))+1 words for the carry.
func (p *PKAEngine) Add(ctx context.Context, a, b, out []uint32) (int, error) {
	return p.binop(ctx, regs.PKA_FUNCTION_ADD, a, b, out)
}

// Sub computes a-b into out. The hardware result is defined for a >= b;
// for a < b the unit wraps per its internal word width.
func (p *PKAEngine) Sub(ctx context.Context, a, b, out []uint32) (int, error) {
	return p.binop(ctx, regs.PKA_FUNCTION_SUBTRACT, a, b, out)
}

// Mul computes a*b into out. out should hold len(a)+len(b) words; the
// unit scribbles up to six scratch words beyond the product, which stay
// in operand RAM and are not read back.
func (p *PKAEngine) Mul(ctx context.Context, a, b, out []uint32) (int, error) {
	return p.binop(ctx, regs.PKA_FUNCTION_MULTIPLY, a, b, out)
}

// AddSub computes a+c-b into out. The three operands share one length
// register, so they are padded to a common word count first.
func (p *PKAEngine) AddSub(ctx context.Context, a, b, c, out []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(a, b, c); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if len(c) > n {
		n = len(c)
	}
	a, b, c = padWords(a, n), padWords(b, n), padWords(c, n)
	aOff := 0
	bOff, err := d.writeArena(aOff, a)
	if err != nil {
		return 0, err
	}
	cOff, err := d.writeArena(bOff, b)
	if err != nil {
		return 0, err
	}
	dOff, err := d.writeArena(cOff, c)
	if err != nil {
		return 0, err
	}
	if err := p.setVectors(aOff, bOff, cOff, dOff); err != nil {
		return 0, err
	}
	if err := p.setLengths(n, -1); err != nil {
		return 0, err
	}
	if err := p.run(ctx, regs.PKA_FUNCTION_ADDSUB); err != nil {
		return 0, err
	}
	return p.readResult(dOff, out)
}

// Mod computes a mod b into out. The unit always produces len(b)+1
// result words, zero-padded above the remainder, and that count is
// returned even for a zero remainder.
func (p *PKAEngine) Mod(ctx context.Context, a, b, out []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(a, b); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	n := len(b) + 1
	if n > len(out) {
		return 0, ErrShortBuffer
	}
	aOff := 0
	bOff, err := d.writeArena(aOff, a)
	if err != nil {
		return 0, err
	}
	cOff, err := d.writeArena(bOff, b)
	if err != nil {
		return 0, err
	}
	if err := p.setVectors(aOff, bOff, cOff, -1); err != nil {
		return 0, err
	}
	if err := p.setLengths(len(a), len(b)); err != nil {
		return 0, err
	}
	if err := p.run(ctx, regs.PKA_FUNCTION_MODULO); err != nil {
		return 0, err
	}
	msw, err := d.hal.ReadRegister(regs.PKA_MSW)
	if err != nil {
		return 0, err
	}
	if msw&regs.PKA_MSW_RESULT_IS_ZERO != 0 {
		for i := range out {
			out[i] = 0
		}
		return n, nil
	}
	if err := d.readArena(cOff, out[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// InvMod computes the modular inverse of a under modulus b into out and
// returns len(a) on success. ErrNoSolution reports that no inverse
// exists; any other non-zero terminal status is ErrPKAFailure.
func (p *PKAEngine) InvMod(ctx context.Context, a, b, out []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(a, b); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	if len(a) > len(out) {
		return 0, ErrShortBuffer
	}
	aOff := 0
	bOff, err := d.writeArena(aOff, a)
	if err != nil {
		return 0, err
	}
	cOff, err := d.writeArena(bOff, b)
	if err != nil {
		return 0, err
	}
	if err := p.setVectors(aOff, bOff, cOff, -1); err != nil {
		return 0, err
	}
	if err := p.setLengths(len(a), len(b)); err != nil {
		return 0, err
	}
	fn := uint32(regs.PKA_SEQ_INV_MOD) << regs.PKA_FUNCTION_SEQ_Pos
	if err := p.run(ctx, fn); err != nil {
		return 0, err
	}
	shift, err := d.hal.ReadRegister(regs.PKA_SHIFT)
	if err != nil {
		return 0, err
	}
	switch shift & regs.PKA_SHIFT_Msk {
	case 0:
	case 7:
		return 0, ErrNoSolution
	default:
		return 0, ErrPKAFailure
	}
	if err := d.readArena(cOff, out[:len(a)]); err != nil {
		return 0, err
	}
	return len(a), nil
}

// ExpMod computes base^e mod m into out.
func (p *PKAEngine) ExpMod(ctx context.Context, e, m, base, out []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(e, m, base); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	aOff := 0
	bOff, err := d.writeArena(aOff, e)
	if err != nil {
		return 0, err
	}
	cOff, err := d.writeArena(bOff, m)
	if err != nil {
		return 0, err
	}
	dOff, err := d.writeArena(cOff, base)
	if err != nil {
		return 0, err
	}
	if err := p.setVectors(aOff, bOff, cOff, dOff); err != nil {
		return 0, err
	}
	if err := p.setLengths(len(e), len(m)); err != nil {
		return 0, err
	}
	fn := uint32(regs.PKA_SEQ_EXP_MOD) << regs.PKA_FUNCTION_SEQ_Pos
	if err := p.run(ctx, fn); err != nil {
		return 0, err
	}
	msw, err := d.hal.ReadRegister(regs.PKA_MSW)
	if err != nil {
		return 0, err
	}
	if msw&regs.PKA_MSW_RESULT_IS_ZERO != 0 {
		for i := range out {
			out[i] = 0
		}
		return 0, nil
	}
	end := int(msw & regs.PKA_MSW_ADDR_Msk)
	if end == 0 {
		return 0, ErrPKAFailure
	}
	n := end + 1 - dOff/4
	if n <= 0 {
		return 0, ErrPKAFailure
	}
	if n > len(out) {
		return 0, ErrShortBuffer
	}
	if err := d.readArena(dOff, out[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Cmp compares a and b, returning -1, 0 or +1. The compare opcode takes
// a single length, so the shorter operand is zero-padded first.
func (p *PKAEngine) Cmp(ctx context.Context, a, b []uint32) (int, error) {
	d, err := p.dev()
	if err != nil {
		return 0, err
	}
	if err := checkOperands(a, b); err != nil {
		return 0, err
	}
	if err := p.checkIdle(); err != nil {
		return 0, err
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	a, b = padWords(a, n), padWords(b, n)
	aOff := 0
	cOff, err := d.writeArena(aOff, a)
	if err != nil {
		return 0, err
	}
	if _, err := d.writeArena(cOff, b); err != nil {
		return 0, err
	}
	if err := d.hal.WriteRegister(regs.PKA_APTR, uint32(aOff>>2)); err != nil {
		return 0, err
	}
	if err := d.hal.WriteRegister(regs.PKA_CPTR, uint32(cOff>>2)); err != nil {
		return 0, err
	}
	if err := p.setLengths(n, -1); err != nil {
		return 0, err
	}
	if err := p.run(ctx, regs.PKA_FUNCTION_COMPARE); err != nil {
		return 0, err
	}
	v, err := d.hal.ReadRegister(regs.PKA_COMPARE)
	if err != nil {
		return 0, err
	}
	switch {
	case v&regs.PKA_COMPARE_A_EQUALS_B != 0:
		return 0, nil
	case v&regs.PKA_COMPARE_A_LESS_THAN_B != 0:
		return -1, nil
	case v&regs.PKA_COMPARE_A_GREATER_THAN_B != 0:
		return 1, nil
	}
	return 0, ErrPKAFailure
}

func padWords(v []uint32, n int) []uint32 {
	if len(v) >= n {
		return v
	}
	out := make([]uint32, n)
	copy(out, v)
	return out
}
