package cc2538

import (
	"context"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// Curve point operands are laid out one element per slot of size+2+size%2
// words. The two padding words (three for odd sizes) are zero-filled so
// the sequencer never picks up stale operand RAM.

// ECCMul computes scalar*pt on the curve and returns the affine result.
// A scalar that maps to the point at infinity, such as the group order
// times the base point, fails with ErrInfinity.
func (p *PKAEngine) ECCMul(ctx context.Context, c *CurveInfo, scalar []uint32, pt Point) (Point, error) {
	d, err := p.dev()
	if err != nil {
		return Point{}, err
	}
	if err := checkOperands(scalar); err != nil {
		return Point{}, err
	}
	if len(scalar) > c.Size || len(pt.X) != c.Size || len(pt.Y) != c.Size {
		return Point{}, ErrSizeMismatch
	}
	if err := p.checkIdle(); err != nil {
		return Point{}, err
	}
	slot := c.Size + 2 + c.Size%2

	aOff := 0
	off, err := d.writeArena(aOff, padWords(scalar, c.Size))
	if err != nil {
		return Point{}, err
	}
	bOff := off
	for _, v := range [][]uint32{c.Prime, c.A, c.B} {
		if off, err = d.writeArena(off, padWords(v, slot)); err != nil {
			return Point{}, err
		}
	}
	cOff := off
	for _, v := range [][]uint32{pt.X, pt.Y} {
		if off, err = d.writeArena(off, padWords(v, slot)); err != nil {
			return Point{}, err
		}
	}
	dOff := off
	if err := p.setVectors(aOff, bOff, cOff, dOff); err != nil {
		return Point{}, err
	}
	if err := p.setLengths(c.Size, c.Size); err != nil {
		return Point{}, err
	}
	fn := uint32(regs.PKA_SEQ_ECC_MUL) << regs.PKA_FUNCTION_SEQ_Pos
	if err := p.run(ctx, fn); err != nil {
		return Point{}, err
	}
	return p.readPoint(dOff, c.Size)
}

// ECCAdd computes pt1+pt2 on the curve and returns the affine result.
// Adding a point to its negation fails with ErrInfinity.
func (p *PKAEngine) ECCAdd(ctx context.Context, c *CurveInfo, pt1, pt2 Point) (Point, error) {
	d, err := p.dev()
	if err != nil {
		return Point{}, err
	}
	if len(pt1.X) != c.Size || len(pt1.Y) != c.Size ||
		len(pt2.X) != c.Size || len(pt2.Y) != c.Size {
		return Point{}, ErrSizeMismatch
	}
	if err := p.checkIdle(); err != nil {
		return Point{}, err
	}
	slot := c.Size + 2 + c.Size%2

	aOff := 0
	off := aOff
	for _, v := range [][]uint32{pt1.X, pt1.Y} {
		if off, err = d.writeArena(off, padWords(v, slot)); err != nil {
			return Point{}, err
		}
	}
	bOff := off
	for _, v := range [][]uint32{c.Prime, c.A} {
		if off, err = d.writeArena(off, padWords(v, slot)); err != nil {
			return Point{}, err
		}
	}
	cOff := off
	for _, v := range [][]uint32{pt2.X, pt2.Y} {
		if off, err = d.writeArena(off, padWords(v, slot)); err != nil {
			return Point{}, err
		}
	}
	dOff := off
	if err := p.setVectors(aOff, bOff, cOff, dOff); err != nil {
		return Point{}, err
	}
	if err := p.setLengths(-1, c.Size); err != nil {
		return Point{}, err
	}
	fn := uint32(regs.PKA_SEQ_ECC_ADD) << regs.PKA_FUNCTION_SEQ_Pos
	if err := p.run(ctx, fn); err != nil {
		return Point{}, err
	}
	return p.readPoint(dOff, c.Size)
}

// readPoint reads an affine result laid down at dOff. The y coordinate
// sits one slot above x.
func (p *PKAEngine) readPoint(dOff, size int) (Point, error) {
	msw, err := p.d.hal.ReadRegister(regs.PKA_MSW)
	if err != nil {
		return Point{}, err
	}
	if msw&regs.PKA_MSW_RESULT_IS_ZERO != 0 {
		return Point{}, ErrInfinity
	}
	shift, err := p.d.hal.ReadRegister(regs.PKA_SHIFT)
	if err != nil {
		return Point{}, err
	}
	if s := shift & regs.PKA_SHIFT_Msk; s != 0 && s != 7 {
		return Point{}, ErrPKAFailure
	}
	out := NewPoint(size)
	if err := p.d.readArena(dOff, out.X); err != nil {
		return Point{}, err
	}
	yOff := dOff + 4*(size+2+size%2)
	if err := p.d.readArena(yOff, out.Y); err != nil {
		return Point{}, err
	}
	return out, nil
}
