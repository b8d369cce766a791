package cc2538_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/meshfield/go-cc2538/cc2538"
)

// Small multiples of the P-256 generator, word 0 least significant.
var p256Multiples = []struct {
	k    uint32
	want cc2538.Point
}{
	{2, cc2538.Point{
		X: []uint32{0x47669978, 0xa60b48fc, 0x77f21b35, 0xc08969e2, 0x04b51ac3, 0x8a523803, 0x8d034f7e, 0x7cf27b18},
		Y: []uint32{0x227873d1, 0x9e04b79d, 0x3ce98229, 0xba7dade6, 0x9f7430db, 0x293d9ac6, 0xdb8ed040, 0x07775510},
	}},
	{3, cc2538.Point{
		X: []uint32{0xc6e7fd6c, 0xfb41661b, 0xefada985, 0xe6c6b721, 0x1d4bf165, 0xc8f7ef95, 0xa6330a44, 0x5ecbe4d1},
		Y: []uint32{0xa27d5032, 0x9a79b127, 0x384fb83d, 0xd82ab036, 0x1a64a2ec, 0x374b06ce, 0x4998ff7e, 0x8734640c},
	}},
	{6, cc2538.Point{
		X: []uint32{0x3c2291a9, 0xc6b0aae9, 0xebb215b4, 0x024c740d, 0xb897dde3, 0x92d3242c, 0x76a4602c, 0xb01a172a},
		Y: []uint32{0x8fc77fe2, 0xfd7c4853, 0x1c7e16bd, 0x1c00f770, 0xfba70379, 0x6fec0e2d, 0x3237dad5, 0xe85c1074},
	}},
}

func pointEqual(a, b cc2538.Point) bool {
	if len(a.X) != len(b.X) || len(a.Y) != len(b.Y) {
		return false
	}
	for i := range a.X {
		if a.X[i] != b.X[i] {
			return false
		}
	}
	for i := range a.Y {
		if a.Y[i] != b.Y[i] {
			return false
		}
	}
	return true
}

func TestECCMulBase(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	for _, tc := range p256Multiples {
		t.Run(strconv.Itoa(int(tc.k)), func(t *testing.T) {
			got, err := p.ECCMul(ctx, c, []uint32{tc.k}, c.BasePoint())
			if err != nil {
				t.Fatal(err)
			}
			if !pointEqual(got, tc.want) {
				t.Errorf("x %08x y %08x", got.X, got.Y)
			}
		})
	}
}

func TestECCAdd(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	g := c.BasePoint()

	dbl, err := p.ECCAdd(ctx, c, g, g)
	if err != nil {
		t.Fatal(err)
	}
	if !pointEqual(dbl, p256Multiples[0].want) {
		t.Errorf("x %08x y %08x", dbl.X, dbl.Y)
	}

	trpl, err := p.ECCAdd(ctx, c, dbl, g)
	if err != nil {
		t.Fatal(err)
	}
	if !pointEqual(trpl, p256Multiples[1].want) {
		t.Errorf("x %08x y %08x", trpl.X, trpl.Y)
	}
}

// A multiplication result has to land back on the curve. Check
// y^2 == x^3 + ax + b mod p with the big-number engine itself.
func TestECCOnCurve(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	pt, err := p.ECCMul(ctx, c, []uint32{0xdecafbad, 0xfeedface}, c.BasePoint())
	if err != nil {
		t.Fatal(err)
	}

	mulMod := func(a, b []uint32) []uint32 {
		t.Helper()
		prod := make([]uint32, len(a)+len(b))
		n, err := p.Mul(ctx, a, b, prod)
		if err != nil {
			t.Fatal(err)
		}
		red := make([]uint32, c.Size+1)
		if _, err := p.Mod(ctx, prod[:n], c.Prime, red); err != nil {
			t.Fatal(err)
		}
		return red[:c.Size]
	}

	lhs := mulMod(pt.Y, pt.Y)

	cube := mulMod(mulMod(pt.X, pt.X), pt.X)
	ax := mulMod(c.A, pt.X)
	sum := make([]uint32, c.Size+1)
	n, err := p.Add(ctx, cube, ax, sum)
	if err != nil {
		t.Fatal(err)
	}
	sum2 := make([]uint32, c.Size+2)
	if n, err = p.Add(ctx, sum[:n], c.B, sum2); err != nil {
		t.Fatal(err)
	}
	rhs := make([]uint32, c.Size+1)
	if _, err := p.Mod(ctx, sum2[:n], c.Prime, rhs); err != nil {
		t.Fatal(err)
	}

	cmp, err := p.Cmp(ctx, lhs, rhs[:c.Size])
	if err != nil {
		t.Fatal(err)
	}
	if cmp != 0 {
		t.Errorf("x %08x y %08x", pt.X, pt.Y)
	}
}

func TestECCMulP192(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P192()
	want := cc2538.Point{
		X: []uint32{0x6982a888, 0x29a70fb1, 0x1588a3f6, 0xd3553463, 0x28783f2a, 0xdafebf58},
		Y: []uint32{0x5c7e93ab, 0x59331afa, 0x141b868f, 0x46b27bbc, 0x993da0fa, 0xdd6bda0d},
	}
	got, err := p.ECCMul(ctx, c, []uint32{2}, c.BasePoint())
	if err != nil {
		t.Fatal(err)
	}
	if !pointEqual(got, want) {
		t.Errorf("x %08x y %08x", got.X, got.Y)
	}
}

func TestECCInfinity(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	g := c.BasePoint()

	// The group order times the base point.
	if _, err := p.ECCMul(ctx, c, c.N, g); err != cc2538.ErrInfinity {
		t.Errorf("%v != %v", err, cc2538.ErrInfinity)
	}
	if _, err := p.ECCMul(ctx, c, []uint32{0}, g); err != cc2538.ErrInfinity {
		t.Errorf("%v != %v", err, cc2538.ErrInfinity)
	}

	// A point plus its negation.
	neg := c.BasePoint()
	neg.Y = []uint32{0xc840ae0a, 0x3449bf97, 0x94cea131, 0xd431cca9, 0x83f061e9, 0x711814b5, 0x01e58065, 0xb01cbd1c}
	if _, err := p.ECCAdd(ctx, c, g, neg); err != cc2538.ErrInfinity {
		t.Errorf("%v != %v", err, cc2538.ErrInfinity)
	}
}

func TestECCSizeMismatch(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	short := cc2538.P192().BasePoint()

	if _, err := p.ECCMul(ctx, c, make([]uint32, 9), c.BasePoint()); err != cc2538.ErrSizeMismatch {
		t.Errorf("%v != %v", err, cc2538.ErrSizeMismatch)
	}
	if _, err := p.ECCMul(ctx, c, []uint32{2}, short); err != cc2538.ErrSizeMismatch {
		t.Errorf("%v != %v", err, cc2538.ErrSizeMismatch)
	}
	if _, err := p.ECCAdd(ctx, c, c.BasePoint(), short); err != cc2538.ErrSizeMismatch {
		t.Errorf("%v != %v", err, cc2538.ErrSizeMismatch)
	}
}
