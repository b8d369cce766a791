package cc2538

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ECDSA over the PKA primitives. The sequencer has no signature
// protocol of its own; sign and verify are composed from the ECC and
// big-number operations, with every modular step running on the unit.

// ECDSASign signs digest with the private scalar priv and the supplied
// ephemeral scalar. It returns the ASN.1 encoded signature.
//
// The ephemeral scalar must be drawn fresh and uniform below the group
// order for every signature; reusing one across two digests reveals the
// private scalar. ErrEphemeralKey reports the rare draw that produces a
// degenerate signature component and must be redrawn.
func (p *PKAEngine) ECDSASign(ctx context.Context, c *CurveInfo, priv, ephemeral []uint32, digest []byte) ([]byte, error) {
	if err := checkOperands(priv, ephemeral); err != nil {
		return nil, err
	}
	if len(priv) > c.Size || len(ephemeral) > c.Size {
		return nil, ErrSizeMismatch
	}
	if len(digest) == 0 {
		return nil, ErrEmptyInput
	}

	kG, err := p.ECCMul(ctx, c, ephemeral, c.BasePoint())
	if errors.Is(err, ErrInfinity) {
		return nil, ErrEphemeralKey
	}
	if err != nil {
		return nil, err
	}
	red := make([]uint32, c.Size+1)
	if _, err := p.Mod(ctx, kG.X, c.N, red); err != nil {
		return nil, err
	}
	r := red[:c.Size]
	if zeroWords(r) {
		return nil, ErrEphemeralKey
	}

	// s = k^-1 (e + priv*r) mod n
	dr, err := p.mulMod(ctx, priv, r, c.N)
	if err != nil {
		return nil, err
	}
	e := hashWords(digest, c.Size)
	sum, err := p.addMod(ctx, e, dr, c.N)
	if err != nil {
		return nil, err
	}
	kInv := make([]uint32, c.Size)
	if _, err := p.InvMod(ctx, padWords(ephemeral, c.Size), c.N, kInv); err != nil {
		return nil, err
	}
	s, err := p.mulMod(ctx, kInv, sum, c.N)
	if err != nil {
		return nil, err
	}
	if zeroWords(s) {
		return nil, ErrEphemeralKey
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(bigFromWords(r))
		b.AddASN1BigInt(bigFromWords(s))
	})
	return b.Bytes()
}

// ECDSAVerify verifies an ASN.1 encoded signature over digest against
// the public point pub. A signature that fails verification returns
// false with a nil error; the error reports malformed encodings and
// engine faults.
func (p *PKAEngine) ECDSAVerify(ctx context.Context, c *CurveInfo, pub Point, digest, sig []byte) (bool, error) {
	if len(pub.X) != c.Size || len(pub.Y) != c.Size {
		return false, ErrSizeMismatch
	}
	if len(digest) == 0 {
		return false, ErrEmptyInput
	}
	var (
		r, s  = big.Int{}, big.Int{}
		inner cryptobyte.String
	)
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(&r) ||
		!inner.ReadASN1Integer(&s) ||
		!inner.Empty() {
		return false, errors.New("cc2538: invalid signature")
	}
	if r.Sign() <= 0 || s.Sign() <= 0 ||
		r.BitLen() > 32*c.Size || s.BitLen() > 32*c.Size {
		return false, nil
	}
	rW := wordsFromBig(&r, c.Size)
	sW := wordsFromBig(&s, c.Size)
	for _, v := range [][]uint32{rW, sW} {
		cmp, err := p.Cmp(ctx, v, c.N)
		if err != nil {
			return false, err
		}
		if cmp >= 0 {
			return false, nil
		}
	}

	// u1 = e*s^-1, u2 = r*s^-1, then check (u1*G + u2*pub).x == r mod n.
	w := make([]uint32, c.Size)
	if _, err := p.InvMod(ctx, sW, c.N, w); err != nil {
		return false, err
	}
	e := hashWords(digest, c.Size)
	u1, err := p.mulMod(ctx, e, w, c.N)
	if err != nil {
		return false, err
	}
	u2, err := p.mulMod(ctx, rW, w, c.N)
	if err != nil {
		return false, err
	}

	var pt Point
	if zeroWords(u1) {
		pt, err = p.ECCMul(ctx, c, u2, pub)
	} else {
		var g, q Point
		g, err = p.ECCMul(ctx, c, u1, c.BasePoint())
		if err == nil {
			q, err = p.ECCMul(ctx, c, u2, pub)
		}
		if err == nil {
			pt, err = p.ECCAdd(ctx, c, g, q)
		}
	}
	if errors.Is(err, ErrInfinity) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	red := make([]uint32, c.Size+1)
	if _, err := p.Mod(ctx, pt.X, c.N, red); err != nil {
		return false, err
	}
	cmp, err := p.Cmp(ctx, red[:c.Size], rW)
	if err != nil {
		return false, err
	}
	return cmp == 0, nil
}

// mulMod computes a*b mod m through the multiply and reduce opcodes.
func (p *PKAEngine) mulMod(ctx context.Context, a, b, m []uint32) ([]uint32, error) {
	prod := make([]uint32, len(a)+len(b))
	n, err := p.Mul(ctx, a, b, prod)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return make([]uint32, len(m)), nil
	}
	out := make([]uint32, len(m)+1)
	if _, err := p.Mod(ctx, prod[:n], m, out); err != nil {
		return nil, err
	}
	return out[:len(m)], nil
}

// addMod computes a+b mod m through the add and reduce opcodes.
func (p *PKAEngine) addMod(ctx context.Context, a, b, m []uint32) ([]uint32, error) {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	sum := make([]uint32, size+1)
	n, err := p.Add(ctx, a, b, sum)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return make([]uint32, len(m)), nil
	}
	out := make([]uint32, len(m)+1)
	if _, err := p.Mod(ctx, sum[:n], m, out); err != nil {
		return nil, err
	}
	return out[:len(m)], nil
}

// hashWords interprets the leftmost curve-size bytes of digest as a
// big-endian integer in engine word form.
func hashWords(digest []byte, size int) []uint32 {
	if len(digest) > 4*size {
		digest = digest[:4*size]
	}
	return wordsFromBig(new(big.Int).SetBytes(digest), size)
}

func zeroWords(w []uint32) bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}

func bigFromWords(w []uint32) *big.Int {
	b := make([]byte, 4*len(w))
	for i, v := range w {
		binary.BigEndian.PutUint32(b[len(b)-4*(i+1):], v)
	}
	return new(big.Int).SetBytes(b)
}

// wordsFromBig lays v out as size little-endian words. The value must
// fit or FillBytes panics; callers bound it first.
func wordsFromBig(v *big.Int, size int) []uint32 {
	b := make([]byte, 4*size)
	v.FillBytes(b)
	w := make([]uint32, size)
	for i := range w {
		w[i] = binary.BigEndian.Uint32(b[len(b)-4*(i+1):])
	}
	return w
}
