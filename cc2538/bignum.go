package cc2538

import (
	"context"
	"fmt"
	"strings"
)

// BigNum is a fixed-capacity vector of little-endian 32-bit words with
// an active length, the operand form the PKA engine works on. Results
// allocate their own backing storage; contents are copied in and out of
// the accelerator per operation, never aliased.
type BigNum struct {
	words []uint32
	n     int
}

// NewBigNum returns an empty BigNum able to hold capacity words.
func NewBigNum(capacity int) *BigNum {
	return &BigNum{words: make([]uint32, capacity)}
}

// BigNumFromWords returns a BigNum holding the given words, word 0 least
// significant.
func BigNumFromWords(w ...uint32) *BigNum {
	b := NewBigNum(len(w))
	copy(b.words, w)
	b.n = len(w)
	return b
}

// SetWords replaces the value. It fails with ErrShortBuffer when w
// exceeds the capacity.
func (b *BigNum) SetWords(w []uint32) error {
	if len(w) > len(b.words) {
		return ErrShortBuffer
	}
	copy(b.words, w)
	for i := len(w); i < len(b.words); i++ {
		b.words[i] = 0
	}
	b.n = len(w)
	return nil
}

// Words returns the active words. The slice aliases the BigNum.
func (b *BigNum) Words() []uint32 { return b.words[:b.n] }

// Len returns the active word count.
func (b *BigNum) Len() int { return b.n }

// Cap returns the capacity in words.
func (b *BigNum) Cap() int { return len(b.words) }

func (b *BigNum) String() string {
	if b.n == 0 {
		return "0"
	}
	var sb strings.Builder
	for i := b.n - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%08x", b.words[i])
	}
	return sb.String()
}

// Add returns b+x.
func (b *BigNum) Add(ctx context.Context, p *PKAEngine, x *BigNum) (*BigNum, error) {
	n := b.n
	if x.n > n {
		n = x.n
	}
	out := NewBigNum(n + 1)
	return out.fill(p.Add(ctx, b.Words(), x.Words(), out.words))
}

// Sub returns b-x, for b >= x.
func (b *BigNum) Sub(ctx context.Context, p *PKAEngine, x *BigNum) (*BigNum, error) {
	n := b.n
	if x.n > n {
		n = x.n
	}
	out := NewBigNum(n)
	return out.fill(p.Sub(ctx, b.Words(), x.Words(), out.words))
}

// AddSub returns b+add-sub.
func (b *BigNum) AddSub(ctx context.Context, p *PKAEngine, add, sub *BigNum) (*BigNum, error) {
	out := NewBigNum(b.n)
	return out.fill(p.AddSub(ctx, b.Words(), sub.Words(), add.Words(), out.words))
}

// Mul returns b*x. The capacity includes the scratch words the unit
// appends beyond the product.
func (b *BigNum) Mul(ctx context.Context, p *PKAEngine, x *BigNum) (*BigNum, error) {
	out := NewBigNum(b.n + x.n + 6)
	return out.fill(p.Mul(ctx, b.Words(), x.Words(), out.words))
}

// Mod returns b mod m.
func (b *BigNum) Mod(ctx context.Context, p *PKAEngine, m *BigNum) (*BigNum, error) {
	out := NewBigNum(m.n + 1)
	return out.fill(p.Mod(ctx, b.Words(), m.Words(), out.words))
}

// InvMod returns the inverse of b under modulus m, or ErrNoSolution.
func (b *BigNum) InvMod(ctx context.Context, p *PKAEngine, m *BigNum) (*BigNum, error) {
	out := NewBigNum(b.n)
	return out.fill(p.InvMod(ctx, b.Words(), m.Words(), out.words))
}

// ExpMod returns b^e mod m.
func (b *BigNum) ExpMod(ctx context.Context, p *PKAEngine, e, m *BigNum) (*BigNum, error) {
	out := NewBigNum(m.n + 1)
	return out.fill(p.ExpMod(ctx, e.Words(), m.Words(), b.Words(), out.words))
}

// Cmp compares b against x, returning -1, 0 or +1.
func (b *BigNum) Cmp(ctx context.Context, p *PKAEngine, x *BigNum) (int, error) {
	return p.Cmp(ctx, b.Words(), x.Words())
}

func (b *BigNum) fill(n int, err error) (*BigNum, error) {
	if err != nil {
		return nil, err
	}
	b.n = n
	return b, nil
}
