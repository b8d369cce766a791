package cc2538_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/meshfield/go-cc2538/cc2538"
)

// RFC 6979 appendix A.2.5, P-256 with SHA-256 over the message
// "sample". The deterministic ephemeral scalar makes the signature a
// fixed known answer.
var (
	ecdsaPriv = []uint32{
		0x120f6721, 0x7b8a622b, 0x36e89b12, 0x4e50c3db,
		0x67b1d693, 0x6b5c2157, 0x45ba7516, 0xc9afa9d8,
	}
	ecdsaK = []uint32{
		0x3d8aad60, 0x4d612949, 0x3382b0f2, 0x3b17aa87,
		0x8355dd4c, 0x08653839, 0xd01abe90, 0xa6e3c57d,
	}
	ecdsaPub = cc2538.Point{
		X: []uint32{
			0x60f29fb6, 0xe669622e, 0x3b61fa6c, 0xc049b892,
			0xc6356d68, 0xc961eb74, 0x255a9d31, 0x60fed4ba,
		},
		Y: []uint32{
			0xd4462299, 0x77a3c294, 0x2d7e9f51, 0xf2f1b20c,
			0x5628bc64, 0xa41ae9e9, 0x08b8bc99, 0x7903fe10,
		},
	}
	ecdsaDigest = fromHex("af2bdbe1aa9b6ec1e2ade1d694f41fc71a831d0268e9891562113d8a62add1bf")
)

const ecdsaSig = "3046022100efd48b2aacb6a8fd1140dd9cd45e81d69d2c877b56aaf991c34d0ea84eaf3716" +
	"022100f7cb1c942d657c41d436c7a1b6e29f65f3e900dbb9aff4064dc4ab2f843acda8"

func TestECDSASign(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	sig, err := p.ECDSASign(ctx, cc2538.P256(), ecdsaPriv, ecdsaK, ecdsaDigest)
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(sig); got != ecdsaSig {
		t.Errorf("%s != %s", got, ecdsaSig)
	}

	// The encoding has to satisfy a foreign verifier too.
	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(fromHex("60fed4ba255a9d31c961eb74c6356d68c049b8923b61fa6ce669622e60f29fb6")),
		Y:     new(big.Int).SetBytes(fromHex("7903fe1008b8bc99a41ae9e95628bc64f2f1b20c2d7e9f5177a3c294d4462299")),
	}
	if !ecdsa.VerifyASN1(pub, ecdsaDigest, sig) {
		t.Error("signature rejected by crypto/ecdsa")
	}
}

func TestECDSAVerify(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	sig := fromHex(ecdsaSig)
	ok, err := p.ECDSAVerify(ctx, cc2538.P256(), ecdsaPub, ecdsaDigest, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("good signature rejected")
	}

	tampered := append([]byte(nil), ecdsaDigest...)
	tampered[0] ^= 1
	ok, err = p.ECDSAVerify(ctx, cc2538.P256(), ecdsaPub, tampered, sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("tampered digest accepted")
	}

	badSig := append([]byte(nil), sig...)
	badSig[len(badSig)-1] ^= 1
	ok, err = p.ECDSAVerify(ctx, cc2538.P256(), ecdsaPub, ecdsaDigest, badSig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("tampered signature accepted")
	}
}

func TestECDSASignP192(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P192()
	priv := []uint32{0x12345678, 0x9abcdef0, 1, 0, 0, 0}
	k := []uint32{0x0badcafe, 0, 1, 0, 0, 0}
	// SHA-256 of "p192"; the leftmost 24 bytes bind a 192-bit order.
	digest := fromHex("40afda12f46ec71fb3f757085931033c9450fd3c182e950d11ad521ffecc744a")
	want := "30340218356a0be4ae7a35b7234c8bb813fd82146c7fe7656e8476e2" +
		"02180127b2826f770e33021c7e554867dc5d39363794340adfcd"

	sig, err := p.ECDSASign(ctx, c, priv, k, digest)
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(sig); got != want {
		t.Errorf("%s != %s", got, want)
	}

	pub := cc2538.Point{
		X: []uint32{0xa7abbad6, 0x0d9ca5bd, 0x172174e0, 0x09e76ca5, 0x6366e810, 0x24af8c7c},
		Y: []uint32{0x2ce09a29, 0xab7b68c2, 0xbaebc9ec, 0x07d86708, 0x50f57bf5, 0x79f87f4f},
	}
	ok, err := p.ECDSAVerify(ctx, c, pub, digest, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("signature rejected")
	}
}

func TestECDSAVerifyEncoding(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	sig := fromHex(ecdsaSig)

	testCases := []struct {
		name    string
		sig     []byte
		wantErr bool
	}{
		{"truncated", sig[:10], true},
		{"trailing garbage", append(append([]byte(nil), sig...), 0), true},
		{"empty", nil, true},
		{"zero components", fromHex("3006020100020100"), false},
		{"r equals order", fromHex("3026022100ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551020101"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := p.ECDSAVerify(ctx, cc2538.P256(), ecdsaPub, ecdsaDigest, tc.sig)
			if ok {
				t.Error("bad signature accepted")
			}
			if gotErr := err != nil; gotErr != tc.wantErr {
				t.Errorf("err = %v, want error %v", err, tc.wantErr)
			}
		})
	}
}

func TestECDSASignErrors(t *testing.T) {
	d, hw := newTestDev(t)
	ctx := context.Background()

	p, err := d.PKA(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	c := cc2538.P256()
	long := make([]uint32, c.Size+1)
	long[0] = 1

	testCases := []struct {
		name    string
		priv, k []uint32
		digest  []byte
		want    error
	}{
		{"empty private scalar", nil, ecdsaK, ecdsaDigest, cc2538.ErrEmptyInput},
		{"oversized private scalar", long, ecdsaK, ecdsaDigest, cc2538.ErrSizeMismatch},
		{"oversized ephemeral", ecdsaPriv, long, ecdsaDigest, cc2538.ErrSizeMismatch},
		{"empty digest", ecdsaPriv, ecdsaK, nil, cc2538.ErrEmptyInput},
		{"ephemeral multiple of order", ecdsaPriv, c.N, ecdsaDigest, cc2538.ErrEphemeralKey},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.ECDSASign(ctx, c, tc.priv, tc.k, tc.digest); err != tc.want {
				t.Errorf("%v != %v", err, tc.want)
			}
		})
	}

	hw.HoldBusy("pka", true)
	if _, err := p.ECDSASign(ctx, c, ecdsaPriv, ecdsaK, ecdsaDigest); err != cc2538.ErrBusy {
		t.Errorf("%v != %v", err, cc2538.ErrBusy)
	}
	hw.HoldBusy("pka", false)

	if _, err := p.ECDSAVerify(ctx, c, cc2538.P192().BasePoint(), ecdsaDigest, fromHex(ecdsaSig)); err != cc2538.ErrSizeMismatch {
		t.Errorf("%v != %v", err, cc2538.ErrSizeMismatch)
	}
}
