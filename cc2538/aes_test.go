package cc2538_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"strconv"
	"testing"

	"github.com/meshfield/go-cc2538/cc2538"
)

func mustKeys(km *cc2538.KeyMaterial, err error) *cc2538.KeyMaterial {
	if err != nil {
		panic(err)
	}
	return km
}

// Four-block SP 800-38A test plaintext, shared by the CTR and CBC
// vectors.
var sp800Plain = fromHex(
	"6bc1bee22e409f96e93d7e117393172a" +
		"ae2d8a571e03ac9c9eb76fac45af8e51" +
		"30c81c46a35ce411e5fbc1191a0a52ef" +
		"f69f2445df4f9b17ad2b417be66c3710")

func TestCTRVector(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("2b7e151628aed2a6abf7158809cf4f3c")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}

	// SP 800-38A F.5.1: a full-width counter and no nonce prefix.
	ctr := fromHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	want := fromHex(
		"874d6191b620e3261bef6864990db6ce" +
			"9806f66b7970fdff8617187bb9fffdff" +
			"5ae4df3edbd5d35e5b4f09020db03eab" +
			"1e031dda2fbe03d1792170a0f3009cee")

	ct := make([]byte, len(sp800Plain))
	if err := m.Encrypt(ctx, 0, nil, ctr, sp800Plain, ct); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, 0, nil, ctr, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, sp800Plain) {
		t.Error(hex.Dump(pt))
	}
}

func TestCTRVector256(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	// A 256-bit key spans two slots; loading at slot 2 keys index 2.
	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key256, 2,
		fromHex("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}

	// SP 800-38A F.5.5.
	ctr := fromHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	want := fromHex(
		"601ec313775789a5b7a7f504bbf3d228" +
			"f443e3ca4d62b59aca84e990cacaf5c5" +
			"2b0930daa23de94ce87017ba2d84988d" +
			"dfc9c58db67aada613c2dd08457941a6")

	ct := make([]byte, len(sp800Plain))
	if err := m.Encrypt(ctx, 2, nil, ctr, sp800Plain, ct); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}
}

func TestCTRVector192(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key192, 6,
		fromHex("8e73b0f7da0e6452c810f32b809079e562f8ead2522c6b7b")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}

	// SP 800-38A F.5.3.
	ctr := fromHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	want := fromHex(
		"1abc932417521ca24f2b0459fe7e6e0b" +
			"090339ec0aa6faefd5ccc2c6f4ce8e94" +
			"1e36b26bd1ebc670d1bd1d665620abf7" +
			"4f78a7f6d29809585a97daec58c6b050")

	ct := make([]byte, len(sp800Plain))
	if err := m.Encrypt(ctx, 6, nil, ctr, sp800Plain, ct); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, 6, nil, ctr, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, sp800Plain) {
		t.Error(hex.Dump(pt))
	}
}

func TestCTRNonceSplit(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("2b7e151628aed2a6abf7158809cf4f3c")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}

	// 12-byte nonce with a 32-bit counter, message not a block multiple.
	nonce := fromHex("000102030405060708090a0b")
	ctr := fromHex("00000001")
	msg := []byte("a 37 byte message crossing two blocks")

	ct := make([]byte, len(msg))
	if err := m.Encrypt(ctx, 0, nonce, ctr, msg, ct); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ct, msg) {
		t.Error("ciphertext equals plaintext")
	}
	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, 0, nonce, ctr, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, msg) {
		t.Error(hex.Dump(pt))
	}
}

func TestECBVector(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 4,
		fromHex("000102030405060708090a0b0c0d0e0f")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.ECB()
	if err != nil {
		t.Fatal(err)
	}

	// FIPS-197 appendix B.
	pt := fromHex("00112233445566778899aabbccddeeff")
	want := fromHex("69c4e0d86a7b0430d8cdb78070b4c55a")

	ct := make([]byte, 16)
	if err := m.Encrypt(ctx, 4, pt, ct); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}

	back := make([]byte, 16)
	if err := m.Decrypt(ctx, 4, ct, back); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, pt) {
		t.Error(hex.Dump(back))
	}
}

func TestCBCVector(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("2b7e151628aed2a6abf7158809cf4f3c")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CBC()
	if err != nil {
		t.Fatal(err)
	}

	// SP 800-38A F.2.1.
	iv := fromHex("000102030405060708090a0b0c0d0e0f")
	want := fromHex(
		"7649abac8119b246cee98e9b12e9197d" +
			"5086cb9b507219ee95db113a917678b2" +
			"73bed6b8e3c1743b7116e69e22229516" +
			"3ff1caa1681fac09120eca307586e1a7")

	ct := make([]byte, len(sp800Plain))
	if err := m.Encrypt(ctx, 0, iv, sp800Plain, ct); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, 0, iv, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, sp800Plain) {
		t.Error(hex.Dump(pt))
	}
}

func TestCCMVector(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("123456789abcdef00000000000000000")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CCM()
	if err != nil {
		t.Fatal(err)
	}

	nonce := fromHex("0000f0e0d0c0b0a00000000005")
	msg := fromHex("14aabb00000102030405060708090a0b0c0d0e0f")
	info := cc2538.CCMInfo{KeyIndex: 0, LenFieldSize: 2}

	wantCT := fromHex("92e8adca5381bfd05bddf361090982e62c61014e")
	wantTag := fromHex("9b5c8ea56ba30096d719eefef448964b")

	ct := make([]byte, len(msg))
	tag := make([]byte, 16)
	if err := m.Encrypt(ctx, info, nonce, msg, ct, tag); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, wantCT) {
		t.Error(hex.Dump(ct))
	}
	if !bytes.Equal(tag, wantTag) {
		t.Error(hex.Dump(tag))
	}

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, info, nonce, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, msg) {
		t.Error(hex.Dump(pt))
	}

	// The tag length parameterizes the authentication flags: the same
	// frame sealed with an 8-byte MIC authenticates differently.
	info.MICLen = 8
	tag8 := make([]byte, 8)
	if err := m.Encrypt(ctx, info, nonce, msg, ct, tag8); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, wantCT) {
		t.Error(hex.Dump(ct))
	}
	if want := fromHex("df035d3f6d6e80c7"); !bytes.Equal(tag8, want) {
		t.Error(hex.Dump(tag8))
	}
}

func TestCCMAuthVector(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 1,
		fromHex("c0c1c2c3c4c5c6c7c8c9cacbcccdcecf")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CCM()
	if err != nil {
		t.Fatal(err)
	}

	// RFC 3610 packet vector #1.
	nonce := fromHex("00000003020100a0a1a2a3a4a5")
	payload := fromHex("08090a0b0c0d0e0f101112131415161718191a1b1c1d1e")
	info := cc2538.CCMInfo{
		KeyIndex:     1,
		LenFieldSize: 2,
		MICLen:       8,
		AAD:          fromHex("0001020304050607"),
	}

	wantCT := fromHex("588c979a61c663d2f066d0c2c0f989806d5f6b61dac384")
	wantTag := fromHex("17e8d12cfdf926e0")

	ct := make([]byte, len(payload))
	tag := make([]byte, 8)
	if err := m.Encrypt(ctx, info, nonce, payload, ct, tag); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, wantCT) {
		t.Error(hex.Dump(ct))
	}
	if !bytes.Equal(tag, wantTag) {
		t.Error(hex.Dump(tag))
	}

	pt := make([]byte, len(ct))
	if err := m.Decrypt(ctx, info, nonce, ct, pt); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, payload) {
		t.Error(hex.Dump(pt))
	}

	// Verify the frame the way a receiver would: re-seal the recovered
	// plaintext and compare tags.
	reseal := make([]byte, len(pt))
	tag2 := make([]byte, 8)
	if err := m.Encrypt(ctx, info, nonce, pt, reseal, tag2); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(tag2, tag) {
		t.Error(hex.Dump(tag2))
	}
}

// The length-field width trades message capacity against nonce length,
// and the MIC width selects the authentication flags. Each combination
// formats a different B0 block, so sweep a few and round-trip.
func TestCCMParamRoundTrip(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("404142434445464748494a4b4c4d4e4f")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.CCM()
	if err != nil {
		t.Fatal(err)
	}

	msg := fromHex("202122232425262728292a2b2c2d2e2f3031323334353637")
	aad := fromHex("0011223344556677")

	testCases := []struct {
		l   uint8
		mic uint8
	}{
		{2, 4},
		{3, 10},
		{8, 16},
	}
	for _, tc := range testCases {
		t.Run(strconv.Itoa(int(tc.l))+"-"+strconv.Itoa(int(tc.mic)), func(t *testing.T) {
			nonce := make([]byte, 15-int(tc.l))
			for i := range nonce {
				nonce[i] = byte(i + 1)
			}
			info := cc2538.CCMInfo{LenFieldSize: tc.l, MICLen: tc.mic, AAD: aad}

			ct := make([]byte, len(msg))
			tag := make([]byte, tc.mic)
			if err := m.Encrypt(ctx, info, nonce, msg, ct, tag); err != nil {
				t.Fatal(err)
			}
			if bytes.Equal(ct, msg) {
				t.Error("ciphertext equals plaintext")
			}

			pt := make([]byte, len(ct))
			if err := m.Decrypt(ctx, info, nonce, ct, pt); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(pt, msg) {
				t.Error(hex.Dump(pt))
			}

			tag2 := make([]byte, tc.mic)
			if err := m.Encrypt(ctx, info, nonce, pt, ct, tag2); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(tag2, tag) {
				t.Error(hex.Dump(tag2))
			}
		})
	}
}

func TestKeyStoreSizeSwitch(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	for _, km := range []*cc2538.KeyMaterial{
		mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
			fromHex("2b7e151628aed2a6abf7158809cf4f3c"))),
		mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 6,
			fromHex("c0c1c2c3c4c5c6c7c8c9cacbcccdcecf"))),
	} {
		if err := e.LoadKey(ctx, km); err != nil {
			t.Fatal(err)
		}
	}

	// Changing the key-store size erases every stored key, not just the
	// slots being rewritten.
	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key256, 0,
		fromHex("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}

	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}
	ctr := fromHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	ct := make([]byte, 16)
	if err := m.Encrypt(ctx, 6, nil, ctr, sp800Plain[:16], ct); err != cc2538.ErrKeyStoreRead {
		t.Errorf("%v != %v", err, cc2538.ErrKeyStoreRead)
	}

	// The rewritten slot still works.
	if err := m.Encrypt(ctx, 0, nil, ctr, sp800Plain[:16], ct); err != nil {
		t.Fatal(err)
	}
	if want := fromHex("601ec313775789a5b7a7f504bbf3d228"); !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}
}

func TestKeyStoreReadUnwritten(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	m, err := e.CTR()
	if err != nil {
		t.Fatal(err)
	}
	ctr := fromHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	ct := make([]byte, 16)
	if err := m.Encrypt(ctx, 5, nil, ctr, sp800Plain[:16], ct); err != cc2538.ErrKeyStoreRead {
		t.Errorf("%v != %v", err, cc2538.ErrKeyStoreRead)
	}
}

func TestLoadKeyFaults(t *testing.T) {
	d, hw := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 4,
		fromHex("000102030405060708090a0b0c0d0e0f")))

	hw.HoldBusy("aes", true)
	if err := e.LoadKey(ctx, km); err != cc2538.ErrBusy {
		t.Errorf("%v != %v", err, cc2538.ErrBusy)
	}
	hw.HoldBusy("aes", false)

	hw.FailDMA(1)
	if err := e.LoadKey(ctx, km); err != cc2538.ErrDMABus {
		t.Errorf("%v != %v", err, cc2538.ErrDMABus)
	}
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}

	// The retried load landed the key intact.
	m, err := e.ECB()
	if err != nil {
		t.Fatal(err)
	}
	ct := make([]byte, 16)
	if err := m.Encrypt(ctx, 4, fromHex("00112233445566778899aabbccddeeff"), ct); err != nil {
		t.Fatal(err)
	}
	if want := fromHex("69c4e0d86a7b0430d8cdb78070b4c55a"); !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}
}

func TestAESFaults(t *testing.T) {
	d, hw := newTestDev(t)
	ctx := context.Background()

	e, err := d.AES(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Release()

	km := mustKeys(cc2538.NewKeyMaterial(cc2538.Key128, 0,
		fromHex("000102030405060708090a0b0c0d0e0f")))
	if err := e.LoadKey(ctx, km); err != nil {
		t.Fatal(err)
	}
	m, err := e.ECB()
	if err != nil {
		t.Fatal(err)
	}

	pt := fromHex("00112233445566778899aabbccddeeff")
	ct := make([]byte, 16)

	hw.HoldBusy("aes", true)
	if err := m.Encrypt(ctx, 0, pt, ct); err != cc2538.ErrBusy {
		t.Errorf("%v != %v", err, cc2538.ErrBusy)
	}
	hw.HoldBusy("aes", false)

	hw.FailDMA(1)
	if err := m.Encrypt(ctx, 0, pt, ct); err != cc2538.ErrDMABus {
		t.Errorf("%v != %v", err, cc2538.ErrDMABus)
	}

	// The engine is parked after the fault and the retry succeeds.
	if err := m.Encrypt(ctx, 0, pt, ct); err != nil {
		t.Fatal(err)
	}
	if want := fromHex("69c4e0d86a7b0430d8cdb78070b4c55a"); !bytes.Equal(ct, want) {
		t.Error(hex.Dump(ct))
	}
}

func TestAESArgumentErrors(t *testing.T) {
	d, _ := newTestDev(t)
	ctx := context.Background()

	buf := make([]byte, 64)
	long := make([]byte, 0x10000)
	nonce13 := make([]byte, 13)

	testCases := []struct {
		name string
		op   func(e *cc2538.AESEngine) error
		want error
	}{
		{
			"ecb partial block",
			func(e *cc2538.AESEngine) error {
				m, err := e.ECB()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:15], buf[16:32])
			},
			cc2538.ErrBlockLength,
		},
		{
			"ecb short output",
			func(e *cc2538.AESEngine) error {
				m, err := e.ECB()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:32], buf[32:48])
			},
			cc2538.ErrShortBuffer,
		},
		{
			"cbc iv length",
			func(e *cc2538.AESEngine) error {
				m, err := e.CBC()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:8], buf[:16], buf[16:32])
			},
			cc2538.ErrIVLength,
		},
		{
			"ctr counter not words",
			func(e *cc2538.AESEngine) error {
				m, err := e.CTR()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:13], buf[13:16], buf[:16], buf[16:32])
			},
			cc2538.ErrIVLength,
		},
		{
			"ctr split not a block",
			func(e *cc2538.AESEngine) error {
				m, err := e.CTR()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:4], buf[4:12], buf[:16], buf[16:32])
			},
			cc2538.ErrIVLength,
		},
		{
			"ctr input too long",
			func(e *cc2538.AESEngine) error {
				m, err := e.CTR()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, nil, buf[:16], long, long)
			},
			cc2538.ErrDataTooLong,
		},
		{
			"ccm length field",
			func(e *cc2538.AESEngine) error {
				m, err := e.CCM()
				if err != nil {
					return err
				}
				info := cc2538.CCMInfo{LenFieldSize: 1}
				return m.Encrypt(ctx, info, nonce13, buf[:16], buf[16:32], nil)
			},
			cc2538.ErrIVLength,
		},
		{
			"ccm nonce length",
			func(e *cc2538.AESEngine) error {
				m, err := e.CCM()
				if err != nil {
					return err
				}
				info := cc2538.CCMInfo{LenFieldSize: 2}
				return m.Encrypt(ctx, info, nonce13[:12], buf[:16], buf[16:32], nil)
			},
			cc2538.ErrNonceLength,
		},
		{
			"ccm odd mic",
			func(e *cc2538.AESEngine) error {
				m, err := e.CCM()
				if err != nil {
					return err
				}
				info := cc2538.CCMInfo{LenFieldSize: 2, MICLen: 3}
				return m.Encrypt(ctx, info, nonce13, buf[:16], buf[16:32], nil)
			},
			cc2538.ErrDigestLength,
		},
		{
			"ccm oversized tag",
			func(e *cc2538.AESEngine) error {
				m, err := e.CCM()
				if err != nil {
					return err
				}
				info := cc2538.CCMInfo{LenFieldSize: 2, MICLen: 8}
				return m.Encrypt(ctx, info, nonce13, buf[:16], buf[16:32], buf[32:49])
			},
			cc2538.ErrDigestLength,
		},
		{
			"second mode",
			func(e *cc2538.AESEngine) error {
				if _, err := e.CTR(); err != nil {
					return err
				}
				_, err := e.ECB()
				return err
			},
			cc2538.ErrModeSelected,
		},
		{
			"gcm",
			func(e *cc2538.AESEngine) error {
				m, err := e.GCM()
				if err != nil {
					return err
				}
				return m.Encrypt(ctx, 0, buf[:16], nil, buf[:16], buf[16:32], buf[32:48])
			},
			cc2538.ErrUnsupported,
		},
		{
			"cbc-mac",
			func(e *cc2538.AESEngine) error {
				m, err := e.CBCMAC()
				if err != nil {
					return err
				}
				return m.Sum(ctx, 0, buf[:16], buf[16:32])
			},
			cc2538.ErrUnsupported,
		},
		{
			"released",
			func(e *cc2538.AESEngine) error {
				e.Release()
				_, err := e.ECB()
				return err
			},
			cc2538.ErrReleased,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := d.AES(ctx)
			if err != nil {
				t.Fatal(err)
			}
			defer e.Release()
			if err := tc.op(e); err != tc.want {
				t.Errorf("%v != %v", err, tc.want)
			}
		})
	}
}
