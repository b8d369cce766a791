package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"flag"
	"fmt"
	"io"

	"github.com/meshfield/go-cc2538/cc2538"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type signConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	key        string
	verifier   string
}

func (c *signConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "sign")
	}

	d, closer, err := newDev(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	curve := cc2538.P256()
	var priv []uint32
	if c.key != "" {
		priv, err = parseWords(c.key)
	} else {
		priv, err = randomScalar(curve)
	}
	if err != nil {
		return err
	}

	p, err := d.PKA(ctx)
	if err != nil {
		return err
	}
	defer p.Release()

	pub, err := p.ECCMul(ctx, curve, priv, curve.BasePoint())
	if err != nil {
		return err
	}
	hostPub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     wordsToBig(pub.X),
		Y:     wordsToBig(pub.Y),
	}
	der, err := x509.MarshalPKIXPublicKey(hostPub)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signing Public Key:")
	fmt.Fprintln(c.out, string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})))

	h, err := d.SHA256(ctx)
	if err != nil {
		return err
	}
	digest := make([]byte, cc2538.DigestSize)
	g := h.NewDigest(ctx)
	if _, err = io.Copy(g, c.in); err == nil {
		err = g.SumInto(digest)
	}
	h.Release()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "\nMessage Digest:")
	fmt.Fprintln(c.out, hex.EncodeToString(digest))

	ephemeral, err := randomScalar(curve)
	if err != nil {
		return err
	}
	sig, err := p.ECDSASign(ctx, curve, priv, ephemeral, digest)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "\nSignature:")
	fmt.Fprintln(c.out, hex.EncodeToString(sig))

	var verified bool
	fmt.Fprintln(c.out, "\nVerifying the signature:")
	if c.verifier == "device" {
		fmt.Fprintln(c.out, "    Verifying with device")
		if verified, err = p.ECDSAVerify(ctx, curve, pub, digest, sig); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(c.out, "    Verifying with host")
		verified = ecdsa.VerifyASN1(hostPub, digest, sig)
	}
	if verified {
		fmt.Fprintln(c.out, "    Signature is valid")
	} else {
		fmt.Fprintln(c.out, "    Signature is invalid")
	}

	return nil
}

// randomScalar draws a uniform nonzero scalar below the curve order.
func randomScalar(c *cc2538.CurveInfo) ([]uint32, error) {
	max := wordsToBig(c.N)
	for {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, err
		}
		if v.Sign() != 0 {
			return bigToWords(v, c.Size), nil
		}
	}
}

func newSignCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := signConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("cc2538 sign", flag.ExitOnError)
	fs.StringVar(&cfg.key, "key", "", "private scalar as hex, generated when empty")
	fs.StringVar(&cfg.verifier, "verifier", "host", "verify signature on device or host")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "sign",
		ShortUsage: "sign [flags] < message",
		ShortHelp:  "Signs stdin with ECDSA over P-256 and checks the signature.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
