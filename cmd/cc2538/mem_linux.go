//go:build linux

package main

import (
	"context"
	"io"

	"github.com/meshfield/go-cc2538/cc2538"
)

func newDevMem(ctx context.Context, c *rootConfig) (*cc2538.Dev, io.Closer, error) {
	return cc2538.NewMemDev(ctx, baseConfig(c))
}
