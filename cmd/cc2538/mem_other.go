//go:build !linux

package main

import (
	"context"
	"errors"
	"io"

	"github.com/meshfield/go-cc2538/cc2538"
)

func newDevMem(ctx context.Context, c *rootConfig) (*cc2538.Dev, io.Closer, error) {
	return nil, nil, errors.New("cc2538: mem backend requires /dev/mem on linux")
}
