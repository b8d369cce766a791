// Package cc2538 is a driver for the cryptographic accelerators of the
// TI CC2538 system-on-chip in Go.
//
// It sequences the AES/SHA security core (AES-128/192/256 block modes,
// hardware key store, SHA-256) and the PKA engine (big-number arithmetic
// and elliptic-curve point operations over a 2 KB operand RAM) through
// their register and DMA protocols. Physical access goes through the HAL
// interface, with implementations for a bench bridge over I²C or USB HID,
// direct memory-mapped access on Linux, and the register-accurate software
// model in the sim subpackage.
//
// The driver assumes the crypto unit clocks are enabled and its resets
// released before any call; clock and power management belong to the
// platform code.
//
// The register sequencing follows TI's CC2538 documentation and its
// foundation firmware, thus its original copyright is acknowledged for
// this code.
//
// Copyright (c) 2023 Meshfield AB and the cc2538 authors.
// Copyright (c) Texas Instruments Incorporated.
//
// # Datasheets
//
// CC2538 User's Guide (swru319c)
// https://www.ti.com/lit/ug/swru319c/swru319c.pdf
//
// CC2538 datasheet (swrs096)
// https://www.ti.com/lit/ds/symlink/cc2538.pdf
package cc2538
