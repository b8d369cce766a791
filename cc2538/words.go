package cc2538

import "encoding/binary"

// The accelerators exchange multi-word values as little-endian 32-bit
// words; these helpers convert between that layout and byte slices.

func bytesToWords(p []byte) []uint32 {
	w := make([]uint32, len(p)/4)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(p[4*i:])
	}
	return w
}

func wordsToBytes(w []uint32, p []byte) {
	for i, v := range w {
		binary.LittleEndian.PutUint32(p[4*i:], v)
	}
}
