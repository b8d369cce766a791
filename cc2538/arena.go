package cc2538

import "github.com/meshfield/go-cc2538/cc2538/regs"

// The PKA stages operands in its 2 KB operand RAM. The RAM is plain
// addressable memory, written word by word; every vector must start on
// an 8-byte boundary. Callers lay out a fresh linear A/B/C/D arrangement
// from offset 0 for each operation, so there is no allocator state.

// writeArena copies words into PKA operand RAM at byte offset off and
// returns the next 8-byte-aligned offset after the write.
func (d *Dev) writeArena(off int, words []uint32) (int, error) {
	if off%8 != 0 || off+4*len(words) >= regs.PKA_RAM_LEN {
		return 0, ErrArenaOverflow
	}
	for i, w := range words {
		if err := d.hal.WriteRegister(uint32(regs.PKA_RAM+off+4*i), w); err != nil {
			return 0, err
		}
	}
	n := 4 * len(words)
	return off + (n+7)/8*8, nil
}

// readArena copies len(words) words out of PKA operand RAM starting at
// byte offset off.
func (d *Dev) readArena(off int, words []uint32) error {
	if off%4 != 0 || off+4*len(words) >= regs.PKA_RAM_LEN {
		return ErrArenaOverflow
	}
	for i := range words {
		v, err := d.hal.ReadRegister(uint32(regs.PKA_RAM + off + 4*i))
		if err != nil {
			return err
		}
		words[i] = v
	}
	return nil
}
