package cc2538

import (
	"time"

	"github.com/meshfield/go-cc2538/cc2538/regs"
)

// Typical PKA execution times, used as the settle hint before the run
// bit is repolled. These are rough upper bounds for 256-bit operands;
// the sequencer operations dominated by modular arithmetic sit in the
// millisecond range.
var pkaExecTimes = map[uint32]time.Duration{
	regs.PKA_FUNCTION_ADD:      5 * time.Microsecond,
	regs.PKA_FUNCTION_SUBTRACT: 5 * time.Microsecond,
	regs.PKA_FUNCTION_ADDSUB:   5 * time.Microsecond,
	regs.PKA_FUNCTION_MULTIPLY: 10 * time.Microsecond,
	regs.PKA_FUNCTION_MODULO:   50 * time.Microsecond,
	regs.PKA_FUNCTION_COMPARE:  5 * time.Microsecond,

	regs.PKA_SEQ_INV_MOD << regs.PKA_FUNCTION_SEQ_Pos: 1 * time.Millisecond,
	regs.PKA_SEQ_EXP_MOD << regs.PKA_FUNCTION_SEQ_Pos: 5 * time.Millisecond,
	regs.PKA_SEQ_ECC_ADD << regs.PKA_FUNCTION_SEQ_Pos: 1 * time.Millisecond,
	regs.PKA_SEQ_ECC_MUL << regs.PKA_FUNCTION_SEQ_Pos: 7 * time.Millisecond,
}

// pkaExecTime returns the settle hint for a FUNCTION register value,
// ignoring the run bit.
func pkaExecTime(fn uint32) time.Duration {
	if t, ok := pkaExecTimes[fn&^uint32(regs.PKA_FUNCTION_RUN)]; ok {
		return t
	}
	return 50 * time.Microsecond
}
