// Package regs holds the bus addresses and bit fields of the CC2538's
// AES/SHA and PKA accelerators.
//
// Names follow the register map in the CC2538 User's Guide (swru319c),
// chapters 22 (security core) and 23 (PKA engine), so the driver code can
// be read next to the manual. All addresses are absolute.
package regs

// Unit base addresses and the PKA operand RAM window.
const (
	AES_BASE    = 0x4008B000
	PKA_BASE    = 0x44004000
	PKA_RAM     = 0x44006000
	PKA_RAM_LEN = 0x800 // 2 KB of operand RAM
)

// AES/SHA unit registers.
const (
	AES_DMAC_CH0_CTRL      = AES_BASE + 0x000 // channel 0 (input) control
	AES_DMAC_CH0_EXTADDR   = AES_BASE + 0x004 // channel 0 external address
	AES_DMAC_CH0_DMALENGTH = AES_BASE + 0x00C // channel 0 transfer length
	AES_DMAC_STATUS        = AES_BASE + 0x018
	AES_DMAC_SWRES         = AES_BASE + 0x01C
	AES_DMAC_CH1_CTRL      = AES_BASE + 0x020 // channel 1 (output) control
	AES_DMAC_CH1_EXTADDR   = AES_BASE + 0x024
	AES_DMAC_CH1_DMALENGTH = AES_BASE + 0x02C

	AES_KEY_STORE_WRITE_AREA   = AES_BASE + 0x400
	AES_KEY_STORE_WRITTEN_AREA = AES_BASE + 0x404
	AES_KEY_STORE_SIZE         = AES_BASE + 0x408
	AES_KEY_STORE_READ_AREA    = AES_BASE + 0x40C

	AES_AES_IV_0 = AES_BASE + 0x540
	AES_AES_IV_1 = AES_BASE + 0x544
	AES_AES_IV_2 = AES_BASE + 0x548
	AES_AES_IV_3 = AES_BASE + 0x54C

	AES_AES_CTRL        = AES_BASE + 0x550
	AES_AES_C_LENGTH_0  = AES_BASE + 0x554
	AES_AES_C_LENGTH_1  = AES_BASE + 0x558
	AES_AES_AUTH_LENGTH = AES_BASE + 0x55C

	AES_AES_TAG_OUT_0 = AES_BASE + 0x570
	AES_AES_TAG_OUT_1 = AES_BASE + 0x574
	AES_AES_TAG_OUT_2 = AES_BASE + 0x578
	AES_AES_TAG_OUT_3 = AES_BASE + 0x57C

	AES_HASH_IO_BUF_CTRL  = AES_BASE + 0x640
	AES_HASH_MODE_IN      = AES_BASE + 0x644
	AES_HASH_LENGTH_IN_L  = AES_BASE + 0x648
	AES_HASH_LENGTH_IN_H  = AES_BASE + 0x64C
	AES_HASH_DIGEST_A     = AES_BASE + 0x650
	AES_HASH_DIGEST_B     = AES_BASE + 0x654
	AES_HASH_DIGEST_C     = AES_BASE + 0x658
	AES_HASH_DIGEST_D     = AES_BASE + 0x65C
	AES_HASH_DIGEST_E     = AES_BASE + 0x660
	AES_HASH_DIGEST_F     = AES_BASE + 0x664
	AES_HASH_DIGEST_G     = AES_BASE + 0x668
	AES_HASH_DIGEST_H     = AES_BASE + 0x66C

	AES_CTRL_ALG_SEL  = AES_BASE + 0x700
	AES_CTRL_SW_RESET = AES_BASE + 0x740
	AES_CTRL_INT_CFG  = AES_BASE + 0x780
	AES_CTRL_INT_EN   = AES_BASE + 0x784
	AES_CTRL_INT_CLR  = AES_BASE + 0x788
	AES_CTRL_INT_SET  = AES_BASE + 0x78C
	AES_CTRL_INT_STAT = AES_BASE + 0x790
)

// AES/SHA unit bit fields.
const (
	AES_DMAC_CHx_CTRL_EN = 1 << 0

	AES_CTRL_ALG_SEL_KEYSTORE = 1 << 0
	AES_CTRL_ALG_SEL_AES      = 1 << 1
	AES_CTRL_ALG_SEL_HASH     = 1 << 2
	AES_CTRL_ALG_SEL_TAG      = 1 << 31

	AES_CTRL_INT_CFG_LEVEL = 1 << 0

	AES_CTRL_INT_DMA_IN_DONE = 1 << 0 // in EN, CLR and STAT
	AES_CTRL_INT_RESULT_AV   = 1 << 1

	AES_CTRL_INT_STAT_KEY_ST_RD_ERR = 1 << 29
	AES_CTRL_INT_STAT_KEY_ST_WR_ERR = 1 << 30
	AES_CTRL_INT_STAT_DMA_BUS_ERR   = 1 << 31

	AES_KEY_STORE_SIZE_Msk       = 0x3
	AES_KEY_STORE_READ_AREA_BUSY = 1 << 31

	AES_AES_CTRL_DIRECTION_ENCRYPT = 1 << 2
	AES_AES_CTRL_CBC               = 1 << 5
	AES_AES_CTRL_CTR               = 1 << 6
	AES_AES_CTRL_CTR_WIDTH_Pos     = 7
	AES_AES_CTRL_CBC_MAC           = 1 << 15
	AES_AES_CTRL_GCM_Pos           = 16
	AES_AES_CTRL_CCM               = 1 << 18
	AES_AES_CTRL_CCM_L_Pos         = 19
	AES_AES_CTRL_CCM_M_Pos         = 22
	AES_AES_CTRL_SAVE_CONTEXT      = 1 << 29
	AES_AES_CTRL_SAVED_CONTEXT_RDY = 1 << 30
	AES_AES_CTRL_CONTEXT_RDY       = 1 << 31

	// CTR_WIDTH field values: number of counter bits that increment.
	AES_CTR_WIDTH_32  = 0
	AES_CTR_WIDTH_64  = 1
	AES_CTR_WIDTH_96  = 2
	AES_CTR_WIDTH_128 = 3

	AES_HASH_MODE_IN_NEW_HASH    = 1 << 0
	AES_HASH_MODE_IN_SHA256_MODE = 1 << 3

	AES_HASH_IO_BUF_CTRL_OUTPUT_FULL     = 1 << 0
	AES_HASH_IO_BUF_CTRL_PAD_DMA_MESSAGE = 1 << 7
)

// PKA unit registers.
const (
	PKA_APTR     = PKA_BASE + 0x00 // vector A pointer (word offset into operand RAM)
	PKA_BPTR     = PKA_BASE + 0x04
	PKA_CPTR     = PKA_BASE + 0x08
	PKA_DPTR     = PKA_BASE + 0x0C
	PKA_ALENGTH  = PKA_BASE + 0x10
	PKA_BLENGTH  = PKA_BASE + 0x14
	PKA_SHIFT    = PKA_BASE + 0x18
	PKA_FUNCTION = PKA_BASE + 0x1C
	PKA_COMPARE  = PKA_BASE + 0x20
	PKA_MSW      = PKA_BASE + 0x24
	PKA_DIVMSW   = PKA_BASE + 0x28
)

// PKA unit bit fields.
const (
	PKA_FUNCTION_MULTIPLY = 1 << 0
	PKA_FUNCTION_ADDSUB   = 1 << 1
	PKA_FUNCTION_ADD      = 1 << 3
	PKA_FUNCTION_SUBTRACT = 1 << 4
	PKA_FUNCTION_DIVIDE   = 1 << 8
	PKA_FUNCTION_MODULO   = 1 << 9
	PKA_FUNCTION_COMPARE  = 1 << 10
	PKA_FUNCTION_SEQ_Pos  = 12 // sequencer operation field, 3 bits
	PKA_FUNCTION_RUN      = 1 << 15

	// Sequencer operation field values.
	PKA_SEQ_EXP_MOD = 0b010
	PKA_SEQ_ECC_ADD = 0b011
	PKA_SEQ_ECC_MUL = 0b101
	PKA_SEQ_INV_MOD = 0b111

	PKA_MSW_ADDR_Msk       = 0x7FF
	PKA_MSW_RESULT_IS_ZERO = 1 << 15

	PKA_COMPARE_A_EQUALS_B       = 1 << 0
	PKA_COMPARE_A_LESS_THAN_B    = 1 << 1
	PKA_COMPARE_A_GREATER_THAN_B = 1 << 2

	PKA_SHIFT_Msk = 0x1F
)
