package frontend

import "github.com/a18532086/a32jit/internal/decode"

// A32Table, ThumbTable, and UnconditionalTable are the concrete decode
// tables this repo populates. They are data, built once at package init,
// per the teacher's own fail-fast-on-malformed-static-table convention
// (decode.MustCompile panics on a malformed pattern string). Table order
// is priority order: more specific patterns precede more general ones.
var (
	A32Table           decode.Table
	ThumbTable         decode.Table
	UnconditionalTable decode.Table
)

func init() {
	A32Table = decode.Table{
		decode.MustCompile("BX", "cccc"+"0001"+"0010"+"1111"+"1111"+"1111"+"0001"+"mmmm", visitBX),
		decode.MustCompile("BLX(reg)", "cccc"+"0001"+"0010"+"1111"+"1111"+"1111"+"0011"+"mmmm", visitBLXReg),

		decode.MustCompile("LDREX", "cccc"+"00011001"+"nnnn"+"dddd"+"1111"+"1001"+"1111", visitLDREX),
		decode.MustCompile("STREX", "cccc"+"00011000"+"nnnn"+"dddd"+"1111"+"1001"+"mmmm", visitSTREX),

		decode.MustCompile("SMLAD", "cccc"+"01110000"+"dddd"+"aaaa"+"mmmm"+"00"+"0"+"1"+"nnnn", visitSMLAD),
		decode.MustCompile("SMUAD", "cccc"+"01110000"+"dddd"+"1111"+"mmmm"+"00"+"0"+"1"+"nnnn", visitSMUAD),

		decode.MustCompile("ParallelAddSub", "cccc"+"01100"+"oo"+"1"+"nnnn"+"dddd"+"1111"+"ppp"+"1"+"mmmm", visitParallelAddSub),

		decode.MustCompile("MUL/MLA", "cccc"+"000000"+"a"+"f"+"dddd"+"nnnn"+"rrrr"+"1001"+"mmmm", visitMUL),

		decode.MustCompile("MCR/MRC", "cccc"+"1110"+"ooo"+"l"+"nnnn"+"tttt"+"pppp"+"eee"+"1"+"mmmm", visitCoprocessorRegisterTransfer),

		decode.MustCompile("SVC", "cccc"+"1111"+"iiiiiiiiiiiiiiiiiiiiiiii", visitSVC),
		decode.MustCompile("BKPT", "cccc"+"00010010"+"iiiiiiiiiiii"+"0111"+"jjjj", visitBKPT),

		decode.MustCompile("B/BL", "cccc"+"101"+"l"+"iiiiiiiiiiiiiiiiiiiiiiii", visitBranch),

		decode.MustCompile("DP(regshiftreg)", "cccc"+"000"+"oooo"+"s"+"nnnn"+"dddd"+"qqqq"+"0"+"tt"+"1"+"mmmm", visitDPRegRegShift),
		decode.MustCompile("DP(regshiftimm)", "cccc"+"000"+"oooo"+"s"+"nnnn"+"dddd"+"hhhhh"+"tt"+"0"+"mmmm", visitDPRegImmShift),
		decode.MustCompile("DP(imm)", "cccc"+"001"+"oooo"+"s"+"nnnn"+"dddd"+"rrrr"+"iiiiiiii", visitDPImmediate),

		decode.MustCompile("LDR/STR(imm)", "cccc"+"010"+"p"+"u"+"b"+"w"+"l"+"nnnn"+"dddd"+"iiiiiiiiiiii", visitLoadStoreImm),
	}

	UnconditionalTable = decode.Table{
		decode.MustCompile("CLREX", "1111"+"0101"+"0111"+"1111"+"1111"+"0000"+"0001"+"1111", visitCLREX),
	}

	ThumbTable = decode.Table{
		decode.MustCompile("ThumbMOV(imm)", "00100"+"ddd"+"iiiiiiii", visitThumbMovImm),
		decode.MustCompile("ThumbCMP(imm)", "00101"+"ddd"+"iiiiiiii", visitThumbCmpImm),
		decode.MustCompile("ThumbADD(imm3)", "0001110"+"iii"+"nnn"+"ddd", visitThumbAddImm3),
		decode.MustCompile("ThumbADD(imm8)", "00110"+"ddd"+"iiiiiiii", visitThumbAddImm8),
		decode.MustCompile("ThumbADD(reg)", "0001100"+"mmm"+"nnn"+"ddd", visitThumbAddReg),
		decode.MustCompile("ThumbB(cond)", "1101"+"cccc"+"iiiiiiii", visitThumbBCond),
		decode.MustCompile("ThumbB", "11100"+"iiiiiiiiiii", visitThumbB),
		decode.MustCompile("ThumbBL(hi)", "11110"+"iiiiiiiiiii", visitThumbBLHi),
		decode.MustCompile("ThumbBL(lo)", "11111"+"iiiiiiiiiii", visitThumbBLLo),
	}
}
