package frontend

import (
	"fmt"

	"github.com/a18532086/a32jit/internal/decode"
)

// Disassemble renders a single guest instruction word as "<matcher-name>
// <raw-fields>": enough to label a trace or a panic message, not a full
// mnemonic-and-operand syntax printer.
func Disassemble(word uint32, thumb bool) string {
	var table decode.Table
	switch {
	case thumb:
		table = ThumbTable
	case decode.IsUnconditionalSpace(word):
		table = UnconditionalTable
	default:
		table = A32Table
	}
	m, fields, err := decode.Decode(table, word)
	if err != nil {
		return fmt.Sprintf("<undefined %#08x>", word)
	}
	return fmt.Sprintf("%s %v", m.Name, fields)
}
