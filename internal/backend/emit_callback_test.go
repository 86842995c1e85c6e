package backend

import (
	"testing"

	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

func TestIsCallbackOp(t *testing.T) {
	yes := []ir.Opcode{
		ir.OpReadMemory8, ir.OpReadMemory32, ir.OpWriteMemory8, ir.OpWriteMemory32,
		ir.OpExclusiveReadMemory32, ir.OpExclusiveWriteMemory32,
		ir.OpCallSVC, ir.OpExceptionRaised,
	}
	for _, op := range yes {
		if !isCallbackOp(op) {
			t.Errorf("isCallbackOp(%v) = false, want true", op)
		}
	}
	no := []ir.Opcode{ir.OpAdd, ir.OpGetRegister, ir.OpSetRegister, ir.OpClearExclusive, ir.OpExchangeBranch}
	for _, op := range no {
		if isCallbackOp(op) {
			t.Errorf("isCallbackOp(%v) = true, want false", op)
		}
	}
}

func TestCallbackKindFor(t *testing.T) {
	cases := []struct {
		op   ir.Opcode
		want guest.CallbackKind
	}{
		{ir.OpReadMemory8, guest.CallbackMemRead8},
		{ir.OpWriteMemory64, guest.CallbackMemWrite64},
		{ir.OpExclusiveReadMemory32, guest.CallbackExclusiveRead32},
		{ir.OpExclusiveWriteMemory32, guest.CallbackExclusiveWrite32},
		{ir.OpCallSVC, guest.CallbackSVC},
		{ir.OpExceptionRaised, guest.CallbackException},
	}
	for _, c := range cases {
		if got := callbackKindFor(c.op); got != c.want {
			t.Errorf("callbackKindFor(%v) = %v, want %v", c.op, got, c.want)
		}
	}
}

func TestCallbackKindForPanicsOnNonCallbackOp(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a non-callback opcode")
		}
	}()
	callbackKindFor(ir.OpAdd)
}

// buildBlock appends ops in order and returns the block, mirroring how the
// frontend appends via Block.Append.
func buildBlock(ops ...ir.Op) *ir.Block {
	b := &ir.Block{}
	for _, op := range ops {
		b.Append(op)
	}
	return b
}

func TestFindDestRegDirect(t *testing.T) {
	// v0 = ReadMemory32(addr); SetRegister(3, v0)
	b := buildBlock(
		ir.Op{Opcode: ir.OpReadMemory32, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(0)}},
		ir.Op{Opcode: ir.OpSetRegister, Args: []ir.Arg{ir.ImmArg(3), ir.ValArg(0)}},
	)
	if got := findDestReg(b, 0); got != 3 {
		t.Errorf("findDestReg = %d, want 3", got)
	}
}

func TestFindDestRegThroughZeroExtend(t *testing.T) {
	// v0 = ReadMemory8(addr); v1 = ZeroExtend(v0); SetRegister(7, v1)
	b := buildBlock(
		ir.Op{Opcode: ir.OpReadMemory8, Type: ir.TypeU8, Args: []ir.Arg{ir.ImmArg(0)}},
		ir.Op{Opcode: ir.OpZeroExtend, Type: ir.TypeU32, Args: []ir.Arg{ir.ValArg(0)}},
		ir.Op{Opcode: ir.OpSetRegister, Args: []ir.Arg{ir.ImmArg(7), ir.ValArg(1)}},
	)
	if got := findDestReg(b, 0); got != 7 {
		t.Errorf("findDestReg = %d, want 7", got)
	}
}

func TestFindDestRegThroughNotAndZeroExtend(t *testing.T) {
	// STREX shape: v0 = ExclusiveWriteMemory32(addr, val); v1 = Not(v0);
	// v2 = ZeroExtend(v1); SetRegister(0, v2)
	b := buildBlock(
		ir.Op{Opcode: ir.OpExclusiveWriteMemory32, Type: ir.TypeU1, Args: []ir.Arg{ir.ImmArg(0), ir.ImmArg(0)}},
		ir.Op{Opcode: ir.OpNot, Type: ir.TypeU1, Args: []ir.Arg{ir.ValArg(0)}},
		ir.Op{Opcode: ir.OpZeroExtend, Type: ir.TypeU32, Args: []ir.Arg{ir.ValArg(1)}},
		ir.Op{Opcode: ir.OpSetRegister, Args: []ir.Arg{ir.ImmArg(0), ir.ValArg(2)}},
	)
	if got := findDestReg(b, 0); got != 0 {
		t.Errorf("findDestReg = %d, want 0", got)
	}
}

func TestFindDestRegNoWriteback(t *testing.T) {
	// A plain write has no destination register: WriteMemory32(addr, val)
	b := buildBlock(
		ir.Op{Opcode: ir.OpWriteMemory32, Type: ir.TypeNone, Args: []ir.Arg{ir.ImmArg(0), ir.ImmArg(0)}},
	)
	if got := findDestReg(b, 0); got != -1 {
		t.Errorf("findDestReg = %d, want -1", got)
	}
}

func TestFindDestRegUnrelatedRegisterWriteIgnored(t *testing.T) {
	// A SetRegister that writes some other, unrelated value must not be
	// mistaken for this op's destination.
	b := buildBlock(
		ir.Op{Opcode: ir.OpReadMemory32, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(0)}},
		ir.Op{Opcode: ir.OpSetRegister, Args: []ir.Arg{ir.ImmArg(2), ir.ImmArg(99)}},
	)
	if got := findDestReg(b, 0); got != -1 {
		t.Errorf("findDestReg = %d, want -1", got)
	}
}

func TestCallbackAddrArg(t *testing.T) {
	op := ir.Op{Opcode: ir.OpReadMemory32, Args: []ir.Arg{ir.ImmArg(0x1000)}}
	arg, ok := callbackAddrArg(op)
	if !ok || !arg.IsImm || arg.Imm != 0x1000 {
		t.Fatalf("callbackAddrArg = (%v, %v), want (0x1000, true)", arg, ok)
	}

	svc := ir.Op{Opcode: ir.OpCallSVC, Args: []ir.Arg{ir.ImmArg(7)}}
	if _, ok := callbackAddrArg(svc); ok {
		t.Fatal("callbackAddrArg(SVC) should have no address")
	}
}

func TestCallbackValueArg(t *testing.T) {
	write := ir.Op{Opcode: ir.OpWriteMemory8, Args: []ir.Arg{ir.ImmArg(0), ir.ImmArg(0xAB)}}
	arg, wide, ok := callbackValueArg(write)
	if !ok || wide || !arg.IsImm || arg.Imm != 0xAB {
		t.Fatalf("callbackValueArg(write8) = (%v, %v, %v)", arg, wide, ok)
	}

	write64 := ir.Op{Opcode: ir.OpWriteMemory64, Args: []ir.Arg{ir.ImmArg(0), ir.ValArg(0)}}
	_, wide, ok = callbackValueArg(write64)
	if !ok || !wide {
		t.Fatalf("callbackValueArg(write64) wide=%v ok=%v, want true,true", wide, ok)
	}

	read := ir.Op{Opcode: ir.OpReadMemory32, Args: []ir.Arg{ir.ImmArg(0)}}
	if _, _, ok := callbackValueArg(read); ok {
		t.Fatal("callbackValueArg(read) should have nothing to send")
	}

	exc := ir.Op{Opcode: ir.OpExceptionRaised, Args: []ir.Arg{ir.ImmArg(uint64(ir.ExceptionBreakpoint))}}
	arg, _, ok = callbackValueArg(exc)
	if !ok || arg.Imm != uint64(ir.ExceptionBreakpoint) {
		t.Fatalf("callbackValueArg(exception) = (%v, %v), want ExceptionBreakpoint,true", arg, ok)
	}
}
