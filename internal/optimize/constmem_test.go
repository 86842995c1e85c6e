package optimize

import (
	"errors"
	"testing"

	gomock "go.uber.org/mock/gomock"

	"github.com/a18532086/a32jit/internal/frontendtest"
	"github.com/a18532086/a32jit/internal/guest"
	"github.com/a18532086/a32jit/internal/ir"
)

func TestConstantMemoryReadsFoldsReadOnlyLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := frontendtest.NewMockCallbacks(ctrl)
	mem.EXPECT().IsReadOnlyMemory(uint32(0x1000)).Return(true)
	mem.EXPECT().MemoryRead32(uint32(0x1000)).Return(uint32(0xCAFEBABE), nil)

	b := ir.New(guest.Location{})
	b.Append(ir.Op{Opcode: ir.OpReadMemory32, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(0x1000)}})

	constantMemoryReads(b, mem)

	if b.Ops[0].Opcode != ir.OpConstant {
		t.Fatalf("Ops[0].Opcode = %v, want OpConstant", b.Ops[0].Opcode)
	}
	if b.Ops[0].Args[0].Imm != 0xCAFEBABE {
		t.Fatalf("folded constant = %#x, want 0xCAFEBABE", b.Ops[0].Args[0].Imm)
	}
}

func TestConstantMemoryReadsSkipsNonReadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := frontendtest.NewMockCallbacks(ctrl)
	mem.EXPECT().IsReadOnlyMemory(uint32(0x2000)).Return(false)

	b := ir.New(guest.Location{})
	b.Append(ir.Op{Opcode: ir.OpReadMemory32, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(0x2000)}})

	constantMemoryReads(b, mem)

	if b.Ops[0].Opcode != ir.OpReadMemory32 {
		t.Fatalf("Ops[0].Opcode = %v, want unchanged OpReadMemory32", b.Ops[0].Opcode)
	}
}

func TestConstantMemoryReadsLeavesOpOnReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mem := frontendtest.NewMockCallbacks(ctrl)
	mem.EXPECT().IsReadOnlyMemory(uint32(0x3000)).Return(true)
	mem.EXPECT().MemoryRead8(uint32(0x3000)).Return(uint8(0), errors.New("fault"))

	b := ir.New(guest.Location{})
	b.Append(ir.Op{Opcode: ir.OpReadMemory8, Type: ir.TypeU8, Args: []ir.Arg{ir.ImmArg(0x3000)}})

	constantMemoryReads(b, mem)

	if b.Ops[0].Opcode != ir.OpReadMemory8 {
		t.Fatalf("Ops[0].Opcode = %v, want unchanged OpReadMemory8 on read error", b.Ops[0].Opcode)
	}
}

func TestConstantMemoryReadsNilMemoryIsNoop(t *testing.T) {
	b := ir.New(guest.Location{})
	b.Append(ir.Op{Opcode: ir.OpReadMemory32, Type: ir.TypeU32, Args: []ir.Arg{ir.ImmArg(0x1000)}})

	constantMemoryReads(b, nil)

	if b.Ops[0].Opcode != ir.OpReadMemory32 {
		t.Fatalf("Ops[0].Opcode = %v, want unchanged with nil MemoryReader", b.Ops[0].Opcode)
	}
}
