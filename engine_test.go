package a32jit_test

import (
	"encoding/binary"
	"testing"

	"github.com/a18532086/a32jit"
	"github.com/a18532086/a32jit/internal/ir"
)

// scenarioMemory is the smallest possible frontend.Callbacks a full
// engine-level test needs: a flat byte slice standing in for guest
// memory. Its SVC handler is the scenario's stop condition: guest code
// ends every run with an svc instruction, and CallSVC calls back into the
// owning Engine's HaltExecution, the same way a real embedder would use
// an SVC as a "yield to host" convention.
type scenarioMemory struct {
	bytes  []byte
	engine *a32jit.Engine
}

func newScenarioMemory(words ...uint32) *scenarioMemory {
	m := &scenarioMemory{bytes: make([]byte, len(words)*4)}
	for i, w := range words {
		binary.LittleEndian.PutUint32(m.bytes[i*4:], w)
	}
	return m
}

func (m *scenarioMemory) MemoryReadCode(addr uint32) (uint32, error) { return m.MemoryRead32(addr) }

func (m *scenarioMemory) MemoryRead8(addr uint32) (uint8, error) {
	if int(addr) >= len(m.bytes) {
		return 0, nil
	}
	return m.bytes[addr], nil
}

func (m *scenarioMemory) MemoryRead16(addr uint32) (uint16, error) {
	if int(addr)+2 > len(m.bytes) {
		return 0, nil
	}
	return binary.LittleEndian.Uint16(m.bytes[addr:]), nil
}

func (m *scenarioMemory) MemoryRead32(addr uint32) (uint32, error) {
	if int(addr)+4 > len(m.bytes) {
		return 0, nil
	}
	return binary.LittleEndian.Uint32(m.bytes[addr:]), nil
}

func (m *scenarioMemory) MemoryRead64(addr uint32) (uint64, error) {
	if int(addr)+8 > len(m.bytes) {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(m.bytes[addr:]), nil
}

func (m *scenarioMemory) MemoryWrite8(addr uint32, v uint8) error {
	m.grow(addr, 1)
	m.bytes[addr] = v
	return nil
}

func (m *scenarioMemory) MemoryWrite16(addr uint32, v uint16) error {
	m.grow(addr, 2)
	binary.LittleEndian.PutUint16(m.bytes[addr:], v)
	return nil
}

func (m *scenarioMemory) MemoryWrite32(addr uint32, v uint32) error {
	m.grow(addr, 4)
	binary.LittleEndian.PutUint32(m.bytes[addr:], v)
	return nil
}

func (m *scenarioMemory) MemoryWrite64(addr uint32, v uint64) error {
	m.grow(addr, 8)
	binary.LittleEndian.PutUint64(m.bytes[addr:], v)
	return nil
}

func (m *scenarioMemory) grow(addr uint32, width int) {
	need := int(addr) + width
	if need > len(m.bytes) {
		grown := make([]byte, need)
		copy(grown, m.bytes)
		m.bytes = grown
	}
}

func (m *scenarioMemory) IsReadOnlyMemory(addr uint32) bool { return false }
func (m *scenarioMemory) AddTicks(n uint64)                 {}
func (m *scenarioMemory) GetTicksRemaining() uint64         { return 1 << 20 }

func (m *scenarioMemory) CallSVC(imm uint32) {
	m.engine.HaltExecution()
}

func (m *scenarioMemory) ExceptionRaised(pc uint32, k ir.ExceptionKind) {
	m.engine.HaltExecution()
}

// TestEngineBasicArithmetic runs the four-instruction program:
//
//	0x0: mov r0, #5
//	0x4: mov r1, #13
//	0x8: add r2, r1, r0
//	0xC: svc #0          (yields back to the host)
//
// and checks the arithmetic result and the resting program counter once
// the SVC has stopped the run.
func TestEngineBasicArithmetic(t *testing.T) {
	mem := newScenarioMemory(
		0xE3A00005, // mov r0, #5
		0xE3A0100D, // mov r1, #13
		0xE0812000, // add r2, r1, r0
		0xEF000000, // svc #0
	)

	engine, err := a32jit.New(a32jit.Config{Callbacks: mem})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer engine.Close()
	mem.engine = engine

	engine.SetPC(0)
	if err := engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := engine.Register(0); got != 5 {
		t.Fatalf("r0 = %d, want 5", got)
	}
	if got := engine.Register(1); got != 13 {
		t.Fatalf("r1 = %d, want 13", got)
	}
	if got := engine.Register(2); got != 18 {
		t.Fatalf("r2 = %d, want 18", got)
	}
	if got := engine.PC(); got != 0x10 {
		t.Fatalf("pc = %#x, want 0x10 (instruction after the svc)", got)
	}
}

// TestEngineInvalidateCacheRange runs the same program once to populate
// the block cache, rewrites the second instruction to mov r1, #7,
// invalidates that instruction's cached block, and reruns from the start
// -- checking the second run observes the rewritten instruction rather
// than a stale compiled block.
func TestEngineInvalidateCacheRange(t *testing.T) {
	mem := newScenarioMemory(
		0xE3A00005, // mov r0, #5
		0xE3A0100D, // mov r1, #13
		0xE0812000, // add r2, r1, r0
		0xEF000000, // svc #0
	)

	engine, err := a32jit.New(a32jit.Config{Callbacks: mem})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer engine.Close()
	mem.engine = engine

	engine.SetPC(0)
	if err := engine.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if got := engine.Register(1); got != 13 {
		t.Fatalf("first run r1 = %d, want 13", got)
	}

	if err := mem.MemoryWrite32(4, 0xE3A01007); err != nil { // mov r1, #7
		t.Fatalf("MemoryWrite32: %v", err)
	}
	engine.InvalidateCacheRange(4, 4)

	engine.SetPC(0)
	if err := engine.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if got := engine.Register(0); got != 5 {
		t.Fatalf("second run r0 = %d, want 5", got)
	}
	if got := engine.Register(1); got != 7 {
		t.Fatalf("second run r1 = %d, want 7 (rewritten instruction not observed)", got)
	}
	if got := engine.Register(2); got != 12 {
		t.Fatalf("second run r2 = %d, want 12", got)
	}
	if got := engine.PC(); got != 0x10 {
		t.Fatalf("second run pc = %#x, want 0x10", got)
	}
}
