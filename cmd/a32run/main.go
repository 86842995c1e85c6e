// Command a32run is a minimal demonstration embedder: it loads a flat
// (headerless) A32/Thumb binary into a byte-slice-backed memory, wires it up
// as a32jit.Config.Callbacks, and runs it for a fixed tick budget, printing
// the final register file. Grounded on the teacher's cmd/jamzilla/main.go
// shape -- flag.String/flag.Parse for configuration, log.Fatalf on any setup
// failure -- scaled down to the one binary this package's demonstration
// scope actually needs (no JSON config file, no networking, no state
// repository: a32jit has no wire protocol or on-disk format to load, per
// §6).
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/a18532086/a32jit"
	"github.com/a18532086/a32jit/internal/ir"
)

func main() {
	binPath := flag.String("bin", "", "path to a flat A32/Thumb binary image")
	memSize := flag.Uint64("mem-size", 1<<20, "total addressable memory in bytes, binary loaded at address 0")
	entry := flag.Uint64("entry", 0, "guest program counter to start execution at")
	thumb := flag.Bool("thumb", false, "start execution in Thumb state")
	ticks := flag.Uint64("ticks", 1000, "tick budget for the run")
	roLength := flag.Uint64("ro-length", 0, "treat [0, ro-length) as read-only guest memory (enables constant folding); 0 disables")
	debug := flag.Bool("debug", false, "enable invariant verification and trace logging to stderr")
	flag.Parse()

	if *binPath == "" {
		log.Fatal("a32run: -bin is required")
	}

	image, err := os.ReadFile(*binPath)
	if err != nil {
		log.Fatalf("a32run: reading %s: %v", *binPath, err)
	}
	if uint64(len(image)) > *memSize {
		log.Fatalf("a32run: image (%d bytes) exceeds -mem-size (%d bytes)", len(image), *memSize)
	}

	mem := newFlatMemory(*memSize, *ticks)
	copy(mem.bytes, image)
	if *roLength > 0 {
		mem.roEnd = uint32(*roLength)
		mem.hasRO = true
	}

	cfg := a32jit.Config{
		Callbacks: mem,
		Debug:     *debug,
	}
	if *debug {
		cfg.LogOutput = os.Stderr
	}

	engine, err := a32jit.New(cfg)
	if err != nil {
		log.Fatalf("a32run: %v", err)
	}
	defer engine.Close()

	engine.SetPC(uint32(*entry))
	engine.SetThumb(*thumb)

	if err := engine.Run(); err != nil {
		log.Fatalf("a32run: run failed: %v", err)
	}

	dumpRegisters(engine)
	fmt.Printf("ticks consumed: %d\n", mem.ticksConsumedTotal)
}

func dumpRegisters(e *a32jit.Engine) {
	for i := 0; i < 16; i++ {
		fmt.Printf("r%-2d = %#010x\n", i, e.Register(i))
	}
	fmt.Printf("nzcv = %04b  q=%v  thumb=%v\n", e.NZCV(), e.QFlag(), e.Thumb())
}

// flatMemory is the simplest possible frontend.Callbacks implementation: a
// single flat byte slice, no MMU, no page faults -- every address in
// [0, len(bytes)) is valid, everything outside it is an out-of-range error.
// Grounded on the teacher's ram.RAM (pvm/ram.go), trimmed to A32's flat
// 32-bit address space since there is no JAM zone/page-table layout to
// reproduce here.
type flatMemory struct {
	bytes []byte

	roEnd uint32
	hasRO bool

	ticksBudget        uint64
	ticksConsumedTotal uint64
}

func newFlatMemory(size, ticks uint64) *flatMemory {
	return &flatMemory{bytes: make([]byte, size), ticksBudget: ticks}
}

func (m *flatMemory) bound(addr uint32, width int) error {
	if uint64(addr)+uint64(width) > uint64(len(m.bytes)) {
		return fmt.Errorf("a32run: address %#x width %d out of range (memory size %d)", addr, width, len(m.bytes))
	}
	return nil
}

func (m *flatMemory) MemoryReadCode(addr uint32) (uint32, error) {
	return m.MemoryRead32(addr)
}

func (m *flatMemory) MemoryRead8(addr uint32) (uint8, error) {
	if err := m.bound(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

func (m *flatMemory) MemoryRead16(addr uint32) (uint16, error) {
	if err := m.bound(addr, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.bytes[addr:]), nil
}

func (m *flatMemory) MemoryRead32(addr uint32) (uint32, error) {
	if err := m.bound(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.bytes[addr:]), nil
}

func (m *flatMemory) MemoryRead64(addr uint32) (uint64, error) {
	if err := m.bound(addr, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.bytes[addr:]), nil
}

func (m *flatMemory) MemoryWrite8(addr uint32, v uint8) error {
	if err := m.bound(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

func (m *flatMemory) MemoryWrite16(addr uint32, v uint16) error {
	if err := m.bound(addr, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.bytes[addr:], v)
	return nil
}

func (m *flatMemory) MemoryWrite32(addr uint32, v uint32) error {
	if err := m.bound(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.bytes[addr:], v)
	return nil
}

func (m *flatMemory) MemoryWrite64(addr uint32, v uint64) error {
	if err := m.bound(addr, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.bytes[addr:], v)
	return nil
}

func (m *flatMemory) IsReadOnlyMemory(addr uint32) bool {
	return m.hasRO && addr < m.roEnd
}

func (m *flatMemory) AddTicks(n uint64) {
	if n > m.ticksBudget {
		m.ticksBudget = 0
	} else {
		m.ticksBudget -= n
	}
	m.ticksConsumedTotal += n
}

func (m *flatMemory) GetTicksRemaining() uint64 { return m.ticksBudget }

func (m *flatMemory) CallSVC(imm uint32) {
	log.Printf("a32run: svc #%d", imm)
}

func (m *flatMemory) ExceptionRaised(pc uint32, kind ir.ExceptionKind) {
	log.Printf("a32run: exception %d at pc=%#x", kind, pc)
}
