package cache

import (
	"errors"
	"testing"

	gomock "go.uber.org/mock/gomock"

	"github.com/a18532086/a32jit/internal/backendtest"
)

func TestHashRangeDeterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	cr := backendtest.NewMockCodeReader(ctrl)
	cr.EXPECT().MemoryReadCode(uint32(0x0)).Return(uint32(0xE3A00005), nil).Times(2)
	cr.EXPECT().MemoryReadCode(uint32(0x4)).Return(uint32(0xE3A0100D), nil).Times(2)

	h1, err := HashRange(cr, 0x0, 0x8)
	if err != nil {
		t.Fatalf("HashRange: %v", err)
	}
	h2, err := HashRange(cr, 0x0, 0x8)
	if err != nil {
		t.Fatalf("HashRange: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("HashRange not deterministic: %x != %x", h1, h2)
	}
}

func TestHashRangeChangesWithContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	cr := backendtest.NewMockCodeReader(ctrl)
	cr.EXPECT().MemoryReadCode(uint32(0x0)).Return(uint32(0xE3A00005), nil)

	h1, err := HashRange(cr, 0x0, 0x4)
	if err != nil {
		t.Fatalf("HashRange: %v", err)
	}

	ctrl2 := gomock.NewController(t)
	cr2 := backendtest.NewMockCodeReader(ctrl2)
	cr2.EXPECT().MemoryReadCode(uint32(0x0)).Return(uint32(0xE3A0100D), nil)

	h2, err := HashRange(cr2, 0x0, 0x4)
	if err != nil {
		t.Fatalf("HashRange: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("HashRange returned identical hashes for different content")
	}
}

func TestHashRangePropagatesReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cr := backendtest.NewMockCodeReader(ctrl)
	wantErr := errors.New("fault")
	cr.EXPECT().MemoryReadCode(uint32(0x0)).Return(uint32(0), wantErr)

	if _, err := HashRange(cr, 0x0, 0x4); err == nil {
		t.Fatalf("HashRange: expected error, got nil")
	}
}
