package rv32i

import (
	"bytes"
	"testing"
)

func TestHartResetClearsState(t *testing.T) {
	h := NewHart()
	h.Reset()
	h.PC = 0x100
	h.Reg.Set(1, 42)
	h.CSR[5] = 7
	h.InsnCounter = 3
	h.Halted = true
	h.HaltReason = "x"

	h.Reset()

	if h.PC != 0 {
		t.Errorf("PC = %#x, want 0", h.PC)
	}
	if h.Reg.Get(1) != uninitializedRegister {
		t.Errorf("x1 = %d, want sentinel", h.Reg.Get(1))
	}
	if h.CSR[5] != 0 {
		t.Errorf("CSR[5] = %d, want 0", h.CSR[5])
	}
	if h.InsnCounter != 0 {
		t.Errorf("InsnCounter = %d, want 0", h.InsnCounter)
	}
	if h.Halted {
		t.Error("Halted = true, want false")
	}
	if h.HaltReason != "none" {
		t.Errorf("HaltReason = %q, want %q", h.HaltReason, "none")
	}
}

func TestHartHaltLatchesFirstReason(t *testing.T) {
	h := NewHart()
	h.Reset()
	h.halt("first")
	h.halt("second")
	if h.HaltReason != "first" {
		t.Errorf("HaltReason = %q, want %q", h.HaltReason, "first")
	}
}

func TestHartDumpFormat(t *testing.T) {
	h := NewHart()
	h.Reset()
	h.PC = 0x10

	var out bytes.Buffer
	h.Dump(&out, "ignored-header")

	lines := splitLines(out.String())
	if len(lines) != 5 {
		t.Fatalf("Dump produced %d lines, want 5", len(lines))
	}
	if lines[0][:3] != " x0" {
		t.Errorf("row 0 label = %q, want prefix %q", lines[0][:3], " x0")
	}
	if lines[4] != " pc 00000010" {
		t.Errorf("pc line = %q, want %q", lines[4], " pc 00000010")
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}

func TestCSRReadModifyWrite(t *testing.T) {
	h := NewHart()
	h.Reset()
	h.writeCSR(0x10, 0xabc)
	if got := h.readCSR(0x10); got != 0xabc {
		t.Errorf("readCSR = %#x, want %#x", got, 0xabc)
	}
	h.writeCSR(numCSRs, 1)
	if got := h.readCSR(numCSRs); got != 0 {
		t.Errorf("readCSR(out of range) = %#x, want 0", got)
	}
}
