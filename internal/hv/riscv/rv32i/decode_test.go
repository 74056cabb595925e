package rv32i

import (
	"math/rand"
	"strings"
	"testing"
)

func TestDecodeLui(t *testing.T) {
	// lui x1, 0x12345
	insn := uint32(0x123450b7)
	got := Decode(0, insn)
	want := "lui     x1,0x12345"
	if got != want {
		t.Errorf("Decode(lui) = %q, want %q", got, want)
	}
}

func TestDecodeAddi(t *testing.T) {
	// addi x1, x1, 0x678
	insn := uint32(0x67808093)
	got := Decode(0, insn)
	want := "addi    x1,x1,1656"
	if got != want {
		t.Errorf("Decode(addi) = %q, want %q", got, want)
	}
}

func TestDecodeEbreak(t *testing.T) {
	got := Decode(0, 0x00100073)
	if got != "ebreak" {
		t.Errorf("Decode(ebreak) = %q, want %q", got, "ebreak")
	}
}

func TestDecodeEcall(t *testing.T) {
	got := Decode(0, 0x00000073)
	if got != "ecall" {
		t.Errorf("Decode(ecall) = %q, want %q", got, "ecall")
	}
}

func TestDecodeIllegalZeroWord(t *testing.T) {
	got := Decode(0, 0)
	if got != illegalInsnText {
		t.Errorf("Decode(0) = %q, want %q", got, illegalInsnText)
	}
}

func TestDecodeJalTarget(t *testing.T) {
	// jal x1, 8
	insn := uint32(0x008000ef)
	got := Decode(0x100, insn)
	want := "jal     x1,0x00000108"
	if got != want {
		t.Errorf("Decode(jal) = %q, want %q", got, want)
	}
}

func TestDecodeBranch(t *testing.T) {
	// beq x0, x0, -8
	insn := uint32(0xfe000ce3)
	got := Decode(0x100, insn)
	want := "beq     x0,x0,0x000000f8"
	if got != want {
		t.Errorf("Decode(beq) = %q, want %q", got, want)
	}
}

func TestDecodeIsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		insn := rng.Uint32()
		got := Decode(0, insn)
		if got == "" {
			t.Fatalf("Decode(%#x) returned empty string", insn)
		}
	}
}

func encodeRType(f7, rs2v, rs1v, f3, rdv, opc uint32) uint32 {
	return (f7 << 25) | (rs2v << 20) | (rs1v << 15) | (f3 << 12) | (rdv << 7) | opc
}

func TestDecodeRTypeRoundTrip(t *testing.T) {
	// add x3, x1, x2
	insn := encodeRType(0, 2, 1, 0b000, 3, opOp)
	got := Decode(0, insn)
	want := "add     x3,x1,x2"
	if got != want {
		t.Errorf("Decode(add) = %q, want %q", got, want)
	}
}

func TestImmIRoundTrip(t *testing.T) {
	insn := uint32(0xfff00093) // addi x1,x0,-1
	if got := immI(insn); got != -1 {
		t.Errorf("immI = %d, want -1", got)
	}
}

func TestImmBLowBitAlwaysZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		insn := rng.Uint32()
		if immB(insn)&1 != 0 {
			t.Fatalf("immB(%#x) = %d, low bit set", insn, immB(insn))
		}
	}
}

func TestImmJLowBitAlwaysZero(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		insn := rng.Uint32()
		if immJ(insn)&1 != 0 {
			t.Fatalf("immJ(%#x) = %d, low bit set", insn, immJ(insn))
		}
	}
}

func TestImmUClearsLow12Bits(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		insn := rng.Uint32()
		if uint32(immU(insn))&0xfff != 0 {
			t.Fatalf("immU(%#x) has nonzero low 12 bits", insn)
		}
	}
}

func TestRenderMnemonicPadding(t *testing.T) {
	got := renderMnemonic("lui")
	if !strings.HasPrefix(got, "lui") || len(got) != mnemonicWidth {
		t.Errorf("renderMnemonic(lui) = %q, want width %d", got, mnemonicWidth)
	}
	if got := renderMnemonic("ecall"); got != "ecall" {
		t.Errorf("renderMnemonic(ecall) = %q, want unpadded", got)
	}
}
