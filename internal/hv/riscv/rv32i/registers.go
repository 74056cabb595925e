package rv32i

import (
	"fmt"
	"io"
)

// uninitializedRegister is written into x1..x31 on Reset so that reading
// an architecturally-uninitialized register is obvious in a Dump. This is
// the int32 two's complement value of the bit pattern 0xf0f0f0f0 (an
// untyped constant that large cannot be converted to int32 directly).
const uninitializedRegister int32 = -252645136

// RegisterFile models the 32 RV32I general-purpose registers. x0 is
// hard-wired: reads always return 0 and writes are silently dropped.
type RegisterFile struct {
	regs [32]int32
}

// Reset sets x0 to 0 and x1..x31 to the uninitializedRegister sentinel.
func (r *RegisterFile) Reset() {
	r.regs[0] = 0
	for i := 1; i < len(r.regs); i++ {
		r.regs[i] = uninitializedRegister
	}
}

// Set writes val to register idx. Writes to x0 or to an out-of-range
// index are ignored.
func (r *RegisterFile) Set(idx uint32, val int32) {
	if idx == 0 || idx >= uint32(len(r.regs)) {
		return
	}
	r.regs[idx] = val
}

// Get reads register idx. x0 and out-of-range indices read as 0.
func (r *RegisterFile) Get(idx uint32) int32 {
	if idx == 0 || idx >= uint32(len(r.regs)) {
		return 0
	}
	return r.regs[idx]
}

// Dump prints four rows of eight registers each, labeled x0/x8/x16/x24,
// prefixed on every row by header. Only the hex values are part of the
// documented contract (spec.md leaves inter-column spacing as an
// implementer's choice); this follows original_source/registerfile.cpp's
// "label + ' value' * 8" shape.
func (r *RegisterFile) Dump(w io.Writer, header string) {
	for base := 0; base < 32; base += 8 {
		fmt.Fprintf(w, "%sx%d", header, base)
		if base < 10 {
			fmt.Fprint(w, " ")
		}
		for i := 0; i < 8; i++ {
			fmt.Fprintf(w, " %s", hex32(uint32(r.Get(uint32(base+i)))))
		}
		fmt.Fprintln(w)
	}
}
