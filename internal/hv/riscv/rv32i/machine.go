package rv32i

import (
	"fmt"
	"io"
)

// Machine wires a Bus and a Hart together with the output stream the
// driver loop reports to, generalized from
// original_source/cpu_single_hart.cpp's single-hart simulate() driver.
type Machine struct {
	Bus  *Bus
	Hart *Hart

	// Out receives the halt-reason/executed-instruction-count summary Run
	// prints after the hart stops.
	Out io.Writer
}

// NewMachine returns a Machine with a fresh Hart, reset and ready to run.
func NewMachine(bus *Bus, out io.Writer) *Machine {
	h := NewHart()
	h.Reset()
	h.Trace = out
	return &Machine{Bus: bus, Hart: h, Out: out}
}

// Run ticks the hart until it halts or limit instructions have executed
// (limit == 0 means unbounded), then prints a summary line to Out. x2 (the
// stack pointer) is initialized to the bus size before the first tick, per
// cpu_single_hart.cpp's simulate(). header is forwarded to every Tick for
// -r/-i trace-line prefixing.
func (m *Machine) Run(header string, limit uint64) {
	m.Hart.Reg.Set(2, int32(m.Bus.Size()))

	for !m.Hart.Halted {
		if limit != 0 && m.Hart.InsnCounter >= limit {
			break
		}
		m.Hart.Tick(m.Bus, header)
	}

	if m.Hart.Halted {
		fmt.Fprintf(m.Out, "Execution terminated. Reason: %s\n", m.Hart.HaltReason)
	}
	fmt.Fprintf(m.Out, "%d instructions executed\n", m.Hart.InsnCounter)
}

// Disassemble writes one line per 4-byte-aligned word in bus to w: the
// address, the raw hex word, then its decoded mnemonic text, matching
// main.cpp's disassemble() pass over the whole address space.
func Disassemble(bus *Bus, w io.Writer) {
	for addr := uint32(0); addr < bus.Size(); addr += 4 {
		insn := bus.Get32(addr)
		fmt.Fprintf(w, "%s: %s  %s\n", hex32(addr), hex32(insn), Decode(addr, insn))
	}
}
