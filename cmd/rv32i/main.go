package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/tinyrange/rv32i/internal/hv/riscv/rv32i"
)

// errSilent marks a failure whose diagnostic has already been written to
// stderr by the component that detected it (bus.LoadFile's own
// "Can't open file"/"Program too big." lines); main only needs to decide
// the exit code for it, not print anything further.
var errSilent = errors.New("silent")

// hexUint32 is a flag.Value that parses its argument as hexadecimal,
// with or without a leading "0x", matching the -m option's semantics.
type hexUint32 struct {
	value uint32
}

func (h *hexUint32) String() string {
	return fmt.Sprintf("%x", h.value)
}

func (h *hexUint32) Set(s string) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid hex value %q: %w", s, err)
	}
	h.value = uint32(v)
	return nil
}

func run() error {
	dflag := flag.Bool("d", false, "show disassembly before program execution")
	iflag := flag.Bool("i", false, "show instruction printing during execution")
	rflag := flag.Bool("r", false, "show register printing during execution")
	zflag := flag.Bool("z", false, "show a dump of the regs & memory after simulation")
	limit := flag.Uint64("l", 0, "maximum number of instructions to exec")
	memSize := &hexUint32{value: 0x100}
	flag.Var(memSize, "m", "specify memory size (default = 0x100)")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rv32i [-d] [-i] [-r] [-z] [-l exec-limit] [-m hex-mem-size] infile")
		fmt.Fprintln(os.Stderr, "  -d show disassembly before program execution")
		fmt.Fprintln(os.Stderr, "  -i show instruction printing during execution")
		fmt.Fprintln(os.Stderr, "  -l maximum number of instructions to exec")
		fmt.Fprintln(os.Stderr, "  -m specify memory size (default = 0x100)")
		fmt.Fprintln(os.Stderr, "  -r show register printing during execution")
		fmt.Fprintln(os.Stderr, "  -z show a dump of the regs & memory after simulation")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return errSilent
	}
	infile := flag.Arg(0)

	bus := rv32i.NewBus(memSize.value)

	if err := bus.LoadFile(infile); err != nil {
		return fmt.Errorf("%w: %w", errSilent, err)
	}
	slog.Debug("program loaded", "file", infile, "mem_size", memSize.value)

	if *dflag {
		rv32i.Disassemble(bus, os.Stdout)
	}

	m := rv32i.NewMachine(bus, os.Stdout)
	m.Hart.ShowInstructions = *iflag
	m.Hart.ShowRegisters = *rflag

	m.Run("", *limit)

	if *zflag {
		m.Hart.Dump(os.Stdout, "")
		bus.Dump(os.Stdout)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "rv32i: %v\n", err)
		}
		os.Exit(1)
	}
}
