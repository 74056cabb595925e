package rv32i

import (
	"fmt"
	"strings"
)

// instructionWidth is the column the rendered mnemonic+operands are
// left-padded to before the "// <effect>" trace comment, matching
// original_source/rv32i_hart.cpp's instruction_width.
const instructionWidth = 35

// Tick executes exactly one instruction against bus, or does nothing if
// the hart is already halted. header is prefixed to the optional trace line
// (the driver's -i output) and passed to Hart.Dump for the optional -r
// register dump, which does not print it. Generalized from
// original_source/rv32i_hart.cpp's tick().
func (h *Hart) Tick(bus *Bus, header string) {
	if h.Halted {
		return
	}

	if h.ShowRegisters {
		h.Dump(h.Trace, header)
	}

	if h.PC&0x3 != 0 {
		h.halt("PC alignment error")
		return
	}

	h.InsnCounter++
	insn := bus.Get32(h.PC)

	if h.ShowInstructions {
		var b strings.Builder
		fmt.Fprintf(&b, "%s%s: %s  ", header, hex32(h.PC), hex32(insn))
		h.exec(bus, insn, &b)
		fmt.Fprintln(h.Trace, b.String())
	} else {
		h.exec(bus, insn, nil)
	}
}

// exec dispatches insn by opcode and mutates hart/bus state accordingly.
// trace, when non-nil, receives the left-padded rendered instruction
// followed by "// <effect>" (an illegal instruction writes only the
// decoder's error text); trace rendering never itself has side
// effects on architectural state. Grounded on the opcode/funct3 switch in
// original_source/rv32i_hart.cpp's exec().
func (h *Hart) exec(bus *Bus, insn uint32, trace *strings.Builder) {
	switch opcode(insn) {
	case opLui:
		h.execLui(insn, trace)
	case opAuipc:
		h.execAuipc(insn, trace)
	case opJal:
		h.execJal(insn, trace)
	case opJalr:
		h.execJalr(insn, trace)
	case opOpImm:
		h.execAluImm(insn, trace)
	case opOp:
		h.execAluReg(insn, trace)
	case opLoad:
		h.execLoad(bus, insn, trace)
	case opStore:
		h.execStore(bus, insn, trace)
	case opBranch:
		h.execBranch(insn, trace)
	case opSystem:
		h.execSystem(insn, trace)
	default:
		h.execIllegal(insn, trace)
	}
}

// emit left-pads text to instructionWidth and writes it plus the effect
// comment into trace, if tracing is enabled.
func emit(trace *strings.Builder, text string, effect string) {
	if trace == nil {
		return
	}
	fmt.Fprintf(trace, "%-*s// %s", instructionWidth, text, effect)
}

func (h *Hart) execIllegal(insn uint32, trace *strings.Builder) {
	if trace != nil {
		trace.WriteString(illegalInsnText)
	}
	h.halt("Illegal instruction")
}

func (h *Hart) execLui(insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	val := immU(insn)

	emit(trace, renderU("lui", insn), fmt.Sprintf("%s = %s", renderReg(rdIdx), hex0x32(uint32(val))))

	h.Reg.Set(rdIdx, val)
	h.PC += 4
}

func (h *Hart) execAuipc(insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	imm := immU(insn)
	oldPC := h.PC
	val := int32(oldPC) + imm

	emit(trace, renderU("auipc", insn), fmt.Sprintf("%s = %s + %s = %s",
		renderReg(rdIdx), hex0x32(oldPC), hex0x32(uint32(imm)), hex0x32(uint32(val))))

	h.Reg.Set(rdIdx, val)
	h.PC += 4
}

func (h *Hart) execJal(insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	pcBefore := h.PC
	target := pcBefore + uint32(immJ(insn))
	retaddr := int32(pcBefore + 4)

	emit(trace, renderJal(pcBefore, insn), fmt.Sprintf("%s = %s,  pc = %s",
		renderReg(rdIdx), hex0x32(uint32(retaddr)), hex0x32(target)))

	h.Reg.Set(rdIdx, retaddr)
	h.PC = target
}

func (h *Hart) execJalr(insn uint32, trace *strings.Builder) {
	if funct3(insn) != 0 {
		h.execIllegal(insn, trace)
		return
	}

	rdIdx := rd(insn)
	rs1Idx := rs1(insn)
	imm := immI(insn)

	pcBefore := h.PC
	rs1Val := uint32(h.Reg.Get(rs1Idx))
	target := (rs1Val + uint32(imm)) &^ 1
	retaddr := int32(pcBefore + 4)

	text := renderMnemonic("jalr") + renderReg(rdIdx) + "," + renderBaseDisp(rs1Idx, imm)
	emit(trace, text, fmt.Sprintf("%s = %s,  pc = %s",
		renderReg(rdIdx), hex0x32(uint32(retaddr)), hex0x32(target)))

	h.Reg.Set(rdIdx, retaddr)
	h.PC = target
}

func (h *Hart) execAluImm(insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	rs1Idx := rs1(insn)
	rs1Val := h.Reg.Get(rs1Idx)
	imm := immI(insn)

	var mnemonic string
	var result int32
	shownImm := imm

	switch funct3(insn) {
	case 0b000:
		mnemonic, result = "addi", rs1Val+imm
	case 0b010:
		mnemonic = "slti"
		if rs1Val < imm {
			result = 1
		}
	case 0b011:
		mnemonic = "sltiu"
		if uint32(rs1Val) < uint32(imm) {
			result = 1
		}
	case 0b100:
		mnemonic, result = "xori", rs1Val^imm
	case 0b110:
		mnemonic, result = "ori", rs1Val|imm
	case 0b111:
		mnemonic, result = "andi", rs1Val&imm
	case 0b001:
		if funct7(insn) != 0b0000000 {
			h.execIllegal(insn, trace)
			return
		}
		mnemonic = "slli"
		shownImm = int32(shamt(insn))
		result = int32(uint32(rs1Val) << uint(shownImm))
	case 0b101:
		shownImm = int32(shamt(insn))
		switch funct7(insn) {
		case 0b0000000:
			mnemonic = "srli"
			result = int32(uint32(rs1Val) >> uint(shownImm))
		case 0b0100000:
			mnemonic = "srai"
			result = rs1Val >> uint(shownImm)
		default:
			h.execIllegal(insn, trace)
			return
		}
	default:
		h.execIllegal(insn, trace)
		return
	}

	emit(trace, renderITypeAlu(insn, mnemonic, shownImm), fmt.Sprintf("%s = %s", renderReg(rdIdx), hex0x32(uint32(result))))

	h.Reg.Set(rdIdx, result)
	h.PC += 4
}

func (h *Hart) execAluReg(insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	rs1Val := h.Reg.Get(rs1(insn))
	rs2Val := h.Reg.Get(rs2(insn))

	mnemonic, ok := aluRegMnemonic(funct3(insn), funct7(insn))
	if !ok {
		h.execIllegal(insn, trace)
		return
	}

	var result int32
	switch mnemonic {
	case "add":
		result = rs1Val + rs2Val
	case "sub":
		result = rs1Val - rs2Val
	case "sll":
		result = int32(uint32(rs1Val) << uint(rs2Val&0x1f))
	case "slt":
		if rs1Val < rs2Val {
			result = 1
		}
	case "sltu":
		if uint32(rs1Val) < uint32(rs2Val) {
			result = 1
		}
	case "xor":
		result = rs1Val ^ rs2Val
	case "srl":
		result = int32(uint32(rs1Val) >> uint(rs2Val&0x1f))
	case "sra":
		result = rs1Val >> uint(rs2Val&0x1f)
	case "or":
		result = rs1Val | rs2Val
	case "and":
		result = rs1Val & rs2Val
	}

	emit(trace, renderRType(insn, mnemonic), fmt.Sprintf("%s = %s", renderReg(rdIdx), hex0x32(uint32(result))))

	h.Reg.Set(rdIdx, result)
	h.PC += 4
}

func (h *Hart) execLoad(bus *Bus, insn uint32, trace *strings.Builder) {
	rdIdx := rd(insn)
	base := uint32(h.Reg.Get(rs1(insn)))
	addr := base + uint32(immI(insn))

	mnemonic, ok := loadMnemonic(funct3(insn))
	if !ok {
		h.execIllegal(insn, trace)
		return
	}

	var loaded int32
	switch mnemonic {
	case "lb":
		loaded = bus.Get8Sx(addr)
	case "lh":
		loaded = bus.Get16Sx(addr)
	case "lw":
		loaded = bus.Get32Sx(addr)
	case "lbu":
		loaded = int32(bus.Get8(addr))
	case "lhu":
		loaded = int32(bus.Get16(addr))
	}

	text := renderMnemonic(mnemonic) + renderReg(rdIdx) + "," + renderBaseDisp(rs1(insn), immI(insn))
	emit(trace, text, fmt.Sprintf("%s = mem[%s] = %s", renderReg(rdIdx), hex0x32(addr), hex0x32(uint32(loaded))))

	h.Reg.Set(rdIdx, loaded)
	h.PC += 4
}

func (h *Hart) execStore(bus *Bus, insn uint32, trace *strings.Builder) {
	base := uint32(h.Reg.Get(rs1(insn)))
	addr := base + uint32(immS(insn))
	rs2Val := uint32(h.Reg.Get(rs2(insn)))

	mnemonic, ok := storeMnemonic(funct3(insn))
	if !ok {
		h.execIllegal(insn, trace)
		return
	}

	switch mnemonic {
	case "sb":
		bus.Set8(addr, uint8(rs2Val))
	case "sh":
		bus.Set16(addr, uint16(rs2Val))
	case "sw":
		bus.Set32(addr, rs2Val)
	}

	text := renderMnemonic(mnemonic) + renderReg(rs2(insn)) + "," + renderBaseDisp(rs1(insn), immS(insn))
	emit(trace, text, fmt.Sprintf("mem[%s] = %s", hex0x32(addr), hex0x32(rs2Val)))

	h.PC += 4
}

func (h *Hart) execBranch(insn uint32, trace *strings.Builder) {
	rs1Idx, rs2Idx := rs1(insn), rs2(insn)
	rs1Val := h.Reg.Get(rs1Idx)
	rs2Val := h.Reg.Get(rs2Idx)

	pcBefore := h.PC
	target := pcBefore + uint32(immB(insn))

	mnemonic, ok := branchMnemonic(funct3(insn))
	if !ok {
		h.execIllegal(insn, trace)
		return
	}

	var take bool
	switch mnemonic {
	case "beq":
		take = rs1Val == rs2Val
	case "bne":
		take = rs1Val != rs2Val
	case "blt":
		take = rs1Val < rs2Val
	case "bge":
		take = rs1Val >= rs2Val
	case "bltu":
		take = uint32(rs1Val) < uint32(rs2Val)
	case "bgeu":
		take = uint32(rs1Val) >= uint32(rs2Val)
	}

	if trace != nil {
		text := renderBType(pcBefore, insn, mnemonic)
		var effect string
		if take {
			effect = fmt.Sprintf("%s = %s, %s = %s, br_taken  pc = %s",
				renderReg(rs1Idx), hex0x32(uint32(rs1Val)), renderReg(rs2Idx), hex0x32(uint32(rs2Val)), hex0x32(target))
		} else {
			effect = fmt.Sprintf("%s = %s, %s = %s, br_not_taken  pc = %s",
				renderReg(rs1Idx), hex0x32(uint32(rs1Val)), renderReg(rs2Idx), hex0x32(uint32(rs2Val)), hex0x32(pcBefore+4))
		}
		emit(trace, text, effect)
	}

	if take {
		h.PC = target
	} else {
		h.PC = pcBefore + 4
	}
}

func (h *Hart) execSystem(insn uint32, trace *strings.Builder) {
	switch funct3(insn) {
	case 0b000:
		switch insn {
		case 0x00000073:
			h.execHaltInsn("ecall", "ECALL instruction", trace)
		case 0x00100073:
			h.execHaltInsn("ebreak", "EBREAK instruction", trace)
		default:
			h.execIllegal(insn, trace)
		}
	case 0b001:
		h.execCsrrx(insn, "csrrw", trace)
	case 0b010:
		h.execCsrrx(insn, "csrrs", trace)
	case 0b011:
		h.execCsrrx(insn, "csrrc", trace)
	case 0b101:
		h.execCsrrxi(insn, "csrrwi", trace)
	case 0b110:
		h.execCsrrxi(insn, "csrrsi", trace)
	case 0b111:
		h.execCsrrxi(insn, "csrrci", trace)
	default:
		h.execIllegal(insn, trace)
	}
}

func (h *Hart) execHaltInsn(mnemonic, reason string, trace *strings.Builder) {
	emit(trace, renderMnemonic(mnemonic), "HALT")
	h.halt(reason)
}

func (h *Hart) execCsrrx(insn uint32, mnemonic string, trace *strings.Builder) {
	rdIdx := rd(insn)
	rs1Idx := rs1(insn)
	csrAddr := insn >> 20

	if csrAddr >= numCSRs {
		h.execIllegal(insn, trace)
		return
	}

	oldVal := h.readCSR(csrAddr)
	rs1Val := uint32(h.Reg.Get(rs1Idx))
	newVal := oldVal

	switch mnemonic {
	case "csrrw":
		newVal = rs1Val
	case "csrrs":
		if rs1Idx != 0 {
			newVal = oldVal | rs1Val
		}
	case "csrrc":
		if rs1Idx != 0 {
			newVal = oldVal &^ rs1Val
		}
	}
	h.writeCSR(csrAddr, newVal)

	if trace != nil {
		effect := fmt.Sprintf("csr[%s] was %s, now %s", hex0x12(csrAddr), hex0x32(oldVal), hex0x32(newVal))
		if rdIdx != 0 {
			effect += fmt.Sprintf("; %s = %s", renderReg(rdIdx), hex0x32(oldVal))
		}
		emit(trace, renderCsrrx(insn, mnemonic), effect)
	}

	if rdIdx != 0 {
		h.Reg.Set(rdIdx, int32(oldVal))
	}
	h.PC += 4
}

func (h *Hart) execCsrrxi(insn uint32, mnemonic string, trace *strings.Builder) {
	rdIdx := rd(insn)
	zimm := rs1(insn)
	csrAddr := insn >> 20

	if csrAddr >= numCSRs {
		h.execIllegal(insn, trace)
		return
	}

	oldVal := h.readCSR(csrAddr)
	newVal := oldVal

	switch mnemonic {
	case "csrrwi":
		newVal = zimm
	case "csrrsi":
		if zimm != 0 {
			newVal = oldVal | zimm
		}
	case "csrrci":
		if zimm != 0 {
			newVal = oldVal &^ zimm
		}
	}
	h.writeCSR(csrAddr, newVal)

	if trace != nil {
		effect := fmt.Sprintf("csr[%s] was %s, now %s", hex0x12(csrAddr), hex0x32(oldVal), hex0x32(newVal))
		if rdIdx != 0 {
			effect += fmt.Sprintf("; %s = %s", renderReg(rdIdx), hex0x32(oldVal))
		}
		emit(trace, renderCsrrxi(insn, mnemonic), effect)
	}

	if rdIdx != 0 {
		h.Reg.Set(rdIdx, int32(oldVal))
	}
	h.PC += 4
}
