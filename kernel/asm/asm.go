// Package asm is a two-pass assembler and disassembler for the
// instruction set of kernel/isa — an alternate, purely textual
// producer of the same []isa.Instruction arrays LoadProgram consumes.
// It defines no kernel semantics of its own: the opcode table,
// register names and branch-relative-to-instruction-index rule all
// come straight from kernel/isa and kernel/cpu.
//
// Syntax is line-oriented, one instruction or label per line: a label
// line ends in ':', everything after a ';' is a comment, and operands
// are comma-separated. Forward label references are resolved in a
// second pass once every label's address is known.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/intuitionamiga/feauxkernel/kernel/isa"
)

// operandSpec says how many of an opcode's operand fields are
// registers, an immediate, or a branch-target label.
type operandSpec int

const (
	specNone operandSpec = iota
	specImmReg           // LOAD imm, rd
	specRegReg           // MOVE/SW/CMP/ADD/SUB rs, rd
	specReg              // INC r
	specImm              // IO dur
	specLabel            // Jxx label
)

var opSpecs = map[isa.Opcode]operandSpec{
	isa.NOP:   specNone,
	isa.WORK:  specNone,
	isa.IO:    specImm,
	isa.EXIT:  specNone,
	isa.LOAD:  specImmReg,
	isa.MOVE:  specRegReg,
	isa.ALLOC: specNone,
	isa.FREE:  specNone,
	isa.SW:    specRegReg,
	isa.CMP:   specRegReg,
	isa.JL:    specLabel,
	isa.JLE:   specLabel,
	isa.JE:    specLabel,
	isa.JGE:   specLabel,
	isa.JG:    specLabel,
	isa.INC:   specReg,
	isa.ADD:   specRegReg,
	isa.SUB:   specRegReg,
}

// ParseError reports the source line an assembly failure was found on.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("asm: line %d: %s", e.Line, e.Msg)
}

type rawLine struct {
	lineNo int
	label  string // non-empty if this line only defines a label
	op     string
	args   []string
}

// Assemble parses source into an instruction stream. Labels may be
// referenced before they are defined; every Jxx operand is resolved to
// an offset relative to its own instruction index, matching the
// branch semantics kernel/cpu.CPU.branch implements.
func Assemble(source string) ([]isa.Instruction, error) {
	lines, err := tokenize(source)
	if err != nil {
		return nil, err
	}

	labels := map[string]int{}
	idx := 0
	for _, l := range lines {
		if l.label != "" {
			if _, dup := labels[l.label]; dup {
				return nil, &ParseError{l.lineNo, fmt.Sprintf("duplicate label %q", l.label)}
			}
			labels[l.label] = idx
			continue
		}
		idx++
	}

	out := make([]isa.Instruction, 0, idx)
	for _, l := range lines {
		if l.label != "" {
			continue
		}
		instr, err := assembleOne(l, len(out), labels)
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
	return out, nil
}

func tokenize(source string) ([]rawLine, error) {
	var out []rawLine
	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		if c := strings.IndexByte(raw, ';'); c >= 0 {
			raw = raw[:c]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.HasSuffix(raw, ":") {
			name := strings.TrimSuffix(raw, ":")
			if name == "" {
				return nil, &ParseError{lineNo, "empty label"}
			}
			out = append(out, rawLine{lineNo: lineNo, label: name})
			continue
		}

		mnemonic := raw
		var rest string
		if i := strings.IndexFunc(raw, func(r rune) bool { return r == ' ' || r == '\t' }); i >= 0 {
			mnemonic, rest = raw[:i], strings.TrimSpace(raw[i+1:])
		}
		mnemonic = strings.ToUpper(mnemonic)
		var args []string
		if rest != "" {
			for _, a := range strings.Split(rest, ",") {
				args = append(args, strings.TrimSpace(a))
			}
		}
		out = append(out, rawLine{lineNo: lineNo, op: mnemonic, args: args})
	}
	return out, nil
}

func assembleOne(l rawLine, selfIndex int, labels map[string]int) (isa.Instruction, error) {
	op, ok := isa.LookupOpcode(l.op)
	if !ok {
		return isa.Instruction{}, &ParseError{l.lineNo, fmt.Sprintf("unknown mnemonic %q", l.op)}
	}

	spec := opSpecs[op]
	want := operandCount(spec)
	if len(l.args) != want {
		return isa.Instruction{}, &ParseError{l.lineNo, fmt.Sprintf("%s wants %d operand(s), got %d", l.op, want, len(l.args))}
	}

	instr := isa.Instruction{Op: op}
	switch spec {
	case specNone:
	case specImm:
		n, err := parseInt(l, l.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		instr.A = n
	case specImmReg:
		n, err := parseInt(l, l.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		r, err := parseReg(l, l.args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		instr.A, instr.B = n, int64(r)
	case specRegReg:
		ra, err := parseReg(l, l.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		rb, err := parseReg(l, l.args[1])
		if err != nil {
			return isa.Instruction{}, err
		}
		instr.A, instr.B = int64(ra), int64(rb)
	case specReg:
		r, err := parseReg(l, l.args[0])
		if err != nil {
			return isa.Instruction{}, err
		}
		instr.A = int64(r)
	case specLabel:
		target, ok := labels[l.args[0]]
		if !ok {
			return isa.Instruction{}, &ParseError{l.lineNo, fmt.Sprintf("undefined label %q", l.args[0])}
		}
		instr.A = int64(target - selfIndex)
	}
	return instr, nil
}

func operandCount(s operandSpec) int {
	switch s {
	case specNone:
		return 0
	case specImm, specReg, specLabel:
		return 1
	case specImmReg, specRegReg:
		return 2
	default:
		return 0
	}
}

func parseInt(l rawLine, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, &ParseError{l.lineNo, fmt.Sprintf("bad immediate %q: %v", s, err)}
	}
	return n, nil
}

func parseReg(l rawLine, s string) (isa.Reg, error) {
	r, ok := isa.LookupReg(strings.ToUpper(s))
	if !ok {
		return 0, &ParseError{l.lineNo, fmt.Sprintf("unknown register %q", s)}
	}
	return r, nil
}

// Disassemble renders instrs as a human-readable listing for
// cmd/feauxasm's -d flag, one line per instruction: a four-digit
// instruction index, the mnemonic, and its operands in Assemble's
// operand syntax. Branch operands are printed as the signed relative
// offset followed by the resolved target index ("+2 (-> 0003)"); no
// labels are synthesized, so the listing is not itself input that
// Assemble accepts.
func Disassemble(instrs []isa.Instruction) string {
	var b strings.Builder
	for i, instr := range instrs {
		fmt.Fprintf(&b, "%04d  %s", i, instr.Op)
		switch opSpecs[instr.Op] {
		case specImm:
			fmt.Fprintf(&b, " %d", instr.A)
		case specImmReg:
			fmt.Fprintf(&b, " %d, %s", instr.A, instr.RegB())
		case specRegReg:
			fmt.Fprintf(&b, " %s, %s", instr.RegA(), instr.RegB())
		case specReg:
			fmt.Fprintf(&b, " %s", instr.RegA())
		case specLabel:
			fmt.Fprintf(&b, " %+d (-> %04d)", instr.A, int64(i)+instr.A)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
