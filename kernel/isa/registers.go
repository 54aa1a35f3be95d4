// Package isa defines the instruction set, register file and flag
// semantics shared by every core in the simulated machine.
package isa

// Reg identifies one of the sixteen general-purpose registers.
type Reg uint8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSI
	RDI
	RSP
	RBP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	NumRegs = 16
)

var regNames = [NumRegs]string{
	"RAX", "RCX", "RDX", "RBX", "RSI", "RDI", "RSP", "RBP",
	"R8", "R9", "R10", "R11", "R12", "R13", "R14", "R15",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "?"
}

// LookupReg returns the Reg named by s (case-sensitive, as emitted by
// the disassembler), and ok=false if s names no register.
func LookupReg(s string) (Reg, bool) {
	for i, n := range regNames {
		if n == s {
			return Reg(i), true
		}
	}
	return 0, false
}

// Flag bits in Registers.Flags.
const (
	FlagCY uint8 = 1 << iota // Carry
	FlagZF                   // Zero
)

// Registers is the saveable state of one core: sixteen general-purpose
// registers, the instruction pointer and the two-bit flags word. It is
// always copied by value — there are no live pointers into a core's
// register file once it has been saved to a PCB.
type Registers struct {
	GP    [NumRegs]uint64
	RIP   uint64 // 0 means idle; otherwise a 1-based index into the running program's instructions
	Flags uint8
}

// Get returns the value of a general-purpose register.
func (r *Registers) Get(reg Reg) uint64 { return r.GP[reg] }

// Set writes a general-purpose register.
func (r *Registers) Set(reg Reg, v uint64) { r.GP[reg] = v }

// CY reports whether the carry flag is set.
func (r *Registers) CY() bool { return r.Flags&FlagCY != 0 }

// ZF reports whether the zero flag is set.
func (r *Registers) ZF() bool { return r.Flags&FlagZF != 0 }

// SetFlags clears CY/ZF then sets them according to cy/zf.
func (r *Registers) SetFlags(cy, zf bool) {
	r.Flags = 0
	if cy {
		r.Flags |= FlagCY
	}
	if zf {
		r.Flags |= FlagZF
	}
}
