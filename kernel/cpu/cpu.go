// Package cpu implements the per-tick instruction-fetch-execute cycle
// of a single simulated core: opcode semantics, condition flags, and
// syscall raising. It knows nothing about processes, schedulers or
// devices — it only executes whatever instruction stream and register
// file it has been Load()-ed with.
package cpu

import (
	"fmt"

	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/memarena"
)

// Syscall is the syscall a core's most recently executed instruction
// requested, if any.
type Syscall uint8

const (
	SysNone Syscall = iota
	SysIO
	SysExit
	SysAlloc
	SysFree
)

// UnknownOpcodeError is an internal error: the instruction stream
// contains an opcode the CPU does not recognise.
type UnknownOpcodeError struct {
	Core int
	Op   isa.Opcode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("core %d: unrecognized opcode %v", e.Core, e.Op)
}

// CPU is one simulated core. The zero value is a valid IDLE core with
// no memory arena attached (SW then has nowhere to write and is a
// no-op).
type CPU struct {
	id      int
	regs    isa.Registers
	instrs  []isa.Instruction
	pending Syscall
	mem     *memarena.Arena
}

// New returns an idle core identified by id (used only for
// diagnostics and snapshots), writing through mem for SW instructions.
// Every core in a machine shares the same arena — user memory is a
// single OS-wide resource, not per-core.
func New(id int, mem *memarena.Arena) *CPU {
	return &CPU{id: id, mem: mem}
}

// ID returns the core's index.
func (c *CPU) ID() int { return c.id }

// Free reports whether the core is idle, i.e. RIP == 0.
func (c *CPU) Free() bool { return c.regs.RIP == 0 }

// Load overwrites the register file wholesale and attaches the
// instruction stream the new register file's RIP indexes into. Any
// previously pending syscall is discarded — a fresh PCB never
// inherits a stale syscall.
func (c *CPU) Load(regs isa.Registers, instrs []isa.Instruction) {
	c.regs = regs
	c.instrs = instrs
	c.pending = SysNone
}

// Zero resets the core to idle with no attached instruction stream,
// used when a process is preempted off a core mid-tick.
func (c *CPU) Zero() {
	c.regs = isa.Registers{}
	c.instrs = nil
	c.pending = SysNone
}

// RegState returns a copy of the register file.
func (c *CPU) RegState() isa.Registers { return c.regs }

// SetReg writes a single general-purpose register without disturbing
// the rest of the core's state, used by syscall handlers that leave
// the core running (ALLOC, FREE) rather than blocking it.
func (c *CPU) SetReg(r isa.Reg, v uint64) { c.regs.Set(r, v) }

// PendingSyscall returns the syscall raised by the last executed
// instruction, or SysNone.
func (c *CPU) PendingSyscall() Syscall { return c.pending }

// ClearSyscall resets PendingSyscall to SysNone once the kernel has
// handled it.
func (c *CPU) ClearSyscall() { c.pending = SysNone }

// Tick fetches and executes one instruction. If RIP is zero on entry
// the core is idle and nothing happens. It panics with
// *UnknownOpcodeError for an opcode outside the instruction set — an
// internal error per the kernel's error-handling policy.
func (c *CPU) Tick() {
	if c.regs.RIP == 0 {
		return
	}

	idx := c.regs.RIP - 1
	instr := c.instrs[idx]
	c.regs.RIP++

	c.execute(instr)
}

func (c *CPU) execute(instr isa.Instruction) {
	switch instr.Op {
	case isa.NOP, isa.WORK:
		// no effect; WORK still counts as a consumed processor tick
	case isa.IO:
		c.pending = SysIO
		c.regs.Set(isa.RDI, uint64(instr.A))
	case isa.EXIT:
		c.pending = SysExit
	case isa.LOAD:
		c.regs.Set(instr.RegB(), uint64(instr.A))
	case isa.MOVE:
		c.regs.Set(instr.RegB(), c.regs.Get(instr.RegA()))
	case isa.ALLOC:
		c.pending = SysAlloc
	case isa.FREE:
		c.pending = SysFree
	case isa.SW:
		// Low byte of rs is written at the address held in rd; the
		// address is an arena handle, not a raw pointer.
		if c.mem != nil {
			data := byte(c.regs.Get(instr.RegA()))
			handle := memarena.Handle(c.regs.Get(instr.RegB()))
			c.mem.Write(handle, 0, data)
		}
	case isa.CMP:
		a, b := c.regs.Get(instr.RegA()), c.regs.Get(instr.RegB())
		cy := a <= b
		zf := a == b
		c.regs.SetFlags(cy, zf)
	case isa.JL:
		if c.regs.CY() && !c.regs.ZF() {
			c.branch(instr)
		}
	case isa.JLE:
		if c.regs.CY() {
			c.branch(instr)
		}
	case isa.JE:
		if c.regs.ZF() {
			c.branch(instr)
		}
	case isa.JGE:
		if !c.regs.CY() {
			c.branch(instr)
		}
	case isa.JG:
		if !c.regs.CY() && !c.regs.ZF() {
			c.branch(instr)
		}
	case isa.INC:
		r := instr.RegA()
		c.regs.Set(r, c.regs.Get(r)+1)
	case isa.ADD:
		src, dst := c.regs.Get(instr.RegA()), c.regs.Get(instr.RegB())
		sum := dst + src
		overflow := dst > ^uint64(0)-src
		c.regs.SetFlags(overflow, overflow && sum == 0)
		c.regs.Set(instr.RegB(), sum)
	case isa.SUB:
		src, dst := c.regs.Get(instr.RegA()), c.regs.Get(instr.RegB())
		c.regs.SetFlags(dst >= src, dst == src)
		c.regs.Set(instr.RegB(), dst-src)
	default:
		panic(&UnknownOpcodeError{Core: c.id, Op: instr.Op})
	}
}

// branch implements the relative-to-pre-fetch-RIP rule: RIP has
// already been advanced past the branch instruction by Tick, so the
// new target is (RIP-1)+rel, i.e. the branch instruction's own index
// plus rel.
func (c *CPU) branch(instr isa.Instruction) {
	c.regs.RIP = uint64(int64(c.regs.RIP) - 1 + instr.A)
}
