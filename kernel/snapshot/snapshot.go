// Package snapshot defines the read-only projection of kernel state
// returned by Kernel.Snapshot. Every field is a value or a freshly
// copied slice — nothing here aliases live kernel memory.
package snapshot

import (
	"github.com/intuitionamiga/feauxkernel/kernel/cpu"
	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
)

// StepAction is the per-core decision made this tick.
type StepAction int

const (
	NOOP StepAction = iota
	HandleInterrupt
	BeginRun
	ContinueRun
	HandleSyscall
	ServiceRequest
)

func (s StepAction) String() string {
	switch s {
	case NOOP:
		return "NOOP"
	case HandleInterrupt:
		return "HANDLE_INTERRUPT"
	case BeginRun:
		return "BEGIN_RUN"
	case ContinueRun:
		return "CONTINUE_RUN"
	case HandleSyscall:
		return "HANDLE_SYSCALL"
	case ServiceRequest:
		return "SERVICE_REQUEST"
	default:
		return "?"
	}
}

// Core is the per-core projection.
type Core struct {
	Available      bool
	Registers      isa.Registers
	StepAction     StepAction
	PendingSyscall cpu.Syscall
	RunningPID     process.PID
}

// Device is the per-device projection.
type Device struct {
	PID      process.PID
	Duration int64
	Progress int64
}

// Interrupt is a queued interrupt record. Only IO_COMPLETION exists
// today; the Kind field documents the extension point for future
// interrupt variants.
type Interrupt struct {
	Kind string
	PID  process.PID
}

// State is the full read-only projection of one Kernel at the instant
// Snapshot was called.
type State struct {
	Time     int64
	Paused   bool
	Strategy ready.Strategy

	Cores   []Core
	Devices []Device

	Processes []process.PCB

	Interrupts []Interrupt

	// Ready holds the active ready structure(s) in pop order. For every
	// strategy but MLF this has exactly one entry. For MLF it holds one
	// entry per level, ordered by level (0 first).
	Ready [][]process.PCB

	Reentry []process.PCB
}
