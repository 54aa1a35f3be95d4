// Package process holds the process control block, the program
// registry and the real-time job descriptor — the kernel's per-process
// data, independent of any scheduling policy.
package process

import "github.com/intuitionamiga/feauxkernel/kernel/isa"

// PID is a process identifier. Zero is never assigned to a live
// process; it is the sentinel failure value for Spawn and the "no
// process" value for device/interrupt bookkeeping.
type PID uint32

// NoDeadline is the sentinel meaning "no absolute deadline".
const NoDeadline int64 = -1

// State is the lifecycle state of a process.
type State uint8

const (
	Ready State = iota
	Processing
	Blocked
	Done
	Dead
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Processing:
		return "PROCESSING"
	case Blocked:
		return "BLOCKED"
	case Done:
		return "DONE"
	case Dead:
		return "DEAD"
	default:
		return "?"
	}
}

// PCB is the kernel's record of one process. It is created by Spawn
// and never destroyed — DONE/DEAD PCBs stay in the process table so
// statistics can be computed over a whole run.
type PCB struct {
	PID         PID
	Program     string
	ArrivalTime int64
	DoneTime    int64
	Deadline    int64 // NoDeadline if none

	ReqProcessorTime int64
	ProcessorTime    int64

	Level                int // MLF level, 0..5
	ProcessorTimeOnLevel int64

	State     State
	RegState  isa.Registers
}

// RemainingTime is reqProcessorTime - processorTime, used by SRT and
// RT_LST keys.
func (p *PCB) RemainingTime() int64 {
	return p.ReqProcessorTime - p.ProcessorTime
}

// Slack is deadline - (now + remaining). The caller supplies now since
// the PCB itself does not track the clock. The RT_LST heap key
// (ready.SlackKey) drops the now term and does not call Slack.
func (p *PCB) Slack(now int64) int64 {
	return p.Deadline - (now + p.RemainingTime())
}

// HasDeadline reports whether the PCB carries a real-time deadline.
func (p *PCB) HasDeadline() bool { return p.Deadline != NoDeadline }
