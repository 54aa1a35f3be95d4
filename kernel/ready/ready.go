// Package ready implements the six ready-structure containers named in
// the data model: FIFO/RT_FIFO queues, SJF/SRT/RT_EDF/RT_LST heaps, and
// the six-level MLF queue array. The tick loop dispatches on a
// Strategy value; it never type-switches on a container's concrete
// type.
package ready

import "github.com/intuitionamiga/feauxkernel/kernel/process"

// Strategy selects which ready structure is active.
type Strategy int

const (
	FIFO Strategy = iota
	SJF
	SRT
	MLF
	RTFIFO
	RTEDF
	RTLST
)

func (s Strategy) String() string {
	switch s {
	case FIFO:
		return "FIFO"
	case SJF:
		return "SJF"
	case SRT:
		return "SRT"
	case MLF:
		return "MLF"
	case RTFIFO:
		return "RT_FIFO"
	case RTEDF:
		return "RT_EDF"
	case RTLST:
		return "RT_LST"
	default:
		return "?"
	}
}

// IsRealTime reports whether s is one of the real-time policies.
func (s Strategy) IsRealTime() bool {
	return s == RTFIFO || s == RTEDF || s == RTLST
}

// Structure is the shared shape of every non-MLF ready container.
// Implementations never mutate observably from Peek/Len/Snapshot.
type Structure interface {
	Push(p *process.PCB)
	Pop() *process.PCB
	Peek() *process.PCB
	Len() int
	// Snapshot returns every queued PCB in pop order without mutating
	// the container.
	Snapshot() []*process.PCB
}

// New constructs the active Structure for strategy s. It panics for
// MLF — MLF is represented by Levels, not a single Structure, because
// its push target depends on the PCB's level.
func New(s Strategy) Structure {
	switch s {
	case FIFO, RTFIFO:
		return NewFIFO()
	case SJF:
		return newKeyedHeap(sjfKey)
	case SRT:
		return newKeyedHeap(srtKey)
	case RTEDF:
		return newKeyedHeap(DeadlineKey)
	case RTLST:
		return newKeyedHeap(SlackKey)
	default:
		panic("ready: New called with MLF or unknown strategy")
	}
}

func sjfKey(p *process.PCB) int64 { return p.ReqProcessorTime }
func srtKey(p *process.PCB) int64 { return p.RemainingTime() }

// NoDeadlineKey sorts as greatest among every real deadline/slack
// value a test will plausibly construct, satisfying "NONE sorts as
// greatest" without overflowing on subtraction.
const NoDeadlineKey = int64(1)<<62 - 1

// DeadlineKey is the RT_EDF heap key: smaller deadline pops first, no
// deadline sorts as greatest.
func DeadlineKey(p *process.PCB) int64 {
	if !p.HasDeadline() {
		return NoDeadlineKey
	}
	return p.Deadline
}

// SlackKey is the RT_LST heap key, using deadline-remaining and
// dropping the "now" term from the slack formula: slack_a - slack_b is
// independent of now (both sides shift by the same amount), so this
// now-free key preserves heap order at every comparison instant.
func SlackKey(p *process.PCB) int64 {
	if !p.HasDeadline() {
		return NoDeadlineKey
	}
	return p.Deadline - p.RemainingTime()
}
