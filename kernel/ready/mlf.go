package ready

import "github.com/intuitionamiga/feauxkernel/kernel/process"

// NumLevels is the number of MLF priority levels (0 = highest).
const NumLevels = 6

// Levels is the six per-level FIFO queues backing the MLF strategy.
// It is not a Structure — Push routes by the PCB's current Level, and
// Pop/Peek need an explicit level — but PushAt/LowestNonEmpty give the
// tick loop and scheduler everything Structure's callers need.
type Levels struct {
	levels [NumLevels]*FIFOQueue
}

// NewLevels returns six empty level queues.
func NewLevels() *Levels {
	l := &Levels{}
	for i := range l.levels {
		l.levels[i] = NewFIFO()
	}
	return l
}

// PushAt enqueues p onto its own Level.
func (l *Levels) PushAt(p *process.PCB) {
	l.levels[p.Level].Push(p)
}

// LowestNonEmpty returns the lowest-numbered non-empty level, or -1 if
// every level is empty.
func (l *Levels) LowestNonEmpty() int {
	for i, q := range l.levels {
		if q.Len() > 0 {
			return i
		}
	}
	return -1
}

// PopLowest pops the front of the lowest-numbered non-empty level, or
// nil if every level is empty.
func (l *Levels) PopLowest() *process.PCB {
	i := l.LowestNonEmpty()
	if i < 0 {
		return nil
	}
	return l.levels[i].Pop()
}

// NonEmptyBelow reports whether any level strictly above (numerically
// below, i.e. higher priority than) level is non-empty.
func (l *Levels) NonEmptyBelow(level int) bool {
	for i := 0; i < level && i < NumLevels; i++ {
		if l.levels[i].Len() > 0 {
			return true
		}
	}
	return false
}

// Len returns the total number of PCBs across every level.
func (l *Levels) Len() int {
	n := 0
	for _, q := range l.levels {
		n += q.Len()
	}
	return n
}

// Level returns the queue for a specific level, for snapshotting.
func (l *Levels) Level(i int) []*process.PCB {
	return l.levels[i].Snapshot()
}
