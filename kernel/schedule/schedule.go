// Package schedule implements policy dispatch: picking the next PCB
// for a core under the active strategy, including the MLF
// preempt-on-schedule rule.
package schedule

import (
	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
)

// Pools owns the ready container(s) for one active strategy: a single
// Structure for every strategy except MLF, which instead uses its six
// level queues.
type Pools struct {
	Strategy ready.Strategy
	Queue    ready.Structure
	Levels   *ready.Levels
}

// NewPools constructs the ready container(s) for strategy s.
func NewPools(s ready.Strategy) *Pools {
	if s == ready.MLF {
		return &Pools{Strategy: s, Levels: ready.NewLevels()}
	}
	return &Pools{Strategy: s, Queue: ready.New(s)}
}

// Push inserts p into the active structure, routing to p.Level for
// MLF.
func (p *Pools) Push(pcb *process.PCB) {
	if p.Strategy == ready.MLF {
		p.Levels.PushAt(pcb)
	} else {
		p.Queue.Push(pcb)
	}
}

// Len reports the total number of ready PCBs under the active
// strategy.
func (p *Pools) Len() int {
	if p.Strategy == ready.MLF {
		return p.Levels.Len()
	}
	return p.Queue.Len()
}

// Peek returns the PCB that would be picked next without removing it;
// for MLF it is the front of the lowest non-empty level.
func (p *Pools) Peek() *process.PCB {
	if p.Strategy == ready.MLF {
		i := p.Levels.LowestNonEmpty()
		if i < 0 {
			return nil
		}
		return p.Levels.Level(i)[0]
	}
	return p.Queue.Peek()
}

// Pick selects the next PCB for core under the active strategy.
//
// coreFree reports whether the target core is currently idle (its CPU
// has RIP==0). running is the PCB currently occupying that core, or
// nil. Under MLF, if the core is not free and some PCB is chosen from
// a queue, the running PCB is preempted: it is marked READY, its
// processorTimeOnLevel is reset to zero, its registers are saved via
// saveRegs, it is requeued at its own level, and zeroCore is invoked
// so the caller's invariant "running==nil iff RIP==0" holds until
// BEGIN_RUN loads the chosen PCB.
//
// Pick returns nil only when no ready PCB exists under the active
// policy.
func Pick(pools *Pools, coreFree bool, running *process.PCB, saveRegs func() isa.Registers, zeroCore func()) *process.PCB {
	if pools.Strategy != ready.MLF {
		return pools.Queue.Pop()
	}

	chosen := pools.Levels.PopLowest()
	if chosen == nil {
		return nil
	}

	if !coreFree && running != nil {
		running.State = process.Ready
		running.ProcessorTimeOnLevel = 0
		running.RegState = saveRegs()
		pools.Levels.PushAt(running)
		zeroCore()
	}

	return chosen
}
