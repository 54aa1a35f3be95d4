package kernel

import (
	"github.com/intuitionamiga/feauxkernel/kernel/cpu"
	"github.com/intuitionamiga/feauxkernel/kernel/iodevice"
	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/memarena"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
	"github.com/intuitionamiga/feauxkernel/kernel/schedule"
	"github.com/intuitionamiga/feauxkernel/kernel/snapshot"
)

// Tick advances the simulation by one step: RT-job activation, one
// instruction per core, one progress step per device, a decision and
// action per core, then the reentry drain — in that fixed order. It
// does nothing while paused.
func (k *Kernel) Tick() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.paused {
		return
	}

	k.time++

	for _, job := range k.rtJobs {
		if job.Due(k.time) {
			k.spawnLocked(job.Program, job.DeadlineOffset)
		}
	}

	for _, c := range k.cores {
		c.Tick()
	}

	for _, d := range k.devices {
		if pid, done := d.Tick(); done {
			k.interrupts = append(k.interrupts, interruptRecord{Kind: ioCompletion, PID: pid})
		}
	}

	for i := range k.cores {
		k.stepCore(i)
	}

	for _, pcb := range k.reentry {
		k.pools.Push(pcb)
	}
	k.reentry = nil
}

// stepCore performs the decide-then-execute step for one core.
func (k *Kernel) stepCore(core int) {
	c := k.cores[core]
	p := k.running[core]

	if c.Free() {
		k.stepIdleCore(core, c)
		return
	}

	switch c.PendingSyscall() {
	case cpu.SysNone:
		// fall through to strategy-specific continue/preempt logic
	default:
		k.stepAction[core] = snapshot.HandleSyscall
		k.handleSyscall(core, c, p)
		return
	}

	if k.preemptForStrategy(core, c, p) {
		return
	}

	k.stepAction[core] = snapshot.ContinueRun
	k.postExecute(core, c, p)
}

func (k *Kernel) stepIdleCore(core int, c *cpu.CPU) {
	switch {
	case len(k.pendingRequests) > 0 && k.anyDeviceIdle():
		k.stepAction[core] = snapshot.ServiceRequest
		k.serviceRequest(core)
	case len(k.interrupts) > 0:
		k.stepAction[core] = snapshot.HandleInterrupt
		k.handleInterrupt(core)
	case k.pools.Len() > 0:
		k.stepAction[core] = snapshot.BeginRun
		k.beginRun(core, c, true, nil)
	default:
		k.stepAction[core] = snapshot.NOOP
	}
}

// preemptForStrategy implements the MLF and RT_EDF/RT_LST mid-decide
// preemption rules of the tick loop's decision tree. It returns true
// if it fully handled this core's step (stepAction already set).
func (k *Kernel) preemptForStrategy(core int, c *cpu.CPU, p *process.PCB) bool {
	switch k.strategy {
	case ready.MLF:
		if !k.anyCoreIdle() && k.pools.Levels.NonEmptyBelow(p.Level) {
			k.stepAction[core] = snapshot.BeginRun
			k.beginRun(core, c, false, p)
			return true
		}
	case ready.RTEDF, ready.RTLST:
		head := k.pools.Queue.Peek()
		if head == nil {
			return false
		}
		var preempt bool
		if k.strategy == ready.RTEDF {
			preempt = ready.DeadlineKey(head) < ready.DeadlineKey(p)
		} else {
			preempt = ready.SlackKey(head) < ready.SlackKey(p)
		}
		if preempt {
			k.stepAction[core] = snapshot.ContinueRun
			k.preemptRealtime(core, c, p)
			return true
		}
	}
	return false
}

// beginRun loads a newly scheduled PCB onto an available-or-freshly-
// freed core. On a core that was idle it immediately executes the
// PCB's first instruction in the same tick: the tick that decides
// BEGIN_RUN is also the PCB's first tick of progress, matching the
// rest of the tick loop where a running PCB's instruction for tick N
// is always accounted in tick N's decide step. On the MLF preemption
// path the core already executed the preempted PCB's instruction this
// tick, so the chosen PCB is only loaded and starts on the next tick.
// coreFree tells schedule.Pick whether to preempt running (non-nil
// only for the MLF preemption path).
func (k *Kernel) beginRun(core int, c *cpu.CPU, coreFree bool, running *process.PCB) {
	chosen := schedule.Pick(k.pools, coreFree, running,
		func() isa.Registers { return c.RegState() },
		func() { c.Zero() })
	if chosen == nil {
		internalErr(core, "BEGIN_RUN with no ready process")
	}

	chosen.State = process.Processing
	k.running[core] = chosen
	c.Load(chosen.RegState, k.instructionsFor(core, chosen))

	// An idle core's c.Tick() was a no-op (RIP==0) during this tick's
	// global CPU-tick phase, so the fast-dispatch executes the newly
	// loaded PCB's first instruction explicitly here, in the same tick
	// BEGIN_RUN was decided.
	if coreFree {
		c.Tick()
		k.postExecute(core, c, chosen)
	}
}

func (k *Kernel) instructionsFor(core int, p *process.PCB) []isa.Instruction {
	prog, ok := k.programFor[p.PID]
	if !ok {
		internalErr(core, "no program bound to pid %d", p.PID)
	}
	return prog.Instructions
}

// postExecute applies the bookkeeping for an instruction that has
// already been executed on c this tick — either by the global
// CPU-tick phase (the CONTINUE_RUN case) or by beginRun's explicit
// fast-dispatch tick (the BEGIN_RUN case). It never calls c.Tick()
// itself: doing so here would execute a second instruction for the
// same core on the same tick.
func (k *Kernel) postExecute(core int, c *cpu.CPU, p *process.PCB) {
	if sys := c.PendingSyscall(); sys != cpu.SysNone {
		k.handleSyscall(core, c, p)
		return
	}

	p.ProcessorTime++

	if k.strategy != ready.MLF {
		return
	}

	p.ProcessorTimeOnLevel++
	threshold := int64(2) << uint(p.Level)
	if p.Level < ready.NumLevels-1 && p.ProcessorTimeOnLevel > threshold {
		p.Level++
		p.ProcessorTimeOnLevel = 0
		p.State = process.Ready
		p.RegState = c.RegState()
		k.reentry = append(k.reentry, p)
		k.running[core] = nil
		c.Zero()
	}
}

// preemptRealtime implements the RT_EDF/RT_LST inline preemption: the
// running PCB is requeued without re-executing this tick (it already
// ran this tick's instruction during the global CPU-tick phase); the
// newly scheduled PCB is loaded but does not also run this tick — it
// starts on the next tick, unlike a BEGIN_RUN on an idle core, which
// executes the first instruction in the same tick.
func (k *Kernel) preemptRealtime(core int, c *cpu.CPU, p *process.PCB) {
	p.State = process.Ready
	p.ProcessorTime++
	p.RegState = c.RegState()
	k.pools.Queue.Push(p)

	next := k.pools.Queue.Pop()
	if next == nil {
		internalErr(core, "realtime preemption with no replacement process")
	}
	next.State = process.Processing
	k.running[core] = next
	c.Load(next.RegState, k.instructionsFor(core, next))
}

func (k *Kernel) handleInterrupt(core int) {
	in := k.interrupts[0]
	k.interrupts = k.interrupts[1:]

	switch in.Kind {
	case ioCompletion:
		p := k.findByPID(in.PID)
		if p == nil {
			internalErr(core, "IO_COMPLETION for unknown pid %d", in.PID)
		}
		p.State = process.Ready
		k.reentry = append(k.reentry, p)
	default:
		internalErr(core, "unrecognized interrupt kind %q", in.Kind)
	}
}

func (k *Kernel) serviceRequest(core int) {
	dev := k.firstIdleDevice()
	if dev == nil {
		internalErr(core, "SERVICE_REQUEST with no idle device")
	}
	req := k.pendingRequests[0]
	k.pendingRequests = k.pendingRequests[1:]
	_ = dev.Handle(req)
}

func (k *Kernel) handleSyscall(core int, c *cpu.CPU, p *process.PCB) {
	switch c.PendingSyscall() {
	case cpu.SysIO:
		k.handleSysIO(core, c, p)
	case cpu.SysExit:
		k.handleSysExit(core, c, p)
	case cpu.SysAlloc:
		k.handleSysAlloc(c, p)
	case cpu.SysFree:
		k.handleSysFree(c, p)
	}
}

func (k *Kernel) handleSysIO(core int, c *cpu.CPU, p *process.PCB) {
	p.State = process.Blocked
	p.RegState = c.RegState()
	dur := int64(p.RegState.Get(isa.RDI))
	req := iodevice.Request{PID: p.PID, Duration: dur}

	idle := k.firstIdleDevice()
	switch {
	case idle == nil:
		k.pendingRequests = append(k.pendingRequests, req)
	case len(k.pendingRequests) == 0:
		_ = idle.Handle(req)
	default:
		k.pendingRequests = append(k.pendingRequests, req)
		front := k.pendingRequests[0]
		k.pendingRequests = k.pendingRequests[1:]
		_ = idle.Handle(front)
	}

	p.ProcessorTime++
	k.running[core] = nil
	c.Zero()
	c.ClearSyscall()
}

func (k *Kernel) handleSysExit(core int, c *cpu.CPU, p *process.PCB) {
	if !p.HasDeadline() || k.time <= p.Deadline {
		p.State = process.Done
	} else {
		p.State = process.Dead
	}
	p.DoneTime = k.time
	p.RegState = c.RegState()

	k.running[core] = nil
	c.Zero()
	c.ClearSyscall()
}

func (k *Kernel) handleSysAlloc(c *cpu.CPU, p *process.PCB) {
	regs := c.RegState()
	size := regs.Get(isa.RDI)
	target := isa.Reg(regs.Get(isa.RSI))

	h := k.arena.Alloc(size)
	c.SetReg(target, uint64(h))
	c.SetReg(isa.RAX, size)
	c.ClearSyscall()

	p.ProcessorTime++
}

func (k *Kernel) handleSysFree(c *cpu.CPU, p *process.PCB) {
	regs := c.RegState()
	ptrReg := isa.Reg(regs.Get(isa.RDI))
	h := memarena.Handle(regs.Get(ptrReg))

	k.arena.Free(h)
	c.SetReg(isa.RAX, 0)
	c.ClearSyscall()

	p.ProcessorTime++
}
