// Package kernel is the deterministic, tick-driven control loop of the
// simulated operating system: it owns the cores, the I/O devices, the
// process table, the active ready structure(s), the pending-request
// and interrupt queues, and the reentry list, and advances all of them
// together, in a fixed order, once per Tick call.
package kernel

import (
	"sync"
	"time"

	"github.com/intuitionamiga/feauxkernel/kernel/cpu"
	"github.com/intuitionamiga/feauxkernel/kernel/iodevice"
	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/memarena"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
	"github.com/intuitionamiga/feauxkernel/kernel/schedule"
	"github.com/intuitionamiga/feauxkernel/kernel/snapshot"
)

// interruptRecord is a queued interrupt. IO_COMPLETION is the only
// variant today; Kind is a string tag rather than a closed Go type so
// the queue stays open to future interrupt kinds without a breaking
// change to Kernel's internals.
type interruptRecord struct {
	Kind string
	PID  process.PID
}

const ioCompletion = "IO_COMPLETION"

// Kernel is the simulator's single owned instance of all kernel state.
// The host holds exactly one Kernel; there is no package-level
// singleton.
type Kernel struct {
	mu sync.RWMutex

	clockDelay time.Duration
	paused     bool
	strategy   ready.Strategy

	cores   []*cpu.CPU
	devices []*iodevice.Device

	programs *process.Registry
	arena    *memarena.Arena

	processes  []*process.PCB
	nextPID    process.PID
	programFor map[process.PID]*process.Program

	pools   *schedule.Pools
	running []*process.PCB // per-core running PCB, nil if idle

	pendingRequests []iodevice.Request
	interrupts      []interruptRecord
	reentry         []*process.PCB

	stepAction []snapshot.StepAction

	rtJobs []process.RTJob

	time int64
}

// New constructs a Kernel with numCores cores, numIODevices devices,
// running strategy s. The program catalog starts empty; load programs
// with LoadProgram before Spawn/Dispatch.
func New(numCores, numIODevices int, s ready.Strategy) *Kernel {
	k := &Kernel{
		programs: process.NewRegistry(),
	}
	k.reinitOS(s)
	k.reinitMachine(numCores, numIODevices)
	return k
}

// reinitOS tears down every PCB and ready structure and re-initializes
// under strategy s, preserving the program catalog — this is the body
// of SetSchedulingStrategy and of New.
func (k *Kernel) reinitOS(s ready.Strategy) {
	k.strategy = s
	k.arena = memarena.New()
	k.processes = nil
	k.nextPID = 0
	k.programFor = make(map[process.PID]*process.Program)
	k.pools = schedule.NewPools(s)
	k.pendingRequests = nil
	k.interrupts = nil
	k.reentry = nil
	k.rtJobs = nil
	k.time = 0
	k.paused = false
	numCores := len(k.cores)
	k.running = make([]*process.PCB, numCores)
	k.stepAction = make([]snapshot.StepAction, numCores)
}

// reinitMachine recreates the cores and devices with new counts,
// sharing the current arena across every core.
func (k *Kernel) reinitMachine(numCores, numIODevices int) {
	k.cores = make([]*cpu.CPU, numCores)
	for i := range k.cores {
		k.cores[i] = cpu.New(i, k.arena)
	}
	k.devices = make([]*iodevice.Device, numIODevices)
	for i := range k.devices {
		k.devices[i] = iodevice.New(i)
	}
	k.running = make([]*process.PCB, numCores)
	k.stepAction = make([]snapshot.StepAction, numCores)
}

// LoadProgram registers a program under name, overwriting any prior
// binding. Instructions are copied into storage the kernel owns.
func (k *Kernel) LoadProgram(name string, instrs []isa.Instruction) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.programs.Load(name, instrs)
}

// Spawn admits a fresh process running program name. deadline is
// process.NoDeadline for a best-effort process, or an offset from now
// for a real-time one. It returns 0 (no PID is ever assigned 0) and
// ErrUnknownProgram if name is unregistered.
func (k *Kernel) Spawn(name string, deadlineOffset int64) (process.PID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.spawnLocked(name, deadlineOffset)
}

func (k *Kernel) spawnLocked(name string, deadlineOffset int64) (process.PID, error) {
	prog := k.programs.Lookup(name)
	if prog == nil {
		return 0, ErrUnknownProgram
	}

	k.nextPID++
	pid := k.nextPID

	deadline := process.NoDeadline
	if deadlineOffset != process.NoDeadline {
		deadline = k.time + deadlineOffset
	}

	rip := uint64(0)
	if len(prog.Instructions) > 0 {
		rip = 1
	}

	pcb := &process.PCB{
		PID:              pid,
		Program:          name,
		ArrivalTime:      k.time,
		DoneTime:         0,
		Deadline:         deadline,
		ReqProcessorTime: int64(len(prog.Instructions)) - 1,
		State:            process.Ready,
	}
	pcb.RegState.RIP = rip

	k.processes = append(k.processes, pcb)
	k.programFor[pid] = prog
	k.pools.Push(pcb)

	return pid, nil
}

// Dispatch appends a real-time periodic job. It does not itself spawn
// a process; the tick loop activates it on each period boundary.
func (k *Kernel) Dispatch(programName string, period, deadlineOffset, delay int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rtJobs = append(k.rtJobs, process.RTJob{
		Program:        programName,
		Period:         period,
		DeadlineOffset: deadlineOffset,
		Delay:          delay,
	})
}

// Pause and Unpause toggle whether Tick performs work.
func (k *Kernel) Pause() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.paused = true
}

func (k *Kernel) Unpause() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.paused = false
}

// SetClockDelay sets the host's intended inter-tick pacing. The kernel
// itself does not sleep — pacing between ticks is the host's job — it
// only remembers the value for the host to consult.
func (k *Kernel) SetClockDelay(d time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.clockDelay = d
}

// ClockDelay returns the current pacing value.
func (k *Kernel) ClockDelay() time.Duration {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.clockDelay
}

// SetNumCores rebuilds the machine with n cores. Every PCB is lost,
// same as SetSchedulingStrategy, because the OS is re-initialized
// alongside the machine.
func (k *Kernel) SetNumCores(n int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	numDevices := len(k.devices)
	k.reinitOS(k.strategy)
	k.reinitMachine(n, numDevices)
}

// SetNumIODevices rebuilds the machine with m I/O devices.
func (k *Kernel) SetNumIODevices(m int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	numCores := len(k.cores)
	k.reinitOS(k.strategy)
	k.reinitMachine(numCores, m)
}

// SetSchedulingStrategy tears down the OS and re-initializes under s,
// preserving the program catalog; every PCB is lost.
func (k *Kernel) SetSchedulingStrategy(s ready.Strategy) {
	k.mu.Lock()
	defer k.mu.Unlock()
	numCores, numDevices := len(k.cores), len(k.devices)
	k.reinitOS(s)
	k.reinitMachine(numCores, numDevices)
}

func (k *Kernel) findByPID(pid process.PID) *process.PCB {
	for _, p := range k.processes {
		if p.PID == pid {
			return p
		}
	}
	return nil
}

func (k *Kernel) firstIdleDevice() *iodevice.Device {
	for _, d := range k.devices {
		if d.Idle() {
			return d
		}
	}
	return nil
}

func (k *Kernel) anyDeviceIdle() bool {
	return k.firstIdleDevice() != nil
}

func (k *Kernel) anyCoreIdle() bool {
	for _, c := range k.cores {
		if c.Free() {
			return true
		}
	}
	return false
}
