package kernel

import (
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
	"github.com/intuitionamiga/feauxkernel/kernel/snapshot"
)

// Snapshot returns a read-only projection of the kernel's current
// state. It never mutates live structures — ready-structure iteration
// goes through each container's non-destructive Snapshot method — so
// calling it twice with no intervening Tick yields equal results.
func (k *Kernel) Snapshot() snapshot.State {
	k.mu.RLock()
	defer k.mu.RUnlock()

	cores := make([]snapshot.Core, len(k.cores))
	for i, c := range k.cores {
		cores[i] = snapshot.Core{
			Available:      c.Free(),
			Registers:      c.RegState(),
			StepAction:     k.stepAction[i],
			PendingSyscall: c.PendingSyscall(),
			RunningPID:     runningPID(k.running[i]),
		}
	}

	devices := make([]snapshot.Device, len(k.devices))
	for i, d := range k.devices {
		devices[i] = snapshot.Device{PID: d.PID(), Duration: d.Duration(), Progress: d.Progress()}
	}

	processes := make([]process.PCB, len(k.processes))
	for i, p := range k.processes {
		processes[i] = *p
	}

	interrupts := make([]snapshot.Interrupt, len(k.interrupts))
	for i, in := range k.interrupts {
		interrupts[i] = snapshot.Interrupt{Kind: in.Kind, PID: in.PID}
	}

	reentry := make([]process.PCB, len(k.reentry))
	for i, p := range k.reentry {
		reentry[i] = *p
	}

	return snapshot.State{
		Time:       k.time,
		Paused:     k.paused,
		Strategy:   k.strategy,
		Cores:      cores,
		Devices:    devices,
		Processes:  processes,
		Interrupts: interrupts,
		Ready:      k.readySnapshot(),
		Reentry:    reentry,
	}
}

func runningPID(p *process.PCB) process.PID {
	if p == nil {
		return 0
	}
	return p.PID
}

func (k *Kernel) readySnapshot() [][]process.PCB {
	if k.strategy != ready.MLF {
		items := k.pools.Queue.Snapshot()
		out := make([]process.PCB, len(items))
		for i, p := range items {
			out[i] = *p
		}
		return [][]process.PCB{out}
	}

	levels := make([][]process.PCB, ready.NumLevels)
	for lvl := 0; lvl < ready.NumLevels; lvl++ {
		items := k.pools.Levels.Level(lvl)
		out := make([]process.PCB, len(items))
		for i, p := range items {
			out[i] = *p
		}
		levels[lvl] = out
	}
	return levels
}
