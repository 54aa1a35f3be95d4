package kernel

import (
	"testing"

	"github.com/intuitionamiga/feauxkernel/kernel/isa"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
	"github.com/intuitionamiga/feauxkernel/kernel/snapshot"
)

// assertInvariants checks the quantified invariants against a
// snapshot, reusable from any test that drives the kernel through a
// sequence of ticks.
func assertInvariants(t *testing.T, snap snapshot.State) {
	t.Helper()

	for _, p := range snap.Processes {
		if p.State != process.Done && p.State != process.Dead {
			if p.ProcessorTime < 0 || p.ProcessorTime > p.ReqProcessorTime {
				t.Fatalf("pid %d: processorTime %d out of [0,%d]", p.PID, p.ProcessorTime, p.ReqProcessorTime)
			}
		}
	}

	seen := make(map[process.PID]string)
	mark := func(pid process.PID, where string) {
		if prior, ok := seen[pid]; ok {
			t.Fatalf("pid %d appears in both %s and %s", pid, prior, where)
		}
		seen[pid] = where
	}

	for _, level := range snap.Ready {
		for _, p := range level {
			mark(p.PID, "ready")
		}
	}
	for _, p := range snap.Reentry {
		mark(p.PID, "reentry")
	}
	for _, c := range snap.Cores {
		if c.RunningPID != 0 {
			mark(c.RunningPID, "running")
		}
	}

	for i, c := range snap.Cores {
		if c.Available != (c.Registers.RIP == 0) {
			t.Fatalf("core %d: available=%v but RIP=%d", i, c.Available, c.Registers.RIP)
		}
	}

	for i, d := range snap.Devices {
		if d.PID == 0 && (d.Duration != 0 || d.Progress != 0) {
			t.Fatalf("idle device %d has nonzero duration/progress: %+v", i, d)
		}
	}
}

func TestInvariantsHoldAcrossFIFORun(t *testing.T) {
	k := New(2, 1, ready.FIFO)
	k.LoadProgram("W", work(5))
	for i := 0; i < 4; i++ {
		if _, err := k.Spawn("W", process.NoDeadline); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}

	for i := 0; i < 40; i++ {
		k.Tick()
		assertInvariants(t, k.Snapshot())
	}
}

func TestInvariantsHoldAcrossMLFRun(t *testing.T) {
	k := New(1, 1, ready.MLF)
	k.LoadProgram("W", work(30))
	for i := 0; i < 3; i++ {
		if _, err := k.Spawn("W", process.NoDeadline); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}

	for i := 0; i < 150; i++ {
		k.Tick()
		assertInvariants(t, k.Snapshot())
	}
}

func TestSpawnUnknownProgram(t *testing.T) {
	k := New(1, 1, ready.FIFO)
	if _, err := k.Spawn("missing", process.NoDeadline); err != ErrUnknownProgram {
		t.Fatalf("expected ErrUnknownProgram, got %v", err)
	}
}

func TestAllocFreeRoundTrip(t *testing.T) {
	k := New(1, 1, ready.FIFO)
	k.LoadProgram("mem", []isa.Instruction{
		{Op: isa.ALLOC},
		{Op: isa.FREE},
		{Op: isa.EXIT},
	})
	pid, _ := k.Spawn("mem", process.NoDeadline)

	runTicks(k, 4)
	p := findPCB(t, k, pid)
	if p.State != process.Done {
		t.Fatalf("expected mem process DONE, got %v", p.State)
	}
}
