package script

import (
	"testing"

	"github.com/intuitionamiga/feauxkernel/kernel"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
)

func TestRunStringRegistersWorkload(t *testing.T) {
	k := kernel.New(1, 1, ready.FIFO)

	src := `
program("W", [[
WORK
WORK
EXIT
]])

pid = spawn("W")
`
	if err := RunString(k, src); err != nil {
		t.Fatalf("RunString: %v", err)
	}

	snap := k.Snapshot()
	if len(snap.Processes) != 1 {
		t.Fatalf("expected 1 spawned process, got %d", len(snap.Processes))
	}
	if snap.Processes[0].PID != 1 {
		t.Fatalf("expected pid 1, got %d", snap.Processes[0].PID)
	}
}

func TestRunStringDispatch(t *testing.T) {
	k := kernel.New(1, 1, ready.RTFIFO)

	src := `
program("Job", [[
WORK
EXIT
]])
dispatch("Job", 5, 20, 1)
`
	if err := RunString(k, src); err != nil {
		t.Fatalf("RunString: %v", err)
	}

	k.Tick() // t=1: the job's first activation (delay=1) fires here.
	snap := k.Snapshot()
	if len(snap.Processes) != 1 {
		t.Fatalf("expected the delay=1 activation to have fired by t=1, got %d processes", len(snap.Processes))
	}
}

func TestRunStringUnknownProgramRaises(t *testing.T) {
	k := kernel.New(1, 1, ready.FIFO)
	err := RunString(k, `spawn("missing")`)
	if err == nil {
		t.Fatal("expected an error from spawning an unregistered program")
	}
}
