package kernel

import (
	"reflect"
	"testing"

	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
)

// TestSnapshotIsPure checks that two consecutive snapshots with no
// intervening Tick are equal in every field, across every strategy —
// the MLF and heap-backed strategies are the ones whose Snapshot
// implementation has to work hardest to avoid observable mutation.
func TestSnapshotIsPure(t *testing.T) {
	for _, strategy := range []ready.Strategy{ready.FIFO, ready.SJF, ready.SRT, ready.MLF, ready.RTFIFO, ready.RTEDF, ready.RTLST} {
		t.Run(strategy.String(), func(t *testing.T) {
			k := New(2, 2, strategy)
			k.LoadProgram("A", work(5))
			k.LoadProgram("B", work(9))
			k.Spawn("A", 50)
			k.Spawn("B", 50)
			k.Tick()
			k.Tick()

			first := k.Snapshot()
			second := k.Snapshot()
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("consecutive snapshots differ under %s:\nfirst:  %+v\nsecond: %+v", strategy, first, second)
			}
		})
	}
}

// TestSnapshotDoesNotMutateReadyHeap drives a heap-backed strategy
// (SJF) through several ticks with multiple ready processes, then
// checks that repeated snapshotting never loses or reorders the
// ready-structure contents relative to the first snapshot taken.
func TestSnapshotDoesNotMutateReadyHeap(t *testing.T) {
	k := New(1, 1, ready.SJF)
	k.LoadProgram("A", work(9))
	k.LoadProgram("B", work(2))
	k.LoadProgram("C", work(5))
	k.Spawn("A", process.NoDeadline)
	k.Spawn("B", process.NoDeadline)
	k.Spawn("C", process.NoDeadline)
	runTicks(k, 3)

	before := k.Snapshot()
	for i := 0; i < 3; i++ {
		_ = k.Snapshot()
	}
	after := k.Snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("repeated snapshotting mutated ready-heap state:\nbefore: %+v\nafter:  %+v", before, after)
	}
}
