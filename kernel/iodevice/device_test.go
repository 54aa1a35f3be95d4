package iodevice

import "testing"

func TestHandleWhileBusyFails(t *testing.T) {
	d := New(0)
	if err := d.Handle(Request{PID: 1, Duration: 3}); err != nil {
		t.Fatalf("idle device refused a request: %v", err)
	}
	err := d.Handle(Request{PID: 2, Duration: 1})
	if err == nil {
		t.Fatal("busy device accepted a second request")
	}
	if _, ok := err.(*ErrBusy); !ok {
		t.Fatalf("expected *ErrBusy, got %T", err)
	}
}

// TestCompletionTiming: a duration-d request occupies the device for
// d+1 ticks — progress must strictly exceed duration.
func TestCompletionTiming(t *testing.T) {
	d := New(0)
	if err := d.Handle(Request{PID: 7, Duration: 3}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	for i := 0; i < 3; i++ {
		if pid, done := d.Tick(); done {
			t.Fatalf("tick %d: completed early (pid %d)", i+1, pid)
		}
	}
	pid, done := d.Tick()
	if !done || pid != 7 {
		t.Fatalf("tick 4: done=%v pid=%d, want completion for pid 7", done, pid)
	}
}

func TestIdleAfterCompletionIsZeroed(t *testing.T) {
	d := New(0)
	if err := d.Handle(Request{PID: 7, Duration: 0}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, done := d.Tick(); !done {
		t.Fatal("duration-0 request should complete on its first tick")
	}
	if !d.Idle() || d.PID() != 0 || d.Duration() != 0 || d.Progress() != 0 {
		t.Fatalf("device not fully idle after completion: pid=%d dur=%d prog=%d", d.PID(), d.Duration(), d.Progress())
	}
}

func TestTickingIdleDeviceDoesNothing(t *testing.T) {
	d := New(0)
	if pid, done := d.Tick(); done || pid != 0 {
		t.Fatalf("idle tick returned pid=%d done=%v", pid, done)
	}
}
