// Package iodevice implements the I/O device state machine: an idle
// device accepts a request and, once its duration has elapsed, raises
// a completion interrupt back to the kernel.
package iodevice

import (
	"fmt"

	"github.com/intuitionamiga/feauxkernel/kernel/process"
)

// ErrBusy is returned by Handle when the device is not idle.
type ErrBusy struct {
	Device int
	PID    process.PID
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("io device %d asked to handle request from process %d while busy", e.Device, e.PID)
}

// Request is an I/O request accepted by the kernel but not yet bound
// to (or just bound to) a device.
type Request struct {
	PID      process.PID
	Duration int64
}

// Device is one simulated I/O device. The zero value is an idle
// device.
type Device struct {
	id       int
	pid      process.PID
	duration int64
	progress int64
}

// New returns an idle device identified by id (used only for
// diagnostics and snapshots).
func New(id int) *Device {
	return &Device{id: id}
}

// ID returns the device's index.
func (d *Device) ID() int { return d.id }

// Idle reports whether the device is free to accept a request.
func (d *Device) Idle() bool { return d.pid == 0 }

// PID, Duration and Progress expose the device's current request for
// snapshotting; all three are zero when idle.
func (d *Device) PID() process.PID { return d.pid }
func (d *Device) Duration() int64  { return d.duration }
func (d *Device) Progress() int64  { return d.progress }

// Handle adopts req. It is an internal error (ErrBusy) to call Handle
// on a busy device.
func (d *Device) Handle(req Request) error {
	if !d.Idle() {
		return &ErrBusy{Device: d.id, PID: d.pid}
	}
	d.pid = req.PID
	d.duration = req.Duration
	d.progress = 0
	return nil
}

// Tick advances progress by one if the device is busy. It returns the
// PID of a process whose I/O has just completed, and true, once
// progress exceeds duration — the device returns to idle in the same
// call.
func (d *Device) Tick() (process.PID, bool) {
	if d.pid == 0 {
		return 0, false
	}
	d.progress++
	if d.progress > d.duration {
		pid := d.pid
		d.clear()
		return pid, true
	}
	return 0, false
}

func (d *Device) clear() {
	d.pid = 0
	d.duration = 0
	d.progress = 0
}
