package process

// RTJob is a periodic dispatch descriptor. The tick loop spawns one
// fresh PCB from Program whenever (now-Delay) mod Period == 0 and
// now >= Delay, with an absolute deadline of now+DeadlineOffset.
type RTJob struct {
	Program        string
	Period         int64
	DeadlineOffset int64
	Delay          int64
}

// Due reports whether this job activates at tick now.
func (j RTJob) Due(now int64) bool {
	return now >= j.Delay && (now-j.Delay)%j.Period == 0
}
