// Command feauxsd is a thin host driver around kernel.Kernel: it
// builds a machine from flags, loads a workload (a Lua script via
// kernel/script), then calls Tick on the cadence set by -delay,
// printing a one-line snapshot summary each tick. It is host
// integration glue — every decision it makes is a flag, never a
// kernel policy.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/intuitionamiga/feauxkernel/kernel"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
	"github.com/intuitionamiga/feauxkernel/kernel/ready"
	"github.com/intuitionamiga/feauxkernel/kernel/script"
	"github.com/intuitionamiga/feauxkernel/kernel/snapshot"
)

func boilerPlate() {
	fmt.Println("feauxsd - a deterministic multi-core OS scheduling simulator")
	fmt.Println("https://github.com/intuitionamiga/feauxkernel")
}

var strategies = map[string]ready.Strategy{
	"fifo":    ready.FIFO,
	"sjf":     ready.SJF,
	"srt":     ready.SRT,
	"mlf":     ready.MLF,
	"rtfifo":  ready.RTFIFO,
	"rt_fifo": ready.RTFIFO,
	"rtedf":   ready.RTEDF,
	"rt_edf":  ready.RTEDF,
	"rtlst":   ready.RTLST,
	"rt_lst":  ready.RTLST,
}

func main() {
	cores := flag.Int("cores", 1, "number of simulated cores")
	devices := flag.Int("devices", 1, "number of simulated I/O devices")
	strategyName := flag.String("strategy", "fifo", "scheduling strategy: fifo, sjf, srt, mlf, rtfifo, rtedf, rtlst")
	workload := flag.String("script", "", "Lua workload script to load before driving ticks")
	ticks := flag.Int("ticks", 0, "number of ticks to run (0 = run until every process is DONE/DEAD)")
	delay := flag.Duration("delay", 0, "pacing delay between ticks (e.g. 10ms); 0 runs as fast as possible")
	quiet := flag.Bool("quiet", false, "suppress the per-tick snapshot summary")
	step := flag.Bool("step", false, "single-step: wait for a keypress on the raw terminal before each tick ('q' quits)")
	flag.Parse()

	strategy, ok := strategies[*strategyName]
	if !ok {
		fmt.Fprintf(os.Stderr, "feauxsd: unknown strategy %q\n", *strategyName)
		os.Exit(1)
	}

	if !*quiet {
		boilerPlate()
	}

	k := kernel.New(*cores, *devices, strategy)
	k.SetClockDelay(*delay)

	if *workload != "" {
		if err := script.Run(k, *workload); err != nil {
			fmt.Fprintf(os.Stderr, "feauxsd: %v\n", err)
			os.Exit(1)
		}
	}

	run(k, *ticks, *delay, *quiet, *step)
}

// stepper reads one byte at a time from a raw-mode stdin, used by
// -step to single-step the tick loop on a keypress instead of a timed
// delay. It reads synchronously since the driver has nothing else to
// do while waiting.
type stepper struct {
	fd    int
	saved *term.State
}

func newStepper() (*stepper, error) {
	fd := int(os.Stdin.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &stepper{fd: fd, saved: saved}, nil
}

func (s *stepper) close() {
	_ = term.Restore(s.fd, s.saved)
}

// wait blocks for one keypress, reporting whether the loop should
// continue ('q' or Ctrl-C stop it).
func (s *stepper) wait() (cont bool) {
	buf := make([]byte, 1)
	n, err := os.Stdin.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	return buf[0] != 'q' && buf[0] != 0x03
}

// run drives the tick loop, recovering from the kernel's own
// *kernel.InternalError panics and reporting them on stderr with core
// index and cause, then exiting non-zero — there is no retry path for
// an invariant violation, only deterministic replay of the same
// workload.
func run(k *kernel.Kernel, ticks int, delay time.Duration, quiet, step bool) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*kernel.InternalError); ok {
				fmt.Fprintf(os.Stderr, "feauxsd: internal error on core %d: %s\n", ie.Core, ie.Cause)
				os.Exit(1)
			}
			panic(r)
		}
	}()

	var s *stepper
	if step {
		var err error
		s, err = newStepper()
		if err != nil {
			fmt.Fprintf(os.Stderr, "feauxsd: -step requires a terminal: %v\n", err)
			os.Exit(1)
		}
		defer s.close()
	}

	for i := 0; ticks == 0 || i < ticks; i++ {
		if s != nil && !s.wait() {
			break
		}

		k.Tick()
		snap := k.Snapshot()

		if !quiet {
			printSnapshot(snap)
		}

		if ticks == 0 && allDone(snap) {
			break
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// printSnapshot writes a one-line summary of the tick just executed:
// the time, per-core step action, and per-process state.
func printSnapshot(snap snapshot.State) {
	fmt.Printf("t=%-5d ", snap.Time)
	for i, c := range snap.Cores {
		fmt.Printf("core%d=%-16s ", i, c.StepAction)
	}
	for _, p := range snap.Processes {
		fmt.Printf("pid%d:%s ", p.PID, p.State)
	}
	fmt.Println()
}

// allDone reports whether every spawned process has reached DONE or
// DEAD — the natural stopping point for a -ticks=0 (run-to-quiescence)
// invocation.
func allDone(snap snapshot.State) bool {
	if len(snap.Processes) == 0 {
		return false
	}
	for _, p := range snap.Processes {
		if p.State != process.Done && p.State != process.Dead {
			return false
		}
	}
	return true
}
