// Package script lets a workload be authored as a small Lua program
// instead of Go calls, using github.com/yuin/gopher-lua.
//
// A script calls exactly three globals, each a thin wrapper over the
// matching *kernel.Kernel method: program(name, asmSource) assembles
// asmSource with kernel/asm and registers it, spawn(name[, deadline])
// admits a process, and dispatch(name, period, deadlineOffset, delay)
// appends a real-time job. The package defines no scheduling policy
// of its own and never calls Tick — driving the simulator once a
// script has finished registering its workload is the host's job.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/feauxkernel/kernel"
	"github.com/intuitionamiga/feauxkernel/kernel/asm"
	"github.com/intuitionamiga/feauxkernel/kernel/process"
)

// Run loads and executes the Lua program at path, registering every
// program/spawn/dispatch call it makes against k. It returns once the
// script body has finished running.
func Run(k *kernel.Kernel, path string) error {
	L := lua.NewState()
	defer L.Close()

	bind(L, k)

	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunString is Run, reading the script body from source rather than a
// file — used by tests and by embedders that already have the script
// text in memory.
func RunString(k *kernel.Kernel, source string) error {
	L := lua.NewState()
	defer L.Close()

	bind(L, k)

	if err := L.DoString(source); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

func bind(L *lua.LState, k *kernel.Kernel) {
	L.SetGlobal("program", L.NewFunction(programFn(k)))
	L.SetGlobal("spawn", L.NewFunction(spawnFn(k)))
	L.SetGlobal("dispatch", L.NewFunction(dispatchFn(k)))
}

func programFn(k *kernel.Kernel) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		src := L.CheckString(2)

		instrs, err := asm.Assemble(src)
		if err != nil {
			L.RaiseError("program %q: %v", name, err)
			return 0
		}
		k.LoadProgram(name, instrs)
		return 0
	}
}

func spawnFn(k *kernel.Kernel) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		deadline := process.NoDeadline
		if L.GetTop() >= 2 {
			deadline = L.CheckInt64(2)
		}

		pid, err := k.Spawn(name, deadline)
		if err != nil {
			L.RaiseError("spawn %q: %v", name, err)
			return 0
		}
		L.Push(lua.LNumber(pid))
		return 1
	}
}

func dispatchFn(k *kernel.Kernel) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		period := L.CheckInt64(2)
		deadlineOffset := L.CheckInt64(3)
		delay := L.CheckInt64(4)

		k.Dispatch(name, period, deadlineOffset, delay)
		return 0
	}
}
