package process

import "github.com/intuitionamiga/feauxkernel/kernel/isa"

// Program is an immutable, named instruction sequence. Programs
// outlive any single OS configuration — reconfiguring the scheduling
// strategy tears down every PCB but never the program catalog.
type Program struct {
	Name         string
	Instructions []isa.Instruction
}

// Registry is a name-keyed program catalog.
type Registry struct {
	programs map[string]*Program
}

// NewRegistry returns an empty program catalog.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[string]*Program)}
}

// Load registers a program under name, copying instrs into storage the
// registry owns and overwriting any prior binding for name.
func (r *Registry) Load(name string, instrs []isa.Instruction) {
	cp := make([]isa.Instruction, len(instrs))
	copy(cp, instrs)
	r.programs[name] = &Program{Name: name, Instructions: cp}
}

// Lookup returns the program registered under name, or nil if name is
// unregistered.
func (r *Registry) Lookup(name string) *Program {
	return r.programs[name]
}
