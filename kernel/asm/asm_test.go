package asm

import (
	"testing"

	"github.com/intuitionamiga/feauxkernel/kernel/isa"
)

func TestAssembleBasic(t *testing.T) {
	src := `
; load, work, conditionally skip to the end
loop:
	LOAD 1, RAX
	WORK
	JL done
done:
	EXIT
`
	instrs, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(instrs))
	}
	if instrs[0].Op != isa.LOAD || instrs[0].A != 1 || instrs[0].B != int64(isa.RAX) {
		t.Fatalf("instr 0 = %+v, want LOAD 1, RAX", instrs[0])
	}
	if instrs[2].Op != isa.JL {
		t.Fatalf("instr 2 op = %v, want JL", instrs[2].Op)
	}
	// "done" label is at instruction index 3; the JL is at index 2, so
	// its operand must be the relative offset 3-2=1.
	if instrs[2].A != 1 {
		t.Fatalf("JL operand = %d, want 1 (relative to its own index)", instrs[2].A)
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := Assemble("BOGUS\n")
	if err == nil {
		t.Fatal("expected error for unknown mnemonic")
	}
}

func TestAssembleUndefinedLabel(t *testing.T) {
	_, err := Assemble("JE nowhere\n")
	if err == nil {
		t.Fatal("expected error for undefined label")
	}
}

func TestAssembleWrongOperandCount(t *testing.T) {
	_, err := Assemble("LOAD 1\n")
	if err == nil {
		t.Fatal("expected error for missing operand")
	}
}

func TestDisassembleRendersListing(t *testing.T) {
	instrs := []isa.Instruction{
		{Op: isa.LOAD, A: 42, B: int64(isa.RCX)},
		{Op: isa.ADD, A: int64(isa.RCX), B: int64(isa.RAX)},
		{Op: isa.EXIT},
	}
	out := Disassemble(instrs)
	want := "0000  LOAD 42, RCX\n0001  ADD RCX, RAX\n0002  EXIT\n"
	if out != want {
		t.Fatalf("disassembly = %q, want %q", out, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	instrs, err := Assemble("LOAD 5, RAX\nWORK\nEXIT\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	buf := Encode(instrs)
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != len(instrs) {
		t.Fatalf("decoded %d instructions, want %d", len(decoded), len(instrs))
	}
	for i := range instrs {
		if decoded[i] != instrs[i] {
			t.Fatalf("instr %d: decoded %+v, want %+v", i, decoded[i], instrs[i])
		}
	}
}

func TestDecodeBadMagic(t *testing.T) {
	buf := Encode(nil)
	buf[0] ^= 0xff
	if _, err := Decode(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}
