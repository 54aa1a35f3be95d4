package asm

import (
	"encoding/binary"
	"fmt"

	"github.com/intuitionamiga/feauxkernel/kernel/isa"
)

// magic identifies an encoded program file.
const magic uint32 = 0x4b524e4c // "LNRK" read as bytes

// Encode serializes instrs as a little-endian binary blob: a 4-byte
// magic, a uint32 instruction count, then one 17-byte record per
// instruction (1-byte opcode, two int64 operands).
func Encode(instrs []isa.Instruction) []byte {
	buf := make([]byte, 8+len(instrs)*17)
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(instrs)))

	off := 8
	for _, instr := range instrs {
		buf[off] = byte(instr.Op)
		binary.LittleEndian.PutUint64(buf[off+1:off+9], uint64(instr.A))
		binary.LittleEndian.PutUint64(buf[off+9:off+17], uint64(instr.B))
		off += 17
	}
	return buf
}

// Decode is Encode's inverse.
func Decode(buf []byte) ([]isa.Instruction, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("asm: encoded program too short (%d bytes)", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != magic {
		return nil, fmt.Errorf("asm: bad magic %#x, want %#x", got, magic)
	}
	count := binary.LittleEndian.Uint32(buf[4:8])

	want := 8 + int(count)*17
	if len(buf) != want {
		return nil, fmt.Errorf("asm: expected %d bytes for %d instructions, got %d", want, count, len(buf))
	}

	out := make([]isa.Instruction, count)
	off := 8
	for i := range out {
		out[i] = isa.Instruction{
			Op: isa.Opcode(buf[off]),
			A:  int64(binary.LittleEndian.Uint64(buf[off+1 : off+9])),
			B:  int64(binary.LittleEndian.Uint64(buf[off+9 : off+17])),
		}
		off += 17
	}
	return out, nil
}
