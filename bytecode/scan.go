package bytecode

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one decoded JVM instruction.
type Instruction struct {
	Offset int    // code offset of the first byte
	Op     Opcode
	Wide   bool // preceded by a wide prefix
	Size   int  // total encoded length, including prefix and padding
	Slot   int  // local slot for load/store/iinc/ret, -1 otherwise
	Arg    int  // pool index, immediate value, or absolute branch target
	Const  int  // iinc delta, invokeinterface count, or array dimensions
	Switch *SwitchInfo
}

// SwitchInfo carries the decoded jump table of a tableswitch or
// lookupswitch. Targets are absolute code offsets.
type SwitchInfo struct {
	Default int
	Low     int32   // tableswitch bounds
	High    int32
	Keys    []int32 // lookupswitch match keys; nil for tableswitch
	Targets []int
}

// EncodedLen returns the instruction's byte length. Instructions from
// Scan carry their measured size; hand-built ones fall back to the
// standard length for the opcode.
func (i Instruction) EncodedLen() int {
	if i.Size > 0 {
		return i.Size
	}
	if i.Wide {
		if i.Op == OpIinc {
			return 6
		}
		return 4
	}
	operands := GetOpcodeInfo(i.Op).Operands
	if operands < 0 {
		return 0
	}
	return 1 + operands
}

// String renders the instruction the way a listing would, without
// variable names.
func (i Instruction) String() string {
	switch {
	case i.Slot >= 0 && i.Op == OpIinc:
		return fmt.Sprintf("%d: %s %d %d", i.Offset, i.Op, i.Slot, i.Const)
	case i.Slot >= 0 && i.Op.FixedSlot() < 0:
		return fmt.Sprintf("%d: %s %d", i.Offset, i.Op, i.Slot)
	case i.Op.IsBranch():
		return fmt.Sprintf("%d: %s %d", i.Offset, i.Op, i.Arg)
	case i.Op.ConstantRef():
		return fmt.Sprintf("%d: %s #%d", i.Offset, i.Op, i.Arg)
	default:
		return fmt.Sprintf("%d: %s", i.Offset, i.Op)
	}
}

// Scan decodes a whole method body into instructions in offset order.
// It fails on truncated instructions and undefined opcodes rather than
// resynchronizing; a body that does not decode cleanly cannot be
// replayed for variable discovery.
func Scan(code []byte) ([]Instruction, error) {
	insts := make([]Instruction, 0, len(code)/2)
	for pc := 0; pc < len(code); {
		inst, err := decodeAt(code, pc)
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
		pc += inst.Size
	}
	return insts, nil
}

func decodeAt(code []byte, pc int) (Instruction, error) {
	op := Opcode(code[pc])

	switch op {
	case OpWide:
		return decodeWide(code, pc)
	case OpTableSwitch:
		return decodeTableSwitch(code, pc)
	case OpLookupSwitch:
		return decodeLookupSwitch(code, pc)
	}

	info, ok := opcodeInfoTable[op]
	if !ok {
		return Instruction{}, fmt.Errorf("bytecode: undefined opcode 0x%02X at offset %d", byte(op), pc)
	}
	if pc+1+info.Operands > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated %s at offset %d", info.Name, pc)
	}

	inst := Instruction{Offset: pc, Op: op, Size: 1 + info.Operands, Slot: -1}
	operands := code[pc+1 : pc+1+info.Operands]

	use, isLocal := localUseTable[op]
	switch {
	case isLocal && use.Slot >= 0:
		inst.Slot = int(use.Slot)
	case isLocal:
		inst.Slot = int(operands[0])
		if op == OpIinc {
			inst.Const = int(int8(operands[1]))
		}
	case op.IsBranch():
		if info.Operands == 4 {
			inst.Arg = pc + int(int32(binary.BigEndian.Uint32(operands)))
		} else {
			inst.Arg = pc + int(int16(binary.BigEndian.Uint16(operands)))
		}
	case op == OpBipush:
		inst.Arg = int(int8(operands[0]))
	case op == OpSipush:
		inst.Arg = int(int16(binary.BigEndian.Uint16(operands)))
	case op == OpLdc || op == OpNewArray:
		inst.Arg = int(operands[0])
	case op == OpInvokeInterface || op == OpMultiANewArray:
		inst.Arg = int(binary.BigEndian.Uint16(operands))
		inst.Const = int(operands[2])
	case info.Operands >= 2:
		inst.Arg = int(binary.BigEndian.Uint16(operands))
	}
	return inst, nil
}

// decodeWide handles the wide prefix: the next opcode's slot operand
// grows to two bytes, and iinc's delta grows with it.
func decodeWide(code []byte, pc int) (Instruction, error) {
	if pc+1 >= len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated wide prefix at offset %d", pc)
	}
	op := Opcode(code[pc+1])
	use, ok := localUseTable[op]
	if !ok || use.Slot >= 0 {
		return Instruction{}, fmt.Errorf("bytecode: wide prefix before %s at offset %d", op, pc)
	}

	size := 4
	if op == OpIinc {
		size = 6
	}
	if pc+size > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated wide %s at offset %d", op, pc)
	}

	inst := Instruction{
		Offset: pc,
		Op:     op,
		Wide:   true,
		Size:   size,
		Slot:   int(binary.BigEndian.Uint16(code[pc+2:])),
	}
	if op == OpIinc {
		inst.Const = int(int16(binary.BigEndian.Uint16(code[pc+4:])))
	}
	return inst, nil
}

// decodeTableSwitch reads the padded default/low/high header and the
// dense jump table that follows it.
func decodeTableSwitch(code []byte, pc int) (Instruction, error) {
	base := switchBase(pc)
	if base+12 > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated tableswitch at offset %d", pc)
	}

	def := int32(binary.BigEndian.Uint32(code[base:]))
	low := int32(binary.BigEndian.Uint32(code[base+4:]))
	high := int32(binary.BigEndian.Uint32(code[base+8:]))
	if high < low {
		return Instruction{}, fmt.Errorf("bytecode: tableswitch bounds %d..%d at offset %d", low, high, pc)
	}

	n := int(high-low) + 1
	end := base + 12 + 4*n
	if end > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated tableswitch at offset %d", pc)
	}

	sw := &SwitchInfo{
		Default: pc + int(def),
		Low:     low,
		High:    high,
		Targets: make([]int, n),
	}
	for i := 0; i < n; i++ {
		sw.Targets[i] = pc + int(int32(binary.BigEndian.Uint32(code[base+12+4*i:])))
	}
	return Instruction{Offset: pc, Op: OpTableSwitch, Size: end - pc, Slot: -1, Switch: sw}, nil
}

// decodeLookupSwitch reads the padded default/npairs header and the
// sorted match/offset pairs that follow it.
func decodeLookupSwitch(code []byte, pc int) (Instruction, error) {
	base := switchBase(pc)
	if base+8 > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated lookupswitch at offset %d", pc)
	}

	def := int32(binary.BigEndian.Uint32(code[base:]))
	npairs := int32(binary.BigEndian.Uint32(code[base+4:]))
	if npairs < 0 {
		return Instruction{}, fmt.Errorf("bytecode: lookupswitch pair count %d at offset %d", npairs, pc)
	}

	n := int(npairs)
	end := base + 8 + 8*n
	if end > len(code) {
		return Instruction{}, fmt.Errorf("bytecode: truncated lookupswitch at offset %d", pc)
	}

	sw := &SwitchInfo{
		Default: pc + int(def),
		Keys:    make([]int32, n),
		Targets: make([]int, n),
	}
	for i := 0; i < n; i++ {
		sw.Keys[i] = int32(binary.BigEndian.Uint32(code[base+8+8*i:]))
		sw.Targets[i] = pc + int(int32(binary.BigEndian.Uint32(code[base+8+8*i+4:])))
	}
	return Instruction{Offset: pc, Op: OpLookupSwitch, Size: end - pc, Slot: -1, Switch: sw}, nil
}

// switchBase returns the offset of a switch's first operand: the byte
// after the opcode, rounded up to the next 4-byte boundary.
func switchBase(pc int) int {
	base := pc + 1
	return base + (4-base%4)%4
}
