// Package bytecode decodes JVM method bodies and reconstructs their
// local variables.
//
// The package has two halves:
//
//   - Opcode tables and a linear scanner that turns raw code bytes into
//     decoded instructions (offsets, operands, slot accesses).
//
//   - A VariableTable that rebuilds the method's local variables from
//     debug metadata plus the slot accesses the scanner found, closing
//     scope intervals and merging fragments that clearly belong to one
//     variable.
package bytecode

import (
	"fmt"
	"sort"

	"github.com/chazu/javelin/jvm"
)

// Opcode is a JVM instruction opcode.
type Opcode byte

const (
	// ========================================================================
	// Constants (0x00-0x14)
	// ========================================================================

	OpNop        Opcode = 0x00
	OpAconstNull Opcode = 0x01
	OpIconstM1   Opcode = 0x02
	OpIconst0    Opcode = 0x03
	OpIconst1    Opcode = 0x04
	OpIconst2    Opcode = 0x05
	OpIconst3    Opcode = 0x06
	OpIconst4    Opcode = 0x07
	OpIconst5    Opcode = 0x08
	OpLconst0    Opcode = 0x09
	OpLconst1    Opcode = 0x0A
	OpFconst0    Opcode = 0x0B
	OpFconst1    Opcode = 0x0C
	OpFconst2    Opcode = 0x0D
	OpDconst0    Opcode = 0x0E
	OpDconst1    Opcode = 0x0F
	OpBipush     Opcode = 0x10 // bipush <value:i8>
	OpSipush     Opcode = 0x11 // sipush <value:i16>
	OpLdc        Opcode = 0x12 // ldc <index:u8>
	OpLdcW       Opcode = 0x13 // ldc_w <index:u16>
	OpLdc2W      Opcode = 0x14 // ldc2_w <index:u16>

	// ========================================================================
	// Loads (0x15-0x35)
	// ========================================================================

	OpIload  Opcode = 0x15 // iload <slot:u8>
	OpLload  Opcode = 0x16 // lload <slot:u8>
	OpFload  Opcode = 0x17 // fload <slot:u8>
	OpDload  Opcode = 0x18 // dload <slot:u8>
	OpAload  Opcode = 0x19 // aload <slot:u8>
	OpIload0 Opcode = 0x1A
	OpIload1 Opcode = 0x1B
	OpIload2 Opcode = 0x1C
	OpIload3 Opcode = 0x1D
	OpLload0 Opcode = 0x1E
	OpLload1 Opcode = 0x1F
	OpLload2 Opcode = 0x20
	OpLload3 Opcode = 0x21
	OpFload0 Opcode = 0x22
	OpFload1 Opcode = 0x23
	OpFload2 Opcode = 0x24
	OpFload3 Opcode = 0x25
	OpDload0 Opcode = 0x26
	OpDload1 Opcode = 0x27
	OpDload2 Opcode = 0x28
	OpDload3 Opcode = 0x29
	OpAload0 Opcode = 0x2A
	OpAload1 Opcode = 0x2B
	OpAload2 Opcode = 0x2C
	OpAload3 Opcode = 0x2D
	OpIaload Opcode = 0x2E
	OpLaload Opcode = 0x2F
	OpFaload Opcode = 0x30
	OpDaload Opcode = 0x31
	OpAaload Opcode = 0x32
	OpBaload Opcode = 0x33
	OpCaload Opcode = 0x34
	OpSaload Opcode = 0x35

	// ========================================================================
	// Stores (0x36-0x56)
	// ========================================================================

	OpIstore  Opcode = 0x36 // istore <slot:u8>
	OpLstore  Opcode = 0x37 // lstore <slot:u8>
	OpFstore  Opcode = 0x38 // fstore <slot:u8>
	OpDstore  Opcode = 0x39 // dstore <slot:u8>
	OpAstore  Opcode = 0x3A // astore <slot:u8>
	OpIstore0 Opcode = 0x3B
	OpIstore1 Opcode = 0x3C
	OpIstore2 Opcode = 0x3D
	OpIstore3 Opcode = 0x3E
	OpLstore0 Opcode = 0x3F
	OpLstore1 Opcode = 0x40
	OpLstore2 Opcode = 0x41
	OpLstore3 Opcode = 0x42
	OpFstore0 Opcode = 0x43
	OpFstore1 Opcode = 0x44
	OpFstore2 Opcode = 0x45
	OpFstore3 Opcode = 0x46
	OpDstore0 Opcode = 0x47
	OpDstore1 Opcode = 0x48
	OpDstore2 Opcode = 0x49
	OpDstore3 Opcode = 0x4A
	OpAstore0 Opcode = 0x4B
	OpAstore1 Opcode = 0x4C
	OpAstore2 Opcode = 0x4D
	OpAstore3 Opcode = 0x4E
	OpIastore Opcode = 0x4F
	OpLastore Opcode = 0x50
	OpFastore Opcode = 0x51
	OpDastore Opcode = 0x52
	OpAastore Opcode = 0x53
	OpBastore Opcode = 0x54
	OpCastore Opcode = 0x55
	OpSastore Opcode = 0x56

	// ========================================================================
	// Stack (0x57-0x5F)
	// ========================================================================

	OpPop    Opcode = 0x57
	OpPop2   Opcode = 0x58
	OpDup    Opcode = 0x59
	OpDupX1  Opcode = 0x5A
	OpDupX2  Opcode = 0x5B
	OpDup2   Opcode = 0x5C
	OpDup2X1 Opcode = 0x5D
	OpDup2X2 Opcode = 0x5E
	OpSwap   Opcode = 0x5F

	// ========================================================================
	// Arithmetic (0x60-0x84)
	// ========================================================================

	OpIadd  Opcode = 0x60
	OpLadd  Opcode = 0x61
	OpFadd  Opcode = 0x62
	OpDadd  Opcode = 0x63
	OpIsub  Opcode = 0x64
	OpLsub  Opcode = 0x65
	OpFsub  Opcode = 0x66
	OpDsub  Opcode = 0x67
	OpImul  Opcode = 0x68
	OpLmul  Opcode = 0x69
	OpFmul  Opcode = 0x6A
	OpDmul  Opcode = 0x6B
	OpIdiv  Opcode = 0x6C
	OpLdiv  Opcode = 0x6D
	OpFdiv  Opcode = 0x6E
	OpDdiv  Opcode = 0x6F
	OpIrem  Opcode = 0x70
	OpLrem  Opcode = 0x71
	OpFrem  Opcode = 0x72
	OpDrem  Opcode = 0x73
	OpIneg  Opcode = 0x74
	OpLneg  Opcode = 0x75
	OpFneg  Opcode = 0x76
	OpDneg  Opcode = 0x77
	OpIshl  Opcode = 0x78
	OpLshl  Opcode = 0x79
	OpIshr  Opcode = 0x7A
	OpLshr  Opcode = 0x7B
	OpIushr Opcode = 0x7C
	OpLushr Opcode = 0x7D
	OpIand  Opcode = 0x7E
	OpLand  Opcode = 0x7F
	OpIor   Opcode = 0x80
	OpLor   Opcode = 0x81
	OpIxor  Opcode = 0x82
	OpLxor  Opcode = 0x83
	OpIinc  Opcode = 0x84 // iinc <slot:u8> <delta:i8>

	// ========================================================================
	// Conversions (0x85-0x93)
	// ========================================================================

	OpI2L Opcode = 0x85
	OpI2F Opcode = 0x86
	OpI2D Opcode = 0x87
	OpL2I Opcode = 0x88
	OpL2F Opcode = 0x89
	OpL2D Opcode = 0x8A
	OpF2I Opcode = 0x8B
	OpF2L Opcode = 0x8C
	OpF2D Opcode = 0x8D
	OpD2I Opcode = 0x8E
	OpD2L Opcode = 0x8F
	OpD2F Opcode = 0x90
	OpI2B Opcode = 0x91
	OpI2C Opcode = 0x92
	OpI2S Opcode = 0x93

	// ========================================================================
	// Comparisons and branches (0x94-0xA6)
	// ========================================================================

	OpLcmp      Opcode = 0x94
	OpFcmpl     Opcode = 0x95
	OpFcmpg     Opcode = 0x96
	OpDcmpl     Opcode = 0x97
	OpDcmpg     Opcode = 0x98
	OpIfeq      Opcode = 0x99 // all branches: <offset:i16> relative to this instruction
	OpIfne      Opcode = 0x9A
	OpIflt      Opcode = 0x9B
	OpIfge      Opcode = 0x9C
	OpIfgt      Opcode = 0x9D
	OpIfle      Opcode = 0x9E
	OpIfIcmpeq  Opcode = 0x9F
	OpIfIcmpne  Opcode = 0xA0
	OpIfIcmplt  Opcode = 0xA1
	OpIfIcmpge  Opcode = 0xA2
	OpIfIcmpgt  Opcode = 0xA3
	OpIfIcmple  Opcode = 0xA4
	OpIfAcmpeq  Opcode = 0xA5
	OpIfAcmpne  Opcode = 0xA6

	// ========================================================================
	// Control (0xA7-0xB1)
	// ========================================================================

	OpGoto         Opcode = 0xA7 // goto <offset:i16>
	OpJsr          Opcode = 0xA8 // jsr <offset:i16>
	OpRet          Opcode = 0xA9 // ret <slot:u8>
	OpTableSwitch  Opcode = 0xAA // padded; default + low + high + jump table
	OpLookupSwitch Opcode = 0xAB // padded; default + npairs + match/offset pairs
	OpIreturn      Opcode = 0xAC
	OpLreturn      Opcode = 0xAD
	OpFreturn      Opcode = 0xAE
	OpDreturn      Opcode = 0xAF
	OpAreturn      Opcode = 0xB0
	OpReturn       Opcode = 0xB1

	// ========================================================================
	// References (0xB2-0xC3)
	// ========================================================================

	OpGetStatic       Opcode = 0xB2 // getstatic <index:u16>
	OpPutStatic       Opcode = 0xB3 // putstatic <index:u16>
	OpGetField        Opcode = 0xB4 // getfield <index:u16>
	OpPutField        Opcode = 0xB5 // putfield <index:u16>
	OpInvokeVirtual   Opcode = 0xB6 // invokevirtual <index:u16>
	OpInvokeSpecial   Opcode = 0xB7 // invokespecial <index:u16>
	OpInvokeStatic    Opcode = 0xB8 // invokestatic <index:u16>
	OpInvokeInterface Opcode = 0xB9 // invokeinterface <index:u16> <count:u8> 0
	OpInvokeDynamic   Opcode = 0xBA // invokedynamic <index:u16> 0 0
	OpNew             Opcode = 0xBB // new <index:u16>
	OpNewArray        Opcode = 0xBC // newarray <atype:u8>
	OpANewArray       Opcode = 0xBD // anewarray <index:u16>
	OpArrayLength     Opcode = 0xBE
	OpAthrow          Opcode = 0xBF
	OpCheckCast       Opcode = 0xC0 // checkcast <index:u16>
	OpInstanceOf      Opcode = 0xC1 // instanceof <index:u16>
	OpMonitorEnter    Opcode = 0xC2
	OpMonitorExit     Opcode = 0xC3

	// ========================================================================
	// Extended (0xC4-0xC9)
	// ========================================================================

	OpWide           Opcode = 0xC4 // prefix: widens the next instruction's slot operand to u16
	OpMultiANewArray Opcode = 0xC5 // multianewarray <index:u16> <dims:u8>
	OpIfNull         Opcode = 0xC6 // ifnull <offset:i16>
	OpIfNonNull      Opcode = 0xC7 // ifnonnull <offset:i16>
	OpGotoW          Opcode = 0xC8 // goto_w <offset:i32>
	OpJsrW           Opcode = 0xC9 // jsr_w <offset:i32>

	// ========================================================================
	// Reserved (0xCA)
	// ========================================================================

	OpBreakpoint Opcode = 0xCA
)

// OpcodeInfo provides metadata about each opcode for decoding and printing.
type OpcodeInfo struct {
	Name     string // JVM mnemonic
	Operands int    // operand bytes following the opcode; -1 means variable length
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Constants
	OpNop:        {"nop", 0},
	OpAconstNull: {"aconst_null", 0},
	OpIconstM1:   {"iconst_m1", 0},
	OpIconst0:    {"iconst_0", 0},
	OpIconst1:    {"iconst_1", 0},
	OpIconst2:    {"iconst_2", 0},
	OpIconst3:    {"iconst_3", 0},
	OpIconst4:    {"iconst_4", 0},
	OpIconst5:    {"iconst_5", 0},
	OpLconst0:    {"lconst_0", 0},
	OpLconst1:    {"lconst_1", 0},
	OpFconst0:    {"fconst_0", 0},
	OpFconst1:    {"fconst_1", 0},
	OpFconst2:    {"fconst_2", 0},
	OpDconst0:    {"dconst_0", 0},
	OpDconst1:    {"dconst_1", 0},
	OpBipush:     {"bipush", 1},
	OpSipush:     {"sipush", 2},
	OpLdc:        {"ldc", 1},
	OpLdcW:       {"ldc_w", 2},
	OpLdc2W:      {"ldc2_w", 2},

	// Loads
	OpIload:  {"iload", 1},
	OpLload:  {"lload", 1},
	OpFload:  {"fload", 1},
	OpDload:  {"dload", 1},
	OpAload:  {"aload", 1},
	OpIload0: {"iload_0", 0},
	OpIload1: {"iload_1", 0},
	OpIload2: {"iload_2", 0},
	OpIload3: {"iload_3", 0},
	OpLload0: {"lload_0", 0},
	OpLload1: {"lload_1", 0},
	OpLload2: {"lload_2", 0},
	OpLload3: {"lload_3", 0},
	OpFload0: {"fload_0", 0},
	OpFload1: {"fload_1", 0},
	OpFload2: {"fload_2", 0},
	OpFload3: {"fload_3", 0},
	OpDload0: {"dload_0", 0},
	OpDload1: {"dload_1", 0},
	OpDload2: {"dload_2", 0},
	OpDload3: {"dload_3", 0},
	OpAload0: {"aload_0", 0},
	OpAload1: {"aload_1", 0},
	OpAload2: {"aload_2", 0},
	OpAload3: {"aload_3", 0},
	OpIaload: {"iaload", 0},
	OpLaload: {"laload", 0},
	OpFaload: {"faload", 0},
	OpDaload: {"daload", 0},
	OpAaload: {"aaload", 0},
	OpBaload: {"baload", 0},
	OpCaload: {"caload", 0},
	OpSaload: {"saload", 0},

	// Stores
	OpIstore:  {"istore", 1},
	OpLstore:  {"lstore", 1},
	OpFstore:  {"fstore", 1},
	OpDstore:  {"dstore", 1},
	OpAstore:  {"astore", 1},
	OpIstore0: {"istore_0", 0},
	OpIstore1: {"istore_1", 0},
	OpIstore2: {"istore_2", 0},
	OpIstore3: {"istore_3", 0},
	OpLstore0: {"lstore_0", 0},
	OpLstore1: {"lstore_1", 0},
	OpLstore2: {"lstore_2", 0},
	OpLstore3: {"lstore_3", 0},
	OpFstore0: {"fstore_0", 0},
	OpFstore1: {"fstore_1", 0},
	OpFstore2: {"fstore_2", 0},
	OpFstore3: {"fstore_3", 0},
	OpDstore0: {"dstore_0", 0},
	OpDstore1: {"dstore_1", 0},
	OpDstore2: {"dstore_2", 0},
	OpDstore3: {"dstore_3", 0},
	OpAstore0: {"astore_0", 0},
	OpAstore1: {"astore_1", 0},
	OpAstore2: {"astore_2", 0},
	OpAstore3: {"astore_3", 0},
	OpIastore: {"iastore", 0},
	OpLastore: {"lastore", 0},
	OpFastore: {"fastore", 0},
	OpDastore: {"dastore", 0},
	OpAastore: {"aastore", 0},
	OpBastore: {"bastore", 0},
	OpCastore: {"castore", 0},
	OpSastore: {"sastore", 0},

	// Stack
	OpPop:    {"pop", 0},
	OpPop2:   {"pop2", 0},
	OpDup:    {"dup", 0},
	OpDupX1:  {"dup_x1", 0},
	OpDupX2:  {"dup_x2", 0},
	OpDup2:   {"dup2", 0},
	OpDup2X1: {"dup2_x1", 0},
	OpDup2X2: {"dup2_x2", 0},
	OpSwap:   {"swap", 0},

	// Arithmetic
	OpIadd:  {"iadd", 0},
	OpLadd:  {"ladd", 0},
	OpFadd:  {"fadd", 0},
	OpDadd:  {"dadd", 0},
	OpIsub:  {"isub", 0},
	OpLsub:  {"lsub", 0},
	OpFsub:  {"fsub", 0},
	OpDsub:  {"dsub", 0},
	OpImul:  {"imul", 0},
	OpLmul:  {"lmul", 0},
	OpFmul:  {"fmul", 0},
	OpDmul:  {"dmul", 0},
	OpIdiv:  {"idiv", 0},
	OpLdiv:  {"ldiv", 0},
	OpFdiv:  {"fdiv", 0},
	OpDdiv:  {"ddiv", 0},
	OpIrem:  {"irem", 0},
	OpLrem:  {"lrem", 0},
	OpFrem:  {"frem", 0},
	OpDrem:  {"drem", 0},
	OpIneg:  {"ineg", 0},
	OpLneg:  {"lneg", 0},
	OpFneg:  {"fneg", 0},
	OpDneg:  {"dneg", 0},
	OpIshl:  {"ishl", 0},
	OpLshl:  {"lshl", 0},
	OpIshr:  {"ishr", 0},
	OpLshr:  {"lshr", 0},
	OpIushr: {"iushr", 0},
	OpLushr: {"lushr", 0},
	OpIand:  {"iand", 0},
	OpLand:  {"land", 0},
	OpIor:   {"ior", 0},
	OpLor:   {"lor", 0},
	OpIxor:  {"ixor", 0},
	OpLxor:  {"lxor", 0},
	OpIinc:  {"iinc", 2},

	// Conversions
	OpI2L: {"i2l", 0},
	OpI2F: {"i2f", 0},
	OpI2D: {"i2d", 0},
	OpL2I: {"l2i", 0},
	OpL2F: {"l2f", 0},
	OpL2D: {"l2d", 0},
	OpF2I: {"f2i", 0},
	OpF2L: {"f2l", 0},
	OpF2D: {"f2d", 0},
	OpD2I: {"d2i", 0},
	OpD2L: {"d2l", 0},
	OpD2F: {"d2f", 0},
	OpI2B: {"i2b", 0},
	OpI2C: {"i2c", 0},
	OpI2S: {"i2s", 0},

	// Comparisons and branches
	OpLcmp:     {"lcmp", 0},
	OpFcmpl:    {"fcmpl", 0},
	OpFcmpg:    {"fcmpg", 0},
	OpDcmpl:    {"dcmpl", 0},
	OpDcmpg:    {"dcmpg", 0},
	OpIfeq:     {"ifeq", 2},
	OpIfne:     {"ifne", 2},
	OpIflt:     {"iflt", 2},
	OpIfge:     {"ifge", 2},
	OpIfgt:     {"ifgt", 2},
	OpIfle:     {"ifle", 2},
	OpIfIcmpeq: {"if_icmpeq", 2},
	OpIfIcmpne: {"if_icmpne", 2},
	OpIfIcmplt: {"if_icmplt", 2},
	OpIfIcmpge: {"if_icmpge", 2},
	OpIfIcmpgt: {"if_icmpgt", 2},
	OpIfIcmple: {"if_icmple", 2},
	OpIfAcmpeq: {"if_acmpeq", 2},
	OpIfAcmpne: {"if_acmpne", 2},

	// Control
	OpGoto:         {"goto", 2},
	OpJsr:          {"jsr", 2},
	OpRet:          {"ret", 1},
	OpTableSwitch:  {"tableswitch", -1},
	OpLookupSwitch: {"lookupswitch", -1},
	OpIreturn:      {"ireturn", 0},
	OpLreturn:      {"lreturn", 0},
	OpFreturn:      {"freturn", 0},
	OpDreturn:      {"dreturn", 0},
	OpAreturn:      {"areturn", 0},
	OpReturn:       {"return", 0},

	// References
	OpGetStatic:       {"getstatic", 2},
	OpPutStatic:       {"putstatic", 2},
	OpGetField:        {"getfield", 2},
	OpPutField:        {"putfield", 2},
	OpInvokeVirtual:   {"invokevirtual", 2},
	OpInvokeSpecial:   {"invokespecial", 2},
	OpInvokeStatic:    {"invokestatic", 2},
	OpInvokeInterface: {"invokeinterface", 4},
	OpInvokeDynamic:   {"invokedynamic", 4},
	OpNew:             {"new", 2},
	OpNewArray:        {"newarray", 1},
	OpANewArray:       {"anewarray", 2},
	OpArrayLength:     {"arraylength", 0},
	OpAthrow:          {"athrow", 0},
	OpCheckCast:       {"checkcast", 2},
	OpInstanceOf:      {"instanceof", 2},
	OpMonitorEnter:    {"monitorenter", 0},
	OpMonitorExit:     {"monitorexit", 0},

	// Extended
	OpWide:           {"wide", -1},
	OpMultiANewArray: {"multianewarray", 3},
	OpIfNull:         {"ifnull", 2},
	OpIfNonNull:      {"ifnonnull", 2},
	OpGotoW:          {"goto_w", 4},
	OpJsrW:           {"jsr_w", 4},

	// Reserved
	OpBreakpoint: {"breakpoint", 0},
}

// AccessKind says how an opcode touches its local-variable slot.
type AccessKind uint8

const (
	AccessLoad AccessKind = iota + 1
	AccessStore
	AccessInc
	AccessRet
)

// localUse describes the slot access of one opcode: the access kind,
// the fixed slot of the _0.._3 forms (-1 when the slot is an operand),
// and the inferred variable category.
type localUse struct {
	Access AccessKind
	Slot   int8
	Kind   jvm.Kind
}

// localUseTable maps every slot-touching opcode to its access shape.
var localUseTable = map[Opcode]localUse{
	OpIload:  {AccessLoad, -1, jvm.KindInt},
	OpLload:  {AccessLoad, -1, jvm.KindLong},
	OpFload:  {AccessLoad, -1, jvm.KindFloat},
	OpDload:  {AccessLoad, -1, jvm.KindDouble},
	OpAload:  {AccessLoad, -1, jvm.KindObject},
	OpIload0: {AccessLoad, 0, jvm.KindInt},
	OpIload1: {AccessLoad, 1, jvm.KindInt},
	OpIload2: {AccessLoad, 2, jvm.KindInt},
	OpIload3: {AccessLoad, 3, jvm.KindInt},
	OpLload0: {AccessLoad, 0, jvm.KindLong},
	OpLload1: {AccessLoad, 1, jvm.KindLong},
	OpLload2: {AccessLoad, 2, jvm.KindLong},
	OpLload3: {AccessLoad, 3, jvm.KindLong},
	OpFload0: {AccessLoad, 0, jvm.KindFloat},
	OpFload1: {AccessLoad, 1, jvm.KindFloat},
	OpFload2: {AccessLoad, 2, jvm.KindFloat},
	OpFload3: {AccessLoad, 3, jvm.KindFloat},
	OpDload0: {AccessLoad, 0, jvm.KindDouble},
	OpDload1: {AccessLoad, 1, jvm.KindDouble},
	OpDload2: {AccessLoad, 2, jvm.KindDouble},
	OpDload3: {AccessLoad, 3, jvm.KindDouble},
	OpAload0: {AccessLoad, 0, jvm.KindObject},
	OpAload1: {AccessLoad, 1, jvm.KindObject},
	OpAload2: {AccessLoad, 2, jvm.KindObject},
	OpAload3: {AccessLoad, 3, jvm.KindObject},

	OpIstore:  {AccessStore, -1, jvm.KindInt},
	OpLstore:  {AccessStore, -1, jvm.KindLong},
	OpFstore:  {AccessStore, -1, jvm.KindFloat},
	OpDstore:  {AccessStore, -1, jvm.KindDouble},
	OpAstore:  {AccessStore, -1, jvm.KindObject},
	OpIstore0: {AccessStore, 0, jvm.KindInt},
	OpIstore1: {AccessStore, 1, jvm.KindInt},
	OpIstore2: {AccessStore, 2, jvm.KindInt},
	OpIstore3: {AccessStore, 3, jvm.KindInt},
	OpLstore0: {AccessStore, 0, jvm.KindLong},
	OpLstore1: {AccessStore, 1, jvm.KindLong},
	OpLstore2: {AccessStore, 2, jvm.KindLong},
	OpLstore3: {AccessStore, 3, jvm.KindLong},
	OpFstore0: {AccessStore, 0, jvm.KindFloat},
	OpFstore1: {AccessStore, 1, jvm.KindFloat},
	OpFstore2: {AccessStore, 2, jvm.KindFloat},
	OpFstore3: {AccessStore, 3, jvm.KindFloat},
	OpDstore0: {AccessStore, 0, jvm.KindDouble},
	OpDstore1: {AccessStore, 1, jvm.KindDouble},
	OpDstore2: {AccessStore, 2, jvm.KindDouble},
	OpDstore3: {AccessStore, 3, jvm.KindDouble},
	OpAstore0: {AccessStore, 0, jvm.KindObject},
	OpAstore1: {AccessStore, 1, jvm.KindObject},
	OpAstore2: {AccessStore, 2, jvm.KindObject},
	OpAstore3: {AccessStore, 3, jvm.KindObject},

	OpIinc: {AccessInc, -1, jvm.KindInt},
	OpRet:  {AccessRet, -1, jvm.KindObject},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with an UNKNOWN name if the opcode is not
// part of the standard set.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the JVM mnemonic of the opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode, or
// -1 for the variable-length switch and wide forms.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).Operands
}

// IsLoad returns true for the local-variable load opcodes.
func (op Opcode) IsLoad() bool {
	return localUseTable[op].Access == AccessLoad
}

// IsStore returns true for the local-variable store opcodes.
func (op Opcode) IsStore() bool {
	return localUseTable[op].Access == AccessStore
}

// IsLocalAccess returns true when the opcode reads or writes a local
// slot: loads, stores, iinc and ret.
func (op Opcode) IsLocalAccess() bool {
	return localUseTable[op].Access != 0
}

// FixedSlot returns the implicit slot of the _0.._3 forms, or -1 when
// the slot comes from an operand or the opcode touches no local.
func (op Opcode) FixedSlot() int {
	u, ok := localUseTable[op]
	if !ok {
		return -1
	}
	return int(u.Slot)
}

// LocalKind returns the variable type category the opcode implies:
// int, long, float or double for the typed forms, the generic object
// category for everything else.
func (op Opcode) LocalKind() *jvm.TypeRef {
	switch localUseTable[op].Kind {
	case jvm.KindInt:
		return jvm.Int
	case jvm.KindLong:
		return jvm.Long
	case jvm.KindFloat:
		return jvm.Float
	case jvm.KindDouble:
		return jvm.Double
	default:
		return jvm.Object
	}
}

// IsBranch returns true for the conditional and unconditional branch
// opcodes with relative offsets, including the wide goto/jsr forms.
func (op Opcode) IsBranch() bool {
	return (op >= OpIfeq && op <= OpJsr) ||
		op == OpIfNull || op == OpIfNonNull ||
		op == OpGotoW || op == OpJsrW
}

// IsReturn returns true if this opcode leaves the method.
func (op Opcode) IsReturn() bool {
	return (op >= OpIreturn && op <= OpReturn) || op == OpAthrow
}

// ConstantRef returns true when the opcode's primary operand is a
// constant-pool index.
func (op Opcode) ConstantRef() bool {
	switch op {
	case OpLdc, OpLdcW, OpLdc2W, OpANewArray, OpCheckCast, OpInstanceOf, OpMultiANewArray:
		return true
	}
	return op >= OpGetStatic && op <= OpNew
}

// AllOpcodes returns every defined opcode in numeric order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
