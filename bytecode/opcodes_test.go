package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/javelin/jvm"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("opcode 0x%02X has no metadata", byte(op))
		}
	}
}

func TestOpcodeCount(t *testing.T) {
	// The standard set is contiguous from nop through breakpoint.
	if count := OpcodeCount(); count != 203 {
		t.Errorf("OpcodeCount() = %d, want 203", count)
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpNop, "nop"},
		{OpAconstNull, "aconst_null"},
		{OpIconstM1, "iconst_m1"},
		{OpBipush, "bipush"},
		{OpIload1, "iload_1"},
		{OpAstore, "astore"},
		{OpIinc, "iinc"},
		{OpIfIcmpeq, "if_icmpeq"},
		{OpGoto, "goto"},
		{OpTableSwitch, "tableswitch"},
		{OpInvokeVirtual, "invokevirtual"},
		{OpMultiANewArray, "multianewarray"},
		{OpGotoW, "goto_w"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(0x%02X).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(0xFE) // reserved, not in the table
	if got := op.String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("unknown opcode String() = %q, want UNKNOWN prefix", got)
	}
}

func TestLocalAccessClassification(t *testing.T) {
	tests := []struct {
		op        Opcode
		load      bool
		store     bool
		access    bool
		fixedSlot int
	}{
		{OpIload, true, false, true, -1},
		{OpIload2, true, false, true, 2},
		{OpAload0, true, false, true, 0},
		{OpIstore, false, true, true, -1},
		{OpLstore3, false, true, true, 3},
		{OpIinc, false, false, true, -1},
		{OpRet, false, false, true, -1},
		{OpIadd, false, false, false, -1},
		{OpGetField, false, false, false, -1},
		{OpIaload, false, false, false, -1}, // array access, not a slot access
	}

	for _, tt := range tests {
		if got := tt.op.IsLoad(); got != tt.load {
			t.Errorf("%s.IsLoad() = %v, want %v", tt.op, got, tt.load)
		}
		if got := tt.op.IsStore(); got != tt.store {
			t.Errorf("%s.IsStore() = %v, want %v", tt.op, got, tt.store)
		}
		if got := tt.op.IsLocalAccess(); got != tt.access {
			t.Errorf("%s.IsLocalAccess() = %v, want %v", tt.op, got, tt.access)
		}
		if got := tt.op.FixedSlot(); got != tt.fixedSlot {
			t.Errorf("%s.FixedSlot() = %d, want %d", tt.op, got, tt.fixedSlot)
		}
	}
}

func TestLocalKind(t *testing.T) {
	tests := []struct {
		op   Opcode
		want *jvm.TypeRef
	}{
		{OpIload, jvm.Int},
		{OpIstore1, jvm.Int},
		{OpLstore, jvm.Long},
		{OpFload3, jvm.Float},
		{OpDstore2, jvm.Double},
		{OpAload, jvm.Object},
		{OpAstore0, jvm.Object},
		{OpIinc, jvm.Int},
		{OpRet, jvm.Object},
		{OpNop, jvm.Object}, // no typed access: generic category
	}

	for _, tt := range tests {
		if got := tt.op.LocalKind(); got != tt.want {
			t.Errorf("%s.LocalKind() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestBranchAndReturnPredicates(t *testing.T) {
	branches := []Opcode{OpIfeq, OpIfIcmplt, OpIfAcmpne, OpGoto, OpJsr, OpIfNull, OpGotoW}
	for _, op := range branches {
		if !op.IsBranch() {
			t.Errorf("%s.IsBranch() = false, want true", op)
		}
	}

	notBranches := []Opcode{OpNop, OpIload, OpTableSwitch, OpReturn, OpAthrow}
	for _, op := range notBranches {
		if op.IsBranch() {
			t.Errorf("%s.IsBranch() = true, want false", op)
		}
	}

	returns := []Opcode{OpIreturn, OpLreturn, OpAreturn, OpReturn, OpAthrow}
	for _, op := range returns {
		if !op.IsReturn() {
			t.Errorf("%s.IsReturn() = false, want true", op)
		}
	}
	if OpGoto.IsReturn() {
		t.Error("goto.IsReturn() = true, want false")
	}
}

func TestConstantRefPredicate(t *testing.T) {
	refs := []Opcode{OpLdc, OpLdcW, OpLdc2W, OpGetStatic, OpInvokeVirtual, OpInvokeDynamic, OpNew, OpCheckCast, OpMultiANewArray}
	for _, op := range refs {
		if !op.ConstantRef() {
			t.Errorf("%s.ConstantRef() = false, want true", op)
		}
	}

	nonRefs := []Opcode{OpBipush, OpIload, OpNewArray, OpGoto, OpReturn}
	for _, op := range nonRefs {
		if op.ConstantRef() {
			t.Errorf("%s.ConstantRef() = true, want false", op)
		}
	}
}

func TestOperandLen(t *testing.T) {
	tests := []struct {
		op   Opcode
		want int
	}{
		{OpNop, 0},
		{OpBipush, 1},
		{OpSipush, 2},
		{OpIload, 1},
		{OpIload0, 0},
		{OpIinc, 2},
		{OpInvokeInterface, 4},
		{OpMultiANewArray, 3},
		{OpGotoW, 4},
		{OpTableSwitch, -1},
		{OpLookupSwitch, -1},
		{OpWide, -1},
	}

	for _, tt := range tests {
		if got := tt.op.OperandLen(); got != tt.want {
			t.Errorf("%s.OperandLen() = %d, want %d", tt.op, got, tt.want)
		}
	}
}
