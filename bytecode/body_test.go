package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/javelin/jvm"
)

// countdownCode is the body of `void tick(int n) { int i = n; while (i > 0) i--; }`.
var countdownCode = []byte{
	0x1B,             // 0: iload_1
	0x3D,             // 1: istore_2
	0x1C,             // 2: iload_2
	0x9E, 0x00, 0x09, // 3: ifle -> 12
	0x84, 0x02, 0xFF, // 6: iinc 2 -1
	0xA7, 0xFF, 0xF9, // 9: goto -> 2
	0xB1, // 12: return
}

func TestAnalyzeLocalsWithMetadata(t *testing.T) {
	body := &Body{
		ClassName:  "Widget",
		MethodName: "tick",
		Descriptor: "(I)V",
		MaxStack:   1,
		MaxLocals:  3,
		Code:       countdownCode,
		Metadata: []LocalVarEntry{
			{Slot: 0, Name: "this", Type: jvm.ObjectType("Widget"), StartPC: 0, Length: 13},
			{Slot: 1, Name: "n", Type: jvm.Int, StartPC: 0, Length: 13},
			{Slot: 2, Name: "i", Type: jvm.Int, StartPC: 2, Length: 11},
		},
	}

	table, insts, err := body.AnalyzeLocals()
	if err != nil {
		t.Fatalf("AnalyzeLocals() error = %v", err)
	}
	if len(insts) != 7 {
		t.Errorf("replay decoded %d instructions, want 7", len(insts))
	}

	// Every access agrees with the debug metadata, so no synthetic
	// records appear.
	if table.Len() != 3 {
		t.Fatalf("table has %d records, want 3", table.Len())
	}
	for i, want := range []string{"this", "n", "i"} {
		v := table.Var(VarID(i))
		if v.Name != want || !v.FromMetadata {
			t.Errorf("record %d = %+v, want metadata record %q", i, v, want)
		}
	}

	id, ok := table.Lookup(2, 6)
	if !ok || table.Var(id).Name != "i" {
		t.Error("the iinc access does not resolve to i")
	}
	if got := table.SlotCount(); got != 3 {
		t.Errorf("SlotCount() = %d, want 3", got)
	}
	assertNoOverlap(t, table)
}

func TestAnalyzeLocalsWithoutMetadata(t *testing.T) {
	body := &Body{
		ClassName:  "Widget",
		MethodName: "tick",
		Descriptor: "(I)V",
		MaxLocals:  3,
		Code:       countdownCode,
	}

	table, _, err := body.AnalyzeLocals()
	if err != nil {
		t.Fatalf("AnalyzeLocals() error = %v", err)
	}

	// Stripped debug info: both locals come back as synthetics named
	// for their slot and birth offset.
	if table.Len() != 2 {
		t.Fatalf("table has %d records, want 2", table.Len())
	}

	arg := table.Var(0)
	if arg.Name != "$1_0$" || arg.Type != jvm.Int {
		t.Errorf("argument record = %+v, want int $1_0$", arg)
	}
	if arg.ScopeStart != 0 || arg.ScopeEnd != len(countdownCode) {
		t.Errorf("argument scope = [%d,%d), want [0,%d)", arg.ScopeStart, arg.ScopeEnd, len(countdownCode))
	}

	local := table.Var(1)
	if local.Name != "$2_2$" || local.Type != jvm.Int {
		t.Errorf("local record = %+v, want int $2_2$", local)
	}
	assertNoOverlap(t, table)
}

func TestAnalyzeLocalsScanError(t *testing.T) {
	body := &Body{
		ClassName:  "Widget",
		MethodName: "broken",
		Descriptor: "()V",
		Code:       []byte{0x10}, // bipush missing its operand
	}

	_, _, err := body.AnalyzeLocals()
	if err == nil {
		t.Fatal("AnalyzeLocals() error = nil, want a scan failure")
	}
	if !strings.Contains(err.Error(), "Widget.broken") {
		t.Errorf("error %q does not name the method", err)
	}
	if !strings.Contains(err.Error(), "truncated") {
		t.Errorf("error %q does not describe the scan failure", err)
	}
}

func TestArgCount(t *testing.T) {
	tests := []struct {
		descriptor string
		static     bool
		want       int
	}{
		{"()V", true, 0},
		{"(I)V", true, 1},
		{"(I)V", false, 2},
		{"(JD)V", true, 4},
		{"(Ljava/lang/String;[I)I", false, 3},
		{"(J[[D)J", true, 3},
	}

	for _, tt := range tests {
		body := &Body{Descriptor: tt.descriptor}
		got, err := body.ArgCount(tt.static)
		if err != nil {
			t.Errorf("ArgCount(%q, static=%v) error = %v", tt.descriptor, tt.static, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ArgCount(%q, static=%v) = %d, want %d", tt.descriptor, tt.static, got, tt.want)
		}
	}

	if _, err := (&Body{Descriptor: "("}).ArgCount(true); err == nil {
		t.Error("ArgCount on a malformed descriptor did not fail")
	}
}
