package bytecode

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/javelin/jvm"
)

// replay scans code and feeds every slot access through Ensure, the way
// Body.AnalyzeLocals does, then closes scopes at the end of the code.
func replay(t *testing.T, table *VariableTable, code []byte) []Instruction {
	t.Helper()
	insts, err := Scan(code)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	for _, inst := range insts {
		if inst.Slot >= 0 {
			table.Ensure(inst)
		}
	}
	table.UpdateScopes(len(code))
	return insts
}

// assertNoOverlap checks that no two records sharing a slot have
// intersecting scopes.
func assertNoOverlap(t *testing.T, table *VariableTable) {
	t.Helper()
	vars := table.Variables()
	for i := range vars {
		for j := i + 1; j < len(vars); j++ {
			a, b := vars[i], vars[j]
			if a.Slot != b.Slot {
				continue
			}
			if a.ScopeStart < b.ScopeEnd && b.ScopeStart < a.ScopeEnd {
				t.Errorf("slot %d records overlap: [%d,%d) and [%d,%d)",
					a.Slot, a.ScopeStart, a.ScopeEnd, b.ScopeStart, b.ScopeEnd)
			}
		}
	}
}

func TestAddMetadata(t *testing.T) {
	table := NewVariableTable()
	id := table.AddMetadata(1, "count", jvm.Int, 0, 10)

	v := table.Var(id)
	if v.Slot != 1 || v.Name != "count" || v.Type != jvm.Int {
		t.Errorf("record = %+v, want slot 1 name count type int", v)
	}
	if v.ScopeStart != 0 || v.ScopeEnd != 10 {
		t.Errorf("scope = [%d,%d), want [0,10)", v.ScopeStart, v.ScopeEnd)
	}
	if !v.FromMetadata || !v.TypeKnown {
		t.Error("metadata record must be authoritative with a settled type")
	}
}

func TestLookupPrefersLatestStart(t *testing.T) {
	table := NewVariableTable()
	outer := table.AddMetadata(1, "outer", jvm.Int, 0, 50)
	inner := table.AddMetadata(1, "inner", jvm.Int, 10, 10)

	tests := []struct {
		offset int
		want   VarID
		ok     bool
	}{
		{15, inner, true}, // both cover; the later start wins
		{5, outer, true},
		{25, outer, true}, // inner ended at 20
		{60, 0, false},    // past both scopes
		{-1, inner, true}, // negative offset ignores scopes
	}

	for _, tt := range tests {
		id, ok := table.Lookup(1, tt.offset)
		if ok != tt.ok || (ok && id != tt.want) {
			t.Errorf("Lookup(1, %d) = (%d, %v), want (%d, %v)", tt.offset, id, ok, tt.want, tt.ok)
		}
	}

	if _, ok := table.Lookup(2, 15); ok {
		t.Error("Lookup(2, 15) found a record on the wrong slot")
	}
}

func TestLookupTieKeepsFirstRecord(t *testing.T) {
	table := NewVariableTable()
	first := table.AddMetadata(3, "a", jvm.Int, 0, 10)
	table.AddMetadata(3, "b", jvm.Int, 0, 10)

	id, ok := table.Lookup(3, 5)
	if !ok || id != first {
		t.Errorf("Lookup(3, 5) = (%d, %v), want the earlier record %d", id, ok, first)
	}
}

func TestFindReportsMissing(t *testing.T) {
	table := NewVariableTable()
	table.AddMetadata(1, "x", jvm.Int, 0, 10)

	if _, err := table.Find(1, 5); err != nil {
		t.Errorf("Find(1, 5) error = %v, want nil", err)
	}

	_, err := table.Find(9, 0)
	if !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("Find(9, 0) error = %v, want ErrVariableNotFound", err)
	}
	if !strings.Contains(err.Error(), "slot 9") {
		t.Errorf("Find error %q does not name the slot", err)
	}
}

func TestEnsureCreatesRecordOnFirstStore(t *testing.T) {
	code := []byte{
		0x03,             // 0: iconst_0
		0x3C,             // 1: istore_1
		0x00, 0x00, 0x00, // 2-4: nop
		0x1B, // 5: iload_1
		0xAC, // 6: ireturn
	}

	table := NewVariableTable()
	replay(t, table, code)
	table.MergeVariables()

	if table.Len() != 1 {
		t.Fatalf("table has %d records, want 1", table.Len())
	}
	v := table.Var(0)
	if v.Name != "$1_2$" {
		t.Errorf("name = %q, want $1_2$", v.Name)
	}
	if v.Type != jvm.Int || !v.TypeKnown || v.FromMetadata {
		t.Errorf("record = %+v, want a settled synthetic int", v)
	}
	// A store takes effect after its instruction: the scope begins at
	// the following offset and runs to the end of the code.
	if v.ScopeStart != 2 || v.ScopeEnd != 7 {
		t.Errorf("scope = [%d,%d), want [2,7)", v.ScopeStart, v.ScopeEnd)
	}

	id, ok := table.Lookup(1, 5)
	if !ok || id != 0 {
		t.Errorf("Lookup(1, 5) = (%d, %v), want the stored record", id, ok)
	}
}

func TestEnsureReusesMetadataRecord(t *testing.T) {
	code := []byte{
		0x03, // 0: iconst_0
		0x3C, // 1: istore_1
		0x1B, // 2: iload_1
		0xAC, // 3: ireturn
	}

	table := NewVariableTable()
	table.AddMetadata(1, "count", jvm.Int, 0, len(code))
	replay(t, table, code)
	table.MergeVariables()

	if table.Len() != 1 {
		t.Fatalf("table has %d records, want 1", table.Len())
	}
	v := table.Var(0)
	if v.Name != "count" || !v.FromMetadata {
		t.Errorf("record = %+v, want the metadata record untouched", v)
	}
}

func TestEnsureSplitsOnIncompatibleStore(t *testing.T) {
	code := []byte{0x03, 0x3C, 0x1B} // 0: iconst_0; 1: istore_1; 2: iload_1
	code = append(code, make([]byte, 16)...) // 3-18: nop
	code = append(code,
		0x0B, // 19: fconst_0
		0x44, // 20: fstore_1
		0xB1, // 21: return
	)

	table := NewVariableTable()
	replay(t, table, code)
	table.MergeVariables()
	assertNoOverlap(t, table)

	if table.Len() != 2 {
		t.Fatalf("table has %d records, want 2", table.Len())
	}

	first, second := table.Var(0), table.Var(1)
	if first.Type != jvm.Int || first.Name != "$1_2$" {
		t.Errorf("first record = %+v, want synthetic int $1_2$", first)
	}
	// The int record is cut just before the float store that reuses
	// its slot.
	if first.ScopeStart != 2 || first.ScopeEnd != 19 {
		t.Errorf("first scope = [%d,%d), want [2,19)", first.ScopeStart, first.ScopeEnd)
	}
	if second.Type != jvm.Float || second.Name != "$1_21$" {
		t.Errorf("second record = %+v, want synthetic float $1_21$", second)
	}
	if second.ScopeStart != 21 || second.ScopeEnd != 22 {
		t.Errorf("second scope = [%d,%d), want [21,22)", second.ScopeStart, second.ScopeEnd)
	}

	if id, ok := table.Lookup(1, 10); !ok || id != 0 {
		t.Errorf("Lookup(1, 10) = (%d, %v), want the int record", id, ok)
	}
	if id, ok := table.Lookup(1, 21); !ok || id != 1 {
		t.Errorf("Lookup(1, 21) = (%d, %v), want the float record", id, ok)
	}
	if _, ok := table.Lookup(1, 19); ok {
		t.Error("Lookup(1, 19) found a record inside the truncation gap")
	}
}

func TestEnsureLoadTruncatesIncompatibleRecord(t *testing.T) {
	table := NewVariableTable()
	intRec := table.Ensure(Instruction{Op: OpIstore1, Offset: 0, Slot: 1})
	dblRec := table.Ensure(Instruction{Op: OpDload1, Offset: 5, Slot: 1})

	if intRec == dblRec {
		t.Fatal("incompatible load reused the int record")
	}
	if got := table.Var(intRec); got.ScopeEnd != 4 {
		t.Errorf("int record scope end = %d, want 4", got.ScopeEnd)
	}
	if got := table.Var(dblRec); got.Type != jvm.Double || got.ScopeStart != 5 {
		t.Errorf("new record = %+v, want double starting at 5", got)
	}
}

func TestEnsureGenericObjectReuse(t *testing.T) {
	table := NewVariableTable()
	stored := table.Ensure(Instruction{Op: OpAstore1, Offset: 0, Slot: 1})

	v := table.Var(stored)
	if v.Type != jvm.Object || v.TypeKnown {
		t.Errorf("record = %+v, want an unsettled object record", v)
	}

	loaded := table.Ensure(Instruction{Op: OpAload1, Offset: 1, Slot: 1})
	if loaded != stored {
		t.Error("aload did not reuse the astore record")
	}

	// The generic object category also reuses records holding a
	// concrete reference type.
	str := table.AddMetadata(2, "s", jvm.ObjectType("java/lang/String"), 0, 10)
	if got := table.Ensure(Instruction{Op: OpAstore2, Offset: 3, Slot: 2}); got != str {
		t.Error("astore did not reuse the string metadata record")
	}
	if got := table.Ensure(Instruction{Op: OpAload2, Offset: 4, Slot: 2}); got != str {
		t.Error("aload did not reuse the string metadata record")
	}
}

func TestEnsureIincAndRet(t *testing.T) {
	table := NewVariableTable()

	inc := table.Ensure(Instruction{Op: OpIinc, Offset: 0, Slot: 1, Const: 5})
	if v := table.Var(inc); v.Type != jvm.Int || !v.TypeKnown || v.ScopeStart != 0 {
		t.Errorf("iinc record = %+v, want settled int starting at 0", v)
	}

	ret := table.Ensure(Instruction{Op: OpRet, Offset: 3, Slot: 4})
	if v := table.Var(ret); v.Type != jvm.Object || v.TypeKnown {
		t.Errorf("ret record = %+v, want unsettled object", v)
	}
}

func TestUpdateScopesClosesNearestSuccessor(t *testing.T) {
	table := NewVariableTable()

	// Discovery order deliberately runs backwards so each new record
	// must close against a successor discovered earlier.
	late := table.Ensure(Instruction{Op: OpIload3, Offset: 20, Slot: 3})
	mid := table.Ensure(Instruction{Op: OpIload3, Offset: 5, Slot: 3})
	early := table.Ensure(Instruction{Op: OpFload3, Offset: 2, Slot: 3})

	if got := table.Var(early).ScopeEnd; got != 5 {
		t.Errorf("early record closed at %d, want the nearest successor 5", got)
	}
	if got := table.Var(mid).ScopeEnd; got != 20 {
		t.Errorf("mid record closed at %d, want 20", got)
	}
	if got := table.Var(late).ScopeEnd; got != ScopeUnresolved {
		t.Errorf("late record closed at %d, want it still open", got)
	}

	table.UpdateScopes(100)
	if got := table.Var(late).ScopeEnd; got != 100 {
		t.Errorf("late record closed at %d, want the code size 100", got)
	}
	assertNoOverlap(t, table)
}

func TestUpdateScopesNegativeKeepsOpen(t *testing.T) {
	table := NewVariableTable()
	id := table.Ensure(Instruction{Op: OpIstore1, Offset: 0, Slot: 1})

	table.UpdateScopes(ScopeUnresolved)
	if got := table.Var(id).ScopeEnd; got != ScopeUnresolved {
		t.Errorf("scope end = %d, want it untouched by the negative sentinel", got)
	}

	table.UpdateScopes(10)
	if got := table.Var(id).ScopeEnd; got != 10 {
		t.Errorf("scope end = %d, want 10", got)
	}
}

func TestResolveCoversEveryAccess(t *testing.T) {
	code := []byte{
		0x03, // 0: iconst_0
		0x3C, // 1: istore_1
		0x1B, // 2: iload_1
		0x0B, // 3: fconst_0
		0x44, // 4: fstore_1
		0x23, // 5: fload_1
		0xB1, // 6: return
	}

	insts, err := Scan(code)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// Every access must resolve to its own record the moment Ensure
	// returns, even when the store's record begins after the opcode.
	table := NewVariableTable()
	for _, inst := range insts {
		if inst.Slot < 0 {
			continue
		}
		id := table.Ensure(inst)
		got, ok := table.Resolve(inst)
		if !ok || got != id {
			t.Errorf("Resolve(%v) = (%d, %v) right after Ensure returned %d", inst, got, ok, id)
		}
	}

	// And again once scopes are closed and fragments merged.
	table.UpdateScopes(len(code))
	table.MergeVariables()
	assertNoOverlap(t, table)
	for _, inst := range insts {
		if inst.Slot < 0 {
			continue
		}
		if _, ok := table.Resolve(inst); !ok {
			t.Errorf("Resolve(%v) lost its record after the batch passes", inst)
		}
	}
}

func TestSlotCountWithWideTypes(t *testing.T) {
	code := []byte{
		0x09,       // 0: lconst_0
		0x42,       // 1: lstore_3
		0x03,       // 2: iconst_0
		0x36, 0x04, // 3: istore 4
		0x21,       // 5: lload_3
		0x15, 0x04, // 6: iload 4
		0xB1, // 8: return
	}

	table := NewVariableTable()
	replay(t, table, code)
	table.MergeVariables()
	assertNoOverlap(t, table)

	if table.Len() != 2 {
		t.Fatalf("table has %d records, want 2", table.Len())
	}

	long, ok := table.Lookup(3, 6)
	if !ok || table.Var(long).Type != jvm.Long {
		t.Error("slot 3 does not hold the long record")
	}
	wide, ok := table.Lookup(4, 6)
	if !ok || table.Var(wide).Type != jvm.Int {
		t.Error("slot 4 does not hold the int record")
	}

	// The long occupies slots 3 and 4; the int record pushes the
	// footprint to five slots.
	if got := table.SlotCount(); got != 5 {
		t.Errorf("SlotCount() = %d, want 5", got)
	}
	if _, ok := table.Lookup(5, -1); ok {
		t.Error("found a phantom record beyond the used slots")
	}
}

func TestVariablesReturnsCopy(t *testing.T) {
	table := NewVariableTable()
	table.AddMetadata(0, "this", jvm.ObjectType("Widget"), 0, 10)

	vars := table.Variables()
	vars[0].Name = "mangled"
	if got := table.Var(0).Name; got != "this" {
		t.Errorf("table record renamed to %q through the snapshot", got)
	}
}

func TestVarPanicsOnBadID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Var(99) on an empty table did not panic")
		}
	}()
	NewVariableTable().Var(99)
}

func TestEmptyTable(t *testing.T) {
	table := NewVariableTable()
	if _, ok := table.Lookup(0, 0); ok {
		t.Error("Lookup on an empty table found a record")
	}
	table.UpdateScopes(10)
	table.MergeVariables()
	if got := table.SlotCount(); got != 0 {
		t.Errorf("SlotCount() = %d, want 0", got)
	}
}
