package bytecode

import (
	"errors"
	"fmt"

	"github.com/chazu/javelin/jvm"
)

// ScopeUnresolved marks a scope bound that has not been closed yet.
// A record keeps it until a later same-slot record, the end of the
// method, or a merge resolves it.
const ScopeUnresolved = -1

// ErrVariableNotFound is returned by Find when no record covers the
// requested slot and offset. Hitting it means the discovery replay and
// the lookup disagree about the method, which is a caller bug rather
// than bad input.
var ErrVariableNotFound = errors.New("variable not found")

// Variable is one reconstructed local variable. Its scope is the
// half-open offset interval [ScopeStart, ScopeEnd). Records born from
// debug metadata keep their name and type verbatim; records inferred
// from slot accesses carry a synthetic $slot_offset$ name until a
// merge improves on it.
type Variable struct {
	Slot         int
	Name         string
	Type         *jvm.TypeRef
	ScopeStart   int
	ScopeEnd     int
	FromMetadata bool
	TypeKnown    bool
}

// Covers returns true when the record's scope contains offset. An
// unresolved end is open to the right.
func (v *Variable) Covers(offset int) bool {
	return v.ScopeStart <= offset && (v.ScopeEnd == ScopeUnresolved || v.ScopeEnd > offset)
}

// Size returns the number of slots the variable occupies.
func (v *Variable) Size() int {
	return v.Type.SlotSize()
}

// VarID identifies a record inside one VariableTable. IDs index the
// table's backing store: they remain valid across scope updates but
// not across MergeVariables, which removes and renumbers records.
type VarID int

// VariableTable rebuilds the local variables of a single method. It
// owns all records; callers hold VarIDs and borrow records through
// Var. A table goes through three phases: preloading metadata entries,
// replaying slot accesses through Ensure, and the UpdateScopes and
// MergeVariables passes. After that it serves read-only lookups.
type VariableTable struct {
	vars []Variable
}

// NewVariableTable returns an empty table.
func NewVariableTable() *VariableTable {
	return &VariableTable{}
}

// Len returns the number of records in the table.
func (t *VariableTable) Len() int {
	return len(t.vars)
}

// Var borrows the record for id. The pointer stays valid until the
// next mutating call on the table.
func (t *VariableTable) Var(id VarID) *Variable {
	if id < 0 || int(id) >= len(t.vars) {
		panic("bytecode: variable id out of range")
	}
	return &t.vars[id]
}

// Variables returns a copy of the records in table order.
func (t *VariableTable) Variables() []Variable {
	out := make([]Variable, len(t.vars))
	copy(out, t.vars)
	return out
}

// AddMetadata preloads one debug-metadata entry. Metadata records are
// authoritative: their names and types survive every later pass.
func (t *VariableTable) AddMetadata(slot int, name string, typ *jvm.TypeRef, scopeStart, scopeLength int) VarID {
	if slot < 0 {
		panic("bytecode: negative variable slot")
	}
	t.vars = append(t.vars, Variable{
		Slot:         slot,
		Name:         name,
		Type:         typ,
		ScopeStart:   scopeStart,
		ScopeEnd:     scopeStart + scopeLength,
		FromMetadata: true,
		TypeKnown:    true,
	})
	return VarID(len(t.vars) - 1)
}

// Lookup returns the record for slot whose scope covers offset,
// preferring the latest-starting one when several match. A negative
// offset ignores scopes entirely. Lookup cannot fail; the bool reports
// whether any record matched.
func (t *VariableTable) Lookup(slot, offset int) (VarID, bool) {
	id := VarID(-1)
	for i := range t.vars {
		v := &t.vars[i]
		if v.Slot != slot {
			continue
		}
		if offset >= 0 && !v.Covers(offset) {
			continue
		}
		if id < 0 || v.ScopeStart > t.vars[id].ScopeStart {
			id = VarID(i)
		}
	}
	return id, id >= 0
}

// Find is the strict variant of Lookup, for call sites that already
// replayed the method and therefore know the record must exist.
func (t *VariableTable) Find(slot, offset int) (VarID, error) {
	id, ok := t.Lookup(slot, offset)
	if !ok {
		return 0, fmt.Errorf("bytecode: find variable at slot %d offset %d: %w", slot, offset, ErrVariableNotFound)
	}
	return id, nil
}

// Resolve finds the record an instruction's slot access refers to.
// A store takes effect after its own instruction, so a miss at the
// opcode's offset retries at the post-store offset.
func (t *VariableTable) Resolve(inst Instruction) (VarID, bool) {
	id, ok := t.Lookup(inst.Slot, inst.Offset)
	if !ok && inst.Op.IsStore() {
		id, ok = t.Lookup(inst.Slot, inst.Offset+inst.EncodedLen())
	}
	return id, ok
}

// Ensure resolves one slot access discovered during replay: it reuses
// the covering record when the access agrees with it, and otherwise
// truncates that record and starts a fresh one.
//
// A store takes effect after the instruction, so its record begins at
// the following offset; loads see the slot as it already is. Reuse is
// allowed when the inferred category is the generic object category
// and the record holds any reference type, or when the types are
// compatible in the direction of the access (store: the record
// receives the inferred value; load: the inferred category receives
// the record's value).
func (t *VariableTable) Ensure(inst Instruction) VarID {
	if inst.Slot < 0 {
		panic("bytecode: Ensure on an instruction without a local access")
	}

	varType := inst.Op.LocalKind()

	effective := inst.Offset
	if inst.Op.IsStore() {
		effective += inst.EncodedLen()
	}

	if id, ok := t.Lookup(inst.Slot, effective); ok {
		v := t.Var(id)
		target, source := varType, v.Type
		if inst.Op.IsStore() {
			target, source = v.Type, varType
		}
		if (varType == jvm.Object && !v.Type.IsPrimitive()) || jvm.Compatible(target, source) {
			return id
		}
		// The access contradicts the covering record: end that record
		// just before this instruction.
		v.ScopeEnd = inst.Offset - 1
	}

	t.vars = append(t.vars, Variable{
		Slot:       inst.Slot,
		Name:       fmt.Sprintf("$%d_%d$", inst.Slot, effective),
		Type:       varType,
		ScopeStart: effective,
		ScopeEnd:   ScopeUnresolved,
		TypeKnown:  varType != jvm.Object,
	})
	id := VarID(len(t.vars) - 1)
	t.UpdateScopes(ScopeUnresolved)
	return id
}

// UpdateScopes closes unresolved scope ends. Every open record closes
// against the nearest same-slot record that starts later; closing one
// record can expose another that should close against the same
// successor, so the pass repeats until nothing changes. Records still
// open afterwards end at codeSize. A negative codeSize leaves them
// open for a later pass.
func (t *VariableTable) UpdateScopes(codeSize int) {
	for modified := true; modified; {
		modified = false
		for i := range t.vars {
			v := &t.vars[i]
			if v.ScopeEnd != ScopeUnresolved {
				continue
			}
			for j := range t.vars {
				if i == j {
					continue
				}
				o := &t.vars[j]
				if o.Slot != v.Slot || o.ScopeStart <= v.ScopeStart {
					continue
				}
				if v.ScopeEnd == ScopeUnresolved || o.ScopeStart < v.ScopeEnd {
					v.ScopeEnd = o.ScopeStart
					modified = true
				}
			}
		}
	}

	if codeSize < 0 {
		return
	}
	for i := range t.vars {
		if t.vars[i].ScopeEnd == ScopeUnresolved {
			t.vars[i].ScopeEnd = codeSize
		}
	}
}

// SlotCount returns the locals footprint of the method: the highest
// slot index any record reaches, counting wide types as two slots.
func (t *VariableTable) SlotCount() int {
	count := 0
	for i := range t.vars {
		if end := t.vars[i].Slot + t.vars[i].Size(); end > count {
			count = end
		}
	}
	return count
}
