package bytecode

import (
	"sort"

	"github.com/chazu/javelin/jvm"
)

// MergeVariables coalesces same-slot records that share a name and
// hold compatible types, widening synthetic record types along the
// way. Records are visited in scope order; each one absorbs the run of
// later records with its slot and name, stopping at the first
// same-slot record named differently.
//
// Compatibility is checked pairwise against the type the anchor record
// had when its run began, in either direction. The relation is not
// transitive, so the outcome depends on scan order; that is the
// intended behavior, not an accident to optimize away.
func (t *VariableTable) MergeVariables() {
	if len(t.vars) < 2 {
		return
	}

	// Visit records in scope order; ties keep discovery order.
	order := make([]int, len(t.vars))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.vars[order[a]].ScopeStart < t.vars[order[b]].ScopeStart
	})

	removed := make([]bool, len(t.vars))
	sharers := make([]int, 0, 4)

	for oi, i := range order {
		if removed[i] {
			continue
		}
		v := &t.vars[i]

		sharers = sharers[:0]
		for _, j := range order[oi+1:] {
			if removed[j] {
				continue
			}
			o := &t.vars[j]
			if o.Slot != v.Slot {
				continue
			}
			if o.Name != v.Name {
				break
			}
			sharers = append(sharers, j)
		}
		if len(sharers) == 0 {
			continue
		}

		// Every sharer compares against the type v had when its run
		// began, even after a widen below replaces it.
		vtype := v.Type
		minStart, maxEnd := v.ScopeStart, v.ScopeEnd
		merged := false

		for _, j := range sharers {
			s := &t.vars[j]

			// Metadata names are authoritative; never absorb across a
			// name change.
			if s.FromMetadata && s.Name != v.Name {
				continue
			}

			forward := jvm.Compatible(vtype, s.Type)
			if !forward && !jvm.Compatible(s.Type, vtype) {
				continue
			}

			if s.ScopeStart < minStart {
				minStart = s.ScopeStart
			}
			if scopeEndBefore(maxEnd, s.ScopeEnd) {
				maxEnd = s.ScopeEnd
			}
			removed[j] = true
			merged = true

			if v.FromMetadata {
				continue
			}
			if !forward {
				// The sharer's type subsumes the anchor's; adopt it.
				v.Type = s.Type
			}
		}

		if merged {
			v.ScopeStart = minStart
			v.ScopeEnd = maxEnd
		}
	}

	live := t.vars[:0]
	for i := range t.vars {
		if !removed[i] {
			live = append(live, t.vars[i])
		}
	}
	t.vars = live
}

// scopeEndBefore orders scope ends with ScopeUnresolved as the
// greatest value, so an unbounded record stays unbounded after a merge.
func scopeEndBefore(a, b int) bool {
	if a == ScopeUnresolved {
		return false
	}
	if b == ScopeUnresolved {
		return true
	}
	return a < b
}
