package bytecode

import (
	"fmt"

	"github.com/chazu/javelin/jvm"
)

// ----------------------------------------------------------------------------
// Method bodies
// ----------------------------------------------------------------------------

// LocalVarEntry is one row of a method's LocalVariableTable debug
// attribute: slot, source name, declared type, and the covered code
// range as start plus length.
type LocalVarEntry struct {
	Slot    int
	Name    string
	Type    *jvm.TypeRef
	StartPC int
	Length  int
}

// LineEntry maps a code offset to a source line.
type LineEntry struct {
	StartPC int
	Line    int
}

// Handler is one exception-table entry. Offsets are code offsets; an
// empty CatchType catches everything (finally blocks).
type Handler struct {
	StartPC   int
	EndPC     int
	HandlerPC int
	CatchType string
}

// Body is one method's code attribute together with the identity and
// debug metadata the reconstruction needs.
type Body struct {
	ClassName  string
	MethodName string
	Descriptor string
	MaxStack   int
	MaxLocals  int
	Code       []byte
	Metadata   []LocalVarEntry
	Lines      []LineEntry
	Handlers   []Handler
}

// FullName returns the class-qualified method name for messages.
func (b *Body) FullName() string {
	return b.ClassName + "." + b.MethodName
}

// ArgCount returns the number of argument slots the method receives,
// counting the receiver for instance methods and wide types as two.
func (b *Body) ArgCount(static bool) (int, error) {
	params, _, err := jvm.ParseMethodDescriptor(b.Descriptor)
	if err != nil {
		return 0, err
	}
	n := 0
	if !static {
		n = 1
	}
	for _, p := range params {
		n += p.SlotSize()
	}
	return n, nil
}

// AnalyzeLocals rebuilds the method's local variables. It seeds a
// table with the debug metadata, replays every slot access the scanner
// finds in offset order, then closes open scopes at the end of the
// code and merges fragmented records. The returned instructions are
// the scan used for the replay, ready for rendering.
func (b *Body) AnalyzeLocals() (*VariableTable, []Instruction, error) {
	insts, err := Scan(b.Code)
	if err != nil {
		return nil, nil, fmt.Errorf("bytecode: scanning %s: %w", b.FullName(), err)
	}

	table := NewVariableTable()
	for _, entry := range b.Metadata {
		table.AddMetadata(entry.Slot, entry.Name, entry.Type, entry.StartPC, entry.Length)
	}
	for _, inst := range insts {
		if inst.Slot >= 0 {
			table.Ensure(inst)
		}
	}
	table.UpdateScopes(len(b.Code))
	table.MergeVariables()

	return table, insts, nil
}
