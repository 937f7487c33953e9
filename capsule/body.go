package capsule

import (
	"fmt"

	"github.com/chazu/javelin/bytecode"
	"github.com/chazu/javelin/jvm"
)

// Body converts the capsule into the method body the analyzer consumes,
// resolving the debug-table descriptors into type references.
func (m *Method) Body() (*bytecode.Body, error) {
	body := &bytecode.Body{
		ClassName:  m.ClassName,
		MethodName: m.Name,
		Descriptor: m.Descriptor,
		MaxStack:   m.MaxStack,
		MaxLocals:  m.MaxLocals,
		Code:       m.Code,
	}

	for _, lv := range m.LocalVars {
		typ, err := jvm.ParseDescriptor(lv.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("capsule: local %q in %s: %w", lv.Name, m.FullName(), err)
		}
		body.Metadata = append(body.Metadata, bytecode.LocalVarEntry{
			Slot:    lv.Slot,
			Name:    lv.Name,
			Type:    typ,
			StartPC: lv.StartPC,
			Length:  lv.Length,
		})
	}
	for _, ln := range m.Lines {
		body.Lines = append(body.Lines, bytecode.LineEntry{StartPC: ln.StartPC, Line: ln.Line})
	}
	for _, h := range m.Handlers {
		body.Handlers = append(body.Handlers, bytecode.Handler{
			StartPC:   h.StartPC,
			EndPC:     h.EndPC,
			HandlerPC: h.HandlerPC,
			CatchType: h.CatchType,
		})
	}
	return body, nil
}
