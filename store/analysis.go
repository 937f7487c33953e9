package store

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/javelin/bytecode"
	"github.com/chazu/javelin/jvm"
)

// cborEncMode mirrors the capsule wire settings so analysis blobs are
// canonical and byte-stable.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// VarRecord is the persisted form of one reconstructed variable. The
// type is stored as a JVM descriptor.
type VarRecord struct {
	Slot         int    `cbor:"1,keyasint"`
	Name         string `cbor:"2,keyasint"`
	Type         string `cbor:"3,keyasint"`
	ScopeStart   int    `cbor:"4,keyasint"`
	ScopeEnd     int    `cbor:"5,keyasint"`
	FromMetadata bool   `cbor:"6,keyasint,omitempty"`
	TypeKnown    bool   `cbor:"7,keyasint,omitempty"`
}

// Analysis is one method's reconstruction result: identity, code size,
// and the post-merge variable records.
type Analysis struct {
	ClassName  string
	MethodName string
	Descriptor string
	CodeLen    int
	Variables  []VarRecord
}

// NewAnalysis captures a finished reconstruction for persistence.
func NewAnalysis(body *bytecode.Body, table *bytecode.VariableTable) *Analysis {
	vars := table.Variables()
	recs := make([]VarRecord, len(vars))
	for i, v := range vars {
		recs[i] = VarRecord{
			Slot:         v.Slot,
			Name:         v.Name,
			Type:         v.Type.Descriptor(),
			ScopeStart:   v.ScopeStart,
			ScopeEnd:     v.ScopeEnd,
			FromMetadata: v.FromMetadata,
			TypeKnown:    v.TypeKnown,
		}
	}
	return &Analysis{
		ClassName:  body.ClassName,
		MethodName: body.MethodName,
		Descriptor: body.Descriptor,
		CodeLen:    len(body.Code),
		Variables:  recs,
	}
}

// FullName returns the class-qualified method name for messages.
func (a *Analysis) FullName() string {
	return a.ClassName + "." + a.MethodName
}

// Records converts the persisted rows back into variable records,
// parsing the stored type descriptors.
func (a *Analysis) Records() ([]bytecode.Variable, error) {
	out := make([]bytecode.Variable, len(a.Variables))
	for i, r := range a.Variables {
		t, err := jvm.ParseDescriptor(r.Type)
		if err != nil {
			return nil, fmt.Errorf("store: variable %q in %s: %w", r.Name, a.FullName(), err)
		}
		out[i] = bytecode.Variable{
			Slot:         r.Slot,
			Name:         r.Name,
			Type:         t,
			ScopeStart:   r.ScopeStart,
			ScopeEnd:     r.ScopeEnd,
			FromMetadata: r.FromMetadata,
			TypeKnown:    r.TypeKnown,
		}
	}
	return out, nil
}
