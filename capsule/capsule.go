// Package capsule implements the method-capsule wire format: a small
// CBOR container holding one method's bytecode together with the debug
// attributes a class-file extractor found next to it. Capsules are the
// boundary between extraction and analysis; javelin reads them, it does
// not parse class files.
package capsule

// Version is the current wire format version. Decoders reject anything
// else.
const Version = 1

// Ext is the conventional capsule file extension.
const Ext = ".jvc"

// Method is the atomic unit of analysis: one method body plus the
// attributes that matter for variable reconstruction.
type Method struct {
	Version    byte       `cbor:"1,keyasint"`
	ClassName  string     `cbor:"2,keyasint"`
	Name       string     `cbor:"3,keyasint"`
	Descriptor string     `cbor:"4,keyasint"`
	Static     bool       `cbor:"5,keyasint,omitempty"`
	MaxStack   int        `cbor:"6,keyasint"`
	MaxLocals  int        `cbor:"7,keyasint"`
	Code       []byte     `cbor:"8,keyasint"`
	LocalVars  []LocalVar `cbor:"9,keyasint,omitempty"`
	Lines      []Line     `cbor:"10,keyasint,omitempty"`
	Handlers   []Handler  `cbor:"11,keyasint,omitempty"`
	SourceFile string     `cbor:"12,keyasint,omitempty"`
}

// LocalVar is one LocalVariableTable row: where a named, typed local
// lives in the code.
type LocalVar struct {
	Slot       int    `cbor:"1,keyasint"`
	Name       string `cbor:"2,keyasint"`
	Descriptor string `cbor:"3,keyasint"` // field descriptor, e.g. "I" or "Ljava/lang/String;"
	StartPC    int    `cbor:"4,keyasint"`
	Length     int    `cbor:"5,keyasint"`
}

// Line is one LineNumberTable row.
type Line struct {
	StartPC int `cbor:"1,keyasint"`
	Line    int `cbor:"2,keyasint"`
}

// Handler is one exception-table row. An empty CatchType catches
// everything.
type Handler struct {
	StartPC   int    `cbor:"1,keyasint"`
	EndPC     int    `cbor:"2,keyasint"`
	HandlerPC int    `cbor:"3,keyasint"`
	CatchType string `cbor:"4,keyasint,omitempty"`
}

// FullName returns the class-qualified method name.
func (m *Method) FullName() string {
	return m.ClassName + "." + m.Name
}
