package capsule

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// cborEncMode holds CBOR encoding options with canonical mode, so the
// same method always encodes to the same bytes and digests are stable.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("capsule: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Method to canonical CBOR bytes.
func Marshal(m *Method) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// Unmarshal deserializes a Method from CBOR bytes and checks the format
// version.
func Unmarshal(data []byte) (*Method, error) {
	var m Method
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("capsule: unmarshal method: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("capsule: unsupported format version %d", m.Version)
	}
	return &m, nil
}

// Load reads one capsule file. The returned digest is the content
// digest of the encoded bytes, usable as a store key.
func Load(path string) (*Method, [32]byte, error) {
	var zero [32]byte

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zero, fmt.Errorf("capsule: load: %w", err)
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, zero, fmt.Errorf("capsule: load %s: %w", path, err)
	}
	return m, Digest(data), nil
}

// Save writes the method as a capsule file, stamping the current format
// version on it.
func Save(path string, m *Method) error {
	m.Version = Version
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("capsule: marshal method: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("capsule: save: %w", err)
	}
	return nil
}

// Digest returns the blake3 content digest of an encoded capsule.
func Digest(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// DigestString renders a digest in the hex form used for store keys and
// messages.
func DigestString(d [32]byte) string {
	return hex.EncodeToString(d[:])
}
