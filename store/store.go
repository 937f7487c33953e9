// Package store persists reconstruction results keyed by capsule
// digest, so repeated batch runs skip methods they have already
// analyzed.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/javelin/capsule"
)

// ErrNotFound indicates no analysis exists for the requested digest.
var ErrNotFound = errors.New("store: analysis not found")

var log = commonlog.GetLogger("javelin.store")

// Store is a sqlite-backed analysis cache. Safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the analysis cache at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	// Wait out writers from other processes instead of failing.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		digest TEXT PRIMARY KEY,
		class_name TEXT NOT NULL,
		method_name TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		code_len INTEGER NOT NULL,
		variables BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create table: %w", err)
	}

	log.Debugf("opened analysis cache %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores an analysis under its capsule digest, replacing any
// previous row.
func (s *Store) Put(digest [32]byte, a *Analysis) error {
	blob, err := cborEncMode.Marshal(a.Variables)
	if err != nil {
		return fmt.Errorf("store: encode variables for %s: %w", a.FullName(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO analyses
		 (digest, class_name, method_name, descriptor, code_len, variables)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		capsule.DigestString(digest), a.ClassName, a.MethodName,
		a.Descriptor, a.CodeLen, blob,
	)
	if err != nil {
		return fmt.Errorf("store: put %s: %w", a.FullName(), err)
	}
	return nil
}

// Get retrieves the analysis stored under a digest. Missing rows yield
// ErrNotFound.
func (s *Store) Get(digest [32]byte) (*Analysis, error) {
	var a Analysis
	var blob []byte

	err := s.db.QueryRow(
		`SELECT class_name, method_name, descriptor, code_len, variables
		 FROM analyses WHERE digest = ?`,
		capsule.DigestString(digest),
	).Scan(&a.ClassName, &a.MethodName, &a.Descriptor, &a.CodeLen, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get analysis: %w", err)
	}

	if err := cbor.Unmarshal(blob, &a.Variables); err != nil {
		return nil, fmt.Errorf("store: decode variables for %s: %w", a.FullName(), err)
	}
	return &a, nil
}

// Count returns the number of cached analyses.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM analyses").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
