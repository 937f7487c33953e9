// Package batch analyzes collections of method capsules concurrently.
package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/tliron/commonlog"

	"github.com/chazu/javelin/bytecode"
	"github.com/chazu/javelin/capsule"
	"github.com/chazu/javelin/store"
)

var log = commonlog.GetLogger("javelin.batch")

// AnalysisError records one capsule that failed to load or analyze.
type AnalysisError struct {
	Path string
	Err  error
}

func (e AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// AnalysisErrors collects failures across a batch run.
type AnalysisErrors struct {
	Errors []AnalysisError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *AnalysisErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, AnalysisError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *AnalysisErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *AnalysisErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d capsules failed (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for the
// worker count. Capsule analysis mixes file I/O with CPU work.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each capsule finishes, whether it was
// analyzed, served from cache, skipped, or failed.
type ProgressFunc func()

// Options configure a batch run.
type Options struct {
	// Workers caps the pool size. Zero or negative means 2x NumCPU.
	Workers int
	// Store, when set, is consulted by digest before analyzing and
	// updated afterwards. Cache trouble degrades to re-analysis.
	Store *store.Store
	// OnProgress, when set, is called after each capsule.
	OnProgress ProgressFunc
}

// Result is one analyzed method.
type Result struct {
	Path       string
	Digest     [32]byte
	Method     string // class-qualified name
	Descriptor string
	CodeLen    int
	Variables  []bytecode.Variable
	CacheHit   bool
}

// Run expands the argument paths into capsule files and analyzes each
// one. Duplicate capsules are analyzed once. Results come back sorted
// by path; per-file failures are collected instead of aborting the run.
func Run(paths []string, opts Options) ([]Result, *AnalysisErrors) {
	errs := &AnalysisErrors{}
	files := expand(paths, errs)
	if len(files) == 0 {
		if errs.HasErrors() {
			return nil, errs
		}
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	log.Infof("analyzing %d capsules with %d workers", len(files), workers)

	ix := store.NewIndex()
	results := make([]Result, 0, len(files))
	var mu sync.Mutex

	progress := func() {
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, path := range files {
		p.Go(func() {
			defer progress()

			m, digest, err := capsule.Load(path)
			if err != nil {
				errs.Add(path, err)
				return
			}
			if !ix.Add(digest, m) {
				log.Debugf("skipping %s: duplicate capsule", path)
				return
			}

			res, err := analyzeOne(path, m, digest, opts.Store)
			if err != nil {
				errs.Add(path, err)
				return
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}
	p.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// analyzeOne reconstructs one method's variables, going through the
// store when one is attached.
func analyzeOne(path string, m *capsule.Method, digest [32]byte, st *store.Store) (Result, error) {
	if st != nil {
		a, err := st.Get(digest)
		switch {
		case err == nil:
			vars, err := a.Records()
			if err == nil {
				log.Debugf("cache hit for %s", path)
				return Result{
					Path:       path,
					Digest:     digest,
					Method:     a.FullName(),
					Descriptor: a.Descriptor,
					CodeLen:    a.CodeLen,
					Variables:  vars,
					CacheHit:   true,
				}, nil
			}
			log.Errorf("cached analysis for %s is unreadable: %v", path, err)
		case !errors.Is(err, store.ErrNotFound):
			log.Errorf("cache lookup for %s: %v", path, err)
		}
	}

	body, err := m.Body()
	if err != nil {
		return Result{}, err
	}
	table, _, err := body.AnalyzeLocals()
	if err != nil {
		return Result{}, err
	}

	if st != nil {
		if err := st.Put(digest, store.NewAnalysis(body, table)); err != nil {
			log.Errorf("cache update for %s: %v", path, err)
		}
	}

	return Result{
		Path:       path,
		Digest:     digest,
		Method:     body.FullName(),
		Descriptor: body.Descriptor,
		CodeLen:    len(body.Code),
		Variables:  table.Variables(),
	}, nil
}

// expand resolves the argument list into capsule files. Directories
// are walked recursively for capsule-extension files; plain files are
// taken as-is. The list comes back sorted.
func expand(paths []string, errs *AnalysisErrors) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			errs.Add(p, err)
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == capsule.Ext {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			errs.Add(p, err)
		}
	}
	sort.Strings(files)
	return files
}
