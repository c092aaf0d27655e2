package rematch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrPatternConflict = errors.New("pattern identity already registered with a different source")
	ErrNilEngine       = errors.New("pattern registry has no engine")
)

// Observer is notified of pattern registry activity. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	// PatternCompiled is called once per pattern identity, after its
	// compilation finished. err is non-nil if compilation failed.
	PatternCompiled(id PatternID, took time.Duration, err error)
	// PatternReused is called each time an already built matcher is
	// handed out again.
	PatternReused(id PatternID)
}

// RegistryStats is a snapshot of the registry's instrumentation counters.
type RegistryStats struct {
	Builds  uint64 // Number of compilations performed
	Hits    uint64 // Number of lookups served by an existing entry
	Entries int    // Number of pattern identities known
}

// PatternRegistry compiles each pattern identity into a Matcher at most
// once and shares the result for the lifetime of the registry.
//
// Lookups of a built matcher take no lock. Concurrent first use of the
// same identity compiles exactly once; every caller observes the same
// Matcher (or the same *CompileError).
type PatternRegistry struct {
	engine   Engine
	observer Observer
	cache    sync.Map // map[PatternID]*registryEntry

	builds atomic.Uint64
	hits   atomic.Uint64
}

// registryEntry is a write-once cell holding the compiled matcher
type registryEntry struct {
	source  string
	once    sync.Once
	done    atomic.Bool
	matcher Matcher
	err     error
}

type PatternRegistryOpts struct {
	Engine   Engine   // Defaults to StdEngine
	Observer Observer // Optional
}

// NewPatternRegistry creates an empty registry.
func NewPatternRegistry(opts PatternRegistryOpts) *PatternRegistry {
	engine := opts.Engine
	if engine == nil {
		engine = NewStdEngine()
	}
	return &PatternRegistry{
		engine:   engine,
		observer: opts.Observer,
	}
}

// Engine returns the engine patterns are compiled with.
func (pr *PatternRegistry) Engine() Engine {
	return pr.engine
}

// GetOrBuild returns the Matcher for pattern, compiling it on first use.
//
// A compilation failure is remembered and returned as the same
// *CompileError on every later call; it is never retried. A pattern whose
// identity is already known with a different source yields
// ErrPatternConflict.
func (pr *PatternRegistry) GetOrBuild(pattern Pattern) (Matcher, error) {
	if pr.engine == nil {
		return nil, ErrNilEngine
	}

	// Fast path: already published
	if v, ok := pr.cache.Load(pattern.ID); ok {
		return pr.reuse(v.(*registryEntry), pattern)
	}

	newEntry := &registryEntry{source: pattern.Source}
	actual, loaded := pr.cache.LoadOrStore(pattern.ID, newEntry)
	entry := actual.(*registryEntry)
	if loaded {
		return pr.reuse(entry, pattern)
	}

	entry.once.Do(func() { pr.build(entry, pattern) })
	return entry.matcher, entry.err
}

// reuse waits for the entry to be built (a no-op once published) and
// hands it out.
func (pr *PatternRegistry) reuse(entry *registryEntry, pattern Pattern) (Matcher, error) {
	if entry.source != pattern.Source {
		return nil, fmt.Errorf(
			"%w: %s (%q vs %q)",
			ErrPatternConflict, pattern.ID, entry.source, pattern.Source,
		)
	}

	entry.once.Do(func() { pr.build(entry, pattern) })

	pr.hits.Add(1)
	if pr.observer != nil {
		pr.observer.PatternReused(pattern.ID)
	}
	return entry.matcher, entry.err
}

func (pr *PatternRegistry) build(entry *registryEntry, pattern Pattern) {
	start := time.Now()
	matcher, err := pr.engine.Compile(pattern.Source)
	took := time.Since(start)

	pr.builds.Add(1)
	if err != nil {
		entry.err = &CompileError{
			Pattern: pattern.ID,
			Source:  pattern.Source,
			Err:     err,
		}
	} else {
		entry.matcher = matcher
	}

	entry.done.Store(true)

	if pr.observer != nil {
		pr.observer.PatternCompiled(pattern.ID, took, entry.err)
	}
}

// Lookup returns the built matcher for id without compiling anything.
func (pr *PatternRegistry) Lookup(id PatternID) (Matcher, bool) {
	v, ok := pr.cache.Load(id)
	if !ok {
		return nil, false
	}
	entry := v.(*registryEntry)
	if !entry.done.Load() || entry.matcher == nil {
		return nil, false
	}
	return entry.matcher, true
}

// Stats returns the current instrumentation counters.
func (pr *PatternRegistry) Stats() RegistryStats {
	entries := 0
	pr.cache.Range(func(_, _ any) bool {
		entries++
		return true
	})
	return RegistryStats{
		Builds:  pr.builds.Load(),
		Hits:    pr.hits.Load(),
		Entries: entries,
	}
}

///////////////////////////////////////////////////////////////////////////////
// Default Registry
///////////////////////////////////////////////////////////////////////////////

var _defaultPatternRegistry = NewPatternRegistry(PatternRegistryOpts{})

// DefaultPatternRegistry returns the process-wide registry used when no
// registry is configured explicitly.
func DefaultPatternRegistry() *PatternRegistry {
	return _defaultPatternRegistry
}

// Observers fans registry notifications out to several observers.
type Observers []Observer

func (obs Observers) PatternCompiled(id PatternID, took time.Duration, err error) {
	for _, o := range obs {
		o.PatternCompiled(id, took, err)
	}
}

func (obs Observers) PatternReused(id PatternID) {
	for _, o := range obs {
		o.PatternReused(id)
	}
}
