// Package engine hosts molecular entities for multi-threaded programs.
//
// The graph, query and view packages are single-threaded. Engine keeps a
// named registry of entities and serializes every access to an entity
// behind its own lock, so independent entities can be worked on in
// parallel.
//
// Basic usage:
//
//	eng, err := engine.Open(engine.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	err = eng.WithEntity("1abc", func(ent *mol.Entity) error {
//	    _, err := engine.BuildBackbone(ent, "A", []string{"GLY", "ALA"}, engine.DefaultGeometry())
//	    return err
//	})
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sanonone/molgraph/pkg/metrics"
	"github.com/sanonone/molgraph/pkg/mol"
	"github.com/sanonone/molgraph/pkg/mol/spatial"
)

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine is closed")
	// ErrNotFound is returned when no entity has the requested name.
	ErrNotFound = errors.New("entity not found")
	// ErrExists is returned when creating an entity under a taken name.
	ErrExists = errors.New("entity already exists")
)

// Options configures an Engine.
type Options struct {
	// CellSize is the spatial index cell edge for new entities, in Å.
	CellSize float64

	// EnableICS turns internal coordinates on for new entities.
	EnableICS bool

	// MaintenanceInterval defines how often pending coordinate edits are
	// synchronized in the background. Set to 0 to disable.
	MaintenanceInterval time.Duration

	// Logger receives lifecycle messages. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns a standard configuration.
//
// Defaults:
//   - CellSize: spatial.DefaultCellSize
//   - EnableICS: true
//   - MaintenanceInterval: disabled
func DefaultOptions() Options {
	return Options{
		CellSize:  spatial.DefaultCellSize,
		EnableICS: true,
	}
}

// slot guards one entity.
type slot struct {
	mu  sync.Mutex
	ent *mol.Entity
}

// Engine is a registry of named entities.
//
// Use Open() to create an Engine and Close() to shut it down.
type Engine struct {
	opts Options
	log  *slog.Logger

	// mu guards the registry map only; entity access goes through slot.mu.
	mu       sync.RWMutex
	entities map[string]*slot

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open creates an engine and starts background maintenance if configured.
func Open(opts Options) (*Engine, error) {
	if opts.CellSize < 0 {
		return nil, fmt.Errorf("invalid cell size %g", opts.CellSize)
	}
	if opts.CellSize == 0 {
		opts.CellSize = spatial.DefaultCellSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		opts:     opts,
		log:      log,
		entities: make(map[string]*slot),
		closed:   make(chan struct{}),
	}
	if opts.MaintenanceInterval > 0 {
		e.wg.Add(1)
		go e.backgroundTasks()
	}
	log.Info("[Engine] opened", "cell_size", opts.CellSize, "ics", opts.EnableICS)
	return e, nil
}

// Close stops background maintenance and destroys every entity, notifying
// their observers. Calling Close more than once is safe.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
		e.wg.Wait()

		e.mu.Lock()
		defer e.mu.Unlock()
		for name, s := range e.entities {
			s.mu.Lock()
			s.ent.Destroy()
			s.mu.Unlock()
			delete(e.entities, name)
			metrics.EntitiesOpen.Dec()
		}
		e.log.Info("[Engine] closed")
	})
	return nil
}

func (e *Engine) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}

// backgroundTasks periodically synchronizes coordinate systems.
func (e *Engine) backgroundTasks() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.closed:
			return
		case <-ticker.C:
			e.Sync()
		}
	}
}

// Sync flushes pending internal coordinate edits to positions and folds
// pending position edits into internal coordinates, for every entity.
func (e *Engine) Sync() {
	for _, name := range e.Entities() {
		err := e.WithEntity(name, func(ent *mol.Entity) error {
			ent.UpdateXCS()
			return ent.UpdateICS()
		})
		if err != nil && !errors.Is(err, ErrNotFound) {
			// Log error but continue (background task)
			e.log.Error("[Engine] sync failed", "entity", name, "error", err)
		}
	}
}

// CreateEntity registers a new, empty entity.
func (e *Engine) CreateEntity(name string) error {
	if e.isClosed() {
		return ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.entities[name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	ent := mol.NewEntityWithOptions(name, mol.Options{CellSize: e.opts.CellSize, Logger: e.log})
	if e.opts.EnableICS {
		if err := ent.EnableICS(); err != nil {
			return fmt.Errorf("enable internal coordinates: %w", err)
		}
	}
	e.entities[name] = &slot{ent: ent}
	metrics.EntitiesOpen.Inc()
	e.log.Info("[Engine] entity created", "name", name, "id", ent.ID())
	return nil
}

// DeleteEntity destroys and unregisters an entity.
func (e *Engine) DeleteEntity(name string) error {
	e.mu.Lock()
	s, ok := e.entities[name]
	if ok {
		delete(e.entities, name)
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.mu.Lock()
	s.ent.Destroy()
	s.mu.Unlock()
	metrics.EntitiesOpen.Dec()
	e.log.Info("[Engine] entity deleted", "name", name)
	return nil
}

// Entities returns the registered names in sorted order.
func (e *Engine) Entities() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.entities))
	for name := range e.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) lookup(name string) (*slot, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}
	e.mu.RLock()
	s, ok := e.entities[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s, nil
}

// WithEntity runs fn with exclusive access to the named entity. Handles,
// views and query states obtained inside fn must not be used after it
// returns.
//
// Reads take the same lock as writes: even a read may bring a stale
// coordinate system or spatial index up to date.
func (e *Engine) WithEntity(name string, fn func(ent *mol.Entity) error) error {
	s, err := e.lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ent.IsDestroyed() {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fn(s.ent)
}
