// Package routing implements the model registry and the deterministic
// selection algorithm that picks a model for a task: hard capability
// filtering, user preference, catalog default, then tier ranking.
//
// The registry publishes immutable snapshots behind an atomic pointer.
// Readers always observe a complete catalog; reloads swap the whole
// snapshot or leave the previous one in place.
package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

var (
	// ErrNoDefaultAvailable indicates no enabled model carries the
	// default flag. Selection treats this as a soft condition; only
	// direct Default() lookups surface it.
	ErrNoDefaultAvailable = errors.New("no default model available")
)

// DefaultRepair records one default-flag conflict resolved during a
// snapshot build.
type DefaultRepair struct {
	// Kept is the id that retained the default flag.
	Kept string

	// Cleared lists the ids whose default flag was dropped.
	Cleared []string
}

// Snapshot is an immutable view of the model catalog. Iteration order is
// load order, which makes downstream tie-breaks deterministic.
type Snapshot struct {
	models    []ModelDescriptor
	byID      map[string]int
	defaultID string
	repair    *DefaultRepair
	version   uint64
	loadedAt  time.Time
}

// NewSnapshot validates the given descriptors and builds a snapshot.
// The whole batch is rejected on the first validation failure: duplicate
// ids, negative numeric fields, or unknown tiers. A conflict where more
// than one enabled model claims the default flag is not fatal; the most
// recently updated claimant keeps the flag (later load position wins a
// timestamp tie) and the repair is recorded on the snapshot.
func NewSnapshot(models []ModelDescriptor) (*Snapshot, error) {
	snap := &Snapshot{
		models:   make([]ModelDescriptor, len(models)),
		byID:     make(map[string]int, len(models)),
		loadedAt: time.Now(),
	}
	copy(snap.models, models)

	for i := range snap.models {
		m := &snap.models[i]
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("model %q: %w", m.ID, err)
		}
		if _, dup := snap.byID[m.ID]; dup {
			return nil, &pkgerrors.ValidationError{
				Field:      "id",
				Message:    fmt.Sprintf("duplicate model id %q", m.ID),
				Suggestion: "Model ids must be unique within the catalog",
			}
		}
		snap.byID[m.ID] = i
	}

	snap.resolveDefault()
	return snap, nil
}

// resolveDefault enforces default uniqueness among enabled models.
// Disabled models may keep a stale default flag; they simply never win.
func (s *Snapshot) resolveDefault() {
	winner := -1
	for i := range s.models {
		m := &s.models[i]
		if !m.Enabled || !m.Default {
			continue
		}
		// Equal timestamps fall through to the later entry.
		if winner == -1 || !m.UpdatedAt.Before(s.models[winner].UpdatedAt) {
			winner = i
		}
	}
	if winner == -1 {
		return
	}

	s.defaultID = s.models[winner].ID
	var cleared []string
	for i := range s.models {
		m := &s.models[i]
		if i != winner && m.Enabled && m.Default {
			m.Default = false
			cleared = append(cleared, m.ID)
		}
	}
	if len(cleared) > 0 {
		s.repair = &DefaultRepair{Kept: s.defaultID, Cleared: cleared}
	}
}

// Len returns the number of models in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.models)
}

// Models returns all descriptors in load order.
func (s *Snapshot) Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(s.models))
	copy(out, s.models)
	return out
}

// Enabled returns the enabled descriptors in load order.
func (s *Snapshot) Enabled() []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range s.models {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

// Get returns the descriptor with the given id.
func (s *Snapshot) Get(id string) (ModelDescriptor, bool) {
	i, ok := s.byID[id]
	if !ok {
		return ModelDescriptor{}, false
	}
	return s.models[i], true
}

// Default returns the enabled default model, if any.
func (s *Snapshot) Default() (ModelDescriptor, bool) {
	if s.defaultID == "" {
		return ModelDescriptor{}, false
	}
	return s.Get(s.defaultID)
}

// DefaultID returns the id of the enabled default model, or "" when no
// enabled model carries the flag.
func (s *Snapshot) DefaultID() string {
	return s.defaultID
}

// Repair returns the default-flag repair applied during the build, or
// nil when the catalog was consistent.
func (s *Snapshot) Repair() *DefaultRepair {
	return s.repair
}

// Version returns the snapshot's registry version. Snapshots built
// outside a registry have version 0.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Registry holds the current catalog snapshot and swaps it atomically on
// reload. Reads never block and never observe a partially loaded
// catalog. Load is safe for concurrent use, though in practice a single
// reload path (watcher or admin endpoint) drives it.
type Registry struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// NewRegistry creates a registry holding an empty snapshot at version 0.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	empty := &Snapshot{byID: map[string]int{}, loadedAt: time.Now()}
	r.current.Store(empty)
	return r
}

// Load validates the descriptors, builds a new snapshot, and publishes
// it. On validation failure the previous snapshot stays in place and
// keeps serving. Default-flag repairs are logged as warnings.
func (r *Registry) Load(models []ModelDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := NewSnapshot(models)
	if err != nil {
		recordRegistryLoad("rejected")
		return fmt.Errorf("loading catalog: %w", err)
	}
	snap.version = r.current.Load().version + 1

	if rep := snap.repair; rep != nil {
		recordDefaultRepair()
		r.logger.Warn("repaired conflicting default flags",
			slog.String("kept", rep.Kept),
			slog.Any("cleared", rep.Cleared),
			slog.Uint64("snapshot_version", snap.version),
		)
	}

	r.current.Store(snap)
	recordRegistryLoad("published")
	setSnapshotGauges(snap)

	r.logger.Info("catalog snapshot published",
		slog.Int("models", snap.Len()),
		slog.Int("enabled", len(snap.Enabled())),
		slog.String("default", snap.defaultID),
		slog.Uint64("snapshot_version", snap.version),
	)
	return nil
}

// Snapshot returns the current snapshot. Never nil.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Get returns the descriptor with the given id from the current
// snapshot. Returns NotFoundError if the model doesn't exist.
func (r *Registry) Get(id string) (ModelDescriptor, error) {
	m, ok := r.Snapshot().Get(id)
	if !ok {
		return ModelDescriptor{}, &pkgerrors.NotFoundError{
			Resource: "model",
			ID:       id,
		}
	}
	return m, nil
}

// Default returns the enabled default model from the current snapshot.
// Returns ErrNoDefaultAvailable if no enabled model carries the flag.
func (r *Registry) Default() (ModelDescriptor, error) {
	m, ok := r.Snapshot().Default()
	if !ok {
		return ModelDescriptor{}, ErrNoDefaultAvailable
	}
	return m, nil
}

// Enabled returns the enabled descriptors from the current snapshot in
// load order.
func (r *Registry) Enabled() []ModelDescriptor {
	return r.Snapshot().Enabled()
}

// Version returns the current snapshot version. Starts at 0 and
// increments on every successful Load.
func (r *Registry) Version() uint64 {
	return r.Snapshot().version
}
