// Package entries keeps the signed-in user's care events in memory, newest
// first, and writes every change through to the remote store.
package entries

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

//go:generate mockgen -source=manager.go -destination=mocks/store_mock.go -package=mocks

// Store is the remote side of every mutation.
type Store interface {
	InsertEntry(ctx context.Context, ownerID, observation string, payload internal.Payload) (*internal.Entry, error)
	UpdateEntry(ctx context.Context, id string, changes internal.EntryChanges) (*internal.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// Mirror receives the full sequence after each successful mutation.
type Mirror interface {
	SaveEntries(ownerID string, entries []internal.Entry)
}

// ErrDetached is returned for calls that complete after Close.
var ErrDetached = errors.New("entry manager closed")

type Manager struct {
	ownerID string
	store   Store
	mirror  Mirror
	logger  internal.Logger

	mu      sync.RWMutex
	entries []internal.Entry
	closed  bool
}

type Option func(*Manager)

func WithMirror(m Mirror) Option {
	return func(mg *Manager) { mg.mirror = m }
}

func WithLogger(l internal.Logger) Option {
	return func(mg *Manager) { mg.logger = l }
}

func NewManager(ownerID string, store Store, opts ...Option) *Manager {
	m := &Manager{ownerID: ownerID, store: store, logger: internal.NopLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the sequence, keeping only the owner's entries, newest first.
func (m *Manager) Load(seq []internal.Entry) {
	own := make([]internal.Entry, 0, len(seq))
	for _, e := range seq {
		if e.OwnerID == m.ownerID {
			own = append(own, e)
		}
	}
	internal.SortEntries(own)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.entries = own
	}
}

// Add validates the payload, inserts it remotely and prepends the stored entry.
func (m *Manager) Add(ctx context.Context, observation string, payload internal.Payload) (internal.Entry, error) {
	if payload == nil {
		return internal.Entry{}, internal.NewValidationError("entry kind is required", "kind")
	}
	normalized, err := payload.Normalize()
	if err != nil {
		return internal.Entry{}, err
	}
	if err := m.attached(); err != nil {
		return internal.Entry{}, err
	}

	stored, err := m.store.InsertEntry(ctx, m.ownerID, observation, normalized)
	if err != nil {
		m.logger.Warnf("entries: insert %s failed: %v", normalized.Kind(), err)
		return internal.Entry{}, internal.AsStoreError("insert entry", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return internal.Entry{}, ErrDetached
	}
	m.entries = slices.Insert(m.entries, 0, *stored)
	snapshot := slices.Clone(m.entries)
	m.mu.Unlock()

	m.mirrorState(snapshot)
	return *stored, nil
}

// Update persists changes to a local entry. Id, owner and kind never change.
func (m *Manager) Update(ctx context.Context, id string, changes internal.EntryChanges) (internal.Entry, error) {
	current, ok := m.Get(id)
	if !ok {
		return internal.Entry{}, &internal.NotFoundError{Resource: "entry", ID: id}
	}
	updated, err := current.Apply(changes)
	if err != nil {
		return internal.Entry{}, err
	}
	if err := m.attached(); err != nil {
		return internal.Entry{}, err
	}

	stored, err := m.store.UpdateEntry(ctx, id, changes)
	if err != nil {
		m.logger.Warnf("entries: update %s failed: %v", id, err)
		return internal.Entry{}, internal.AsStoreError("update entry", err)
	}
	// The stored record carries the values the server derived.
	if stored != nil && stored.ID == id && stored.OwnerID == m.ownerID && stored.Kind() == updated.Kind() {
		updated = *stored
	} else if stored != nil {
		m.logger.Warnf("entries: store answered update of %s with a different record; keeping local copy", id)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return internal.Entry{}, ErrDetached
	}
	if i := m.index(id); i >= 0 {
		m.entries[i] = updated
	}
	snapshot := slices.Clone(m.entries)
	m.mu.Unlock()

	m.mirrorState(snapshot)
	return updated, nil
}

// Remove deletes remotely first; a failed delete leaves the sequence as it was.
// An entry the store no longer has is dropped locally as already gone.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if _, ok := m.Get(id); !ok {
		return &internal.NotFoundError{Resource: "entry", ID: id}
	}
	if err := m.attached(); err != nil {
		return err
	}

	if err := m.store.DeleteEntry(ctx, id); err != nil {
		if !errors.Is(err, internal.ErrNotFound) {
			m.logger.Warnf("entries: delete %s failed: %v", id, err)
			return internal.AsStoreError("delete entry", err)
		}
		m.logger.Infof("entries: %s was already deleted remotely", id)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrDetached
	}
	if i := m.index(id); i >= 0 {
		m.entries = slices.Delete(m.entries, i, i+1)
	}
	snapshot := slices.Clone(m.entries)
	m.mu.Unlock()

	m.mirrorState(snapshot)
	return nil
}

// Page yields up to size entries starting at (page-1)*size. Out of range
// pages yield nothing. Each iteration reads the sequence afresh.
func (m *Manager) Page(page, size int) iter.Seq[internal.Entry] {
	return func(yield func(internal.Entry) bool) {
		if page < 1 || size < 1 {
			return
		}
		m.mu.RLock()
		start := (page - 1) * size
		if start >= len(m.entries) {
			m.mu.RUnlock()
			return
		}
		window := slices.Clone(m.entries[start:min(start+size, len(m.entries))])
		m.mu.RUnlock()

		for _, e := range window {
			if !yield(e) {
				return
			}
		}
	}
}

// Pages is the number of pages of the given size.
func (m *Manager) Pages(size int) int {
	if size < 1 {
		return 0
	}
	return (m.Len() + size - 1) / size
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Manager) Get(id string) (internal.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.entries[i], true
	}
	return internal.Entry{}, false
}

// Snapshot returns a copy of the whole sequence.
func (m *Manager) Snapshot() []internal.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

// Close detaches the manager. Results of calls still in flight are dropped.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Manager) attached() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrDetached
	}
	return nil
}

// index must be called with mu held.
func (m *Manager) index(id string) int {
	return slices.IndexFunc(m.entries, func(e internal.Entry) bool { return e.ID == id })
}

func (m *Manager) mirrorState(snapshot []internal.Entry) {
	if m.mirror != nil {
		m.mirror.SaveEntries(m.ownerID, snapshot)
	}
}
