package repository

import (
	"context"
	"sync"
	"time"

	"fraud-assessment-service/internal/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process. Entries are stored
// serialized so callers never share mutable state.
type MemorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*models.AssessmentSession, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && r.expired(entry) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(id, entry.data)
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *models.AssessmentSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(session.ID, data)
	return nil
}

// Update holds the lock for the whole read-modify-write, so fn runs once.
func (r *MemorySessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.AssessmentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *models.AssessmentSession
	if entry, ok := r.entries[id]; ok && !r.expired(entry) {
		var err error
		if current, err = decodeSession(id, entry.data); err != nil {
			return nil, err
		}
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	data, err := encodeSession(next)
	if err != nil {
		return nil, err
	}
	r.store(id, data)
	return next, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *MemorySessionRepository) expired(e memoryEntry) bool {
	return r.ttl > 0 && r.now().After(e.expiresAt)
}

// store writes one entry; caller holds mu.
func (r *MemorySessionRepository) store(id string, data []byte) {
	r.entries[id] = memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)}
	r.sweep()
}

// sweep drops expired entries; caller holds mu.
func (r *MemorySessionRepository) sweep() {
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
		}
	}
}
