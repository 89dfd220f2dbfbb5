package rag

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions is a registry of vector stores keyed by session id.
type Sessions struct {
	mu     sync.RWMutex
	stores map[string]*VectorStore
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{stores: make(map[string]*VectorStore)}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Create stores s under a new id and returns the id.
func (r *Sessions) Create(s *VectorStore) string {
	id := NewSessionID()
	r.Put(id, s)
	return id
}

// Put stores s under id, replacing any previous store.
func (r *Sessions) Put(id string, s *VectorStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[id] = s
}

// Replace overwrites the store of an existing id. An unknown or deleted id returns
// ErrSessionNotFound and is not recreated.
func (r *Sessions) Replace(id string, s *VectorStore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[id]; !ok {
		return ErrSessionNotFound
	}
	r.stores[id] = s
	return nil
}

// Get returns the store for id or ErrSessionNotFound.
func (r *Sessions) Get(id string) (*VectorStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes id. Deleting an unknown id returns ErrSessionNotFound.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.stores, id)
	return nil
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
