// Package session holds the single logged-in user identifier and persists it
// across restarts.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/store"
)

// Key is the storage key holding the user identifier.
const Key = "user_id"

// Backend is durable storage for the identifier.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Holder exposes get/set of one optional user identifier.
// It is safe for concurrent use.
type Holder struct {
	mu      sync.RWMutex
	id      model.UserID
	backend Backend
	subs    []func(model.UserID, bool)
}

// Open reads any stored identifier from backend.
func Open(backend Backend) (*Holder, error) {
	h := &Holder{backend: backend}
	v, err := backend.Get(Key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("reading session: %w", err)
	default:
		h.id = model.UserID(v)
	}
	return h, nil
}

// NewMemory returns a holder without durable storage.
func NewMemory() *Holder {
	return &Holder{backend: newMemBackend()}
}

// Current returns the identifier and whether one is set.
func (h *Holder) Current() (model.UserID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id, h.id != ""
}

// Set stores id. An empty id is the same as Clear.
func (h *Holder) Set(id model.UserID) error {
	if id == "" {
		return h.Clear()
	}
	h.mu.Lock()
	if err := h.backend.Set(Key, id.String()); err != nil {
		h.mu.Unlock()
		return fmt.Errorf("saving session: %w", err)
	}
	h.id = id
	subs := h.subs
	h.mu.Unlock()

	notify(subs, id, true)
	return nil
}

// Clear removes the identifier from memory and storage.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.id = ""
	err := h.backend.Delete(Key)
	subs := h.subs
	h.mu.Unlock()

	notify(subs, "", false)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// OnChange registers fn to run after every Set or Clear.
func (h *Holder) OnChange(fn func(id model.UserID, present bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

func notify(subs []func(model.UserID, bool), id model.UserID, present bool) {
	for _, fn := range subs {
		fn(id, present)
	}
}

type memBackend struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemBackend() *memBackend {
	return &memBackend{m: make(map[string]string)}
}

func (b *memBackend) Get(key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (b *memBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *memBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}
