package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/storefront/checkout/internal/model"
)

// Memory is a mutex-guarded in-memory Store.
type Memory struct {
	mu         sync.RWMutex
	byID       map[string]model.Order
	byExternal map[string]string // external order id -> internal id
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[string]model.Order),
		byExternal: make(map[string]string),
	}
}

// FindByExternalID returns a copy of the order with the given gateway id.
func (m *Memory) FindByExternalID(_ context.Context, externalID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byExternal[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	o := m.byID[id]
	return &o, nil
}

// Save inserts o when its ID is empty, assigning a fresh id, and
// overwrites the stored record otherwise. The external order id index
// is kept consistent; inserting a second order with an external id
// already in use fails with ErrDuplicateExternalID.
func (m *Memory) Save(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == "" {
		if o.ExternalOrderID != "" {
			if _, exists := m.byExternal[o.ExternalOrderID]; exists {
				return ErrDuplicateExternalID
			}
		}
		o.ID = uuid.NewString()
	}

	m.byID[o.ID] = *o
	if o.ExternalOrderID != "" {
		m.byExternal[o.ExternalOrderID] = o.ID
	}
	return nil
}

// List returns all orders, newest first.
func (m *Memory) List(_ context.Context) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Order, 0, len(m.byID))
	for _, o := range m.byID {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
