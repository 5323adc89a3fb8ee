package docstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. It backs the test suite and
// STORE_DRIVER=memory for local development; contents are lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	colls map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: make(map[string]*memCollection)}
}

func (s *MemoryStore) coll(name string) *memCollection {
	c, ok := s.colls[name]
	if !ok {
		c = &memCollection{docs: make(map[string]Document)}
		s.colls[name] = c
	}
	return c
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc Document) (string, error) {
	stored, err := clone(withoutID(doc))
	if err != nil {
		return "", wrap("insert", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	id := uuid.NewString()
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(doc, id)
}

// Find implements Store.
func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter) ([]Document, error) {
	want, err := clone(Document(filter))
	if err != nil {
		return nil, wrap("find", collection, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[collection]
	if !ok {
		return nil, nil
	}
	var out []Document
	for _, id := range c.order {
		doc := c.docs[id]
		if !matches(doc, Filter(want)) {
			continue
		}
		d, err := withID(doc, id)
		if err != nil {
			return nil, wrap("find", collection, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, collection, id string, partial Document) error {
	patch, err := clone(withoutID(partial))
	if err != nil {
		return wrap("update", collection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// clone round-trips through JSON so stored values have the same shapes a
// database backend would hand back (json.Number numbers, []any arrays) and
// never alias caller memory.
func clone(doc Document) (Document, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(b)
}

func withID(doc Document, id string) (Document, error) {
	out, err := clone(doc)
	if err != nil {
		return nil, err
	}
	out[IDField] = id
	return out, nil
}
