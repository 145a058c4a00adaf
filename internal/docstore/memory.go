package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and is the default
// when no persistent backend is configured, so an unconfigured deployment
// degrades to a working but non-durable session instead of failing every
// operation.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	subs *subscriberSet
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]Document),
		subs: newSubscriberSet(),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, path Path) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, path Path, doc Document) error {
	m.mu.Lock()
	m.docs[path.String()] = doc.Clone()
	m.mu.Unlock()

	m.notifyCollection(parentOf(path))
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, path Path, fields Document) error {
	m.mu.Lock()
	existing, ok := m.docs[path.String()]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	merged := existing.Clone()
	for k, v := range fields {
		merged[k] = v
	}
	m.docs[path.String()] = merged
	m.mu.Unlock()

	m.notifyCollection(parentOf(path))
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, path Path) error {
	m.mu.Lock()
	_, existed := m.docs[path.String()]
	delete(m.docs, path.String())
	m.mu.Unlock()

	if existed {
		m.notifyCollection(parentOf(path))
	}
	return nil
}

// Subscribe implements Store.
func (m *MemoryStore) Subscribe(_ context.Context, collection Path) (Subscription, error) {
	return m.subs.add(collection.String(), m.snapshot(collection.String())), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.subs.closeAll()
	return nil
}

func (m *MemoryStore) notifyCollection(collection string) {
	if !m.subs.hasSubscribers(collection) {
		return
	}
	m.subs.notify(collection, m.snapshot(collection))
}

// snapshot collects the immediate children of a collection, ordered by id.
func (m *MemoryStore) snapshot(collection string) Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := collection + "/"
	var docs []SnapshotDoc
	for key, doc := range m.docs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		id := key[len(prefix):]
		if strings.Contains(id, "/") {
			continue // deeper subtree, not a direct child
		}
		docs = append(docs, SnapshotDoc{ID: id, Data: doc.Clone()})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return Snapshot{Docs: docs}
}

func parentOf(path Path) string {
	if len(path) <= 1 {
		return ""
	}
	return Path(path[:len(path)-1]).String()
}
