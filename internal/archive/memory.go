package archive

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, sessionID, name string, content []byte, _ string) (string, error) {
	if err := checkKey(sessionID, name); err != nil {
		return "", err
	}
	key := objectKey(sessionID, name)
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), content...)
	m.mu.Unlock()
	return "memory://" + key, nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID, name string) ([]byte, error) {
	if err := checkKey(sessionID, name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[objectKey(sessionID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) List(_ context.Context, sessionID string) ([]string, error) {
	prefix := strings.TrimSpace(sessionID) + "/"
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for key := range m.objects {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
