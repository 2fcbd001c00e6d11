package securestore

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("secure store is closed")

// MemoryStore is an in-process TokenStore. Failures can be injected per
// operation, which the session tests rely on.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	fail   map[string]error
}

var _ TokenStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}, fail: map[string]error{}}
}

// FailOn makes every subsequent call to op ("get", "set" or "delete") return
// err. A nil err clears the failure.
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["get"]; err != nil {
		return "", false, err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["set"]; err != nil {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["delete"]; err != nil {
		return err
	}
	delete(m.values, key)
	return nil
}
