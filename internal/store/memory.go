package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	saveErrs map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}, saveErrs: map[string]error{}}
}

func (s *MemoryStore) Load(_ context.Context, name string) ([]json.RawMessage, error) {
	s.mu.Lock()
	content, ok := s.data[name]
	s.mu.Unlock()
	if !ok {
		return []json.RawMessage{}, nil
	}
	docs := []json.RawMessage{}
	if err := json.Unmarshal(content, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *MemoryStore) Save(_ context.Context, name string, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}
	content, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveErrs[name]; err != nil {
		return err
	}
	s.data[name] = content
	return nil
}

// Raw returns the stored bytes of a collection.
func (s *MemoryStore) Raw(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data[name]...)
}

// Put replaces the stored bytes of a collection without validation.
func (s *MemoryStore) Put(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = append([]byte(nil), content...)
}

// FailSaves makes every Save of the collection return err until cleared
// with a nil err.
func (s *MemoryStore) FailSaves(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.saveErrs, name)
		return
	}
	s.saveErrs[name] = err
}
