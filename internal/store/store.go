// Package store persists named collections of JSON documents.
//
// A Store moves whole collections: Load returns every document of a
// collection in order and Save replaces the collection with exactly the
// given documents. Typed access goes through Collection.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
)

const (
	Prayers        = "prayers"
	PendingPrayers = "pending_prayers"
	Memberships    = "memberships"
	PendingMembers = "pending_members"
	LoginLogs      = "login_logs"
)

type Store interface {
	// Load returns the documents of a collection. A collection that was
	// never saved loads as an empty slice with a nil error.
	Load(ctx context.Context, name string) ([]json.RawMessage, error)
	// Save replaces the collection atomically.
	Save(ctx context.Context, name string, docs []json.RawMessage) error
}

// WriteError reports a failed Save. Nothing was persisted.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type Collection[T any] struct {
	name  string
	store Store
}

func NewCollection[T any](s Store, name string) *Collection[T] {
	return &Collection[T]{name: name, store: s}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// DecodeError reports documents of an otherwise readable collection that do
// not decode into the collection's type. Saving a collection loaded with
// such documents would drop them, so writers treat it as fatal.
type DecodeError struct {
	Collection string
	Positions  []int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %d undecodable document(s), first at position %d: %v",
		e.Collection, len(e.Positions), e.Positions[0], e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Load never fails: missing, unreadable or corrupt data reads as an empty
// collection and documents that do not decode are skipped.
func (c *Collection[T]) Load(ctx context.Context) []T {
	items, err := c.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("store: %v (skipping)", err)
	}
	return items
}

// LoadForUpdate is Load for read-modify-write callers. Missing, unreadable or
// corrupt data still reads as empty, but a document that does not decode
// into T yields the decodable remainder together with a *DecodeError.
func (c *Collection[T]) LoadForUpdate(ctx context.Context) ([]T, error) {
	raw, err := c.store.Load(ctx, c.name)
	if err != nil {
		log.Printf("store: load %s: %v (treating as empty)", c.name, err)
		return []T{}, nil
	}
	items := make([]T, 0, len(raw))
	var decodeErr *DecodeError
	for i, doc := range raw {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			if decodeErr == nil {
				decodeErr = &DecodeError{Collection: c.name, Err: err}
			}
			decodeErr.Positions = append(decodeErr.Positions, i)
			continue
		}
		items = append(items, item)
	}
	if decodeErr != nil {
		return items, decodeErr
	}
	return items, nil
}

func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	docs := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		doc, err := encode(item)
		if err != nil {
			return &WriteError{Collection: c.name, Err: err}
		}
		docs = append(docs, doc)
	}
	if err := c.store.Save(ctx, c.name, docs); err != nil {
		return &WriteError{Collection: c.name, Err: err}
	}
	return nil
}

// encode marshals without HTML escaping so text is stored verbatim.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

type Identified interface {
	DocumentID() int
}

// NextID returns max(id)+1, or 1 for an empty collection.
func NextID[T Identified](items []T) int {
	highest := 0
	for _, item := range items {
		if id := item.DocumentID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Locks hands out one mutex per collection name. Callers that touch several
// collections lock them together so the acquisition order is always sorted.
type Locks struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{byKey: map[string]*sync.Mutex{}}
}

func (l *Locks) Lock(names ...string) (unlock func()) {
	keys := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)

	held := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		m := l.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *Locks) get(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.byKey[name]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[name] = m
	}
	return m
}
