package services

import (
	"context"
	"log"
	"time"

	"parish-backend-go/internal/store"
)

// Authorizer reports whether the caller behind ctx is an administrator.
type Authorizer func(ctx context.Context) bool

// Notifier is told about every new pending submission.
type Notifier interface {
	PendingSubmitted(ctx context.Context, kind string, id int, summary string) error
}

type Record[T any] interface {
	DocumentID() int
	WithID(id int) T
}

const defaultNotifyTimeout = 15 * time.Second

type WorkflowDeps struct {
	Store     store.Store
	Locks     *store.Locks
	Authorize Authorizer
	// Notifier is called asynchronously after a successful submit.
	Notifier      Notifier
	NotifyTimeout time.Duration
	Now           func() time.Time
}

func (d WorkflowDeps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d WorkflowDeps) notifyTimeout() time.Duration {
	if d.NotifyTimeout > 0 {
		return d.NotifyTimeout
	}
	return defaultNotifyTimeout
}

// kindRules binds the per-kind behaviour of a Workflow.
type kindRules[T any] struct {
	kind string
	// validate normalizes a public submission or rejects it.
	validate func(T) (T, error)
	// stamp sets the server-side timestamp on a new entry.
	stamp     func(T, time.Time) T
	summarize func(T) string
}

// Workflow moves submissions of one kind from the pending collection to the
// approved collection.
type Workflow[T Record[T]] struct {
	deps     WorkflowDeps
	rules    kindRules[T]
	pending  *store.Collection[T]
	approved *store.Collection[T]
}

func newWorkflow[T Record[T]](deps WorkflowDeps, pendingName, approvedName string, rules kindRules[T]) *Workflow[T] {
	if deps.Locks == nil {
		deps.Locks = store.NewLocks()
	}
	if deps.Authorize == nil {
		deps.Authorize = func(context.Context) bool { return false }
	}
	return &Workflow[T]{
		deps:     deps,
		rules:    rules,
		pending:  store.NewCollection[T](deps.Store, pendingName),
		approved: store.NewCollection[T](deps.Store, approvedName),
	}
}

func (w *Workflow[T]) Kind() string {
	return w.rules.kind
}

// Submit validates item and appends it to the pending collection.
func (w *Workflow[T]) Submit(ctx context.Context, item T) (int, error) {
	item, err := w.rules.validate(item)
	if err != nil {
		log.Printf("%s submission rejected: %v", w.rules.kind, err)
		return 0, err
	}

	unlock := w.deps.Locks.Lock(w.pending.Name())
	pending, err := w.pending.LoadForUpdate(ctx)
	if err != nil {
		unlock()
		log.Printf("%s submission: %v", w.rules.kind, err)
		return 0, StoreFailure(err)
	}
	id := store.NextID(pending)
	item = w.rules.stamp(item.WithID(id), w.deps.now())
	err = w.pending.Save(ctx, append(pending, item))
	unlock()
	if err != nil {
		log.Printf("%s submission: %v", w.rules.kind, err)
		return 0, StoreFailure(err)
	}

	if w.deps.Notifier != nil {
		go w.notify(context.WithoutCancel(ctx), id, w.rules.summarize(item))
	}
	return id, nil
}

// notify runs detached from the submitting request and gives up after
// notifyTimeout.
func (w *Workflow[T]) notify(ctx context.Context, id int, summary string) {
	ctx, cancel := context.WithTimeout(ctx, w.deps.notifyTimeout())
	defer cancel()
	if err := w.deps.Notifier.PendingSubmitted(ctx, w.rules.kind, id, summary); err != nil {
		log.Printf("%s submission %d: notify: %v", w.rules.kind, id, err)
	}
}

func (w *Workflow[T]) ListPending(ctx context.Context) ([]T, error) {
	if !w.deps.Authorize(ctx) {
		return nil, Unauthorized("Unauthorized")
	}
	unlock := w.deps.Locks.Lock(w.pending.Name())
	defer unlock()
	return w.pending.Load(ctx), nil
}

func (w *Workflow[T]) ListApproved(ctx context.Context) ([]T, error) {
	if !w.deps.Authorize(ctx) {
		return nil, Unauthorized("Unauthorized")
	}
	unlock := w.deps.Locks.Lock(w.approved.Name())
	defer unlock()
	return w.approved.Load(ctx), nil
}

// Approve moves the pending entry with the given id into the approved
// collection under a fresh id, which it returns. Approved is written first;
// if the pending write then fails the previous approved contents are
// restored.
func (w *Workflow[T]) Approve(ctx context.Context, id int) (int, error) {
	if !w.deps.Authorize(ctx) {
		return 0, Unauthorized("Unauthorized")
	}
	unlock := w.deps.Locks.Lock(w.pending.Name(), w.approved.Name())
	defer unlock()

	pending, err := w.pending.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("approve %s %d: %v", w.rules.kind, id, err)
		return 0, StoreFailure(err)
	}
	var (
		entry     T
		found     bool
		remaining = make([]T, 0, len(pending))
	)
	for _, item := range pending {
		if !found && item.DocumentID() == id {
			entry = item
			found = true
			continue
		}
		remaining = append(remaining, item)
	}
	if !found {
		return 0, NotFound("Not found")
	}

	approved, err := w.approved.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("approve %s %d: %v", w.rules.kind, id, err)
		return 0, StoreFailure(err)
	}
	approvedID := store.NextID(approved)
	next := append(append(make([]T, 0, len(approved)+1), approved...), entry.WithID(approvedID))
	if err := w.approved.Save(ctx, next); err != nil {
		log.Printf("approve %s %d: %v", w.rules.kind, id, err)
		return 0, StoreFailure(err)
	}
	if err := w.pending.Save(ctx, remaining); err != nil {
		log.Printf("approve %s %d: %v", w.rules.kind, id, err)
		if rbErr := w.approved.Save(ctx, approved); rbErr != nil {
			log.Printf("approve %s %d: rollback: %v", w.rules.kind, id, rbErr)
		}
		return 0, StoreFailure(err)
	}
	log.Printf("approved %s %d as %d", w.rules.kind, id, approvedID)
	return approvedID, nil
}

// Reject drops the pending entry with the given id. Rejecting an unknown id
// succeeds without writing.
func (w *Workflow[T]) Reject(ctx context.Context, id int) error {
	if !w.deps.Authorize(ctx) {
		return Unauthorized("Unauthorized")
	}
	unlock := w.deps.Locks.Lock(w.pending.Name())
	defer unlock()

	pending, err := w.pending.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("reject %s %d: %v", w.rules.kind, id, err)
		return StoreFailure(err)
	}
	remaining := make([]T, 0, len(pending))
	for _, item := range pending {
		if item.DocumentID() != id {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(pending) {
		return nil
	}
	if err := w.pending.Save(ctx, remaining); err != nil {
		log.Printf("reject %s %d: %v", w.rules.kind, id, err)
		return StoreFailure(err)
	}
	log.Printf("rejected %s %d", w.rules.kind, id)
	return nil
}

// Import appends items to the approved collection without validation, each
// under a fresh id. It returns the assigned ids in input order.
func (w *Workflow[T]) Import(ctx context.Context, items []T) ([]int, error) {
	if !w.deps.Authorize(ctx) {
		return nil, Unauthorized("Unauthorized")
	}
	unlock := w.deps.Locks.Lock(w.approved.Name())
	defer unlock()

	approved, err := w.approved.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("import %s: %v", w.rules.kind, err)
		return nil, StoreFailure(err)
	}
	now := w.deps.now()
	ids := make([]int, 0, len(items))
	for _, item := range items {
		id := store.NextID(approved)
		approved = append(approved, w.rules.stamp(item.WithID(id), now))
		ids = append(ids, id)
	}
	if err := w.approved.Save(ctx, approved); err != nil {
		log.Printf("import %s: %v", w.rules.kind, err)
		return nil, StoreFailure(err)
	}
	log.Printf("imported %d %s entries", len(ids), w.rules.kind)
	return ids, nil
}
