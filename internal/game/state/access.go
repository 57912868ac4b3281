// Package state implements the persistence-access discipline every stateful
// entity follows.
//
// An Access wraps one mutable durable-state instance and offers four access
// modes distinguished by their durability/latency tradeoff: plain reads,
// immediate mutations (synchronous durable write before returning), lazy
// mutations (deferred write behind a pending flag), and conditional mutations
// (write only when the mutator reports a change). The host flushes pending
// lazy writes on deactivation and on a periodic sweep; a crash between a lazy
// mutation and the next flush loses that mutation, which is acceptable only
// for low-value fields. Category assignment and match outcomes must always
// use the immediate mode.
//
// Access performs no locking. The single-writer guarantee comes from the
// hosting runtime.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arshia001/FLServer-sub001/internal/game/storage"
)

// Codec translates an entity state to and from its durable payload. The
// payload is the sole persisted representation; its layout is part of the
// durable contract.
type Codec[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// Access wraps one entity's durable state.
type Access[T any] struct {
	store       storage.EntityStateStore
	kind        string
	id          string
	codec       Codec[T]
	state       T
	pending     bool
	beforeWrite func(T)
}

// New creates an access wrapper seeded with the initial state. Call Load to
// replace it with the persisted state, if any.
func New[T any](store storage.EntityStateStore, kind, id string, codec Codec[T], initial T) *Access[T] {
	return &Access[T]{
		store: store,
		kind:  kind,
		id:    id,
		codec: codec,
		state: initial,
	}
}

// Load reads the persisted state. An absent record keeps the initial state
// and is not an error.
func (a *Access[T]) Load(ctx context.Context) error {
	payload, err := a.store.Read(ctx, a.kind, a.id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load %s/%s: %w", a.kind, a.id, err)
	}
	state, err := a.codec.Unmarshal(payload)
	if err != nil {
		return fmt.Errorf("decode %s/%s: %w", a.kind, a.id, err)
	}
	a.state = state
	return nil
}

// State returns the wrapped state for queries. Callers must not mutate it;
// all mutation goes through the Update variants so persistence is never
// skipped silently.
func (a *Access[T]) State() T {
	return a.state
}

// Update applies a mutation and synchronously persists it before returning.
// Use it for correctness-critical mutations that must never be lost.
func (a *Access[T]) Update(ctx context.Context, fn func(T)) error {
	fn(a.state)
	return a.persist(ctx)
}

// UpdateLazy applies a mutation and defers persistence behind the pending
// flag. Use it for frequent low-value mutations; the host's flush schedule
// bounds the staleness window.
func (a *Access[T]) UpdateLazy(fn func(T)) {
	fn(a.state)
	a.pending = true
}

// UpdateLazyIf applies a mutation that may be a no-op: the pending flag is
// set only when fn reports that it changed something, so rejected attempts
// never schedule a write.
func (a *Access[T]) UpdateLazyIf(fn func(T) bool) {
	if fn(a.state) {
		a.pending = true
	}
}

// UpdateIf applies a mutation that may be a no-op: the state is persisted
// synchronously only when fn reports that it changed something.
func (a *Access[T]) UpdateIf(ctx context.Context, fn func(T) bool) error {
	if !fn(a.state) {
		return nil
	}
	return a.persist(ctx)
}

// LazyPersistPending reports whether a lazy mutation awaits persistence.
func (a *Access[T]) LazyPersistPending() bool {
	return a.pending
}

// PersistPending flushes a deferred write. It is a no-op when nothing is
// pending.
func (a *Access[T]) PersistPending(ctx context.Context) error {
	if !a.pending {
		return nil
	}
	return a.persist(ctx)
}

// Clear removes the persisted state and drops any pending flag. The
// in-memory state is left as-is for the caller to reset or discard.
func (a *Access[T]) Clear(ctx context.Context) error {
	if err := a.store.Clear(ctx, a.kind, a.id); err != nil {
		return fmt.Errorf("clear %s/%s: %w", a.kind, a.id, err)
	}
	a.pending = false
	return nil
}

// OnBeforeWrite registers a hook invoked before every durable write with an
// independent copy of the state being written, decoded from the outgoing
// payload. Derived side effects (index updates, projections) observe exactly
// the persisted state without aliasing the live instance.
func (a *Access[T]) OnBeforeWrite(fn func(T)) {
	a.beforeWrite = fn
}

func (a *Access[T]) persist(ctx context.Context) error {
	payload, err := a.codec.Marshal(a.state)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", a.kind, a.id, err)
	}
	if a.beforeWrite != nil {
		snapshot, err := a.codec.Unmarshal(payload)
		if err != nil {
			return fmt.Errorf("snapshot %s/%s for write hook: %w", a.kind, a.id, err)
		}
		a.beforeWrite(snapshot)
	}
	if err := a.store.Write(ctx, a.kind, a.id, payload); err != nil {
		return fmt.Errorf("persist %s/%s: %w", a.kind, a.id, err)
	}
	a.pending = false
	return nil
}
