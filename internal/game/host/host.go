// Package host provides the single-writer execution substrate for stateful
// entities.
//
// Each entity is owned by a dedicated worker goroutine fed by an inbound call
// channel: calls against one entity execute one at a time, in arrival order,
// to completion. Entity code therefore stays lock-free and single-threaded
// regardless of how many goroutines call into the host. Distinct entities run
// concurrently.
//
// Entities activate on their first call (loading durable state) and are
// deactivated by the host: a periodic sweep retires idle workers after
// flushing their deferred writes, and shutdown drains everything. There are
// no background timers inside entities; all time-based behavior is driven by
// the caller or by the host's sweeps.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrHostClosed indicates a call arrived after shutdown began.
var ErrHostClosed = errors.New("entity host is closed")

// deactivateTimeout bounds the final flush of a retiring entity.
const deactivateTimeout = 5 * time.Second

// mailboxDepth bounds how many calls may queue against one entity.
const mailboxDepth = 128

// Entity is a stateful unit hosted under the single-writer guarantee.
type Entity interface {
	// Activate loads the entity's durable state. It runs before the first
	// call dispatched to the entity.
	Activate(ctx context.Context) error
	// Flush persists deferred lazy writes. It must be a no-op when clean.
	Flush(ctx context.Context) error
	// Deactivate releases the entity, flushing any deferred writes first.
	Deactivate(ctx context.Context) error
}

// Factory creates an entity for an identifier. It must not perform I/O; all
// loading belongs in Activate.
type Factory[E Entity] func(id string) (E, error)

// Host runs one worker per live entity of a single kind.
type Host[E Entity] struct {
	kind    string
	factory Factory[E]
	tracer  trace.Tracer

	mu      sync.Mutex
	workers map[string]*worker[E]
	closed  bool
	wg      sync.WaitGroup
}

type call[E Entity] struct {
	ctx  context.Context
	fn   func(ctx context.Context, entity E) error
	done chan error
}

type worker[E Entity] struct {
	id        string
	entity    E
	activated bool
	calls     chan call[E]
	stop      chan struct{}
	dead      chan struct{}

	// guarded by the host mutex
	inFlight int
	lastUsed time.Time
	retired  bool
}

// New creates a host for one kind of entity.
func New[E Entity](kind string, factory Factory[E]) *Host[E] {
	return &Host[E]{
		kind:    kind,
		factory: factory,
		tracer:  otel.Tracer("flserver/host"),
		workers: make(map[string]*worker[E]),
	}
}

// Kind returns the hosted entity kind.
func (h *Host[E]) Kind() string {
	return h.kind
}

// Call executes fn against the identified entity under the single-writer
// guarantee. The entity is activated on its first call. Call blocks until fn
// completes; there is no mid-operation cancellation.
func (h *Host[E]) Call(ctx context.Context, id string, fn func(ctx context.Context, entity E) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("call function is required")
	}

	c := call[E]{ctx: ctx, fn: fn, done: make(chan error, 1)}
	for {
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return ErrHostClosed
		}
		w := h.workers[id]
		if w != nil && w.retired {
			// A retiring worker is flushing its state; wait for it to die so
			// the replacement activates against the flushed snapshot.
			h.mu.Unlock()
			<-w.dead
			continue
		}
		if w == nil {
			entity, err := h.factory(id)
			if err != nil {
				h.mu.Unlock()
				return fmt.Errorf("create %s/%s: %w", h.kind, id, err)
			}
			w = &worker[E]{
				id:       id,
				entity:   entity,
				calls:    make(chan call[E], mailboxDepth),
				stop:     make(chan struct{}),
				dead:     make(chan struct{}),
				lastUsed: time.Now(),
			}
			h.workers[id] = w
			h.wg.Add(1)
			go h.run(w)
		}
		select {
		case w.calls <- c:
			w.inFlight++
		default:
			h.mu.Unlock()
			return fmt.Errorf("entity %s/%s mailbox is full", h.kind, id)
		}
		h.mu.Unlock()
		return <-c.done
	}
}

// Keys returns the identifiers of currently live entities in sorted order.
func (h *Host[E]) Keys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.workers))
	for id, w := range h.workers {
		if !w.retired {
			keys = append(keys, id)
		}
	}
	sort.Strings(keys)
	return keys
}

// FlushAll drives a flush of deferred writes through every live entity's
// mailbox. Errors are collected; a failing entity does not stop the sweep.
func (h *Host[E]) FlushAll(ctx context.Context) error {
	var errs []error
	for _, id := range h.Keys() {
		err := h.Call(ctx, id, func(ctx context.Context, entity E) error {
			return entity.Flush(ctx)
		})
		if err != nil && !errors.Is(err, ErrHostClosed) {
			errs = append(errs, fmt.Errorf("flush %s/%s: %w", h.kind, id, err))
		}
	}
	return errors.Join(errs...)
}

// DeactivateIdle retires entities that have been idle for at least idleFor,
// flushing their deferred writes on the way out.
func (h *Host[E]) DeactivateIdle(idleFor time.Duration) {
	now := time.Now()
	h.mu.Lock()
	var victims []*worker[E]
	for _, w := range h.workers {
		if !w.retired && w.inFlight == 0 && now.Sub(w.lastUsed) >= idleFor {
			w.retired = true
			victims = append(victims, w)
		}
	}
	h.mu.Unlock()

	for _, w := range victims {
		close(w.stop)
	}
}

// Shutdown retires every entity and waits for workers to drain. New calls
// fail with ErrHostClosed once shutdown begins.
func (h *Host[E]) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	var victims []*worker[E]
	for _, w := range h.workers {
		if !w.retired && w.inFlight == 0 {
			w.retired = true
			victims = append(victims, w)
		}
	}
	h.mu.Unlock()

	for _, w := range victims {
		close(w.stop)
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown %s host: %w", h.kind, ctx.Err())
	}
}

func (h *Host[E]) run(w *worker[E]) {
	defer h.wg.Done()
	for {
		select {
		case c := <-w.calls:
			c.done <- h.dispatch(w, c)
			h.completed(w)
		case <-w.stop:
			h.deactivate(w)
			return
		}
	}
}

func (h *Host[E]) dispatch(w *worker[E], c call[E]) error {
	ctx, span := h.tracer.Start(c.ctx, "entity.call",
		trace.WithAttributes(
			attribute.String("entity.kind", h.kind),
			attribute.String("entity.id", w.id),
		))
	defer span.End()

	if !w.activated {
		if err := w.entity.Activate(ctx); err != nil {
			span.RecordError(err)
			return fmt.Errorf("activate %s/%s: %w", h.kind, w.id, err)
		}
		w.activated = true
	}
	if err := c.fn(ctx, w.entity); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// completed updates bookkeeping after a call and retires the worker eagerly
// when shutdown is in progress.
func (h *Host[E]) completed(w *worker[E]) {
	h.mu.Lock()
	w.inFlight--
	w.lastUsed = time.Now()
	retire := h.closed && w.inFlight == 0 && !w.retired
	if retire {
		w.retired = true
	}
	h.mu.Unlock()
	if retire {
		close(w.stop)
	}
}

// deactivate flushes the retiring entity, removes it from the worker table,
// and signals waiters that a replacement may spawn.
func (h *Host[E]) deactivate(w *worker[E]) {
	ctx, cancel := context.WithTimeout(context.Background(), deactivateTimeout)
	defer cancel()

	_, span := h.tracer.Start(ctx, "entity.deactivate",
		trace.WithAttributes(
			attribute.String("entity.kind", h.kind),
			attribute.String("entity.id", w.id),
		))
	if err := w.entity.Deactivate(ctx); err != nil {
		span.RecordError(err)
	}
	span.End()

	h.mu.Lock()
	if h.workers[w.id] == w {
		delete(h.workers, w.id)
	}
	h.mu.Unlock()
	close(w.dead)
}
