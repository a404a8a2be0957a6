// Package eventbus implements the durable write-ahead log of lifecycle
// events and the bounded worker pool that dispatches them asynchronously
// (§4.12). Every mutating service operation calls Dispatch after its vault
// transaction commits; events are persisted before dispatch, which is the
// durability guarantee (§5).
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ThatDevStudio/ztlctl/internal/obslog"
	"github.com/ThatDevStudio/ztlctl/internal/storage/sqlite"
)

// Event kinds (§4.12).
const (
	PostCreate        = "post_create"
	PostUpdate        = "post_update"
	PostClose         = "post_close"
	PostReweave       = "post_reweave"
	PostSessionStart  = "post_session_start"
	PostSessionClose  = "post_session_close"
	PostCheck         = "post_check"
	PostInit          = "post_init"
)

// DefaultMaxRetries is the retry budget before an event is dead-lettered.
const DefaultMaxRetries = 5

// DefaultWorkers is the default bounded worker-pool size (§4.12 point 2).
const DefaultWorkers = 2

// Handler processes one or more event kinds. Plugin failures never
// propagate past the bus: a Handle error is recorded as a retry or
// dead-letter, and the *originating* ServiceResult only ever sees a warning
// (§4.12).
type Handler interface {
	// ID names the handler for logging and warning messages.
	ID() string
	// Handles reports whether this handler processes eventType.
	Handles(eventType string) bool
	// Handle processes one event's payload. Returning an error marks the
	// event failed and queues it for retry.
	Handle(ctx context.Context, eventType string, payload map[string]any) error
}

// Bus is the event WAL plus its dispatch machinery. It holds no state of
// its own beyond the relational store and handler registry — restart
// safety comes entirely from the WAL, per §5's durability guarantee.
type Bus struct {
	store      *sqlite.Store
	log        *obslog.Context
	handlers   []Handler
	sem        *semaphore.Weighted
	maxRetries int
	sync       bool // --sync: bypass the pool, execute inline (§4.12 point 5)

	wg sync.WaitGroup
}

// Option configures a Bus.
type Option func(*Bus)

// WithWorkers sets the bounded worker-pool size.
func WithWorkers(n int) Option {
	return func(b *Bus) { b.sem = semaphore.NewWeighted(int64(n)) }
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(b *Bus) { b.maxRetries = n }
}

// WithSync forces synchronous, inline dispatch — used for deterministic
// testing (§4.12 point 5) and by `--sync` on the CLI.
func WithSync(sync bool) Option {
	return func(b *Bus) { b.sync = sync }
}

// New builds a Bus backed by store, registering handlers for dispatch.
func New(store *sqlite.Store, log *obslog.Context, handlers []Handler, opts ...Option) *Bus {
	b := &Bus{
		store:      store,
		log:        log,
		handlers:   handlers,
		sem:        semaphore.NewWeighted(DefaultWorkers),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatch inserts an event row (status pending) and then submits it for
// processing: inline if the bus is in --sync mode, otherwise on the bounded
// worker pool. Dispatch returns once the event is durably logged; it does
// not wait for asynchronous processing to finish (callers that need that
// guarantee call Drain).
func (b *Bus) Dispatch(ctx context.Context, eventType, session string, payload map[string]any) (warnings []string, err error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("eventbus: marshal payload for %s: %w", eventType, err)
	}
	id := uuid.NewString()
	if err := sqlite.InsertEvent(ctx, b.store.DB(), id, eventType, string(raw), session); err != nil {
		return nil, fmt.Errorf("eventbus: insert event: %w", err)
	}

	if b.sync {
		warn := b.processOne(ctx, id, eventType, payload)
		return warn, nil
	}

	if err := b.sem.Acquire(ctx, 1); err != nil {
		// Cancellation before a worker slot was acquired: the event stays
		// pending in the WAL and a later Drain retries it (§5 cancellation).
		return nil, nil
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.sem.Release(1)
		b.processOne(context.WithoutCancel(ctx), id, eventType, payload)
	}()
	return nil, nil
}

// processOne runs every registered handler for one event and records the
// outcome, returning handler failures as warning strings (never errors) per
// §4.12's "plugin failures never propagate" rule.
func (b *Bus) processOne(ctx context.Context, id, eventType string, payload map[string]any) []string {
	var warnings []string
	failed := false
	for _, h := range b.handlers {
		if !h.Handles(eventType) {
			continue
		}
		if err := h.Handle(ctx, eventType, payload); err != nil {
			failed = true
			msg := fmt.Sprintf("plugin %s failed on %s: %v", h.ID(), eventType, err)
			warnings = append(warnings, msg)
			if b.log != nil {
				b.log.Warn("event handler failed", "handler", h.ID(), "event", eventType, "error", err)
			}
		}
	}
	status := sqlite.EventCompleted
	if failed {
		status = sqlite.EventFailed
	}
	if err := sqlite.UpdateEventStatus(ctx, b.store.DB(), id, status, -1); err != nil && b.log != nil {
		b.log.Error("eventbus: failed to update event status", "id", id, "error", err)
	}
	return warnings
}

// Drain synchronously flushes pending and failed events, retrying failures
// with exponential backoff until none remain or a retry budget is exhausted
// and the event is reclassified dead-letter (§4.12 point 4, §4.6's
// session-close sync barrier). Drain first waits for any in-flight
// asynchronous dispatches to finish, so it never races the worker pool.
func (b *Bus) Drain(ctx context.Context) error {
	b.wg.Wait()

	for {
		pending, err := sqlite.PendingEvents(ctx, b.store.DB())
		if err != nil {
			return fmt.Errorf("eventbus: list pending events: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}

		for _, ev := range pending {
			var payload map[string]any
			if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
				payload = map[string]any{}
			}

			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 10 * time.Millisecond
			bo.MaxElapsedTime = 0

			retries := ev.Retries
			for {
				warnings := b.processOne(ctx, ev.ID, ev.EventType, payload)
				if len(warnings) == 0 {
					break
				}

				retries++
				if retries >= b.maxRetries {
					if err := sqlite.UpdateEventStatus(ctx, b.store.DB(), ev.ID, sqlite.EventDeadLetter, retries); err != nil {
						return fmt.Errorf("eventbus: dead-letter event %s: %w", ev.ID, err)
					}
					break
				}
				if err := sqlite.UpdateEventStatus(ctx, b.store.DB(), ev.ID, sqlite.EventFailed, retries); err != nil {
					return fmt.Errorf("eventbus: record retry for event %s: %w", ev.ID, err)
				}
				time.Sleep(bo.NextBackOff())
			}
		}
	}
}
