package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/flashillumination/flashbooks/internal/audit"
	"github.com/flashillumination/flashbooks/internal/ledger"
	"github.com/flashillumination/flashbooks/internal/reconcile"
	"github.com/flashillumination/flashbooks/internal/views"
)

// ErrStopped is returned when a request is submitted after Stop.
var ErrStopped = errors.New("engine stopped")

// requestKind routes a queued request to its handler.
type requestKind int

const (
	reqMutate requestKind = iota + 1
	reqSettings
	reqAsOf
	reqRecompute
)

// request is one unit of work for the Run loop. The reply channel is
// buffered so the loop never blocks on a slow caller.
type request struct {
	kind     requestKind
	token    string
	mutation ledger.Mutation
	patch    ledger.SettingsPatch
	asOf     time.Time
	reply    chan Result
}

// Result is the outcome of a submitted request.
//
// Token identifies the request in the audit trail. Revision is the
// published snapshot's revision after processing; for a rejected
// mutation it is the revision of the still-current snapshot.
type Result struct {
	Token    string
	Revision int64
	ledger.MutationResult
}

// Engine is the single-writer bookkeeping loop.
//
// All store mutations happen in the Run loop goroutine. External
// callers submit work with Mutate, UpdateSettings, SetAsOf and
// Recompute; each call blocks until its request has been processed.
//
// Thread-safety model:
//   - Mutate/UpdateSettings/SetAsOf/Recompute: safe from any goroutine
//   - Snapshot: safe from any goroutine (atomic load)
//   - Run: must be called from exactly one goroutine
type Engine struct {
	store  *ledger.Store
	clock  *Clock
	queue  *requestQueue
	tokens TokenGenerator
	trail  *audit.Log // nil disables auditing

	asOf     time.Time
	snapshot atomic.Pointer[views.Snapshot]
}

// Option configures engine parameters.
type Option func(*Engine)

// WithAudit attaches an append-only audit trail. Every processed
// mutation is recorded, rejected ones included.
func WithAudit(trail *audit.Log) Option {
	return func(e *Engine) {
		e.trail = trail
	}
}

// WithClock replaces the revision clock. Used to resume numbering from
// a persisted audit trail.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine owning the given store and publishes the
// initial snapshot, recomputed as of asOf.
//
// The store must not be touched by the caller afterwards; the engine
// is its single writer from here on.
func New(st *ledger.Store, asOf time.Time, tokens TokenGenerator, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		clock:  NewClock(),
		queue:  newRequestQueue(),
		tokens: tokens,
		asOf:   asOf,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.snapshot.Store(e.rebuild())
	return e
}

// Snapshot returns the most recently published snapshot. The returned
// value is shared and must be treated as read-only.
func (e *Engine) Snapshot() *views.Snapshot {
	return e.snapshot.Load()
}

// Settings returns the settings the published snapshot was built with.
func (e *Engine) Settings() ledger.Settings {
	return e.Snapshot().Settings.Clone()
}

// Mutate submits a record mutation and blocks until the Run loop has
// processed it or ctx is cancelled.
func (e *Engine) Mutate(ctx context.Context, m ledger.Mutation) (Result, error) {
	return e.submit(ctx, request{kind: reqMutate, mutation: m})
}

// UpdateSettings submits a settings patch and blocks until processed.
func (e *Engine) UpdateSettings(ctx context.Context, p ledger.SettingsPatch) (Result, error) {
	return e.submit(ctx, request{kind: reqSettings, patch: p})
}

// SetAsOf moves the reference date and recomputes every view against
// it. The records are untouched; only time-relative figures change.
func (e *Engine) SetAsOf(ctx context.Context, asOf time.Time) (Result, error) {
	return e.submit(ctx, request{kind: reqAsOf, asOf: asOf})
}

// Recompute forces a full recompute pass without changing anything.
// The resulting snapshot carries a new revision but identical derived
// values.
func (e *Engine) Recompute(ctx context.Context) (Result, error) {
	return e.submit(ctx, request{kind: reqRecompute})
}

func (e *Engine) submit(ctx context.Context, r request) (Result, error) {
	r.token = e.tokens.Generate()
	r.reply = make(chan Result, 1)

	if !e.queue.Enqueue(r) {
		return Result{}, ErrStopped
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-r.reply:
		return res, nil
	}
}

// Run starts the single-writer loop.
// Blocks until the context is cancelled or Stop is called.
//
// Must be called from exactly ONE goroutine. All store writes,
// recomputes and snapshot swaps happen here.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "revision", e.clock.Current())

	for {
		r, ok := e.queue.TryDequeue()
		if ok {
			e.process(ctx, r)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed,
			// which fires this case immediately.
			if e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the request queue, which causes Run to return once drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

// process handles one request. Called only from the Run goroutine.
func (e *Engine) process(ctx context.Context, r request) {
	res := Result{Token: r.token}

	switch r.kind {
	case reqMutate:
		res.MutationResult = e.store.Apply(r.mutation)
		if res.OK() {
			slog.Debug("mutation applied",
				"token", r.token,
				"entity", r.mutation.Entity,
				"op", r.mutation.Op,
				"record", res.ID,
			)
			e.snapshot.Store(e.rebuild())
		} else {
			slog.Warn("mutation rejected",
				"token", r.token,
				"entity", r.mutation.Entity,
				"op", r.mutation.Op,
				"errors", len(res.Errors),
			)
		}
		e.audit(ctx, r, res)

	case reqSettings:
		res.MutationResult = e.store.UpdateSettings(r.patch)
		if res.OK() {
			e.snapshot.Store(e.rebuild())
		}

	case reqAsOf:
		e.asOf = r.asOf
		e.snapshot.Store(e.rebuild())

	case reqRecompute:
		e.snapshot.Store(e.rebuild())
	}

	res.Revision = e.Snapshot().Revision
	r.reply <- res
}

// rebuild runs one full recompute over the store's current records and
// stamps the result with the next revision.
func (e *Engine) rebuild() *views.Snapshot {
	in := views.Collect(e.store, e.asOf)
	snap := views.Build(in)
	snap.Warnings = reconcile.Check(in, snap)
	snap.Revision = e.clock.Next()

	for _, w := range snap.Warnings {
		slog.Warn("reconciliation warning",
			"code", w.Code,
			"message", w.Message,
		)
	}
	return snap
}

// audit records a processed mutation on the trail when one is
// configured. Audit failures are logged, never fatal: the books stay
// correct even if the trail is unwritable.
func (e *Engine) audit(ctx context.Context, r request, res Result) {
	if e.trail == nil {
		return
	}
	entry := audit.EntryFor(e.clock.Current(), r.token, r.mutation, res.MutationResult, e.asOf)
	if err := e.trail.Append(ctx, entry); err != nil {
		slog.Error("audit append failed", "token", r.token, "error", err)
	}
}
