// Package engine runs the single-writer bookkeeping loop.
//
// The engine owns the record store. Mutations, settings changes and
// as-of moves arrive on a FIFO queue and are applied one at a time in
// the Run loop goroutine; every applied change triggers one full
// recompute of the derived views, and the finished snapshot is
// published with an atomic pointer swap. Readers always observe a
// complete snapshot, never a half-recomputed one.
//
// Single-Writer Loop:
// All store writes happen in the one Run goroutine. This ensures:
//   - a total order over mutations, no matter how many submitters
//   - each snapshot derives from a consistent store state
//   - replaying the same mutation sequence yields identical snapshots
//
// Request Processing Flow:
//  1. Callers submit via Mutate, UpdateSettings, SetAsOf or Recompute
//  2. Run dequeues requests one at a time in arrival order
//  3. The store applies the change whole-or-nothing
//  4. Applied changes recompute every view in tier order
//  5. The new snapshot is swapped in and the caller's reply delivered
//
// Rejected mutations leave the store and the published snapshot
// untouched; no recompute runs for them.
//
// Revisions come from a monotonic logical clock, never wall-clock
// time. The engine is designed for correctness and determinism, not
// throughput: a full recompute per mutation is the contract.
package engine
