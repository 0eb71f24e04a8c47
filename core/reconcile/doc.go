// Package reconcile keeps a locally held, ordered list of visible records
// consistent with a remote authoritative store, without re-fetching the full
// set on every change.
//
// # Architecture
//
// The package consists of three parts:
//
// 1. Engine: the pure merge rule (Apply), the initial fold (Build) and the
// read-only filtering view (Filter). Apply treats every change notification as
// the latest full state of one record: invisible records are removed, visible
// records replace their entry in place or are appended.
//
// 2. Adapter: model-specific knowledge (key, visibility flag, searchable
// fields). See feature/directory for the public profile adapter.
//
// 3. Reconciler: the runtime. It owns the change subscription, a bounded event
// channel and a single consumer goroutine that applies every mutation in
// delivery order. Concurrent Refresh calls are coalesced with singleflight.
//
// # Early events
//
// Change events and the bulk fetch are unordered relative to each other. The
// Policy chooses what happens to events that arrive while a fetch is in flight:
//   - PolicyReplay (default): queue them and replay them over the fetch result.
//   - PolicyOverwrite: apply them immediately; the fetch result replaces the list.
//
// With PolicyReplay, events arriving before any fetch succeeded and while none
// is running are dropped, since the next fetch reads newer state.
//
// # Failures
//
// A failed bulk fetch returns an error wrapping ErrFetch and leaves the list as
// it was (empty before the first success). A lost subscription is logged and
// reported to the Observer; there is no reconnect.
//
// # Usage Example
//
//	r, err := reconcile.New[models.Profile](directory.Adapter{}, source, cfg.Reconcile, logger)
//	if err := r.Start(ctx); errors.Is(err, reconcile.ErrFetch) {
//	    logger.Warn("Initial fetch failed", zap.Error(err))
//	}
//	defer r.Stop()
//
//	visible := r.Filter("pune")
package reconcile
