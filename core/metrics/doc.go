// Package metrics exposes Prometheus collectors for the profile directory.
//
// The Reconciler collectors implement reconcile.Observer and track change event
// outcomes, bulk fetch results, lost subscriptions and the size of the public list.
// Handler serves a registry on a Fiber route (GET /metrics).
package metrics
