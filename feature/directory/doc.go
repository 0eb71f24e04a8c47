// Package directory implements the public profile listing.
//
// A Service owns one reconcile.Reconciler over the profile collection: one
// bulk fetch of the public profiles followed by the collection's realtime
// change events. The HTTP handler serves the filtered view, manual refresh
// (pull-to-refresh), restart and status.
package directory
