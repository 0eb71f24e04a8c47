// Package export writes snapshots of the public directory to object storage.
//
// Snapshots are gzip compressed JSON objects named
// snapshots/public-profiles-<unix>.json.gz.
package export
