// Package store provides durable key-to-document storage for cached API
// responses and workflow state. Three backends share one contract: a local
// filesystem directory, an S3 bucket, and a redis server. Callers address
// documents by relative slash-separated paths (e.g. "players/555.json")
// and must not depend on which backend is active.
package store

import "context"

// Store is the backend-agnostic document store contract.
//
// Read is fail-open: missing, unreadable, or otherwise broken documents
// are logged by the implementation and reported as absent. Write failures
// are returned so callers can decide whether to log-and-continue (the
// cache path) or surface them (the job-status path).
type Store interface {
	// Read returns the document stored at path, or nil if absent.
	Read(ctx context.Context, path string) []byte

	// Write stores the document at path, creating any intermediate
	// structure the backend needs.
	Write(ctx context.Context, path string, data []byte) error

	// Exists reports whether a document is stored at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes the document at path. It returns true only if a
	// document existed and was removed.
	Delete(ctx context.Context, path string) bool
}
