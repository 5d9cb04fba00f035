// Package store is the persistence collaborator: a document store offering
// create/update/get/list/subscribe by key, eventually consistent with
// server-assigned timestamps. Consumers depend on the Store interface, not
// on a concrete backend.
package store

import "context"

// Collection names used by the engine.
const (
	CollectionIssues    = "issues"
	CollectionEmployees = "employees"
)

// Store is the document persistence contract. Writes are last-write-wins;
// the store provides no cross-document transaction. Subscriptions deliver a
// change signal whenever a collection mutates; consumers re-read the latest
// snapshot (push-based live view).
type Store interface {
	// CreateDocument persists doc under a fresh key and returns it. The
	// store assigns creation and update timestamps.
	CreateDocument(ctx context.Context, collection string, doc interface{}) (string, error)

	// UpdateDocument merges the partial patch into the stored document and
	// refreshes its update timestamp. Unknown ids fail with
	// DOCUMENT_NOT_FOUND.
	UpdateDocument(ctx context.Context, collection, id string, patch map[string]interface{}) error

	// DeleteDocument removes a document. Deleting a missing document is a
	// no-op: weak references may already dangle.
	DeleteDocument(ctx context.Context, collection, id string) error

	// GetDocument unmarshals the stored document (with its id and
	// timestamps) into out.
	GetDocument(ctx context.Context, collection, id string, out interface{}) error

	// ListDocuments unmarshals the full collection snapshot into out, a
	// pointer to a slice, ordered by creation time.
	ListDocuments(ctx context.Context, collection string, out interface{}) error

	// SubscribeCollection returns a channel that signals after every
	// mutation of the collection, and a cancel function tearing the
	// subscription down. The channel is closed on cancellation.
	SubscribeCollection(ctx context.Context, collection string) (<-chan struct{}, func(), error)
}
