// Package docstore is the keyed document store capability behind profiles
// and orders. Collections hold schemaless documents addressed by key.
package docstore

import "context"

type Document map[string]interface{}

// Entry pairs a document with its storage key.
type Entry struct {
	Key string
	Doc Document
}

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value interface{}
}

// Order sorts query results by a top-level document field.
type Order struct {
	Field string
	Desc  bool
}

type Store interface {
	// Get returns the document at collection/key or errors.ErrNotFound.
	Get(c context.Context, collection, key string) (Document, error)
	// Set writes the document. With merge, supplied fields are merged into
	// the existing document instead of replacing it.
	Set(c context.Context, collection, key string, doc Document, merge bool) error
	// Add stores the document under a generated key and returns that key.
	Add(c context.Context, collection string, doc Document) (string, error)
	// Query returns the entries matching filter, sorted by order.
	Query(c context.Context, collection string, filter Filter, order Order) ([]Entry, error)
}

func (d Document) clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
