// Package docstore is a thin adapter over schema-less, collection-oriented
// backing stores. It knows nothing about users, teams or any other entity:
// documents are plain maps keyed by an opaque, store-assigned identifier.
// Entity invariants (uniqueness, references, cascades) belong to the
// repository layer built on top of it.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// IDField is the document key under which every backend exposes the
// store-assigned identifier on documents it returns.
const IDField = "id"

// ErrNotFound is returned by Get, Update and Delete when the identifier does
// not exist in the collection.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned by Insert and Update when a unique index rejects
// the write.
var ErrDuplicate = errors.New("duplicate key")

// Document is a schema-less record. Values must be JSON/BSON encodable.
type Document map[string]any

// Filter selects documents by field equality. A field holding an array
// matches when one of its elements equals the filter value. An empty filter
// matches every document in the collection.
type Filter map[string]any

// Store is the contract every backend implements. Single-document operations
// are atomic; nothing spans more than one document.
type Store interface {
	// Insert stores doc and returns the identifier assigned to it. Any id
	// key already present on doc is ignored.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Find returns matching documents in insertion order.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// Update merges the top-level fields of partial into the stored
	// document. Fields absent from partial are left untouched.
	Update(ctx context.Context, collection, id string, partial Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Backend failures are wrapped in opError so callers can tell which
// operation failed without inspecting driver-specific error types.
type opError struct {
	op         string
	collection string
	err        error
}

func (e *opError) Error() string {
	return fmt.Sprintf("docstore %s %s: %v", e.op, e.collection, e.err)
}

func (e *opError) Unwrap() error { return e.err }

func wrap(op, collection string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		return err
	}
	return &opError{op: op, collection: collection, err: err}
}

// DecodeJSON parses a JSON object into a Document. Numbers are kept as
// json.Number so integers beyond 2^53 survive the trip.
func DecodeJSON(b []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	doc := Document{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// withoutID returns a shallow copy of doc minus the id key.
func withoutID(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// matches reports whether doc satisfies every clause of f. Used by the
// in-memory backend; database backends translate filters to queries.
func matches(doc Document, f Filter) bool {
	for field, want := range f {
		got, ok := doc[field]
		if !ok {
			return false
		}
		if !valueMatches(got, want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	rv := reflect.ValueOf(got)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), want) {
				return true
			}
		}
		return false
	}
	return reflect.DeepEqual(got, want)
}
