package repository

import (
	"context"
	"errors"

	"github.com/mongoapi/mongoapi/internal/collection"
)

// ErrUnsupportedOperator is returned by stores that cannot evaluate a query
// or update operator.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// Store resolves collections by name. Resolution has no side effects and is
// not cached; an unknown name behaves like an empty collection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// Collection is the set of store calls the gateway translates requests into.
// FindOne and FindOneAndUpdate return (nil, nil) when nothing matches. The
// bool returned by inserts and deletes is the store's acknowledgment.
type Collection interface {
	FindOne(ctx context.Context, filter, projection collection.Document) (collection.Document, error)
	Find(ctx context.Context, filter, projection collection.Document) ([]collection.Document, error)
	InsertOne(ctx context.Context, doc collection.Document) (bool, error)
	InsertMany(ctx context.Context, docs []collection.Document) (bool, error)
	UpdateMany(ctx context.Context, filter, update collection.Document) error
	// FindOneAndUpdate returns the document as it is after the update.
	FindOneAndUpdate(ctx context.Context, filter, update, projection collection.Document) (collection.Document, error)
	DeleteOne(ctx context.Context, filter collection.Document) (bool, error)
	DeleteMany(ctx context.Context, filter collection.Document) (bool, error)
}
