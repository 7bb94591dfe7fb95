package repository

import (
	"context"
	"errors"

	"github.com/mongoapi/mongoapi/internal/collection"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore implements Store on top of a MongoDB database handle.
// The handle is shared by all requests; the driver pools connections.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Collection returns a fresh handle on every call. MongoDB creates the
// collection lazily on first write.
func (s *MongoStore) Collection(name string) Collection {
	return &MongoCollection{col: s.db.Collection(name)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// MongoCollection adapts *mongo.Collection to Collection.
type MongoCollection struct {
	col *mongo.Collection
}

// acknowledged folds the driver's unacknowledged-write sentinel into the
// boolean result; any other error is returned as is.
func acknowledged(err error) (bool, error) {
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *MongoCollection) FindOne(ctx context.Context, filter, projection collection.Document) (collection.Document, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var d collection.Document
	if err := m.col.FindOne(ctx, filter, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (m *MongoCollection) Find(ctx context.Context, filter, projection collection.Document) ([]collection.Document, error) {
	opts := options.Find()
	if projection != nil {
		opts.SetProjection(projection)
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []collection.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoCollection) InsertOne(ctx context.Context, doc collection.Document) (bool, error) {
	_, err := m.col.InsertOne(ctx, doc)
	return acknowledged(err)
}

func (m *MongoCollection) InsertMany(ctx context.Context, docs []collection.Document) (bool, error) {
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	_, err := m.col.InsertMany(ctx, batch)
	return acknowledged(err)
}

func (m *MongoCollection) UpdateMany(ctx context.Context, filter, update collection.Document) error {
	_, err := m.col.UpdateMany(ctx, filter, update)
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return nil
	}
	return err
}

func (m *MongoCollection) FindOneAndUpdate(ctx context.Context, filter, update, projection collection.Document) (collection.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if projection != nil {
		opts.SetProjection(projection)
	}
	var d collection.Document
	if err := m.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (m *MongoCollection) DeleteOne(ctx context.Context, filter collection.Document) (bool, error) {
	_, err := m.col.DeleteOne(ctx, filter)
	return acknowledged(err)
}

func (m *MongoCollection) DeleteMany(ctx context.Context, filter collection.Document) (bool, error) {
	_, err := m.col.DeleteMany(ctx, filter)
	return acknowledged(err)
}
