package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mongoapi/mongoapi/internal/collection"
	"github.com/mongoapi/mongoapi/internal/collection/repository"
	"github.com/mongoapi/mongoapi/pkg/logger"
	"github.com/mongoapi/mongoapi/pkg/metrics"
)

var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrMissingFilter   = errors.New("filter is required")
	ErrMissingUpdate   = errors.New("update is required")
)

// Messages used when the store does not acknowledge a write.
const (
	MsgInsertFailed = "insert failed"
	MsgDeleteFailed = "delete failed"
)

// Operation names, also used as metric labels.
const (
	OpFind   = "find"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Service translates collection requests into store calls and always answers
// with an Envelope. Store errors never escape it.
type Service struct {
	store repository.Store
	now   func() time.Time
	newID func() string
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, now: now, newID: newDocumentID}
}

// Ping reports whether the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// run resolves the named collection and executes fn against it. Returned
// errors and panics alike become a failure envelope, so every operation
// shares one failure path.
func (s *Service) run(op, name string, fn func(col repository.Collection) (collection.Envelope, error)) (env collection.Envelope) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			env = collection.Failure(fmt.Sprint(r))
		}
		status := metrics.StatusOK
		if !env.Status {
			status = metrics.StatusFailed
			logger.Warnw("operation failed", "operation", op, "collection", name, "message", env.Message)
		}
		metrics.Operations.WithLabelValues(op, status).Inc()
		metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	env, err := fn(s.store.Collection(name))
	if err != nil {
		return collection.Failure(err.Error())
	}
	return env
}

// Find returns at most one document unless IsMany is set, in which case all
// matches are returned without paging.
func (s *Service) Find(ctx context.Context, name string, req collection.FindRequest) collection.Envelope {
	return s.run(OpFind, name, func(col repository.Collection) (collection.Envelope, error) {
		if req.Filter == nil {
			return collection.Envelope{}, ErrMissingFilter
		}
		projection := req.Projection
		if projection == nil {
			projection = collection.DefaultProjection()
		}
		if !req.IsMany {
			d, err := col.FindOne(ctx, req.Filter, projection)
			if err != nil {
				return collection.Envelope{}, err
			}
			if len(d) == 0 {
				return collection.Success(), nil
			}
			return collection.Success(d), nil
		}
		docs, err := col.Find(ctx, req.Filter, projection)
		if err != nil {
			return collection.Envelope{}, err
		}
		return collection.Success(docs...), nil
	})
}

// Insert stores one document (object body) or a batch (array body). Each
// stored document gets a fresh uuid and matching create/update timestamps.
// Batches are not transactional.
func (s *Service) Insert(ctx context.Context, name string, body interface{}) collection.Envelope {
	return s.run(OpInsert, name, func(col repository.Collection) (collection.Envelope, error) {
		at := s.now()
		var (
			ok  bool
			err error
		)
		switch b := body.(type) {
		case map[string]interface{}:
			ok, err = col.InsertOne(ctx, stampNew(b, s.newID(), at))
		case collection.Document:
			ok, err = col.InsertOne(ctx, stampNew(b, s.newID(), at))
		case []interface{}:
			docs := make([]collection.Document, len(b))
			for i, el := range b {
				d, isDoc := toDocument(el)
				if !isDoc {
					return collection.Envelope{}, fmt.Errorf("%w: element %d is not an object", ErrInvalidDocument, i)
				}
				docs[i] = stampNew(d, s.newID(), at)
			}
			ok, err = col.InsertMany(ctx, docs)
		case []collection.Document:
			docs := make([]collection.Document, len(b))
			for i, d := range b {
				docs[i] = stampNew(d, s.newID(), at)
			}
			ok, err = col.InsertMany(ctx, docs)
		default:
			return collection.Envelope{}, fmt.Errorf("%w: body must be an object or an array of objects", ErrInvalidDocument)
		}
		if err != nil {
			return collection.Envelope{}, err
		}
		if !ok {
			return collection.Failure(MsgInsertFailed), nil
		}
		return collection.Success(), nil
	})
}

// Update merges the caller's fields and a fresh update_time into the matched
// document(s) with $set. In many mode no match count is reported. In single
// mode the updated document is returned, or no data when nothing matched.
func (s *Service) Update(ctx context.Context, name string, req collection.UpdateRequest) collection.Envelope {
	return s.run(OpUpdate, name, func(col repository.Collection) (collection.Envelope, error) {
		if req.Filter == nil {
			return collection.Envelope{}, ErrMissingFilter
		}
		if req.Update == nil {
			return collection.Envelope{}, ErrMissingUpdate
		}
		update := setWithUpdateTime(req.Update, s.now())
		if req.IsMany {
			if err := col.UpdateMany(ctx, req.Filter, update); err != nil {
				return collection.Envelope{}, err
			}
			return collection.Success(), nil
		}
		d, err := col.FindOneAndUpdate(ctx, req.Filter, update, collection.DefaultProjection())
		if err != nil {
			return collection.Envelope{}, err
		}
		if len(d) == 0 {
			return collection.Success(), nil
		}
		return collection.Success(d), nil
	})
}

// Delete removes the first match, or every match when IsMany is set.
func (s *Service) Delete(ctx context.Context, name string, req collection.DeleteRequest) collection.Envelope {
	return s.run(OpDelete, name, func(col repository.Collection) (collection.Envelope, error) {
		if req.Filter == nil {
			return collection.Envelope{}, ErrMissingFilter
		}
		var (
			ok  bool
			err error
		)
		if req.IsMany {
			ok, err = col.DeleteMany(ctx, req.Filter)
		} else {
			ok, err = col.DeleteOne(ctx, req.Filter)
		}
		if err != nil {
			return collection.Envelope{}, err
		}
		if !ok {
			return collection.Failure(MsgDeleteFailed), nil
		}
		return collection.Success(), nil
	})
}

func toDocument(v interface{}) (collection.Document, bool) {
	switch d := v.(type) {
	case map[string]interface{}:
		return collection.Document(d), true
	case collection.Document:
		return d, true
	}
	return nil, false
}
