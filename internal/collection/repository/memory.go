package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/mongoapi/mongoapi/internal/collection"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemoryStore is an in-process Store used for local development and tests.
// It understands equality filters (dotted paths included), $set updates and
// inclusion/exclusion projections. Everything else is rejected with
// ErrUnsupportedOperator.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]collection.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]collection.Document)}
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (m *memoryCollection) FindOne(ctx context.Context, filter, projection collection.Document) (collection.Document, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	for _, d := range m.store.collections[m.name] {
		ok, err := matches(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			return project(d, projection)
		}
	}
	return nil, nil
}

func (m *memoryCollection) Find(ctx context.Context, filter, projection collection.Document) ([]collection.Document, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	out := []collection.Document{}
	for _, d := range m.store.collections[m.name] {
		ok, err := matches(d, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p, err := project(d, projection)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryCollection) InsertOne(ctx context.Context, doc collection.Document) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if err := m.insertLocked(doc); err != nil {
		return false, err
	}
	return true, nil
}

// InsertMany is ordered and not atomic: documents before a failing one stay inserted.
func (m *memoryCollection) InsertMany(ctx context.Context, docs []collection.Document) (bool, error) {
	if len(docs) == 0 {
		return false, mongo.ErrEmptySlice
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, d := range docs {
		if err := m.insertLocked(d); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *memoryCollection) insertLocked(doc collection.Document) error {
	d := cloneDocument(doc)
	if _, ok := d[collection.FieldID]; !ok {
		d[collection.FieldID] = primitive.NewObjectID()
	}
	for _, existing := range m.store.collections[m.name] {
		if valuesEqual(existing[collection.FieldID], d[collection.FieldID]) {
			return fmt.Errorf("duplicate key error collection: %s index: _id_ dup key: { _id: %v }", m.name, d[collection.FieldID])
		}
	}
	m.store.collections[m.name] = append(m.store.collections[m.name], d)
	return nil
}

func (m *memoryCollection) UpdateMany(ctx context.Context, filter, update collection.Document) error {
	set, err := setFields(update)
	if err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	docs := m.store.collections[m.name]
	for i, d := range docs {
		ok, err := matches(d, filter)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		// documents updated before a failing one keep their changes
		updated, err := withSet(d, set)
		if err != nil {
			return err
		}
		docs[i] = updated
	}
	return nil
}

func (m *memoryCollection) FindOneAndUpdate(ctx context.Context, filter, update, projection collection.Document) (collection.Document, error) {
	set, err := setFields(update)
	if err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	docs := m.store.collections[m.name]
	for i, d := range docs {
		ok, err := matches(d, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		updated, err := withSet(d, set)
		if err != nil {
			return nil, err
		}
		docs[i] = updated
		return project(updated, projection)
	}
	return nil, nil
}

func (m *memoryCollection) DeleteOne(ctx context.Context, filter collection.Document) (bool, error) {
	return m.delete(filter, false)
}

func (m *memoryCollection) DeleteMany(ctx context.Context, filter collection.Document) (bool, error) {
	return m.delete(filter, true)
}

func (m *memoryCollection) delete(filter collection.Document, many bool) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	docs := m.store.collections[m.name]
	kept := docs[:0:0]
	removed := false
	for _, d := range docs {
		if removed && !many {
			kept = append(kept, d)
			continue
		}
		ok, err := matches(d, filter)
		if err != nil {
			return false, err
		}
		if ok {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if len(docs) > 0 {
		m.store.collections[m.name] = kept
	}
	return true, nil
}

func matches(doc, filter collection.Document) (bool, error) {
	for key, want := range filter {
		if strings.HasPrefix(key, "$") {
			return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, key)
		}
		if sub, ok := asDocument(want); ok {
			for k := range sub {
				if strings.HasPrefix(k, "$") {
					return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, k)
				}
			}
		}
		got, found := lookup(doc, key)
		if want == nil {
			// null matches both explicit null and a missing field
			if found && got != nil {
				return false, nil
			}
			continue
		}
		if !found || !fieldMatches(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// fieldMatches also lets a scalar match any element of an array field.
func fieldMatches(got, want interface{}) bool {
	if valuesEqual(got, want) {
		return true
	}
	if arr, ok := asArray(got); ok {
		if _, wantArr := asArray(want); !wantArr {
			for _, el := range arr {
				if valuesEqual(el, want) {
					return true
				}
			}
		}
	}
	return false
}

func lookup(doc collection.Document, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = doc
	for _, p := range parts {
		d, ok := asDocument(cur)
		if !ok {
			return nil, false
		}
		cur, ok = d[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setFields(update collection.Document) (collection.Document, error) {
	for key := range update {
		if key != "$set" {
			return nil, fmt.Errorf("%w: update key %s (only $set is supported)", ErrUnsupportedOperator, key)
		}
	}
	set, ok := asDocument(update["$set"])
	if !ok {
		return nil, fmt.Errorf("%w: $set requires a document", ErrUnsupportedOperator)
	}
	return set, nil
}

// withSet returns a copy of doc with set applied, leaving doc untouched when a
// path cannot be set. Like the server it refuses to descend through a value
// that is not a document.
func withSet(doc, set collection.Document) (collection.Document, error) {
	out := cloneDocument(doc)
	for path, v := range set {
		parts := strings.Split(path, ".")
		cur := out
		for i, p := range parts[:len(parts)-1] {
			existing, found := cur[p]
			if !found {
				next := collection.Document{}
				cur[p] = next
				cur = next
				continue
			}
			if _, isArr := asArray(existing); isArr {
				return nil, fmt.Errorf("%w: $set path %s traverses an array", ErrUnsupportedOperator, path)
			}
			next, ok := asDocument(existing)
			if !ok {
				return nil, fmt.Errorf("cannot create field '%s' in element {%s: %v}", parts[i+1], p, existing)
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = cloneValue(v)
	}
	return out, nil
}

func project(doc, projection collection.Document) (collection.Document, error) {
	if len(projection) == 0 {
		return cloneDocument(doc), nil
	}
	inclusion := false
	for k, v := range projection {
		if k != collection.FieldID && truthy(v) {
			inclusion = true
			break
		}
	}
	if !inclusion {
		out := cloneDocument(doc)
		for k, v := range projection {
			if !truthy(v) {
				delete(out, k)
			}
		}
		return out, nil
	}
	out := collection.Document{}
	for k, v := range projection {
		if k == collection.FieldID {
			continue
		}
		if !truthy(v) {
			return nil, fmt.Errorf("cannot do exclusion on field %s in inclusion projection", k)
		}
		if val, ok := doc[k]; ok {
			out[k] = cloneValue(val)
		}
	}
	if idv, ok := projection[collection.FieldID]; !ok || truthy(idv) {
		if id, ok := doc[collection.FieldID]; ok {
			out[collection.FieldID] = id
		}
	}
	return out, nil
}

func truthy(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if ia, ok := toInt64(a); ok {
		if ib, ok := toInt64(b); ok {
			return ia == ib
		}
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if da, ok := asDocument(a); ok {
		db, ok := asDocument(b)
		if !ok || len(da) != len(db) {
			return false
		}
		for k, va := range da {
			vb, ok := db[k]
			if !ok || !valuesEqual(va, vb) {
				return false
			}
		}
		return true
	}
	if aa, ok := asArray(a); ok {
		ab, ok := asArray(b)
		if !ok || len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !valuesEqual(aa[i], ab[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toInt64 reports integer values exactly, so integers beyond 2^53 do not
// collapse together the way their float64 forms would.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// storedNumber converts a json.Number to the value the driver would write:
// int64 when it fits, otherwise a double.
func storedNumber(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

func asDocument(v interface{}) (collection.Document, bool) {
	switch d := v.(type) {
	case collection.Document:
		return d, true
	case map[string]interface{}:
		return collection.Document(d), true
	}
	return nil, false
}

func asArray(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case []interface{}:
		return a, true
	case primitive.A:
		return a, true
	}
	return nil, false
}

func cloneDocument(d collection.Document) collection.Document {
	out := make(collection.Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	if n, ok := v.(json.Number); ok {
		return storedNumber(n)
	}
	if d, ok := asDocument(v); ok {
		return cloneDocument(d)
	}
	if a, ok := asArray(v); ok {
		out := make([]interface{}, len(a))
		for i, el := range a {
			out[i] = cloneValue(el)
		}
		return out
	}
	return v
}
