package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mongoapi/mongoapi/internal/collection"
)

// newDocumentID returns 32 lowercase hex characters from a random v4 UUID.
func newDocumentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// now is truncated to milliseconds, the resolution of a BSON date, so the
// timestamps read back equal the ones written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// stampNew copies doc and sets uuid, create_time and update_time on the copy.
// The three synthetic fields replace caller values of the same name.
func stampNew(doc collection.Document, id string, at time.Time) collection.Document {
	out := make(collection.Document, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}
	out[collection.FieldUUID] = id
	out[collection.FieldCreateTime] = at
	out[collection.FieldUpdateTime] = at
	return out
}

// setWithUpdateTime builds the {$set: ...} document for an update: the
// caller's fields plus update_time.
func setWithUpdateTime(update collection.Document, at time.Time) collection.Document {
	set := make(collection.Document, len(update)+1)
	for k, v := range update {
		set[k] = v
	}
	set[collection.FieldUpdateTime] = at
	return collection.Document{"$set": set}
}
