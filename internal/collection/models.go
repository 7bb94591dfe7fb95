package collection

import "go.mongodb.org/mongo-driver/bson"

// Document is a schema-less record. Values are whatever JSON or BSON decoding
// produces: nil, bool, numbers, strings, nested documents and arrays.
type Document = bson.M

// Names of the fields the gateway writes on every stored document.
const (
	FieldUUID       = "uuid"
	FieldCreateTime = "create_time"
	FieldUpdateTime = "update_time"
	FieldID         = "_id"
)

// DefaultProjection hides the store's identity field.
func DefaultProjection() Document {
	return Document{FieldID: 0}
}

// FindRequest is the body of POST /{collection}/find.
// A missing or null projection means DefaultProjection.
type FindRequest struct {
	Filter     Document `json:"filter" binding:"required"`
	Projection Document `json:"projection"`
	IsMany     bool     `json:"is_many"`
}

// UpdateRequest is the body of POST /{collection}/update and its
// find_one_and_update alias.
type UpdateRequest struct {
	Filter Document `json:"filter" binding:"required"`
	Update Document `json:"update" binding:"required"`
	IsMany bool     `json:"is_many"`
}

// DeleteRequest is the body of POST /{collection}/delete.
type DeleteRequest struct {
	Filter Document `json:"filter" binding:"required"`
	IsMany bool     `json:"is_many"`
}

// Envelope is the response shape of every collection operation.
// Status false always comes with a non-empty Message.
type Envelope struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    []Document `json:"data"`
}

// Success returns a status=true envelope carrying docs. Data is never nil so
// it serializes as [] rather than null.
func Success(docs ...Document) Envelope {
	if docs == nil {
		docs = []Document{}
	}
	return Envelope{Status: true, Data: docs}
}

// Failure returns a status=false envelope. An empty message is replaced so the
// envelope always explains itself.
func Failure(message string) Envelope {
	if message == "" {
		message = "unknown error"
	}
	return Envelope{Status: false, Message: message, Data: []Document{}}
}
