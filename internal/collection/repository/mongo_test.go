package repository

import (
	"context"
	"testing"

	"github.com/mongoapi/mongoapi/internal/collection"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find one match", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "name", Value: "Ann"},
			{Key: "uuid", Value: "0123456789abcdef0123456789abcdef"},
		}))

		got, err := col.FindOne(ctx, collection.Document{"name": "Ann"}, collection.DefaultProjection())
		require.NoError(mt, err)
		require.Equal(mt, "Ann", got["name"])
		require.Equal(mt, "0123456789abcdef0123456789abcdef", got["uuid"])
	})

	mt.Run("find one no match", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := col.FindOne(ctx, collection.Document{"name": "Zed"}, collection.DefaultProjection())
		require.NoError(mt, err)
		require.Nil(mt, got)
	})

	mt.Run("find many across batches", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{{Key: "name", Value: "Ann"}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{{Key: "name", Value: "Bob"}}),
		)

		docs, err := col.Find(ctx, collection.Document{}, collection.DefaultProjection())
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		require.Equal(mt, "Ann", docs[0]["name"])
		require.Equal(mt, "Bob", docs[1]["name"])
	})

	mt.Run("find many empty", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		docs, err := col.Find(ctx, collection.Document{}, nil)
		require.NoError(mt, err)
		require.NotNil(mt, docs)
		require.Empty(mt, docs)
	})

	mt.Run("find command error", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "unknown operator: $bogus",
		}))

		_, err := col.Find(ctx, collection.Document{"a": collection.Document{"$bogus": 1}}, nil)
		require.Error(mt, err)
		require.Contains(mt, err.Error(), "unknown operator")
	})

	mt.Run("insert one", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ok, err := col.InsertOne(ctx, collection.Document{"name": "Ann"})
		require.NoError(mt, err)
		require.True(mt, ok)
	})

	mt.Run("insert many", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ok, err := col.InsertMany(ctx, []collection.Document{{"name": "Ann"}, {"name": "Bob"}})
		require.NoError(mt, err)
		require.True(mt, ok)
	})

	mt.Run("insert duplicate key", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		ok, err := col.InsertOne(ctx, collection.Document{"_id": 1})
		require.Error(mt, err)
		require.False(mt, ok)
		require.Contains(mt, err.Error(), "duplicate key error")
	})

	mt.Run("update many", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))

		err := col.UpdateMany(ctx, collection.Document{"team": "a"}, collection.Document{"$set": collection.Document{"active": true}})
		require.NoError(mt, err)
	})

	mt.Run("find one and update match", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{{Key: "name", Value: "Ann"}, {Key: "age", Value: 31}}},
		))

		got, err := col.FindOneAndUpdate(ctx,
			collection.Document{"name": "Ann"},
			collection.Document{"$set": collection.Document{"age": 31}},
			collection.DefaultProjection())
		require.NoError(mt, err)
		require.Equal(mt, "Ann", got["name"])
		require.EqualValues(mt, 31, got["age"])
	})

	mt.Run("find one and update no match", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := col.FindOneAndUpdate(ctx,
			collection.Document{"name": "Zed"},
			collection.Document{"$set": collection.Document{"age": 31}},
			collection.DefaultProjection())
		require.NoError(mt, err)
		require.Nil(mt, got)
	})

	mt.Run("delete one and many", func(mt *mtest.T) {
		col := NewMongoStore(mt.DB).Collection("users")
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
		)

		ok, err := col.DeleteOne(ctx, collection.Document{"name": "Ann"})
		require.NoError(mt, err)
		require.True(mt, ok)

		ok, err = col.DeleteMany(ctx, collection.Document{})
		require.NoError(mt, err)
		require.True(mt, ok)
	})
}
