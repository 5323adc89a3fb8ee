//go:build integration

package docstore

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("DOCSTORE_MONGO_URI")
	if uri == "" {
		t.Skip("DOCSTORE_MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("docstore_it")
	s := NewMongoStore(db)

	coll := "it_activities"
	t.Cleanup(func() { _ = db.Collection(coll).Drop(ctx) })
	require.NoError(t, s.EnsureIndex(ctx, coll, "user_id", false))

	first, err := s.Insert(ctx, coll, Document{"user_id": "u1", "duration_us": 1800000000})
	require.NoError(t, err)
	second, err := s.Insert(ctx, coll, Document{"user_id": "u2", "tags": []string{"run", "easy"}})
	require.NoError(t, err)

	docs, err := s.Find(ctx, coll, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0][IDField])
	assert.Equal(t, second, docs[1][IDField])
	assert.Equal(t, json.Number("1800000000"), docs[0]["duration_us"])

	docs, err = s.Find(ctx, coll, Filter{"tags": "easy"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []any{"run", "easy"}, docs[0]["tags"])

	require.NoError(t, s.Update(ctx, coll, first, Document{}))
	require.NoError(t, s.Update(ctx, coll, first, Document{"duration_us": 60}))
	got, err := s.Get(ctx, coll, first)
	require.NoError(t, err)
	assert.Equal(t, json.Number("60"), got["duration_us"])
	assert.Equal(t, "u1", got["user_id"])

	require.NoError(t, s.Delete(ctx, coll, first))
	_, err = s.Get(ctx, coll, first)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, coll, first, Document{}), ErrNotFound)
}

func TestMongoStoreUniqueIndexAndLargeNumbers(t *testing.T) {
	uri := os.Getenv("DOCSTORE_MONGO_URI")
	if uri == "" {
		t.Skip("DOCSTORE_MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("docstore_it")
	s := NewMongoStore(db)

	coll := "it_users"
	t.Cleanup(func() { _ = db.Collection(coll).Drop(ctx) })
	require.NoError(t, s.EnsureIndex(ctx, coll, "email", true))

	big, err := DecodeJSON([]byte(`{"email":"ana@x.com","score":9007199254740993}`))
	require.NoError(t, err)
	id, err := s.Insert(ctx, coll, big)
	require.NoError(t, err)

	got, err := s.Get(ctx, coll, id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got["score"])

	_, err = s.Insert(ctx, coll, Document{"email": "ana@x.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	other, err := s.Insert(ctx, coll, Document{"email": "bo@x.com"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Update(ctx, coll, other, Document{"email": "ana@x.com"}), ErrDuplicate)
}
