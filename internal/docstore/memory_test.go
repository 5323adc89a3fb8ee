package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertAssignsFreshIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id1, err := s.Insert(ctx, "workouts", Document{"id": "client-chosen", "name": "Plank"})
	require.NoError(t, err)
	id2, err := s.Insert(ctx, "workouts", Document{"name": "Squat"})
	require.NoError(t, err)

	assert.NotEqual(t, "client-chosen", id1)
	assert.NotEqual(t, id1, id2)

	doc, err := s.Get(ctx, "workouts", id1)
	require.NoError(t, err)
	assert.Equal(t, id1, doc[IDField])
	assert.Equal(t, "Plank", doc["name"])
}

func TestMemoryStoreMissingDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "users", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "users", "nope", Document{"a": 1}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "users", "nope"), ErrNotFound)

	docs, err := s.Find(ctx, "users", nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreFindMatchesScalarsAndArrayMembership(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Insert(ctx, "teams", Document{"name": "Reds", "member_ids": []string{"u1", "u2"}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "teams", Document{"name": "Blues", "member_ids": []string{"u2"}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "teams", Document{"name": "Greens", "member_ids": []string{}})
	require.NoError(t, err)

	docs, err := s.Find(ctx, "teams", Filter{"member_ids": "u2"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Reds", docs[0]["name"])
	assert.Equal(t, "Blues", docs[1]["name"])

	docs, err = s.Find(ctx, "teams", Filter{"member_ids": "u1", "name": "Reds"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, err = s.Find(ctx, "teams", Filter{"name": "Purples"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreUpdateMergesTopLevelFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "leaderboard", Document{"user_id": "u1", "score": 10})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "leaderboard", id, Document{"score": -3, "id": "ignored"}))

	doc, err := s.Get(ctx, "leaderboard", id)
	require.NoError(t, err)
	assert.Equal(t, "u1", doc["user_id"])
	assert.Equal(t, json.Number("-3"), doc["score"])
	assert.Equal(t, id, doc[IDField])
}

func TestMemoryStoreReturnedDocumentsDoNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "workouts", Document{"name": "Plank"})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "workouts", id)
	require.NoError(t, err)
	doc["name"] = "mutated"

	again, err := s.Get(ctx, "workouts", id)
	require.NoError(t, err)
	assert.Equal(t, "Plank", again["name"])
}

func TestMemoryStoreDeleteKeepsOrderOfRemaining(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var ids []string
	for _, n := range []string{"a", "b", "c"} {
		id, err := s.Insert(ctx, "workouts", Document{"name": n})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.Delete(ctx, "workouts", ids[1]))

	docs, err := s.Find(ctx, "workouts", Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["name"])
	assert.Equal(t, "c", docs[1]["name"])

	_, err = s.Get(ctx, "workouts", ids[1])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreKeepsLargeIntegersExact(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "leaderboard", Document{"score": int64(9007199254740993)})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "leaderboard", id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), doc["score"])

	docs, err := s.Find(ctx, "leaderboard", Filter{"score": int64(9007199254740993)})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDecodeJSONUsesNumbers(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"score":9007199254740993,"ratio":0.5,"tags":[1,"a"]}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), doc["score"])
	assert.Equal(t, json.Number("0.5"), doc["ratio"])
	assert.Equal(t, []any{json.Number("1"), "a"}, doc["tags"])
}
