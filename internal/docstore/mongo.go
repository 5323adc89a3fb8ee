package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each collection onto a MongoDB collection. Identifiers are
// ObjectID hex strings stored in _id, so sorting by _id yields insertion
// order.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndex creates an ascending index on field, used for lookups the
// repositories run often (users by email, rows by user). A unique index
// makes conflicting writes fail with ErrDuplicate.
func (s *MongoStore) EnsureIndex(ctx context.Context, collection, field string, unique bool) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(unique),
	})
	return wrap("index", collection, err)
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id := primitive.NewObjectID().Hex()
	m := toBSON(withoutID(doc))
	m["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, m); err != nil {
		return "", wrap("insert", collection, duplicateKey(err))
	}
	return id, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, wrap("get", collection, err)
	}
	doc, err := fromBSON(m)
	return doc, wrap("get", collection, err)
}

// Find implements Store. MongoDB equality already matches array fields by
// membership, so the filter passes through unchanged.
func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	q := toBSON(Document(filter))
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, q, opts)
	if err != nil {
		return nil, wrap("find", collection, err)
	}
	var ms []bson.M
	if err := cur.All(ctx, &ms); err != nil {
		return nil, wrap("find", collection, err)
	}
	out := make([]Document, 0, len(ms))
	for _, m := range ms {
		doc, err := fromBSON(m)
		if err != nil {
			return nil, wrap("find", collection, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Update implements Store.
func (s *MongoStore) Update(ctx context.Context, collection, id string, partial Document) error {
	patch := withoutID(partial)
	coll := s.db.Collection(collection)
	if len(patch) == 0 {
		// $set rejects an empty document; only confirm the target exists.
		n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return wrap("update", collection, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": toBSON(patch)})
	if err != nil {
		return wrap("update", collection, duplicateKey(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("delete", collection, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// fromBSON moves _id to the id key and normalizes driver types (primitive.A,
// int32/int64) into the shapes the other backends return.
func fromBSON(m bson.M) (Document, error) {
	id, _ := m["_id"].(string)
	delete(m, "_id")
	return withID(Document(m), id)
}

func duplicateKey(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// toBSON copies doc, turning json.Number values into int64 or float64 so
// they are stored as BSON numbers rather than strings.
func toBSON(doc Document) bson.M {
	m := make(bson.M, len(doc))
	for k, v := range doc {
		m[k] = bsonValue(v)
	}
	return m
}

func bsonValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return toBSON(Document(t))
	case Document:
		return toBSON(t)
	case []any:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = bsonValue(e)
		}
		return out
	}
	return v
}
