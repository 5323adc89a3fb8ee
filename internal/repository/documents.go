package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// Collection names shared by every backend.
const (
	CollUsers       = "users"
	CollTeams       = "teams"
	CollActivities  = "activities"
	CollLeaderboard = "leaderboard"
	CollWorkouts    = "workouts"
)

// Stored shapes. These are what lands in the document store; the model
// package holds what callers see.

type userDoc struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type teamDoc struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type activityDoc struct {
	UserID       string `json:"user_id"`
	ActivityType string `json:"activity_type"`
	DurationUS   int64  `json:"duration_us"`
}

type leaderboardDoc struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

type workoutDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// encode converts a stored shape into a schema-less document.
func encode(v any) (docstore.Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeJSON(b)
}

// decode fills v from doc and returns the document id.
func decode(doc docstore.Document, v any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return "", err
	}
	id, _ := doc[docstore.IDField].(string)
	return id, nil
}

func getDoc(ctx context.Context, store docstore.Store, coll, id, op string) (docstore.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	doc, err := store.Get(ctx, coll, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure(op, err)
	}
	return doc, nil
}

func findDocs(ctx context.Context, store docstore.Store, coll string, f docstore.Filter, op string) ([]docstore.Document, error) {
	docs, err := store.Find(ctx, coll, f)
	if err != nil {
		return nil, storageFailure(op, err)
	}
	return docs, nil
}

func updateDoc(ctx context.Context, store docstore.Store, coll, id string, partial docstore.Document, op string) error {
	if err := store.Update(ctx, coll, id, partial); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, docstore.ErrDuplicate) {
			return docstore.ErrDuplicate
		}
		return storageFailure(op, err)
	}
	return nil
}

func deleteDoc(ctx context.Context, store docstore.Store, coll, id, op string) error {
	if id == "" {
		return ErrNotFound
	}
	if err := store.Delete(ctx, coll, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return storageFailure(op, err)
	}
	return nil
}

// loadUser fetches the stored user, credential included.
func loadUser(ctx context.Context, store docstore.Store, id string) (model.User, error) {
	doc, err := getDoc(ctx, store, CollUsers, id, "get user")
	if err != nil {
		return model.User{}, err
	}
	return userFromDoc(doc)
}

func userFromDoc(doc docstore.Document) (model.User, error) {
	var d userDoc
	id, err := decode(doc, &d)
	if err != nil {
		return model.User{}, storageFailure("decode user", err)
	}
	return model.User{ID: id, Username: d.Username, Email: d.Email, Password: d.Password}, nil
}

// ownerLookup expands user references for a batch of rows, fetching each
// distinct user once. A user that no longer exists expands to nil.
type ownerLookup struct {
	store docstore.Store
	seen  map[string]*model.User
}

func newOwnerLookup(store docstore.Store) *ownerLookup {
	return &ownerLookup{store: store, seen: make(map[string]*model.User)}
}

func (l *ownerLookup) get(ctx context.Context, id string) (*model.User, error) {
	if u, ok := l.seen[id]; ok {
		return u, nil
	}
	u, err := loadUser(ctx, l.store, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.seen[id] = nil
			return nil, nil
		}
		return nil, err
	}
	pub := u.Public()
	l.seen[id] = &pub
	return &pub, nil
}
