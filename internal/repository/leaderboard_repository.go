package repository

import (
	"context"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// LeaderboardInput records one scoring event. Score is required but any
// integer, including zero and negatives, is accepted.
type LeaderboardInput struct {
	UserID string `json:"user_id" validate:"required"`
	Score  *int   `json:"score" validate:"-"`
}

type LeaderboardPatch struct {
	Score *int `json:"score" validate:"-"`
}

type LeaderboardRepo struct {
	store    docstore.Store
	resolver *UserResolver
}

func NewLeaderboardRepo(store docstore.Store, resolver *UserResolver) *LeaderboardRepo {
	return &LeaderboardRepo{store: store, resolver: resolver}
}

// Create stores a score for in.UserID, which must name an existing user.
func (r *LeaderboardRepo) Create(ctx context.Context, in LeaderboardInput) (model.Leaderboard, error) {
	if err := validateInput(in); err != nil {
		return model.Leaderboard{}, err
	}
	if in.Score == nil {
		return model.Leaderboard{}, &ValidationError{Field: "score", Reason: "is required"}
	}
	owner, err := r.resolver.ResolveOne(ctx, in.UserID)
	if err != nil {
		return model.Leaderboard{}, err
	}

	doc, err := encode(leaderboardDoc{UserID: owner.ID, Score: *in.Score})
	if err != nil {
		return model.Leaderboard{}, storageFailure("encode leaderboard", err)
	}
	id, err := r.store.Insert(ctx, CollLeaderboard, doc)
	if err != nil {
		return model.Leaderboard{}, storageFailure("insert leaderboard", err)
	}
	pub := owner.Public()
	return model.Leaderboard{ID: id, User: &pub, Score: *in.Score}, nil
}

func (r *LeaderboardRepo) Get(ctx context.Context, id string) (model.Leaderboard, error) {
	doc, err := getDoc(ctx, r.store, CollLeaderboard, id, "get leaderboard")
	if err != nil {
		return model.Leaderboard{}, err
	}
	return r.expand(ctx, newOwnerLookup(r.store), doc)
}

func (r *LeaderboardRepo) List(ctx context.Context) ([]model.Leaderboard, error) {
	return r.find(ctx, nil)
}

// ListByUser returns the rows recorded for userID.
func (r *LeaderboardRepo) ListByUser(ctx context.Context, userID string) ([]model.Leaderboard, error) {
	return r.find(ctx, docstore.Filter{"user_id": userID})
}

func (r *LeaderboardRepo) find(ctx context.Context, f docstore.Filter) ([]model.Leaderboard, error) {
	docs, err := findDocs(ctx, r.store, CollLeaderboard, f, "list leaderboard")
	if err != nil {
		return nil, err
	}
	users := newOwnerLookup(r.store)
	out := make([]model.Leaderboard, 0, len(docs))
	for _, doc := range docs {
		e, err := r.expand(ctx, users, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *LeaderboardRepo) Update(ctx context.Context, id string, patch LeaderboardPatch) (model.Leaderboard, error) {
	if _, err := getDoc(ctx, r.store, CollLeaderboard, id, "get leaderboard"); err != nil {
		return model.Leaderboard{}, err
	}
	if patch.Score != nil {
		changes := docstore.Document{"score": *patch.Score}
		if err := updateDoc(ctx, r.store, CollLeaderboard, id, changes, "update leaderboard"); err != nil {
			return model.Leaderboard{}, err
		}
	}
	return r.Get(ctx, id)
}

func (r *LeaderboardRepo) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.store, CollLeaderboard, id, "delete leaderboard")
}

func (r *LeaderboardRepo) expand(ctx context.Context, users *ownerLookup, doc docstore.Document) (model.Leaderboard, error) {
	var d leaderboardDoc
	id, err := decode(doc, &d)
	if err != nil {
		return model.Leaderboard{}, storageFailure("decode leaderboard", err)
	}
	owner, err := users.get(ctx, d.UserID)
	if err != nil {
		return model.Leaderboard{}, err
	}
	return model.Leaderboard{ID: id, User: owner, Score: d.Score}, nil
}
