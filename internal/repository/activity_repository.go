package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// ActivityInput is the payload for logging an activity.
type ActivityInput struct {
	UserID       string          `json:"user_id" validate:"required"`
	ActivityType string          `json:"activity_type" validate:"required,max=100"`
	Duration     *model.Duration `json:"duration" validate:"-"`
}

// ActivityPatch updates an activity. The owning user cannot be changed.
type ActivityPatch struct {
	ActivityType *string         `json:"activity_type" validate:"omitnil,required,max=100"`
	Duration     *model.Duration `json:"duration" validate:"-"`
}

type ActivityRepo struct {
	store    docstore.Store
	resolver *UserResolver
}

func NewActivityRepo(store docstore.Store, resolver *UserResolver) *ActivityRepo {
	return &ActivityRepo{store: store, resolver: resolver}
}

// Create logs an activity for in.UserID, which must name an existing user.
// Nothing is written when it does not.
func (r *ActivityRepo) Create(ctx context.Context, in ActivityInput) (model.Activity, error) {
	in.ActivityType = strings.TrimSpace(in.ActivityType)
	if err := validateInput(in); err != nil {
		return model.Activity{}, err
	}
	if err := checkDuration(in.Duration, true); err != nil {
		return model.Activity{}, err
	}
	owner, err := r.resolver.ResolveOne(ctx, in.UserID)
	if err != nil {
		return model.Activity{}, err
	}

	doc, err := encode(activityDoc{
		UserID:       owner.ID,
		ActivityType: in.ActivityType,
		DurationUS:   in.Duration.Microseconds(),
	})
	if err != nil {
		return model.Activity{}, storageFailure("encode activity", err)
	}
	id, err := r.store.Insert(ctx, CollActivities, doc)
	if err != nil {
		return model.Activity{}, storageFailure("insert activity", err)
	}
	pub := owner.Public()
	return model.Activity{ID: id, User: &pub, ActivityType: in.ActivityType, Duration: *in.Duration}, nil
}

func (r *ActivityRepo) Get(ctx context.Context, id string) (model.Activity, error) {
	doc, err := getDoc(ctx, r.store, CollActivities, id, "get activity")
	if err != nil {
		return model.Activity{}, err
	}
	return r.expand(ctx, newOwnerLookup(r.store), doc)
}

func (r *ActivityRepo) List(ctx context.Context) ([]model.Activity, error) {
	return r.find(ctx, nil)
}

// ListByUser returns the activities logged by userID.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID string) ([]model.Activity, error) {
	return r.find(ctx, docstore.Filter{"user_id": userID})
}

func (r *ActivityRepo) find(ctx context.Context, f docstore.Filter) ([]model.Activity, error) {
	docs, err := findDocs(ctx, r.store, CollActivities, f, "list activities")
	if err != nil {
		return nil, err
	}
	users := newOwnerLookup(r.store)
	out := make([]model.Activity, 0, len(docs))
	for _, doc := range docs {
		a, err := r.expand(ctx, users, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *ActivityRepo) Update(ctx context.Context, id string, patch ActivityPatch) (model.Activity, error) {
	if _, err := getDoc(ctx, r.store, CollActivities, id, "get activity"); err != nil {
		return model.Activity{}, err
	}
	if patch.ActivityType != nil {
		v := strings.TrimSpace(*patch.ActivityType)
		patch.ActivityType = &v
	}
	if err := validateInput(patch); err != nil {
		return model.Activity{}, err
	}
	if err := checkDuration(patch.Duration, false); err != nil {
		return model.Activity{}, err
	}

	changes := docstore.Document{}
	if patch.ActivityType != nil {
		changes["activity_type"] = *patch.ActivityType
	}
	if patch.Duration != nil {
		changes["duration_us"] = patch.Duration.Microseconds()
	}
	if len(changes) > 0 {
		if err := updateDoc(ctx, r.store, CollActivities, id, changes, "update activity"); err != nil {
			return model.Activity{}, err
		}
	}
	return r.Get(ctx, id)
}

func (r *ActivityRepo) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.store, CollActivities, id, "delete activity")
}

func (r *ActivityRepo) expand(ctx context.Context, users *ownerLookup, doc docstore.Document) (model.Activity, error) {
	var d activityDoc
	id, err := decode(doc, &d)
	if err != nil {
		return model.Activity{}, storageFailure("decode activity", err)
	}
	owner, err := users.get(ctx, d.UserID)
	if err != nil {
		return model.Activity{}, err
	}
	return model.Activity{
		ID:           id,
		User:         owner,
		ActivityType: d.ActivityType,
		Duration:     model.DurationFromMicroseconds(d.DurationUS),
	}, nil
}

func checkDuration(d *model.Duration, required bool) error {
	if d == nil {
		if required {
			return &ValidationError{Field: "duration", Reason: "is required"}
		}
		return nil
	}
	if *d < 0 {
		return &ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return nil
}
