package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

type WorkoutInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type WorkoutPatch struct {
	Name        *string `json:"name" validate:"omitnil,required,max=100"`
	Description *string `json:"description"`
}

// WorkoutRepo is plain CRUD; workouts reference nothing.
type WorkoutRepo struct {
	store docstore.Store
}

func NewWorkoutRepo(store docstore.Store) *WorkoutRepo {
	return &WorkoutRepo{store: store}
}

func (r *WorkoutRepo) Create(ctx context.Context, in WorkoutInput) (model.Workout, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return model.Workout{}, err
	}
	doc, err := encode(workoutDoc(in))
	if err != nil {
		return model.Workout{}, storageFailure("encode workout", err)
	}
	id, err := r.store.Insert(ctx, CollWorkouts, doc)
	if err != nil {
		return model.Workout{}, storageFailure("insert workout", err)
	}
	return model.Workout{ID: id, Name: in.Name, Description: in.Description}, nil
}

func (r *WorkoutRepo) Get(ctx context.Context, id string) (model.Workout, error) {
	doc, err := getDoc(ctx, r.store, CollWorkouts, id, "get workout")
	if err != nil {
		return model.Workout{}, err
	}
	return workoutFromDoc(doc)
}

func (r *WorkoutRepo) List(ctx context.Context) ([]model.Workout, error) {
	docs, err := findDocs(ctx, r.store, CollWorkouts, nil, "list workouts")
	if err != nil {
		return nil, err
	}
	out := make([]model.Workout, 0, len(docs))
	for _, doc := range docs {
		w, err := workoutFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *WorkoutRepo) Update(ctx context.Context, id string, patch WorkoutPatch) (model.Workout, error) {
	if _, err := getDoc(ctx, r.store, CollWorkouts, id, "get workout"); err != nil {
		return model.Workout{}, err
	}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		patch.Name = &v
	}
	if err := validateInput(patch); err != nil {
		return model.Workout{}, err
	}
	changes := docstore.Document{}
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if len(changes) > 0 {
		if err := updateDoc(ctx, r.store, CollWorkouts, id, changes, "update workout"); err != nil {
			return model.Workout{}, err
		}
	}
	return r.Get(ctx, id)
}

func (r *WorkoutRepo) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.store, CollWorkouts, id, "delete workout")
}

func workoutFromDoc(doc docstore.Document) (model.Workout, error) {
	var d workoutDoc
	id, err := decode(doc, &d)
	if err != nil {
		return model.Workout{}, storageFailure("decode workout", err)
	}
	return model.Workout{ID: id, Name: d.Name, Description: d.Description}, nil
}
