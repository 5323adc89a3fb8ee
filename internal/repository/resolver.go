package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// UserResolver turns client-supplied user ids into live user records.
type UserResolver struct {
	store docstore.Store
}

func NewUserResolver(store docstore.Store) *UserResolver {
	return &UserResolver{store: store}
}

// ResolveMany looks up each id once, in first-seen order. Ids that do not
// name an existing user are returned in unresolved and never fail the call;
// only storage failures produce an error.
func (r *UserResolver) ResolveMany(ctx context.Context, ids []string) (resolved []model.User, unresolved []string, err error) {
	seen := make(map[string]struct{}, len(ids))
	resolved = []model.User{}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		u, err := loadUser(ctx, r.store, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				unresolved = append(unresolved, raw)
				continue
			}
			return nil, nil, err
		}
		resolved = append(resolved, u)
	}
	return resolved, unresolved, nil
}

// ResolveOne returns the user named by id or ErrUserNotFound.
func (r *UserResolver) ResolveOne(ctx context.Context, id string) (model.User, error) {
	u, err := loadUser(ctx, r.store, strings.TrimSpace(id))
	if errors.Is(err, ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// ids returns the identifiers of users, never nil.
func ids(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
