package repository

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// TeamInput is the payload for creating a team.
type TeamInput struct {
	Name      string   `json:"name" validate:"required,max=100"`
	MemberIDs []string `json:"member_ids"`
}

// TeamPatch updates a team. A nil MemberIDs leaves membership alone; a
// non-nil one, even empty, replaces the whole member list.
type TeamPatch struct {
	Name      *string   `json:"name" validate:"omitnil,required,max=100"`
	MemberIDs *[]string `json:"member_ids"`
}

// TeamRepo stores teams as a name plus an embedded list of member ids.
type TeamRepo struct {
	store    docstore.Store
	resolver *UserResolver
}

func NewTeamRepo(store docstore.Store, resolver *UserResolver) *TeamRepo {
	return &TeamRepo{store: store, resolver: resolver}
}

// Create stores a team whose members are the resolvable subset of
// in.MemberIDs. Unknown ids are dropped, not reported as errors.
func (r *TeamRepo) Create(ctx context.Context, in TeamInput) (model.Team, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return model.Team{}, err
	}
	members, unresolved, err := r.resolver.ResolveMany(ctx, in.MemberIDs)
	if err != nil {
		return model.Team{}, err
	}
	if len(unresolved) > 0 {
		log.Debug("dropping unresolved team members", "count", len(unresolved))
	}

	doc, err := encode(teamDoc{Name: in.Name, MemberIDs: ids(members)})
	if err != nil {
		return model.Team{}, storageFailure("encode team", err)
	}
	id, err := r.store.Insert(ctx, CollTeams, doc)
	if err != nil {
		return model.Team{}, storageFailure("insert team", err)
	}
	return model.Team{ID: id, Name: in.Name, Members: publicUsers(members)}, nil
}

// Get returns the team with its members expanded.
func (r *TeamRepo) Get(ctx context.Context, id string) (model.Team, error) {
	doc, err := getDoc(ctx, r.store, CollTeams, id, "get team")
	if err != nil {
		return model.Team{}, err
	}
	return r.expand(ctx, newOwnerLookup(r.store), doc)
}

// List returns every team with members expanded.
func (r *TeamRepo) List(ctx context.Context) ([]model.Team, error) {
	docs, err := findDocs(ctx, r.store, CollTeams, nil, "list teams")
	if err != nil {
		return nil, err
	}
	users := newOwnerLookup(r.store)
	out := make([]model.Team, 0, len(docs))
	for _, doc := range docs {
		t, err := r.expand(ctx, users, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Update renames the team and/or replaces its member list. Replacement
// clears the old list and attaches the resolvable subset of the new ids.
func (r *TeamRepo) Update(ctx context.Context, id string, patch TeamPatch) (model.Team, error) {
	if _, err := getDoc(ctx, r.store, CollTeams, id, "get team"); err != nil {
		return model.Team{}, err
	}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		patch.Name = &v
	}
	if err := validateInput(patch); err != nil {
		return model.Team{}, err
	}

	changes := docstore.Document{}
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.MemberIDs != nil {
		members, _, err := r.resolver.ResolveMany(ctx, *patch.MemberIDs)
		if err != nil {
			return model.Team{}, err
		}
		changes["member_ids"] = ids(members)
	}
	if len(changes) > 0 {
		if err := updateDoc(ctx, r.store, CollTeams, id, changes, "update team"); err != nil {
			return model.Team{}, err
		}
	}
	return r.Get(ctx, id)
}

// Delete removes the team. Its members are untouched.
func (r *TeamRepo) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.store, CollTeams, id, "delete team")
}

func (r *TeamRepo) expand(ctx context.Context, users *ownerLookup, doc docstore.Document) (model.Team, error) {
	var d teamDoc
	id, err := decode(doc, &d)
	if err != nil {
		return model.Team{}, storageFailure("decode team", err)
	}
	t := model.Team{ID: id, Name: d.Name, Members: []model.User{}}
	for _, mid := range d.MemberIDs {
		u, err := users.get(ctx, mid)
		if err != nil {
			return model.Team{}, err
		}
		if u != nil {
			t.Members = append(t.Members, *u)
		}
	}
	return t, nil
}

func publicUsers(users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
