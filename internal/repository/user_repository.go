package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/model"
)

// ErrInvalidCredentials is returned by Authenticate when the email is
// unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialHasher is the one-way password transform used on writes.
type CredentialHasher interface {
	Hash(plain string) (string, error)
	Matches(plain, stored string) bool
}

// UserInput is the payload for creating a user.
type UserInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPatch carries the fields an update supplies; nil means untouched.
type UserPatch struct {
	Username *string `json:"username" validate:"omitnil,required,max=100"`
	Email    *string `json:"email" validate:"omitnil,required,email"`
	Password *string `json:"password" validate:"omitnil,required"`
}

type UserRepo struct {
	store  docstore.Store
	hasher CredentialHasher
}

func NewUserRepo(store docstore.Store, hasher CredentialHasher) *UserRepo {
	return &UserRepo{store: store, hasher: hasher}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create validates in, enforces email uniqueness and stores the user with
// a hashed credential.
func (r *UserRepo) Create(ctx context.Context, in UserInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return model.User{}, err
	}
	if err := r.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return model.User{}, err
	}
	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, &ValidationError{Field: "password", Reason: err.Error()}
	}

	doc, err := encode(userDoc{Username: in.Username, Email: in.Email, Password: hash})
	if err != nil {
		return model.User{}, storageFailure("encode user", err)
	}
	id, err := r.store.Insert(ctx, CollUsers, doc)
	if errors.Is(err, docstore.ErrDuplicate) {
		// a concurrent create won the race past ensureEmailFree
		return model.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return model.User{}, storageFailure("insert user", err)
	}
	log.Info("user created", "id", id)
	return model.User{ID: id, Username: in.Username, Email: in.Email, Password: hash}, nil
}

// Get returns the user with id or ErrNotFound.
func (r *UserRepo) Get(ctx context.Context, id string) (model.User, error) {
	return loadUser(ctx, r.store, id)
}

// List returns every user in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	docs, err := findDocs(ctx, r.store, CollUsers, nil, "list users")
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(docs))
	for _, doc := range docs {
		u, err := userFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Update applies patch to the user. A submitted password is hashed only
// when it is a new plaintext: echoing back the stored credential, or
// resending the plaintext it was made from, leaves the hash untouched.
func (r *UserRepo) Update(ctx context.Context, id string, patch UserPatch) (model.User, error) {
	cur, err := loadUser(ctx, r.store, id)
	if err != nil {
		return model.User{}, err
	}
	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		patch.Username = &v
	}
	if patch.Email != nil {
		v := normalizeEmail(*patch.Email)
		patch.Email = &v
	}
	if err := validateInput(patch); err != nil {
		return model.User{}, err
	}

	changes := docstore.Document{}
	if patch.Username != nil && *patch.Username != cur.Username {
		changes["username"] = *patch.Username
		cur.Username = *patch.Username
	}
	if patch.Email != nil && *patch.Email != cur.Email {
		if err := r.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return model.User{}, err
		}
		changes["email"] = *patch.Email
		cur.Email = *patch.Email
	}
	if patch.Password != nil && r.passwordChanged(*patch.Password, cur.Password) {
		hash, err := r.hasher.Hash(*patch.Password)
		if err != nil {
			return model.User{}, &ValidationError{Field: "password", Reason: err.Error()}
		}
		changes["password"] = hash
		cur.Password = hash
	}

	if len(changes) == 0 {
		return cur, nil
	}
	if err := updateDoc(ctx, r.store, CollUsers, id, changes, "update user"); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, err
	}
	return cur, nil
}

func (r *UserRepo) passwordChanged(submitted, stored string) bool {
	if submitted == stored {
		return false
	}
	return !r.hasher.Matches(submitted, stored)
}

// Delete removes the user after walking every entity that references it:
// the id is pulled from all team member lists, and the user's activities
// and leaderboard rows are deleted. The user document goes last, so a
// failed step leaves the user in place. The steps are not transactional;
// a crash part way through can leave some references behind.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := loadUser(ctx, r.store, id); err != nil {
		return err
	}

	teams, err := findDocs(ctx, r.store, CollTeams, docstore.Filter{"member_ids": id}, "find user teams")
	if err != nil {
		return err
	}
	for _, doc := range teams {
		var t teamDoc
		teamID, err := decode(doc, &t)
		if err != nil {
			return storageFailure("decode team", err)
		}
		kept := make([]string, 0, len(t.MemberIDs))
		for _, m := range t.MemberIDs {
			if m != id {
				kept = append(kept, m)
			}
		}
		err = updateDoc(ctx, r.store, CollTeams, teamID, docstore.Document{"member_ids": kept}, "remove team member")
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	activities, err := r.deleteOwned(ctx, CollActivities, id)
	if err != nil {
		return err
	}
	scores, err := r.deleteOwned(ctx, CollLeaderboard, id)
	if err != nil {
		return err
	}

	if err := deleteDoc(ctx, r.store, CollUsers, id, "delete user"); err != nil {
		return err
	}
	log.Info("user deleted", "id", id, "teams", len(teams), "activities", activities, "leaderboard", scores)
	return nil
}

// deleteOwned removes every row in coll whose user_id is userID.
func (r *UserRepo) deleteOwned(ctx context.Context, coll, userID string) (int, error) {
	docs, err := findDocs(ctx, r.store, coll, docstore.Filter{"user_id": userID}, "find "+coll)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, doc := range docs {
		rowID, _ := doc[docstore.IDField].(string)
		err := deleteDoc(ctx, r.store, coll, rowID, "delete "+coll)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Authenticate checks a plaintext password against the stored credential
// of the user registered under email.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := r.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !r.hasher.Matches(password, u.Password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (r *UserRepo) findByEmail(ctx context.Context, email string) (model.User, error) {
	if email == "" {
		return model.User{}, ErrNotFound
	}
	docs, err := findDocs(ctx, r.store, CollUsers, docstore.Filter{"email": email}, "find user by email")
	if err != nil {
		return model.User{}, err
	}
	if len(docs) == 0 {
		return model.User{}, ErrNotFound
	}
	return userFromDoc(docs[0])
}

// ensureEmailFree fails with ErrDuplicateEmail when another user (other
// than exceptID) already holds email.
func (r *UserRepo) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	docs, err := findDocs(ctx, r.store, CollUsers, docstore.Filter{"email": email}, "find user by email")
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if id, _ := doc[docstore.IDField].(string); id != exceptID {
			return ErrDuplicateEmail
		}
	}
	return nil
}
