package model

// User is a registered member of the tracker as returned to callers.
// The credential is carried only so repositories can hand it to the
// hasher; it never leaves the process in a response body.
//
// Fields:
//  ID       – store-assigned identifier.
//  Username – display name, at most 100 characters.
//  Email    – unique, normalized (trimmed, lower-cased) address.
//  Password – bcrypt hash; always omitted from JSON.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// Public returns a copy of u with the credential cleared, for embedding in
// other entities' responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
