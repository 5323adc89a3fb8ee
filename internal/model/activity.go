package model

// Activity is one logged workout session owned by exactly one user.
// User is expanded at read time and is nil only if the owning user
// disappeared without the cascade completing.
type Activity struct {
	ID           string   `json:"id"`
	User         *User    `json:"user"`
	ActivityType string   `json:"activity_type"`
	Duration     Duration `json:"duration"`
}
