package model

// Leaderboard is a single scoring event for a user. A user may have any
// number of rows; Score is unbounded and may be zero or negative.
type Leaderboard struct {
	ID    string `json:"id"`
	User  *User  `json:"user"`
	Score int    `json:"score"`
}
