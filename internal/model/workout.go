package model

// Workout is a standalone workout definition.
type Workout struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
