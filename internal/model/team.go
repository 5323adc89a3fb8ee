package model

// Team groups users under a name. Members is the expanded view of the
// stored member id list; users that no longer exist are not listed.
type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members"`
}
