package jobs

import "time"

// JobDescription is a saved target job a user tailors resumes against.
type JobDescription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	RawText   string    `json:"description"`
	CreatedAt time.Time `json:"createdAt"`
}
