package resumes

import "time"

// Resume represents an uploaded resume file owned by a user. The text is
// extracted once at upload so the generation pipeline never re-parses the
// original document.
type Resume struct {
	ID            string
	UserID        string
	FileName      string
	SizeBytes     int64
	StorageKey    string
	ExtractedText string
	CreatedAt     time.Time
}
