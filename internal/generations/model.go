package generations

import (
	"encoding/json"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Generation is one tailoring run: a resume rewritten against a job
// description. A completed generation always carries both the feedback and
// the structured resume; a failed one carries neither.
type Generation struct {
	ID               string
	UserID           string
	ResumeID         string
	JobID            string
	Status           string
	Score            *int
	FeedbackJSON     json.RawMessage
	StructuredResume json.RawMessage
	PDFKey           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
