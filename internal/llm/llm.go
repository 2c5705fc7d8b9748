package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts hosted model providers for resume tailoring.
type Client interface {
	TailorResume(ctx context.Context, input TailorInput) (json.RawMessage, error)
}

// TailorInput captures the inputs needed for a tailoring run.
type TailorInput struct {
	ResumeText     string
	JobTitle       string
	Company        string
	JobDescription string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation used when no provider is configured.
type PlaceholderClient struct{}

// TailorResume returns ErrNotImplemented.
func (PlaceholderClient) TailorResume(ctx context.Context, input TailorInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
