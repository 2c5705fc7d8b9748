package generations

import "errors"

var (
	ErrNotFound            = errors.New("generation not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrResumeNotFound      = errors.New("resume not found")
	ErrJobNotFound         = errors.New("job description not found")
	ErrNotCompleted        = errors.New("generation is not completed")
	ErrGenerationFailed    = errors.New("generation failed")
)
