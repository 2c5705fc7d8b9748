package llm

import _ "embed"

//go:embed prompts/tailor_v1.txt
var tailorPromptV1 string

// TailorPrompt returns the system prompt for the tailoring call.
func TailorPrompt() string {
	return tailorPromptV1
}
