package model

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

var (
	resumeSchema   = mustCompile("schemas/resume.schema.json")
	feedbackSchema = mustCompile("schemas/feedback.schema.json")
)

func mustCompile(path string) *gojsonschema.Schema {
	raw, err := schemaFiles.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", path, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", path, err))
	}
	return schema
}

// ParseResume validates raw JSON against the resume schema and decodes it.
func ParseResume(raw json.RawMessage) (Resume, error) {
	if err := validate(resumeSchema, raw); err != nil {
		return Resume{}, fmt.Errorf("resume: %w", err)
	}
	var r Resume
	if err := json.Unmarshal(raw, &r); err != nil {
		return Resume{}, fmt.Errorf("resume: decode: %w", err)
	}
	return r, nil
}

// ParseFeedback validates raw JSON against the feedback schema and decodes it.
func ParseFeedback(raw json.RawMessage) (Feedback, error) {
	if err := validate(feedbackSchema, raw); err != nil {
		return Feedback{}, fmt.Errorf("feedback: %w", err)
	}
	var f Feedback
	if err := json.Unmarshal(raw, &f); err != nil {
		return Feedback{}, fmt.Errorf("feedback: decode: %w", err)
	}
	return f, nil
}

func validate(schema *gojsonschema.Schema, raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("schema validation failed: empty document")
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var msgs []string
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
