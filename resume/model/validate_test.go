package model

import (
	"encoding/json"
	"testing"
)

func TestParseFeedbackValid(t *testing.T) {
	raw := json.RawMessage(`{"score": 85, "strengths": ["a"], "weaknesses": [], "suggestions": ["b"], "atsKeywords": ["Go"]}`)
	fb, err := ParseFeedback(raw)
	if err != nil {
		t.Fatalf("ParseFeedback: %v", err)
	}
	if fb.Score != 85 || len(fb.ATSKeywords) != 1 {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
}

func TestParseFeedbackRejectsOutOfRangeScore(t *testing.T) {
	for _, raw := range []string{
		`{"score": -1, "strengths": [], "weaknesses": [], "suggestions": [], "atsKeywords": []}`,
		`{"score": 101, "strengths": [], "weaknesses": [], "suggestions": [], "atsKeywords": []}`,
	} {
		if _, err := ParseFeedback(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected rejection for %s", raw)
		}
	}
}

func TestParseFeedbackRejectsMissingKeys(t *testing.T) {
	raw := json.RawMessage(`{"score": 50, "strengths": []}`)
	if _, err := ParseFeedback(raw); err == nil {
		t.Fatal("expected rejection for missing required keys")
	}
}

func TestParseResumeValid(t *testing.T) {
	raw := json.RawMessage(`{
		"personal": {"name": "Ada", "email": "ada@example.com"},
		"summary": "Engineer.",
		"experience": [{"company": "AE", "position": "Dev", "startDate": "2020-01", "bullets": ["built x"]}],
		"education": [{"institution": "UoL", "degree": "BSc"}],
		"skills": {"technical": ["Go"], "soft": ["writing"]}
	}`)
	r, err := ParseResume(raw)
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if r.Personal.Name != "Ada" || len(r.Experience) != 1 {
		t.Fatalf("unexpected resume: %+v", r)
	}
}

func TestParseResumeRejectsMissingPersonal(t *testing.T) {
	raw := json.RawMessage(`{
		"summary": "Engineer.",
		"experience": [],
		"education": [],
		"skills": {"technical": [], "soft": []}
	}`)
	if _, err := ParseResume(raw); err == nil {
		t.Fatal("expected rejection for missing personal block")
	}
}

func TestParseResumeRejectsExperienceWithoutBullets(t *testing.T) {
	raw := json.RawMessage(`{
		"personal": {"name": "Ada", "email": "ada@example.com"},
		"summary": "",
		"experience": [{"company": "AE", "position": "Dev", "startDate": "2020-01"}],
		"education": [],
		"skills": {"technical": [], "soft": []}
	}`)
	if _, err := ParseResume(raw); err == nil {
		t.Fatal("expected rejection for experience entry without bullets")
	}
}
