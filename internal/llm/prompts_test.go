package llm

import (
	"strings"
	"testing"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

func TestBuildExtractionPrompt(t *testing.T) {
	entries := []model.Entry{
		{ID: "e1", Text: "Hot water kills the virus"},
		{ID: "e2", Text: "   "},
		{ID: "e3", Text: "Forward this to everyone"},
	}
	mc := &model.MediaContext{
		Context: model.ContextVerification{
			OldestKnownUse: "2019-01-15",
			MatchedSources: []model.MatchedSource{
				{Title: "Old article", Domain: "news.example", Date: "2019-01-15"},
			},
		},
	}

	prompt := BuildExtractionPrompt(entries, mc, rules.Definitions())

	if !strings.Contains(prompt, "[e1]: Hot water kills the virus") {
		t.Errorf("expected entry line in prompt")
	}
	if strings.Contains(prompt, "[e2]") {
		t.Errorf("blank entries must be omitted")
	}
	if !strings.Contains(prompt, "Oldest known use of this image: 2019-01-15") {
		t.Errorf("expected media context in prompt")
	}
	if !strings.Contains(prompt, "- SENSATIONAL_LANGUAGE: ") {
		t.Errorf("expected flag definitions in prompt")
	}
	if !strings.Contains(prompt, `"claims"`) || !strings.Contains(prompt, `"flagged_terms"`) {
		t.Errorf("expected JSON schema in prompt")
	}
}

func TestBuildExtractionPrompt_NoEntriesOrMedia(t *testing.T) {
	prompt := BuildExtractionPrompt(nil, nil, rules.Definitions())

	if !strings.Contains(prompt, "(no text entries)") {
		t.Errorf("expected placeholder for empty entries")
	}
	if !strings.Contains(prompt, "No media analysis available.") {
		t.Errorf("expected placeholder for missing media context")
	}
}

func TestBuildVerificationPrompt(t *testing.T) {
	evidence := []model.EvidenceSnippet{
		{Source: "who.int", Snippet: "There is no evidence that hot water kills the virus."},
		{Source: "cdc.gov", Snippet: "Wash hands regularly."},
	}

	prompt := BuildVerificationPrompt("Hot water kills the virus", "medical", evidence)

	if !strings.Contains(prompt, `CLAIM: "Hot water kills the virus"`) {
		t.Errorf("expected quoted claim in prompt")
	}
	if !strings.Contains(prompt, "DOMAIN: medical") {
		t.Errorf("expected domain in prompt")
	}
	if !strings.Contains(prompt, "[1] Source: who.int") || !strings.Contains(prompt, "[2] Source: cdc.gov") {
		t.Errorf("expected numbered evidence snippets in prompt")
	}
	if !strings.Contains(prompt, `"verdict"`) {
		t.Errorf("expected JSON schema in prompt")
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient(model.LLMConfig{}); err == nil {
		t.Errorf("expected error without API key or base URL")
	}

	// A base URL alone is fine for local OpenAI-compatible endpoints.
	if _, err := NewClient(model.LLMConfig{BaseURL: "http://localhost:11434/v1"}); err != nil {
		t.Errorf("unexpected error with base URL: %v", err)
	}
}
