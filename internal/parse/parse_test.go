package parse

import (
	"errors"
	"testing"
)

func TestParseExtraction_Strict(t *testing.T) {
	raw := `{
		"claims": [
			{"claim": "The dam was built in 1985", "domain": "general", "source_entry_ids": ["e1"]},
			{"claim": "Vaccines contain microchips", "domain": "medical", "source_entry_ids": ["e2", "e3"]}
		],
		"flagged_terms": [
			{"term": "shocking", "flag_name": "SENSATIONAL_LANGUAGE", "flag_category": "content", "entry_id": "e2"}
		]
	}`

	res, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Salvaged {
		t.Errorf("strict parse should not be marked salvaged")
	}
	if len(res.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(res.Claims))
	}
	if res.Claims[1].Domain != "medical" {
		t.Errorf("expected domain medical, got %s", res.Claims[1].Domain)
	}
	if len(res.Claims[1].SourceEntryIDs) != 2 {
		t.Errorf("expected 2 source entry ids, got %v", res.Claims[1].SourceEntryIDs)
	}
	if len(res.FlaggedTerms) != 1 || res.FlaggedTerms[0].Term != "shocking" {
		t.Errorf("unexpected flagged terms: %v", res.FlaggedTerms)
	}
}

func TestParseExtraction_CleansMarkdownAndSloppyJSON(t *testing.T) {
	raw := "```json\n" + `{
		claims: [
			{claim: "The lake dried up", domain: "climate", source_entry_ids: ["e1"],},
		],
		flagged_terms: [],
	}` + "\n```"

	res, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Salvaged {
		t.Errorf("cleaned response should parse strictly, not via salvage")
	}
	if len(res.Claims) != 1 || res.Claims[0].Claim != "The lake dried up" {
		t.Errorf("unexpected claims: %v", res.Claims)
	}
}

func TestParseExtraction_SalvagesTruncatedResponse(t *testing.T) {
	// Response cut off mid-way through the third claim object.
	raw := `{"claims": [
		{"claim": "First complete claim", "domain": "general", "source_entry_ids": ["e1"]},
		{"claim": "Second complete claim", "domain": "medical", "source_entry_ids": ["e2"]},
		{"claim": "Third claim is cut o`

	res, err := ParseExtraction(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Salvaged {
		t.Errorf("expected salvaged result")
	}
	if len(res.Claims) != 2 {
		t.Fatalf("expected exactly 2 salvaged claims, got %d", len(res.Claims))
	}
	if res.Claims[0].Claim != "First complete claim" || res.Claims[1].Claim != "Second complete claim" {
		t.Errorf("unexpected salvaged claims: %v", res.Claims)
	}
}

func TestParseExtraction_Unusable(t *testing.T) {
	_, err := ParseExtraction("I could not find any claims in this content.")
	if !errors.Is(err, ErrUnusable) {
		t.Errorf("expected ErrUnusable, got %v", err)
	}
}

func TestSalvage_BracesInsideStrings(t *testing.T) {
	raw := `{"claims": [
		{"claim": "The sign read {closed} all week", "domain": "general", "source_entry_ids": ["e1"]},
		{"claim": "Broken `

	res := Salvage(raw)
	if len(res.Claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(res.Claims))
	}
	if res.Claims[0].Claim != "The sign read {closed} all week" {
		t.Errorf("unexpected claim text: %q", res.Claims[0].Claim)
	}
}

func TestSalvage_StopsAtArrayEnd(t *testing.T) {
	// Objects after the claims array must not be swept in.
	raw := `{"claims": [
		{"claim": "Inside the array", "domain": "general", "source_entry_ids": ["e1"]}
	], "other": {"claim": "Outside the array"}}`

	res := Salvage(raw)
	if len(res.Claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(res.Claims))
	}
	if res.Claims[0].Claim != "Inside the array" {
		t.Errorf("unexpected claim: %q", res.Claims[0].Claim)
	}
}

func TestSalvage_DropsBrokenObjects(t *testing.T) {
	raw := `{"claims": [
		{"claim": "Good claim", "domain": "general", "source_entry_ids": []},
		{"domain": "general"},
		{"claim": "Another good claim", "domain": "general", "source_entry_ids": []}
	]}`

	res := Salvage(raw)
	// The middle object parses but has no claim text, so it is dropped.
	if len(res.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(res.Claims))
	}
}

func TestParseVerification(t *testing.T) {
	res, err := ParseVerification(`{"verdict": "FALSE", "reasoning": "Contradicted by WHO guidance.", "sources_cited": ["who.int"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verdict != "FALSE" {
		t.Errorf("expected verdict FALSE, got %s", res.Verdict)
	}
	if len(res.SourcesCited) != 1 {
		t.Errorf("expected 1 source, got %v", res.SourcesCited)
	}
}

func TestParseVerification_MissingVerdict(t *testing.T) {
	_, err := ParseVerification(`{"reasoning": "no verdict here"}`)
	if !errors.Is(err, ErrUnusable) {
		t.Errorf("expected ErrUnusable, got %v", err)
	}

	_, err = ParseVerification("not json at all")
	if !errors.Is(err, ErrUnusable) {
		t.Errorf("expected ErrUnusable, got %v", err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "code fence stripped",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare keys quoted",
			in:   `{verdict: "TRUE"}`,
			want: `{"verdict": "TRUE"}`,
		},
		{
			name: "trailing commas removed",
			in:   `{"a": [1, 2,],}`,
			want: `{"a": [1, 2]}`,
		},
		{
			name: "comment lines removed",
			in:   "{\n// model note\n\"a\": 1}",
			want: "{\n\n\"a\": 1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
