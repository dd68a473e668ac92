// Package parse converts possibly-malformed structured output from the
// generation backends into validated records. Strict parsing runs first;
// when it fails, a salvage pass recovers whatever complete objects survive
// in a truncated response.
package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/truelens/truelens/internal/model"
)

// ErrUnusable is returned when neither strict parsing nor salvage produced
// a single usable record.
var ErrUnusable = errors.New("parse: response unusable after salvage")

// RawClaim is one claim record as emitted by the extraction backend,
// before pipeline identifiers are assigned.
type RawClaim struct {
	Claim          string   `json:"claim"`
	Domain         string   `json:"domain"`
	SourceEntryIDs []string `json:"source_entry_ids"`
}

// ExtractionResult is the validated extraction payload. Salvaged reports
// whether the recovery path produced it, so callers can mark provenance.
type ExtractionResult struct {
	Claims       []RawClaim
	FlaggedTerms []model.FlaggedTerm
	Salvaged     bool
}

// VerificationResult is the validated verification payload.
type VerificationResult struct {
	Verdict      string   `json:"verdict"`
	Reasoning    string   `json:"reasoning"`
	SourcesCited []string `json:"sources_cited"`
}

type extractionPayload struct {
	Claims       []RawClaim          `json:"claims"`
	FlaggedTerms []model.FlaggedTerm `json:"flagged_terms"`
}

// ParseExtraction parses the raw extraction response. The primary path
// cleans the text and parses it as one JSON document; on failure the
// salvage path recovers complete objects from the claims and flagged_terms
// arrays. Returns ErrUnusable only when both paths yield nothing.
func ParseExtraction(raw string) (*ExtractionResult, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(Clean(raw)), &payload); err == nil {
		return &ExtractionResult{
			Claims:       payload.Claims,
			FlaggedTerms: payload.FlaggedTerms,
			Salvaged:     false,
		}, nil
	}

	res := Salvage(raw)
	if len(res.Claims) == 0 && len(res.FlaggedTerms) == 0 {
		return nil, ErrUnusable
	}
	return res, nil
}

// Salvage runs only the recovery path: it scans for the claims and
// flagged_terms array markers and re-parses every brace-balanced span as a
// standalone object, skipping spans that fail. It never returns an error;
// broken single objects are simply dropped.
func Salvage(raw string) *ExtractionResult {
	res := &ExtractionResult{Salvaged: true}

	for _, span := range objectSpans(raw, claimsMarker) {
		var c RawClaim
		if err := json.Unmarshal([]byte(Clean(span)), &c); err == nil && c.Claim != "" {
			res.Claims = append(res.Claims, c)
		}
	}
	for _, span := range objectSpans(raw, termsMarker) {
		var t model.FlaggedTerm
		if err := json.Unmarshal([]byte(Clean(span)), &t); err == nil && t.Term != "" {
			res.FlaggedTerms = append(res.FlaggedTerms, t)
		}
	}

	return res
}

// ParseVerification parses the raw verification response. Verdict coercion
// onto the closed set is the caller's job; this only validates shape.
func ParseVerification(raw string) (*VerificationResult, error) {
	var v VerificationResult
	if err := json.Unmarshal([]byte(Clean(raw)), &v); err != nil {
		return nil, ErrUnusable
	}
	if v.Verdict == "" {
		return nil, ErrUnusable
	}
	return &v, nil
}

var (
	claimsMarker = regexp.MustCompile(`"claims"\s*:\s*\[`)
	termsMarker  = regexp.MustCompile(`"flagged_terms"\s*:\s*\[`)

	commentLine   = regexp.MustCompile(`(?m)^\s*//.*$`)
	bareKey       = regexp.MustCompile(`([{,]\s*)([a-zA-Z0-9_]+)(\s*:)`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Clean normalizes backend output toward valid JSON: strips markdown code
// fencing and comment lines, quotes bare object keys, and removes trailing
// commas. It does not attempt to repair truncation.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		text = strings.Join(lines, "\n")
	}

	text = commentLine.ReplaceAllString(text, "")
	text = bareKey.ReplaceAllString(text, `$1"$2"$3`)
	text = trailingComma.ReplaceAllString(text, `$1`)

	return strings.TrimSpace(text)
}

// objectSpans walks forward from the array marker tracking brace depth and
// returns every span where the depth returns to zero after having opened.
// String contents are honored so braces inside quoted values do not skew
// the depth count.
func objectSpans(raw string, marker *regexp.Regexp) []string {
	loc := marker.FindStringIndex(raw)
	if loc == nil {
		return nil
	}

	var spans []string
	depth := 0
	objStart := -1
	inString := false
	escaped := false

	for i := loc[1]; i < len(raw); i++ {
		ch := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && objStart != -1 {
				spans = append(spans, raw[objStart:i+1])
				objStart = -1
			}
		case ']':
			if depth == 0 {
				return spans
			}
		}
	}

	return spans
}
