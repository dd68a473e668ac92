package rules

// FlagDefinition describes one named suspicion indicator and its score penalty.
// The full set is a closed configuration consulted by scoring, extraction
// prompt construction, and explanation rendering.
type FlagDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Penalty     int    `json:"penalty"`
}

// Flag names. Grouped by the evidence that triggers them.
const (
	FlagSensationalLanguage      = "SENSATIONAL_LANGUAGE"
	FlagAbsoluteAssertion        = "ABSOLUTE_ASSERTION"
	FlagNoEvidenceCited          = "NO_EVIDENCE_CITED"
	FlagUrgentSharing            = "URGENT_SHARING"
	FlagScientificOversimplified = "SCIENTIFIC_OVERSIMPLIFICATION"
	FlagNoClearSource            = "NO_CLEAR_SOURCE"
	FlagMisleadingCaption        = "MISLEADING_CAPTION"
	FlagCommunalFraming          = "COMMUNAL_FRAMING"
	FlagBlameAssignment          = "BLAME_ASSIGNMENT"
	FlagIncitementRisk           = "INCITEMENT_RISK"
	FlagRepostedAcrossTime       = "REPOSTED_ACROSS_TIME"
	FlagCrossPlatformRecycling   = "CROSS_PLATFORM_RECYCLING"
	FlagEditedOrCroppedMedia     = "EDITED_OR_CROPPED_MEDIA"
	FlagOutOfContextImage        = "OUT_OF_CONTEXT_IMAGE"
	FlagRewrittenMisinformation  = "REWRITTEN_MISINFORMATION"
)

// Definitions returns the closed flag configuration in canonical order.
func Definitions() []FlagDefinition {
	return []FlagDefinition{
		{FlagSensationalLanguage, "Uses sensational or emotionally charged language", "content", 15},
		{FlagAbsoluteAssertion, "Makes absolute claims without nuance or qualification", "content", 10},
		{FlagNoEvidenceCited, "Cites no study, source, or expert to support the claim", "content", 10},
		{FlagUrgentSharing, "Pressures the reader to share or forward immediately", "content", 20},
		{FlagScientificOversimplified, "Oversimplifies medical or scientific facts", "content", 20},
		{FlagNoClearSource, "Content has no clear platform or source attribution", "source", 15},
		{FlagMisleadingCaption, "Caption poses a question then asserts a strong answer", "content", 15},
		{FlagCommunalFraming, "Frames the claim along communal or divisive group lines", "harm", 20},
		{FlagBlameAssignment, "Assigns blame to a specific community or group", "harm", 25},
		{FlagIncitementRisk, "Language carries a risk of inciting violence or hatred", "harm", 30},
		{FlagRepostedAcrossTime, "Media was seen before and is being reposted over time", "media", 10},
		{FlagCrossPlatformRecycling, "Media recycled across more than one platform", "media", 15},
		{FlagEditedOrCroppedMedia, "Media closely matches earlier media but appears edited or cropped", "media", 15},
		{FlagOutOfContextImage, "Image appears online in a different context than presented here", "media", 25},
		{FlagRewrittenMisinformation, "Semantically matches a previously debunked claim", "semantic", 30},
	}
}

// DefinitionsByName returns the flag configuration keyed by flag name.
func DefinitionsByName() map[string]FlagDefinition {
	defs := Definitions()
	byName := make(map[string]FlagDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}
	return byName
}

// Penalty returns the penalty for a flag name, or 0 for an unknown flag.
func Penalty(name string) int {
	if d, ok := DefinitionsByName()[name]; ok {
		return d.Penalty
	}
	return 0
}
