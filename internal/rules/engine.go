package rules

import (
	"regexp"
	"strings"

	"github.com/truelens/truelens/internal/model"
)

// Engine evaluates the suspicion-flag predicates over claim text, claim
// domain, and session metadata. Every predicate is pure and independent of
// the others; the output order is the canonical evaluation order so results
// are deterministic across hosts.
type Engine struct {
	oversimplification []*regexp.Regexp
	blame              []*regexp.Regexp
}

// NewEngine compiles the pattern-based predicates.
func NewEngine() *Engine {
	return &Engine{
		oversimplification: compileAll(
			`cures? (all|everything|cancer|covid)`,
			`(prevents?|stops?) (all|any) (disease|illness)`,
			`(simple|easy) (cure|solution|fix)`,
			`just (drink|eat|take)`,
		),
		blame: compileAll(
			`(because of|caused by|fault of) (the )?(muslims|hindus|christians|jews|immigrants)`,
			`(they|them) (are|were) (responsible|to blame)`,
		),
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// Evaluate returns the matching flag names for one claim, in canonical order.
// The returned set is unique: a flag supported by two independent evidence
// paths (REPOSTED_ACROSS_TIME via hashing and via reverse-search matches)
// still appears once.
func (e *Engine) Evaluate(claimText, domain string, session *model.Session) []string {
	var flags []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			flags = append(flags, name)
		}
	}

	text := strings.ToLower(claimText)

	if hasSensationalLanguage(text) {
		add(FlagSensationalLanguage)
	}
	if hasAbsoluteAssertion(text) {
		add(FlagAbsoluteAssertion)
	}
	if hasNoEvidenceCited(text) {
		add(FlagNoEvidenceCited)
	}
	if hasUrgentSharing(text) {
		add(FlagUrgentSharing)
	}
	if e.hasScientificOversimplification(text, domain) {
		add(FlagScientificOversimplified)
	}
	if session != nil && session.Platform() == "" {
		add(FlagNoClearSource)
	}
	if hasMisleadingCaption(text) {
		add(FlagMisleadingCaption)
	}
	if hasCommunalFraming(text) {
		add(FlagCommunalFraming)
	}
	if e.hasBlameAssignment(text) {
		add(FlagBlameAssignment)
	}
	if hasIncitementRisk(text) {
		add(FlagIncitementRisk)
	}

	if session != nil && session.MediaContext != nil {
		for _, f := range mediaFlags(session.MediaContext) {
			add(f)
		}
	}

	return flags
}

var sensationalWords = []string{
	"shocking", "unbelievable", "amazing", "incredible", "miracle",
	"secret", "exposed", "revealed", "truth", "hidden", "conspiracy",
	"urgent", "breaking", "exclusive", "bombshell",
}

func hasSensationalLanguage(text string) bool {
	return containsAny(text, sensationalWords)
}

var absoluteWords = []string{
	"always", "never", "all", "none", "every", "completely",
	"totally", "absolutely", "definitely", "certainly", "guaranteed",
	"proven", "fact", "100%",
}

func hasAbsoluteAssertion(text string) bool {
	return containsAny(text, absoluteWords)
}

var evidenceIndicators = []string{
	"study", "research", "according to", "source", "report",
	"data", "statistics", "expert", "scientist", "doctor",
}

func hasNoEvidenceCited(text string) bool {
	return !containsAny(text, evidenceIndicators)
}

var urgentPhrases = []string{
	"share immediately", "share now", "forward this", "spread the word",
	"before it's deleted", "before they remove", "act now", "hurry",
}

func hasUrgentSharing(text string) bool {
	return containsAny(text, urgentPhrases)
}

// Oversimplification patterns only apply to scientific subject matter.
func (e *Engine) hasScientificOversimplification(text, domain string) bool {
	switch domain {
	case "medical", "scientific", "climate":
	default:
		return false
	}
	return matchesAny(text, e.oversimplification)
}

var strongAnswers = []string{"yes", "no", "definitely", "absolutely"}

func hasMisleadingCaption(text string) bool {
	return strings.Contains(text, "?") && containsAny(text, strongAnswers)
}

var communalIndicators = []string{
	"they", "them", "those people", "these people",
	"muslims", "hindus", "christians", "jews",
	"immigrants", "foreigners", "outsiders",
}

func hasCommunalFraming(text string) bool {
	return containsAny(text, communalIndicators)
}

func (e *Engine) hasBlameAssignment(text string) bool {
	return matchesAny(text, e.blame)
}

var incitementWords = []string{
	"attack", "destroy", "kill", "eliminate", "fight back",
	"take revenge", "punish", "teach them a lesson",
}

func hasIncitementRisk(text string) bool {
	return containsAny(text, incitementWords)
}

// mediaFlags evaluates the media-context predicate group. The hashing-based
// repetition check and the reverse-search matched-sources check both raise
// REPOSTED_ACROSS_TIME from different evidence for the same underlying fact;
// they are evaluated independently on purpose.
func mediaFlags(mc *model.MediaContext) []string {
	var flags []string

	if mc.Repetition.SeenBefore {
		flags = append(flags, FlagRepostedAcrossTime)
		if len(mc.Repetition.Platforms) > 1 {
			flags = append(flags, FlagCrossPlatformRecycling)
		}
		if s := mc.Repetition.SimilarityScore; s >= 0.85 && s < 0.98 {
			flags = append(flags, FlagEditedOrCroppedMedia)
		}
	}

	if mc.Context.ContextMismatch {
		flags = append(flags, FlagOutOfContextImage)
	}
	if mc.Context.OldestKnownUse != "" && len(mc.Context.MatchedSources) > 0 {
		flags = append(flags, FlagRepostedAcrossTime)
	}

	return flags
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
