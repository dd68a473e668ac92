package model

// Session represents one batch of captured content submitted for evaluation.
// A session is immutable once ingested, except for MediaContext which the
// pipeline attaches before claim extraction runs.
type Session struct {
	ID           string         `json:"session_id"`
	Entries      []Entry        `json:"entries"`
	MediaMeta    *MediaMetadata `json:"media_metadata,omitempty"`
	MediaContext *MediaContext  `json:"media_analysis,omitempty"`
}

// Entry is one unit of captured text (subtitle line, OCR region, STT segment).
type Entry struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	ImageID string `json:"image_id,omitempty"`
	Source  string `json:"source,omitempty"` // subtitle, image, screen_capture, video_keyframe, audio
}

// MediaMetadata carries platform/source attribution captured alongside the content.
type MediaMetadata struct {
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url,omitempty"`
}

// MediaContext is the media-analysis collaborator's output (hashing + reverse search).
type MediaContext struct {
	Repetition RepetitionDetection `json:"repetition_detection"`
	Context    ContextVerification `json:"context_verification"`
}

// RepetitionDetection reports whether the media was seen before via perceptual hashing.
type RepetitionDetection struct {
	SeenBefore      bool     `json:"seen_before"`
	FirstSeen       string   `json:"first_seen,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	SimilarityScore float64  `json:"similarity_score,omitempty"`
}

// ContextVerification reports reverse-image-search findings.
type ContextVerification struct {
	OldestKnownUse  string          `json:"oldest_known_use,omitempty"`
	MatchedSources  []MatchedSource `json:"matched_sources,omitempty"`
	ContextMismatch bool            `json:"context_mismatch"`
}

// MatchedSource is one place the media was found online.
type MatchedSource struct {
	URL     string `json:"url,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
	Context string `json:"context,omitempty"`
}

// NothingDetected returns the default media context attached when a session
// has no image entries, so downstream stages see a uniform shape.
func NothingDetected() *MediaContext {
	return &MediaContext{
		Repetition: RepetitionDetection{SeenBefore: false},
		Context:    ContextVerification{ContextMismatch: false},
	}
}

// HasImages reports whether any entry references captured media.
func (s *Session) HasImages() bool {
	for _, e := range s.Entries {
		if e.ImageID != "" {
			return true
		}
		switch e.Source {
		case "image", "screen_capture", "video_keyframe":
			return true
		}
	}
	return false
}

// Platform returns the captured platform name, or "" when unknown.
func (s *Session) Platform() string {
	if s.MediaMeta == nil {
		return ""
	}
	return s.MediaMeta.Platform
}
