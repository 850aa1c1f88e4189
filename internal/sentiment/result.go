package sentiment

// Modality identifies one of the three analysis channels. It indexes the
// fixed-size tables used during fusion.
type Modality int

const (
	Text Modality = iota
	Visual
	Audio
)

// ModalityCount is the number of modalities.
const ModalityCount = 3

// Modalities lists every modality in triplet order.
var Modalities = [ModalityCount]Modality{Text, Visual, Audio}

func (m Modality) String() string {
	switch m {
	case Text:
		return "text"
	case Visual:
		return "visual"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// MarshalText renders the modality by name.
func (m Modality) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Degradation names the fallback branch an analyzer took.
type Degradation string

const (
	DegradedNone             Degradation = ""
	DegradedNoTranscript     Degradation = "no_transcript"
	DegradedTranscriptError  Degradation = "transcript_error"
	DegradedClassifierFailed Degradation = "classifier_failed"
	DegradedNoClassifier     Degradation = "classifier_unavailable"
	DegradedVideoUnreadable  Degradation = "video_unreadable"
	DegradedNoFrames         Degradation = "no_frames"
	DegradedAudioTooShort    Degradation = "audio_too_short"
	DegradedNoVoicedFrames   Degradation = "no_voiced_frames"
	DegradedPitchFailed      Degradation = "pitch_failed"
)

// ModalityResult is the uniform reading produced by each analyzer.
type ModalityResult struct {
	Modality   Modality    `json:"modality"`
	Sentiment  Sentiment   `json:"sentiment"`
	Score      float64     `json:"score"`
	Confidence float64     `json:"confidence"`
	Degraded   Degradation `json:"degraded,omitempty"`

	Label        string     `json:"label,omitempty"`
	Transcript   string     `json:"transcript,omitempty"`
	Frames       int        `json:"frames,omitempty"`
	MajorityVote *Sentiment `json:"majority_vote,omitempty"`
	PitchHz      float64    `json:"pitch_hz,omitempty"`
}

// Fallback returns the zero-confidence neutral reading for a degraded branch.
func Fallback(m Modality, reason Degradation) ModalityResult {
	return ModalityResult{
		Modality:   m,
		Sentiment:  Neutral,
		Score:      NeutralScore,
		Confidence: 0,
		Degraded:   reason,
	}
}

// NewResult builds a reading whose sentiment is derived from score.
func (sc Scale) NewResult(m Modality, score, confidence float64) ModalityResult {
	return ModalityResult{
		Modality:   m,
		Sentiment:  sc.SentimentOf(score),
		Score:      score,
		Confidence: confidence,
	}
}

// Consistent reports whether the result's sentiment is derivable from its score.
func (sc Scale) Consistent(r ModalityResult) bool {
	return sc.SentimentOf(r.Score) == r.Sentiment
}

// IsDegraded reports whether the reading came from a fallback branch.
func (r ModalityResult) IsDegraded() bool {
	return r.Degraded != DegradedNone
}

// FusionResult is the combined verdict across the three modalities.
type FusionResult struct {
	Sentiment     Sentiment              `json:"sentiment"`
	Score         float64                `json:"score"`
	Confidence    float64                `json:"confidence"`
	Inconsistency bool                   `json:"inconsistency"`
	Weights       [ModalityCount]float64 `json:"weights"`
}
