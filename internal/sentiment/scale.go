package sentiment

import (
	"fmt"
	"strings"
)

// Sentiment is the discrete three-way valence.
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

// Numeric anchors of the scale.
const (
	MinScore     = 1.0
	NeutralScore = 3.0
	MaxScore     = 5.0
)

// Default derivation thresholds.
const (
	DefaultPositiveAbove = 3.5
	DefaultNegativeBelow = 2.5
)

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// MarshalText renders the sentiment by name so JSON reports stay readable.
func (s Sentiment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a sentiment name.
func (s *Sentiment) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse converts a sentiment name into a Sentiment.
func Parse(value string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "positive":
		return Positive, nil
	case "negative":
		return Negative, nil
	case "neutral", "":
		return Neutral, nil
	default:
		return Neutral, fmt.Errorf("unknown sentiment %q", value)
	}
}

// Scale maps between sentiments and scores.
type Scale struct {
	PositiveAbove float64
	NegativeBelow float64
}

// DefaultScale returns the 3.5/2.5 threshold scale.
func DefaultScale() Scale {
	return Scale{PositiveAbove: DefaultPositiveAbove, NegativeBelow: DefaultNegativeBelow}
}

// ScoreOf returns the anchor score of a sentiment: negative 1, neutral 3, positive 5.
func (Scale) ScoreOf(s Sentiment) float64 {
	switch s {
	case Positive:
		return MaxScore
	case Negative:
		return MinScore
	default:
		return NeutralScore
	}
}

// SentimentOf derives the sentiment of a score. Boundary values are neutral.
func (sc Scale) SentimentOf(score float64) Sentiment {
	switch {
	case score > sc.PositiveAbove:
		return Positive
	case score < sc.NegativeBelow:
		return Negative
	default:
		return Neutral
	}
}

// Clamp limits score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
