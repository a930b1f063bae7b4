package clips

import (
	"math"
	"strings"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

// Fixed "ideal short" bands. They deliberately do not follow the caller's
// min/max clip bounds.
const (
	idealMinSec = 30.0
	idealMaxSec = 45.0

	paceMinWPS = 2.0
	paceMaxWPS = 4.0

	inBand    = 1.0
	outOfBand = 0.7

	sentimentWeight = 0.4
	lengthWeight    = 0.3
	densityWeight   = 0.3

	positiveValue = 1.0
	neutralValue  = 0.5
	negativeValue = 0.3
)

const (
	ReasonHighPositive = "High positive sentiment"
	ReasonEmotional    = "Strong emotional content"
	ReasonOptimal      = "Optimal length for short"
	ReasonGeneral      = "General content"
)

// Scoring is the scorer's verdict for one group of sentences.
type Scoring struct {
	Score     float64
	Sentiment types.Sentiment
	Reason    string

	SentimentScore float64
	LengthScore    float64
	DensityScore   float64
}

// Score rates a non-empty, ordered group of sentences in [0..1].
// The result depends only on the sentences given and is invariant under
// reordering of identical sentences.
func Score(sentences []types.Sentence) Scoring {
	var pos, neg, neu int
	for _, s := range sentences {
		switch s.Sentiment {
		case types.SentimentPositive:
			pos++
		case types.SentimentNegative:
			neg++
		case types.SentimentNeutral:
			neu++
		}
	}
	total := pos + neg + neu

	sentimentScore := neutralValue
	if total > 0 {
		sentimentScore = (float64(pos)*positiveValue + float64(neu)*neutralValue + float64(neg)*negativeValue) / float64(total)
	}

	dominant := types.SentimentNeutral
	switch {
	case pos > neg && pos > neu:
		dominant = types.SentimentPositive
	case neg > pos && neg > neu:
		dominant = types.SentimentNegative
	}

	durSec := spanSeconds(sentences)
	ideal := durSec >= idealMinSec && durSec <= idealMaxSec

	lengthScore := outOfBand
	if ideal {
		lengthScore = inBand
	}

	densityScore := outOfBand
	if durSec > 0 {
		wps := float64(countWords(sentences)) / durSec
		if wps >= paceMinWPS && wps <= paceMaxWPS {
			densityScore = inBand
		}
	}

	reason := ReasonGeneral
	switch {
	case float64(pos) > float64(total)*0.6:
		reason = ReasonHighPositive
	case float64(neg) > float64(total)*0.4:
		reason = ReasonEmotional
	case ideal:
		reason = ReasonOptimal
	}

	return Scoring{
		Score:          round2(sentimentScore*sentimentWeight + lengthScore*lengthWeight + densityScore*densityWeight),
		Sentiment:      dominant,
		Reason:         reason,
		SentimentScore: sentimentScore,
		LengthScore:    lengthScore,
		DensityScore:   densityScore,
	}
}

func spanSeconds(sentences []types.Sentence) float64 {
	if len(sentences) == 0 {
		return 0
	}
	return float64(sentences[len(sentences)-1].EndMs-sentences[0].StartMs) / 1000
}

// countWords counts whitespace-delimited tokens of the space-joined texts.
func countWords(sentences []types.Sentence) int {
	n := 0
	for _, s := range sentences {
		n += len(strings.Fields(s.Text))
	}
	return n
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
