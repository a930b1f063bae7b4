package clips

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

var ErrInvalidParams = errors.New("invalid detection params")

// DefaultAutoApproveScore is the score at or above which a candidate is
// approved without review.
const DefaultAutoApproveScore = 0.7

const keyMomentSentences = 3

type Params struct {
	MinClip time.Duration
	MaxClip time.Duration
	TopN    int
}

func DefaultParams() Params {
	return Params{MinClip: 15 * time.Second, MaxClip: 60 * time.Second, TopN: 10}
}

func (p Params) Validate() error {
	if p.MinClip < 0 {
		return fmt.Errorf("%w: min clip must be >= 0, got %s", ErrInvalidParams, p.MinClip)
	}
	if p.MaxClip <= p.MinClip {
		return fmt.Errorf("%w: max clip (%s) must exceed min clip (%s)", ErrInvalidParams, p.MaxClip, p.MinClip)
	}
	if p.TopN <= 0 {
		return fmt.Errorf("%w: top must be > 0, got %d", ErrInvalidParams, p.TopN)
	}
	return nil
}

// Detect segments the transcript, scores every group and returns the best
// TopN candidates, highest score first. Equal scores keep timeline order.
func Detect(sentences []types.Sentence, p Params) ([]types.ClipCandidate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	groups := Segment(sentences, p.MinClip, p.MaxClip)
	out := make([]types.ClipCandidate, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewCandidate(g, p.MaxClip))
	}
	return Rank(out, p.TopN), nil
}

// NewCandidate scores g and widens its span to whole seconds. The widened
// span never exceeds maxClip; when it would, the end is pulled back.
func NewCandidate(g Group, maxClip time.Duration) types.ClipCandidate {
	sc := Score(g.Sentences)

	start, end := floorSec(g.StartMs), ceilSec(g.EndMs)
	if limit := int(maxClip / time.Second); end-start > limit {
		end = start + limit
	}

	texts := make([]string, 0, len(g.Sentences))
	for _, s := range g.Sentences {
		texts = append(texts, s.Text)
	}
	key := texts
	if len(key) > keyMomentSentences {
		key = key[:keyMomentSentences]
	}

	return types.ClipCandidate{
		StartTime:  start,
		EndTime:    end,
		Score:      sc.Score,
		Transcript: strings.Join(texts, " "),
		Sentiment:  sc.Sentiment,
		KeyMoments: strings.Join(key, ". "),
		Reason:     sc.Reason,
	}
}

// Rank sorts cands by score, descending and stable, then keeps at most topN.
// cands is reordered in place.
func Rank(cands []types.ClipCandidate, topN int) []types.ClipCandidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	if topN >= 0 && len(cands) > topN {
		cands = cands[:topN]
	}
	return cands
}

// AutoApproved reports whether a clip scoring score skips manual review.
func AutoApproved(score, threshold float64) bool { return score >= threshold }

func floorSec(ms int64) int {
	if ms < 0 && ms%1000 != 0 {
		return int(ms/1000) - 1
	}
	return int(ms / 1000)
}

func ceilSec(ms int64) int {
	if ms > 0 && ms%1000 != 0 {
		return int(ms/1000) + 1
	}
	return int(ms / 1000)
}
