// Package analysis turns ranked clip candidates into the records a reviewer
// sees: persisted clips and a per-video summary.
package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

const (
	maxKeyFrames       = 5
	keyFrameDescRunes  = 100
	descriptionPreview = 200
)

// Build summarises ranked candidates for a source of the given duration.
func Build(cands []types.ClipCandidate, durationSec float64) types.Analysis {
	moments := make([]types.ViralMoment, 0, len(cands))
	for _, c := range cands {
		moments = append(moments, types.ViralMoment{
			StartTime:   c.StartTime,
			EndTime:     c.EndTime,
			Confidence:  c.Score,
			Description: c.Reason,
			Tags:        []string{strings.ToLower(c.Sentiment.String()), "ai-detected"},
		})
	}

	frames := make([]types.KeyFrame, 0, min(len(cands), maxKeyFrames))
	for i, c := range cands {
		if i == maxKeyFrames {
			break
		}
		frames = append(frames, types.KeyFrame{
			Timestamp:   c.StartTime,
			Description: truncateRunes(c.KeyMoments, keyFrameDescRunes),
		})
	}

	return types.Analysis{
		ViralMoments:    moments,
		Summary:         fmt.Sprintf("AI detected %d potential viral clips. Video duration: %.1fs", len(cands), durationSec),
		EstimatedLength: durationSec,
		KeyFrames:       frames,
	}
}

// ClipOptions controls how candidates become stored clips.
type ClipOptions struct {
	VideoID          string
	AutoApproveScore float64
	Now              func() time.Time
	NewID            func() string
}

// Clips converts ranked candidates into pending-review clip records.
// Titles are numbered from 1 in rank order.
func Clips(cands []types.ClipCandidate, opt ClipOptions) []types.Clip {
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	ts := now().UTC()

	out := make([]types.Clip, 0, len(cands))
	for i, c := range cands {
		pct := percent(c.Score)
		out = append(out, types.Clip{
			ID:            opt.NewID(),
			VideoID:       opt.VideoID,
			Title:         fmt.Sprintf("Clip %d: %s", i+1, c.Reason),
			Description:   fmt.Sprintf("%s sentiment - Score: %d%%\n\n%s", c.Sentiment, pct, truncateRunes(c.Transcript, descriptionPreview)),
			StartTime:     c.StartTime,
			EndTime:       c.EndTime,
			Duration:      c.EndTime - c.StartTime,
			Score:         c.Score,
			Sentiment:     c.Sentiment,
			Reason:        c.Reason,
			Status:        types.ClipStatusPending,
			Approved:      clips.AutoApproved(c.Score, opt.AutoApproveScore),
			ApprovalNotes: fmt.Sprintf("AI Score: %d%% - %s", pct, c.Reason),
			CreatedAt:     ts,
			UpdatedAt:     ts,
		})
	}
	return out
}

func percent(score float64) int { return int(math.Round(score * 100)) }

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
