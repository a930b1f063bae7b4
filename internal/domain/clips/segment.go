package clips

import (
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

// Group is a run of consecutive sentences accepted as one clip interval.
// Sentences aliases the caller's slice and must be treated as read-only.
type Group struct {
	StartMs   int64
	EndMs     int64
	Sentences []types.Sentence
}

func (g Group) Duration() time.Duration { return ms(g.EndMs - g.StartMs) }

// Segment greedily merges ordered sentences into intervals no longer than
// maxClip, emitting only those that reach minClip.
//
// Input must be sorted by StartMs; overlapping spans are not repaired.
// A sentence that would push the open interval past maxClip starts a new
// interval instead of splitting anything, so boundaries always fall on
// sentence boundaries. A single sentence longer than maxClip still forms its
// own group.
func Segment(sentences []types.Sentence, minClip, maxClip time.Duration) []Group {
	if len(sentences) == 0 {
		return nil
	}

	var out []Group
	first := 0
	clipStart, clipEnd := sentences[0].StartMs, sentences[0].EndMs

	closeGroup := func(end int) {
		if ms(clipEnd-clipStart) < minClip {
			return
		}
		out = append(out, Group{
			StartMs:   clipStart,
			EndMs:     clipEnd,
			Sentences: sentences[first:end:end],
		})
	}

	for i := 1; i < len(sentences); i++ {
		s := sentences[i]
		if ms(s.EndMs-clipStart) <= maxClip {
			clipEnd = s.EndMs
			continue
		}
		closeGroup(i)
		first = i
		clipStart, clipEnd = s.StartMs, s.EndMs
	}
	closeGroup(len(sentences))
	return out
}

func ms(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
