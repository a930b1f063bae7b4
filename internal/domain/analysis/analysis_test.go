package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

var sampleScores = []float64{0.9, 0.85, 0.8, 0.75, 0.7, 0.6, 0.55}

func sampleCandidates(n int) []types.ClipCandidate {
	out := make([]types.ClipCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.ClipCandidate{
			StartTime:  i * 30,
			EndTime:    i*30 + 25,
			Score:      sampleScores[i],
			Transcript: strings.Repeat("x", 250),
			Sentiment:  types.SentimentPositive,
			KeyMoments: strings.Repeat("é", 120),
			Reason:     "High positive sentiment",
		})
	}
	return out
}

func TestBuild(t *testing.T) {
	a := Build(sampleCandidates(7), 312.44)

	if len(a.ViralMoments) != 7 {
		t.Fatalf("expected 7 moments, got %d", len(a.ViralMoments))
	}
	if got := a.ViralMoments[0].Tags; len(got) != 2 || got[0] != "positive" || got[1] != "ai-detected" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if len(a.KeyFrames) != 5 {
		t.Fatalf("expected 5 keyframes, got %d", len(a.KeyFrames))
	}
	if n := len([]rune(a.KeyFrames[0].Description)); n != 100 {
		t.Fatalf("keyframe description has %d runes, want 100", n)
	}
	if a.Summary != "AI detected 7 potential viral clips. Video duration: 312.4s" {
		t.Fatalf("unexpected summary: %q", a.Summary)
	}
}

func TestBuild_Empty(t *testing.T) {
	a := Build(nil, 0)
	if a.ViralMoments == nil || a.KeyFrames == nil {
		t.Fatalf("expected empty slices, got %+v", a)
	}
}

func TestClips(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	clips := Clips(sampleCandidates(4), ClipOptions{
		VideoID:          "vid-1",
		AutoApproveScore: 0.8,
		Now:              func() time.Time { return fixed },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	if len(clips) != 4 {
		t.Fatalf("expected 4 clips, got %d", len(clips))
	}

	c := clips[0]
	if c.ID != "id-1" || c.VideoID != "vid-1" {
		t.Fatalf("unexpected ids: %+v", c)
	}
	if c.Title != "Clip 1: High positive sentiment" {
		t.Fatalf("title = %q", c.Title)
	}
	if !strings.HasPrefix(c.Description, "POSITIVE sentiment - Score: 90%\n\n") {
		t.Fatalf("description = %q", c.Description)
	}
	if len(c.Description) != len("POSITIVE sentiment - Score: 90%\n\n")+200 {
		t.Fatalf("description preview not truncated: %d", len(c.Description))
	}
	if c.ApprovalNotes != "AI Score: 90% - High positive sentiment" {
		t.Fatalf("notes = %q", c.ApprovalNotes)
	}
	if c.Duration != 25 || !c.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected clip: %+v", c)
	}

	// 0.9, 0.85 approved; 0.8 on the threshold approved; 0.75 not.
	want := []bool{true, true, true, false}
	for i, c := range clips {
		if c.Approved != want[i] {
			t.Fatalf("clip %d approved = %v, want %v (score %v)", i, c.Approved, want[i], c.Score)
		}
	}
}
