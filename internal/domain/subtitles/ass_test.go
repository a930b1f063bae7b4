package subtitles

import (
	"strings"
	"testing"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

func TestRenderShortASS_KaraokeHasKTags(t *testing.T) {
	tr := types.Transcript{Words: []types.Word{
		{Text: "Hello", StartMs: 0, EndMs: 300},
		{Text: "world", StartMs: 300, EndMs: 800},
	}}
	ass, err := RenderShortASS(tr, 0, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ass, "{\\k30}Hello {\\k50}world") {
		t.Fatalf("expected karaoke tags in ASS, got:\n%s", ass)
	}
}

func TestRenderShortASS_SentenceFallbackIsClipLocal(t *testing.T) {
	tr := types.Transcript{Sentences: []types.Sentence{
		{Text: "Before the clip.", StartMs: 0, EndMs: 9000, Sentiment: types.SentimentNeutral},
		{Text: "First {line}", StartMs: 10_000, EndMs: 14_500, Sentiment: types.SentimentPositive},
		{Text: "Second line", StartMs: 14_500, EndMs: 21_000, Sentiment: types.SentimentPositive},
	}}
	ass, err := RenderShortASS(tr, 10*time.Second, 20*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(ass, "Before the clip") {
		t.Fatalf("sentence outside window leaked:\n%s", ass)
	}
	if !strings.Contains(ass, "Dialogue: 0,0:00:00.00,0:00:04.50,Short,,0,0,0,,First (line)") {
		t.Fatalf("missing first cue:\n%s", ass)
	}
	if !strings.Contains(ass, "Dialogue: 0,0:00:04.50,0:00:10.00,Short,,0,0,0,,Second line") {
		t.Fatalf("second cue not clamped to window end:\n%s", ass)
	}
}

func TestRenderShortASS_RejectsEmptyWindow(t *testing.T) {
	if _, err := RenderShortASS(types.Transcript{}, 5*time.Second, 5*time.Second); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPackWords_SplitsOnBudget(t *testing.T) {
	var words []cue
	for i := 0; i < 20; i++ {
		d := time.Duration(i) * 100 * time.Millisecond
		words = append(words, cue{Start: d, End: d + 100*time.Millisecond, Text: "word"})
	}
	lines := packWords(words)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for _, ln := range lines {
		if len(ln.Words) > wordBudget {
			t.Fatalf("line exceeds word budget: %d", len(ln.Words))
		}
	}
}

func TestAssTime_Format(t *testing.T) {
	got := assTime(61*time.Second + 234*time.Millisecond)
	if got != "0:01:01.23" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}
