package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

// RenderShortASS renders clip-local captions for [start, end) of tr.
// Word timings drive karaoke lines when present; otherwise each overlapping
// sentence becomes one event.
func RenderShortASS(tr types.Transcript, start, end time.Duration) (string, error) {
	if end <= start {
		return "", fmt.Errorf("subtitles: empty window %s-%s", start, end)
	}
	if words := collectWords(tr.Words, start, end); len(words) > 0 {
		return renderKaraoke(packWords(words)), nil
	}
	return renderSentences(collectSentences(tr.Sentences, start, end)), nil
}

type cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type line struct {
	Start time.Duration
	End   time.Duration
	Words []cue
}

// clip trims [ws, we) to the window and shifts it to clip-local time.
func clip(ws, we, start, end time.Duration) (time.Duration, time.Duration, bool) {
	if we <= start || ws >= end {
		return 0, 0, false
	}
	ws = max(ws, start)
	we = min(we, end)
	return ws - start, we - start, true
}

func collectWords(words []types.Word, start, end time.Duration) []cue {
	var out []cue
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		ws, we, ok := clip(msDur(w.StartMs), msDur(w.EndMs), start, end)
		if !ok {
			continue
		}
		out = append(out, cue{Start: ws, End: we, Text: sanitizeASS(text)})
	}
	return out
}

func collectSentences(sentences []types.Sentence, start, end time.Duration) []cue {
	var out []cue
	for _, s := range sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		ss, se, ok := clip(msDur(s.StartMs), msDur(s.EndMs), start, end)
		if !ok {
			continue
		}
		out = append(out, cue{Start: ss, End: se, Text: sanitizeASS(text)})
	}
	return out
}

// Vertical layouts read best with short lines.
const (
	charBudget = 42
	wordBudget = 9
)

func packWords(words []cue) []line {
	var out []line
	cur := line{Start: words[0].Start}
	curLen := 0
	for i, w := range words {
		wl := len([]rune(w.Text))
		nextLen := curLen
		if curLen > 0 {
			nextLen++
		}
		nextLen += wl
		if len(cur.Words) > 0 && (len(cur.Words) >= wordBudget || nextLen > charBudget) {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: w.Start}
			curLen = 0
		}
		cur.Words = append(cur.Words, w)
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		if i == len(words)-1 {
			cur.End = w.End
			out = append(out, cur)
		}
	}
	return out
}

func renderKaraoke(lines []line) string {
	var b strings.Builder
	writeHead(&b)
	for _, ln := range lines {
		var text strings.Builder
		for _, w := range ln.Words {
			cs := int((w.End - w.Start) / (10 * time.Millisecond))
			if cs < 1 {
				cs = 1
			}
			fmt.Fprintf(&text, "{\\k%d}%s ", cs, w.Text)
		}
		writeDialogue(&b, ln.Start, ln.End, strings.TrimSpace(text.String()))
	}
	return b.String()
}

func renderSentences(cues []cue) string {
	var b strings.Builder
	writeHead(&b)
	for _, c := range cues {
		writeDialogue(&b, c.Start, c.End, c.Text)
	}
	return b.String()
}

func writeHead(b *strings.Builder) {
	b.WriteString(assHeader())
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func writeDialogue(b *strings.Builder, start, end time.Duration, text string) {
	fmt.Fprintf(b, "Dialogue: 0,%s,%s,Short,,0,0,0,,%s\n", assTime(start), assTime(end), text)
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Short, Inter, 72, &H00FFFFFF, &H0000D2FF, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,5,2,2, 60,60,220,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	d -= time.Duration(h) * time.Hour
	m := int(d / time.Minute)
	d -= time.Duration(m) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func msDur(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }
