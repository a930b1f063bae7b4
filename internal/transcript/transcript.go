// Package transcript reads and writes sentence transcripts as JSON files.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

// Load reads a transcript file. A bare JSON array of sentences is accepted
// as well as the full object form.
func Load(path string) (types.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	return Decode(b)
}

func Decode(b []byte) (types.Transcript, error) {
	var tr types.Transcript
	if len(b) > 0 && firstNonSpace(b) == '[' {
		if err := json.Unmarshal(b, &tr.Sentences); err != nil {
			return types.Transcript{}, fmt.Errorf("decode transcript: %w", err)
		}
	} else if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	if err := Check(tr.Sentences); err != nil {
		return types.Transcript{}, err
	}
	return tr, nil
}

// Check reports the first sentence that breaks ordering, has an empty span or
// carries no sentiment label. Overlaps between neighbours are allowed here and
// left to the caller.
func Check(sentences []types.Sentence) error {
	for i, s := range sentences {
		if !s.Sentiment.Valid() {
			return fmt.Errorf("sentence %d: missing sentiment", i)
		}
		if s.StartMs < 0 || s.EndMs <= s.StartMs {
			return fmt.Errorf("sentence %d: invalid span %d-%d", i, s.StartMs, s.EndMs)
		}
		if i > 0 && s.StartMs < sentences[i-1].StartMs {
			return fmt.Errorf("sentence %d: starts before sentence %d", i, i-1)
		}
	}
	return nil
}

func Save(path string, tr types.Transcript) error {
	b, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Exists reports whether a cached transcript is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c
	}
	return 0
}
