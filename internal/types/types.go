package types

import (
	"fmt"
	"strings"
	"time"
)

// Sentiment is the per-sentence label produced by the transcription service.
// The zero value is not a valid label.
type Sentiment uint8

const (
	SentimentPositive Sentiment = iota + 1
	SentimentNeutral
	SentimentNegative
)

func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "POSITIVE"
	case SentimentNeutral:
		return "NEUTRAL"
	case SentimentNegative:
		return "NEGATIVE"
	default:
		return fmt.Sprintf("Sentiment(%d)", uint8(s))
	}
}

func (s Sentiment) Valid() bool {
	return s >= SentimentPositive && s <= SentimentNegative
}

// ParseSentiment accepts the three labels case-insensitively and nothing else.
func ParseSentiment(v string) (Sentiment, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "POSITIVE":
		return SentimentPositive, nil
	case "NEUTRAL":
		return SentimentNeutral, nil
	case "NEGATIVE":
		return SentimentNegative, nil
	default:
		return 0, fmt.Errorf("unknown sentiment %q", v)
	}
}

func (s Sentiment) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sentiment %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Sentiment) UnmarshalText(b []byte) error {
	v, err := ParseSentiment(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Transcript struct {
	Text       string     `json:"text"`
	Sentences  []Sentence `json:"sentences"`
	Words      []Word     `json:"words,omitempty"`
	KeyPhrases []string   `json:"key_phrases,omitempty"`
}

// Sentence is a transcribed span in milliseconds. Sequences are expected to be
// ordered by StartMs and non-overlapping.
type Sentence struct {
	Text      string    `json:"text"`
	StartMs   int64     `json:"start"`
	EndMs     int64     `json:"end"`
	Sentiment Sentiment `json:"sentiment"`
}

type Word struct {
	Text       string  `json:"text"`
	StartMs    int64   `json:"start"`
	EndMs      int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

// ClipCandidate is a scored sub-range of the source media, in whole seconds.
type ClipCandidate struct {
	StartTime  int       `json:"start_time"`
	EndTime    int       `json:"end_time"`
	Score      float64   `json:"score"`
	Transcript string    `json:"transcript"`
	Sentiment  Sentiment `json:"sentiment"`
	KeyMoments string    `json:"key_moments"`
	Reason     string    `json:"reason"`
}

const (
	ClipStatusPending    = "pending"
	ClipStatusProcessing = "processing"
	ClipStatusReady      = "ready"
	ClipStatusFailed     = "failed"
)

// Clip is a persisted candidate.
type Clip struct {
	ID            string    `json:"id"`
	VideoID       string    `json:"video_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartTime     int       `json:"start_time"`
	EndTime       int       `json:"end_time"`
	Duration      int       `json:"duration"`
	Score         float64   `json:"score"`
	Sentiment     Sentiment `json:"sentiment"`
	Reason        string    `json:"reason"`
	OutputPath    string    `json:"output_path,omitempty"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	Status        string    `json:"status"`
	Approved      bool      `json:"approved"`
	ApprovalNotes string    `json:"approval_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MediaInfo struct {
	Duration time.Duration
	Width    int
	Height   int
	Codec    string
}

type Analysis struct {
	ViralMoments    []ViralMoment `json:"viral_moments"`
	Summary         string        `json:"summary"`
	EstimatedLength float64       `json:"estimated_length"`
	KeyFrames       []KeyFrame    `json:"keyframes"`
}

type ViralMoment struct {
	StartTime   int      `json:"start_time"`
	EndTime     int      `json:"end_time"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type KeyFrame struct {
	Timestamp   int    `json:"timestamp"`
	Description string `json:"description"`
}

type Manifest struct {
	Input   string         `json:"input"`
	VideoID string         `json:"video_id"`
	Clips   []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID        string    `json:"id"`
	StartSec  int       `json:"start_sec"`
	EndSec    int       `json:"end_sec"`
	Score     float64   `json:"score"`
	Sentiment Sentiment `json:"sentiment"`
	Reason    string    `json:"reason"`
	Text      string    `json:"text"`
	Approved  bool      `json:"approved"`
	File      string    `json:"file,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Captions  string    `json:"captions,omitempty"`
}
