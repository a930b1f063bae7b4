package ports

import (
	"context"
	"errors"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

var ErrNotFound = errors.New("not found")

type VideoTool interface {
	ExtractAudio(ctx context.Context, inVideo, outAudio string) error
	ReadMetadata(ctx context.Context, inVideo string) (types.MediaInfo, error)
	CutClip(ctx context.Context, inVideo string, start, end time.Duration, outVideo, burnASS string) error
	Thumbnail(ctx context.Context, inVideo string, at time.Duration, outImage string) error
}

// Transcriber produces a sentiment-tagged transcript for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

type ClipStore interface {
	SaveClips(ctx context.Context, clips []types.Clip) error
	ListClips(ctx context.Context, videoID string) ([]types.Clip, error)
	// GetClip returns ErrNotFound for unknown ids.
	GetClip(ctx context.Context, id string) (types.Clip, error)
	SetApproved(ctx context.Context, id string, approved bool, notes string) (types.Clip, error)
}
