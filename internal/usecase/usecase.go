package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/wflores9/StudioBot.ai/internal/domain/analysis"
	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/domain/subtitles"
	"github.com/wflores9/StudioBot.ai/internal/ports"
	"github.com/wflores9/StudioBot.ai/internal/transcript"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	ASR   ports.Transcriber
	// Store is optional; clips are not persisted when nil.
	Store ports.ClipStore

	NewID func() string
	Now   func() time.Time
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return Usecase{d: d}
}

type Input struct {
	InputVideo       string
	VideoID          string
	Params           clips.Params
	AutoApproveScore float64
	Render           bool
	Captions         bool
	CacheDir         string
	OutDir           string
	Logf             func(format string, args ...any)
}

type Result struct {
	Manifest types.Manifest
	Analysis types.Analysis
	Clips    []types.Clip
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if err := in.Params.Validate(); err != nil {
		return Result{}, err
	}

	tr, err := u.transcribe(ctx, in, logf)
	if err != nil {
		return Result{}, err
	}

	info, err := u.d.Video.ReadMetadata(ctx, in.InputVideo)
	if err != nil {
		return Result{}, err
	}

	cands, err := clips.Detect(tr.Sentences, in.Params)
	if err != nil {
		return Result{}, err
	}
	logf("detected %d clip candidates from %d sentences", len(cands), len(tr.Sentences))

	recs := analysis.Clips(cands, analysis.ClipOptions{
		VideoID:          in.VideoID,
		AutoApproveScore: in.AutoApproveScore,
		Now:              u.d.Now,
		NewID:            u.d.NewID,
	})

	m := types.Manifest{Input: in.InputVideo, VideoID: in.VideoID, Clips: make([]types.ManifestClip, 0, len(recs))}
	for i := range recs {
		rec := &recs[i]
		mc := types.ManifestClip{
			ID:        rec.ID,
			StartSec:  rec.StartTime,
			EndSec:    rec.EndTime,
			Score:     rec.Score,
			Sentiment: rec.Sentiment,
			Reason:    rec.Reason,
			Text:      cands[i].Transcript,
			Approved:  rec.Approved,
		}
		if in.Render {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			name := fmt.Sprintf("%03d", i+1)
			if err := u.render(ctx, in, tr, rec, &mc, name); err != nil {
				logf("clip %s failed: %v", name, err)
				rec.Status = types.ClipStatusFailed
			} else {
				rec.Status = types.ClipStatusReady
				logf("clip %s ready (%ds-%ds, score %.2f)", name, rec.StartTime, rec.EndTime, rec.Score)
			}
		}
		m.Clips = append(m.Clips, mc)
	}

	if u.d.Store != nil && len(recs) > 0 {
		if err := u.d.Store.SaveClips(ctx, recs); err != nil {
			return Result{}, err
		}
		logf("stored %d clips for video %s", len(recs), in.VideoID)
	}

	return Result{
		Manifest: m,
		Analysis: analysis.Build(cands, info.Duration.Seconds()),
		Clips:    recs,
	}, nil
}

// transcribe reuses <cache>/transcript.json when present.
func (u Usecase) transcribe(ctx context.Context, in Input, logf func(string, ...any)) (types.Transcript, error) {
	cached := filepath.Join(in.CacheDir, "transcript.json")
	if transcript.Exists(cached) {
		logf("using cached transcript: %s", cached)
		return transcript.Load(cached)
	}

	audio := filepath.Join(in.CacheDir, "audio.mp3")
	logf("extracting audio")
	if err := u.d.Video.ExtractAudio(ctx, in.InputVideo, audio); err != nil {
		return types.Transcript{}, err
	}
	logf("transcribing")
	tr, err := u.d.ASR.Transcribe(ctx, audio)
	if err != nil {
		return types.Transcript{}, err
	}
	if err := transcript.Check(tr.Sentences); err != nil {
		return types.Transcript{}, fmt.Errorf("transcriber output: %w", err)
	}
	if err := transcript.Save(cached, tr); err != nil {
		return types.Transcript{}, err
	}
	return tr, nil
}

func (u Usecase) render(ctx context.Context, in Input, tr types.Transcript, rec *types.Clip, mc *types.ManifestClip, name string) error {
	start := time.Duration(rec.StartTime) * time.Second
	end := time.Duration(rec.EndTime) * time.Second

	clipRel := filepath.Join("clips", name+".mp4")
	thumbRel := filepath.Join("thumbnails", name+".jpg")

	burnASS := ""
	if in.Captions {
		assRel := filepath.Join("captions", name+".ass")
		ass, err := subtitles.RenderShortASS(tr, start, end)
		if err != nil {
			return err
		}
		burnASS = filepath.Join(in.OutDir, assRel)
		if err := writeFile(burnASS, []byte(ass)); err != nil {
			return err
		}
		mc.Captions = filepath.ToSlash(assRel)
	}

	clipPath := filepath.Join(in.OutDir, clipRel)
	if err := u.d.Video.CutClip(ctx, in.InputVideo, start, end, clipPath, burnASS); err != nil {
		return err
	}
	thumbPath := filepath.Join(in.OutDir, thumbRel)
	if err := u.d.Video.Thumbnail(ctx, in.InputVideo, start, thumbPath); err != nil {
		return err
	}

	rec.OutputPath = clipPath
	rec.ThumbnailPath = thumbPath
	mc.File = filepath.ToSlash(clipRel)
	mc.Thumbnail = filepath.ToSlash(thumbRel)
	return nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
