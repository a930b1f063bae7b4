package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/transcript"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

func TestRun_CaptionsToggle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		captions bool
	}{
		{name: "disabled", captions: false},
		{name: "enabled", captions: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			outDir := filepath.Join(tmp, "out")

			video := &fakeVideoTool{duration: 2 * time.Minute}
			store := &fakeStore{}
			uc := newTestUsecase(video, &fakeASR{tr: testTranscript()}, store)

			res, err := uc.Run(context.Background(), Input{
				InputVideo:       filepath.Join(tmp, "in.mp4"),
				VideoID:          "vid",
				Params:           clips.DefaultParams(),
				AutoApproveScore: clips.DefaultAutoApproveScore,
				Render:           true,
				Captions:         tc.captions,
				CacheDir:         filepath.Join(tmp, "cache"),
				OutDir:           outDir,
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(video.cutBurnASS) != 2 {
				t.Fatalf("expected 2 rendered clips, got %d", len(video.cutBurnASS))
			}
			if len(video.thumbs) != 2 {
				t.Fatalf("expected 2 thumbnails, got %d", len(video.thumbs))
			}
			if len(res.Manifest.Clips) != 2 {
				t.Fatalf("expected 2 clips in manifest, got %d", len(res.Manifest.Clips))
			}
			for _, c := range res.Clips {
				if c.Status != types.ClipStatusReady {
					t.Fatalf("expected ready clip, got %q", c.Status)
				}
			}

			captionsPath := filepath.Join(outDir, "captions", "001.ass")
			manifestCaptions := res.Manifest.Clips[0].Captions
			if tc.captions {
				if !strings.HasSuffix(video.cutBurnASS[0], filepath.Join("captions", "001.ass")) {
					t.Fatalf("unexpected burnASS path: %q", video.cutBurnASS[0])
				}
				if manifestCaptions != "captions/001.ass" {
					t.Fatalf("unexpected manifest captions path: %q", manifestCaptions)
				}
				b, err := os.ReadFile(captionsPath)
				if err != nil {
					t.Fatalf("read captions: %v", err)
				}
				if !strings.Contains(string(b), "Dialogue:") {
					t.Fatalf("expected dialogue events in generated captions")
				}
				return
			}

			if video.cutBurnASS[0] != "" {
				t.Fatalf("expected empty burnASS path, got %q", video.cutBurnASS[0])
			}
			if manifestCaptions != "" {
				t.Fatalf("expected empty manifest captions path, got %q", manifestCaptions)
			}
			if _, err := os.Stat(captionsPath); !os.IsNotExist(err) {
				t.Fatalf("expected no captions file, stat err=%v", err)
			}
		})
	}
}

func TestRun_RanksAndPersists(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	video := &fakeVideoTool{duration: 90 * time.Second}
	store := &fakeStore{}
	uc := newTestUsecase(video, &fakeASR{tr: testTranscript()}, store)

	res, err := uc.Run(context.Background(), Input{
		InputVideo:       filepath.Join(tmp, "in.mp4"),
		VideoID:          "vid",
		Params:           clips.DefaultParams(),
		AutoApproveScore: clips.DefaultAutoApproveScore,
		CacheDir:         filepath.Join(tmp, "cache"),
		OutDir:           filepath.Join(tmp, "out"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(video.cutBurnASS) != 0 {
		t.Fatalf("expected no render calls without Render, got %d", len(video.cutBurnASS))
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected 2 stored clips, got %d", len(store.saved))
	}
	// The second group is all positive and outranks the neutral first group.
	first := res.Manifest.Clips[0]
	if first.StartSec != 40 || first.Sentiment != types.SentimentPositive {
		t.Fatalf("expected positive clip first, got %+v", first)
	}
	if res.Clips[0].Title != "Clip 1: High positive sentiment" || res.Clips[0].ID != "clip-1" {
		t.Fatalf("unexpected clip record: %+v", res.Clips[0])
	}
	if res.Clips[0].Status != types.ClipStatusPending {
		t.Fatalf("unrendered clip should be pending, got %q", res.Clips[0].Status)
	}
	if res.Analysis.Summary != "AI detected 2 potential viral clips. Video duration: 90.0s" {
		t.Fatalf("unexpected summary: %q", res.Analysis.Summary)
	}
}

func TestRun_ReusesCachedTranscript(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	cacheDir := filepath.Join(tmp, "cache")
	if err := transcript.Save(filepath.Join(cacheDir, "transcript.json"), testTranscript()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	video := &fakeVideoTool{duration: time.Minute}
	asr := &fakeASR{err: errors.New("should not be called")}
	uc := newTestUsecase(video, asr, nil)

	res, err := uc.Run(context.Background(), Input{
		InputVideo: filepath.Join(tmp, "in.mp4"),
		Params:     clips.DefaultParams(),
		CacheDir:   cacheDir,
		OutDir:     filepath.Join(tmp, "out"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if asr.calls != 0 || video.extracts != 0 {
		t.Fatalf("expected cache hit, got %d transcribe and %d extract calls", asr.calls, video.extracts)
	}
	if len(res.Manifest.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(res.Manifest.Clips))
	}
}

func TestRun_RenderFailureMarksClip(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	video := &fakeVideoTool{duration: time.Minute, cutErr: errors.New("boom")}
	uc := newTestUsecase(video, &fakeASR{tr: testTranscript()}, nil)

	res, err := uc.Run(context.Background(), Input{
		InputVideo: filepath.Join(tmp, "in.mp4"),
		Params:     clips.DefaultParams(),
		Render:     true,
		CacheDir:   filepath.Join(tmp, "cache"),
		OutDir:     filepath.Join(tmp, "out"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, c := range res.Clips {
		if c.Status != types.ClipStatusFailed {
			t.Fatalf("expected failed clip, got %q", c.Status)
		}
	}
	if res.Manifest.Clips[0].File != "" {
		t.Fatalf("failed clip should have no file, got %q", res.Manifest.Clips[0].File)
	}
}

func TestRun_InvalidParams(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(&fakeVideoTool{}, &fakeASR{}, nil)
	_, err := uc.Run(context.Background(), Input{
		Params: clips.Params{MinClip: time.Minute, MaxClip: time.Second, TopN: 1},
	})
	if !errors.Is(err, clips.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestRun_TranscriberErrorStops(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	store := &fakeStore{}
	uc := newTestUsecase(&fakeVideoTool{}, &fakeASR{err: errors.New("quota")}, store)
	_, err := uc.Run(context.Background(), Input{
		InputVideo: filepath.Join(tmp, "in.mp4"),
		Params:     clips.DefaultParams(),
		CacheDir:   filepath.Join(tmp, "cache"),
		OutDir:     filepath.Join(tmp, "out"),
	})
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected transcriber error, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("nothing should be stored on failure")
	}
}

func newTestUsecase(video *fakeVideoTool, asr *fakeASR, store *fakeStore) Usecase {
	n := 0
	d := Deps{
		Video: video,
		ASR:   asr,
		NewID: func() string {
			n++
			return fmt.Sprintf("clip-%d", n)
		},
		Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	if store != nil {
		d.Store = store
	}
	return New(d)
}

type fakeVideoTool struct {
	duration   time.Duration
	cutErr     error
	extracts   int
	cutBurnASS []string
	thumbs     []string
}

func (f *fakeVideoTool) ExtractAudio(_ context.Context, _, _ string) error {
	f.extracts++
	return nil
}

func (f *fakeVideoTool) ReadMetadata(_ context.Context, _ string) (types.MediaInfo, error) {
	return types.MediaInfo{Duration: f.duration, Width: 1920, Height: 1080, Codec: "h264"}, nil
}

func (f *fakeVideoTool) CutClip(_ context.Context, _ string, _, _ time.Duration, _ string, burnASS string) error {
	if f.cutErr != nil {
		return f.cutErr
	}
	f.cutBurnASS = append(f.cutBurnASS, burnASS)
	return nil
}

func (f *fakeVideoTool) Thumbnail(_ context.Context, _ string, _ time.Duration, outImage string) error {
	f.thumbs = append(f.thumbs, outImage)
	return nil
}

type fakeASR struct {
	tr    types.Transcript
	err   error
	calls int
}

func (f *fakeASR) Transcribe(_ context.Context, _ string) (types.Transcript, error) {
	f.calls++
	return f.tr, f.err
}

type fakeStore struct {
	saved []types.Clip
}

func (f *fakeStore) SaveClips(_ context.Context, c []types.Clip) error {
	f.saved = append(f.saved, c...)
	return nil
}

func (f *fakeStore) ListClips(_ context.Context, _ string) ([]types.Clip, error) {
	return f.saved, nil
}

func (f *fakeStore) GetClip(_ context.Context, id string) (types.Clip, error) {
	for _, c := range f.saved {
		if c.ID == id {
			return c, nil
		}
	}
	return types.Clip{}, fmt.Errorf("clip %s: not found", id)
}

func (f *fakeStore) SetApproved(_ context.Context, id string, approved bool, notes string) (types.Clip, error) {
	for i := range f.saved {
		if f.saved[i].ID == id {
			f.saved[i].Approved = approved
			f.saved[i].ApprovalNotes = notes
			return f.saved[i], nil
		}
	}
	return types.Clip{}, fmt.Errorf("clip %s: not found", id)
}

// testTranscript has two groups under the default bounds: a neutral 0-40s
// run and a positive 40-75s run. The long sentence at 40s closes the first.
func testTranscript() types.Transcript {
	var ss []types.Sentence
	for i := 0; i < 4; i++ {
		ss = append(ss, types.Sentence{
			Text:      "we are going over the weekly numbers again today folks",
			StartMs:   int64(i) * 10_000,
			EndMs:     int64(i+1) * 10_000,
			Sentiment: types.SentimentNeutral,
		})
	}
	ss = append(ss,
		types.Sentence{Text: "this launch is amazing and everyone loves it", StartMs: 40_000, EndMs: 61_000, Sentiment: types.SentimentPositive},
		types.Sentence{Text: "best reaction we have ever had", StartMs: 61_000, EndMs: 68_000, Sentiment: types.SentimentPositive},
		types.Sentence{Text: "thank you all so much", StartMs: 68_000, EndMs: 75_000, Sentiment: types.SentimentPositive},
	)
	return types.Transcript{Sentences: ss}
}
