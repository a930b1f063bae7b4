package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/types"
)

// Runner executes an external command and returns its combined output.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	runner  Runner
}

type Option func(*Adapter)

func WithRunner(r Runner) Option {
	return func(a *Adapter) { a.runner = r }
}

func New(ffmpegPath, ffprobePath string, opts ...Option) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	a := &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, runner: execRunner{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// VerifyInstalled checks that both executables respond to -version.
func (a *Adapter) VerifyInstalled(ctx context.Context) error {
	for _, bin := range []string{a.ffmpeg, a.ffprobe} {
		if _, err := a.runner.CombinedOutput(ctx, bin, "-version"); err != nil {
			return fmt.Errorf("%s not found or not executable: %w", bin, err)
		}
	}
	return nil
}

func (a *Adapter) ExtractAudio(ctx context.Context, inVideo, outAudio string) error {
	if err := ensureDir(outAudio); err != nil {
		return err
	}
	b, err := a.runner.CombinedOutput(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", "192k",
		outAudio,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) CutClip(ctx context.Context, inVideo string, start, end time.Duration, outVideo, burnASS string) error {
	if end <= start {
		return fmt.Errorf("ffmpeg cut clip: empty range %s-%s", start, end)
	}
	if err := ensureDir(outVideo); err != nil {
		return err
	}
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", inVideo,
	}
	if burnASS != "" {
		args = append(args, "-vf", "subtitles="+escapeFilterPath(burnASS))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "20",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		outVideo,
	)
	b, err := a.runner.CombinedOutput(ctx, a.ffmpeg, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg cut clip: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) Thumbnail(ctx context.Context, inVideo string, at time.Duration, outImage string) error {
	if err := ensureDir(outImage); err != nil {
		return err
	}
	b, err := a.runner.CombinedOutput(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(at),
		"-i", inVideo,
		"-frames:v", "1",
		"-q:v", "2",
		outImage,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg thumbnail: %w\n%s", err, string(b))
	}
	return nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) ReadMetadata(ctx context.Context, inVideo string) (types.MediaInfo, error) {
	b, err := a.runner.CombinedOutput(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inVideo,
	)
	if err != nil {
		return types.MediaInfo{}, fmt.Errorf("ffprobe metadata: %w\n%s", err, string(b))
	}
	return parseMetadata(b)
}

func parseMetadata(b []byte) (types.MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	s := strings.TrimSpace(out.Format.Duration)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.MediaInfo{}, fmt.Errorf("parse duration %q: %w", s, err)
	}
	info := types.MediaInfo{Duration: time.Duration(sec * float64(time.Second))}
	for _, st := range out.Streams {
		if st.CodecType == "video" {
			info.Width, info.Height, info.Codec = st.Width, st.Height, st.CodecName
			break
		}
	}
	return info, nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
