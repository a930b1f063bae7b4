package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/ports"
	"github.com/wflores9/StudioBot.ai/internal/ports/adapters/assemblyai"
	"github.com/wflores9/StudioBot.ai/internal/ports/adapters/ffmpeg"
	"github.com/wflores9/StudioBot.ai/internal/ports/adapters/sqlite"
	"github.com/wflores9/StudioBot.ai/internal/usecase"
)

type Config struct {
	InputVideo       string
	VideoID          string
	OutDir           string
	Params           clips.Params
	AutoApproveScore float64
	Render           bool
	Captions         bool
	Logf             func(format string, args ...any)
	Logger           zerolog.Logger

	// CacheDir is the base directory for local artifacts (audio, transcripts, etc.).
	// If empty, defaults to ".cache".
	CacheDir string

	// DBPath enables clip persistence when set.
	DBPath string

	FFmpegPath  string
	FFprobePath string

	AssemblyAIAPIKey       string
	AssemblyAIRegion       string
	AssemblyAIBaseURL      string
	AssemblyAIAllowedHosts []string
	PollInterval           time.Duration
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Captions && !c.Render {
		return errors.New("captions require --render")
	}
	if c.AssemblyAIAPIKey == "" {
		return errors.New("ASSEMBLYAI_API_KEY is required")
	}
	_, err := c.endpoint()
	return err
}

func (c Config) endpoint() (assemblyai.Endpoint, error) {
	return assemblyai.ResolveEndpoint(c.AssemblyAIRegion, c.AssemblyAIBaseURL, c.AssemblyAIAllowedHosts)
}

type Output struct {
	RunDir       string
	ManifestPath string
	AnalysisPath string
	VideoID      string
	Clips        int
	Approved     int
}

func Run(ctx context.Context, cfg Config) (Output, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// adapters
	ep, err := cfg.endpoint()
	if err != nil {
		return Output{}, err
	}
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := assemblyai.New(cfg.AssemblyAIAPIKey, ep, assemblyai.WithPollInterval(cfg.PollInterval))
	logf("assemblyai endpoint: %s", ep.URL)

	deps := usecase.Deps{
		Video: v,
		ASR:   asr,
	}
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath, cfg.Logger)
		if err != nil {
			return Output{}, err
		}
		defer store.Close()
		deps.Store = store
	}

	uc := usecase.New(deps)

	jobID := hash(cfg.InputVideo)
	videoID := cfg.VideoID
	if videoID == "" {
		videoID = jobID
	}
	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	logf("preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Output{}, err
	}
	logf("cache: %s", cacheDir)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputVideo, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return Output{}, err
	}
	logf("output run dir: %s", runOutDir)

	res, err := uc.Run(ctx, usecase.Input{
		InputVideo:       cfg.InputVideo,
		VideoID:          videoID,
		Params:           cfg.Params,
		AutoApproveScore: cfg.AutoApproveScore,
		Render:           cfg.Render,
		Captions:         cfg.Captions,
		CacheDir:         cacheDir,
		OutDir:           runOutDir,
		Logf:             logf,
	})
	if err != nil {
		return Output{}, err
	}

	out := Output{
		RunDir:       runOutDir,
		ManifestPath: filepath.Join(runOutDir, "manifest.json"),
		AnalysisPath: filepath.Join(runOutDir, "analysis.json"),
		VideoID:      videoID,
		Clips:        len(res.Clips),
	}
	for _, c := range res.Clips {
		if c.Approved {
			out.Approved++
		}
	}

	if err := writeJSON(out.ManifestPath, res.Manifest); err != nil {
		return Output{}, fmt.Errorf("write manifest: %w", err)
	}
	if err := writeJSON(out.AnalysisPath, res.Analysis); err != nil {
		return Output{}, fmt.Errorf("write analysis: %w", err)
	}
	logf("manifest written (%d clips, %d auto-approved): %s", out.Clips, out.Approved, out.ManifestPath)
	return out, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func buildRunOutDir(outRoot, inputVideo string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputVideo), filepath.Ext(inputVideo))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputVideo, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*assemblyai.Adapter)(nil)
var _ ports.ClipStore = (*sqlite.Store)(nil)
