// Package config loads studiobot settings from a YAML file with environment
// overrides. A missing file is not an error; defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/logging"
)

const DefaultPath = "studiobot.yaml"

const (
	EnvAPIKey       = "ASSEMBLYAI_API_KEY"
	EnvRegion       = "ASSEMBLYAI_REGION"
	EnvBaseURL      = "ASSEMBLYAI_BASE_URL"
	EnvAllowedHosts = "ASSEMBLYAI_ALLOWED_HOSTS"
	EnvLogLevel     = "STUDIOBOT_LOG_LEVEL"
	EnvDBPath       = "STUDIOBOT_DB_PATH"
	EnvAddr         = "STUDIOBOT_ADDR"
)

type Config struct {
	Detection  DetectionConfig  `yaml:"detection"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	AssemblyAI AssemblyAIConfig `yaml:"assemblyai"`
	Paths      PathsConfig      `yaml:"paths"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

type DetectionConfig struct {
	MinClipSec       int     `yaml:"min_clip_sec"`
	MaxClipSec       int     `yaml:"max_clip_sec"`
	TopN             int     `yaml:"top_n"`
	AutoApproveScore float64 `yaml:"auto_approve_score"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type AssemblyAIConfig struct {
	// APIKey comes from the environment only and is never written back.
	APIKey string `yaml:"-"`
	// Region is us or eu; empty means us. BaseURL, when set, overrides it
	// (e.g. a proxy) and must agree with an explicit region.
	Region          string   `yaml:"region,omitempty"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	AllowedHosts    []string `yaml:"allowed_hosts,omitempty"`
	PollIntervalSec int      `yaml:"poll_interval_sec"`
}

type PathsConfig struct {
	CacheDir string `yaml:"cache_dir"`
	OutDir   string `yaml:"out_dir"`
	DBPath   string `yaml:"db_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			MinClipSec:       15,
			MaxClipSec:       60,
			TopN:             10,
			AutoApproveScore: clips.DefaultAutoApproveScore,
		},
		FFmpeg: FFmpegConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"},
		AssemblyAI: AssemblyAIConfig{
			PollIntervalSec: 3,
		},
		Paths: PathsConfig{
			CacheDir: ".cache",
			OutDir:   "out",
			DBPath:   filepath.Join(".studiobot", "studiobot.db"),
		},
		Server: ServerConfig{Addr: "127.0.0.1:8790"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from non-empty variables returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		c.AssemblyAI.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvRegion)); v != "" {
		c.AssemblyAI.Region = v
	}
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.AssemblyAI.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvAllowedHosts)); v != "" {
		c.AssemblyAI.AllowedHosts = splitCSV(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		c.Paths.DBPath = v
	}
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	if err := c.DetectionParams().Validate(); err != nil {
		return fmt.Errorf("config: detection: %w", err)
	}
	if c.Detection.AutoApproveScore < 0 || c.Detection.AutoApproveScore > 1 {
		return fmt.Errorf("config: detection.auto_approve_score must be within [0,1], got %v", c.Detection.AutoApproveScore)
	}
	switch strings.ToLower(strings.TrimSpace(c.AssemblyAI.Region)) {
	case "", "us", "eu":
	default:
		return fmt.Errorf("config: assemblyai.region must be us or eu, got %q", c.AssemblyAI.Region)
	}
	if c.AssemblyAI.PollIntervalSec <= 0 {
		return fmt.Errorf("config: assemblyai.poll_interval_sec must be > 0")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		return errors.New("config: paths.db_path is required")
	}
	return nil
}

func (c *Config) DetectionParams() clips.Params {
	return clips.Params{
		MinClip: time.Duration(c.Detection.MinClipSec) * time.Second,
		MaxClip: time.Duration(c.Detection.MaxClipSec) * time.Second,
		TopN:    c.Detection.TopN,
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.AssemblyAI.PollIntervalSec) * time.Second
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: serialize: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
