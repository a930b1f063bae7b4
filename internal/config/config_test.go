package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, EnvRegion, EnvBaseURL, EnvAllowedHosts, EnvLogLevel, EnvDBPath, EnvAddr} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := cfg.DetectionParams()
	if p != clips.DefaultParams() {
		t.Fatalf("unexpected params: %+v", p)
	}
	if cfg.Detection.AutoApproveScore != 0.7 {
		t.Fatalf("unexpected auto approve: %v", cfg.Detection.AutoApproveScore)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studiobot.yaml")
	yml := `
detection:
  min_clip_sec: 20
  max_clip_sec: 45
  top_n: 5
server:
  addr: ":9000"
assemblyai:
  region: us
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	clearEnv(t)
	t.Setenv(EnvAPIKey, "secret")
	t.Setenv(EnvAllowedHosts, "a.example, b.example ,")
	t.Setenv(EnvAddr, ":9100")
	t.Setenv(EnvRegion, "eu")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := clips.Params{MinClip: 20 * time.Second, MaxClip: 45 * time.Second, TopN: 5}
	if cfg.DetectionParams() != want {
		t.Fatalf("params = %+v, want %+v", cfg.DetectionParams(), want)
	}
	if cfg.AssemblyAI.APIKey != "secret" || cfg.Server.Addr != ":9100" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.AssemblyAI.AllowedHosts) != 2 || cfg.AssemblyAI.AllowedHosts[1] != "b.example" {
		t.Fatalf("unexpected allowed hosts: %v", cfg.AssemblyAI.AllowedHosts)
	}
	if cfg.AssemblyAI.Region != "eu" {
		t.Fatalf("env region should win over file: %q", cfg.AssemblyAI.Region)
	}
	// Untouched sections keep defaults.
	if cfg.FFmpeg.FFmpegPath != "ffmpeg" || cfg.AssemblyAI.PollIntervalSec != 3 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("detection: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.HasPrefix(err.Error(), "config: parse") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"inverted bounds", func(c *Config) { c.Detection.MinClipSec, c.Detection.MaxClipSec = 60, 15 }, "detection"},
		{"approve range", func(c *Config) { c.Detection.AutoApproveScore = 1.5 }, "auto_approve_score"},
		{"poll", func(c *Config) { c.AssemblyAI.PollIntervalSec = 0 }, "poll_interval_sec"},
		{"level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"db path", func(c *Config) { c.Paths.DBPath = " " }, "db_path"},
		{"region", func(c *Config) { c.AssemblyAI.Region = "apac" }, "assemblyai.region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	c := Default()
	c.Detection.MaxClipSec = 10
	if err := c.Validate(); !errors.Is(err, clips.ErrInvalidParams) {
		t.Fatalf("expected wrapped ErrInvalidParams, got %v", err)
	}
}

func TestSave_OmitsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "studiobot.yaml")
	c := Default()
	c.AssemblyAI.APIKey = "do-not-write"
	c.Detection.TopN = 3
	if err := c.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "do-not-write") {
		t.Fatalf("api key written to config:\n%s", b)
	}

	clearEnv(t)
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.Detection.TopN != 3 {
		t.Fatalf("top_n = %d, want 3", back.Detection.TopN)
	}
}
