package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-video-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	input := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	valid := Config{
		InputVideo:       input,
		Params:           clips.DefaultParams(),
		AssemblyAIAPIKey: "key",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing input", func(c *Config) { c.InputVideo = "" }, "input is empty"},
		{"absent input", func(c *Config) { c.InputVideo = input + ".nope" }, "stat input"},
		{"bad params", func(c *Config) { c.Params.MaxClip = c.Params.MinClip }, "invalid detection params"},
		{"captions without render", func(c *Config) { c.Captions = true }, "captions require"},
		{"no key", func(c *Config) { c.AssemblyAIAPIKey = "" }, "ASSEMBLYAI_API_KEY"},
		{"http base url", func(c *Config) { c.AssemblyAIBaseURL = "http://api.assemblyai.com" }, "https is required"},
		{"unknown region", func(c *Config) { c.AssemblyAIRegion = "mars" }, "want us or eu"},
		{"region mismatch", func(c *Config) {
			c.AssemblyAIRegion = "us"
			c.AssemblyAIBaseURL = "https://api.eu.assemblyai.com"
		}, "belongs to region eu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHash_Stable(t *testing.T) {
	if hash("a.mp4") != hash("a.mp4") || len(hash("a.mp4")) != 12 {
		t.Fatalf("unexpected hash")
	}
}
