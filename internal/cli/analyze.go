package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/logging"
	"github.com/wflores9/StudioBot.ai/internal/pipeline"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Transcribe a video, detect viral clips and optionally cut them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, args[0])
		},
	}

	// Visible flags
	cmd.Flags().String("out", "", "Output directory (default from config)")
	cmd.Flags().Int("top", 0, "Number of clips (default from config)")
	cmd.Flags().Bool("render", false, "Cut clips and thumbnails with ffmpeg")
	cmd.Flags().Bool("captions", false, "Burn captions into rendered clips")
	cmd.Flags().String("video-id", "", "Video id used for stored clips (default: hash of input path)")

	// Hidden tuning flags (internal)
	cmd.Flags().Int("min", 0, "Min clip duration seconds")
	cmd.Flags().Int("max", 0, "Max clip duration seconds")
	_ = cmd.Flags().MarkHidden("min")
	_ = cmd.Flags().MarkHidden("max")
	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, input string) error {
	c := a.cfg
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = c.Paths.OutDir
	}
	render, _ := cmd.Flags().GetBool("render")
	captions, _ := cmd.Flags().GetBool("captions")
	videoID, _ := cmd.Flags().GetString("video-id")

	if err := c.Validate(); err != nil {
		return err
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	logger := logging.WithComponent("pipeline")
	cfg := pipeline.Config{
		InputVideo:       absIn,
		VideoID:          videoID,
		OutDir:           outDir,
		Params:           paramsFromFlags(cmd, c.DetectionParams()),
		AutoApproveScore: c.Detection.AutoApproveScore,
		Render:           render,
		Captions:         captions,
		Logf:             logging.Logf(logger),
		Logger:           logger,

		CacheDir: c.Paths.CacheDir,
		DBPath:   c.Paths.DBPath,

		FFmpegPath:  c.FFmpeg.FFmpegPath,
		FFprobePath: c.FFmpeg.FFprobePath,

		AssemblyAIAPIKey:       c.AssemblyAI.APIKey,
		AssemblyAIRegion:       c.AssemblyAI.Region,
		AssemblyAIBaseURL:      c.AssemblyAI.BaseURL,
		AssemblyAIAllowedHosts: c.AssemblyAI.AllowedHosts,
		PollInterval:           c.PollInterval(),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	out, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "video id: %s\n", out.VideoID)
	fmt.Fprintf(w, "clips:    %d (%d auto-approved)\n", out.Clips, out.Approved)
	fmt.Fprintf(w, "manifest: %s\n", out.ManifestPath)
	fmt.Fprintf(w, "analysis: %s\n", out.AnalysisPath)
	return nil
}
