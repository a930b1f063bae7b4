package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/domain/clips"
	"github.com/wflores9/StudioBot.ai/internal/transcript"
)

func newDetectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <transcript.json>",
		Short: "Score clip candidates from a sentiment-tagged transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, a, args[0])
		},
	}
	cmd.Flags().Int("min", 0, "Min clip duration seconds (default from config)")
	cmd.Flags().Int("max", 0, "Max clip duration seconds (default from config)")
	cmd.Flags().Int("top", 0, "Number of candidates (default from config)")
	cmd.Flags().String("out", "-", "Output file, - for stdout")
	return cmd
}

func runDetect(cmd *cobra.Command, a *app, path string) error {
	p := paramsFromFlags(cmd, a.cfg.DetectionParams())

	tr, err := transcript.Load(path)
	if err != nil {
		return err
	}

	cands, err := clips.Detect(tr.Sentences, p)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(cands, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	out, _ := cmd.Flags().GetString("out")
	if out == "" || out == "-" {
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d candidates written to %s\n", len(cands), out)
	return nil
}

// paramsFromFlags overlays explicitly set --min/--max/--top onto base.
func paramsFromFlags(cmd *cobra.Command, base clips.Params) clips.Params {
	f := cmd.Flags()
	if f.Changed("min") {
		v, _ := f.GetInt("min")
		base.MinClip = time.Duration(v) * time.Second
	}
	if f.Changed("max") {
		v, _ := f.GetInt("max")
		base.MaxClip = time.Duration(v) * time.Second
	}
	if f.Changed("top") {
		v, _ := f.GetInt("top")
		base.TopN = v
	}
	return base
}
