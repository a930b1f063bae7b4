package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/config"
	"github.com/wflores9/StudioBot.ai/internal/logging"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	cfgPath  string
	logLevel string
	cfg      *config.Config
	prompter Prompter
}

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd(&app{prompter: &SurveyPrompter{}}, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "studiobot",
		Short:        "Find and cut the most shareable moments of a video",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			if err := logging.Init(cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
				return err
			}
			a.cfg = cfg
			log.Debug().Str("config", a.cfgPath).Msg("config loaded")
			return nil
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceErrors = true

	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.DefaultPath, "Config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newDetectCmd(a),
		newAnalyzeCmd(a),
		newClipsCmd(a),
		newServeCmd(a),
		newInitCmd(a),
	)
	return root
}
