package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/wflores9/StudioBot.ai/internal/config"
)

// Prompter asks interactive questions; tests swap in a scripted one.
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter on a terminal.
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

var errPromptCancelled = errors.New("prompt cancelled")

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(a.prompter, a.cfg, a.cfgPath, cmd.OutOrStdout())
		},
	}
}

// runInit asks for each setting, starting from base, and writes the result
// to path. The API key is never asked for; it stays in the environment.
func runInit(p Prompter, base *config.Config, path string, out io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		overwrite, err := p.Confirm(path+" already exists. Overwrite?", false)
		if err != nil {
			return errPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Init cancelled.")
			return nil
		}
	}

	cfg := *base
	d := &cfg.Detection

	var err error
	if d.MinClipSec, err = askInt(p, "Minimum clip length (seconds)?", d.MinClipSec); err != nil {
		return err
	}
	if d.MaxClipSec, err = askInt(p, "Maximum clip length (seconds)?", d.MaxClipSec); err != nil {
		return err
	}
	if d.TopN, err = askInt(p, "How many clips per video?", d.TopN); err != nil {
		return err
	}
	if d.AutoApproveScore, err = askFloat(p, "Auto-approve clips scoring at least?", d.AutoApproveScore); err != nil {
		return err
	}
	if cfg.Paths.OutDir, err = askString(p, "Where should clips be written?", cfg.Paths.OutDir); err != nil {
		return err
	}
	if cfg.Paths.DBPath, err = askString(p, "Clip database path?", cfg.Paths.DBPath); err != nil {
		return err
	}
	if cfg.Server.Addr, err = askString(p, "API listen address?", cfg.Server.Addr); err != nil {
		return err
	}
	eu, err := p.Confirm("Use the EU transcription region?", strings.EqualFold(cfg.AssemblyAI.Region, "eu"))
	if err != nil {
		return errPromptCancelled
	}
	cfg.AssemblyAI.Region, cfg.AssemblyAI.BaseURL = "us", ""
	if eu {
		cfg.AssemblyAI.Region = "eu"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", path)
	if cfg.AssemblyAI.APIKey == "" {
		fmt.Fprintf(out, "Set %s in your environment or .env before running analyze.\n", config.EnvAPIKey)
	}
	return nil
}

func askString(p Prompter, msg, def string) (string, error) {
	v, err := p.Input(msg, def)
	if err != nil {
		return "", errPromptCancelled
	}
	if v = strings.TrimSpace(v); v == "" {
		return def, nil
	}
	return v, nil
}

func askInt(p Prompter, msg string, def int) (int, error) {
	v, err := askString(p, msg, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", msg, v)
	}
	return n, nil
}

func askFloat(p Prompter, msg string, def float64) (float64, error) {
	v, err := askString(p, msg, strconv.FormatFloat(def, 'f', -1, 64))
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", msg, v)
	}
	return f, nil
}
