package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/cookieschat/internal/config"
	"github.com/diogo/cookieschat/internal/logging"
	"github.com/diogo/cookieschat/internal/render"
	"github.com/diogo/cookieschat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with Gemini.

The chat keeps the whole conversation in memory and sends it along with
every new message. Input is disabled while a reply is pending.
Type '/quit' or '/exit', or press Esc or Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// runTUI is swapped by tests
var runTUI = tui.Run

func runChat(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to bubbletea, logs go to a file
	if logPath, err := config.GetLogPath(); err == nil {
		if _, err := config.EnsureConfigDir(); err == nil {
			if closer, err := logging.SetupFile(logPath, cfg.LogLevel); err == nil {
				defer func() { _ = closer.Close() }()
			}
		}
	}

	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		log.Warn().Str("theme", cfg.TUITheme).Msg("unknown TUI theme, using default")
	}
	tui.UpdateTheme()

	opts := render.OptionsFromConfig(cfg.Markdown, render.DefaultOptions().Width)
	if err := runTUI(rt.session, rt.modelName, tui.WithRenderOptions(opts)); err != nil {
		return fmt.Errorf("chat ended with an error: %w", err)
	}
	return nil
}
