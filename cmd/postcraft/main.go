package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/postcraft/internal/ai"
	"github.com/thinkscotty/postcraft/internal/config"
	"github.com/thinkscotty/postcraft/internal/gemini"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "postcraft",
		Short:         "Generate social media post packages with Gemini",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			setupLogging(cfg.Logging)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "Path to configuration file")

	root.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newModelsCmd(a),
		newGalleryCmd(a),
		newVersionCmd(),
	)
	return root
}

func setupLogging(lc config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(lc.Format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func (a *app) aiClient() *ai.Client {
	g := a.cfg.Gemini
	upstream := gemini.NewClient(g.BaseURL).WithGenerationConfig(gemini.GenerationConfig{
		Temperature:     g.Temperature,
		MaxOutputTokens: g.MaxOutputTokens,
	})
	return ai.NewClient(upstream, ai.Options{
		APIKey: g.APIKey,
		Policy: gemini.SelectionPolicy{
			PrimaryFamily:  g.PrimaryFamily,
			LegacyFamilies: g.LegacyFamilies,
			DefaultModel:   g.DefaultModel,
		},
		Timeout: g.Timeout(),
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		// Skip config loading.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Postcraft %s (built %s)\n", version, buildTime)
		},
	}
}
