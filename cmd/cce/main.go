// Command cce is the terminal entry point for the Conversation Context
// Engine: index workspaces, rank candidates by relevance, compact
// transcripts, and inspect rollback/worker state from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cce/internal/config"
	"cce/internal/engine"
	"cce/internal/logging"
)

var (
	verbose    bool
	workspace  string
	configPath string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cce",
	Short: "Conversation Context Engine CLI",
	Long: `cce indexes a workspace, ranks candidate files by relevance to a
query, compacts conversation transcripts under a token budget, and
exposes rollback and background-worker state — the core subsystem of a
terminal AI coding assistant, run standalone from the shell.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an engine config YAML file")

	rootCmd.AddCommand(indexCmd, rankCmd, compactCmd, rollbackCmd, serveStatsCmd)
}

func loadEngine() (*engine.Engine, error) {
	var cfg config.EngineConfig
	var err error
	if configPath != "" {
		cfg, err = config.LoadEngineConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultEngineConfig()
	}
	return engine.New(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
