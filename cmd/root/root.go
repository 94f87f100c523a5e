// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"os"
	"sync"

	"fjacquet/statement-compare/internal/config"
	"fjacquet/statement-compare/internal/container"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/validation"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// ConfigFile is the optional --config path
	ConfigFile string

	// AppConfig is loaded in PersistentPreRunE
	AppConfig *config.Config

	appContainer *container.Container
	containerMu  sync.Mutex

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-compare",
		Short: "A CLI tool to categorize and compare bank statements.",
		Long: `statement-compare is a CLI tool that converts bank statements into categorized
transactions and compares two statements category by category, with insights
and recommendations about how spending and income changed.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-compare!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(Log)
			cfg, err := config.Load(ConfigFile)
			if err != nil {
				return err
			}
			AppConfig = cfg
			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

			if ConfigFile != "" {
				if info, err := os.Stat(ConfigFile); err == nil {
					if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
						Log.Warn("Config file may expose API keys", logging.F(logging.FieldFile, ConfigFile), logging.F(logging.FieldReason, err.Error()))
					}
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			CloseContainer()
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&ConfigFile, "config", "c", "", "Config file (default: ./config.yaml or ~/.statement-compare/config.yaml)")
}

// GetContainer returns the application container, building it on first use.
func GetContainer(ctx context.Context) (*container.Container, error) {
	containerMu.Lock()
	defer containerMu.Unlock()
	if appContainer != nil {
		return appContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainer(ctx, AppConfig, Log)
	if err != nil {
		return nil, err
	}
	appContainer = c
	return c, nil
}

// CloseContainer releases the container, if one was built.
func CloseContainer() {
	containerMu.Lock()
	defer containerMu.Unlock()
	if appContainer == nil {
		return
	}
	if err := appContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close resources")
	}
	appContainer = nil
}
