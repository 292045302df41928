package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mockchat/internal/config"
	"github.com/vovakirdan/mockchat/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "mockchat",
		Short:        "Chat client core with a simulated real-time backend",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error, off)")

	cmd.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newRoomsCmd(opts),
	)
	return cmd
}

// load resolves configuration and builds the logger. fallbackLevel applies
// when neither the flag nor the config sets a level.
func (o *rootOptions) load(fallbackLevel string) error {
	bootstrap := log.New(firstNonEmpty(o.logLevel, fallbackLevel, "info"), os.Stderr)

	cfg, path, err := config.Load(bootstrap, o.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	o.cfg = cfg

	level := o.logLevel
	if level == "" && fallbackLevel == "" {
		level = cfg.LogLevel
	}
	o.logger = log.New(firstNonEmpty(level, fallbackLevel), os.Stderr)
	o.logger.Debug().Str("config", path).Msg("configuration loaded")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
