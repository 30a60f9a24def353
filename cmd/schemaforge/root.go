package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/config"
)

// app holds the global flags shared by every command.
type app struct {
	configPath string
	storage    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "schemaforge",
		Short:         "Build, validate and serve JSON Schema documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.storage, "storage", "", "schema storage directory (overrides the config file)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newMakeCmd(a),
		newValidateCmd(a),
		newLintCmd(),
		newShowCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// config loads the config file and applies the global flags over it.
func (a *app) config() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.storage != "" {
		cfg.Storage.Path = a.storage
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	return cfg, nil
}
