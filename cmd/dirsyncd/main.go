package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kubex/rubix-dirsync/observability"
)

var version = "dev"

var cfg *Config

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "dirsyncd",
		Short:         "Keeps device group membership in step with user group membership",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			observability.InitLogger("dirsyncd", observability.LogConfig{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				NoColor: cfg.Log.NoColor,
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "dirsyncd.toml", "Path to the daemon config file")
	cmd.AddCommand(runCmd(), recordsCmd(), activityCmd())
	return cmd
}
