package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"funnelfit/portal-backend/internal/config"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "funnelfit",
		Short: "FunnelFit onboarding wizard backend",
		Long: `funnelfit runs the onboarding wizard API for SME owners and fractional CFOs.

Examples:
  funnelfit serve --config config.json
  funnelfit steps --role cfo
  funnelfit validate --role sme --step company-info --form answers.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(opts.envFile); err != nil {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.json", "Path to the JSON config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.EnvFileName, "Environment file loaded before the config")

	cmd.AddCommand(
		newServeCmd(opts),
		newStepsCmd(),
		newValidateCmd(),
	)
	return cmd
}
