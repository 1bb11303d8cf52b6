package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reloop/portal/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "portal",
		Short:         "Reloop customer and worker portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("PORTAL_CONFIG"), "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newQRCmd(),
	)
	return cmd
}

func (o *rootOptions) logger(cfg config.LogConfig) (*zap.Logger, error) {
	if o.verbose {
		cfg.Level = "debug"
	}
	return config.NewLogger(cfg)
}
