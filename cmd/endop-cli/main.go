// Command endop-cli reads results screenshots from disk.
package main

import (
	"fmt"
	"os"

	"github.com/akhelper/endop-service/config"
	"github.com/akhelper/endop-service/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "endop-cli",
		Short:         "Read operation results screenshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(opts.envFile)
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if opts.verbose {
				level = zerolog.TraceLevel
			}
			if _, err := logging.Setup(level, cfg.LogFile); err != nil {
				return err
			}
			log.Debug().Str("command", cmd.Name()).Msg("Starting")
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "Path to the .env file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at trace level")

	loaded := func() *config.Config { return cfg }
	cmd.AddCommand(newRecognizeCmd(loaded), newCheckCmd(loaded))
	return cmd
}
