package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/version"
)

// Options holds global CLI options.
type Options struct {
	ConfigPath string
}

// NewRootCmd constructs the base CLI command tree.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "weaver",
		Short:         "Weaver: recursive file-reading agent",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to config file (default: weaver.yaml in . or configs/, optional)")

	cmd.AddCommand(NewAskCmd(opts))
	cmd.AddCommand(NewToolsCmd())
	cmd.AddCommand(NewDoctorCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig wraps config loading with shared options.
func loadConfig(opts *Options, overrides ...config.Override) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, overrides...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
