package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaver-labs/weaver/internal/tools"
)

// NewDoctorCmd returns a health-check command validating config and environment.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and workspace root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			fs, err := tools.NewFilesystem(cfg.Agent.WorkspaceRoot)
			if err != nil {
				return fmt.Errorf("workspace root: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Backend: %s, model: %s\n", cfg.Backend.Type, cfg.Backend.Model)
			fmt.Fprintf(out, "Workspace root: %s\n", fs.Root())
			fmt.Fprintf(out, "Delegation depth: %d, parallelism: %d, iterations: %d\n",
				cfg.Agent.MaxSubdelegations, cfg.Agent.DelegationParallelism, cfg.Agent.MaxIterations)
			return nil
		},
	}
}
