package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/weaver-labs/weaver/internal/tools"
)

// NewToolsCmd prints the tool catalog offered to the backend.
func NewToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools.Catalog())
		},
	}
}
