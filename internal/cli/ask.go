package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weaver-labs/weaver/internal/agent"
	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/llm/configbuilder"
	"github.com/weaver-labs/weaver/internal/logging"
	"github.com/weaver-labs/weaver/internal/rpc"
	agentrpc "github.com/weaver-labs/weaver/internal/rpc/agent"
)

// NewAskCmd runs a top-level agent in-process, or asks a daemon with --remote.
func NewAskCmd(opts *Options) *cobra.Command {
	var root string
	var model string
	var remote bool
	var addr string

	cmd := &cobra.Command{
		Use:   "ask \"<prompt>\"",
		Short: "Answer a question about the workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("prompt cannot be empty")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var answer string
			var err error
			if remote {
				answer, err = askRemote(ctx, daemonURL(addr), prompt, model)
			} else {
				answer, err = askLocal(ctx, opts, prompt, root, model)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Workspace root (overrides agent.workspace_root)")
	cmd.Flags().StringVar(&model, "model", "", "Model identifier (overrides backend.model)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask a running weaverd instead of running the agent in-process")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Daemon address used with --remote")
	return cmd
}

func askLocal(ctx context.Context, opts *Options, prompt, root, model string) (string, error) {
	cfg, err := loadConfig(opts, func(c *config.Config) {
		if root != "" {
			c.Agent.WorkspaceRoot = root
		}
		if model != "" {
			c.Backend.Model = model
		}
	})
	if err != nil {
		return "", err
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return "", err
	}
	defer logger.Sync() //nolint:errcheck // best-effort

	registry, err := configbuilder.BuildRegistryFromConfig(cfg)
	if err != nil {
		return "", fmt.Errorf("build registry: %w", err)
	}
	core, err := agent.New(registry, cfg.Agent,
		agent.WithLogger(logger),
		agent.WithRequestTimeout(cfg.Backend.RequestTimeout),
	)
	if err != nil {
		return "", err
	}

	resp, err := core.Run(ctx, agent.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func askRemote(ctx context.Context, baseURL, prompt, model string) (string, error) {
	resp, err := agentrpc.NewClient(baseURL).Ask(ctx, rpc.AskRequest{Prompt: prompt, Model: model})
	if err != nil {
		return "", fmt.Errorf("remote ask: %w", err)
	}
	return resp.Answer, nil
}

func daemonURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
