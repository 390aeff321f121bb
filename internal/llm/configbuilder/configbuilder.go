package configbuilder

import (
	"fmt"

	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/llm"
	llmollama "github.com/weaver-labs/weaver/internal/llm/providers/ollama"
	llmopenai "github.com/weaver-labs/weaver/internal/llm/providers/openai"
)

// DefaultRoute is the logical name under which the configured model is registered.
const DefaultRoute = "default"

// BuildRegistryFromConfig constructs a registry holding the configured backend
// and its model as the default route.
func BuildRegistryFromConfig(cfg *config.Config) (*llm.Registry, error) {
	reg := llm.NewRegistry()

	p, err := BuildProvider(cfg.Backend)
	if err != nil {
		return nil, err
	}
	reg.RegisterProvider(cfg.Backend.Type, p)
	reg.RegisterModel(DefaultRoute, llm.ModelRoute{
		Provider:    cfg.Backend.Type,
		Model:       cfg.Backend.Model,
		Temperature: cfg.Agent.Temperature,
		TopP:        cfg.Agent.TopP,
	}, true)

	if _, _, err := reg.Resolve(""); err != nil {
		return nil, err
	}

	return reg, nil
}

// BuildProvider creates the wire transport for a backend type.
func BuildProvider(cfg config.BackendConfig) (llm.Provider, error) {
	switch cfg.Type {
	case "openai", "openrouter", "vllm", "lmstudio", "custom":
		return llmopenai.NewProvider(cfg.Type, cfg.BaseURL, cfg.APIKey, cfg.RequestTimeout), nil
	case "ollama":
		return llmollama.NewProvider(cfg.Type, cfg.BaseURL, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
