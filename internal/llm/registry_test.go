package llm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weaver-labs/weaver/internal/config"
	"github.com/weaver-labs/weaver/internal/llm"
	"github.com/weaver-labs/weaver/internal/llm/configbuilder"
	llmmock "github.com/weaver-labs/weaver/internal/llm/mock"
)

func TestRegistryResolve(t *testing.T) {
	reg := llm.NewRegistry()
	mockProvider := &llmmock.Provider{NameValue: "mock"}
	reg.RegisterProvider("mock", mockProvider)
	reg.RegisterModel("default", llm.ModelRoute{
		Provider:    "mock",
		Model:       "dummy",
		Temperature: 0.2,
	}, true)

	p, route, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, mockProvider, p)
	require.Equal(t, "dummy", route.Model)

	// unknown names fall through to the default provider as a physical model
	p, route, err = reg.Resolve("other-model")
	require.NoError(t, err)
	require.Equal(t, mockProvider, p)
	require.Equal(t, "other-model", route.Model)
	require.Equal(t, 0.2, route.Temperature)
}

func TestRegistryResolveEmpty(t *testing.T) {
	_, _, err := llm.NewRegistry().Resolve("")
	require.Error(t, err)
}

func TestBuildRegistryFromConfig(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{Type: "openai", Model: "gpt-4o", BaseURL: "http://example.com", RequestTimeout: time.Minute},
		Agent:   config.AgentConfig{Temperature: 0.7, TopP: 1},
	}

	reg, err := configbuilder.BuildRegistryFromConfig(cfg)
	require.NoError(t, err)

	p, route, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "openai", p.Name())
	require.Equal(t, "gpt-4o", route.Model)
	require.Equal(t, 1.0, route.TopP)
}

func TestBuildProviderRejectsUnknownType(t *testing.T) {
	_, err := configbuilder.BuildProvider(config.BackendConfig{Type: "nope"})
	require.Error(t, err)

	p, err := configbuilder.BuildProvider(config.BackendConfig{Type: "ollama"})
	require.NoError(t, err)
	require.Equal(t, "ollama", p.Name())
}
