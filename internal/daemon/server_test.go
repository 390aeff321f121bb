package daemon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weaver-labs/weaver/internal/config"
)

func newTestServer(t *testing.T, metricsEnabled bool) *Server {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"forty-two"}}`))
	}))
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Backend: config.BackendConfig{
			Type:           "ollama",
			Model:          "llama3",
			BaseURL:        backend.URL,
			RequestTimeout: 5 * time.Second,
		},
		Agent: config.AgentConfig{
			WorkspaceRoot:         t.TempDir(),
			MaxSubdelegations:     1,
			DelegationParallelism: 2,
			MaxIterations:         5,
			Temperature:           0.2,
			TopP:                  1,
		},
		Server: config.ServerConfig{Addr: ":0", MetricsEnabled: metricsEnabled},
	}
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	return srv
}

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t, true)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerAskAndMetrics(t *testing.T) {
	srv := newTestServer(t, true)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/agent/ask", strings.NewReader(`{"prompt":"what is the answer?"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "forty-two")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "weaver_agent_runs_total")
	require.Contains(t, rec.Body.String(), "weaver_backend_requests_total")
}

func TestServerMetricsDisabled(t *testing.T) {
	srv := newTestServer(t, false)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerToolSchemas(t *testing.T) {
	srv := newTestServer(t, true)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools/schemas", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "delegate_subtask")
}
