package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/weaver-labs/weaver/internal/llm"
	llmmock "github.com/weaver-labs/weaver/internal/llm/mock"
	"github.com/weaver-labs/weaver/internal/observability"
)

func TestExecutorConvertsFailuresToToolErrors(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeWorkspaceFile(t, root, "short.txt", "one\ntwo\n")
	writeWorkspaceFile(t, outside, "secret.txt", "classified")
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	metrics := observability.NewMetrics()
	var requests []llm.ChatRequest
	a, _ := newTestAgent(t, testConfig(root), func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		requests = append(requests, req)
		if len(requests) == 1 {
			return llmmock.Calls(
				llmmock.Call("bad_json", "read_file_full", `{"path":`),
				llmmock.Call("unknown", "write_file", `{"path":"x"}`),
				llmmock.Call("missing", "read_file_range", `{"path":"short.txt","start_line":1}`),
				llmmock.Call("escape", "read_file_full", `{"path":"escape/secret.txt"}`),
				llmmock.Call("dotdot", "list_directory", `{"path":"../"}`),
				llmmock.Call("range", "read_file_range", `{"path":"short.txt","start_line":5,"end_line":9}`),
				llmmock.Call("regex", "search_text", `{"pattern":"("}`),
				llmmock.Call("ok", "read_file_range", `{"path":"short.txt","start_line":2,"end_line":2}`),
			), nil
		}
		return llmmock.Text("done"), nil
	}, WithMetrics(metrics))

	resp, err := a.Run(context.Background(), Request{Prompt: "probe"})
	require.NoError(t, err)
	require.Equal(t, "done", resp.Answer)

	msgs := toolMessages(requests[1])
	require.Len(t, msgs, 8)

	badJSON := decodeToolError(t, msgs[0].Content)
	require.Equal(t, "read_file_full", badJSON.Tool)
	require.Equal(t, `{"path":`, badJSON.Arguments, "unparseable arguments are echoed raw")
	require.Contains(t, badJSON.Message, "invalid JSON arguments")

	unknown := decodeToolError(t, msgs[1].Content)
	require.Contains(t, unknown.Message, "write_file")
	require.Equal(t, map[string]interface{}{"path": "x"}, unknown.Arguments)

	missing := decodeToolError(t, msgs[2].Content)
	require.Contains(t, missing.Message, "end_line")

	escape := decodeToolError(t, msgs[3].Content)
	require.Contains(t, escape.Message, "escapes workspace root")

	dotdot := decodeToolError(t, msgs[4].Content)
	require.Contains(t, dotdot.Message, "escapes workspace root")

	outOfRange := decodeToolError(t, msgs[5].Content)
	require.Contains(t, outOfRange.Message, "outside the file")

	regex := decodeToolError(t, msgs[6].Content)
	require.Contains(t, regex.Message, "compile pattern")

	require.JSONEq(t, `{"path":"short.txt","start_line":2,"end_line":2,"content":"two"}`, msgs[7].Content)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("read_file_range", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("read_file_range", "error")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("read_file_full", "error")))
}

func TestParseArguments(t *testing.T) {
	args, err := parseArguments("")
	require.NoError(t, err)
	require.Empty(t, args)

	args, err = parseArguments("null")
	require.NoError(t, err)
	require.NotNil(t, args)

	args, err = parseArguments(` {"path":"a"} `)
	require.NoError(t, err)
	require.Equal(t, "a", args["path"])

	_, err = parseArguments(`["a"]`)
	require.Error(t, err)
}

func TestExecutorTreatsNullOptionalArgumentsAsAbsent(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "alpha.txt", "alpha\n")

	var requests []llm.ChatRequest
	a, _ := newTestAgent(t, testConfig(root), func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		requests = append(requests, req)
		if len(requests) == 1 {
			return llmmock.Calls(
				llmmock.Call("list", "list_directory", `{"path":null}`),
				llmmock.Call("search", "search_text", `{"pattern":"al","path":null}`),
				llmmock.Call("read", "read_file_full", `{"path":null}`),
			), nil
		}
		return llmmock.Text("done"), nil
	})

	_, err := a.Run(context.Background(), Request{Prompt: "look around"})
	require.NoError(t, err)

	msgs := toolMessages(requests[1])
	require.Len(t, msgs, 3)
	require.JSONEq(t, `{"entries":[{"name":"alpha.txt","path":"alpha.txt","kind":"file","size":6}]}`, msgs[0].Content)
	require.JSONEq(t, `{"matches":[{"path":"alpha.txt","line_number":1,"line":"alpha"}]}`, msgs[1].Content)

	required := decodeToolError(t, msgs[2].Content)
	require.Contains(t, required.Message, "path is required")
}
