package llm_test

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaver-labs/weaver/internal/llm"
)

func TestDecodeErrorClassification(t *testing.T) {
	var v struct{ N int }

	syntax := json.Unmarshal([]byte(`{`), &v)
	require.ErrorIs(t, llm.DecodeError(syntax), llm.ErrInvalidResponse)

	typed := json.Unmarshal([]byte(`{"N":"x"}`), &v)
	require.ErrorIs(t, llm.DecodeError(typed), llm.ErrInvalidResponse)

	truncated := llm.DecodeError(io.ErrUnexpectedEOF)
	require.NotErrorIs(t, truncated, llm.ErrInvalidResponse)
	require.ErrorIs(t, truncated, io.ErrUnexpectedEOF)
}
