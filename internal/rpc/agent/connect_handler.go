package agent

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	coreagent "github.com/weaver-labs/weaver/internal/agent"
	"github.com/weaver-labs/weaver/internal/llm"
	"github.com/weaver-labs/weaver/internal/rpc"
	"github.com/weaver-labs/weaver/internal/rpc/connectjson"
)

const ConnectAskProcedure = "/weaver.agent.v1.AgentService/Ask"

// NewConnectHandler builds a Connect unary handler for Ask.
func NewConnectHandler(asker Asker, logger *zap.Logger) (string, http.Handler) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &connectAskHandler{asker: asker, logger: logger}
	return ConnectAskProcedure, connect.NewUnaryHandler(ConnectAskProcedure, h.handle, connect.WithCodec(connectjson.Codec{}))
}

type connectAskHandler struct {
	asker  Asker
	logger *zap.Logger
}

func (h *connectAskHandler) handle(ctx context.Context, req *connect.Request[rpc.AskRequest]) (*connect.Response[rpc.AskResponse], error) {
	if strings.TrimSpace(req.Msg.Prompt) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("prompt is required"))
	}

	resp, err := h.asker.Run(ctx, coreagent.Request{Prompt: req.Msg.Prompt, Model: req.Msg.Model})
	if err != nil {
		h.logger.Warn("ask_failed", zap.String("transport", "connect"), zap.Error(err))
		return nil, connect.NewError(codeFor(err), err)
	}
	return connect.NewResponse(&rpc.AskResponse{Answer: resp.Answer, RunID: resp.RunID, Model: resp.Model}), nil
}

func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, coreagent.ErrMaxIterations), errors.Is(err, llm.ErrInvalidResponse):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// Client calls a remote daemon's Ask procedure over h2c.
type Client struct {
	ask *connect.Client[rpc.AskRequest, rpc.AskResponse]
}

// NewClient builds a Connect client for baseURL (e.g. http://127.0.0.1:8080).
func NewClient(baseURL string) *Client {
	httpClient := &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
	return &Client{
		ask: connect.NewClient[rpc.AskRequest, rpc.AskResponse](
			httpClient,
			strings.TrimRight(baseURL, "/")+ConnectAskProcedure,
			connect.WithCodec(connectjson.Codec{}),
		),
	}
}

// Ask sends a prompt and returns the remote answer.
func (c *Client) Ask(ctx context.Context, req rpc.AskRequest) (rpc.AskResponse, error) {
	resp, err := c.ask.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return rpc.AskResponse{}, err
	}
	return *resp.Msg, nil
}
