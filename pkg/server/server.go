package server

import (
	"context"
	"net/http"

	"github.com/adrianliechti/threadsmith/pkg/dispatcher"
	"github.com/adrianliechti/threadsmith/pkg/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
)

type Options struct {
	Name    string
	Version string

	Instructions string
}

type Server struct {
	server     *mcp.Server
	dispatcher *dispatcher.Dispatcher
}

func New(d *dispatcher.Dispatcher, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "threadsmith"
	}

	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    opts.Name,
		Version: opts.Version,
	}, &mcp.ServerOptions{
		Instructions: opts.Instructions,
	})

	s := &Server{
		server:     mcpServer,
		dispatcher: d,
	}

	for _, t := range d.ListTools() {
		s.addTool(t)
	}

	mcpServer.AddReceivingMiddleware(s.middleware)

	return s
}

// Connect starts a session on the given transport. The caller waits on the
// returned session.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	return cors.AllowAll().Handler(handler)
}

func (s *Server) addTool(t tool.Tool) {
	mcpTool := &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,

		InputSchema: t.Schema,
	}

	s.server.AddTool(mcpTool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, req), nil
	})
}

// middleware answers tools/list and tools/call from the dispatcher so the
// advertised order is the registry order and unknown tools produce an error
// result instead of a protocol error.
func (s *Server) middleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		switch method {
		case "tools/list":
			return s.listTools(), nil

		case "tools/call":
			if r, ok := req.(*mcp.CallToolRequest); ok {
				return s.call(ctx, r), nil
			}
		}

		return next(ctx, method, req)
	}
}

func (s *Server) listTools() *mcp.ListToolsResult {
	tools := s.dispatcher.ListTools()

	result := &mcp.ListToolsResult{
		Tools: make([]*mcp.Tool, 0, len(tools)),
	}

	for _, t := range tools {
		result.Tools = append(result.Tools, &mcp.Tool{
			Name:        t.Name,
			Description: t.Description,

			InputSchema: t.Schema,
		})
	}

	return result
}

func (s *Server) call(ctx context.Context, req *mcp.CallToolRequest) *mcp.CallToolResult {
	var name string
	var args []byte

	if req.Params != nil {
		name = req.Params.Name
		args = req.Params.Arguments
	}

	return convertResult(s.dispatcher.CallToolJSON(ctx, name, args))
}

func convertResult(r *dispatcher.Result) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		IsError: r.IsError,
	}

	for _, c := range r.Content {
		switch c.Type {
		case dispatcher.ContentText:
			result.Content = append(result.Content, &mcp.TextContent{Text: c.Text})
		}
	}

	if result.Content == nil {
		result.Content = []mcp.Content{}
	}

	return result
}
