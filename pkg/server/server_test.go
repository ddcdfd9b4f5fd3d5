package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adrianliechti/threadsmith/pkg/dispatcher"
	"github.com/adrianliechti/threadsmith/pkg/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type greetArgs struct {
	Name string `json:"name"`
}

func newTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	object := func(required ...string) *tool.Schema {
		return &tool.Schema{
			Type: "object",

			Properties: map[string]*tool.Schema{
				"name": {Type: "string"},
			},

			Required: required,
		}
	}

	registry, err := tool.NewRegistry(
		tool.Tool{
			Name:        "zeta_greet",
			Description: "greets someone",

			Schema: object("name"),

			ToolHandler: tool.Typed(func(ctx context.Context, args greetArgs) (any, error) {
				return "hello " + args.Name, nil
			}),
		},
		tool.Tool{
			Name:        "alpha_fail",
			Description: "always fails",

			Schema: object(),

			ToolHandler: func(ctx context.Context, args map[string]any) (any, error) {
				return nil, errors.New("upstream\tbroke\n")
			},
		},
	)

	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	s := New(dispatcher.New(registry, nil), Options{Instructions: "test"})

	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverTransport)

	if err != nil {
		t.Fatalf("failed to connect server: %v", err)
	}

	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "1.0.0"}, nil)

	cs, err := client.Connect(ctx, clientTransport, nil)

	if err != nil {
		t.Fatalf("failed to connect client: %v", err)
	}

	t.Cleanup(func() { cs.Close() })

	return cs
}

func TestListToolsKeepsRegistryOrder(t *testing.T) {
	cs := newTestSession(t)

	result, err := cs.ListTools(context.Background(), nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(result.Tools))
	}

	if result.Tools[0].Name != "zeta_greet" || result.Tools[1].Name != "alpha_fail" {
		t.Errorf("unexpected order %s, %s", result.Tools[0].Name, result.Tools[1].Name)
	}
}

func TestCallTool(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any

		isError  bool
		expected string
	}{
		{"success", "zeta_greet", map[string]any{"name": "world"}, false, "hello world"},
		{"unknown tool", "missing", map[string]any{}, true, "Unknown tool: missing"},
		{"validation", "zeta_greet", map[string]any{}, true, "Invalid arguments for zeta_greet: "},
		{"handler error", "alpha_fail", map[string]any{}, true, "❌ Error: upstream broke"},
	}

	cs := newTestSession(t)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      tc.tool,
				Arguments: tc.args,
			})

			if err != nil {
				t.Fatalf("unexpected protocol error: %v", err)
			}

			if result.IsError != tc.isError {
				t.Errorf("expected isError %v, got %v", tc.isError, result.IsError)
			}

			if len(result.Content) != 1 {
				t.Fatalf("expected one content block, got %d", len(result.Content))
			}

			text, ok := result.Content[0].(*mcp.TextContent)

			if !ok {
				t.Fatalf("expected text content, got %T", result.Content[0])
			}

			if !strings.HasPrefix(text.Text, tc.expected) {
				t.Errorf("expected %q to start with %q", text.Text, tc.expected)
			}
		})
	}
}

func TestConvertResult(t *testing.T) {
	result := convertResult(dispatcher.ErrorResult("boom"))

	if !result.IsError || len(result.Content) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	if text := result.Content[0].(*mcp.TextContent).Text; text != "boom" {
		t.Errorf("expected boom, got %q", text)
	}
}
