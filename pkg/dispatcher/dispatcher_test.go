package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/adrianliechti/threadsmith/pkg/tool"
)

type echoArgs struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

func newTestDispatcher(t *testing.T, handler tool.ToolHandler) (*Dispatcher, *int) {
	t.Helper()

	calls := 0
	lo, hi := 1.0, 10.0

	echo := tool.Tool{
		Name:        "echo",
		Description: "echoes text",

		Schema: &tool.Schema{
			Type: "object",

			Properties: map[string]*tool.Schema{
				"text":  {Type: "string"},
				"count": {Type: "integer", Minimum: &lo, Maximum: &hi},
			},

			Required: []string{"text"},
		},

		ToolHandler: func(ctx context.Context, args map[string]any) (any, error) {
			calls++
			return handler(ctx, args)
		},
	}

	registry, err := tool.NewRegistry(echo)

	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	return New(registry, nil), &calls
}

func TestCallToolUnknown(t *testing.T) {
	d, calls := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return "unused", nil
	})

	result := d.CallTool(context.Background(), "nonexistent_tool", map[string]any{})

	if !result.IsError {
		t.Fatal("expected error result")
	}

	if !strings.Contains(result.Text(), "Unknown tool") {
		t.Errorf("expected unknown tool message, got %q", result.Text())
	}

	if result.Text() != "Unknown tool: nonexistent_tool" {
		t.Errorf("unexpected message %q", result.Text())
	}

	if *calls != 0 {
		t.Errorf("expected no handler calls, got %d", *calls)
	}
}

func TestCallToolValidation(t *testing.T) {
	d, calls := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return "unused", nil
	})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing required", map[string]any{}, "text"},
		{"wrong type", map[string]any{"text": true}, "text"},
		{"out of range", map[string]any{"text": "x", "count": 15}, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.CallTool(context.Background(), "echo", tt.args)

			if !result.IsError {
				t.Fatal("expected error result")
			}

			if !strings.HasPrefix(result.Text(), "Invalid arguments for echo") {
				t.Errorf("unexpected message %q", result.Text())
			}

			if !strings.Contains(result.Text(), tt.want) {
				t.Errorf("expected message to name %q, got %q", tt.want, result.Text())
			}
		})
	}

	if *calls != 0 {
		t.Errorf("expected no handler calls, got %d", *calls)
	}
}

func TestCallToolSuccess(t *testing.T) {
	d, calls := newTestDispatcher(t, tool.Typed(func(ctx context.Context, args echoArgs) (any, error) {
		return strings.Repeat(args.Text, args.Count), nil
	}))

	result := d.CallTool(context.Background(), "echo", map[string]any{"text": "ab", "count": 3, "extra": "ignored"})

	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Text())
	}

	if len(result.Content) != 1 || result.Content[0].Type != ContentText {
		t.Fatalf("expected a single text block, got %+v", result.Content)
	}

	if result.Text() != "ababab" {
		t.Errorf("expected 'ababab', got %q", result.Text())
	}

	if *calls != 1 {
		t.Errorf("expected one handler call, got %d", *calls)
	}
}

func TestCallToolStructResult(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"id": "42"}, nil
	})

	result := d.CallTool(context.Background(), "echo", map[string]any{"text": "x"})

	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Text())
	}

	var decoded map[string]string

	if err := json.Unmarshal([]byte(result.Text()), &decoded); err != nil {
		t.Fatalf("expected JSON text, got %q", result.Text())
	}

	if decoded["id"] != "42" {
		t.Errorf("expected id 42, got %q", decoded["id"])
	}
}

func TestCallToolHandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("upstream said:\r\n\tbad request\n")
	})

	result := d.CallTool(context.Background(), "echo", map[string]any{"text": "x"})

	if !result.IsError {
		t.Fatal("expected error result")
	}

	text := result.Text()

	if strings.ContainsAny(text, "\r\n\t") {
		t.Errorf("expected no control characters, got %q", text)
	}

	if !strings.HasPrefix(text, "❌ Error: ") {
		t.Errorf("expected error prefix, got %q", text)
	}

	if !strings.Contains(text, "bad request") {
		t.Errorf("expected upstream message, got %q", text)
	}

	if strings.HasSuffix(text, " ") {
		t.Errorf("expected trimmed message, got %q", text)
	}
}

func TestCallToolHandlerPanic(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		panic("boom")
	})

	result := d.CallTool(context.Background(), "echo", map[string]any{"text": "x"})

	if !result.IsError {
		t.Fatal("expected error result")
	}

	if !strings.Contains(result.Text(), "boom") {
		t.Errorf("expected panic value in message, got %q", result.Text())
	}
}

type summary struct {
	Title string
}

func (s *summary) String() string {
	return "summary: " + s.Title
}

func TestCallToolRenderPanic(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		var s *summary
		return s, nil
	})

	result := d.CallTool(context.Background(), "echo", map[string]any{"text": "x"})

	if !result.IsError {
		t.Fatalf("expected error result, got %q", result.Text())
	}

	if !strings.HasPrefix(result.Text(), "❌ Error: echo panicked") {
		t.Errorf("unexpected message %q", result.Text())
	}
}

func TestCallToolJSON(t *testing.T) {
	d, calls := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})

	tests := []struct {
		name    string
		tool    string
		raw     string
		isError bool
		want    string
	}{
		{"object", "echo", `{"text":"hi"}`, false, "hi"},
		{"empty payload", "echo", ``, true, "text"},
		{"null payload", "echo", `null`, true, "text"},
		{"array payload", "echo", `[1,2]`, true, "must be an object"},
		{"malformed", "echo", `{"text":`, true, "not valid JSON"},
		{"unknown before decode", "missing", `{"text":`, true, "Unknown tool: missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.CallToolJSON(context.Background(), tt.tool, json.RawMessage(tt.raw))

			if result.IsError != tt.isError {
				t.Fatalf("expected isError=%v, got %v (%s)", tt.isError, result.IsError, result.Text())
			}

			if !strings.Contains(result.Text(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, result.Text())
			}
		})
	}

	if *calls != 1 {
		t.Errorf("expected exactly one handler call, got %d", *calls)
	}
}

func TestListToolsStable(t *testing.T) {
	d, _ := newTestDispatcher(t, func(ctx context.Context, args map[string]any) (any, error) {
		return "ok", nil
	})

	before := d.ListTools()

	d.CallTool(context.Background(), "echo", map[string]any{"text": "x"})
	d.CallTool(context.Background(), "nope", nil)

	after := d.ListTools()

	if len(before) != 1 || len(after) != 1 {
		t.Fatalf("expected one tool, got %d and %d", len(before), len(after))
	}

	if before[0].Name != after[0].Name || before[0].Description != after[0].Description {
		t.Error("expected identical listings")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"line\nbreak", "line break"},
		{"crlf\r\nend", "crlf  end"},
		{"tab\there", "tab here"},
		{"\n\t trailing \r\n", "trailing"},
		{"", ""},
	}

	for _, tc := range tests {
		result := sanitize(tc.input)

		if result != tc.expected {
			t.Errorf("sanitize(%q) = %q, expected %q", tc.input, result, tc.expected)
		}
	}
}

func TestFaultText(t *testing.T) {
	tests := []struct {
		fault    *Fault
		expected string
	}{
		{&Fault{Kind: FaultUnknownTool, Tool: "x"}, "Unknown tool: x"},
		{&Fault{Kind: FaultValidation, Tool: "x", Err: errors.New("argument \"a\": missing")}, "Invalid arguments for x: argument \"a\": missing"},
		{&Fault{Kind: FaultHandler, Tool: "x", Err: errors.New("down\n")}, "❌ Error: down"},
		{&Fault{Kind: FaultHandler, Tool: "x"}, "❌ Error: unknown error"},
	}

	for _, tc := range tests {
		if got := tc.fault.Text(); got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.fault.Kind, tc.expected, got)
		}
	}
}
