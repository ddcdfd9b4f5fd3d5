package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adrianliechti/threadsmith/pkg/tool"
)

// Dispatcher routes named calls to tool handlers and turns every outcome
// into a Result. It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	registry *tool.Registry
	logger   *slog.Logger
}

func New(registry *tool.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

func (d *Dispatcher) ListTools() []tool.Tool {
	return d.registry.List()
}

// CallToolJSON decodes raw protocol arguments and dispatches them. An empty
// or null payload is treated as an empty argument object.
func (d *Dispatcher) CallToolJSON(ctx context.Context, name string, raw json.RawMessage) *Result {
	if _, ok := d.registry.Find(name); !ok {
		return d.fail(&Fault{Kind: FaultUnknownTool, Tool: name})
	}

	args, err := decodeArguments(raw)

	if err != nil {
		return d.fail(&Fault{Kind: FaultValidation, Tool: name, Err: err})
	}

	return d.CallTool(ctx, name, args)
}

func (d *Dispatcher) CallTool(ctx context.Context, name string, args map[string]any) *Result {
	t, ok := d.registry.Find(name)

	if !ok {
		return d.fail(&Fault{Kind: FaultUnknownTool, Tool: name})
	}

	args, err := normalizeArguments(args)

	if err != nil {
		return d.fail(&Fault{Kind: FaultValidation, Tool: name, Err: err})
	}

	if err := d.registry.Validate(name, args); err != nil {
		return d.fail(&Fault{Kind: FaultValidation, Tool: name, Err: err})
	}

	id := uuid.NewString()
	started := time.Now()

	d.logger.Debug("tool call started", "call_id", id, "tool", name)

	text, err := invoke(ctx, t, args)

	if err != nil {
		d.logger.Warn("tool call failed", "call_id", id, "tool", name, "duration", time.Since(started), "error", err)
		return (&Fault{Kind: FaultHandler, Tool: name, Err: err}).Result()
	}

	d.logger.Debug("tool call finished", "call_id", id, "tool", name, "duration", time.Since(started))

	return TextResult(text)
}

func (d *Dispatcher) fail(f *Fault) *Result {
	d.logger.Warn("tool call rejected", "tool", f.Tool, "fault", f.Kind.String(), "error", f.Err)
	return f.Result()
}

// invoke runs the handler and renders its value. Both steps run under the
// same recover, so a panic in either becomes a handler fault.
func invoke(ctx context.Context, t tool.Tool, args map[string]any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%s panicked: %v", t.Name, r)
		}
	}()

	value, err := t.ToolHandler(ctx, args)

	if err != nil {
		return "", err
	}

	return render(value)
}

func render(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil

	case string:
		return v, nil

	case fmt.Stringer:
		return v.String(), nil

	default:
		data, err := json.MarshalIndent(v, "", "  ")

		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}

		return string(data), nil
	}
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	var value any

	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	args, ok := value.(map[string]any)

	if !ok {
		return nil, errors.New("arguments must be an object")
	}

	return args, nil
}

// normalizeArguments round-trips args through JSON so validation always sees
// plain JSON values (float64 numbers, []any, map[string]any).
func normalizeArguments(args map[string]any) (map[string]any, error) {
	if len(args) == 0 {
		return map[string]any{}, nil
	}

	data, err := json.Marshal(args)

	if err != nil {
		return nil, fmt.Errorf("arguments are not JSON-encodable: %w", err)
	}

	var result map[string]any

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("arguments are not JSON-encodable: %w", err)
	}

	return result, nil
}
