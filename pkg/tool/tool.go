package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

type Tool struct {
	Name        string
	Description string

	Schema *Schema

	ToolHandler
}

type Schema = jsonschema.Schema

type ToolHandler = func(ctx context.Context, args map[string]any) (any, error)

// Typed adapts a handler taking a decoded argument struct. Arguments are
// expected to be validated already, so decoding only maps JSON names onto
// struct fields.
func Typed[T any](fn func(ctx context.Context, args T) (any, error)) ToolHandler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var input T

		if err := Decode(args, &input); err != nil {
			return nil, err
		}

		return fn(ctx, input)
	}
}

func Decode(args map[string]any, v any) error {
	if args == nil {
		args = map[string]any{}
	}

	data, err := json.Marshal(args)

	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}

	return nil
}
