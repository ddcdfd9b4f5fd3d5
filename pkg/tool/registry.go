package tool

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ValidationError describes the first argument that violated a tool schema.
type ValidationError struct {
	Argument string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Argument, e.Reason)
}

// Registry is the immutable catalog of tools, kept in registration order.
type Registry struct {
	tools []Tool
	index map[string]*entry
}

type entry struct {
	tool Tool

	order    []string
	required map[string]bool
	resolved map[string]*jsonschema.Resolved
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		index: make(map[string]*entry, len(tools)),
	}

	for _, t := range tools {
		if t.Name == "" {
			return nil, errors.New("tool name is required")
		}

		if _, exists := r.index[t.Name]; exists {
			return nil, fmt.Errorf("tool %q already registered", t.Name)
		}

		if t.ToolHandler == nil {
			return nil, fmt.Errorf("tool %q has no handler", t.Name)
		}

		e, err := newEntry(t)

		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", t.Name, err)
		}

		r.tools = append(r.tools, t)
		r.index[t.Name] = e
	}

	return r, nil
}

func newEntry(t Tool) (*entry, error) {
	if t.Schema == nil || t.Schema.Type != "object" {
		return nil, errors.New("input schema must be of type object")
	}

	e := &entry{
		tool: t,

		required: make(map[string]bool),
		resolved: make(map[string]*jsonschema.Resolved),
	}

	for _, name := range t.Schema.Required {
		if _, ok := t.Schema.Properties[name]; !ok {
			return nil, fmt.Errorf("required property %q is not declared", name)
		}

		e.required[name] = true
		e.order = append(e.order, name)
	}

	var optional []string

	for name, prop := range t.Schema.Properties {
		resolved, err := prop.Resolve(nil)

		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}

		e.resolved[name] = resolved

		if !e.required[name] {
			optional = append(optional, name)
		}
	}

	sort.Strings(optional)
	e.order = append(e.order, optional...)

	return e, nil
}

func (r *Registry) List() []Tool {
	return slices.Clone(r.tools)
}

func (r *Registry) Find(name string) (Tool, bool) {
	e, ok := r.index[name]

	if !ok {
		return Tool{}, false
	}

	return e.tool, true
}

// Validate checks args against the schema of the named tool and reports the
// first violated constraint. Properties not declared in the schema are ignored.
func (r *Registry) Validate(name string, args map[string]any) error {
	e, ok := r.index[name]

	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}

	for _, prop := range e.order {
		value, present := args[prop]

		if !present {
			if e.required[prop] {
				return &ValidationError{Argument: prop, Reason: "required argument is missing"}
			}

			continue
		}

		if err := e.resolved[prop].Validate(value); err != nil {
			return &ValidationError{Argument: prop, Reason: describe(e.tool.Schema.Properties[prop], value, err)}
		}
	}

	return nil
}

// describe turns a failed property check into a short reason naming the
// violated keyword. Unrecognized failures keep the validator's message.
func describe(s *Schema, value any, err error) string {
	if s.Type != "" && !hasType(s.Type, value) {
		return "must be " + article(s.Type) + " " + s.Type
	}

	if len(s.Enum) > 0 && !inEnum(s.Enum, value) {
		options := make([]string, 0, len(s.Enum))

		for _, v := range s.Enum {
			options = append(options, fmt.Sprint(v))
		}

		return "must be one of: " + strings.Join(options, ", ")
	}

	if n, ok := value.(float64); ok {
		if s.Minimum != nil && n < *s.Minimum {
			return "must be at least " + formatNumber(*s.Minimum)
		}

		if s.Maximum != nil && n > *s.Maximum {
			return "must be at most " + formatNumber(*s.Maximum)
		}
	}

	return strings.TrimPrefix(err.Error(), "validating root: ")
}

func hasType(typ string, value any) bool {
	switch typ {
	case "string":
		_, ok := value.(string)
		return ok

	case "boolean":
		_, ok := value.(bool)
		return ok

	case "number":
		_, ok := value.(float64)
		return ok

	case "integer":
		n, ok := value.(float64)
		return ok && n == math.Trunc(n)

	case "object":
		_, ok := value.(map[string]any)
		return ok

	case "array":
		_, ok := value.([]any)
		return ok

	case "null":
		return value == nil
	}

	return true
}

func inEnum(enum []any, value any) bool {
	switch value.(type) {
	case string, float64, bool, nil:
	default:
		return false
	}

	for _, v := range enum {
		if v == value {
			return true
		}
	}

	return false
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}

	return "a"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
