package dispatcher

import (
	"fmt"
	"strings"
)

type FaultKind int

const (
	FaultUnknownTool FaultKind = iota
	FaultValidation
	FaultHandler
)

func (k FaultKind) String() string {
	switch k {
	case FaultUnknownTool:
		return "unknown_tool"
	case FaultValidation:
		return "validation"
	case FaultHandler:
		return "handler"
	}

	return fmt.Sprintf("fault(%d)", int(k))
}

// Fault is a failed call, classified before it is rendered into a Result.
type Fault struct {
	Kind FaultKind
	Tool string

	Err error
}

func (f *Fault) Error() string {
	return f.Text()
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Text is the message returned to the client for this fault.
func (f *Fault) Text() string {
	switch f.Kind {
	case FaultUnknownTool:
		return "Unknown tool: " + f.Tool

	case FaultValidation:
		return "Invalid arguments for " + f.Tool + ": " + sanitize(message(f.Err))

	default:
		return "❌ Error: " + sanitize(message(f.Err))
	}
}

func (f *Fault) Result() *Result {
	return ErrorResult(f.Text())
}

func message(err error) string {
	if err == nil {
		return "unknown error"
	}

	return err.Error()
}

var controlReplacer = strings.NewReplacer(
	"\r", " ",
	"\n", " ",
	"\t", " ",
)

func sanitize(s string) string {
	return strings.TrimSpace(controlReplacer.Replace(s))
}
