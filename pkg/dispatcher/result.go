package dispatcher

import (
	"strings"
)

type ContentType string

const (
	ContentText ContentType = "text"
)

// Result is the envelope returned for every tool call, successful or not.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

type Content struct {
	Type ContentType `json:"type"`
	Text string      `json:"text"`
}

func TextResult(text string) *Result {
	return &Result{
		Content: []Content{
			{Type: ContentText, Text: text},
		},
	}
}

func ErrorResult(text string) *Result {
	r := TextResult(text)
	r.IsError = true

	return r
}

// Text joins all text blocks of the result.
func (r *Result) Text() string {
	var parts []string

	for _, c := range r.Content {
		if c.Type == ContentText {
			parts = append(parts, c.Text)
		}
	}

	return strings.Join(parts, "\n")
}
