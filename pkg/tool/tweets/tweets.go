package tweets

import (
	"fmt"
	"strings"

	"github.com/adrianliechti/threadsmith/pkg/prompt"
)

type Style string

const (
	StyleConversational Style = "conversational"
	StyleInformative    Style = "informative"
	StyleEngaging       Style = "engaging"
	StyleProfessional   Style = "professional"
)

type Format string

const (
	FormatThread Format = "thread"
	FormatSingle Format = "single"
)

const (
	DefaultMaxTweets = 5
	MaxTweetsLimit   = 10

	DefaultMaxTranscriptChars = 20000
)

var styleGuides = map[Style]string{
	StyleConversational: "Write like you are talking to a friend. Use casual wording, contractions and first person, and ask the reader a question now and then.",
	StyleInformative:    "Lead with facts and concrete takeaways from the video. Prefer clarity over flair; numbers and specifics beat adjectives.",
	StyleEngaging:       "Open with a strong hook and keep sentences punchy. Build curiosity so the reader wants the next tweet.",
	StyleProfessional:   "Keep a polished and credible tone for a business audience. No slang, minimal emoji and a clear structure.",
}

type Options struct {
	MaxTweets int

	Style  Style
	Format Format
}

type Context struct {
	Style     Style
	Format    Format
	MaxTweets int

	SystemPrompt string
	Instructions string
}

type Generator struct {
	maxTranscriptChars int
}

func New(maxTranscriptChars int) *Generator {
	if maxTranscriptChars <= 0 {
		maxTranscriptChars = DefaultMaxTranscriptChars
	}

	return &Generator{
		maxTranscriptChars: maxTranscriptChars,
	}
}

// Generate builds the prompts the calling model needs to write tweets itself.
// It never fails; unknown styles and formats fall back to the defaults.
func Generate(transcript, userPrompt string, opts Options) Context {
	return New(0).Generate(transcript, userPrompt, opts)
}

func (g *Generator) Generate(transcript, userPrompt string, opts Options) Context {
	style := opts.Style

	if _, ok := styleGuides[style]; !ok {
		style = StyleEngaging
	}

	format := opts.Format

	if format != FormatSingle {
		format = FormatThread
	}

	maxTweets := 1

	if format == FormatThread {
		maxTweets = opts.MaxTweets

		if maxTweets <= 0 {
			maxTweets = DefaultMaxTweets
		}

		maxTweets = min(maxTweets, MaxTweetsLimit)
	}

	transcript, truncated := truncate(strings.TrimSpace(transcript), g.maxTranscriptChars)

	systemPrompt := render(prompt.TweetsSystem, map[string]any{
		"Style":      style,
		"StyleGuide": styleGuides[style],
		"Format":     string(format),
		"MaxTweets":  maxTweets,
	})

	instructions := render(prompt.TweetsInstructions, map[string]any{
		"Prompt":     strings.TrimSpace(userPrompt),
		"Format":     string(format),
		"MaxTweets":  maxTweets,
		"Transcript": transcript,
		"Truncated":  truncated,
		"Limit":      g.maxTranscriptChars,
	})

	return Context{
		Style:     style,
		Format:    format,
		MaxTweets: maxTweets,

		SystemPrompt: systemPrompt,
		Instructions: instructions,
	}
}

func truncate(s string, limit int) (string, bool) {
	runes := []rune(s)

	if len(runes) <= limit {
		return s, false
	}

	return string(runes[:limit]), true
}

func render(tmpl string, data any) string {
	text, err := prompt.Render(tmpl, data)

	if err != nil {
		panic(fmt.Sprintf("tweets: invalid template: %v", err))
	}

	return strings.TrimSpace(text)
}
