package tweets

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianliechti/threadsmith/pkg/tool"
)

type ContextGenerator interface {
	Generate(transcript, prompt string, opts Options) Context
}

type generateArgs struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt"`

	MaxTweets int    `json:"maxTweets"`
	Style     string `json:"style"`
	Format    string `json:"format"`
}

func Tools(g ContextGenerator) []tool.Tool {
	return []tool.Tool{
		GenerateTool(g),
	}
}

func GenerateTool(g ContextGenerator) tool.Tool {
	minTweets, maxTweets := 1.0, float64(MaxTweetsLimit)

	return tool.Tool{
		Name:        "generate_tweets_from_transcript",
		Description: "Prepare everything needed to write tweets from a video transcript. Returns a system prompt and instructions; write the tweets yourself by following them, then pass the result to create_typefully_draft.",

		Schema: &tool.Schema{
			Type: "object",

			Properties: map[string]*tool.Schema{
				"transcript": {
					Type:        "string",
					Description: "Transcript text, usually the output of get_youtube_transcript",
				},

				"prompt": {
					Type:        "string",
					Description: "What the tweets should focus on, e.g. the angle, audience or key message",
				},

				"maxTweets": {
					Type:        "integer",
					Description: "Maximum number of tweets in a thread (1-10, default 5)",

					Minimum: &minTweets,
					Maximum: &maxTweets,
				},

				"style": {
					Type:        "string",
					Description: "Writing style (default engaging)",

					Enum: []any{"conversational", "informative", "engaging", "professional"},
				},

				"format": {
					Type:        "string",
					Description: "Write a thread or a single tweet (default thread)",

					Enum: []any{"thread", "single"},
				},
			},

			Required: []string{"transcript", "prompt"},
		},

		ToolHandler: tool.Typed(func(ctx context.Context, args generateArgs) (any, error) {
			result := g.Generate(args.Transcript, args.Prompt, Options{
				MaxTweets: args.MaxTweets,

				Style:  Style(args.Style),
				Format: Format(args.Format),
			})

			return formatContext(result), nil
		}),
	}
}

func formatContext(c Context) string {
	var b strings.Builder

	b.WriteString("🧵 Tweet Generation Context\n\n")

	fmt.Fprintf(&b, "Style: %s\n", c.Style)
	fmt.Fprintf(&b, "Format: %s\n", c.Format)
	fmt.Fprintf(&b, "Max tweets: %d\n\n", c.MaxTweets)

	b.WriteString("## System Prompt\n\n")
	b.WriteString(c.SystemPrompt)
	b.WriteString("\n\n## Instructions\n\n")
	b.WriteString(c.Instructions)

	return b.String()
}
