package youtube

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianliechti/threadsmith/pkg/tool"
)

type Fetcher interface {
	Fetch(ctx context.Context, video string) (*Transcript, error)
}

type transcriptArgs struct {
	VideoURL string `json:"videoUrl"`
}

func Tools(f Fetcher) []tool.Tool {
	return []tool.Tool{
		TranscriptTool(f),
	}
}

func TranscriptTool(f Fetcher) tool.Tool {
	return tool.Tool{
		Name:        "get_youtube_transcript",
		Description: "Fetch the transcript of a YouTube video. Accepts a full YouTube URL (watch, youtu.be, embed, shorts, live) or a bare 11-character video ID and returns the language, the number of caption segments and the full transcript text.",

		Schema: &tool.Schema{
			Type: "object",

			Properties: map[string]*tool.Schema{
				"videoUrl": {
					Type:        "string",
					Description: "YouTube video URL or 11-character video ID",
				},
			},

			Required: []string{"videoUrl"},
		},

		ToolHandler: tool.Typed(func(ctx context.Context, args transcriptArgs) (any, error) {
			id, err := VideoID(args.VideoURL)

			if err != nil {
				return nil, err
			}

			transcript, err := f.Fetch(ctx, args.VideoURL)

			if err != nil {
				return nil, err
			}

			return formatTranscript(id, transcript), nil
		}),
	}
}

func formatTranscript(id string, t *Transcript) string {
	var b strings.Builder

	b.WriteString("📺 YouTube Transcript\n\n")

	fmt.Fprintf(&b, "Video ID: %s\n", id)
	fmt.Fprintf(&b, "Language: %s\n", t.LanguageCode)
	fmt.Fprintf(&b, "Segments: %d\n\n", t.SegmentCount())

	b.WriteString(t.FullText)

	return b.String()
}
