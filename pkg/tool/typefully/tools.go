package typefully

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianliechti/threadsmith/pkg/tool"
)

type Creator interface {
	CreateDraft(ctx context.Context, content string, opts DraftOptions) (*Draft, error)
}

type draftArgs struct {
	Content string `json:"content"`

	Threadify    *bool  `json:"threadify"`
	ScheduleDate string `json:"scheduleDate"`
	Share        *bool  `json:"share"`
}

func Tools(c Creator) []tool.Tool {
	return []tool.Tool{
		DraftTool(c),
	}
}

func DraftTool(c Creator) tool.Tool {
	return tool.Tool{
		Name:        "create_typefully_draft",
		Description: "Create a draft in Typefully. Separate thread tweets with four consecutive newlines, or set threadify to let Typefully split long text automatically. Optionally schedule the draft and return a share link.",

		Schema: &tool.Schema{
			Type: "object",

			Properties: map[string]*tool.Schema{
				"content": {
					Type:        "string",
					Description: "Text of the draft",
				},

				"threadify": {
					Type:        "boolean",
					Description: "Split the content into a thread automatically",
				},

				"scheduleDate": {
					Type:        "string",
					Description: `"next-free-slot" or an ISO-8601 timestamp`,
				},

				"share": {
					Type:        "boolean",
					Description: "Return a public share URL for the draft",
				},
			},

			Required: []string{"content"},
		},

		ToolHandler: tool.Typed(func(ctx context.Context, args draftArgs) (any, error) {
			draft, err := c.CreateDraft(ctx, args.Content, DraftOptions{
				Threadify:    args.Threadify,
				ScheduleDate: args.ScheduleDate,
				Share:        args.Share,
			})

			if err != nil {
				return nil, err
			}

			return formatDraft(draft, args.ScheduleDate), nil
		}),
	}
}

func formatDraft(d *Draft, schedule string) string {
	var b strings.Builder

	b.WriteString("✅ Typefully draft created successfully!\n\n")

	if d.ID != "" {
		fmt.Fprintf(&b, "Draft ID: %s\n", d.ID)
	}

	fmt.Fprintf(&b, "Status: %s\n", d.Status)

	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created: %s\n", d.CreatedAt.Format("2006-01-02 15:04 MST"))
	}

	if schedule = strings.TrimSpace(schedule); schedule != "" {
		fmt.Fprintf(&b, "Scheduled: %s\n", schedule)
	}

	if d.ShareURL != "" {
		fmt.Fprintf(&b, "Share URL: %s\n", d.ShareURL)
	}

	return strings.TrimRight(b.String(), "\n")
}
