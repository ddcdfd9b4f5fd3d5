package app

import (
	"log/slog"

	"github.com/adrianliechti/threadsmith/pkg/catalog"
	"github.com/adrianliechti/threadsmith/pkg/config"
	"github.com/adrianliechti/threadsmith/pkg/dispatcher"
	"github.com/adrianliechti/threadsmith/pkg/prompt"
	"github.com/adrianliechti/threadsmith/pkg/server"
	"github.com/adrianliechti/threadsmith/pkg/tool/tweets"
	"github.com/adrianliechti/threadsmith/pkg/tool/typefully"
	"github.com/adrianliechti/threadsmith/pkg/tool/youtube"
)

const (
	Name    = "threadsmith"
	Version = "1.0.0"
)

// New wires the tool collaborators from cfg into a ready MCP server. The
// catalog is fixed, so a registry error is a programming error and panics.
func New(cfg *config.Config, logger *slog.Logger) *server.Server {
	fetcher := youtube.New(youtube.Options{
		BaseURL:  cfg.YouTube.BaseURL,
		Language: cfg.YouTube.Language,

		Timeout:    cfg.YouTube.Timeout,
		MaxRetries: cfg.YouTube.MaxRetries,
	})

	generator := tweets.New(cfg.Tweets.MaxTranscriptChars)

	creator := typefully.New(typefully.Options{
		APIKey:  cfg.Typefully.APIKey,
		BaseURL: cfg.Typefully.BaseURL,

		Timeout: cfg.Typefully.Timeout,
	})

	if cfg.Typefully.APIKey == "" {
		logger.Warn("TYPEFULLY_API_KEY not set; create_typefully_draft will fail until configured")
	}

	registry, err := catalog.Registry(fetcher, generator, creator)

	if err != nil {
		panic("invalid tool catalog: " + err.Error())
	}

	d := dispatcher.New(registry, logger)

	return server.New(d, server.Options{
		Name:    Name,
		Version: Version,

		Instructions: prompt.ServerInstructions,
	})
}
