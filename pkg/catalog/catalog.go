package catalog

import (
	"slices"

	"github.com/adrianliechti/threadsmith/pkg/tool"
	"github.com/adrianliechti/threadsmith/pkg/tool/tweets"
	"github.com/adrianliechti/threadsmith/pkg/tool/typefully"
	"github.com/adrianliechti/threadsmith/pkg/tool/youtube"
)

// Tools returns the advertised tools in their fixed order.
func Tools(fetcher youtube.Fetcher, generator tweets.ContextGenerator, creator typefully.Creator) []tool.Tool {
	return slices.Concat(
		youtube.Tools(fetcher),
		tweets.Tools(generator),
		typefully.Tools(creator),
	)
}

func Registry(fetcher youtube.Fetcher, generator tweets.ContextGenerator, creator typefully.Creator) (*tool.Registry, error) {
	return tool.NewRegistry(Tools(fetcher, generator, creator)...)
}
