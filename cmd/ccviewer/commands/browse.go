package commands

import (
	"flag"

	"github.com/brads3290/ccviewer/internal/tui"
)

// BrowseCmd starts the interactive terminal browser.
type BrowseCmd struct{}

func (c *BrowseCmd) Name() string {
	return "browse"
}

func (c *BrowseCmd) Description() string {
	return "Browse projects and sessions in an interactive terminal UI"
}

func (c *BrowseCmd) Setup(fs *flag.FlagSet) {}

func (c *BrowseCmd) Run(ctx *Context, args []string) error {
	return tui.Run(ctx.Services, tui.Options{
		Render:   ctx.RenderOptions(),
		Prefs:    ctx.Prefs,
		PageSize: ctx.Env.PageSize,
	})
}
