package commands

import (
	"flag"
	"fmt"

	"github.com/brads3290/ccviewer/internal/textview"
)

// ShowCmd prints a conversation to the terminal.
type ShowCmd struct {
	Project string
	Expand  bool
	Color   bool
	NoColor bool
	Width   int
}

func (c *ShowCmd) Name() string {
	return "show"
}

func (c *ShowCmd) Description() string {
	return "Print a session's conversation as text"
}

func (c *ShowCmd) Setup(fs *flag.FlagSet) {
	fs.StringVar(&c.Project, "project", "", "Project name/path (optional if the session ID is unique)")
	fs.BoolVar(&c.Expand, "expand", false, "Show thinking, context and tool details")
	fs.BoolVar(&c.Color, "color", false, "Force colored output")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colored output")
	fs.IntVar(&c.Width, "width", 0, "Wrap width (default: terminal width)")
}

func (c *ShowCmd) Run(ctx *Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("session ID is required\nUsage: ccviewer show <session-id> [flags]")
	}

	project, err := ctx.Services.Session.FindSession(args[0], c.Project)
	if err != nil {
		return err
	}
	conv, err := ctx.Services.Session.GetConversation(project.ID, args[0], nil)
	if err != nil {
		return err
	}

	out := NewOutputWriter(ctx.Output, ctx.Config.JSONOutput)
	if ctx.Config.JSONOutput {
		return out.WriteJSON(conv)
	}

	out.PrintLine("%s", conv.Title)
	out.PrintLine("%s · %s messages · %s\n", project.Path, FormatNumber(conv.Session.Meta.MessageCount),
		FormatAgo(conv.Session.LastModifiedAt))

	return textview.Render(ctx.Output, conv.Items, textview.Options{
		Width:  textview.Width(ctx.Output, c.Width),
		Color:  textview.UseColor(ctx.Output, c.Color, c.NoColor),
		Expand: c.Expand,
	})
}
