package commands

import (
	"flag"
	"fmt"

	"github.com/brads3290/ccviewer/internal/service"
)

// HTMLCmd implements the html command.
type HTMLCmd struct {
	SessionID   string
	FilePath    string
	Project     string
	OutputPath  string
	OpenBrowser bool
}

func (c *HTMLCmd) Name() string {
	return "html"
}

func (c *HTMLCmd) Description() string {
	return "Generate interactive HTML from session or file"
}

func (c *HTMLCmd) Setup(fs *flag.FlagSet) {
	fs.StringVar(&c.SessionID, "session", "", "Session UUID to generate HTML for")
	fs.StringVar(&c.FilePath, "file", "", "Direct path to a JSONL log file")
	fs.StringVar(&c.Project, "project", "", "Project name/path (only used with --session)")
	fs.StringVar(&c.OutputPath, "output", "", "Output HTML file path (creates temp file if not specified)")
	fs.BoolVar(&c.OpenBrowser, "open", false, "Open the generated HTML file in browser")
}

func (c *HTMLCmd) Run(ctx *Context, args []string) error {
	if len(args) > 0 && c.FilePath == "" && c.SessionID == "" {
		c.FilePath = args[0]
	}

	if c.SessionID == "" && c.FilePath == "" {
		return fmt.Errorf("either --session or --file (or a file path argument) is required\nUsage: ccviewer html [--session <id> | --file <path> | <path>] [flags]")
	}

	var result *service.HTMLGenerationResult
	var err error
	if c.FilePath != "" {
		result, err = ctx.Services.Session.GenerateHTMLFromFile(c.FilePath, c.OutputPath, c.OpenBrowser)
	} else {
		result, err = ctx.Services.Session.GenerateSessionHTML(c.SessionID, c.Project, c.OutputPath, c.OpenBrowser)
	}
	if err != nil {
		return err
	}

	out := NewOutputWriter(ctx.Output, ctx.Config.JSONOutput)
	if ctx.Config.JSONOutput {
		return out.WriteJSON(result)
	}

	out.PrintLine("HTML generated: %s", result.OutputPath)
	if result.OpenedBrowser {
		out.PrintLine("Opened in browser")
	}
	return nil
}
