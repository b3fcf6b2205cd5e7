package commands

import (
	"flag"
	"fmt"

	"github.com/brads3290/ccviewer/internal/sessionlist"
)

// SessionsCmd implements the sessions command.
type SessionsCmd struct {
	Days   int
	Limit  int
	Cursor string
	All    bool
	Unify  bool
}

func (c *SessionsCmd) Name() string {
	return "sessions"
}

func (c *SessionsCmd) Description() string {
	return "List sessions for a project, newest first"
}

func (c *SessionsCmd) Setup(fs *flag.FlagSet) {
	fs.IntVar(&c.Days, "days", 0, "Only include sessions from the last N days")
	fs.IntVar(&c.Limit, "limit", 50, "Maximum sessions to return")
	fs.StringVar(&c.Cursor, "cursor", "", "Continue after this session ID")
	fs.BoolVar(&c.All, "all", false, "Include sessions without a user message")
	fs.BoolVar(&c.Unify, "unify", false, "Keep only the newest session of each title")
}

func (c *SessionsCmd) Run(ctx *Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("project name is required\nUsage: ccviewer sessions <project> [flags]")
	}

	project, err := ctx.Services.Project.FindProjectByName(args[0])
	if err != nil {
		return err
	}

	opts := ctx.ListOptions()
	opts.Days = c.Days
	opts.Limit = c.Limit
	opts.Cursor = c.Cursor
	if c.All {
		opts.HideNoUserMessage = false
	}
	if c.Unify {
		opts.UnifySameTitle = true
	}

	page, err := ctx.Services.Session.ListSessions(project.ID, opts)
	if err != nil {
		return err
	}

	out := NewOutputWriter(ctx.Output, ctx.Config.JSONOutput)

	if ctx.Config.JSONOutput {
		return out.WriteJSON(map[string]any{
			"project":     project.Name,
			"project_id":  project.ID,
			"sessions":    page.Sessions,
			"count":       len(page.Sessions),
			"total":       page.Total,
			"next_cursor": page.NextCursor,
		})
	}

	if len(page.Sessions) == 0 {
		out.PrintLine("No sessions found for project: %s", project.Name)
		return nil
	}

	out.PrintLine("Sessions for project: %s (%s total)\n", project.Path, FormatNumber(page.Total))

	headers := []string{"Session ID", "Modified", "Messages", "Cost", "Title"}
	var rows [][]string
	for _, s := range page.Sessions {
		rows = append(rows, []string{
			s.ID,
			FormatTime(s.LastModifiedAt),
			FormatNumber(s.Meta.MessageCount),
			sessionlist.FormatCost(s.Meta.Cost.TotalUSD),
			Truncate(sessionlist.Title(s), 50),
		})
	}
	out.WriteTable(headers, rows)

	if page.HasNextPage {
		out.PrintLine("\nMore sessions: ccviewer sessions %s --cursor %s", args[0], page.NextCursor)
	}

	return nil
}
