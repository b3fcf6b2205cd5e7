// Package commands provides the CLI command infrastructure for ccviewer.
package commands

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/brads3290/ccviewer/internal/config"
	"github.com/brads3290/ccviewer/internal/conversation"
	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/userconfig"
)

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name (e.g., "projects", "sessions").
	Name() string
	// Description returns a short description for help text.
	Description() string
	// Setup configures command-specific flags.
	Setup(fs *flag.FlagSet)
	// Run executes the command with the given context and arguments.
	Run(ctx *Context, args []string) error
}

// Config holds global CLI configuration.
type Config struct {
	// ClaudeDir overrides CLAUDE_DIR when set.
	ClaudeDir string
	// JSONOutput indicates whether to output in JSON format.
	JSONOutput bool
	// Debug enables debug logging.
	Debug bool
	// Locale overrides the stored date locale when set.
	Locale string
	// Version is reported by serve's health endpoint.
	Version string
}

// Context provides the execution context for commands.
type Context struct {
	// Config contains global configuration.
	Config *Config
	// Env is the environment configuration shared with the server.
	Env *config.Config
	// UserConfig persists viewer preferences.
	UserConfig *userconfig.Store
	// Prefs are the preferences loaded at startup.
	Prefs userconfig.Config
	// Services provides access to all services.
	Services *service.Services
	Logger   *slog.Logger
	// Output is the writer for command output (default: os.Stdout).
	Output io.Writer
	// ErrOutput is the writer for error output (default: os.Stderr).
	ErrOutput io.Writer
}

// NewContext loads the environment and user preferences and builds the
// services for one command run.
func NewContext(cfg *Config) (*Context, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.ClaudeDir != "" {
		env.ClaudeDir = cfg.ClaudeDir
	}

	store := userconfig.NewStore(env.ConfigPath)
	prefs, err := store.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Locale != "" {
		prefs.Locale = datefmt.Locale(cfg.Locale)
	}

	level := slog.LevelInfo
	if cfg.Debug || strings.EqualFold(env.LogLevel, "debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := &Context{
		Config:     cfg,
		Env:        env,
		UserConfig: store,
		Prefs:      prefs,
		Logger:     logger,
		Output:     os.Stdout,
		ErrOutput:  os.Stderr,
	}
	ctx.Services = service.NewServicesWithOptions(env.ClaudeDir, service.Options{Render: ctx.RenderOptions()})
	return ctx, nil
}

// RenderOptions returns the conversation options for the loaded preferences.
func (c *Context) RenderOptions() conversation.Options {
	return conversation.Options{Locale: c.Prefs.Locale, Location: c.Env.Location}
}

// ListOptions returns the session list filters from the loaded preferences.
func (c *Context) ListOptions() service.ListOptions {
	return service.ListOptions{
		HideNoUserMessage: c.Prefs.HideNoUserMessageSession,
		UnifySameTitle:    c.Prefs.UnifySameTitleSession,
	}
}

// Registry holds all registered commands.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd Command) {
	name := cmd.Name()
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns all registered commands in registration order.
func (r *Registry) Commands() []Command {
	result := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.commands[name])
	}
	return result
}

// PrintHelp prints the help text for all commands.
func (r *Registry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "ccviewer - Claude Code Viewer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    ccviewer <command> [flags] [arguments]")
	fmt.Fprintln(w, "    ccviewer -input <file.jsonl> [flags]    (legacy mode)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMMANDS:")
	for _, cmd := range r.Commands() {
		fmt.Fprintf(w, "    %-14s %s\n", cmd.Name(), cmd.Description())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "GLOBAL FLAGS:")
	fmt.Fprintln(w, "    --json         Output results in JSON format (default: human-readable)")
	fmt.Fprintln(w, "    --claude-dir   Path to Claude directory (default: $CLAUDE_DIR or ~/.claude)")
	fmt.Fprintln(w, "    --locale       Date locale: en, ja, zh_CN (default: from user config)")
	fmt.Fprintln(w, "    --debug        Enable debug logging")
	fmt.Fprintln(w, "    --help, -h     Show help for command")
	fmt.Fprintln(w, "    --version, -v  Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    # List all projects")
	fmt.Fprintln(w, "    ccviewer projects")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    # List recent sessions for a project")
	fmt.Fprintln(w, "    ccviewer sessions my-project --days 7 --limit 10")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    # Print a conversation with tool details")
	fmt.Fprintln(w, "    ccviewer show abc123-def456 --expand")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    # Start the web viewer")
	fmt.Fprintln(w, "    ccviewer serve --port 3400")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    # Generate HTML from session")
	fmt.Fprintln(w, "    ccviewer html --session abc123-def456 --open")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    # Switch the session list to list mode")
	fmt.Fprintln(w, "    ccviewer config session_view_mode list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use \"ccviewer <command> --help\" for detailed help on any command.")
}

// DefaultRegistry is the global command registry with all commands pre-registered.
var DefaultRegistry = NewRegistry()

// RegisterAll registers all CLI commands with the given registry.
func RegisterAll(r *Registry) {
	r.Register(&ProjectsCmd{})
	r.Register(&SessionsCmd{})
	r.Register(&ShowCmd{})
	r.Register(&BrowseCmd{})
	r.Register(&ServeCmd{})
	r.Register(&HTMLCmd{})
	r.Register(&ConfigCmd{})
}

func init() {
	RegisterAll(DefaultRegistry)
}
