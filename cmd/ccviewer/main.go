package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/brads3290/ccviewer/cmd/ccviewer/commands"
	"github.com/brads3290/ccviewer/internal/constants"
)

var (
	// Version can be set by ldflags during build
	Version = constants.DefaultVersion
	// BuildTime can be set by ldflags during build
	BuildTime = ""
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			commands.DefaultRegistry.PrintHelp(os.Stdout)
			os.Exit(0)
		case "--version", "-v", "version":
			fmt.Println(versionLine())
			os.Exit(0)
		}
	}

	if len(os.Args) < 2 {
		commands.DefaultRegistry.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	var err error
	if isLegacyFlag(os.Args[1]) {
		err = runLegacyMode(os.Args[1:])
	} else {
		err = runSubcommandMode(os.Args[1], os.Args[2:])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isLegacyFlag checks if the argument is a legacy mode flag.
func isLegacyFlag(arg string) bool {
	legacyFlags := []string{"-input", "-output", "-open", "-debug"}
	for _, f := range legacyFlags {
		if arg == f || strings.HasPrefix(arg, f+"=") {
			return true
		}
	}
	return false
}

// runSubcommandMode handles the subcommand-based CLI.
func runSubcommandMode(cmdName string, args []string) error {
	cmd, ok := commands.DefaultRegistry.Get(cmdName)
	if !ok {
		return fmt.Errorf("unknown command: %s\nRun 'ccviewer --help' for usage", cmdName)
	}

	fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)

	config := commands.Config{Version: version()}
	fs.StringVar(&config.ClaudeDir, "claude-dir", "", "Path to Claude directory (default: $CLAUDE_DIR or ~/.claude)")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output in JSON format")
	fs.BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&config.Locale, "locale", "", "Date locale: en, ja, zh_CN")

	cmd.Setup(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "ccviewer %s - %s\n\n", cmd.Name(), cmd.Description())
		fmt.Fprintf(os.Stderr, "Usage: ccviewer %s [flags] [arguments]\n\n", cmd.Name())
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, err := commands.NewContext(&config)
	if err != nil {
		return err
	}
	return cmd.Run(ctx, fs.Args())
}

// runLegacyMode handles the original -input/-output flag-based CLI by
// forwarding to the html command.
func runLegacyMode(args []string) error {
	fs := flag.NewFlagSet("ccviewer", flag.ContinueOnError)
	var inputFile, outputFile string
	var openBrowser bool
	config := commands.Config{Version: version()}
	fs.StringVar(&inputFile, "input", "", "Input JSONL file path")
	fs.StringVar(&outputFile, "output", "", "Output HTML file path (optional)")
	fs.BoolVar(&openBrowser, "open", false, "Open the generated HTML file in browser")
	fs.BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if inputFile == "" {
		fmt.Fprintln(os.Stderr, "Please provide an input file using -input flag")
		fmt.Fprintln(os.Stderr, "\nUsage:")
		fmt.Fprintln(os.Stderr, "  Legacy mode:     ccviewer -input <file.jsonl> [flags]")
		fmt.Fprintln(os.Stderr, "  Subcommand mode: ccviewer <command> [flags] [arguments]")
		return errors.New("missing -input")
	}

	ctx, err := commands.NewContext(&config)
	if err != nil {
		return err
	}
	html := &commands.HTMLCmd{FilePath: inputFile, OutputPath: outputFile, OpenBrowser: openBrowser}
	return html.Run(ctx, nil)
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version == constants.DevelopmentVersionString {
			return constants.DevVersionString
		}
		return info.Main.Version
	}
	return constants.UnknownVersionString
}

func versionLine() string {
	line := "ccviewer version " + version()
	if BuildTime != "" {
		line += " (built " + BuildTime + ")"
	}
	return line
}
