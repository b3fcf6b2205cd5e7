// Package main provides the entry point for the ccviewer MCP server.
// This server exposes Claude Code session logs via the Model Context Protocol,
// allowing agents to list and read session history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brads3290/ccviewer/internal/mcp"
	"github.com/brads3290/ccviewer/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	claudeDir := flag.String("claude-dir", "", "Path to Claude directory (default: ~/.claude)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ccviewer-mcp %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// stdout carries the protocol, so logs go to stderr.
	level := slog.LevelWarn
	if *debug || os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	dir := *claudeDir
	if dir == "" {
		dir = os.Getenv("CLAUDE_DIR")
	}

	server := mcp.NewServer(version, logger)
	mcp.RegisterAllTools(server, service.NewServices(dir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
