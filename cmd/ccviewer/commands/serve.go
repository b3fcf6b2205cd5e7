package commands

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brads3290/ccviewer/internal/api"
	"github.com/brads3290/ccviewer/internal/browser"
	"github.com/brads3290/ccviewer/internal/process"
	"github.com/brads3290/ccviewer/internal/service"
	"github.com/brads3290/ccviewer/internal/store"
)

// ServeCmd runs the web viewer.
type ServeCmd struct {
	Port    int
	Host    string
	NoCache bool
	Open    bool
}

func (c *ServeCmd) Name() string {
	return "serve"
}

func (c *ServeCmd) Description() string {
	return "Start the web viewer"
}

func (c *ServeCmd) Setup(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", 0, "Listen port (default: $CCVIEWER_PORT or 3400)")
	fs.StringVar(&c.Host, "host", "", "Listen host (default: $CCVIEWER_HOST or 127.0.0.1)")
	fs.BoolVar(&c.NoCache, "no-cache", false, "Disable the session metadata cache")
	fs.BoolVar(&c.Open, "open", false, "Open the viewer in the browser")
}

func (c *ServeCmd) Run(ctx *Context, args []string) error {
	cfg := ctx.Env
	if c.Port > 0 {
		cfg.Port = c.Port
	}
	if c.Host != "" {
		cfg.Host = c.Host
	}

	logLevel := slog.LevelInfo
	if ctx.Config.Debug || strings.EqualFold(cfg.LogLevel, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(ctx.Output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	var cache *store.SessionMetaStore
	if cfg.DBPath != "" && !c.NoCache {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		cache = store.NewSessionMetaStore(db)
	}

	services := service.NewServicesWithOptions(cfg.ClaudeDir, service.Options{
		Cache:  cache,
		Render: ctx.RenderOptions(),
	})

	router := api.NewRouter(api.Deps{
		Services:   services,
		Tracker:    process.NewTracker(),
		UserConfig: ctx.UserConfig,
		Cache:      cache,
		PageSize:   cfg.PageSize,
		Location:   cfg.Location,
		Version:    ctx.Config.Version,
	}, logger)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errc := make(chan error, 1)
	go func() {
		logger.Info("viewer starting", "addr", addr, "claude_dir", cfg.ClaudeDir, "cache", cache != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if c.Open {
		if err := browser.OpenInBrowser("http://" + addr + "/"); err != nil {
			logger.Warn("could not open browser", "error", err)
		}
	}

	select {
	case err := <-errc:
		return err
	case <-done:
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
