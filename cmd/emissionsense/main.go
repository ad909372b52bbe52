package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/vjc2026/EmissionSense/internal/catalog"
	"github.com/vjc2026/EmissionSense/internal/config"
	"github.com/vjc2026/EmissionSense/internal/lifecycle"
	"github.com/vjc2026/EmissionSense/internal/models"
	"github.com/vjc2026/EmissionSense/internal/server"
	"github.com/vjc2026/EmissionSense/internal/storage/sqlite"
	"github.com/vjc2026/EmissionSense/internal/timer"
)

// CLI is the command-line surface: the HTTP server plus an in-process
// session tracker sharing the same database and lifecycle rules.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Config  string           `help:"Path to config file" type:"path"`

	Serve ServeCmd `cmd:"" help:"Run the HTTP server (default)" default:"1"`
	Track TrackCmd `cmd:"" help:"Track a work session from the terminal"`

	cfg    *config.Config `kong:"-"`
	logger *slog.Logger   `kong:"-"`
}

// AfterApply loads configuration and sets up logging before any command runs.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	c.cfg = cfg
	c.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	return nil
}

// openApp opens the store and builds the lifecycle manager over it.
func (c *CLI) openApp() (*sqlite.Store, *lifecycle.Manager, *catalog.Resolver, error) {
	store, err := sqlite.Open(c.cfg.DBPath, c.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	resolver := catalog.NewResolver(store)
	manager := lifecycle.NewManager(store, resolver, c.logger)
	return store, manager, resolver, nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `help:"HTTP listen address (overrides config)"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	store, manager, resolver, err := cli.openApp()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	addr := cli.cfg.Addr
	if s.Addr != "" {
		addr = s.Addr
	}

	srv := server.New(store, manager, resolver, cli.logger)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Engine(),
	}

	go func() {
		cli.logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cli.logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		cli.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	cli.logger.Info("server stopped")
	return nil
}

// TrackCmd tracks sessions directly against the database, without going
// through the HTTP API. The running session survives process restarts via a
// state file.
type TrackCmd struct {
	User uint `help:"Acting user id" required:""`

	Start  TrackStartCmd  `cmd:"" help:"Start timing a project"`
	Stop   TrackStopCmd   `cmd:"" help:"Stop the running session and record it"`
	Status TrackStatusCmd `cmd:"" help:"Show the running session, if any"`
}

func (t *TrackCmd) slot(cli *CLI) *timer.FileSlot {
	return timer.NewFileSlot(filepath.Join(cli.cfg.StateDir, "session.json"))
}

// TrackStartCmd starts a session for a project selection.
type TrackStartCmd struct {
	Name        string `arg:"" help:"Project name"`
	Description string `arg:"" help:"Project description"`
	Watch       bool   `help:"Stay attached and print elapsed time every second"`
}

func (c *TrackStartCmd) Run(cli *CLI, track *TrackCmd) error {
	store, manager, _, err := cli.openApp()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	tm := timer.New(track.slot(cli), timer.WithGuard(&sessionGuard{logger: cli.logger}))
	resumed, err := tm.ResumeOnLoad()
	if err != nil {
		return err
	}
	if resumed {
		state := tm.State()
		return fmt.Errorf("a session is already running for %q; stop it first", state.ProjectName)
	}

	seed, err := manager.StartSession(context.Background(), track.User, c.Name, c.Description)
	if err != nil {
		return err
	}

	if _, err := tm.Start(c.Name, c.Description, seed.BaseDurationSeconds); err != nil {
		return err
	}
	cli.logger.Info("session started",
		slog.String("project", c.Name),
		slog.Int64("base_seconds", seed.BaseDurationSeconds),
		slog.Bool("existing_record", seed.Found))

	if !c.Watch {
		return nil
	}
	for elapsed := range tm.Tick() {
		fmt.Printf("\r%s elapsed", time.Duration(elapsed)*time.Second)
	}
	return nil
}

// TrackStopCmd stops the running session and records its totals.
type TrackStopCmd struct {
	Stage string `help:"Stage to record the session under" default:"Design"`
}

func (c *TrackStopCmd) Run(cli *CLI, track *TrackCmd) error {
	store, manager, _, err := cli.openApp()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	stage, err := models.ParseStage(c.Stage)
	if err != nil {
		return err
	}

	tm := timer.New(track.slot(cli))
	resumed, err := tm.ResumeOnLoad()
	if err != nil {
		return err
	}
	if !resumed {
		return models.ErrNotRunning
	}

	state := tm.State()
	final, err := tm.Stop(tm.Handle())
	if err != nil {
		return err
	}

	rec, err := manager.StopSession(context.Background(), track.User,
		state.ProjectName, state.ProjectDescription, stage, final)
	if err != nil {
		return err
	}

	cli.logger.Info("session recorded",
		slog.String("project", rec.ProjectName),
		slog.Int64("duration_seconds", rec.DurationSeconds),
		slog.Float64("carbon_emit_kg", rec.CarbonEmitKg))
	return nil
}

// TrackStatusCmd prints the running session, if any.
type TrackStatusCmd struct{}

func (c *TrackStatusCmd) Run(cli *CLI, track *TrackCmd) error {
	tm := timer.New(track.slot(cli))
	resumed, err := tm.ResumeOnLoad()
	if err != nil {
		return err
	}
	if !resumed {
		fmt.Println("no session running")
		return nil
	}

	state := tm.State()
	fmt.Printf("tracking %q (%s), %s elapsed\n",
		state.ProjectName, state.ProjectDescription,
		time.Duration(tm.Elapsed())*time.Second)
	return nil
}

// sessionGuard warns on interrupt that the session keeps running; the anchor
// file survives, so a later stop still records the full duration.
type sessionGuard struct {
	logger *slog.Logger
	sigs   chan os.Signal
	done   chan struct{}
}

func (g *sessionGuard) Install() {
	g.sigs = make(chan os.Signal, 1)
	g.done = make(chan struct{})
	signal.Notify(g.sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-g.sigs:
			g.logger.Warn("session is still running; run \"emissionsense track stop\" to record it")
			os.Exit(0)
		case <-g.done:
		}
	}()
}

func (g *sessionGuard) Remove() {
	signal.Stop(g.sigs)
	close(g.done)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("emissionsense"),
		kong.Description("Session and emission tracking engine."),
		kong.Vars{"version": "1.0.0"},
	)
	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
