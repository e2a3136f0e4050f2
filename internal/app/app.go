// Package app wires configuration, persistence and the note store together.
// Both binaries start through it so the startup order is the same everywhere.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"example.com/notes-app/internal/config"
	"example.com/notes-app/internal/db"
	"example.com/notes-app/internal/notes"
)

// App owns the store and the resources behind it.
type App struct {
	Store  *notes.Store
	Logger *slog.Logger

	closers []func() error
}

// Open selects the backend from cfg, builds the store and performs the initial
// load. An unreachable or unconfigured backend degrades to notes.Unavailable
// instead of failing.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Logger: logger}

	var (
		p    notes.Persistence
		mode notes.Mode
	)
	switch {
	case cfg.Local():
		mode = notes.ModeLocal
		local, err := notes.OpenLocal(cfg.LocalPath, nil)
		if err != nil {
			logger.Warn("local store unavailable, notes will not persist", "path", cfg.LocalPath, "error", err)
			p = notes.Unavailable{Reason: err.Error()}
		} else {
			a.closers = append(a.closers, local.Close)
			p = local
		}
	case cfg.Remote():
		mode = notes.ModeRemote
		p = a.openRemote(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	a.Store = notes.NewStore(p, notes.WithMode(mode), notes.WithLogger(logger))
	if err := a.Store.Load(ctx); err != nil {
		logger.Error("initial load failed", "error", err)
	}
	return a, nil
}

func (a *App) openRemote(ctx context.Context, cfg config.Config) notes.Persistence {
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		if errors.Is(err, db.ErrNotConfigured) {
			a.Logger.Warn("DATABASE_URL is not set, remote operations will fail")
		} else {
			a.Logger.Error("database unavailable", "error", err)
		}
		return notes.Unavailable{Reason: err.Error()}
	}
	a.closers = append(a.closers, conn.Close)

	repo, err := notes.NewRepository(ctx, conn.SQL)
	if err != nil {
		a.Logger.Error("prepare notes repository", "error", err)
		return notes.Unavailable{Reason: err.Error()}
	}
	a.closers = append(a.closers, repo.Close)
	return repo
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve runs the HTTP API on addr until ctx is cancelled, then shuts down.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           notes.NewHandlers(a.Store).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("notes API listening", "addr", addr, "mode", a.Store.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
