package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/notes-app/internal/config"
	"example.com/notes-app/internal/logging"
	"example.com/notes-app/internal/notes"
)

func TestOpen_LocalSeedsAndPersists(t *testing.T) {
	cfg := config.Defaults()
	cfg.LocalPath = filepath.Join(t.TempDir(), "data", "notes.db")
	ctx := context.Background()

	a, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	require.Equal(t, notes.ModeLocal, a.Store.Mode())
	require.False(t, a.Store.Loading())

	list := a.Store.Notes()
	require.Len(t, list, 1)
	require.Equal(t, "Welcome to Notes", list[0].Title)

	_, err = a.Store.AddNote(ctx, notes.Draft{Title: "second"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer reopened.Close()
	require.Len(t, reopened.Store.Notes(), 2)
	require.Equal(t, "second", reopened.Store.Notes()[0].Title)
}

func TestOpen_RemoteWithoutDatabaseDegrades(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend = config.BackendRemote
	cfg.DatabaseURL = ""

	a, err := Open(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.Equal(t, notes.ModeRemote, a.Store.Mode())
	require.Empty(t, a.Store.Notes())
	require.True(t, errors.Is(a.Store.LastError(), notes.ErrStorageUnavailable))

	_, err = a.Store.AddNote(context.Background(), notes.Draft{Title: "x"})
	require.ErrorIs(t, err, notes.ErrStorageUnavailable)
	require.Empty(t, a.Store.Notes())
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend = "carrier-pigeon"

	_, err := Open(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}

func TestClose_JoinsErrors(t *testing.T) {
	var order []int
	a := &App{closers: []func() error{
		func() error { order = append(order, 1); return errors.New("first") },
		func() error { order = append(order, 2); return nil },
		func() error { order = append(order, 3); return errors.New("third") },
	}}

	err := a.Close()
	require.Error(t, err)
	require.Contains(t, err.Error(), "first")
	require.Contains(t, err.Error(), "third")
	require.Equal(t, []int{3, 2, 1}, order)
	require.NoError(t, a.Close())
}
