package notes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T) (*Store, *View) {
	t.Helper()
	repo := openTestLocal(t, filepath.Join(t.TempDir(), "notes.db"))
	s := loadedStore(t, repo, ModeLocal)
	v := NewView(s)
	t.Cleanup(v.Close)
	return s, v
}

func TestView_TracksStoreChanges(t *testing.T) {
	ctx := context.Background()
	s, v := newTestView(t)
	require.Len(t, v.Projection().Notes, 1)

	_, err := s.AddNote(ctx, Draft{Title: "Plan", Category: "Work"})
	require.NoError(t, err)
	require.Len(t, v.Projection().Notes, 2)
	require.Equal(t, []string{"All", "General", "Work"}, v.Projection().Categories)

	v.Close()
	_, err = s.AddNote(ctx, Draft{Title: "late"})
	require.NoError(t, err)
	require.Len(t, v.Projection().Notes, 2)
}

func TestView_SaveCreatesThenUpdatesSelection(t *testing.T) {
	ctx := context.Background()
	s, v := newTestView(t)

	v.StartCreate()
	require.True(t, v.EditorOpen())

	id, err := v.Save(ctx, Draft{Title: "First", Content: "x"})
	require.NoError(t, err)
	require.False(t, v.EditorOpen())

	selected, ok := v.Selected()
	require.True(t, ok)
	require.Equal(t, id, selected.ID)

	_, ok = v.Select(id)
	require.True(t, ok)
	sameID, err := v.Save(ctx, Draft{Title: "Renamed", Content: "y"})
	require.NoError(t, err)
	require.Equal(t, id, sameID)

	n, _ := s.Get(id)
	require.Equal(t, "Renamed", n.Title)
	require.Len(t, s.Notes(), 2)
}

func TestView_FilterChangeClearsHiddenSelection(t *testing.T) {
	ctx := context.Background()
	s, v := newTestView(t)
	id, err := s.AddNote(ctx, Draft{Title: "Plan", Category: "Work"})
	require.NoError(t, err)

	_, ok := v.Select(id)
	require.True(t, ok)

	v.SetCategory("Work")
	_, ok = v.Selected()
	require.True(t, ok)

	proj := v.SetQuery("welcome")
	require.Empty(t, proj.Notes)
	_, ok = v.Selected()
	require.False(t, ok)
	require.Empty(t, v.Filter().SelectedID)

	proj = v.SetCategory("")
	require.Equal(t, AllCategories, v.Filter().Category)
	require.Len(t, proj.Notes, 1)
}

func TestView_DeleteClosesEditorForSelected(t *testing.T) {
	ctx := context.Background()
	s, v := newTestView(t)
	welcome := s.Notes()[0]

	_, ok := v.Select(welcome.ID)
	require.True(t, ok)
	require.True(t, v.EditorOpen())

	require.NoError(t, v.Delete(ctx, welcome.ID))
	require.False(t, v.EditorOpen())
	_, ok = v.Selected()
	require.False(t, ok)
	require.True(t, v.ShowEmptyState())
}

func TestView_NoEmptyStateWhileLoading(t *testing.T) {
	s := NewStore(stubPersistence{}, WithMode(ModeRemote))
	v := NewView(s)
	defer v.Close()

	require.True(t, v.Loading())
	require.False(t, v.ShowEmptyState())

	require.NoError(t, s.Load(context.Background()))
	require.True(t, v.ShowEmptyState())

	v.StartCreate()
	require.False(t, v.ShowEmptyState())
	v.Cancel()
	require.True(t, v.ShowEmptyState())
}

func TestView_SelectUnknown(t *testing.T) {
	_, v := newTestView(t)
	_, ok := v.Select("missing")
	require.False(t, ok)
	require.False(t, v.EditorOpen())
}

func TestView_ClosedDuringSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	var v *View
	s := loadedStore(t, stubPersistence{
		createFn: func(_ context.Context, d Draft) (Note, error) {
			v.Close()
			return Note{ID: "late"}.apply(d, 10), nil
		},
	}, ModeRemote)
	v = NewView(s)
	t.Cleanup(v.Close)

	v.StartCreate()
	id, err := v.Save(ctx, Draft{Title: "late"})
	require.NoError(t, err)
	require.Equal(t, "late", id)

	require.True(t, v.EditorOpen())
	require.Equal(t, "", v.Filter().SelectedID)
	require.Empty(t, v.Projection().Notes)
	require.Len(t, s.Notes(), 1)
}
