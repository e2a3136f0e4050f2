package notes

import (
	"context"
	"sync"
)

// View is one session's transient UI state over a shared Store: search
// query, active category, selection and whether the editor is open. It keeps
// its projection current by subscribing to the store.
type View struct {
	store *Store

	mu         sync.Mutex
	filter     Filter
	editorOpen bool
	proj       Projection
	closed     bool

	unsubscribe func()
}

func NewView(store *Store) *View {
	v := &View{store: store, filter: Filter{Category: AllCategories}}
	v.Refresh()
	v.unsubscribe = store.Subscribe(func(e Event) {
		if e.Type != EventError {
			v.Refresh()
		}
	})
	return v
}

// Close detaches the view. Store events and results of calls still in
// flight no longer change it.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

// Refresh recomputes the projection and drops a selection it no longer shows.
func (v *View) Refresh() Projection {
	notes := v.store.Notes()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return v.proj
	}
	v.proj = Project(notes, v.filter)
	if v.proj.ClearSelection {
		v.filter.SelectedID = ""
		v.proj.ClearSelection = false
	}
	return v.proj
}

func (v *View) Projection() Projection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.proj
}

func (v *View) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View) SetQuery(q string) Projection {
	v.mu.Lock()
	v.filter.Query = q
	v.mu.Unlock()
	return v.Refresh()
}

func (v *View) SetCategory(c string) Projection {
	if c == "" {
		c = AllCategories
	}
	v.mu.Lock()
	v.filter.Category = c
	v.mu.Unlock()
	return v.Refresh()
}

// Select opens the editor on note id.
func (v *View) Select(id string) (Note, bool) {
	n, ok := v.store.Get(id)
	if !ok {
		return Note{}, false
	}
	v.mu.Lock()
	v.filter.SelectedID = id
	v.editorOpen = true
	v.mu.Unlock()
	return n, true
}

// Selected returns the selected note, if any.
func (v *View) Selected() (Note, bool) {
	v.mu.Lock()
	id := v.filter.SelectedID
	v.mu.Unlock()
	if id == "" {
		return Note{}, false
	}
	return v.store.Get(id)
}

// StartCreate clears the selection and opens an empty editor.
func (v *View) StartCreate() {
	v.mu.Lock()
	v.filter.SelectedID = ""
	v.editorOpen = true
	v.mu.Unlock()
}

func (v *View) Cancel() {
	v.mu.Lock()
	v.editorOpen = false
	v.mu.Unlock()
}

func (v *View) EditorOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editorOpen
}

// Save updates the selected note, or creates a new one and selects it. The
// editor closes on success.
func (v *View) Save(ctx context.Context, d Draft) (string, error) {
	if selected, ok := v.Selected(); ok {
		if err := v.store.UpdateNote(ctx, selected.ID, d); err != nil {
			return "", err
		}
		v.mu.Lock()
		if !v.closed {
			v.editorOpen = false
		}
		v.mu.Unlock()
		return selected.ID, nil
	}

	id, err := v.store.AddNote(ctx, d)
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return id, nil
	}
	v.filter.SelectedID = id
	v.editorOpen = false
	v.mu.Unlock()
	v.Refresh()
	return id, nil
}

// Delete removes note id and closes the editor when it was the selected one.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	selected := v.filter.SelectedID == id
	v.mu.Unlock()

	if err := v.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	v.mu.Lock()
	if selected && !v.closed {
		v.filter.SelectedID = ""
		v.editorOpen = false
	}
	v.mu.Unlock()
	return nil
}

func (v *View) Loading() bool {
	return v.store.Loading()
}

// ShowEmptyState reports whether the "no notes" placeholder should render.
// It stays false until the store has loaded.
func (v *View) ShowEmptyState() bool {
	if v.store.Loading() {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.editorOpen && len(v.proj.Notes) == 0
}
