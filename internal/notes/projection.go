package notes

import (
	"sort"

	"example.com/notes-app/internal/stringsx"
)

// Filter is the transient UI state a projection is derived from.
type Filter struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	SelectedID string `json:"selectedId,omitempty"`
}

type Projection struct {
	Notes      []Note   `json:"notes"`
	Categories []string `json:"categories"`
	// ClearSelection is set when SelectedID is not among Notes.
	ClearSelection bool `json:"clearSelection"`
}

// Project filters notes by category and search query and sorts them by
// updatedAt, newest first. It does not modify notes.
func Project(notes []Note, f Filter) Projection {
	query := stringsx.Normalize(f.Query)
	all := f.Category == "" || f.Category == AllCategories

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if !all && n.Category != f.Category {
			continue
		}
		if query != "" && !stringsx.ContainsFold(n.Title, query) && !stringsx.ContainsFold(n.Content, query) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})

	stale := false
	if f.SelectedID != "" {
		stale = true
		for _, n := range out {
			if n.ID == f.SelectedID {
				stale = false
				break
			}
		}
	}

	return Projection{
		Notes:          out,
		Categories:     append([]string{AllCategories}, Categories(notes)...),
		ClearSelection: stale,
	}
}

// Categories returns the sorted distinct categories of notes, without "All".
func Categories(notes []Note) []string {
	set := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		set[stringsx.OrDefault(n.Category, DefaultCategory)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
