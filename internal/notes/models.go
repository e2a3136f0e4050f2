package notes

import "example.com/notes-app/internal/stringsx"

const (
	DefaultTitle    = "Untitled"
	DefaultCategory = "General"

	// AllCategories is the pseudo-category that disables category filtering.
	AllCategories = "All"
)

type Note struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	Category  string `json:"category" yaml:"category"`
	UpdatedAt int64  `json:"updatedAt" yaml:"updatedAt"`
}

// Draft is the set of user-editable fields submitted on create or update.
type Draft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Normalize trims title and category and substitutes their defaults when blank.
func (d Draft) Normalize() Draft {
	return Draft{
		Title:    stringsx.OrDefault(d.Title, DefaultTitle),
		Content:  d.Content,
		Category: stringsx.OrDefault(d.Category, DefaultCategory),
	}
}

// apply returns n with the draft fields and timestamp replaced.
func (n Note) apply(d Draft, updatedAt int64) Note {
	n.Title = d.Title
	n.Content = d.Content
	n.Category = d.Category
	n.UpdatedAt = updatedAt
	return n
}

// withDefaults fills fields a backend may hand back blank.
func (n Note) withDefaults() Note {
	n.Title = stringsx.OrDefault(n.Title, DefaultTitle)
	n.Category = stringsx.OrDefault(n.Category, DefaultCategory)
	return n
}

func (n Note) Draft() Draft {
	return Draft{Title: n.Title, Content: n.Content, Category: n.Category}
}

var welcomeDraft = Draft{
	Title:    "Welcome to Notes",
	Content:  "Create, search, and manage your notes.\nAdd a note to get started.",
	Category: DefaultCategory,
}
