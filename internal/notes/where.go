package notes

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"example.com/notes-app/internal/stringsx"
)

// Predicate reports whether a note matches a compiled where-expression.
type Predicate func(Note) bool

// CompileWhere compiles a boolean expression over the note fields id, title,
// content, category and updatedAt, e.g. `category == "Work" && title contains "plan"`.
// An empty expression matches everything.
func CompileWhere(src string) (Predicate, error) {
	if stringsx.IsEmpty(src) {
		return func(Note) bool { return true }, nil
	}
	program, err := expr.Compile(src, expr.Env(whereEnv(Note{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile where %q: %w", src, err)
	}
	return func(n Note) bool { return matches(program, n) }, nil
}

func matches(program *vm.Program, n Note) bool {
	out, err := expr.Run(program, whereEnv(n))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func whereEnv(n Note) map[string]any {
	return map[string]any{
		"id":        n.ID,
		"title":     n.Title,
		"content":   n.Content,
		"category":  n.Category,
		"updatedAt": n.UpdatedAt,
	}
}

// Where returns the notes matching p, preserving order.
func Where(notes []Note, p Predicate) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if p(n) {
			out = append(out, n)
		}
	}
	return out
}
