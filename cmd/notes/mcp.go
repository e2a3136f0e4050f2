package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"example.com/notes-app/internal/notes"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the notes as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		view := notes.NewView(application.Store)
		defer view.Close()
		return server.ServeStdio(newMCPServer(view))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// notesMCP exposes one editing session (a View) as MCP tools.
type notesMCP struct {
	view *notes.View
}

func newMCPServer(view *notes.View) *server.MCPServer {
	m := &notesMCP{view: view}
	s := server.NewMCPServer(
		"notes",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes newest first. Search and category persist for the session until changed."),
		mcp.WithString("query", mcp.Description("Case-insensitive search over title and content. Empty clears the search.")),
		mcp.WithString("category", mcp.Description(`Category to show, or "All".`)),
	), m.listHandler)

	s.AddTool(mcp.NewTool("open_note",
		mcp.WithDescription("Select a note for editing and return it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id.")),
	), m.openHandler)

	s.AddTool(mcp.NewTool("new_note",
		mcp.WithDescription("Clear the selection so the next save_note creates a note."),
	), m.newHandler)

	s.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Save the selected note, or create one when nothing is selected."),
		mcp.WithString("title", mcp.Description(`Title; blank becomes "Untitled".`)),
		mcp.WithString("content", mcp.Description("Note body.")),
		mcp.WithString("category", mcp.Description(`Category; blank becomes "General".`)),
	), m.saveHandler)

	s.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id.")),
	), m.deleteHandler)

	s.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the categories in use, starting with All."),
	), m.categoriesHandler)

	return s
}

func (m *notesMCP) listHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m.view.SetQuery(req.GetString("query", ""))
	proj := m.view.SetCategory(req.GetString("category", m.view.Filter().Category))

	if len(proj.Notes) == 0 {
		if m.view.Loading() {
			return mcp.NewToolResultText("Notes are still loading."), nil
		}
		return mcp.NewToolResultText("No notes match."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# notes (results: %d)\n", len(proj.Notes))
	for _, n := range proj.Notes {
		fmt.Fprintf(&b, "- `%s` %s [%s] %s\n", n.ID, n.Title, n.Category, formatTime(n.UpdatedAt))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (m *notesMCP) openHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, ok := m.view.Select(req.GetString("id", ""))
	if !ok {
		return mcp.NewToolResultError(notes.ErrNotFound.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s\ncategory: %s\n\n%s", n.Title, n.Category, n.Content)), nil
}

func (m *notesMCP) newHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m.view.StartCreate()
	return mcp.NewToolResultText("Ready for a new note."), nil
}

func (m *notesMCP) saveHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := m.view.Save(ctx, notes.Draft{
		Title:    req.GetString("title", ""),
		Content:  req.GetString("content", ""),
		Category: req.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Saved note " + id), nil
}

func (m *notesMCP) deleteHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := m.view.Delete(ctx, req.GetString("id", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Note has been deleted."), nil
}

func (m *notesMCP) categoriesHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(m.view.Projection().Categories, "\n")), nil
}
