package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"example.com/notes-app/internal/notes"
	"example.com/notes-app/internal/stringsx"
)

var (
	listQuery    string
	listCategory string
	listWhere    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		match, err := notes.CompileWhere(listWhere)
		if err != nil {
			return err
		}
		proj := notes.Project(application.Store.Notes(), notes.Filter{
			Query:    listQuery,
			Category: listCategory,
		})
		printNotes(cmd.OutOrStdout(), notes.Where(proj.Notes, match))
		return lastError()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, c := range append([]string{notes.AllCategories}, application.Store.Categories()...) {
			fmt.Fprintln(out, c)
		}
		return lastError()
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, ok := application.Store.Get(args[0])
		if !ok {
			return fmt.Errorf("%s: %w", args[0], notes.ErrNotFound)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n%s · %s\n\n%s\n", n.Title, n.Category, formatTime(n.UpdatedAt), n.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, categoriesCmd, showCmd)
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "case-insensitive search over title and content")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", notes.AllCategories, "only notes in this category")
	listCmd.Flags().StringVar(&listWhere, "where", "", `expression filter, e.g. 'title contains "plan" && updatedAt > 0'`)
}

func printNotes(w io.Writer, items []notes.Note) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}
	for _, n := range items {
		preview := stringsx.Clip(stringsx.FirstLine(n.Content), 60)
		if preview == "" {
			preview = "No content yet."
		}
		title := stringsx.PadRight(stringsx.Clip(n.Title, 24), 25)
		fmt.Fprintf(w, "%s  %s  %s  %s\n  %s\n", n.ID, title, stringsx.PadRight(n.Category, 12), formatTime(n.UpdatedAt), preview)
	}
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// lastError surfaces a failed remote load so the command exits non-zero.
func lastError() error {
	return application.Store.LastError()
}
