package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"example.com/notes-app/internal/notes"
)

var (
	draftTitle    string
	draftContent  string
	draftCategory string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDraft(cmd.InOrStdin())
		if err != nil {
			return err
		}
		id, err := application.Store.AddNote(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a note's title, content and category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		current, ok := application.Store.Get(id)
		if !ok {
			return fmt.Errorf("%s: %w", id, notes.ErrNotFound)
		}
		d := current.Draft()
		if cmd.Flags().Changed("title") {
			d.Title = draftTitle
		}
		if cmd.Flags().Changed("category") {
			d.Category = draftCategory
		}
		if cmd.Flags().Changed("content") {
			d.Content = draftContent
			if draftContent == "-" {
				body, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				d.Content = string(body)
			}
		}
		return application.Store.UpdateNote(cmd.Context(), id, d)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := application.Store.DeleteNote(cmd.Context(), id); err != nil {
				return err
			}
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.md>...",
	Short: "Import Markdown files; front matter may set title and category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			d, err := parseMarkdownFile(path)
			if err != nil {
				return err
			}
			id, err := application.Store.AddNote(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
		}
		return nil
	},
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all notes as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return notes.Export(cmd.OutOrStdout(), application.Store.Notes(), exportFormat)
	},
}

func init() {
	rootCmd.AddCommand(addCmd, editCmd, rmCmd, importCmd, exportCmd)
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVarP(&draftTitle, "title", "t", "", "note title")
		c.Flags().StringVarP(&draftContent, "content", "m", "", `note content ("-" reads stdin)`)
		c.Flags().StringVarP(&draftCategory, "category", "c", "", "note category")
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", notes.FormatJSON, "json or yaml")
}

func readDraft(stdin io.Reader) (notes.Draft, error) {
	d := notes.Draft{Title: draftTitle, Content: draftContent, Category: draftCategory}
	if draftContent == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return notes.Draft{}, err
		}
		d.Content = string(body)
	}
	return d, nil
}

func parseMarkdownFile(path string) (notes.Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return notes.Draft{}, err
	}
	defer f.Close()
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return notes.ParseMarkdown(f, title)
}
