package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/loadable"
)

// printTable writes rows under headers as a bordered table.
func printTable(cmd *cobra.Command, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out(cmd), "(none)")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(out(cmd), t.String())
	return err
}

// printMore notes that a paged list has further pages.
func printMore[T any](cmd *cobra.Command, l loadable.Loadable[T]) {
	if l.Kind() == loadable.KindPartialLoaded {
		fmt.Fprintln(cmd.ErrOrStderr(), "more available; use --all to fetch every page")
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
