package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/app"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/state"
)

func newJournalsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "journals",
		Aliases: []string{"diary"},
		Short:   "List, write and delete journal entries",
	}

	var force, all bool
	var date string
	list := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, or those of one day with --date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				parsed, err := time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				day = parsed
			}
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				var l loadable.Loadable[[]model.Journal]
				if !day.IsZero() {
					if err := a.Journals.LoadByDate(day, force).Wait(ctx); err != nil {
						return fmt.Errorf("journals of %s: %w", date, err)
					}
					l = state.Get(a.Store, state.JournalsByDatePath)
				} else {
					if err := a.Journals.LoadList(force).Wait(ctx); err != nil {
						return fmt.Errorf("list journals: %w", err)
					}
					if all {
						if err := loadRemaining(ctx, a.Journals.Slot().Value, a.Journals.LoadMore); err != nil {
							return fmt.Errorf("list journals: %w", err)
						}
					}
					l = state.Get(a.Store, state.JournalsPath)
					printMore(cmd, l)
				}
				items, _ := l.Value()
				rows := make([][]string, len(items))
				for i, j := range items {
					rows[i] = []string{formatID(j.ID), j.DateCreated.Local().Format(time.DateTime), j.Name, j.Message}
				}
				return printTable(cmd, []string{"ID", "WRITTEN", "TITLE", "ENTRY"}, rows)
			})
		},
	}
	list.Flags().BoolVar(&force, "force", false, "fetch from the server even when cached")
	list.Flags().BoolVar(&all, "all", false, "fetch every page")
	list.Flags().StringVar(&date, "date", "", "only entries written on this day (YYYY-MM-DD)")

	var entry model.Journal
	add := &cobra.Command{
		Use:   "add",
		Short: "Write a journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Journals.Add(entry).Wait(ctx); err != nil {
					return fmt.Errorf("add journal: %w", err)
				}
				items, _ := state.Get(a.Store, state.JournalsPath).Value()
				if len(items) > 0 {
					j := items[len(items)-1]
					fmt.Fprintf(out(cmd), "created journal %d: %s\n", j.ID, j.Name)
				}
				return nil
			})
		},
	}
	add.Flags().StringVar(&entry.Name, "title", "", "entry title")
	add.Flags().StringVar(&entry.Message, "message", "", "entry text")
	add.Flags().IntVar(&entry.MoodID, "mood", 0, "mood id")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Journals.Delete(id).Wait(ctx); err != nil {
					return fmt.Errorf("delete journal %d: %w", id, err)
				}
				fmt.Fprintf(out(cmd), "deleted journal %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
