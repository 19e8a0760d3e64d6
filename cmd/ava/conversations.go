package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/app"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/service"
	"github.com/five82/ava/internal/state"
)

func newConversationsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "List, create and delete conversations",
	}

	var force, all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List conversations, from the cache unless --force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Conversations.LoadList(force).Wait(ctx); err != nil {
					return fmt.Errorf("list conversations: %w", err)
				}
				if all {
					if err := loadRemaining(ctx, a.Conversations.Slot().Value, a.Conversations.LoadMore); err != nil {
						return fmt.Errorf("list conversations: %w", err)
					}
				}
				l := state.Get(a.Store, state.ConversationsPath)
				items, _ := l.Value()
				rows := make([][]string, len(items))
				for i, c := range items {
					rows[i] = []string{formatID(c.ID), c.Name, c.DateCreated.Local().Format(time.DateTime)}
				}
				printMore(cmd, l)
				return printTable(cmd, []string{"ID", "NAME", "CREATED"}, rows)
			})
		},
	}
	list.Flags().BoolVar(&force, "force", false, "fetch from the server even when cached")
	list.Flags().BoolVar(&all, "all", false, "fetch every page")

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Conversations.Create(strings.Join(args, " ")).Wait(ctx); err != nil {
					return fmt.Errorf("add conversation: %w", err)
				}
				items, _ := state.Get(a.Store, state.ConversationsPath).Value()
				if len(items) > 0 {
					c := items[len(items)-1]
					fmt.Fprintf(out(cmd), "created conversation %d: %s\n", c.ID, c.Name)
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation and its chats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Conversations.Delete(id).Wait(ctx); err != nil {
					return fmt.Errorf("delete conversation %d: %w", id, err)
				}
				fmt.Fprintf(out(cmd), "deleted conversation %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

// loadRemaining issues more until the list is no longer partially loaded.
func loadRemaining[T any](ctx context.Context, current func() loadable.Loadable[T], more func() *service.Request) error {
	for current().Kind() == loadable.KindPartialLoaded {
		if err := more().Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
