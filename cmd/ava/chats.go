package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/app"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/state"
)

func newChatsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Read and send chat messages",
	}

	var force bool
	list := &cobra.Command{
		Use:   "list <conversation-id>",
		Short: "Show the messages of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				if err := a.Chats.LoadChats(id, force).Wait(ctx); err != nil {
					return fmt.Errorf("list chats: %w", err)
				}
				return printChats(cmd, a, id)
			})
		},
	}
	list.Flags().BoolVar(&force, "force", false, "fetch from the server even when cached")

	send := &cobra.Command{
		Use:   "send <conversation-id> <message>",
		Short: "Send a message and print the reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			message := strings.Join(args[1:], " ")
			return withApp(cmd, flags, true, func(ctx context.Context, a *app.App) error {
				// Load first so the message is sequenced after the cached history.
				if err := a.Chats.LoadChats(id, false).Wait(ctx); err != nil {
					return fmt.Errorf("load chats: %w", err)
				}
				if err := a.Chats.Send(id, message).Wait(ctx); err != nil {
					return fmt.Errorf("send: %w", err)
				}
				return printChats(cmd, a, id)
			})
		},
	}

	cmd.AddCommand(list, send)
	return cmd
}

func printChats(cmd *cobra.Command, a *app.App, conversationID int64) error {
	chats, _ := state.Get(a.Store, state.ChatsFor(conversationID)).Value()
	rows := make([][]string, len(chats))
	for i, c := range chats {
		who := "ava"
		if c.IsUserMessage {
			who = "you"
		}
		status := ""
		switch c.SendState {
		case model.SendStateSending:
			status = "sending"
		case model.SendStateFailed:
			status = "not sent"
		}
		rows[i] = []string{strconv.Itoa(c.Sequence), who, c.Message, status}
	}
	return printTable(cmd, []string{"#", "FROM", "MESSAGE", "STATUS"}, rows)
}
