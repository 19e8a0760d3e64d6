package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/app"
)

var (
	errSignedOut       = errors.New("not signed in: run 'ava login' first")
	errVerboseTerminal = errors.New("--verbose applies to subcommands; the terminal interface logs to the log file (see 'ava logs')")
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
	refresh    int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "ava",
		Short: "Local-first client for conversations and journals",
		Long: `ava keeps conversations, chats and journal entries in a local cache and
syncs them with the remote service.

With no arguments, ava opens the terminal interface. The subcommands run a
single operation and print the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.verbose {
				return errVerboseTerminal
			}
			return app.Run(cmd.Context(), app.Options{
				ConfigPath:     flags.configPath,
				PrefsPath:      flags.prefsPath,
				RefreshSeconds: flags.refresh,
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/ava/config.toml)")
	root.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/ava/prefs.toml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr instead of the log file (subcommands only)")
	root.Flags().IntVar(&flags.refresh, "refresh", 0, "background refresh interval in seconds (overrides config)")

	root.AddCommand(
		newLoginCmd(flags),
		newRegisterCmd(flags),
		newConversationsCmd(flags),
		newChatsCmd(flags),
		newJournalsCmd(flags),
		newLogsCmd(flags),
	)
	return root
}

// withApp wires the client for one command. When signedIn is set the cached
// session must exist.
func withApp(cmd *cobra.Command, flags *globalFlags, signedIn bool, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	opts := app.Options{ConfigPath: flags.configPath}
	if flags.verbose {
		opts.LogWriter = cmd.ErrOrStderr()
	}
	a, err := app.New(ctx, opts)
	if err != nil {
		return err
	}

	runErr := func() error {
		if signedIn {
			ok, err := a.RestoreSession(ctx)
			if err != nil {
				return fmt.Errorf("restore session: %w", err)
			}
			if !ok {
				return errSignedOut
			}
		}
		return fn(ctx, a)
	}()
	return errors.Join(runErr, a.Close())
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
