package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/config"
	"github.com/five82/ava/internal/logtail"
)

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var lines int
	var level, slot string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			var minLevel slog.Level
			if err := minLevel.UnmarshalText([]byte(level)); err != nil {
				return fmt.Errorf("invalid --level %q", level)
			}
			opts := logtail.Options{Lines: lines, MinLevel: minLevel}
			if slot != "" {
				opts.Match = "slot=" + slot
			}
			tail, err := logtail.Read(cfg.LogPath(), opts)
			if err != nil {
				return err
			}
			if len(tail) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log lines in %s\n", cfg.LogPath())
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tail, "\n"))
			return err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines (0 for all)")
	cmd.Flags().StringVar(&level, "level", "info", "minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&slot, "slot", "", "only lines for this slot, e.g. conversationData.conversations")
	return cmd
}
