package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/ava/internal/app"
	"github.com/five82/ava/internal/remote"
	"github.com/five82/ava/internal/state"
)

const passwordEnv = "AVA_PASSWORD"

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		Long: `Sign in with email and password. The password may also be given in the
AVA_PASSWORD environment variable. A session that is already cached is
reused without contacting the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			return withApp(cmd, flags, false, func(ctx context.Context, a *app.App) error {
				if err := a.Auth.Login(email, password).Wait(ctx); err != nil {
					return fmt.Errorf("login: %w", err)
				}
				return printUser(cmd, a)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	var reg remote.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password == "" {
				reg.Password = os.Getenv(passwordEnv)
			}
			return withApp(cmd, flags, false, func(ctx context.Context, a *app.App) error {
				if err := a.Auth.Register(reg).Wait(ctx); err != nil {
					return fmt.Errorf("register: %w", err)
				}
				return printUser(cmd, a)
			})
		},
	}
	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "account password (or "+passwordEnv+")")
	cmd.Flags().StringVar(&reg.Nickname, "nickname", "", "display name")
	cmd.Flags().StringVar(&reg.MobileNumber, "mobile", "", "mobile number")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func printUser(cmd *cobra.Command, a *app.App) error {
	u, ok := state.Get(a.Store, state.UserPath).Value()
	if !ok {
		return errSignedOut
	}
	_, err := fmt.Fprintf(out(cmd), "signed in as %s (id %d)\n", u.DisplayName(), u.ID)
	return err
}
