package commands

import (
	"fmt"

	"github.com/ncobase/feedsync/structs"
	"github.com/spf13/cobra"
)

func newRegisterCommand(s *state) *cobra.Command {
	var body structs.RegisterBody

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if body.ConfirmPassword == "" {
				body.ConfirmPassword = body.Password
			}
			u, err := app.Social.Register(cmd.Context(), body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (@%s)\n", u.Name, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&body.Name, "name", "", "display name, at least 6 characters")
	cmd.Flags().StringVar(&body.Username, "username", "", "username")
	cmd.Flags().StringVar(&body.Email, "email", "", "email address")
	cmd.Flags().StringVar(&body.DOB, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&body.Password, "password", "", "password")
	cmd.Flags().StringVar(&body.ConfirmPassword, "confirm-password", "", "password confirmation, defaults to --password")
	return cmd
}

func newLoginCommand(s *state) *cobra.Command {
	var body structs.LoginBody

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			session, err := app.Social.Login(cmd.Context(), body)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&body.Email, "email", "", "email address")
	cmd.Flags().StringVar(&body.Password, "password", "", "password")
	return cmd
}

func newLogoutCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Social.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			u, err := app.Social.Me(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}
