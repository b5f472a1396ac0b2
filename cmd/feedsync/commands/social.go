package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newFollowCommand(s *state, follow bool) *cobra.Command {
	use, short := "follow", "Follow a user"
	if !follow {
		use, short = "unfollow", "Stop following a user"
	}
	return &cobra.Command{
		Use:   use + " <uid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if follow {
				err = app.Social.Follow(cmd.Context(), args[0])
			} else {
				err = app.Social.Unfollow(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			card, err := app.Social.UserCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCard(cmd.OutOrStdout(), card)
			return nil
		},
	}
}

func newUserCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "user <uid>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			card, err := app.Social.UserCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCard(cmd.OutOrStdout(), card)
			return nil
		},
	}
}

func newSearchCommand(s *state) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find users by username or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Social.SearchUsers(cmd.Context(), strings.Join(args, " "), all)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Users) == 0 {
				fmt.Fprintln(out, "No users found")
				return nil
			}
			for _, u := range res.Users {
				fmt.Fprintf(out, "%s  %s (@%s)\n", u.UID, u.Name, u.Username)
			}
			if res.More {
				fmt.Fprintln(out, "... more results, use --all to view all")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "show all matches")
	return cmd
}

func newHistoryCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the user search history",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recent search terms",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd.Context())
				if err != nil {
					return err
				}
				terms, err := app.Social.History().List(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range terms {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <term>",
			Short: "Remove a search term",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd.Context())
				if err != nil {
					return err
				}
				_, err = app.Social.History().Remove(cmd.Context(), strings.Join(args, " "))
				return err
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the search history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := s.App(cmd.Context())
				if err != nil {
					return err
				}
				return app.Social.History().Clear(cmd.Context())
			},
		},
	)
	return cmd
}

func newReindexCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the user search index from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			n, err := app.Social.ReindexUsers(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d users\n", n)
			return nil
		},
	}
}

func newNotificationsCommand(s *state) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Recent posts by users you follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app, err := s.App(ctx)
			if err != nil {
				return err
			}
			sub, cancelSub := context.WithCancel(ctx)
			defer cancelSub()
			ch, err := app.Social.Notifications(sub)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ch == nil {
				fmt.Fprintln(out, "You are not following anyone")
				return nil
			}
			if watch {
				watchConfig(ctx, nil)
			}
			for notes := range ch {
				printNotifications(out, notes)
				if !watch {
					return nil
				}
				fmt.Fprintln(out, "--")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing updates until interrupted")
	return cmd
}
