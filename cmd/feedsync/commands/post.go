package commands

import (
	"fmt"
	"strings"

	"github.com/ncobase/feedsync/structs"
	"github.com/spf13/cobra"
)

func newPostCommand(s *state) *cobra.Command {
	var imageURL string

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := app.Social.CreatePost(cmd.Context(), structs.CreatePostBody{
				Content:  strings.Join(args, " "),
				ImageURL: imageURL,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&imageURL, "image", "", "image URL")
	return cmd
}

func newToggleCommand(s *state, use, short, field string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Social.TogglePost(cmd.Context(), args[0], field)
			if err != nil {
				return err
			}
			verb := "removed"
			if res.Added {
				verb = "added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d total)\n", use, verb, len(res.Post.Members(field)))
			return nil
		},
	}
}

func newCommentCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			c, err := app.Social.Comment(cmd.Context(), nil, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s commented %s\n", c.Name, ago(c.CreatedAt))
			return nil
		},
	}
}
