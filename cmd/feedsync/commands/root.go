package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/structs"
	"github.com/spf13/cobra"
)

// state is shared by all subcommands of one invocation.
type state struct {
	configFile string
	app        *App
}

// App opens the client on first use.
func (s *state) App(ctx context.Context) (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	cfg, err := config.LoadConfig(s.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

func (s *state) close(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close(ctx)
	s.app = nil
	return err
}

// Root is the command tree of one invocation and the client it opens.
type Root struct {
	*cobra.Command
	s *state
}

// Execute runs the command and then closes the client, also when the
// command failed.
func (r *Root) Execute(ctx context.Context) error {
	err := r.ExecuteContext(ctx)
	if cerr := r.Close(context.WithoutCancel(ctx)); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Close releases the client opened by the command, if any.
func (r *Root) Close(ctx context.Context) error {
	return r.s.close(ctx)
}

// NewRoot creates the root command
func NewRoot() *Root {
	s := &state{}

	rootCmd := &cobra.Command{
		Use:           "feedsync",
		Short:         "A social feed client with paginated, live-updating feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&s.configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(
		newRegisterCommand(s),
		newLoginCommand(s),
		newLogoutCommand(s),
		newWhoamiCommand(s),
		newPostCommand(s),
		newFeedCommand(s),
		newToggleCommand(s, "like", "Like or unlike a post", structs.FieldLikedBy),
		newToggleCommand(s, "bookmark", "Bookmark or unbookmark a post", structs.FieldBookmarks),
		newCommentCommand(s),
		newFollowCommand(s, true),
		newFollowCommand(s, false),
		newUserCommand(s),
		newSearchCommand(s),
		newReindexCommand(s),
		newHistoryCommand(s),
		newNotificationsCommand(s),
		NewVersionCommand(),
	)

	return &Root{Command: rootCmd, s: s}
}
