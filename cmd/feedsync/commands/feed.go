package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
	"github.com/spf13/cobra"
)

type feedFlags struct {
	pages       int
	interactive bool
	after       string
}

func newFeedCommand(s *state) *cobra.Command {
	flags := &feedFlags{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Page through a feed",
	}
	cmd.PersistentFlags().IntVarP(&flags.pages, "pages", "p", 1, "number of pages to load")
	cmd.PersistentFlags().BoolVarP(&flags.interactive, "interactive", "i", false, "keep loading on enter and accept like/bookmark/comment input")
	cmd.PersistentFlags().StringVar(&flags.after, "after", "", "continue after the token printed by an earlier run")

	// own scopes resolve to the signed-in user.
	fixed := func(use, short string, scope feed.Scope, own bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFeed(cmd, s, flags, func(app *App) (*feed.View, error) {
					if own {
						if _, err := app.Session.Require(); err != nil {
							return nil, err
						}
					}
					return app.Social.NewView(scope), nil
				})
			},
		}
	}

	cmd.AddCommand(
		fixed("home", "All posts, newest first", feed.All(), false),
		fixed("mine", "Your posts", feed.ByAuthor(""), true),
		fixed("liked", "Posts you liked", feed.LikedBy(""), true),
		fixed("bookmarks", "Posts you bookmarked", feed.BookmarkedBy(""), true),
		&cobra.Command{
			Use:   "user <uid>",
			Short: "Posts by a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFeed(cmd, s, flags, func(app *App) (*feed.View, error) {
					return app.Social.NewView(feed.ByAuthor(args[0])), nil
				})
			},
		},
		&cobra.Command{
			Use:   "following",
			Short: "Posts by users you follow",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFeed(cmd, s, flags, func(app *App) (*feed.View, error) {
					return app.Social.Following(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "search <term>",
			Short: "Posts whose content contains a term",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFeed(cmd, s, flags, func(app *App) (*feed.View, error) {
					return app.Social.NewView(feed.ContentMatch(strings.Join(args, " "))), nil
				})
			},
		},
	)
	return cmd
}

func runFeed(cmd *cobra.Command, s *state, flags *feedFlags, open func(*App) (*feed.View, error)) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	after, err := paging.DecodeCursor(flags.after)
	if err != nil {
		return fmt.Errorf("--after: %w", err)
	}
	app, err := s.App(ctx)
	if err != nil {
		return err
	}
	v, err := open(app)
	if err != nil {
		return err
	}
	v.Seek(after)
	go v.Run(ctx)

	out := cmd.OutOrStdout()
	shown := 0
	for i := 0; i < max(flags.pages, 1); i++ {
		if shown, err = loadPage(ctx, out, v, app.Session.UID(), shown); err != nil {
			return err
		}
		if v.Exhausted() {
			break
		}
	}
	if !flags.interactive {
		if c := v.Cursor(); c != nil && !v.Exhausted() {
			fmt.Fprintf(out, "next: --after %s\n", c.Encode())
		}
		return nil
	}
	watchConfig(ctx, func(f *config.Feed) { v.SetPageSize(f.PageSize) })
	return interact(ctx, cmd.InOrStdin(), out, app, v, shown)
}

// loadPage requests the next page and prints the items after shown.
func loadPage(ctx context.Context, out io.Writer, v *feed.View, viewer string, shown int) (int, error) {
	res, err := v.LoadMore(ctx)
	if err != nil {
		return shown, err
	}
	items := v.Items()
	for i := shown; i < len(items); i++ {
		printPost(out, i+1, items[i], viewer)
	}
	if res.Exhausted || v.Exhausted() {
		if len(items) == 0 {
			fmt.Fprintln(out, "No posts")
		} else {
			fmt.Fprintln(out, "-- end of feed --")
		}
	}
	return len(items), nil
}

const interactiveHelp = `enter: more  l N: like  b N: bookmark  c N text: comment  r: reload  q: quit`

func interact(ctx context.Context, in io.Reader, out io.Writer, app *App, v *feed.View, shown int) error {
	viewer := app.Session.UID()
	fmt.Fprintln(out, interactiveHelp)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			var err error
			if shown, err = loadPage(ctx, out, v, viewer, shown); err != nil {
				fmt.Fprintln(out, err)
			}
			continue
		}

		switch fields[0] {
		case "q":
			return nil
		case "r":
			v.Reset()
			shown = 0
			var err error
			if shown, err = loadPage(ctx, out, v, viewer, shown); err != nil {
				fmt.Fprintln(out, err)
			}
		case "l", "b":
			p, ok := pick(out, v, fields)
			if !ok {
				continue
			}
			field := structs.FieldLikedBy
			if fields[0] == "b" {
				field = structs.FieldBookmarks
			}
			res, err := v.Toggle(ctx, p.ID, field)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			printPost(out, index(v, p.ID), res.Post, viewer)
		case "c":
			p, ok := pick(out, v, fields)
			if !ok || len(fields) < 3 {
				fmt.Fprintln(out, interactiveHelp)
				continue
			}
			if _, err := app.Social.Comment(ctx, v, p.ID, strings.Join(fields[2:], " ")); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if local, ok := v.Get(p.ID); ok {
				printPost(out, index(v, p.ID), local, viewer)
			}
		default:
			fmt.Fprintln(out, interactiveHelp)
		}
	}
	return scanner.Err()
}

func pick(out io.Writer, v *feed.View, fields []string) (*structs.Post, bool) {
	if len(fields) < 2 {
		fmt.Fprintln(out, interactiveHelp)
		return nil, false
	}
	n, err := strconv.Atoi(fields[1])
	items := v.Items()
	if err != nil || n < 1 || n > len(items) {
		fmt.Fprintf(out, "no post %s\n", fields[1])
		return nil, false
	}
	return items[n-1], true
}

func index(v *feed.View, id string) int {
	for i, p := range v.Items() {
		if p.ID == id {
			return i + 1
		}
	}
	return 0
}
