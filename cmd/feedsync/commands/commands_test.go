package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data/memory"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/social"
	logcfg "github.com/ncobase/feedsync/logging/logger/config"
	"github.com/ncobase/feedsync/structs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
app_name: feedsync-test
logger:
  level: 2
data:
  driver: memory
  local:
    backend: sqlite
    path: ` + filepath.Join(dir, "local.db") + `
auth:
  jwt:
    secret: test-secret
feed:
  page_size: 2
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	return file
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
}

func TestWhoamiSignedOut(t *testing.T) {
	out, err := execute(t, "", "--config", writeConfig(t), "whoami")
	assert.ErrorIs(t, err, ecode.ErrNoLogin)
	assert.Empty(t, out)
}

func TestReindexWithoutIndex(t *testing.T) {
	_, err := execute(t, "", "--config", writeConfig(t), "reindex")
	assert.ErrorIs(t, err, social.ErrNoIndex)
}

func TestEmptyFeed(t *testing.T) {
	out, err := execute(t, "", "--config", writeConfig(t), "feed", "home")
	require.NoError(t, err)
	assert.Contains(t, out, "No posts")
}

func TestSessionSurvivesInvocations(t *testing.T) {
	cfgFile := writeConfig(t)
	out, err := execute(t, "", "--config", cfgFile, "register",
		"--name", "Persisted User", "--username", "persist", "--email", "p@example.com",
		"--dob", "1990-05-05", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Persisted User")

	// The memory store is per process, so only the token outlives the
	// first invocation: whoami finds the session but not the profile.
	_, err = execute(t, "", "--config", cfgFile, "whoami")
	assert.ErrorIs(t, err, ecode.ErrNotFound)

	_, err = execute(t, "", "--config", cfgFile, "logout")
	require.NoError(t, err)
	_, err = execute(t, "", "--config", cfgFile, "whoami")
	assert.ErrorIs(t, err, ecode.ErrNoLogin)
}

func TestInteractiveFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(writeConfig(t))
	require.NoError(t, err)
	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	defer app.Close(context.Background())

	_, err = app.Social.Register(ctx, structs.RegisterBody{
		Name: "Scroll Tester", Username: "scroller", Email: "s@example.com",
		DOB: "1990-01-01", Password: "pw", ConfirmPassword: "pw",
	})
	require.NoError(t, err)
	for _, c := range []string{"one", "two", "three"} {
		_, err := app.Social.CreatePost(ctx, structs.CreatePostBody{Content: c})
		require.NoError(t, err)
	}

	v := app.Social.NewView(feed.All())
	go v.Run(ctx)
	var out bytes.Buffer
	shown, err := loadPage(ctx, &out, v, app.Session.UID(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, shown)

	err = interact(ctx, strings.NewReader("\nl 1\nc 2 hello there\nq\n"), &out, app, v, shown)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "-- end of feed --")
	assert.Contains(t, text, "[liked]")
	assert.Contains(t, text, "Scroll Tester: hello there")
	assert.Len(t, v.Items(), 3)
}

func TestClientClosedAfterFailingCommand(t *testing.T) {
	root := NewRoot()
	closed := false
	failure := errors.New("command failed")
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.s.App(cmd.Context())
			if err != nil {
				return err
			}
			app.onClose(func(context.Context) error {
				closed = true
				return nil
			})
			return failure
		},
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", writeConfig(t), "fail"})

	err := root.Execute(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.True(t, closed)
	assert.Nil(t, root.s.app)
}

func TestApplyConfig(t *testing.T) {
	std := logger.StdLogger()
	level, formatter := std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		std.SetLevel(level)
		std.SetFormatter(formatter)
	})

	v := feed.NewView(memory.New(), feed.Options{Scope: feed.All(), PageSize: 2})
	applyConfig(context.Background(), &config.Config{
		Logger: &logcfg.Config{Level: int(logrus.DebugLevel), Format: "json"},
		Feed:   &config.Feed{PageSize: 7},
	}, func(f *config.Feed) { v.SetPageSize(f.PageSize) })

	assert.Equal(t, 7, v.PageSize())
	assert.Equal(t, logrus.DebugLevel, std.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, std.Formatter)
}

func TestFeedResumesAfterToken(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.LoadConfig(writeConfig(t))
	require.NoError(t, err)
	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)
	s := &state{app: app}
	defer s.close(ctx)

	_, err = app.Social.Register(ctx, structs.RegisterBody{
		Name: "Resume Tester", Username: "resumer", Email: "r@example.com",
		DOB: "1990-01-01", Password: "pw", ConfirmPassword: "pw",
	})
	require.NoError(t, err)
	for _, c := range []string{"one", "two", "three"} {
		_, err := app.Social.CreatePost(ctx, structs.CreatePostBody{Content: c})
		require.NoError(t, err)
	}

	run := func(after string) (string, error) {
		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetContext(ctx)
		err := runFeed(cmd, s, &feedFlags{pages: 1, after: after}, func(app *App) (*feed.View, error) {
			return app.Social.NewView(feed.All()), nil
		})
		return out.String(), err
	}

	first, err := run("")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(first, " likes, "))
	_, rest, ok := strings.Cut(first, "next: --after ")
	require.True(t, ok, first)
	token := strings.TrimSpace(rest)

	second, err := run(token)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(second, " likes, "))
	assert.Contains(t, second, "-- end of feed --")
	assert.NotContains(t, second, "next:")
	for _, c := range []string{"one", "two", "three"} {
		assert.Equal(t, 1, strings.Count(first+second, "     "+c+"\n"), c)
	}

	_, err = run("not a token")
	assert.ErrorIs(t, err, paging.ErrInvalidCursor)
}
