package social

import (
	"context"
	"sync"

	"github.com/ncobase/feedsync/concurrency/worker"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
)

// Notifications subscribes to the most recent posts by the users the
// signed-in user follows. Each value is a full snapshot, newest first. A
// nil channel and nil error mean there is nothing to follow. The channel
// closes when ctx is done.
func (s *Service) Notifications(ctx context.Context) (<-chan []structs.Notification, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	me, err := s.user(ctx, uid)
	if err != nil {
		return nil, err
	}
	d, err := feed.Build(feed.ByAuthorSet(me.Following), uid, s.cfg.NotificationSize, nil)
	if err != nil {
		return nil, err
	}
	if d.Empty {
		return nil, nil
	}

	posts, err := s.store.WatchPosts(ctx, d.Query)
	if err != nil {
		return nil, err
	}
	out := make(chan []structs.Notification, 1)
	go func() {
		defer close(out)
		for snapshot := range posts {
			notes := s.resolve(ctx, snapshot)
			select {
			case <-out:
			default:
			}
			select {
			case out <- notes:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// resolve attaches author profiles to posts. Lookups go through the
// author cache and run on the worker pool when one is set.
func (s *Service) resolve(ctx context.Context, posts []*structs.Post) []structs.Notification {
	var (
		mu       sync.Mutex
		profiles = make(map[string]*structs.Profile)
		uids     []string
	)
	for _, p := range posts {
		if _, ok := profiles[p.UID]; !ok {
			profiles[p.UID] = nil
			uids = append(uids, p.UID)
		}
	}

	lookup := func(uid string) func(context.Context) error {
		return func(ctx context.Context) error {
			p, err := s.author(ctx, uid)
			if err != nil {
				return err
			}
			mu.Lock()
			profiles[uid] = p
			mu.Unlock()
			return nil
		}
	}
	var err error
	if s.pool != nil {
		tasks := make([]worker.Task, len(uids))
		for i, uid := range uids {
			tasks[i] = lookup(uid)
		}
		err = s.pool.Do(ctx, tasks...)
	} else {
		for _, uid := range uids {
			if e := lookup(uid)(ctx); e != nil {
				err = e
			}
		}
	}
	if err != nil {
		logger.Warn(ctx, "failed to resolve some authors", logger.ErrorKey, err)
	}

	notes := make([]structs.Notification, 0, len(posts))
	for _, p := range posts {
		author := profiles[p.UID]
		if author == nil {
			author = &structs.Profile{UID: p.UID, Name: p.Name}
		}
		notes = append(notes, structs.Notification{
			PostID:    p.ID,
			Content:   p.Content,
			ImageURL:  p.ImageURL,
			CreatedAt: p.CreatedAt,
			Author:    author,
		})
	}
	return notes
}

func (s *Service) author(ctx context.Context, uid string) (*structs.Profile, error) {
	if p, err := s.authors.Get(ctx, uid); err == nil && p != nil {
		return p, nil
	}
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	if err := s.authors.Set(ctx, uid, p, s.cfg.AuthorCacheTTL); err != nil {
		logger.Debug(ctx, "failed to cache author", "uid", uid, logger.ErrorKey, err)
	}
	return p, nil
}
