package social

import (
	"context"
	"errors"
	"strings"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/feed"
	"github.com/ncobase/feedsync/structs"
	"github.com/ncobase/feedsync/validation"
)

// MsgEmptyComment rejects a blank comment.
const MsgEmptyComment = "Comment cannot be empty."

// CreatePost publishes a post by the signed-in user.
func (s *Service) CreatePost(ctx context.Context, body structs.CreatePostBody) (*structs.Post, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	body.Content = strings.TrimSpace(body.Content)
	body.ImageURL = strings.TrimSpace(body.ImageURL)
	if err := validation.Validate(&body); err != nil {
		return nil, err
	}

	return s.store.CreatePost(ctx, &structs.Post{
		UID:       uid,
		Name:      s.displayName(ctx, uid),
		Content:   body.Content,
		ImageURL:  body.ImageURL,
		CreatedAt: s.now().UTC(),
		LikedBy:   []string{},
		Bookmarks: []string{},
		Comments:  []structs.Comment{},
	})
}

// Comment appends a comment by the signed-in user to postID. When view is
// non-nil the comment is also applied to its copy of the post.
func (s *Service) Comment(ctx context.Context, view *feed.View, postID, content string) (*structs.Comment, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ecode.ValidationError(map[string]string{"content": MsgEmptyComment})
	}

	c := structs.Comment{
		UID:       uid,
		Name:      s.displayName(ctx, uid),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendComment(ctx, postID, c); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ecode.NotFoundError("post")
		}
		return nil, err
	}
	if view != nil {
		view.Patch(postID, feed.AppendComment(c))
	}
	return &c, nil
}

// Post reads one post.
func (s *Service) Post(ctx context.Context, postID string) (*structs.Post, error) {
	p, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ecode.NotFoundError("post")
		}
		return nil, err
	}
	return p, nil
}

// TogglePost flips the signed-in user's like or bookmark on postID outside
// any view.
func (s *Service) TogglePost(ctx context.Context, postID, field string) (*feed.ToggleResult, error) {
	uid, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	return feed.NewToggler(s.store, s.cfg.ToggleMode).Toggle(ctx, nil, postID, field, uid)
}
