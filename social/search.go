package social

import (
	"context"
	"errors"
	"strings"

	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/structs"
)

const (
	// searchLimit bounds the full result list.
	searchLimit = 100

	reindexBatch = 500
)

// ErrNoIndex is returned by ReindexUsers when no search index is
// configured.
var ErrNoIndex = errors.New("search index not configured")

// SearchResult is a user search answer.
type SearchResult struct {
	Term  string
	Users []*structs.User
	// More reports that the preview was cut short.
	More bool
}

// SearchUsers finds users whose username or display name contains term,
// ignoring case. Unless all is set only the configured preview count is
// returned. The term is recorded in the search history.
func (s *Service) SearchUsers(ctx context.Context, term string, all bool) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	res := &SearchResult{Term: term, Users: []*structs.User{}}
	if term == "" {
		return res, nil
	}

	limit := searchLimit
	if !all {
		limit = s.cfg.SearchPreview + 1
	}
	users, err := s.findUsers(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	if !all && len(users) > s.cfg.SearchPreview {
		users = users[:s.cfg.SearchPreview]
		res.More = true
	}
	res.Users = users

	if s.history != nil {
		if _, err := s.history.Add(ctx, term); err != nil {
			logger.Warn(ctx, "failed to record search term", logger.ErrorKey, err)
		}
	}
	return res, nil
}

// findUsers asks the search index first. The index only answers when it
// returns a full limit of substring matches; otherwise the store does.
func (s *Service) findUsers(ctx context.Context, term string, limit int) ([]*structs.User, error) {
	if s.index != nil && s.index.Healthy() {
		users, err := s.index.SearchUsers(ctx, term, limit)
		if err != nil {
			logger.Warn(ctx, "search index query failed, using store", logger.ErrorKey, err)
		} else if len(users) >= limit {
			return users, nil
		}
	}
	return s.store.SearchUsers(ctx, term, limit)
}

// ReindexUsers copies every user profile from the store into the search
// index and returns how many were sent.
func (s *Service) ReindexUsers(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrNoIndex
	}
	users, err := s.store.SearchUsers(ctx, "", 0)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(users); start += reindexBatch {
		end := min(start+reindexBatch, len(users))
		if err := s.index.Index(ctx, users[start:end]...); err != nil {
			return start, err
		}
	}
	logger.Info(ctx, "user index rebuilt", "users", len(users))
	return len(users), nil
}
