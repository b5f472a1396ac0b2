// Package meili keeps a Meilisearch index of user profiles for user search.
package meili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/structs"
)

const primaryKey = "uid"

// UserIndex indexes and searches user profiles.
type UserIndex struct {
	client meilisearch.ServiceManager
	index  string
}

// userDoc is the indexed projection of a user.
type userDoc struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

// NewUserIndex returns nil when no host is configured.
func NewUserIndex(cfg *config.Meilisearch) *UserIndex {
	if cfg == nil || cfg.Host == "" {
		return nil
	}
	index := cfg.Index
	if index == "" {
		index = "users"
	}
	return &UserIndex{
		client: meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey)),
		index:  index,
	}
}

// Index adds or replaces the profile of u.
func (x *UserIndex) Index(_ context.Context, users ...*structs.User) error {
	if x == nil || x.client == nil {
		return errors.New("meilisearch client is nil, cannot add documents")
	}
	if len(users) == 0 {
		return nil
	}
	docs := make([]any, 0, len(users))
	for _, u := range users {
		docs = append(docs, toDoc(u))
	}
	pk := primaryKey
	if _, err := x.client.Index(x.index).AddDocuments(docs, &meilisearch.DocumentOptions{PrimaryKey: &pk}); err != nil {
		return fmt.Errorf("meilisearch add documents error: %v", err)
	}
	return nil
}

// SearchUsers returns at most limit profiles whose username or display
// name contains term, ignoring case. Hits the engine matched only by
// prefix or typo tolerance are dropped. Only the profile fields are
// filled in.
func (x *UserIndex) SearchUsers(ctx context.Context, term string, limit int) ([]*structs.User, error) {
	if x == nil || x.client == nil {
		return nil, errors.New("meilisearch client is nil, cannot perform search")
	}
	req := &meilisearch.SearchRequest{Limit: int64(limit)}
	resp, err := x.client.Index(x.index).SearchWithContext(ctx, term, req)
	if err != nil {
		return nil, fmt.Errorf("meilisearch search error: %v", err)
	}
	users, err := decodeHits(resp.Hits)
	if err != nil {
		return nil, err
	}
	return containing(users, term), nil
}

// Healthy reports whether the server answers.
func (x *UserIndex) Healthy() bool {
	return x != nil && x.client != nil && x.client.IsHealthy()
}

func toDoc(u *structs.User) userDoc {
	return userDoc{UID: u.UID, Name: u.Name, Username: u.Username, ProfilePic: u.ProfilePic}
}

func containing(users []*structs.User, term string) []*structs.User {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := users[:0]
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out
}

// decodeHits converts raw hits through JSON so it does not depend on the
// client's hit representation.
func decodeHits(hits any) ([]*structs.User, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("meilisearch decode hits: %w", err)
	}
	var docs []userDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("meilisearch decode hits: %w", err)
	}
	users := make([]*structs.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, &structs.User{UID: d.UID, Name: d.Name, Username: d.Username, ProfilePic: d.ProfilePic})
	}
	return users, nil
}
