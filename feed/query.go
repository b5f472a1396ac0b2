package feed

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/ecode"
	"github.com/ncobase/feedsync/paging"
	"github.com/ncobase/feedsync/structs"
)

// ScopeKind selects which posts belong to a feed.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeByAuthor
	ScopeLikedBy
	ScopeBookmarkedBy
	ScopeByAuthorSet
	ScopeContentMatch
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAll:
		return "all"
	case ScopeByAuthor:
		return "author"
	case ScopeLikedBy:
		return "liked"
	case ScopeBookmarkedBy:
		return "bookmarks"
	case ScopeByAuthorSet:
		return "authors"
	case ScopeContentMatch:
		return "match"
	}
	return fmt.Sprintf("scope(%d)", int(k))
}

// Scope is a feed filter. An empty UID means the viewer.
type Scope struct {
	Kind ScopeKind
	UID  string
	UIDs []string
	Term string
}

func All() Scope { return Scope{Kind: ScopeAll} }

func ByAuthor(uid string) Scope { return Scope{Kind: ScopeByAuthor, UID: uid} }

func LikedBy(uid string) Scope { return Scope{Kind: ScopeLikedBy, UID: uid} }

func BookmarkedBy(uid string) Scope { return Scope{Kind: ScopeBookmarkedBy, UID: uid} }

// ContentMatch selects posts whose content contains term, ignoring case.
func ContentMatch(term string) Scope { return Scope{Kind: ScopeContentMatch, Term: term} }

// ByAuthorSet selects posts by any of uids. Duplicates are dropped.
func ByAuthorSet(uids []string) Scope {
	set := make([]string, 0, len(uids))
	for _, u := range uids {
		if u != "" && !slices.Contains(set, u) {
			set = append(set, u)
		}
	}
	slices.Sort(set)
	return Scope{Kind: ScopeByAuthorSet, UIDs: set}
}

// Key identifies the scope in the cursor store.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeByAuthor, ScopeLikedBy, ScopeBookmarkedBy:
		return s.Kind.String() + ":" + s.UID
	case ScopeByAuthorSet:
		return s.Kind.String() + ":" + strings.Join(s.UIDs, ",")
	case ScopeContentMatch:
		return s.Kind.String() + ":" + strings.ToLower(s.Term)
	}
	return s.Kind.String()
}

func (s Scope) String() string { return s.Key() }

// resolve fills an empty UID with the viewer.
func (s Scope) resolve(viewerID string) Scope {
	switch s.Kind {
	case ScopeByAuthor, ScopeLikedBy, ScopeBookmarkedBy:
		if s.UID == "" {
			s.UID = viewerID
		}
	}
	return s
}

// Descriptor is a built page request. Empty descriptors are answered
// without touching the store.
type Descriptor struct {
	Scope    Scope
	Query    *data.Query
	PageSize int
	Empty    bool
}

// Build produces the page request for scope continuing strictly after
// cursor, newest first.
func Build(scope Scope, viewerID string, pageSize int, cursor *paging.Cursor) (*Descriptor, error) {
	if pageSize <= 0 {
		return nil, ecode.ValidationError(map[string]string{"pageSize": "Page size must be positive."})
	}
	pageSize = paging.NormalizeLimit(pageSize)
	scope = scope.resolve(viewerID)

	q := &data.Query{
		Collection: data.CollectionPosts,
		OrderBy:    "createdAt",
		Desc:       true,
		StartAfter: cursor,
		Limit:      pageSize,
	}
	d := &Descriptor{Scope: scope, Query: q, PageSize: pageSize}

	switch scope.Kind {
	case ScopeAll:
	case ScopeByAuthor:
		if scope.UID == "" {
			return nil, ecode.ValidationError(map[string]string{"uid": ecode.FieldIsRequired("uid")})
		}
		q.Filters = []data.Filter{{Field: "uid", Op: data.OpEq, Value: scope.UID}}
	case ScopeLikedBy, ScopeBookmarkedBy:
		if scope.UID == "" {
			return nil, ecode.ValidationError(map[string]string{"uid": ecode.FieldIsRequired("uid")})
		}
		field := structs.FieldLikedBy
		if scope.Kind == ScopeBookmarkedBy {
			field = structs.FieldBookmarks
		}
		q.Filters = []data.Filter{{Field: field, Op: data.OpArrayContains, Value: scope.UID}}
	case ScopeByAuthorSet:
		if len(scope.UIDs) == 0 {
			d.Empty = true
			break
		}
		q.Filters = []data.Filter{{Field: "uid", Op: data.OpIn, Value: slices.Clone(scope.UIDs)}}
	case ScopeContentMatch:
		term := strings.TrimSpace(scope.Term)
		if term == "" {
			return nil, ecode.ValidationError(map[string]string{"term": ecode.FieldIsEmpty("term")})
		}
		q.Filters = []data.Filter{{Field: "content", Op: data.OpContains, Value: term}}
	default:
		return nil, ecode.ValidationError(map[string]string{"scope": ecode.FieldIsInvalid("scope")})
	}
	return d, nil
}
